package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"newsobserver/internal/auth"
	"newsobserver/internal/config"
	"newsobserver/internal/infrastructure/events"
	"newsobserver/internal/infrastructure/newsapi"
	"newsobserver/internal/infrastructure/storage"
	"newsobserver/internal/logging"
	"newsobserver/internal/ports"
	"newsobserver/internal/transport/httpapi"
	"newsobserver/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg          config.Config
	logger       *slog.Logger
	db           *sql.DB
	repo         *storage.PostgresRepository
	publisher    *events.KafkaPublisher
	synchronizer *usecase.Synchronizer
	server       *httpapi.Server
}

// New connects to Postgres and builds every adapter and use case.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	db, err := storage.Open(ctx, cfg.Database.DSN, storage.Options{
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
	})
	if err != nil {
		return nil, err
	}
	repo := storage.NewPostgresRepository(db)

	a := &Application{cfg: cfg, logger: baseLogger, db: db, repo: repo}

	var publisher ports.ArticlePublisher
	if cfg.Kafka.Enabled() {
		a.publisher = events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, baseLogger.With("component", "events.kafka"))
		publisher = a.publisher
	}

	source := newsapi.NewClient(newsapi.Config{
		BaseURL: cfg.NewsAPI.BaseURL,
		APIKey:  cfg.NewsAPI.APIKey,
		Country: cfg.NewsAPI.Country,
		Timeout: cfg.NewsAPI.Timeout,
	}, nil, baseLogger.With("component", "newsapi"))

	a.synchronizer = usecase.NewSynchronizer(usecase.SyncConfig{
		TriggerSecret:  cfg.Sync.Key,
		Category:       cfg.Sync.Category,
		PublishTimeout: cfg.Sync.PublishTimeout,
	}, usecase.SyncDeps{
		Source:    source,
		Outlets:   repo,
		Articles:  repo,
		Publisher: publisher,
		Logger:    baseLogger.With("component", "sync"),
	})

	a.server = httpapi.New(httpapi.Deps{
		Sync:     a.synchronizer,
		Articles: usecase.NewArticleService(repo, repo, baseLogger.With("component", "articles")),
		Feed:     usecase.NewFeedService(repo, repo),
		Policy:   auth.NewRolePolicy(cfg.Auth.AdminEmails),
		Logger:   baseLogger.With("component", "http"),
	}, httpapi.Options{
		Addr:              cfg.HTTP.Addr,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
		ShutdownTimeout:   cfg.HTTP.ShutdownTimeout,
		RateLimitRPS:      cfg.HTTP.RateLimitRPS,
		RateLimitBurst:    cfg.HTTP.RateLimitBurst,
		TrustForwardedFor: cfg.HTTP.TrustForwardedFor,
		IdentityHeader:    cfg.Auth.IdentityHeader,
		NameHeader:        cfg.Auth.NameHeader,
	})

	return a, nil
}

// Migrate creates the schema when missing.
func (a *Application) Migrate(ctx context.Context) error {
	if err := a.repo.Ensure(ctx); err != nil {
		return err
	}
	a.logger.Info("schema ready")
	return nil
}

// Serve ensures the schema and runs the HTTP API until ctx is cancelled.
func (a *Application) Serve(ctx context.Context) error {
	if err := a.Migrate(ctx); err != nil {
		return err
	}
	return a.server.Run(ctx)
}

// SyncOnce runs a single ingestion pass with the configured trigger secret.
func (a *Application) SyncOnce(ctx context.Context) (usecase.SyncReport, error) {
	return a.synchronizer.Sync(ctx, a.cfg.Sync.Key)
}

// Close releases the event writer and the database pool.
func (a *Application) Close() error {
	var errs []error
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close kafka publisher: %w", err))
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	}
	return errors.Join(errs...)
}
