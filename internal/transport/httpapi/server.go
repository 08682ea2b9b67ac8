package httpapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"newsobserver/internal/auth"
	"newsobserver/internal/domain"
	"newsobserver/internal/logging"
	"newsobserver/internal/ports"
	"newsobserver/internal/usecase"
)

// Syncer runs one ingestion pass for a presented trigger secret.
type Syncer interface {
	Sync(ctx context.Context, presentedSecret string) (usecase.SyncReport, error)
}

// ArticleManager performs admin mutations.
type ArticleManager interface {
	CreateArticle(ctx context.Context, input usecase.CreateArticleInput, role domain.Role) (domain.Article, error)
	DeleteArticle(ctx context.Context, id int64, role domain.Role) error
}

// FeedQuerier serves the read-only feed.
type FeedQuerier interface {
	ListOutlets(ctx context.Context) ([]domain.Outlet, error)
	ListArticles(ctx context.Context, filter ports.FeedFilter) ([]domain.FeedArticle, error)
	Stats(ctx context.Context) (usecase.FeedStats, error)
}

// Deps are the use cases exposed over HTTP.
type Deps struct {
	Sync     Syncer
	Articles ArticleManager
	Feed     FeedQuerier
	Policy   auth.RolePolicy
	Logger   *slog.Logger
}

// Options configure the listener, the identity headers and the rate limit.
type Options struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	RateLimitRPS    float64
	RateLimitBurst  int
	// TrustForwardedFor keys the rate limit by X-Forwarded-For instead of the peer address.
	TrustForwardedFor bool
	IdentityHeader    string
	NameHeader        string
}

// Server exposes the news API.
type Server struct {
	mux      *http.ServeMux
	handler  http.Handler
	limiter  *clientLimiter
	opts     Options
	logger   *slog.Logger
	sync     Syncer
	articles ArticleManager
	feed     FeedQuerier
	policy   auth.RolePolicy
}

// New registers routes and wraps them in request id, access log and rate limit middleware.
func New(deps Deps, opts Options) *Server {
	if opts.Addr == "" {
		opts.Addr = ":8080"
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 10 * time.Second
	}
	if opts.IdentityHeader == "" {
		opts.IdentityHeader = "X-Auth-Request-Email"
	}

	s := &Server{
		mux:      http.NewServeMux(),
		limiter:  newClientLimiter(opts.RateLimitRPS, opts.RateLimitBurst, opts.TrustForwardedFor),
		opts:     opts,
		logger:   logging.Resolve(deps.Logger),
		sync:     deps.Sync,
		articles: deps.Articles,
		feed:     deps.Feed,
		policy:   deps.Policy,
	}
	s.registerRoutes()
	s.handler = requestID(accessLog(s.logger, s.limiter.middleware(s.logger, s.mux)))
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	s.mux.HandleFunc("GET /api/sync-news", s.handleSyncNews)
	s.mux.HandleFunc("GET /api/articles", s.handleListArticles)
	s.mux.HandleFunc("POST /api/articles", s.handleCreateArticle)
	s.mux.HandleFunc("DELETE /api/articles/{id}", s.handleDeleteArticle)
	s.mux.HandleFunc("GET /api/outlets", s.handleListOutlets)
	s.mux.HandleFunc("GET /api/stats", s.handleStats)
	s.mux.HandleFunc("GET /api/session", s.handleSession)
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.handler,
		ReadTimeout:       s.opts.ReadTimeout,
		ReadHeaderTimeout: s.opts.ReadTimeout,
		WriteTimeout:      s.opts.WriteTimeout,
		IdleTimeout:       s.opts.IdleTimeout,
	}

	go s.limiter.sweepLoop(ctx, time.Minute, 5*time.Minute)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", s.opts.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("listen %s: %w", s.opts.Addr, err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("http server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	return nil
}
