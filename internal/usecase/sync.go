package usecase

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"strings"
	"time"

	"newsobserver/internal/domain"
	"newsobserver/internal/logging"
	"newsobserver/internal/ports"
)

const (
	maxBatchSize          = 15
	defaultCategory       = "Top Stories"
	defaultPublishTimeout = 5 * time.Second
)

// SyncConfig is the explicit configuration of the synchronizer. BatchSize may
// only lower the per-run bound of 15 candidates.
type SyncConfig struct {
	TriggerSecret  string
	BatchSize      int
	Category       string
	PublishTimeout time.Duration
}

// SyncDeps wires driven adapters into the synchronizer.
type SyncDeps struct {
	Source    ports.HeadlineSource
	Outlets   ports.OutletRepository
	Articles  ports.ArticleRepository
	Publisher ports.ArticlePublisher
	Logger    *slog.Logger
	Now       func() time.Time
}

// SyncReport summarizes one synchronization run.
type SyncReport struct {
	Fetched           int `json:"fetched"`
	Processed         int `json:"processed"`
	OutletsCreated    int `json:"outlets_created"`
	ArticlesInserted  int `json:"articles_inserted"`
	DuplicatesSkipped int `json:"duplicates_skipped"`
}

// Synchronizer merges the external headline feed into outlets and articles.
type Synchronizer struct {
	cfg       SyncConfig
	source    ports.HeadlineSource
	outlets   ports.OutletRepository
	articles  ports.ArticleRepository
	publisher ports.ArticlePublisher
	logger    *slog.Logger
	now       func() time.Time
}

// NewSynchronizer applies defaults for batch size, category and publish timeout.
func NewSynchronizer(cfg SyncConfig, deps SyncDeps) *Synchronizer {
	if cfg.BatchSize <= 0 || cfg.BatchSize > maxBatchSize {
		cfg.BatchSize = maxBatchSize
	}
	if cfg.PublishTimeout <= 0 {
		cfg.PublishTimeout = defaultPublishTimeout
	}
	if strings.TrimSpace(cfg.Category) == "" {
		cfg.Category = defaultCategory
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &Synchronizer{
		cfg:       cfg,
		source:    deps.Source,
		outlets:   deps.Outlets,
		articles:  deps.Articles,
		publisher: deps.Publisher,
		logger:    logging.Resolve(deps.Logger),
		now:       now,
	}
}

// Authorize checks the presented secret. An unset trigger secret refuses everyone.
func (s *Synchronizer) Authorize(presented string) error {
	if s.cfg.TriggerSecret == "" {
		return domain.ErrUnauthorized
	}
	if subtle.ConstantTimeCompare([]byte(presented), []byte(s.cfg.TriggerSecret)) != 1 {
		return domain.ErrUnauthorized
	}
	return nil
}

// Sync fetches the current headlines and stores new outlets and articles.
// Candidates are processed in feed order; the first failure stops the run and
// writes already made are kept. Events for inserted articles are published once
// the loop ends, including after a failure.
func (s *Synchronizer) Sync(ctx context.Context, presentedSecret string) (SyncReport, error) {
	if err := s.Authorize(presentedSecret); err != nil {
		return SyncReport{}, err
	}

	var ingested []ports.ArticleIngested
	report, err := s.merge(ctx, &ingested)
	s.publish(ctx, ingested)
	return report, err
}

func (s *Synchronizer) merge(ctx context.Context, ingested *[]ports.ArticleIngested) (SyncReport, error) {
	var report SyncReport

	headlines, err := s.source.TopHeadlines(ctx)
	if err != nil {
		return report, &UpstreamError{Err: err}
	}
	report.Fetched = len(headlines)
	if len(headlines) > s.cfg.BatchSize {
		headlines = headlines[:s.cfg.BatchSize]
	}

	s.logger.Info("sync started", "fetched", report.Fetched, "batch", len(headlines))

	for _, headline := range headlines {
		outlet, created, err := s.resolveOutlet(ctx, headline.SourceName)
		if err != nil {
			return report, err
		}
		if created {
			report.OutletsCreated++
			s.logger.Debug("outlet discovered", "outlet", outlet.Name, "outlet_id", outlet.ID)
		}

		stored, inserted, err := s.articles.InsertArticleIfAbsent(ctx, domain.NewArticle{
			Title:    headline.Title,
			URL:      headline.URL,
			Summary:  summaryOrPlaceholder(headline.Description),
			OutletID: outlet.ID,
			Category: s.cfg.Category,
		})
		if err != nil {
			return report, &StorageError{Op: "insert article", Err: err}
		}
		report.Processed++

		if !inserted {
			report.DuplicatesSkipped++
			s.logger.Debug("article already stored", "url", headline.URL)
			continue
		}
		report.ArticlesInserted++
		*ingested = append(*ingested, ports.ArticleIngested{
			ArticleID:  stored.ID,
			Title:      stored.Title,
			URL:        stored.URL,
			OutletID:   outlet.ID,
			OutletName: outlet.Name,
			Category:   stored.Category,
			IngestedAt: s.now().UTC(),
		})
	}

	s.logger.Info("sync finished",
		"processed", report.Processed,
		"outlets_created", report.OutletsCreated,
		"articles_inserted", report.ArticlesInserted,
		"duplicates_skipped", report.DuplicatesSkipped,
	)
	return report, nil
}

func (s *Synchronizer) resolveOutlet(ctx context.Context, name string) (domain.Outlet, bool, error) {
	outlet, found, err := s.outlets.FindOutletByName(ctx, name)
	if err != nil {
		return domain.Outlet{}, false, &StorageError{Op: "find outlet", Err: err}
	}
	if found {
		return outlet, false, nil
	}

	outlet, err = s.outlets.CreateOutlet(ctx, domain.Outlet{
		Name:             name,
		BiasLabel:        domain.BiasUnknown,
		OwnershipDetails: domain.AutoDiscoveredNote,
	})
	if err != nil {
		return domain.Outlet{}, false, &StorageError{Op: "create outlet", Err: err}
	}
	return outlet, true, nil
}

// publish is bounded by PublishTimeout so a slow broker cannot hold the run.
func (s *Synchronizer) publish(ctx context.Context, events []ports.ArticleIngested) {
	if s.publisher == nil || len(events) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, s.cfg.PublishTimeout)
	defer cancel()

	if err := s.publisher.PublishArticlesIngested(ctx, events); err != nil {
		s.logger.Warn("publish ingested articles failed", "events", len(events), "error", err)
	}
}

func summaryOrPlaceholder(description string) string {
	if strings.TrimSpace(description) == "" {
		return domain.PlaceholderSummary
	}
	return description
}
