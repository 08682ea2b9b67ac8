package usecase

import (
	"context"
	"strings"

	"newsobserver/internal/domain"
	"newsobserver/internal/ports"
)

// FeedStats is the per-label article count shown next to the bias filters.
type FeedStats struct {
	Counts []domain.BiasCount `json:"counts"`
	Total  int64              `json:"total"`
}

// FeedService answers the read-only feed queries.
type FeedService struct {
	outlets ports.OutletRepository
	reader  ports.FeedReader
}

// NewFeedService wires the feed read side.
func NewFeedService(outlets ports.OutletRepository, reader ports.FeedReader) *FeedService {
	return &FeedService{outlets: outlets, reader: reader}
}

// ListOutlets returns every outlet ordered by name.
func (s *FeedService) ListOutlets(ctx context.Context) ([]domain.Outlet, error) {
	outlets, err := s.outlets.ListOutlets(ctx)
	if err != nil {
		return nil, &StorageError{Op: "list outlets", Err: err}
	}
	return outlets, nil
}

// ListArticles returns the newest articles first, filtered by bias and title text.
func (s *FeedService) ListArticles(ctx context.Context, filter ports.FeedFilter) ([]domain.FeedArticle, error) {
	filter.Bias = strings.TrimSpace(filter.Bias)
	filter.Query = strings.TrimSpace(filter.Query)

	articles, err := s.reader.ListFeedArticles(ctx, filter)
	if err != nil {
		return nil, &StorageError{Op: "list articles", Err: err}
	}
	return articles, nil
}

// Stats reports article counts per bias label. Known labels are always present,
// in display order, followed by any other labels found in storage.
func (s *FeedService) Stats(ctx context.Context) (FeedStats, error) {
	counts, err := s.reader.CountByBias(ctx)
	if err != nil {
		return FeedStats{}, &StorageError{Op: "count by bias", Err: err}
	}
	total, err := s.reader.CountArticles(ctx)
	if err != nil {
		return FeedStats{}, &StorageError{Op: "count articles", Err: err}
	}

	byLabel := make(map[string]int64, len(counts))
	for _, c := range counts {
		byLabel[c.Label] += c.Total
	}

	stats := FeedStats{Total: total}
	for _, label := range domain.KnownBiasLabels {
		stats.Counts = append(stats.Counts, domain.BiasCount{Label: label, Total: byLabel[label]})
		delete(byLabel, label)
	}
	for _, c := range counts {
		if total, ok := byLabel[c.Label]; ok {
			stats.Counts = append(stats.Counts, domain.BiasCount{Label: c.Label, Total: total})
			delete(byLabel, c.Label)
		}
	}
	return stats, nil
}
