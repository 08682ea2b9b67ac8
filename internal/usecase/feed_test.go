package usecase

import (
	"context"
	"testing"

	"newsobserver/internal/domain"
	"newsobserver/internal/ports"
)

func seededFeed(t *testing.T) (*FeedService, *fakeStore) {
	t.Helper()
	ctx := context.Background()
	store := newFakeStore()

	left, _ := store.CreateOutlet(ctx, domain.Outlet{Name: "Left Daily", BiasLabel: domain.BiasLeft})
	right, _ := store.CreateOutlet(ctx, domain.Outlet{Name: "Right Times", BiasLabel: domain.BiasRight})
	odd, _ := store.CreateOutlet(ctx, domain.Outlet{Name: "Satire Weekly", BiasLabel: "Satire"})

	for _, a := range []domain.NewArticle{
		{Title: "Markets rally", URL: "http://x/1", OutletID: left.ID},
		{Title: "Election night", URL: "http://x/2", OutletID: right.ID},
		{Title: "Market crash?", URL: "http://x/3", OutletID: right.ID},
		{Title: "Cats elected", URL: "http://x/4", OutletID: odd.ID},
	} {
		if _, _, err := store.InsertArticleIfAbsent(ctx, a); err != nil {
			t.Fatalf("seed article: %v", err)
		}
	}
	return NewFeedService(store, store), store
}

func TestFeedListArticlesNewestFirst(t *testing.T) {
	t.Parallel()

	svc, _ := seededFeed(t)
	articles, err := svc.ListArticles(context.Background(), ports.FeedFilter{})
	if err != nil {
		t.Fatalf("ListArticles: %v", err)
	}
	if len(articles) != 4 || articles[0].URL != "http://x/4" {
		t.Fatalf("unexpected order: %+v", articles)
	}
	if articles[0].OutletName != "Satire Weekly" {
		t.Fatalf("outlet not joined: %+v", articles[0])
	}
}

func TestFeedListArticlesFilters(t *testing.T) {
	t.Parallel()

	svc, _ := seededFeed(t)

	byBias, err := svc.ListArticles(context.Background(), ports.FeedFilter{Bias: " Right "})
	if err != nil {
		t.Fatalf("ListArticles: %v", err)
	}
	if len(byBias) != 2 {
		t.Fatalf("expected 2 right-leaning articles, got %d", len(byBias))
	}

	both, err := svc.ListArticles(context.Background(), ports.FeedFilter{Bias: domain.BiasRight, Query: "market"})
	if err != nil {
		t.Fatalf("ListArticles: %v", err)
	}
	if len(both) != 1 || both[0].Title != "Market crash?" {
		t.Fatalf("unexpected filtered result: %+v", both)
	}
}

func TestFeedStatsIncludesKnownLabels(t *testing.T) {
	t.Parallel()

	svc, _ := seededFeed(t)
	stats, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Total != 4 {
		t.Fatalf("expected total 4, got %d", stats.Total)
	}

	want := []domain.BiasCount{
		{Label: domain.BiasLeft, Total: 1},
		{Label: domain.BiasCenter, Total: 0},
		{Label: domain.BiasRight, Total: 2},
		{Label: domain.BiasUnknown, Total: 0},
		{Label: "Satire", Total: 1},
	}
	if len(stats.Counts) != len(want) {
		t.Fatalf("unexpected counts: %+v", stats.Counts)
	}
	for i := range want {
		if stats.Counts[i] != want[i] {
			t.Fatalf("count %d = %+v, want %+v", i, stats.Counts[i], want[i])
		}
	}
}

func TestFeedListOutletsSorted(t *testing.T) {
	t.Parallel()

	svc, _ := seededFeed(t)
	outlets, err := svc.ListOutlets(context.Background())
	if err != nil {
		t.Fatalf("ListOutlets: %v", err)
	}
	if len(outlets) != 3 || outlets[0].Name != "Left Daily" || outlets[2].Name != "Satire Weekly" {
		t.Fatalf("unexpected outlets: %+v", outlets)
	}
}
