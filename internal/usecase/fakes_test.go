package usecase

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"newsobserver/internal/domain"
	"newsobserver/internal/ports"
)

type fakeSource struct {
	headlines []domain.Headline
	err       error
	calls     int
}

func (f *fakeSource) TopHeadlines(context.Context) ([]domain.Headline, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.headlines, nil
}

// fakeStore keeps outlets and articles in memory and records every call.
type fakeStore struct {
	mu       sync.Mutex
	outlets  []domain.Outlet
	articles []domain.Article
	nextID   int64
	calls    []string

	failInsertAt int // 1-based insert attempt that fails; 0 disables
	inserts      int
	failCreate   error
}

func newFakeStore() *fakeStore {
	return &fakeStore{}
}

func (f *fakeStore) id() int64 {
	f.nextID++
	return f.nextID
}

func (f *fakeStore) FindOutletByName(_ context.Context, name string) (domain.Outlet, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "find:"+name)
	for _, o := range f.outlets {
		if strings.EqualFold(o.Name, name) {
			return o, true, nil
		}
	}
	return domain.Outlet{}, false, nil
}

func (f *fakeStore) CreateOutlet(_ context.Context, outlet domain.Outlet) (domain.Outlet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "create:"+outlet.Name)
	if f.failCreate != nil {
		return domain.Outlet{}, f.failCreate
	}
	outlet.ID = f.id()
	f.outlets = append(f.outlets, outlet)
	return outlet, nil
}

func (f *fakeStore) GetOutlet(_ context.Context, id int64) (domain.Outlet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, o := range f.outlets {
		if o.ID == id {
			return o, nil
		}
	}
	return domain.Outlet{}, domain.ErrNotFound
}

func (f *fakeStore) ListOutlets(context.Context) ([]domain.Outlet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := append([]domain.Outlet(nil), f.outlets...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeStore) InsertArticleIfAbsent(_ context.Context, a domain.NewArticle) (domain.Article, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inserts++
	f.calls = append(f.calls, "insert:"+a.URL)
	if f.failInsertAt > 0 && f.inserts == f.failInsertAt {
		return domain.Article{}, false, errors.New("connection reset")
	}
	for _, existing := range f.articles {
		if existing.URL == a.URL {
			return existing, false, nil
		}
	}
	stored := domain.Article{
		ID:        f.id(),
		Title:     a.Title,
		URL:       a.URL,
		Summary:   a.Summary,
		OutletID:  a.OutletID,
		Category:  a.Category,
		CreatedAt: time.Date(2026, time.January, 1, 0, 0, int(f.nextID), 0, time.UTC),
	}
	f.articles = append(f.articles, stored)
	return stored, true, nil
}

func (f *fakeStore) DeleteArticle(_ context.Context, id int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, a := range f.articles {
		if a.ID == id {
			f.articles = append(f.articles[:i], f.articles[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) ListFeedArticles(_ context.Context, filter ports.FeedFilter) ([]domain.FeedArticle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.FeedArticle
	for _, a := range f.articles {
		var outlet domain.Outlet
		for _, o := range f.outlets {
			if o.ID == a.OutletID {
				outlet = o
			}
		}
		if filter.Bias != "" && outlet.BiasLabel != filter.Bias {
			continue
		}
		if filter.Query != "" && !strings.Contains(strings.ToLower(a.Title), strings.ToLower(filter.Query)) {
			continue
		}
		out = append(out, domain.FeedArticle{Article: a, OutletName: outlet.Name, OutletBias: outlet.BiasLabel})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeStore) CountByBias(context.Context) ([]domain.BiasCount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	totals := map[string]int64{}
	var order []string
	for _, a := range f.articles {
		for _, o := range f.outlets {
			if o.ID == a.OutletID {
				if _, ok := totals[o.BiasLabel]; !ok {
					order = append(order, o.BiasLabel)
				}
				totals[o.BiasLabel]++
			}
		}
	}
	var out []domain.BiasCount
	for _, label := range order {
		out = append(out, domain.BiasCount{Label: label, Total: totals[label]})
	}
	return out, nil
}

func (f *fakeStore) CountArticles(context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.articles)), nil
}

func (f *fakeStore) outletCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.outlets)
}

func (f *fakeStore) articleCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.articles)
}

// fakePublisher records batches; with block set it waits for ctx to end.
type fakePublisher struct {
	batches     int
	events      []ports.ArticleIngested
	err         error
	block       bool
	hadDeadline bool
}

func (f *fakePublisher) PublishArticlesIngested(ctx context.Context, events []ports.ArticleIngested) error {
	f.batches++
	_, f.hadDeadline = ctx.Deadline()
	if f.block {
		<-ctx.Done()
		return ctx.Err()
	}
	f.events = append(f.events, events...)
	return f.err
}
