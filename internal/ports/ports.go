package ports

import (
	"context"
	"time"

	"newsobserver/internal/domain"
)

// HeadlineSource pulls the current top headlines from the external feed.
type HeadlineSource interface {
	TopHeadlines(ctx context.Context) ([]domain.Headline, error)
}

// OutletRepository resolves and creates outlets.
type OutletRepository interface {
	// FindOutletByName performs a case-insensitive exact match and returns the
	// first row found. found is false when no outlet matches.
	FindOutletByName(ctx context.Context, name string) (outlet domain.Outlet, found bool, err error)
	// CreateOutlet inserts an outlet and returns it with its identity assigned.
	CreateOutlet(ctx context.Context, outlet domain.Outlet) (domain.Outlet, error)
	GetOutlet(ctx context.Context, id int64) (domain.Outlet, error)
	ListOutlets(ctx context.Context) ([]domain.Outlet, error)
}

// ArticleRepository stores articles keyed by their unique URL.
type ArticleRepository interface {
	// InsertArticleIfAbsent inserts the article unless its URL is already stored.
	// inserted is false when the URL existed; no row is changed in that case.
	InsertArticleIfAbsent(ctx context.Context, article domain.NewArticle) (stored domain.Article, inserted bool, err error)
	DeleteArticle(ctx context.Context, id int64) (deleted bool, err error)
}

// FeedFilter narrows the feed listing. Empty fields are ignored.
type FeedFilter struct {
	Bias  string
	Query string
}

// FeedReader serves the read side of the feed page.
type FeedReader interface {
	ListFeedArticles(ctx context.Context, filter FeedFilter) ([]domain.FeedArticle, error)
	CountByBias(ctx context.Context) ([]domain.BiasCount, error)
	CountArticles(ctx context.Context) (int64, error)
}

// ArticleIngested is emitted after ingestion stores a new article.
type ArticleIngested struct {
	ArticleID  int64     `json:"id"`
	Title      string    `json:"title"`
	URL        string    `json:"url"`
	OutletID   int64     `json:"outlet_id"`
	OutletName string    `json:"outlet_name"`
	Category   string    `json:"category"`
	IngestedAt time.Time `json:"ingested_at"`
}

// ArticlePublisher forwards ingestion events to downstream consumers in one write.
type ArticlePublisher interface {
	PublishArticlesIngested(ctx context.Context, events []ArticleIngested) error
}
