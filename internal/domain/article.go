package domain

import "time"

// PlaceholderSummary is stored when a headline arrives without a description.
const PlaceholderSummary = "No summary provided"

// Article is a single headline linked to exactly one Outlet.
type Article struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	Summary   string    `json:"summary"`
	OutletID  int64     `json:"outlet_id"`
	Category  string    `json:"category"`
	CreatedAt time.Time `json:"created_at"`
}

// FeedArticle is an Article joined with the outlet fields the feed displays.
type FeedArticle struct {
	Article
	OutletName string `json:"outlet_name"`
	OutletBias string `json:"outlet_bias"`
}

// Headline is a candidate record returned by the external headline feed.
type Headline struct {
	Title       string
	URL         string
	Description string
	SourceName  string
}

// NewArticle carries the fields required to insert an Article.
type NewArticle struct {
	Title    string
	URL      string
	Summary  string
	OutletID int64
	Category string
}
