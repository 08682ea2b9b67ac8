package storage

import (
	"strings"

	sq "github.com/Masterminds/squirrel"

	"newsobserver/internal/domain"
	"newsobserver/internal/ports"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var outletColumns = []string{"id", "name", "bias_label", "ownership_details"}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS outlets (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		bias_label TEXT NOT NULL DEFAULT 'Unknown',
		ownership_details TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS outlets_name_lower_key ON outlets (lower(name))`,
	`CREATE TABLE IF NOT EXISTS articles (
		id BIGSERIAL PRIMARY KEY,
		title TEXT NOT NULL,
		url TEXT NOT NULL UNIQUE,
		summary TEXT NOT NULL DEFAULT '',
		outlet_id BIGINT NOT NULL REFERENCES outlets(id),
		category TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS articles_created_at_idx ON articles (created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS articles_outlet_id_idx ON articles (outlet_id)`,
}

// escapeLike makes LIKE metacharacters match literally (backslash is the default escape).
func escapeLike(value string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(value)
}

// outletByNameQuery is a case-insensitive exact match; the oldest row wins.
func outletByNameQuery(name string) sq.SelectBuilder {
	return psql.Select(outletColumns...).
		From("outlets").
		Where(sq.ILike{"name": escapeLike(name)}).
		OrderBy("id").
		Limit(1)
}

func outletByIDQuery(id int64) sq.SelectBuilder {
	return psql.Select(outletColumns...).
		From("outlets").
		Where(sq.Eq{"id": id})
}

func listOutletsQuery() sq.SelectBuilder {
	return psql.Select(outletColumns...).
		From("outlets").
		OrderBy("name ASC", "id ASC")
}

func insertOutletQuery(outlet domain.Outlet) sq.InsertBuilder {
	return psql.Insert("outlets").
		Columns("name", "bias_label", "ownership_details").
		Values(outlet.Name, outlet.BiasLabel, outlet.OwnershipDetails).
		Suffix("RETURNING id")
}

// insertArticleQuery returns no row when the URL is already stored.
func insertArticleQuery(article domain.NewArticle) sq.InsertBuilder {
	return psql.Insert("articles").
		Columns("title", "url", "summary", "outlet_id", "category").
		Values(article.Title, article.URL, article.Summary, article.OutletID, article.Category).
		Suffix("ON CONFLICT (url) DO NOTHING RETURNING id, created_at")
}

func articleByURLQuery(url string) sq.SelectBuilder {
	return psql.Select("id", "title", "url", "summary", "outlet_id", "category", "created_at").
		From("articles").
		Where(sq.Eq{"url": url})
}

func deleteArticleQuery(id int64) sq.DeleteBuilder {
	return psql.Delete("articles").Where(sq.Eq{"id": id})
}

func feedQuery(filter ports.FeedFilter) sq.SelectBuilder {
	query := psql.Select(
		"a.id", "a.title", "a.url", "a.summary", "a.outlet_id", "a.category", "a.created_at",
		"o.name", "o.bias_label",
	).
		From("articles a").
		Join("outlets o ON o.id = a.outlet_id").
		OrderBy("a.created_at DESC", "a.id DESC")

	if filter.Bias != "" {
		query = query.Where(sq.Eq{"o.bias_label": filter.Bias})
	}
	if filter.Query != "" {
		query = query.Where(sq.ILike{"a.title": "%" + escapeLike(filter.Query) + "%"})
	}
	return query
}

func countByBiasQuery() sq.SelectBuilder {
	return psql.Select("o.bias_label", "COUNT(a.id)").
		From("articles a").
		Join("outlets o ON o.id = a.outlet_id").
		GroupBy("o.bias_label").
		OrderBy("o.bias_label")
}

func countArticlesQuery() sq.SelectBuilder {
	return psql.Select("COUNT(*)").From("articles")
}
