package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"newsobserver/internal/domain"
	"newsobserver/internal/ports"
)

const uniqueViolation = "23505"

// Options tune the connection pool.
type Options struct {
	MaxOpenConns int
	MaxIdleConns int
}

// PostgresRepository persists outlets and articles into Postgres.
type PostgresRepository struct {
	db *sql.DB
}

var (
	_ ports.OutletRepository  = (*PostgresRepository)(nil)
	_ ports.ArticleRepository = (*PostgresRepository)(nil)
	_ ports.FeedReader        = (*PostgresRepository)(nil)
)

// NewPostgresRepository wires a sql.DB implementation.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Open connects to Postgres through lib/pq and verifies the connection.
func Open(ctx context.Context, dsn string, opts Options) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		db.SetMaxIdleConns(opts.MaxIdleConns)
	}
	db.SetConnMaxIdleTime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// Ensure creates tables and indexes when missing.
func (r *PostgresRepository) Ensure(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// FindOutletByName matches the name case-insensitively and exactly.
func (r *PostgresRepository) FindOutletByName(ctx context.Context, name string) (domain.Outlet, bool, error) {
	query, args, err := outletByNameQuery(name).ToSql()
	if err != nil {
		return domain.Outlet{}, false, fmt.Errorf("build outlet lookup: %w", err)
	}

	outlet, err := scanOutlet(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Outlet{}, false, nil
	}
	if err != nil {
		return domain.Outlet{}, false, fmt.Errorf("query outlet by name: %w", err)
	}
	return outlet, true, nil
}

// CreateOutlet inserts an outlet. When a concurrent writer already created the
// same name, the existing row is returned.
func (r *PostgresRepository) CreateOutlet(ctx context.Context, outlet domain.Outlet) (domain.Outlet, error) {
	query, args, err := insertOutletQuery(outlet).ToSql()
	if err != nil {
		return domain.Outlet{}, fmt.Errorf("build outlet insert: %w", err)
	}

	err = r.db.QueryRowContext(ctx, query, args...).Scan(&outlet.ID)
	if isUniqueViolation(err) {
		existing, found, findErr := r.FindOutletByName(ctx, outlet.Name)
		if findErr != nil {
			return domain.Outlet{}, findErr
		}
		if found {
			return existing, nil
		}
	}
	if err != nil {
		return domain.Outlet{}, fmt.Errorf("insert outlet: %w", err)
	}
	return outlet, nil
}

// GetOutlet returns domain.ErrNotFound when no outlet has the id.
func (r *PostgresRepository) GetOutlet(ctx context.Context, id int64) (domain.Outlet, error) {
	query, args, err := outletByIDQuery(id).ToSql()
	if err != nil {
		return domain.Outlet{}, fmt.Errorf("build outlet get: %w", err)
	}

	outlet, err := scanOutlet(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Outlet{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Outlet{}, fmt.Errorf("query outlet: %w", err)
	}
	return outlet, nil
}

// ListOutlets returns every outlet ordered by name.
func (r *PostgresRepository) ListOutlets(ctx context.Context) ([]domain.Outlet, error) {
	query, args, err := listOutletsQuery().ToSql()
	if err != nil {
		return nil, fmt.Errorf("build outlet list: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query outlets: %w", err)
	}
	defer rows.Close()

	outlets := make([]domain.Outlet, 0)
	for rows.Next() {
		outlet, err := scanOutlet(rows)
		if err != nil {
			return nil, fmt.Errorf("scan outlet: %w", err)
		}
		outlets = append(outlets, outlet)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return outlets, nil
}

// InsertArticleIfAbsent relies on the url unique constraint. For an existing
// URL the stored row is returned untouched with inserted=false.
func (r *PostgresRepository) InsertArticleIfAbsent(ctx context.Context, article domain.NewArticle) (domain.Article, bool, error) {
	query, args, err := insertArticleQuery(article).ToSql()
	if err != nil {
		return domain.Article{}, false, fmt.Errorf("build article insert: %w", err)
	}

	stored := domain.Article{
		Title:    article.Title,
		URL:      article.URL,
		Summary:  article.Summary,
		OutletID: article.OutletID,
		Category: article.Category,
	}
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&stored.ID, &stored.CreatedAt)
	if err == nil {
		return stored, true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return domain.Article{}, false, fmt.Errorf("insert article: %w", err)
	}

	existing, err := r.articleByURL(ctx, article.URL)
	if err != nil {
		return domain.Article{}, false, err
	}
	return existing, false, nil
}

func (r *PostgresRepository) articleByURL(ctx context.Context, url string) (domain.Article, error) {
	query, args, err := articleByURLQuery(url).ToSql()
	if err != nil {
		return domain.Article{}, fmt.Errorf("build article lookup: %w", err)
	}

	var a domain.Article
	err = r.db.QueryRowContext(ctx, query, args...).
		Scan(&a.ID, &a.Title, &a.URL, &a.Summary, &a.OutletID, &a.Category, &a.CreatedAt)
	if err != nil {
		return domain.Article{}, fmt.Errorf("query article by url: %w", err)
	}
	return a, nil
}

// DeleteArticle reports whether a row was removed.
func (r *PostgresRepository) DeleteArticle(ctx context.Context, id int64) (bool, error) {
	query, args, err := deleteArticleQuery(id).ToSql()
	if err != nil {
		return false, fmt.Errorf("build article delete: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("delete article: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// ListFeedArticles returns articles joined with their outlet, newest first.
func (r *PostgresRepository) ListFeedArticles(ctx context.Context, filter ports.FeedFilter) ([]domain.FeedArticle, error) {
	query, args, err := feedQuery(filter).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build feed query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query feed: %w", err)
	}
	defer rows.Close()

	articles := make([]domain.FeedArticle, 0)
	for rows.Next() {
		var a domain.FeedArticle
		if err := rows.Scan(
			&a.ID, &a.Title, &a.URL, &a.Summary, &a.OutletID, &a.Category, &a.CreatedAt,
			&a.OutletName, &a.OutletBias,
		); err != nil {
			return nil, fmt.Errorf("scan feed article: %w", err)
		}
		articles = append(articles, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return articles, nil
}

// CountByBias groups article counts by the bias label of their outlet.
func (r *PostgresRepository) CountByBias(ctx context.Context) ([]domain.BiasCount, error) {
	query, args, err := countByBiasQuery().ToSql()
	if err != nil {
		return nil, fmt.Errorf("build bias count: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query bias counts: %w", err)
	}
	defer rows.Close()

	var counts []domain.BiasCount
	for rows.Next() {
		var c domain.BiasCount
		if err := rows.Scan(&c.Label, &c.Total); err != nil {
			return nil, fmt.Errorf("scan bias count: %w", err)
		}
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return counts, nil
}

// CountArticles returns the total number of stored articles.
func (r *PostgresRepository) CountArticles(ctx context.Context) (int64, error) {
	query, args, err := countArticlesQuery().ToSql()
	if err != nil {
		return 0, fmt.Errorf("build article count: %w", err)
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count articles: %w", err)
	}
	return total, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOutlet(row rowScanner) (domain.Outlet, error) {
	var o domain.Outlet
	err := row.Scan(&o.ID, &o.Name, &o.BiasLabel, &o.OwnershipDetails)
	return o, err
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
