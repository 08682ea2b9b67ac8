package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"newsobserver/internal/domain"
	"newsobserver/internal/logging"
	"newsobserver/internal/ports"
)

// CreateArticleInput is the manual post submitted by an admin.
type CreateArticleInput struct {
	Title    string `json:"title"`
	URL      string `json:"url"`
	Summary  string `json:"summary"`
	OutletID int64  `json:"outlet_id"`
	Category string `json:"category"`
}

// ArticleService implements the admin-only article mutations.
type ArticleService struct {
	outlets  ports.OutletRepository
	articles ports.ArticleRepository
	logger   *slog.Logger
}

// NewArticleService wires repositories for manual article management.
func NewArticleService(outlets ports.OutletRepository, articles ports.ArticleRepository, logger *slog.Logger) *ArticleService {
	return &ArticleService{
		outlets:  outlets,
		articles: articles,
		logger:   logging.Resolve(logger),
	}
}

// CreateArticle stores a manually posted article. Only admins may post.
func (s *ArticleService) CreateArticle(ctx context.Context, input CreateArticleInput, role domain.Role) (domain.Article, error) {
	if !role.IsAdmin() {
		return domain.Article{}, domain.ErrForbidden
	}
	input, err := normalizeInput(input)
	if err != nil {
		return domain.Article{}, err
	}

	if _, err := s.outlets.GetOutlet(ctx, input.OutletID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Article{}, domain.ErrOutletNotFound
		}
		return domain.Article{}, &StorageError{Op: "get outlet", Err: err}
	}

	stored, inserted, err := s.articles.InsertArticleIfAbsent(ctx, domain.NewArticle{
		Title:    input.Title,
		URL:      input.URL,
		Summary:  input.Summary,
		OutletID: input.OutletID,
		Category: input.Category,
	})
	if err != nil {
		return domain.Article{}, &StorageError{Op: "insert article", Err: err}
	}
	if !inserted {
		return domain.Article{}, domain.ErrDuplicateArticle
	}

	s.logger.Info("article posted", "article_id", stored.ID, "outlet_id", stored.OutletID)
	return stored, nil
}

// DeleteArticle removes an article by id. Only admins may delete.
func (s *ArticleService) DeleteArticle(ctx context.Context, id int64, role domain.Role) error {
	if !role.IsAdmin() {
		return domain.ErrForbidden
	}
	if id <= 0 {
		return domain.ErrNotFound
	}

	deleted, err := s.articles.DeleteArticle(ctx, id)
	if err != nil {
		return &StorageError{Op: "delete article", Err: err}
	}
	if !deleted {
		return domain.ErrNotFound
	}

	s.logger.Info("article deleted", "article_id", id)
	return nil
}

func normalizeInput(input CreateArticleInput) (CreateArticleInput, error) {
	input.Title = strings.TrimSpace(input.Title)
	input.URL = strings.TrimSpace(input.URL)
	input.Summary = strings.TrimSpace(input.Summary)
	input.Category = strings.TrimSpace(input.Category)

	switch {
	case input.Title == "":
		return input, fmt.Errorf("%w: title is required", domain.ErrInvalidArticle)
	case input.URL == "":
		return input, fmt.Errorf("%w: url is required", domain.ErrInvalidArticle)
	case input.Summary == "":
		return input, fmt.Errorf("%w: summary is required", domain.ErrInvalidArticle)
	case input.Category == "":
		return input, fmt.Errorf("%w: category is required", domain.ErrInvalidArticle)
	case input.OutletID <= 0:
		return input, fmt.Errorf("%w: outlet_id is required", domain.ErrInvalidArticle)
	}

	u, err := url.ParseRequestURI(input.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return input, fmt.Errorf("%w: url must be an absolute http(s) address", domain.ErrInvalidArticle)
	}
	return input, nil
}
