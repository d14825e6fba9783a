package article

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	domart "github.com/kailas-cloud/newsrec/internal/domain/article"
)

// Service handles article CRUD. It is the corpus supplier for recommendations.
type Service struct {
	repo   Repository
	logger *zap.Logger
}

// New creates an article service.
func New(repo Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, logger: logger}
}

// Upsert creates or updates an article. Returns true if the article was created.
func (s *Service) Upsert(ctx context.Context, a *domart.Article) (bool, error) {
	created, err := s.repo.Upsert(ctx, a)
	if err != nil {
		return false, fmt.Errorf("upsert article: %w", err)
	}
	s.logger.Debug("Article stored",
		zap.String("article_id", a.ID()),
		zap.String("category", a.Category()),
		zap.Bool("created", created),
	)
	return created, nil
}

// Get retrieves an article by ID.
func (s *Service) Get(ctx context.Context, id string) (domart.Article, error) {
	a, err := s.repo.Get(ctx, id)
	if err != nil {
		return domart.Article{}, fmt.Errorf("get article: %w", err)
	}
	return a, nil
}

// Delete removes an article.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete article: %w", err)
	}
	return nil
}

// ListByCategory returns every article of a category, newest first.
func (s *Service) ListByCategory(ctx context.Context, category string) ([]domart.Article, error) {
	arts, err := s.repo.ListByCategory(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("list category %s: %w", category, err)
	}
	return arts, nil
}
