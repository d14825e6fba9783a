package newsrec

import (
	"context"
	"errors"
	"fmt"
	"time"

	dbRedis "github.com/kailas-cloud/newsrec/internal/db/redis"
	domart "github.com/kailas-cloud/newsrec/internal/domain/article"
	articlerepo "github.com/kailas-cloud/newsrec/internal/repository/article"
	"github.com/kailas-cloud/newsrec/internal/repository/articlesql"
	articleuc "github.com/kailas-cloud/newsrec/internal/usecase/article"
	recommenduc "github.com/kailas-cloud/newsrec/internal/usecase/recommend"
)

const defaultReadinessTimeout = 10 * time.Second

// backend is an opened article store.
type backend struct {
	repo  articleuc.Repository
	ping  func(ctx context.Context) error
	close func()
}

// Client is the store-backed entry point: article CRUD plus related-article ranking.
type Client struct {
	backend  backend
	articles *articleuc.Service
	rec      *recommenduc.Service
}

// New opens the configured article store and wires the services.
func New(opts ...Option) (*Client, error) {
	cfg := buildConfig(opts)

	b, err := openBackend(cfg)
	if err != nil {
		return nil, err
	}
	return wireClient(b, cfg), nil
}

func openBackend(cfg *config) (backend, error) {
	switch cfg.driver {
	case "valkey", "redis":
		if len(cfg.addrs) == 0 || cfg.addrs[0] == "" {
			return backend{}, errors.New("newsrec: database address required")
		}
		s, err := dbRedis.NewStore(dbRedis.Config{Addrs: cfg.addrs, Password: cfg.password})
		if err != nil {
			return backend{}, fmt.Errorf("newsrec: create %s store: %w", cfg.driver, err)
		}
		if err := s.WaitForReady(context.Background(), defaultReadinessTimeout); err != nil {
			s.Close()
			return backend{}, fmt.Errorf("newsrec: database not ready: %w", err)
		}
		return backend{
			repo:  articlerepo.New(s, cfg.keyPrefix),
			ping:  s.Ping,
			close: s.Close,
		}, nil
	case "sqlite":
		r, err := articlesql.Open(cfg.sqlitePath)
		if err != nil {
			return backend{}, fmt.Errorf("newsrec: open sqlite store: %w", err)
		}
		return backend{
			repo:  r,
			ping:  r.Ping,
			close: func() { _ = r.Close() },
		}, nil
	case "":
		return backend{}, errors.New("newsrec: article store required (use WithValkey, WithRedis or WithSQLite)")
	default:
		return backend{}, fmt.Errorf("newsrec: unknown driver %q", cfg.driver)
	}
}

func wireClient(b backend, cfg *config) *Client {
	articles := articleuc.New(b.repo, cfg.logger)
	return &Client{
		backend:  b,
		articles: articles,
		rec:      newRecommendService(cfg, articles),
	}
}

// Close releases all resources.
func (c *Client) Close() {
	if c.backend.close != nil {
		c.backend.close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.backend.ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Articles returns the article service.
func (c *Client) Articles() *ArticleService {
	return &ArticleService{svc: c.articles}
}

// Related ranks the same-category articles of articleID and returns at most topN.
// A missing article returns an error wrapping ErrArticleNotFound; every other
// problem surfaces as an empty or failed Result.
func (c *Client) Related(ctx context.Context, articleID string, topN int) (Result, error) {
	out, err := c.rec.RelatedTo(ctx, articleID, topN)
	if err != nil {
		return Result{}, fmt.Errorf("related: %w", err)
	}
	return resultFromOutcome(out), nil
}

// Article is a published news post.
type Article struct {
	ID        string
	Category  string
	Title     string
	Summary   string
	Content   string
	CreatedAt time.Time
}

func articleFromDomain(a *domart.Article) Article {
	return Article{
		ID:        a.ID(),
		Category:  a.Category(),
		Title:     a.Title(),
		Summary:   a.Summary(),
		Content:   a.Content(),
		CreatedAt: a.CreatedAt(),
	}
}

// ArticleService manages stored articles.
type ArticleService struct {
	svc *articleuc.Service
}

// Upsert validates and stores an article. Returns true if it was created.
// A zero CreatedAt is set to the current time.
func (s *ArticleService) Upsert(ctx context.Context, a Article) (bool, error) {
	d, err := domart.New(a.ID, a.Category, a.Title, a.Summary, a.Content, a.CreatedAt)
	if err != nil {
		return false, fmt.Errorf("upsert: %w", err)
	}
	created, err := s.svc.Upsert(ctx, &d)
	if err != nil {
		return false, fmt.Errorf("upsert: %w", err)
	}
	return created, nil
}

// Get returns an article by ID.
func (s *ArticleService) Get(ctx context.Context, id string) (Article, error) {
	d, err := s.svc.Get(ctx, id)
	if err != nil {
		return Article{}, fmt.Errorf("get: %w", err)
	}
	return articleFromDomain(&d), nil
}

// Delete removes an article.
func (s *ArticleService) Delete(ctx context.Context, id string) error {
	if err := s.svc.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	return nil
}

// ListByCategory returns every article of a category, newest first.
func (s *ArticleService) ListByCategory(ctx context.Context, category string) ([]Article, error) {
	ds, err := s.svc.ListByCategory(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	out := make([]Article, len(ds))
	for i := range ds {
		out[i] = articleFromDomain(&ds[i])
	}
	return out, nil
}
