package article

import (
	"context"

	domart "github.com/kailas-cloud/newsrec/internal/domain/article"
)

// Repository defines the storage contract for articles.
type Repository interface {
	Upsert(ctx context.Context, a *domart.Article) (created bool, err error)
	Get(ctx context.Context, id string) (domart.Article, error)
	Delete(ctx context.Context, id string) error
	ListByCategory(ctx context.Context, category string) ([]domart.Article, error)
}
