package recommend

import (
	"context"

	domart "github.com/kailas-cloud/newsrec/internal/domain/article"
)

// ArticleReader supplies the query article and its same-category candidates.
type ArticleReader interface {
	Get(ctx context.Context, id string) (domart.Article, error)
	ListByCategory(ctx context.Context, category string) ([]domart.Article, error)
}
