package newsrec

import "github.com/kailas-cloud/newsrec/internal/domain"

// Sentinel errors returned by Client, usable with errors.Is.
var (
	ErrArticleNotFound = domain.ErrArticleNotFound
	ErrInvalidArticle  = domain.ErrInvalidArticle
)
