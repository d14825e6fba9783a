package domain

import "errors"

var (
	// ErrArticleNotFound signals a missing article.
	ErrArticleNotFound = errors.New("article not found")
	// ErrInvalidArticle signals an article that failed validation.
	ErrInvalidArticle = errors.New("invalid article")
	// ErrInvalidRequest signals a malformed recommendation request.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrEmptyVocabulary signals that the corpus produced no terms.
	ErrEmptyVocabulary = errors.New("empty vocabulary")
	// ErrStorageUnavailable signals a failing article store.
	ErrStorageUnavailable = errors.New("storage unavailable")
)
