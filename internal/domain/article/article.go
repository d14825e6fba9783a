package article

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/kailas-cloud/newsrec/internal/domain"
	"github.com/kailas-cloud/newsrec/internal/domain/recommendation"
)

var (
	idRegex       = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	categoryRegex = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)
)

const (
	// MaxTitleSize is the maximum title size in bytes.
	MaxTitleSize = 512
	// MaxSummarySize is the maximum short description size in bytes.
	MaxSummarySize = 4096
	// MaxContentSize is the maximum body size in bytes.
	MaxContentSize = 512 * 1024
)

// Article is a published news post (immutable value object).
type Article struct {
	id        string
	category  string
	title     string
	summary   string
	content   string
	createdAt time.Time
}

// New validates and creates an Article.
// ID and category: ^[a-zA-Z0-9_-]+$, 1-256 chars. Title is required, the rest may be empty.
func New(id, category, title, summary, content string, createdAt time.Time) (Article, error) {
	if err := validateKey("article ID", id, idRegex); err != nil {
		return Article{}, err
	}
	if err := validateKey("category", category, categoryRegex); err != nil {
		return Article{}, err
	}
	if strings.TrimSpace(title) == "" {
		return Article{}, fmt.Errorf("%w: title is required", domain.ErrInvalidArticle)
	}
	if len(title) > MaxTitleSize {
		return Article{}, fmt.Errorf("%w: title too large (max %d bytes)", domain.ErrInvalidArticle, MaxTitleSize)
	}
	if len(summary) > MaxSummarySize {
		return Article{}, fmt.Errorf("%w: summary too large (max %d bytes)", domain.ErrInvalidArticle, MaxSummarySize)
	}
	if len(content) > MaxContentSize {
		return Article{}, fmt.Errorf("%w: content too large (max %d bytes)", domain.ErrInvalidArticle, MaxContentSize)
	}
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	return Article{
		id:        id,
		category:  category,
		title:     title,
		summary:   summary,
		content:   content,
		createdAt: createdAt.UTC(),
	}, nil
}

// Reconstruct creates an Article without validation (storage hydration).
func Reconstruct(id, category, title, summary, content string, createdAt time.Time) Article {
	return Article{
		id: id, category: category, title: title,
		summary: summary, content: content, createdAt: createdAt,
	}
}

// ID returns the article identifier.
func (a *Article) ID() string { return a.id }

// Category returns the category the article belongs to.
func (a *Article) Category() string { return a.category }

// Title returns the headline.
func (a *Article) Title() string { return a.title }

// Summary returns the short description.
func (a *Article) Summary() string { return a.summary }

// Content returns the body.
func (a *Article) Content() string { return a.content }

// CreatedAt returns the publication time.
func (a *Article) CreatedAt() time.Time { return a.createdAt }

// Text joins title, summary and body into the unit of comparison.
func (a *Article) Text() string {
	return a.title + " " + a.summary + " " + a.content
}

// Document projects the article into a recommendation document.
func (a *Article) Document() recommendation.Document {
	return recommendation.Document{ID: a.id, Text: a.Text()}
}

// Documents projects a slice of articles, preserving order.
func Documents(articles []Article) []recommendation.Document {
	docs := make([]recommendation.Document, len(articles))
	for i := range articles {
		docs[i] = articles[i].Document()
	}
	return docs
}

// SortNewestFirst orders articles by creation time descending, then ID ascending.
// This is the corpus order every store returns.
func SortNewestFirst(articles []Article) {
	sort.SliceStable(articles, func(i, j int) bool {
		a, b := &articles[i], &articles[j]
		if !a.createdAt.Equal(b.createdAt) {
			return a.createdAt.After(b.createdAt)
		}
		return a.id < b.id
	})
}

func validateKey(name, v string, re *regexp.Regexp) error {
	if v == "" {
		return fmt.Errorf("%w: %s is required", domain.ErrInvalidArticle, name)
	}
	if len(v) > 256 {
		return fmt.Errorf("%w: %s too long (max 256)", domain.ErrInvalidArticle, name)
	}
	if !re.MatchString(v) {
		return fmt.Errorf("%w: %s has invalid characters", domain.ErrInvalidArticle, name)
	}
	return nil
}
