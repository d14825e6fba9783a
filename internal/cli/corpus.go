package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/kailas-cloud/newsrec/internal/domain"
	domart "github.com/kailas-cloud/newsrec/internal/domain/article"
)

// corpusEntry is one article of a corpus file.
type corpusEntry struct {
	ID        string    `json:"id"`
	Category  string    `json:"category"`
	Title     string    `json:"title"`
	Summary   string    `json:"summary"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// corpus is an in-memory article set loaded from a file. It serves as the
// ArticleReader for RelatedTo.
type corpus struct {
	articles []domart.Article
	byID     map[string]int
}

// loadCorpus reads a JSON array of articles from path, or from stdin when path is "-".
// Every article is validated; the first invalid one aborts the load.
func loadCorpus(path string, stdin io.Reader) (*corpus, error) {
	var r io.Reader
	switch path {
	case "":
		return nil, errors.New("--corpus is required")
	case "-":
		r = stdin
	default:
		f, err := os.Open(filepath.Clean(path))
		if err != nil {
			return nil, fmt.Errorf("open corpus: %w", err)
		}
		defer func() { _ = f.Close() }()
		r = f
	}

	var entries []corpusEntry
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return nil, fmt.Errorf("decode corpus: %w", err)
	}

	c := &corpus{
		articles: make([]domart.Article, 0, len(entries)),
		byID:     make(map[string]int, len(entries)),
	}
	for i, e := range entries {
		if _, dup := c.byID[e.ID]; dup {
			return nil, fmt.Errorf("corpus entry %d: duplicate id %q: %w", i, e.ID, domain.ErrInvalidArticle)
		}
		createdAt := e.CreatedAt
		if createdAt.IsZero() {
			// Keep file order for undated entries: earlier entries count as newer.
			createdAt = time.Unix(0, 0).Add(time.Duration(len(entries)-i) * time.Second)
		}
		a, err := domart.New(e.ID, e.Category, e.Title, e.Summary, e.Content, createdAt)
		if err != nil {
			return nil, fmt.Errorf("corpus entry %d: %w", i, err)
		}
		c.byID[e.ID] = len(c.articles)
		c.articles = append(c.articles, a)
	}
	domart.SortNewestFirst(c.articles)
	for i := range c.articles {
		c.byID[c.articles[i].ID()] = i
	}
	return c, nil
}

// Get returns an article by ID.
func (c *corpus) Get(_ context.Context, id string) (domart.Article, error) {
	i, ok := c.byID[id]
	if !ok {
		return domart.Article{}, fmt.Errorf("article %q: %w", id, domain.ErrArticleNotFound)
	}
	return c.articles[i], nil
}

// ListByCategory returns the articles of category, newest first.
// An empty category selects every article.
func (c *corpus) ListByCategory(_ context.Context, category string) ([]domart.Article, error) {
	out := make([]domart.Article, 0, len(c.articles))
	for _, a := range c.articles {
		if category == "" || a.Category() == category {
			out = append(out, a)
		}
	}
	return out, nil
}
