package article

import (
	"time"

	domart "github.com/kailas-cloud/newsrec/internal/domain/article"
)

// Hash field names of an article record.
const (
	fieldCategory  = "category"
	fieldTitle     = "title"
	fieldSummary   = "summary"
	fieldContent   = "content"
	fieldCreatedAt = "created_at"
)

// buildHashFields converts a domain Article into a flat map[string]string for HSET.
func buildHashFields(a *domart.Article) map[string]string {
	return map[string]string{
		fieldCategory:  a.Category(),
		fieldTitle:     a.Title(),
		fieldSummary:   a.Summary(),
		fieldContent:   a.Content(),
		fieldCreatedAt: a.CreatedAt().UTC().Format(time.RFC3339Nano),
	}
}

// parseHashFields converts a flat hash map back into a domain Article.
// An unparsable timestamp hydrates as the zero time.
func parseHashFields(id string, m map[string]string) domart.Article {
	createdAt, _ := time.Parse(time.RFC3339Nano, m[fieldCreatedAt])
	return domart.Reconstruct(
		id,
		m[fieldCategory],
		m[fieldTitle],
		m[fieldSummary],
		m[fieldContent],
		createdAt,
	)
}
