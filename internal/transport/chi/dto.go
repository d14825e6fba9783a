package chi

import (
	"time"

	domart "github.com/kailas-cloud/newsrec/internal/domain/article"
	"github.com/kailas-cloud/newsrec/internal/domain/recommendation"
)

// ErrorCode is a stable machine-readable error identifier.
type ErrorCode string

// Error codes returned in ErrorResponse.Code.
const (
	CodeBadRequest         ErrorCode = "bad_request"
	CodeValidationFailed   ErrorCode = "validation_failed"
	CodeUnauthorized       ErrorCode = "unauthorized"
	CodeArticleNotFound    ErrorCode = "article_not_found"
	CodeServiceUnavailable ErrorCode = "service_unavailable"
	CodeInternalError      ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// ArticleRequest is the body of POST /articles and PUT /articles/{id}.
type ArticleRequest struct {
	Category  string     `json:"category" validate:"required,max=256"`
	Title     string     `json:"title" validate:"required,max=512"`
	Summary   string     `json:"summary" validate:"max=4096"`
	Content   string     `json:"content"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

// ArticleResponse is a stored article.
type ArticleResponse struct {
	ID        string    `json:"id"`
	Category  string    `json:"category"`
	Title     string    `json:"title"`
	Summary   string    `json:"summary"`
	Content   string    `json:"content,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ArticleListResponse is the body of GET /categories/{category}/articles.
type ArticleListResponse struct {
	Items []ArticleResponse `json:"items"`
	Count int               `json:"count"`
}

// RelatedItem is one related article with its similarity score.
type RelatedItem struct {
	ID       string    `json:"id"`
	Category string    `json:"category"`
	Title    string    `json:"title"`
	Summary  string    `json:"summary"`
	Created  time.Time `json:"created_at"`
	Score    float64   `json:"score"`
}

// RelatedResponse is the body of GET /articles/{id}/related.
// NoRelatedNews is true whenever Items is empty, whatever the cause.
type RelatedResponse struct {
	Items         []RelatedItem `json:"items"`
	NoRelatedNews bool          `json:"no_related_news"`
}

// DocumentRequest is one document of a stateless ranking request.
type DocumentRequest struct {
	ID   string `json:"id" validate:"required,max=256"`
	Text string `json:"text"`
}

// RecommendRequest is the body of POST /recommend.
type RecommendRequest struct {
	Query  DocumentRequest   `json:"query" validate:"required"`
	Corpus []DocumentRequest `json:"corpus" validate:"dive"`
	TopN   *int              `json:"top_n,omitempty"`
}

// ScoredItem is one ranked corpus document.
type ScoredItem struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"`
}

// RecommendResponse is the body of POST /recommend.
type RecommendResponse struct {
	Status string       `json:"status"`
	Reason string       `json:"reason,omitempty"`
	Items  []ScoredItem `json:"items"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func articleToResponse(a *domart.Article, withContent bool) ArticleResponse {
	resp := ArticleResponse{
		ID:        a.ID(),
		Category:  a.Category(),
		Title:     a.Title(),
		Summary:   a.Summary(),
		CreatedAt: a.CreatedAt(),
	}
	if withContent {
		resp.Content = a.Content()
	}
	return resp
}

func articleFromRequest(id string, req ArticleRequest) (domart.Article, error) {
	var createdAt time.Time
	if req.CreatedAt != nil {
		createdAt = *req.CreatedAt
	}
	return domart.New(id, req.Category, req.Title, req.Summary, req.Content, createdAt)
}

func documentsFromRequest(in []DocumentRequest) []recommendation.Document {
	out := make([]recommendation.Document, len(in))
	for i, d := range in {
		out[i] = recommendation.Document{ID: d.ID, Text: d.Text}
	}
	return out
}

func outcomeToResponse(out recommendation.Outcome) RecommendResponse {
	items := make([]ScoredItem, len(out.Items()))
	for i, it := range out.Items() {
		items[i] = ScoredItem{ID: it.ID, Score: it.Score}
	}
	return RecommendResponse{
		Status: string(out.Status()),
		Reason: string(out.Reason()),
		Items:  items,
	}
}
