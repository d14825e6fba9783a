// Package chi exposes the article store and related-article ranking over HTTP.
package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/newsrec/internal/domain"
	"github.com/kailas-cloud/newsrec/internal/domain/recommendation"
	"github.com/kailas-cloud/newsrec/internal/logger"
	articleuc "github.com/kailas-cloud/newsrec/internal/usecase/article"
	healthuc "github.com/kailas-cloud/newsrec/internal/usecase/health"
	recommenduc "github.com/kailas-cloud/newsrec/internal/usecase/recommend"
)

// maxBodyBytes bounds request bodies; a full article body is at most 512 KiB.
const maxBodyBytes = 4 << 20

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server holds the HTTP handlers.
type Server struct {
	articles      *articleuc.Service
	recommend     *recommenduc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	validate      *validator.Validate
	defaultTopN   int
	maxTopN       int
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	articles *articleuc.Service,
	recommend *recommenduc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		articles:    articles,
		recommend:   recommend,
		health:      health,
		logger:      logger,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
		defaultTopN: recommenduc.DefaultTopN,
		maxTopN:     50,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrArticleNotFound, http.StatusNotFound, CodeArticleNotFound),
		sentinelHandler(domain.ErrInvalidArticle, http.StatusBadRequest, CodeValidationFailed),
		sentinelHandler(domain.ErrInvalidRequest, http.StatusBadRequest, CodeValidationFailed),
		sentinelHandler(domain.ErrStorageUnavailable, http.StatusServiceUnavailable, CodeServiceUnavailable),
	}
	return s
}

// WithTopN sets the default and maximum number of related articles per request.
func (s *Server) WithTopN(defaultTopN, maxTopN int) *Server {
	if maxTopN > 0 {
		s.maxTopN = maxTopN
	}
	if defaultTopN > 0 && defaultTopN <= s.maxTopN {
		s.defaultTopN = defaultTopN
	}
	return s
}

// Register mounts all routes on r.
func (s *Server) Register(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/articles", s.CreateArticle)
		r.Put("/articles/{id}", s.UpsertArticle)
		r.Get("/articles/{id}", s.GetArticle)
		r.Delete("/articles/{id}", s.DeleteArticle)
		r.Get("/articles/{id}/related", s.RelatedArticles)
		r.Get("/categories/{category}/articles", s.ListCategory)
		r.Post("/recommend", s.Recommend)
	})
}

// CreateArticle handles POST /api/v1/articles. The server assigns the ID.
func (s *Server) CreateArticle(w http.ResponseWriter, r *http.Request) {
	s.storeArticle(w, r, uuid.NewString())
}

// UpsertArticle handles PUT /api/v1/articles/{id}.
func (s *Server) UpsertArticle(w http.ResponseWriter, r *http.Request) {
	s.storeArticle(w, r, chi.URLParam(r, "id"))
}

func (s *Server) storeArticle(w http.ResponseWriter, r *http.Request, id string) {
	var req ArticleRequest
	if !s.decode(w, r, &req) {
		return
	}

	a, err := articleFromRequest(id, req)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, err.Error())
		return
	}

	created, err := s.articles.Upsert(r.Context(), &a)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
		w.Header().Set("Location", "/api/v1/articles/"+a.ID())
	}
	writeJSON(w, status, articleToResponse(&a, true))
}

// GetArticle handles GET /api/v1/articles/{id}.
func (s *Server) GetArticle(w http.ResponseWriter, r *http.Request) {
	a, err := s.articles.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, articleToResponse(&a, true))
}

// DeleteArticle handles DELETE /api/v1/articles/{id}.
func (s *Server) DeleteArticle(w http.ResponseWriter, r *http.Request) {
	if err := s.articles.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListCategory handles GET /api/v1/categories/{category}/articles.
func (s *Server) ListCategory(w http.ResponseWriter, r *http.Request) {
	arts, err := s.articles.ListByCategory(r.Context(), chi.URLParam(r, "category"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	items := make([]ArticleResponse, len(arts))
	for i := range arts {
		items[i] = articleToResponse(&arts[i], false)
	}
	writeJSON(w, http.StatusOK, ArticleListResponse{Items: items, Count: len(items)})
}

// RelatedArticles handles GET /api/v1/articles/{id}/related?limit=N.
// Any outcome other than a missing article renders as 200; failures look like "no related news".
func (s *Server) RelatedArticles(w http.ResponseWriter, r *http.Request) {
	topN, err := s.parseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, err.Error())
		return
	}

	id := chi.URLParam(r, "id")
	out, err := s.recommend.RelatedTo(r.Context(), id, topN)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	if out.Status() == recommendation.StatusFailed {
		logger.FromContext(r.Context()).Warn("Related articles degraded to empty",
			zap.String("article_id", id),
			zap.String("reason", string(out.Reason())),
			zap.Error(out.Err()),
		)
	}

	items := make([]RelatedItem, 0, len(out.Items()))
	for _, it := range out.Items() {
		a, err := s.articles.Get(r.Context(), it.ID)
		if err != nil {
			// Deleted between ranking and rendering.
			continue
		}
		items = append(items, RelatedItem{
			ID:       a.ID(),
			Category: a.Category(),
			Title:    a.Title(),
			Summary:  a.Summary(),
			Created:  a.CreatedAt(),
			Score:    it.Score,
		})
	}

	writeJSON(w, http.StatusOK, RelatedResponse{Items: items, NoRelatedNews: len(items) == 0})
}

// Recommend handles POST /api/v1/recommend: ranks a caller-supplied corpus.
func (s *Server) Recommend(w http.ResponseWriter, r *http.Request) {
	var req RecommendRequest
	if !s.decode(w, r, &req) {
		return
	}

	topN := s.defaultTopN
	if req.TopN != nil {
		topN = *req.TopN
	}
	if topN > s.maxTopN {
		writeError(w, http.StatusBadRequest, CodeValidationFailed,
			fmt.Sprintf("top_n must not exceed %d", s.maxTopN))
		return
	}

	query := recommendation.Document{ID: req.Query.ID, Text: req.Query.Text}
	out := s.recommend.Recommend(r.Context(), query, documentsFromRequest(req.Corpus), topN)
	if out.Status() == recommendation.StatusFailed {
		logger.FromContext(r.Context()).Error("Recommendation failed",
			zap.String("query_id", query.ID),
			zap.String("reason", string(out.Reason())),
			zap.Error(out.Err()),
		)
		writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, outcomeToResponse(out))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// parseLimit reads the related-articles limit. Empty means the default.
func (s *Server) parseLimit(raw string) (int, error) {
	if raw == "" {
		return s.defaultTopN, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > s.maxTopN {
		return 0, fmt.Errorf("limit must be an integer between 1 and %d", s.maxTopN)
	}
	return n, nil
}

// decode reads a JSON body into v and validates it. It writes the error response itself.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	if err := s.validate.Struct(v); err != nil {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, validationMessage(err))
		return false
	}
	return true
}

// validationMessage renders the first failing field as "field: rule".
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		if fe.Param() != "" {
			return fmt.Sprintf("%s: %s=%s", fe.Namespace(), fe.Tag(), fe.Param())
		}
		return fmt.Sprintf("%s: %s", fe.Namespace(), fe.Tag())
	}
	return err.Error()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrArticleNotFound,
		domain.ErrInvalidArticle,
		domain.ErrInvalidRequest,
		domain.ErrStorageUnavailable,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())
	log.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}
