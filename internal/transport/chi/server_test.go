package chi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/kailas-cloud/newsrec/internal/domain"
	domart "github.com/kailas-cloud/newsrec/internal/domain/article"
	"github.com/kailas-cloud/newsrec/internal/textvec"
	articleuc "github.com/kailas-cloud/newsrec/internal/usecase/article"
	healthuc "github.com/kailas-cloud/newsrec/internal/usecase/health"
	recommenduc "github.com/kailas-cloud/newsrec/internal/usecase/recommend"
)

// --- Test doubles ---

type memRepo struct {
	mu      sync.Mutex
	byID    map[string]domart.Article
	listErr error
	pingErr error
}

func newMemRepo() *memRepo {
	return &memRepo{byID: make(map[string]domart.Article)}
}

func (m *memRepo) Upsert(_ context.Context, a *domart.Article) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, exists := m.byID[a.ID()]
	m.byID[a.ID()] = *a
	return !exists, nil
}

func (m *memRepo) Get(_ context.Context, id string) (domart.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.byID[id]
	if !ok {
		return domart.Article{}, domain.ErrArticleNotFound
	}
	return a, nil
}

func (m *memRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return domain.ErrArticleNotFound
	}
	delete(m.byID, id)
	return nil
}

func (m *memRepo) ListByCategory(_ context.Context, category string) ([]domart.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := []domart.Article{}
	for _, a := range m.byID {
		if a.Category() == category {
			out = append(out, a)
		}
	}
	domart.SortNewestFirst(out)
	return out, nil
}

func (m *memRepo) Ping(_ context.Context) error { return m.pingErr }

func newTestServer(t *testing.T) (http.Handler, *memRepo) {
	t.Helper()
	repo := newMemRepo()
	articles := articleuc.New(repo, nil)
	recommend := recommenduc.New(textvec.NewTFIDF(), articles, nil)
	health := healthuc.New(repo, recommend)

	srv := NewServer(articles, recommend, health, nil).WithTopN(4, 10)
	r := chi.NewRouter()
	srv.Register(r)
	return r, repo
}

func seed(t *testing.T, repo *memRepo, id, category, title, summary string, age time.Duration) {
	t.Helper()
	a, err := domart.New(id, category, title, summary, "", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC).Add(-age))
	if err != nil {
		t.Fatalf("domart.New: %v", err)
	}
	if _, err := repo.Upsert(context.Background(), &a); err != nil {
		t.Fatal(err)
	}
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rr.Body).Decode(&v); err != nil {
		t.Fatalf("decode body %q: %v", rr.Body.String(), err)
	}
	return v
}

// --- Articles ---

func TestUpsertArticle_CreateThenUpdate(t *testing.T) {
	h, _ := newTestServer(t)
	body := ArticleRequest{Category: "tech", Title: "Go release", Summary: "New version"}

	rr := do(t, h, http.MethodPut, "/api/v1/articles/a1", body)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create: got %d, body %s", rr.Code, rr.Body.String())
	}
	if loc := rr.Header().Get("Location"); loc != "/api/v1/articles/a1" {
		t.Errorf("Location = %q", loc)
	}

	rr = do(t, h, http.MethodPut, "/api/v1/articles/a1", body)
	if rr.Code != http.StatusOK {
		t.Fatalf("update: got %d", rr.Code)
	}
	resp := decodeBody[ArticleResponse](t, rr)
	if resp.ID != "a1" || resp.Title != "Go release" {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestCreateArticle_AssignsUUID(t *testing.T) {
	h, repo := newTestServer(t)

	rr := do(t, h, http.MethodPost, "/api/v1/articles", ArticleRequest{Category: "tech", Title: "Hello"})
	if rr.Code != http.StatusCreated {
		t.Fatalf("got %d, body %s", rr.Code, rr.Body.String())
	}
	resp := decodeBody[ArticleResponse](t, rr)
	if _, err := uuid.Parse(resp.ID); err != nil {
		t.Errorf("id %q is not a UUID: %v", resp.ID, err)
	}
	if _, err := repo.Get(context.Background(), resp.ID); err != nil {
		t.Errorf("article not stored: %v", err)
	}
}

func TestUpsertArticle_BadInput(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		body     any
		wantCode ErrorCode
	}{
		{"missing title", "/api/v1/articles/a1", ArticleRequest{Category: "tech"}, CodeValidationFailed},
		{"missing category", "/api/v1/articles/a1", ArticleRequest{Title: "t"}, CodeValidationFailed},
		{"malformed json", "/api/v1/articles/a1", `{"title":`, CodeBadRequest},
		{"unknown field", "/api/v1/articles/a1", `{"title":"t","category":"c","tags":[]}`, CodeBadRequest},
		{"bad id", "/api/v1/articles/a%20b", ArticleRequest{Category: "tech", Title: "t"}, CodeValidationFailed},
		{"bad category", "/api/v1/articles/a1", ArticleRequest{Category: "te ch", Title: "t"}, CodeValidationFailed},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h, _ := newTestServer(t)
			rr := do(t, h, http.MethodPut, tc.path, tc.body)
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("got %d, want 400 (body %s)", rr.Code, rr.Body.String())
			}
			if resp := decodeBody[ErrorResponse](t, rr); resp.Code != tc.wantCode {
				t.Errorf("code = %s, want %s", resp.Code, tc.wantCode)
			}
		})
	}
}

func TestGetArticle_NotFound(t *testing.T) {
	h, _ := newTestServer(t)

	rr := do(t, h, http.MethodGet, "/api/v1/articles/missing", nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("got %d, want 404", rr.Code)
	}
	resp := decodeBody[ErrorResponse](t, rr)
	if resp.Code != CodeArticleNotFound || resp.Message != domain.ErrArticleNotFound.Error() {
		t.Errorf("unexpected error: %+v", resp)
	}
}

func TestDeleteArticle(t *testing.T) {
	h, repo := newTestServer(t)
	seed(t, repo, "a1", "tech", "Title", "", 0)

	if rr := do(t, h, http.MethodDelete, "/api/v1/articles/a1", nil); rr.Code != http.StatusNoContent {
		t.Fatalf("delete: got %d", rr.Code)
	}
	if rr := do(t, h, http.MethodDelete, "/api/v1/articles/a1", nil); rr.Code != http.StatusNotFound {
		t.Fatalf("second delete: got %d", rr.Code)
	}
}

func TestListCategory(t *testing.T) {
	h, repo := newTestServer(t)
	seed(t, repo, "old", "tech", "Old", "", 2*time.Hour)
	seed(t, repo, "new", "tech", "New", "", 0)
	seed(t, repo, "s1", "sport", "Sport", "", 0)

	rr := do(t, h, http.MethodGet, "/api/v1/categories/tech/articles", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("got %d", rr.Code)
	}
	resp := decodeBody[ArticleListResponse](t, rr)
	if resp.Count != 2 || resp.Items[0].ID != "new" || resp.Items[1].ID != "old" {
		t.Errorf("unexpected list: %+v", resp)
	}
}

// --- Related ---

func seedNews(t *testing.T, repo *memRepo) {
	t.Helper()
	seed(t, repo, "q", "economy", "Central bank raises interest rates", "Inflation pressure persists", 0)
	seed(t, repo, "r1", "economy", "Interest rates and inflation", "Central bank outlook", time.Hour)
	seed(t, repo, "r2", "economy", "Stock markets rally", "Investors cheer earnings", 2*time.Hour)
	seed(t, repo, "r3", "economy", "Bank lending slows", "Credit conditions tighten", 3*time.Hour)
	seed(t, repo, "s1", "sport", "Central bank cup final", "Interest rates football club", 0)
}

func TestRelatedArticles(t *testing.T) {
	h, repo := newTestServer(t)
	seedNews(t, repo)

	rr := do(t, h, http.MethodGet, "/api/v1/articles/q/related", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("got %d, body %s", rr.Code, rr.Body.String())
	}
	resp := decodeBody[RelatedResponse](t, rr)
	if resp.NoRelatedNews {
		t.Fatal("expected related news")
	}
	if len(resp.Items) != 3 {
		t.Fatalf("items = %d, want 3", len(resp.Items))
	}
	if resp.Items[0].ID != "r1" {
		t.Errorf("top item = %s, want r1", resp.Items[0].ID)
	}
	for _, it := range resp.Items {
		if it.ID == "q" || it.Category != "economy" {
			t.Errorf("unexpected item %+v", it)
		}
	}
	for i := 1; i < len(resp.Items); i++ {
		if resp.Items[i].Score > resp.Items[i-1].Score {
			t.Errorf("not sorted at %d", i)
		}
	}
}

func TestRelatedArticles_Limit(t *testing.T) {
	h, repo := newTestServer(t)
	seedNews(t, repo)

	rr := do(t, h, http.MethodGet, "/api/v1/articles/q/related?limit=1", nil)
	resp := decodeBody[RelatedResponse](t, rr)
	if len(resp.Items) != 1 || resp.Items[0].ID != "r1" {
		t.Errorf("unexpected items: %+v", resp.Items)
	}

	for _, bad := range []string{"0", "-2", "abc", "11"} {
		rr := do(t, h, http.MethodGet, "/api/v1/articles/q/related?limit="+bad, nil)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("limit=%s: got %d, want 400", bad, rr.Code)
		}
	}
}

func TestRelatedArticles_NoRelatedNews(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*memRepo)
	}{
		{"only article in category", func(r *memRepo) {
			seed(t, r, "q", "culture", "Opera premiere", "", 0)
		}},
		{"corpus fetch fails", func(r *memRepo) {
			seed(t, r, "q", "culture", "Opera premiere", "", 0)
			r.listErr = errors.New("connection reset")
		}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h, repo := newTestServer(t)
			tc.setup(repo)

			rr := do(t, h, http.MethodGet, "/api/v1/articles/q/related", nil)
			if rr.Code != http.StatusOK {
				t.Fatalf("got %d, want 200", rr.Code)
			}
			resp := decodeBody[RelatedResponse](t, rr)
			if !resp.NoRelatedNews || len(resp.Items) != 0 {
				t.Errorf("expected no related news, got %+v", resp)
			}
		})
	}
}

func TestRelatedArticles_UnknownArticle(t *testing.T) {
	h, _ := newTestServer(t)
	if rr := do(t, h, http.MethodGet, "/api/v1/articles/missing/related", nil); rr.Code != http.StatusNotFound {
		t.Fatalf("got %d, want 404", rr.Code)
	}
}

// --- Stateless recommend ---

func TestRecommend(t *testing.T) {
	h, _ := newTestServer(t)
	topN := 2
	body := RecommendRequest{
		Query: DocumentRequest{ID: "q", Text: "cats and dogs"},
		Corpus: []DocumentRequest{
			{ID: "a", Text: "dogs bark"},
			{ID: "b", Text: "cats and dogs play"},
			{ID: "c", Text: "stock market"},
		},
		TopN: &topN,
	}

	rr := do(t, h, http.MethodPost, "/api/v1/recommend", body)
	if rr.Code != http.StatusOK {
		t.Fatalf("got %d, body %s", rr.Code, rr.Body.String())
	}
	resp := decodeBody[RecommendResponse](t, rr)
	if resp.Status != "ok" || len(resp.Items) != 2 || resp.Items[0].ID != "b" {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestRecommend_EmptyOutcomes(t *testing.T) {
	zero := 0
	tests := []struct {
		name       string
		body       RecommendRequest
		wantReason string
	}{
		{"empty corpus", RecommendRequest{Query: DocumentRequest{ID: "q", Text: "x"}}, "empty_corpus"},
		{"only self", RecommendRequest{
			Query:  DocumentRequest{ID: "q", Text: "hello"},
			Corpus: []DocumentRequest{{ID: "q", Text: "hello"}},
		}, "empty_corpus"},
		{"no terms", RecommendRequest{
			Query:  DocumentRequest{ID: "q", Text: "hello"},
			Corpus: []DocumentRequest{{ID: "a", Text: "a ! ?"}},
		}, "empty_vocabulary"},
		{"zero top_n", RecommendRequest{
			Query:  DocumentRequest{ID: "q", Text: "hello"},
			Corpus: []DocumentRequest{{ID: "a", Text: "hello"}},
			TopN:   &zero,
		}, "no_capacity"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h, _ := newTestServer(t)
			rr := do(t, h, http.MethodPost, "/api/v1/recommend", tc.body)
			if rr.Code != http.StatusOK {
				t.Fatalf("got %d, body %s", rr.Code, rr.Body.String())
			}
			resp := decodeBody[RecommendResponse](t, rr)
			if resp.Status != "empty" || resp.Reason != tc.wantReason || len(resp.Items) != 0 {
				t.Errorf("unexpected response: %+v", resp)
			}
		})
	}
}

func TestRecommend_Validation(t *testing.T) {
	tooMany := 11
	tests := []struct {
		name string
		body any
	}{
		{"missing query id", RecommendRequest{Query: DocumentRequest{Text: "x"}}},
		{"corpus item without id", RecommendRequest{
			Query:  DocumentRequest{ID: "q"},
			Corpus: []DocumentRequest{{Text: "x"}},
		}},
		{"top_n over max", RecommendRequest{Query: DocumentRequest{ID: "q"}, TopN: &tooMany}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h, _ := newTestServer(t)
			rr := do(t, h, http.MethodPost, "/api/v1/recommend", tc.body)
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("got %d, want 400 (body %s)", rr.Code, rr.Body.String())
			}
			if resp := decodeBody[ErrorResponse](t, rr); resp.Code != CodeValidationFailed {
				t.Errorf("code = %s, want %s", resp.Code, CodeValidationFailed)
			}
		})
	}
}

// --- Health ---

func TestHealthCheck(t *testing.T) {
	h, repo := newTestServer(t)

	rr := do(t, h, http.MethodGet, "/health", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("healthy: got %d", rr.Code)
	}
	resp := decodeBody[HealthResponse](t, rr)
	if resp.Status != "ok" || resp.Checks["database"] != "ok" || resp.Checks["engine"] != "ok" {
		t.Errorf("unexpected report: %+v", resp)
	}

	repo.pingErr = errors.New("down")
	rr = do(t, h, http.MethodGet, "/health", nil)
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("degraded: got %d", rr.Code)
	}
	if resp := decodeBody[HealthResponse](t, rr); resp.Status != "degraded" {
		t.Errorf("status = %q", resp.Status)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	h, _ := newTestServer(t)
	if rr := do(t, h, http.MethodGet, "/metrics", nil); rr.Code != http.StatusOK {
		t.Fatalf("got %d", rr.Code)
	}
}
