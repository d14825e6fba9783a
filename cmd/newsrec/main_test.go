package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kailas-cloud/newsrec/internal/config"
	domart "github.com/kailas-cloud/newsrec/internal/domain/article"
	logpkg "github.com/kailas-cloud/newsrec/internal/logger"
	chiTransport "github.com/kailas-cloud/newsrec/internal/transport/chi"
)

func TestOpenStorage_SQLite(t *testing.T) {
	cfg := config.Config{Database: config.DatabaseConfig{
		Driver:     config.DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "news.db"),
	}}

	st, err := openStorage(context.Background(), &cfg, zap.NewNop())
	require.NoError(t, err)
	defer st.close()

	require.NoError(t, st.ping.Ping(context.Background()))

	a, err := domart.New("a1", "tech", "Go 2", "", "", time.Time{})
	require.NoError(t, err)
	created, err := st.repo.Upsert(context.Background(), &a)
	require.NoError(t, err)
	assert.True(t, created)

	list, err := st.repo.ListByCategory(context.Background(), "tech")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "a1", list[0].ID())
}

func TestOpenStorage_Errors(t *testing.T) {
	tests := []struct {
		name    string
		db      config.DatabaseConfig
		wantErr string
	}{
		{"unknown driver", config.DatabaseConfig{Driver: "mongo"}, `unknown database driver "mongo"`},
		{"redis without addrs", config.DatabaseConfig{Driver: config.DriverRedis}, "create redis store"},
		{"valkey without addrs", config.DatabaseConfig{Driver: config.DriverValkey}, "create valkey store"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Config{Database: tc.db}
			_, err := openStorage(context.Background(), &cfg, zap.NewNop())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestVectorizerOptions(t *testing.T) {
	assert.Len(t, vectorizerOptions(&config.RecommendConfig{MinTokenLength: 2}), 1)
	assert.Len(t, vectorizerOptions(&config.RecommendConfig{
		MinTokenLength: 2,
		StopWords:      []string{"the"},
		SublinearTF:    true,
	}), 3)
}

func TestJSONRecoverer(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	h := jsonRecoverer(zap.New(core))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/articles/x", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body chiTransport.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, chiTransport.CodeInternalError, body.Code)

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "panic recovered", logs.All()[0].Message)
}

func TestWideEventMiddleware(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)

	var ctxLogger *zap.Logger
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctxLogger = logpkg.FromContext(r.Context())
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("hi"))
	})
	h := chiMiddleware.RequestID(wideEventMiddleware(zap.New(core))(inner))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/recommend", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	require.NotNil(t, ctxLogger)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "http_request", entry.Message)
	fields := entry.ContextMap()
	assert.Equal(t, "/api/v1/recommend", fields["path"])
	assert.Equal(t, int64(http.StatusTeapot), fields["status"])
	assert.Equal(t, int64(2), fields["response_bytes"])
	assert.Equal(t, rec.Header().Get("X-Request-ID"), fields["request_id"])
}
