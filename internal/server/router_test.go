package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/docubase-ai/docubase/internal/api/handlers"
	"github.com/docubase-ai/docubase/internal/domain"
	"github.com/docubase-ai/docubase/internal/jobs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type listOnlyDocuments struct{}

func (listOnlyDocuments) List(ctx context.Context) ([]*domain.Document, error) {
	return []*domain.Document{}, nil
}

func (listOnlyDocuments) Delete(ctx context.Context, id string) error {
	return domain.ErrDocumentNotFound
}

func (listOnlyDocuments) DownloadURL(ctx context.Context, id string) (string, error) {
	return "", domain.ErrArchiveNotConfigured
}

type noAnswers struct{}

func (noAnswers) Compose(ctx context.Context, question string) <-chan domain.AnswerEvent {
	out := make(chan domain.AnswerEvent, 1)
	out <- domain.NewErrorEvent("No relevant documents found. Please upload some files first.")
	close(out)
	return out
}

type noopRunner struct{}

func (noopRunner) Run(ctx context.Context, uploadID, filename, path string) {}

func newTestRouter() http.Handler {
	tracker := jobs.NewTracker(0)
	worker := jobs.NewWorker(tracker, 4, 1, 0)
	return NewRouter(RouterConfig{
		DocumentHandler: handlers.NewDocumentHandler(listOnlyDocuments{}),
		UploadHandler:   handlers.NewUploadHandler(tracker, worker, noopRunner{}),
		AskHandler:      handlers.NewAskHandler(noAnswers{}),
	})
}

func TestRouter_Routes(t *testing.T) {
	router := newTestRouter()

	t.Run("health", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"status":"ok"`)
	})

	t.Run("request id header is set", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))

		assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	})

	t.Run("list documents", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest("GET", "/documents", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("delete unknown document", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest("DELETE", "/documents/nope", nil))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("download without archival configured", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest("GET", "/documents/doc-1/download", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("upload status of unknown job", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest("GET", "/upload/status/nope", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"not_found"`)
	})

	t.Run("ask without question", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest("GET", "/ask", nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("ask streams ndjson", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest("GET", "/ask?question=anything", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/x-ndjson", rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Body.String(), `"type":"error"`)
	})

	t.Run("unknown route", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest("GET", "/nope", nil))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
