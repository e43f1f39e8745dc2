//go:build e2e

package e2e

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/docubase-ai/docubase/internal/api/handlers"
	"github.com/docubase-ai/docubase/internal/domain"
	"github.com/docubase-ai/docubase/internal/jobs"
	"github.com/docubase-ai/docubase/internal/repository"
	"github.com/docubase-ai/docubase/internal/server"
	"github.com/docubase-ai/docubase/internal/service"
	"github.com/docubase-ai/docubase/internal/testutil"
	"github.com/jackc/pgx/v5/pgxpool"
)

const embeddingDim = 1536

// constantEmbedder maps every text to the same unit vector, so every stored
// chunk matches every query with similarity 1. Retrieval behavior is then
// decided purely by what was ingested, which is what these tests exercise.
type constantEmbedder struct{}

func (constantEmbedder) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	v := make([]float32, embeddingDim)
	v[0] = 1
	return v, nil
}

func (c constantEmbedder) GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i], _ = c.GenerateEmbedding(ctx, texts[i])
	}
	return out, nil
}

// cannedStream replays a fixed answer token by token.
type cannedStream struct {
	tokens []string
	pos    int
}

func (s *cannedStream) Recv() (string, error) {
	if s.pos < len(s.tokens) {
		token := s.tokens[s.pos]
		s.pos++
		return token, nil
	}
	return "", io.EOF
}

func (s *cannedStream) Close() error { return nil }

type cannedGenerator struct{}

func (cannedGenerator) StreamCompletion(ctx context.Context, prompt string) (service.TokenStream, error) {
	return &cannedStream{tokens: []string{"This", " is", " the", " answer", "."}}, nil
}

// E2ETestEnv holds all resources needed for E2E tests
type E2ETestEnv struct {
	T          *testing.T
	Ctx        context.Context
	PostgresC  *testutil.PostgresContainer
	Pool       *pgxpool.Pool
	Server     *httptest.Server
	Worker     *jobs.Worker
	HTTPClient *http.Client
}

// SetupE2EEnv creates a full E2E test environment with a pgvector container
// and an HTTP server wired with deterministic model stubs.
func SetupE2EEnv(t *testing.T) *E2ETestEnv {
	ctx := context.Background()

	pgC := testutil.NewPostgresContainer(ctx, t)
	pool := testutil.NewTestPool(ctx, t, pgC, "../../migrations")

	documentRepo := repository.NewDocumentRepository(pool)
	chunkRepo := repository.NewChunkRepository(pool)
	txRunner := repository.NewTxRunner(pool, 50)

	tracker := jobs.NewTracker(10 * time.Minute)
	worker := jobs.NewWorker(tracker, 16, 2, time.Minute)
	go worker.Start(ctx)

	embedder := service.NewEmbedder(constantEmbedder{}, 100)
	pipeline := service.NewIngestPipeline(embedder, txRunner, tracker,
		service.ChunkConfig{Size: 200, Overlap: 30})
	retriever := service.NewRetriever(embedder, chunkRepo)
	composer := service.NewComposer(retriever, cannedGenerator{}, service.ComposerConfig{
		SimilarityThreshold: 0.2,
		TopK:                3,
	})

	router := server.NewRouter(server.RouterConfig{
		DocumentHandler: handlers.NewDocumentHandler(service.NewDocumentService(documentRepo)),
		UploadHandler:   handlers.NewUploadHandler(tracker, worker, pipeline),
		AskHandler:      handlers.NewAskHandler(composer),
	})

	return &E2ETestEnv{
		T:          t,
		Ctx:        ctx,
		PostgresC:  pgC,
		Pool:       pool,
		Server:     httptest.NewServer(router),
		Worker:     worker,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Cleanup releases all resources
func (e *E2ETestEnv) Cleanup() {
	if e.Server != nil {
		e.Server.Close()
	}
	if e.Worker != nil {
		e.Worker.Stop()
	}
	if e.Pool != nil {
		e.Pool.Close()
	}
	if e.PostgresC != nil {
		e.PostgresC.Terminate(e.Ctx)
	}
}

type apiResponse struct {
	Data  json.RawMessage `json:"data,omitempty"`
	Error string          `json:"error,omitempty"`
}

// Get performs a GET and decodes the response envelope.
func (e *E2ETestEnv) Get(path string) (*apiResponse, int, error) {
	resp, err := e.HTTPClient.Get(e.Server.URL + path)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()
	return decodeEnvelope(resp)
}

// Delete performs a DELETE and decodes the response envelope.
func (e *E2ETestEnv) Delete(path string) (*apiResponse, int, error) {
	req, err := http.NewRequest("DELETE", e.Server.URL+path, nil)
	if err != nil {
		return nil, 0, err
	}
	resp, err := e.HTTPClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()
	return decodeEnvelope(resp)
}

// UploadFile posts content as a multipart file upload.
func (e *E2ETestEnv) UploadFile(filename, content string) (*apiResponse, int, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, 0, err
	}
	if _, err := part.Write([]byte(content)); err != nil {
		return nil, 0, err
	}
	if err := writer.Close(); err != nil {
		return nil, 0, err
	}

	resp, err := e.HTTPClient.Post(e.Server.URL+"/upload", writer.FormDataContentType(), &buf)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()
	return decodeEnvelope(resp)
}

// WaitForUpload polls the status endpoint until the job is terminal.
func (e *E2ETestEnv) WaitForUpload(uploadID string, timeout time.Duration) (map[string]interface{}, error) {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		resp, _, err := e.Get("/upload/status/" + uploadID)
		if err != nil {
			return nil, err
		}

		var status map[string]interface{}
		if err := json.Unmarshal(resp.Data, &status); err != nil {
			return nil, err
		}

		switch status["status"] {
		case "complete", "error":
			return status, nil
		}
		time.Sleep(50 * time.Millisecond)
	}
	return nil, fmt.Errorf("upload %s did not finish within %s", uploadID, timeout)
}

// Ask streams the NDJSON answer for a question and returns the decoded events.
func (e *E2ETestEnv) Ask(question string) ([]domain.AnswerEvent, error) {
	resp, err := e.HTTPClient.Get(e.Server.URL + "/ask?question=" + url.QueryEscape(question))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("ask returned %d: %s", resp.StatusCode, string(body))
	}

	var events []domain.AnswerEvent
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		var event domain.AnswerEvent
		if err := json.Unmarshal(line, &event); err != nil {
			return nil, fmt.Errorf("bad event %q: %w", line, err)
		}
		events = append(events, event)
	}
	return events, scanner.Err()
}

func decodeEnvelope(resp *http.Response) (*apiResponse, int, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	var envelope apiResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, resp.StatusCode, fmt.Errorf("bad response %q: %w", body, err)
	}
	return &envelope, resp.StatusCode, nil
}
