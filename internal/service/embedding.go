package service

import (
	"context"
	"fmt"

	"github.com/docubase-ai/docubase/internal/domain"
)

// DefaultEmbeddingBatchSize bounds how many segments go into one remote
// embedding request. The API accepts more, but smaller batches keep progress
// reporting granular.
const DefaultEmbeddingBatchSize = 100

// EmbeddingClient defines the interface for the remote embedding service
type EmbeddingClient interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
	GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
}

// Embedder converts text segments into fixed-dimension vectors, batching
// large inputs into multiple sequential remote calls.
type Embedder struct {
	client    EmbeddingClient
	batchSize int
}

// NewEmbedder creates an Embedder with the given batch size. A non-positive
// batch size falls back to DefaultEmbeddingBatchSize.
func NewEmbedder(client EmbeddingClient, batchSize int) *Embedder {
	if batchSize <= 0 {
		batchSize = DefaultEmbeddingBatchSize
	}
	return &Embedder{client: client, batchSize: batchSize}
}

// EmbedBatch embeds every segment, preserving input order: the vector at
// index i corresponds to segments[i]. onProgress, when non-nil, is invoked
// after each internal batch with the number of segments embedded so far.
//
// Any batch failure fails the whole call; there is no partial success.
func (e *Embedder) EmbedBatch(ctx context.Context, segments []string, onProgress func(done, total int)) ([][]float32, error) {
	if len(segments) == 0 {
		return nil, nil
	}

	vectors := make([][]float32, 0, len(segments))
	for start := 0; start < len(segments); start += e.batchSize {
		end := start + e.batchSize
		if end > len(segments) {
			end = len(segments)
		}

		batch, err := e.client.GenerateEmbeddings(ctx, segments[start:end])
		if err != nil {
			return nil, domain.NewDomainErrorWithCause(domain.ErrCodeRemoteService,
				fmt.Sprintf("embedding batch %d-%d failed", start, end), err)
		}
		if len(batch) != end-start {
			return nil, domain.NewDomainError(domain.ErrCodeRemoteService,
				fmt.Sprintf("embedding batch returned %d vectors for %d segments", len(batch), end-start))
		}

		vectors = append(vectors, batch...)
		if onProgress != nil {
			onProgress(len(vectors), len(segments))
		}
	}

	return vectors, nil
}

// EmbedOne embeds a single text, used for query embeddings.
func (e *Embedder) EmbedOne(ctx context.Context, text string) ([]float32, error) {
	vector, err := e.client.GenerateEmbedding(ctx, text)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeRemoteService, "query embedding failed", err)
	}
	return vector, nil
}
