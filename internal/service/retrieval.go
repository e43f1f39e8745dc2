package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/docubase-ai/docubase/internal/domain"
)

// QueryEmbedder embeds a single question into the shared vector space.
type QueryEmbedder interface {
	EmbedOne(ctx context.Context, text string) ([]float32, error)
}

// ChunkSearcher performs the external nearest-neighbor search over stored
// chunk embeddings.
type ChunkSearcher interface {
	SimilaritySearch(ctx context.Context, embedding []float32, threshold float64, k int) ([]*domain.RetrievedPassage, error)
}

// Retriever answers "which stored passages are relevant to this question"
// by embedding the question and running a thresholded top-k cosine search.
type Retriever struct {
	embedder QueryEmbedder
	searcher ChunkSearcher
}

func NewRetriever(embedder QueryEmbedder, searcher ChunkSearcher) *Retriever {
	return &Retriever{embedder: embedder, searcher: searcher}
}

// Retrieve returns at most k passages with similarity >= threshold, ordered
// by descending similarity. An empty result is a defined outcome, not an
// error.
func (r *Retriever) Retrieve(ctx context.Context, question string, threshold float64, k int) ([]*domain.RetrievedPassage, error) {
	if strings.TrimSpace(question) == "" {
		return nil, domain.ErrEmptyQuestion
	}
	if k <= 0 {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, fmt.Sprintf("k must be positive, got %d", k))
	}
	if threshold < 0 || threshold > 1 {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, fmt.Sprintf("threshold must be in [0,1], got %f", threshold))
	}

	embedding, err := r.embedder.EmbedOne(ctx, question)
	if err != nil {
		return nil, err
	}

	results, err := r.searcher.SimilaritySearch(ctx, embedding, threshold, k)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeRemoteService, "similarity search failed", err)
	}

	// The search operator already thresholds and orders; both are enforced
	// here as well so the contract does not depend on the store.
	passages := results[:0]
	for _, p := range results {
		if p.Similarity >= threshold {
			passages = append(passages, p)
		}
	}
	sort.SliceStable(passages, func(i, j int) bool {
		return passages[i].Similarity > passages[j].Similarity
	})
	if len(passages) > k {
		passages = passages[:k]
	}

	return passages, nil
}
