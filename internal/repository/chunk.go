package repository

import (
	"context"
	"strconv"

	"github.com/docubase-ai/docubase/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// defaultInsertBatchSize bounds how many chunk inserts are pipelined per
// round trip when no size is configured.
const defaultInsertBatchSize = 50

// ChunkRepository handles persistence of document chunks and similarity
// search over their embeddings.
type ChunkRepository struct {
	db              dbtx
	insertBatchSize int
}

func NewChunkRepository(pool *pgxpool.Pool) *ChunkRepository {
	return &ChunkRepository{db: pool, insertBatchSize: defaultInsertBatchSize}
}

func NewChunkRepositoryWithTx(tx pgx.Tx) *ChunkRepository {
	return &ChunkRepository{db: tx, insertBatchSize: defaultInsertBatchSize}
}

// InsertChunks writes all chunks for a document, pipelined in batches to
// limit round trips.
func (r *ChunkRepository) InsertChunks(ctx context.Context, documentID string, chunks []domain.Chunk) error {
	size := r.insertBatchSize
	if size <= 0 {
		size = defaultInsertBatchSize
	}

	for start := 0; start < len(chunks); start += size {
		end := start + size
		if end > len(chunks) {
			end = len(chunks)
		}

		batch := &pgx.Batch{}
		for _, c := range chunks[start:end] {
			batch.Queue(
				`INSERT INTO chunks (document_id, chunk_index, content, embedding, metadata, created_at)
				 VALUES ($1, $2, $3, $4, $5, $6)`,
				documentID,
				c.Index,
				c.Content,
				pgvector.NewVector(c.Embedding),
				c.Metadata,
				c.CreatedAt,
			)
		}
		if err := r.db.SendBatch(ctx, batch).Close(); err != nil {
			return err
		}
	}
	return nil
}

// CountByDocument returns the number of chunks stored for a document.
func (r *ChunkRepository) CountByDocument(ctx context.Context, documentID string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM chunks WHERE document_id = $1`,
		documentID,
	).Scan(&count)
	return count, err
}

// SimilaritySearch returns up to k chunks with cosine similarity to the
// query vector of at least threshold, most similar first.
func (r *ChunkRepository) SimilaritySearch(ctx context.Context, embedding []float32, threshold float64, k int) ([]*domain.RetrievedPassage, error) {
	if k <= 0 {
		k = 5
	}

	vec := pgvector.NewVector(embedding)
	rows, err := r.db.Query(ctx,
		`SELECT id, document_id, content, metadata, 1 - (embedding <=> $1) AS similarity
		 FROM chunks
		 WHERE 1 - (embedding <=> $1) >= $2
		 ORDER BY embedding <=> $1
		 LIMIT $3`,
		vec, threshold, k,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	passages := make([]*domain.RetrievedPassage, 0, k)
	for rows.Next() {
		var (
			id       int64
			passage  domain.RetrievedPassage
			metadata map[string]string
		)
		if err := rows.Scan(&id, &passage.DocumentID, &passage.Content, &metadata, &passage.Similarity); err != nil {
			return nil, err
		}
		passage.ChunkID = strconv.FormatInt(id, 10)
		passage.Source = metadata[domain.MetadataSource]
		passages = append(passages, &passage)
	}
	return passages, rows.Err()
}
