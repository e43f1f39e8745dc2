package repository

import (
	"context"
	"testing"
	"time"

	"github.com/docubase-ai/docubase/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingDB captures pipelined batches without touching a database.
type recordingDB struct {
	batchSizes []int
}

func (db *recordingDB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (db *recordingDB) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}

func (db *recordingDB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}

func (db *recordingDB) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	db.batchSizes = append(db.batchSizes, b.Len())
	return noopBatchResults{}
}

type noopBatchResults struct{}

func (noopBatchResults) Exec() (pgconn.CommandTag, error) { return pgconn.CommandTag{}, nil }
func (noopBatchResults) Query() (pgx.Rows, error)         { return nil, nil }
func (noopBatchResults) QueryRow() pgx.Row                { return nil }
func (noopBatchResults) Close() error                     { return nil }

func testChunkSet(n int) []domain.Chunk {
	chunks := make([]domain.Chunk, n)
	now := time.Now().UTC()
	for i := range chunks {
		chunks[i] = domain.Chunk{
			Index:     i,
			Content:   "content",
			Embedding: []float32{1, 0, 0},
			Metadata:  map[string]string{domain.MetadataSource: "a.txt"},
			CreatedAt: now,
		}
	}
	return chunks
}

func TestChunkRepository_InsertChunks_Batching(t *testing.T) {
	tests := []struct {
		name      string
		batchSize int
		chunks    int
		want      []int
	}{
		{"splits into full and remainder batches", 50, 120, []int{50, 50, 20}},
		{"single batch when under the limit", 50, 7, []int{7}},
		{"exact multiple leaves no remainder", 2, 4, []int{2, 2}},
		{"zero size falls back to the default", 0, 60, []int{50, 10}},
		{"no chunks sends nothing", 50, 0, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := &recordingDB{}
			repo := &ChunkRepository{db: db, insertBatchSize: tt.batchSize}

			err := repo.InsertChunks(context.Background(), "doc-1", testChunkSet(tt.chunks))
			require.NoError(t, err)
			assert.Equal(t, tt.want, db.batchSizes)
		})
	}
}
