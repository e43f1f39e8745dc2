package repository

import (
	"context"
	"time"

	"github.com/docubase-ai/docubase/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TxRunner provides transactional repositories using a pgx pool.
type TxRunner struct {
	pool            *pgxpool.Pool
	insertBatchSize int
}

func NewTxRunner(pool *pgxpool.Pool, insertBatchSize int) *TxRunner {
	return &TxRunner{pool: pool, insertBatchSize: insertBatchSize}
}

// TxRepositories bundles the repositories bound to one transaction.
type TxRepositories struct {
	Documents *DocumentRepository
	Chunks    *ChunkRepository
}

func (r *TxRunner) WithTx(ctx context.Context, fn func(repos TxRepositories) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}

	repos := TxRepositories{
		Documents: NewDocumentRepositoryWithTx(tx),
		Chunks:    &ChunkRepository{db: tx, insertBatchSize: r.insertBatchSize},
	}
	if err := fn(repos); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	return tx.Commit(ctx)
}

// StoreDocument persists a document and all of its chunks in a single
// transaction: a failure anywhere leaves nothing behind, so a document row
// without chunks can never become visible.
func (r *TxRunner) StoreDocument(ctx context.Context, name string, chunks []domain.Chunk) (*domain.Document, error) {
	if len(chunks) == 0 {
		return nil, domain.ErrEmptyDocument
	}

	doc := &domain.Document{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}

	err := r.WithTx(ctx, func(repos TxRepositories) error {
		if err := repos.Documents.Create(ctx, doc); err != nil {
			return err
		}
		return repos.Chunks.InsertChunks(ctx, doc.ID, chunks)
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}
