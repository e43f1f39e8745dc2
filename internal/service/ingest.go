package service

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/docubase-ai/docubase/internal/domain"
)

// ProgressTracker records upload job progress for polling callers.
type ProgressTracker interface {
	Update(id string, status domain.UploadStatus, progress int, message string) error
	SetChunkCounts(id string, total, processed int) error
	Fail(id string, message string) error
}

// DocumentStore persists a document together with all of its chunks. The
// write is atomic: either the document and every chunk become visible, or
// nothing does.
type DocumentStore interface {
	StoreDocument(ctx context.Context, name string, chunks []domain.Chunk) (*domain.Document, error)
}

// RawArchiver optionally archives the original uploaded file.
type RawArchiver interface {
	ArchiveDocument(ctx context.Context, documentID, filename string, data []byte) error
}

// SegmentEmbedder is the slice of Embedder the pipeline needs.
type SegmentEmbedder interface {
	EmbedBatch(ctx context.Context, segments []string, onProgress func(done, total int)) ([][]float32, error)
}

// Progress checkpoints for the pipeline stages. Embedding advances
// proportionally between progressChunked and progressEmbedded.
const (
	progressExtracting = 10
	progressChunked    = 20
	progressEmbedded   = 80
	progressComplete   = 100
)

// IngestPipeline converts an uploaded file into a persisted, embedded
// document, reporting progress on its upload job as it goes. It runs on the
// ingest worker, never on the request path.
type IngestPipeline struct {
	embedder SegmentEmbedder
	store    DocumentStore
	tracker  ProgressTracker
	archiver RawArchiver // nil when object storage is not configured
	chunkCfg ChunkConfig
}

func NewIngestPipeline(embedder SegmentEmbedder, store DocumentStore, tracker ProgressTracker, chunkCfg ChunkConfig) *IngestPipeline {
	if chunkCfg.Size <= 0 {
		chunkCfg = DefaultChunkConfig()
	}
	return &IngestPipeline{
		embedder: embedder,
		store:    store,
		tracker:  tracker,
		chunkCfg: chunkCfg,
	}
}

// WithArchiver enables archival of original files to object storage.
func (p *IngestPipeline) WithArchiver(archiver RawArchiver) *IngestPipeline {
	p.archiver = archiver
	return p
}

// Run processes one uploaded file end to end. Stage failures transition the
// job to error; stages are never retried here, resubmitting the upload is
// the retry path. The temp file at path is always removed.
func (p *IngestPipeline) Run(ctx context.Context, uploadID, filename, path string) {
	defer func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Printf("ingest %s: failed to remove temp file: %v", uploadID, err)
		}
	}()

	if err := p.run(ctx, uploadID, filename, path); err != nil {
		log.Printf("ingest %s: %s failed: %v", uploadID, filename, err)
		if trackErr := p.tracker.Fail(uploadID, err.Error()); trackErr != nil {
			log.Printf("ingest %s: failed to record error state: %v", uploadID, trackErr)
		}
		return
	}
	log.Printf("ingest %s: %s processed successfully", uploadID, filename)
}

func (p *IngestPipeline) run(ctx context.Context, uploadID, filename, path string) error {
	p.progress(uploadID, domain.UploadStatusExtracting, progressExtracting, "Extracting text from document...")
	text, err := ExtractText(path)
	if err != nil {
		return err
	}
	if strings.TrimSpace(text) == "" {
		return domain.ErrEmptyDocument
	}

	p.progress(uploadID, domain.UploadStatusChunking, progressChunked, "Splitting into chunks...")
	segments := ChunkText(text, p.chunkCfg)
	if len(segments) == 0 {
		return domain.ErrEmptyDocument
	}
	if err := p.tracker.SetChunkCounts(uploadID, len(segments), 0); err != nil {
		return err
	}

	p.progress(uploadID, domain.UploadStatusEmbedding, progressChunked,
		fmt.Sprintf("Generating embeddings for %d chunks...", len(segments)))
	vectors, err := p.embedder.EmbedBatch(ctx, segments, func(done, total int) {
		span := progressEmbedded - progressChunked
		p.progress(uploadID, domain.UploadStatusEmbedding, progressChunked+done*span/total,
			fmt.Sprintf("Generated %d/%d embeddings...", done, total))
	})
	if err != nil {
		return err
	}

	p.progress(uploadID, domain.UploadStatusStoring, progressEmbedded, "Saving to database...")
	chunks := make([]domain.Chunk, len(segments))
	now := time.Now().UTC()
	for i, segment := range segments {
		chunks[i] = domain.Chunk{
			Index:     i,
			Content:   segment,
			Embedding: vectors[i],
			Metadata:  map[string]string{domain.MetadataSource: filename},
			CreatedAt: now,
		}
	}

	doc, err := p.store.StoreDocument(ctx, filename, chunks)
	if err != nil {
		return domain.NewDomainErrorWithCause(domain.ErrCodeRemoteService, "failed to store document", err)
	}

	if p.archiver != nil {
		// Archival is auxiliary: a failure is logged, not fatal to the job.
		if data, readErr := os.ReadFile(path); readErr == nil {
			if archErr := p.archiver.ArchiveDocument(ctx, doc.ID, filename, data); archErr != nil {
				log.Printf("ingest %s: failed to archive original file: %v", uploadID, archErr)
			}
		} else {
			log.Printf("ingest %s: failed to read original file for archival: %v", uploadID, readErr)
		}
	}

	if err := p.tracker.SetChunkCounts(uploadID, len(chunks), len(chunks)); err != nil {
		return err
	}
	p.progress(uploadID, domain.UploadStatusComplete, progressComplete,
		fmt.Sprintf("Successfully processed %d chunks", len(chunks)))
	return nil
}

func (p *IngestPipeline) progress(uploadID string, status domain.UploadStatus, progress int, message string) {
	if err := p.tracker.Update(uploadID, status, progress, message); err != nil {
		log.Printf("ingest %s: progress update rejected: %v", uploadID, err)
	}
}
