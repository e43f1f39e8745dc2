package service

import (
	"context"
	"log"

	"github.com/docubase-ai/docubase/internal/domain"
)

// DocumentRepositoryInterface is the persistence surface for documents.
type DocumentRepositoryInterface interface {
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	List(ctx context.Context) ([]*domain.Document, error)
	Delete(ctx context.Context, id string) error
}

// ArchiveStore is the object-storage surface for archived originals.
type ArchiveStore interface {
	RemoveDocument(ctx context.Context, documentID string) error
	GenerateDownloadURL(ctx context.Context, documentID, filename string) (string, error)
}

// DocumentService exposes document listing, deletion, and download of
// archived originals. Deleting a document cascades to its chunks via the
// schema, and to its archived original when object storage is configured.
type DocumentService struct {
	repo    DocumentRepositoryInterface
	archive ArchiveStore // nil when object storage is not configured
}

func NewDocumentService(repo DocumentRepositoryInterface) *DocumentService {
	return &DocumentService{repo: repo}
}

func NewDocumentServiceWithArchive(repo DocumentRepositoryInterface, archive ArchiveStore) *DocumentService {
	return &DocumentService{repo: repo, archive: archive}
}

func (s *DocumentService) List(ctx context.Context) ([]*domain.Document, error) {
	return s.repo.List(ctx)
}

func (s *DocumentService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	if s.archive != nil {
		// The database row is already gone; an archive failure is logged
		// rather than surfaced so deletion stays idempotent for the caller.
		if err := s.archive.RemoveDocument(ctx, id); err != nil {
			log.Printf("document %s: failed to remove archived original: %v", id, err)
		}
	}
	return nil
}

// DownloadURL returns a presigned URL for a document's archived original.
func (s *DocumentService) DownloadURL(ctx context.Context, id string) (string, error) {
	if s.archive == nil {
		return "", domain.ErrArchiveNotConfigured
	}

	doc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	return s.archive.GenerateDownloadURL(ctx, doc.ID, doc.Name)
}
