package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/docubase-ai/docubase/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockDocumentRepository is a mock implementation of DocumentRepositoryInterface
type MockDocumentRepository struct {
	mock.Mock
}

func (m *MockDocumentRepository) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Document), args.Error(1)
}

func (m *MockDocumentRepository) List(ctx context.Context) ([]*domain.Document, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Document), args.Error(1)
}

func (m *MockDocumentRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockArchiveStore is a mock implementation of ArchiveStore
type MockArchiveStore struct {
	mock.Mock
}

func (m *MockArchiveStore) RemoveDocument(ctx context.Context, documentID string) error {
	args := m.Called(ctx, documentID)
	return args.Error(0)
}

func (m *MockArchiveStore) GenerateDownloadURL(ctx context.Context, documentID, filename string) (string, error) {
	args := m.Called(ctx, documentID, filename)
	return args.String(0), args.Error(1)
}

func TestDocumentService_List(t *testing.T) {
	ctx := context.Background()

	t.Run("returns documents from the repository", func(t *testing.T) {
		repo := new(MockDocumentRepository)
		svc := NewDocumentService(repo)

		docs := []*domain.Document{
			{ID: "doc-1", Name: "a.pdf", CreatedAt: time.Now()},
			{ID: "doc-2", Name: "b.txt", CreatedAt: time.Now()},
		}
		repo.On("List", mock.Anything).Return(docs, nil)

		result, err := svc.List(ctx)

		require.NoError(t, err)
		assert.Equal(t, docs, result)
	})

	t.Run("propagates repository failures", func(t *testing.T) {
		repo := new(MockDocumentRepository)
		svc := NewDocumentService(repo)

		repo.On("List", mock.Anything).Return(nil, errors.New("connection lost"))

		_, err := svc.List(ctx)

		require.Error(t, err)
	})
}

func TestDocumentService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("deletes from the repository", func(t *testing.T) {
		repo := new(MockDocumentRepository)
		svc := NewDocumentService(repo)

		repo.On("Delete", mock.Anything, "doc-1").Return(nil)

		err := svc.Delete(ctx, "doc-1")

		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("removes the archived original when configured", func(t *testing.T) {
		repo := new(MockDocumentRepository)
		remover := new(MockArchiveStore)
		svc := NewDocumentServiceWithArchive(repo, remover)

		repo.On("Delete", mock.Anything, "doc-1").Return(nil)
		remover.On("RemoveDocument", mock.Anything, "doc-1").Return(nil)

		err := svc.Delete(ctx, "doc-1")

		require.NoError(t, err)
		remover.AssertExpectations(t)
	})

	t.Run("archive removal failure does not fail the delete", func(t *testing.T) {
		repo := new(MockDocumentRepository)
		remover := new(MockArchiveStore)
		svc := NewDocumentServiceWithArchive(repo, remover)

		repo.On("Delete", mock.Anything, "doc-1").Return(nil)
		remover.On("RemoveDocument", mock.Anything, "doc-1").Return(errors.New("bucket unavailable"))

		err := svc.Delete(ctx, "doc-1")

		require.NoError(t, err)
	})

	t.Run("unknown document surfaces not found", func(t *testing.T) {
		repo := new(MockDocumentRepository)
		remover := new(MockArchiveStore)
		svc := NewDocumentServiceWithArchive(repo, remover)

		repo.On("Delete", mock.Anything, "missing").Return(domain.ErrDocumentNotFound)

		err := svc.Delete(ctx, "missing")

		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrDocumentNotFound)
		remover.AssertNotCalled(t, "RemoveDocument", mock.Anything, mock.Anything)
	})
}

func TestDocumentService_DownloadURL(t *testing.T) {
	ctx := context.Background()

	t.Run("presigns the archived original", func(t *testing.T) {
		repo := new(MockDocumentRepository)
		archive := new(MockArchiveStore)
		svc := NewDocumentServiceWithArchive(repo, archive)

		repo.On("GetByID", mock.Anything, "doc-1").
			Return(&domain.Document{ID: "doc-1", Name: "report.pdf"}, nil)
		archive.On("GenerateDownloadURL", mock.Anything, "doc-1", "report.pdf").
			Return("https://bucket.example/documents/doc-1/report.pdf?sig=abc", nil)

		url, err := svc.DownloadURL(ctx, "doc-1")

		require.NoError(t, err)
		assert.Contains(t, url, "doc-1/report.pdf")
		archive.AssertExpectations(t)
	})

	t.Run("fails when archival is not configured", func(t *testing.T) {
		repo := new(MockDocumentRepository)
		svc := NewDocumentService(repo)

		_, err := svc.DownloadURL(ctx, "doc-1")

		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrArchiveNotConfigured)
		repo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})

	t.Run("unknown document surfaces not found", func(t *testing.T) {
		repo := new(MockDocumentRepository)
		archive := new(MockArchiveStore)
		svc := NewDocumentServiceWithArchive(repo, archive)

		repo.On("GetByID", mock.Anything, "missing").Return(nil, domain.ErrDocumentNotFound)

		_, err := svc.DownloadURL(ctx, "missing")

		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrDocumentNotFound)
		archive.AssertNotCalled(t, "GenerateDownloadURL", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestExtractText(t *testing.T) {
	t.Run("reads plain text files", func(t *testing.T) {
		path := writeTempDoc(t, "notes.txt", "hello world")
		text, err := ExtractText(path)
		require.NoError(t, err)
		assert.Equal(t, "hello world", text)
	})

	t.Run("reads markdown files", func(t *testing.T) {
		path := writeTempDoc(t, "readme.md", "# Title\n\nBody text.")
		text, err := ExtractText(path)
		require.NoError(t, err)
		assert.Contains(t, text, "Body text.")
	})

	t.Run("rejects unsupported extensions", func(t *testing.T) {
		path := writeTempDoc(t, "image.png", "binary-ish")
		_, err := ExtractText(path)
		require.Error(t, err)
		var domainErr *domain.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, domain.ErrCodeExtraction, domainErr.Code)
	})

	t.Run("missing file is an extraction error", func(t *testing.T) {
		_, err := ExtractText(t.TempDir() + "/nope.txt")
		require.Error(t, err)
	})
}
