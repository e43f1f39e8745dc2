package handlers

import (
	"context"
	"net/http"

	"github.com/docubase-ai/docubase/internal/api"
	"github.com/docubase-ai/docubase/internal/domain"
	"github.com/go-chi/chi/v5"
)

type DocumentService interface {
	List(ctx context.Context) ([]*domain.Document, error)
	Delete(ctx context.Context, id string) error
	DownloadURL(ctx context.Context, id string) (string, error)
}

type DocumentHandler struct {
	svc DocumentService
}

func NewDocumentHandler(svc DocumentService) *DocumentHandler {
	return &DocumentHandler{svc: svc}
}

type DocumentResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
}

func documentToResponse(d *domain.Document) *DocumentResponse {
	return &DocumentResponse{
		ID:        d.ID,
		Name:      d.Name,
		CreatedAt: d.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	documents, err := h.svc.List(r.Context())
	if err != nil {
		api.HandleError(w, err)
		return
	}

	response := make([]*DocumentResponse, 0, len(documents))
	for _, d := range documents {
		response = append(response, documentToResponse(d))
	}
	api.Success(w, http.StatusOK, response)
}

func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "document id is required")
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		api.HandleError(w, err)
		return
	}
	api.Success(w, http.StatusOK, map[string]string{"message": "document deleted"})
}

// Download returns a presigned URL for the document's archived original.
func (h *DocumentHandler) Download(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "document id is required")
		return
	}

	url, err := h.svc.DownloadURL(r.Context(), id)
	if err != nil {
		api.HandleError(w, err)
		return
	}
	api.Success(w, http.StatusOK, map[string]string{"download_url": url})
}
