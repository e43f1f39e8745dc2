package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/docubase-ai/docubase/internal/api"
	"github.com/docubase-ai/docubase/internal/domain"
	"github.com/docubase-ai/docubase/internal/jobs"
	"github.com/go-chi/chi/v5"
)

// UploadTracker is the job-registry surface the upload handler needs.
type UploadTracker interface {
	Create(filename string) *domain.UploadJob
	Get(id string) (*domain.UploadJob, bool)
	Fail(id string, message string) error
}

// IngestSubmitter queues background ingestion work.
type IngestSubmitter interface {
	Submit(job jobs.Job) error
}

// IngestRunner processes one uploaded file end to end.
type IngestRunner interface {
	Run(ctx context.Context, uploadID, filename, path string)
}

type UploadHandler struct {
	tracker  UploadTracker
	worker   IngestSubmitter
	pipeline IngestRunner
}

func NewUploadHandler(tracker UploadTracker, worker IngestSubmitter, pipeline IngestRunner) *UploadHandler {
	return &UploadHandler{tracker: tracker, worker: worker, pipeline: pipeline}
}

type UploadResponse struct {
	UploadID string `json:"upload_id"`
	Status   string `json:"status"`
	Message  string `json:"message"`
}

type UploadStatusResponse struct {
	Status          string `json:"status"`
	Filename        string `json:"filename,omitempty"`
	Progress        int    `json:"progress"`
	Message         string `json:"message,omitempty"`
	TotalChunks     int    `json:"total_chunks"`
	ProcessedChunks int    `json:"processed_chunks"`
}

// Upload accepts a multipart file, spools it to a temp file, and queues the
// ingest pipeline. It returns immediately with a job id the client polls.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		api.Error(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	// The extension is preserved so extraction can dispatch on it.
	tmp, err := os.CreateTemp("", "upload-*"+filepath.Ext(header.Filename))
	if err != nil {
		api.Error(w, http.StatusInternalServerError, "failed to create temp file")
		return
	}
	if _, err := io.Copy(tmp, file); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		api.Error(w, http.StatusInternalServerError, "failed to save uploaded file")
		return
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		api.Error(w, http.StatusInternalServerError, "failed to save uploaded file")
		return
	}

	job := h.tracker.Create(header.Filename)

	path := tmp.Name()
	filename := header.Filename
	err = h.worker.Submit(func(ctx context.Context) {
		h.pipeline.Run(ctx, job.ID, filename, path)
	})
	if err != nil {
		os.Remove(path)
		_ = h.tracker.Fail(job.ID, "server is busy, try again later")
		if errors.Is(err, jobs.ErrQueueFull) {
			api.Error(w, http.StatusServiceUnavailable, "too many uploads in progress")
			return
		}
		api.Error(w, http.StatusInternalServerError, "failed to queue upload")
		return
	}

	api.Success(w, http.StatusAccepted, UploadResponse{
		UploadID: job.ID,
		Status:   "processing",
		Message:  "File is being processed in the background",
	})
}

// Status reports upload progress. Unknown or garbage-collected jobs yield
// status "not_found" rather than an HTTP error, mirroring the polling
// contract.
func (h *UploadHandler) Status(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	job, ok := h.tracker.Get(id)
	if !ok {
		api.Success(w, http.StatusOK, UploadStatusResponse{
			Status: string(domain.UploadStatusNotFound),
		})
		return
	}

	api.Success(w, http.StatusOK, UploadStatusResponse{
		Status:          string(job.Status),
		Filename:        job.Filename,
		Progress:        job.Progress,
		Message:         job.Message,
		TotalChunks:     job.TotalChunks,
		ProcessedChunks: job.ProcessedChunks,
	})
}
