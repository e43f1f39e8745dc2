package domain

import (
	"fmt"
	"time"
)

// UploadStatus represents the stage an upload job is in.
type UploadStatus string

const (
	UploadStatusCreated    UploadStatus = "created"
	UploadStatusExtracting UploadStatus = "extracting"
	UploadStatusChunking   UploadStatus = "chunking"
	UploadStatusEmbedding  UploadStatus = "embedding"
	UploadStatusStoring    UploadStatus = "storing"
	UploadStatusComplete   UploadStatus = "complete"
	UploadStatusError      UploadStatus = "error"

	// UploadStatusNotFound is reported for unknown or garbage-collected jobs.
	// It is never stored on a job record.
	UploadStatusNotFound UploadStatus = "not_found"
)

// Terminal reports whether no further transitions are allowed from s.
func (s UploadStatus) Terminal() bool {
	return s == UploadStatusComplete || s == UploadStatusError
}

// UploadJob tracks the progress of a single document ingestion. Jobs live
// only in process memory: they are created when an upload is accepted,
// mutated only by the owning pipeline run, and discarded after a retention
// window once terminal.
type UploadJob struct {
	ID              string
	Filename        string
	Status          UploadStatus
	Progress        int
	Message         string
	TotalChunks     int
	ProcessedChunks int
	UpdatedAt       time.Time
}

// ValidateUploadJob checks structural invariants on a job record.
func ValidateUploadJob(j *UploadJob) error {
	if j == nil {
		return fmt.Errorf("upload job cannot be nil")
	}
	if j.ID == "" {
		return fmt.Errorf("upload job ID is required")
	}
	if j.Progress < 0 || j.Progress > 100 {
		return fmt.Errorf("upload job progress out of range: %d", j.Progress)
	}
	if !isValidUploadStatus(j.Status) {
		return fmt.Errorf("upload job status is invalid: %s", j.Status)
	}
	return nil
}

func isValidUploadStatus(s UploadStatus) bool {
	switch s {
	case UploadStatusCreated, UploadStatusExtracting, UploadStatusChunking,
		UploadStatusEmbedding, UploadStatusStoring, UploadStatusComplete,
		UploadStatusError:
		return true
	}
	return false
}
