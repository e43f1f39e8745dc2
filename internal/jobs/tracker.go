package jobs

import (
	"fmt"
	"sync"
	"time"

	"github.com/docubase-ai/docubase/internal/domain"
	"github.com/google/uuid"
)

// DefaultJobRetention is how long terminal jobs stay queryable before the
// janitor discards them.
const DefaultJobRetention = 10 * time.Minute

// Tracker holds upload job progress records in process memory. Each job is
// written by its owning pipeline run and read by polling callers; progress
// is monotone non-decreasing and terminal states are immutable.
type Tracker struct {
	mu        sync.RWMutex
	jobs      map[string]*domain.UploadJob
	retention time.Duration
	now       func() time.Time
}

func NewTracker(retention time.Duration) *Tracker {
	if retention <= 0 {
		retention = DefaultJobRetention
	}
	return &Tracker{
		jobs:      make(map[string]*domain.UploadJob),
		retention: retention,
		now:       time.Now,
	}
}

// Create registers a new upload job and returns its id.
func (t *Tracker) Create(filename string) *domain.UploadJob {
	job := &domain.UploadJob{
		ID:        uuid.NewString(),
		Filename:  filename,
		Status:    domain.UploadStatusCreated,
		Progress:  0,
		Message:   "Upload received",
		UpdatedAt: t.now(),
	}

	t.mu.Lock()
	t.jobs[job.ID] = job
	t.mu.Unlock()
	return snapshot(job)
}

// Get returns a copy of the job, or false if unknown or already collected.
func (t *Tracker) Get(id string) (*domain.UploadJob, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	job, ok := t.jobs[id]
	if !ok {
		return nil, false
	}
	return snapshot(job), true
}

// Update transitions the job to the given status with a new progress value
// and message. Updates against a terminal job are rejected, and progress
// never moves backwards.
func (t *Tracker) Update(id string, status domain.UploadStatus, progress int, message string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	job, ok := t.jobs[id]
	if !ok {
		return domain.ErrUploadJobNotFound
	}
	if job.Status.Terminal() {
		return fmt.Errorf("upload job %s is already %s", id, job.Status)
	}
	if !isValidTransition(status) {
		return fmt.Errorf("invalid upload status %q", status)
	}

	if progress < job.Progress {
		progress = job.Progress
	}
	if progress > 100 {
		progress = 100
	}

	job.Status = status
	job.Progress = progress
	job.Message = message
	job.UpdatedAt = t.now()
	return nil
}

// SetChunkCounts records chunk totals for progress display.
func (t *Tracker) SetChunkCounts(id string, total, processed int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	job, ok := t.jobs[id]
	if !ok {
		return domain.ErrUploadJobNotFound
	}
	if job.Status.Terminal() {
		return fmt.Errorf("upload job %s is already %s", id, job.Status)
	}

	job.TotalChunks = total
	job.ProcessedChunks = processed
	job.UpdatedAt = t.now()
	return nil
}

// Fail moves the job to the error state. The progress value is left where
// it was so callers can see how far the job got.
func (t *Tracker) Fail(id string, message string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	job, ok := t.jobs[id]
	if !ok {
		return domain.ErrUploadJobNotFound
	}
	if job.Status.Terminal() {
		return fmt.Errorf("upload job %s is already %s", id, job.Status)
	}

	job.Status = domain.UploadStatusError
	job.Message = message
	job.UpdatedAt = t.now()
	return nil
}

// Sweep discards terminal jobs older than the retention window and returns
// how many were removed. Called periodically by the janitor.
func (t *Tracker) Sweep() int {
	cutoff := t.now().Add(-t.retention)

	t.mu.Lock()
	defer t.mu.Unlock()

	removed := 0
	for id, job := range t.jobs {
		if job.Status.Terminal() && job.UpdatedAt.Before(cutoff) {
			delete(t.jobs, id)
			removed++
		}
	}
	return removed
}

func isValidTransition(s domain.UploadStatus) bool {
	switch s {
	case domain.UploadStatusCreated, domain.UploadStatusExtracting,
		domain.UploadStatusChunking, domain.UploadStatusEmbedding,
		domain.UploadStatusStoring, domain.UploadStatusComplete,
		domain.UploadStatusError:
		return true
	}
	return false
}

func snapshot(job *domain.UploadJob) *domain.UploadJob {
	copied := *job
	return &copied
}
