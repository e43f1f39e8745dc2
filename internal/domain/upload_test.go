package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadStatus_Terminal(t *testing.T) {
	assert.True(t, UploadStatusComplete.Terminal())
	assert.True(t, UploadStatusError.Terminal())

	for _, s := range []UploadStatus{
		UploadStatusCreated, UploadStatusExtracting, UploadStatusChunking,
		UploadStatusEmbedding, UploadStatusStoring, UploadStatusNotFound,
	} {
		assert.False(t, s.Terminal(), "status %s", s)
	}
}

func TestValidateUploadJob(t *testing.T) {
	valid := &UploadJob{
		ID:       "job-1",
		Filename: "a.txt",
		Status:   UploadStatusEmbedding,
		Progress: 45,
	}
	require.NoError(t, ValidateUploadJob(valid))

	t.Run("nil job", func(t *testing.T) {
		assert.Error(t, ValidateUploadJob(nil))
	})

	t.Run("missing id", func(t *testing.T) {
		job := *valid
		job.ID = ""
		assert.Error(t, ValidateUploadJob(&job))
	})

	t.Run("progress out of range", func(t *testing.T) {
		job := *valid
		job.Progress = -1
		assert.Error(t, ValidateUploadJob(&job))

		job.Progress = 101
		assert.Error(t, ValidateUploadJob(&job))
	})

	t.Run("not_found is never a stored status", func(t *testing.T) {
		job := *valid
		job.Status = UploadStatusNotFound
		assert.Error(t, ValidateUploadJob(&job))
	})

	t.Run("unknown status", func(t *testing.T) {
		job := *valid
		job.Status = UploadStatus("paused")
		assert.Error(t, ValidateUploadJob(&job))
	})
}
