package models

import (
	"time"

	"github.com/google/uuid"
)

// Job is a unit of work submitted to the worker pool.
type Job struct {
	ID            string
	Path          string
	DeclaredPages int // Best-effort page count from the submitter, at least 1
	SubmittedAt   time.Time
}

// NewJob creates a job for path. Declared page counts below 1 are raised to 1.
func NewJob(path string, declaredPages int) *Job {
	return &Job{
		ID:            uuid.New().String()[:8], // Short ID for log correlation
		Path:          path,
		DeclaredPages: max(1, declaredPages),
		SubmittedAt:   time.Now(),
	}
}
