// Package models defines data structures shared across the docpipe pipeline.
package models

import (
	"path"
	"path/filepath"
	"time"
)

// Status is the terminal outcome recorded for a processed document.
type Status string

const (
	StatusCompleted Status = "Completed"
	StatusFailed    Status = "Failed"
)

// ParseStatus reports whether s names a known status.
func ParseStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusCompleted, StatusFailed:
		return Status(s), true
	}
	return "", false
}

// DocumentMetadata is the persisted record of one processed document.
type DocumentMetadata struct {
	ID             string    `json:"id"`
	DocumentName   string    `json:"document_name"` // Dedup key, unique across the store
	Path           string    `json:"path"`
	SizeBytes      int64     `json:"size"`
	NumPages       int       `json:"num_pages"`
	Summary        string    `json:"summary,omitempty"`
	Keywords       []string  `json:"keywords,omitempty"`
	Status         Status    `json:"status"`
	ProcessingTime float64   `json:"processing_time"` // Seconds
	CreatedAt      time.Time `json:"created_at"`
}

// DocumentName derives the dedup key for a file path: its base name.
func DocumentName(p string) string {
	return path.Base(NormalizePath(p))
}

// NormalizePath converts OS separators to forward slashes.
func NormalizePath(p string) string {
	return filepath.ToSlash(p)
}
