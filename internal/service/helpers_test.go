package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/raphaelgruber/docpipe/internal/analysis"
	"github.com/raphaelgruber/docpipe/internal/db"
	"github.com/raphaelgruber/docpipe/internal/metrics"
	"github.com/raphaelgruber/docpipe/internal/models"
	"github.com/stretchr/testify/require"
)

func newTestProcessor(t *testing.T, store db.Store) *Processor {
	t.Helper()
	summarizer, err := analysis.NewSummarizer()
	require.NoError(t, err)
	return NewProcessor(store, summarizer, metrics.NewCollector(), nil)
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// failingStore rejects every insert.
type failingStore struct {
	db.MemoryStore
}

func (s *failingStore) Insert(context.Context, *models.DocumentMetadata) (string, error) {
	return "", errors.Join(db.ErrPersistence, errors.New("connection refused"))
}

// panickingStore panics on the first insert and delegates afterwards.
type panickingStore struct {
	*db.MemoryStore
	panicked bool
}

func (s *panickingStore) Insert(ctx context.Context, meta *models.DocumentMetadata) (string, error) {
	if !s.panicked {
		s.panicked = true
		panic("driver bug")
	}
	return s.MemoryStore.Insert(ctx, meta)
}
