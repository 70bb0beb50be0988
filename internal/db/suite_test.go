package db

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/raphaelgruber/docpipe/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// storeFactory returns an empty store for one test.
type storeFactory func(t *testing.T) Store

func doc(name string, pages int, seconds float64, status models.Status) *models.DocumentMetadata {
	m := &models.DocumentMetadata{
		DocumentName:   name,
		Path:           "uploads/" + name,
		SizeBytes:      1024,
		NumPages:       pages,
		Status:         status,
		ProcessingTime: seconds,
	}
	if status == models.StatusCompleted {
		m.Summary = "Summary of " + name + "."
		m.Keywords = []string{"alpha", "beta"}
	}
	return m
}

func names(docs []models.DocumentMetadata) []string {
	out := make([]string, len(docs))
	for i, d := range docs {
		out[i] = d.DocumentName
	}
	return out
}

// seed inserts documents with strictly increasing creation times.
func seed(t *testing.T, s Store, docs ...*models.DocumentMetadata) {
	t.Helper()
	base := time.Now().UTC().Add(-time.Hour).Truncate(time.Millisecond)
	for i, d := range docs {
		d.CreatedAt = base.Add(time.Duration(i) * time.Second)
		_, err := s.Insert(context.Background(), d)
		require.NoError(t, err)
	}
}

func runStoreSuite(t *testing.T, newStore storeFactory) {
	t.Run("insert and get", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		in := doc("report.pdf", 4, 1.5, models.StatusCompleted)
		id, err := s.Insert(ctx, in)
		require.NoError(t, err)
		require.NotEmpty(t, id)
		assert.Equal(t, id, in.ID)

		got, err := s.GetByID(ctx, id)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, id, got.ID)
		assert.Equal(t, "report.pdf", got.DocumentName)
		assert.Equal(t, "uploads/report.pdf", got.Path)
		assert.Equal(t, int64(1024), got.SizeBytes)
		assert.Equal(t, 4, got.NumPages)
		assert.Equal(t, "Summary of report.pdf.", got.Summary)
		assert.Equal(t, []string{"alpha", "beta"}, got.Keywords)
		assert.Equal(t, models.StatusCompleted, got.Status)
		assert.InDelta(t, 1.5, got.ProcessingTime, 1e-9)
		assert.False(t, got.CreatedAt.IsZero())
	})

	t.Run("failed record has no summary or keywords", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		id, err := s.Insert(ctx, doc("broken.docx", 1, 0.1, models.StatusFailed))
		require.NoError(t, err)

		got, err := s.GetByID(ctx, id)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Empty(t, got.Summary)
		assert.Empty(t, got.Keywords)
		assert.Equal(t, models.StatusFailed, got.Status)
	})

	t.Run("get missing returns nil", func(t *testing.T) {
		s := newStore(t)
		got, err := s.GetByID(context.Background(), "does-not-exist")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("duplicate name is rejected", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		_, err := s.Insert(ctx, doc("same.txt", 1, 0.2, models.StatusCompleted))
		require.NoError(t, err)

		second := doc("same.txt", 9, 9.9, models.StatusFailed)
		id, err := s.Insert(ctx, second)
		require.ErrorIs(t, err, ErrDuplicateDocument)
		assert.Empty(t, id)

		all, err := s.List(ctx, ListOptions{})
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, 1, all[0].NumPages, "original record untouched")
	})

	t.Run("concurrent duplicate inserts keep one record", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		var (
			wg       sync.WaitGroup
			mu       sync.Mutex
			inserted int
			dupes    int
		)
		for range 8 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := s.Insert(ctx, doc("race.pdf", 2, 0.3, models.StatusCompleted))
				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					inserted++
				case errors.Is(err, ErrDuplicateDocument):
					dupes++
				default:
					t.Errorf("unexpected insert error: %v", err)
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, 1, inserted)
		assert.Equal(t, 7, dupes)
	})

	t.Run("status filter", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		seed(t, s,
			doc("a.pdf", 1, 1, models.StatusCompleted),
			doc("b.pdf", 1, 1, models.StatusFailed),
			doc("c.pdf", 1, 1, models.StatusCompleted),
		)

		completed, err := s.List(ctx, ListOptions{Status: models.StatusCompleted})
		require.NoError(t, err)
		assert.Equal(t, []string{"a.pdf", "c.pdf"}, names(completed))

		failed, err := s.List(ctx, ListOptions{Status: models.StatusFailed})
		require.NoError(t, err)
		assert.Equal(t, []string{"b.pdf"}, names(failed))

		all, err := s.List(ctx, ListOptions{Status: ParseStatusFilter("all")})
		require.NoError(t, err)
		assert.Len(t, all, 3)
	})

	t.Run("sorting", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		seed(t, s,
			doc("b.pdf", 30, 0.5, models.StatusCompleted),
			doc("c.pdf", 10, 2.5, models.StatusCompleted),
			doc("a.pdf", 20, 1.5, models.StatusCompleted),
		)

		tests := []struct {
			sortBy string
			order  string
			want   []string
		}{
			{"name", "asc", []string{"a.pdf", "b.pdf", "c.pdf"}},
			{"name", "desc", []string{"c.pdf", "b.pdf", "a.pdf"}},
			{"pages", "asc", []string{"c.pdf", "a.pdf", "b.pdf"}},
			{"pages", "sideways", []string{"b.pdf", "a.pdf", "c.pdf"}},
			{"processing_time", "desc", []string{"c.pdf", "a.pdf", "b.pdf"}},
			{"processing_time", "asc", []string{"b.pdf", "a.pdf", "c.pdf"}},
			{"size", "asc", []string{"b.pdf", "c.pdf", "a.pdf"}},
			{"", "desc", []string{"b.pdf", "c.pdf", "a.pdf"}},
		}
		for _, tt := range tests {
			t.Run(fmt.Sprintf("%s_%s", tt.sortBy, tt.order), func(t *testing.T) {
				got, err := s.List(ctx, ListOptions{
					SortBy:    ParseSortField(tt.sortBy),
					SortOrder: ParseSortOrder(tt.order),
				})
				require.NoError(t, err)
				assert.Equal(t, tt.want, names(got))
			})
		}
	})

	t.Run("empty list is not nil", func(t *testing.T) {
		s := newStore(t)
		got, err := s.List(context.Background(), ListOptions{})
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("update", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		id, err := s.Insert(ctx, doc("edit.txt", 1, 0.1, models.StatusFailed))
		require.NoError(t, err)

		require.NoError(t, s.Update(ctx, id, "Hand written summary.", []string{"manual"}))

		got, err := s.GetByID(ctx, id)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "Hand written summary.", got.Summary)
		assert.Equal(t, []string{"manual"}, got.Keywords)
		assert.Equal(t, models.StatusFailed, got.Status, "status is not recomputed")
	})

	t.Run("update missing", func(t *testing.T) {
		s := newStore(t)
		err := s.Update(context.Background(), "does-not-exist", "x", nil)
		require.ErrorIs(t, err, ErrNotFound)
	})
}
