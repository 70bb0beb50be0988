package db

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/raphaelgruber/docpipe/internal/models"
)

// MemoryStore keeps records in process memory. Used for tests and dry runs.
type MemoryStore struct {
	mu     sync.RWMutex
	docs   []models.DocumentMetadata // Creation order
	byID   map[string]int
	byName map[string]struct{}
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:   make(map[string]int),
		byName: make(map[string]struct{}),
	}
}

func (s *MemoryStore) Insert(_ context.Context, meta *models.DocumentMetadata) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byName[meta.DocumentName]; ok {
		return "", ErrDuplicateDocument
	}

	doc := *meta
	doc.ID = uuid.New().String()
	doc.Keywords = slices.Clone(meta.Keywords)
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}

	s.byID[doc.ID] = len(s.docs)
	s.byName[doc.DocumentName] = struct{}{}
	s.docs = append(s.docs, doc)

	meta.ID = doc.ID
	return doc.ID, nil
}

func (s *MemoryStore) GetByID(_ context.Context, id string) (*models.DocumentMetadata, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.byID[id]
	if !ok {
		return nil, nil
	}
	doc := s.docs[i]
	doc.Keywords = slices.Clone(doc.Keywords)
	return &doc, nil
}

func (s *MemoryStore) List(_ context.Context, opts ListOptions) ([]models.DocumentMetadata, error) {
	s.mu.RLock()
	out := make([]models.DocumentMetadata, 0, len(s.docs))
	for _, doc := range s.docs {
		if opts.Status != "" && doc.Status != opts.Status {
			continue
		}
		doc.Keywords = slices.Clone(doc.Keywords)
		out = append(out, doc)
	}
	s.mu.RUnlock()

	compare := memoryComparator(opts.SortBy)
	if compare == nil {
		return out, nil
	}
	if opts.SortOrder == SortAsc {
		slices.SortStableFunc(out, compare)
	} else {
		slices.SortStableFunc(out, func(a, b models.DocumentMetadata) int { return compare(b, a) })
	}
	return out, nil
}

func memoryComparator(field SortField) func(a, b models.DocumentMetadata) int {
	switch field {
	case SortByName:
		return func(a, b models.DocumentMetadata) int { return strings.Compare(a.DocumentName, b.DocumentName) }
	case SortByPages:
		return func(a, b models.DocumentMetadata) int { return cmp.Compare(a.NumPages, b.NumPages) }
	case SortByProcessingTime:
		return func(a, b models.DocumentMetadata) int { return cmp.Compare(a.ProcessingTime, b.ProcessingTime) }
	default:
		return nil
	}
}

func (s *MemoryStore) Update(_ context.Context, id, summary string, keywords []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.byID[id]
	if !ok {
		return ErrNotFound
	}
	s.docs[i].Summary = summary
	s.docs[i].Keywords = slices.Clone(keywords)
	return nil
}

func (s *MemoryStore) Close(context.Context) error {
	return nil
}
