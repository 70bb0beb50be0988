// Package db persists document metadata in MongoDB, SurrealDB or memory.
package db

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/raphaelgruber/docpipe/internal/config"
	"github.com/raphaelgruber/docpipe/internal/models"
)

// Store is an idempotent document metadata store keyed by document name.
type Store interface {
	// Insert stores meta if no record with the same DocumentName exists and
	// returns the new record ID. Duplicates return ErrDuplicateDocument and
	// leave the store unchanged.
	Insert(ctx context.Context, meta *models.DocumentMetadata) (string, error)

	// GetByID returns nil, nil if no record has the given ID.
	GetByID(ctx context.Context, id string) (*models.DocumentMetadata, error)

	List(ctx context.Context, opts ListOptions) ([]models.DocumentMetadata, error)

	// Update replaces the summary and keywords of a record.
	// Returns ErrNotFound if the record does not exist.
	Update(ctx context.Context, id, summary string, keywords []string) error

	Close(ctx context.Context) error
}

// SortField selects the List ordering.
type SortField string

const (
	SortByCreated        SortField = ""
	SortByName           SortField = "name"
	SortByPages          SortField = "pages"
	SortByProcessingTime SortField = "processing_time"
)

// SortOrder is the List sort direction.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// ListOptions filters and orders List results.
type ListOptions struct {
	Status    models.Status // Empty means all statuses
	SortBy    SortField     // Unknown fields keep creation order
	SortOrder SortOrder     // Ignored for creation order
}

// ParseSortField maps a user-supplied field name to a SortField. Record
// field names (document_name, num_pages) are accepted as aliases. Unknown
// names map to SortByCreated.
func ParseSortField(s string) SortField {
	switch strings.ToLower(s) {
	case "name", "document_name":
		return SortByName
	case "pages", "num_pages":
		return SortByPages
	case "processing_time":
		return SortByProcessingTime
	default:
		return SortByCreated
	}
}

// ParseSortOrder maps "asc" to SortAsc; every other value becomes SortDesc.
func ParseSortOrder(s string) SortOrder {
	if strings.EqualFold(s, string(SortAsc)) {
		return SortAsc
	}
	return SortDesc
}

// ParseStatusFilter maps "all" or "" to no filter. Other values are used
// verbatim, so an unknown status matches nothing.
func ParseStatusFilter(s string) models.Status {
	if s == "" || strings.EqualFold(s, "all") {
		return ""
	}
	return models.Status(s)
}

// Open connects to the backend selected by cfg.Store.
func Open(ctx context.Context, cfg config.Config, logger *slog.Logger) (Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	switch cfg.Store {
	case config.BackendMongo:
		return NewMongoStore(ctx, MongoConfig{
			URI:        cfg.MongoURI,
			Database:   cfg.MongoDatabase,
			Collection: cfg.MongoCollection,
		}, logger)
	case config.BackendSurreal:
		return NewSurrealStore(ctx, SurrealConfig{
			URL:       cfg.SurrealDBURL,
			Namespace: cfg.SurrealDBNamespace,
			Database:  cfg.SurrealDBDatabase,
			Username:  cfg.SurrealDBUser,
			Password:  cfg.SurrealDBPass,
			AuthLevel: cfg.SurrealDBAuthLevel,
		}, logger)
	case config.BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store)
	}
}
