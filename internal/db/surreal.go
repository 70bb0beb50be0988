package db

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/raphaelgruber/docpipe/internal/models"
	"github.com/surrealdb/surrealdb.go"
	"github.com/surrealdb/surrealdb.go/contrib/rews"
	"github.com/surrealdb/surrealdb.go/pkg/connection"
	"github.com/surrealdb/surrealdb.go/pkg/connection/gorillaws"
	"github.com/surrealdb/surrealdb.go/pkg/logger"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
	"github.com/surrealdb/surrealdb.go/surrealcbor"
)

func init() {
	// Force HTTP/1.1 for WSS connections to prevent HTTP/2 ALPN negotiation.
	gorillaws.DefaultDialer.TLSClientConfig = &tls.Config{
		NextProtos: []string{"http/1.1"},
	}
}

// SurrealConfig holds SurrealDB connection configuration.
type SurrealConfig struct {
	URL       string
	Namespace string
	Database  string
	Username  string
	Password  string
	AuthLevel string // "root" or "database"
}

// SurrealStore stores document metadata in a SurrealDB table over an
// auto-reconnecting WebSocket.
type SurrealStore struct {
	conn   *rews.Connection[*gorillaws.Connection]
	db     *surrealdb.DB
	logger logger.Logger
}

type surrealDocument struct {
	ID             surrealmodels.RecordID `json:"id"`
	DocumentName   string                 `json:"document_name"`
	Path           string                 `json:"path"`
	SizeBytes      int64                  `json:"size"`
	NumPages       int                    `json:"num_pages"`
	Summary        string                 `json:"summary"`
	Keywords       []string               `json:"keywords"`
	Status         string                 `json:"status"`
	ProcessingTime float64                `json:"processing_time"`
	CreatedAt      time.Time              `json:"created_at"`
}

func (d surrealDocument) toModel() (models.DocumentMetadata, error) {
	id, err := models.RecordIDString(d.ID)
	if err != nil {
		return models.DocumentMetadata{}, err
	}
	keywords := d.Keywords
	if len(keywords) == 0 {
		keywords = nil
	}
	return models.DocumentMetadata{
		ID:             id,
		DocumentName:   d.DocumentName,
		Path:           d.Path,
		SizeBytes:      d.SizeBytes,
		NumPages:       d.NumPages,
		Summary:        d.Summary,
		Keywords:       keywords,
		Status:         models.Status(d.Status),
		ProcessingTime: d.ProcessingTime,
		CreatedAt:      d.CreatedAt,
	}, nil
}

var surrealSortFields = map[SortField]string{
	SortByName:           "document_name",
	SortByPages:          "num_pages",
	SortByProcessingTime: "processing_time",
}

// NewSurrealStore connects, authenticates and initializes the document schema.
func NewSurrealStore(ctx context.Context, cfg SurrealConfig, log *slog.Logger) (*SurrealStore, error) {
	sdkLogger := logger.New(log.Handler())
	codec := surrealcbor.New()

	// gorillaws appends /rpc itself.
	baseURL := strings.TrimSuffix(cfg.URL, "/rpc")

	conn := rews.New(
		func(ctx context.Context) (*gorillaws.Connection, error) {
			return gorillaws.New(&connection.Config{
				BaseURL:     baseURL,
				Marshaler:   codec,
				Unmarshaler: codec,
				Logger:      sdkLogger,
			}), nil
		},
		5*time.Second,
		codec,
		sdkLogger,
	)

	retryer := rews.NewExponentialBackoffRetryer()
	retryer.InitialDelay = 1 * time.Second
	retryer.MaxDelay = 30 * time.Second
	retryer.Multiplier = 2.0
	retryer.MaxRetries = 10
	conn.Retryer = retryer

	sdkLogger.Info("connecting to SurrealDB", "url", cfg.URL)
	if err := conn.Connect(ctx); err != nil {
		return nil, fmt.Errorf("%w: connect surrealdb: %w", ErrPersistence, err)
	}

	db, err := surrealdb.FromConnection(ctx, conn)
	if err != nil {
		_ = conn.Close(ctx)
		return nil, fmt.Errorf("%w: from connection: %w", ErrPersistence, err)
	}

	auth := surrealdb.Auth{Username: cfg.Username, Password: cfg.Password}
	if cfg.AuthLevel == "database" {
		auth.Namespace = cfg.Namespace
		auth.Database = cfg.Database
	}
	if _, err := db.SignIn(ctx, auth); err != nil {
		_ = conn.Close(ctx)
		return nil, fmt.Errorf("%w: signin: %w", ErrPersistence, err)
	}

	if err := db.Use(ctx, cfg.Namespace, cfg.Database); err != nil {
		_ = conn.Close(ctx)
		return nil, fmt.Errorf("%w: use: %w", ErrPersistence, err)
	}

	s := &SurrealStore{conn: conn, db: db, logger: sdkLogger}
	if err := s.InitSchema(ctx); err != nil {
		_ = conn.Close(ctx)
		return nil, err
	}

	sdkLogger.Info("SurrealDB connection established")
	return s, nil
}

// InitSchema defines the document table and its unique name index.
func (s *SurrealStore) InitSchema(ctx context.Context) error {
	if _, err := surrealdb.Query[any](ctx, s.db, SchemaSQL, nil); err != nil {
		return wrapQueryError("init schema", err)
	}
	return nil
}

func (s *SurrealStore) Insert(ctx context.Context, meta *models.DocumentMetadata) (string, error) {
	id := uuid.New().String()
	createdAt := meta.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	keywords := meta.Keywords
	if keywords == nil {
		keywords = []string{}
	}

	_, err := surrealdb.Query[[]surrealDocument](ctx, s.db, `
		CREATE type::record("document", $id) CONTENT {
			document_name: $document_name,
			path: $path,
			size: $size,
			num_pages: $num_pages,
			summary: $summary,
			keywords: $keywords,
			status: $status,
			processing_time: $processing_time,
			created_at: $created_at
		}
	`, map[string]any{
		"id":              id,
		"document_name":   meta.DocumentName,
		"path":            meta.Path,
		"size":            meta.SizeBytes,
		"num_pages":       meta.NumPages,
		"summary":         meta.Summary,
		"keywords":        keywords,
		"status":          string(meta.Status),
		"processing_time": meta.ProcessingTime,
		"created_at":      createdAt,
	})
	if err != nil {
		return "", wrapQueryError("insert document", err)
	}

	meta.ID = id
	return id, nil
}

func (s *SurrealStore) GetByID(ctx context.Context, id string) (*models.DocumentMetadata, error) {
	results, err := surrealdb.Query[[]surrealDocument](ctx, s.db, `
		SELECT * FROM type::record("document", $id)
	`, map[string]any{"id": id})
	if err != nil {
		return nil, wrapQueryError("get document", err)
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, nil
	}
	doc, err := (*results)[0].Result[0].toModel()
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}
	return &doc, nil
}

func (s *SurrealStore) List(ctx context.Context, opts ListOptions) ([]models.DocumentMetadata, error) {
	where := ""
	vars := map[string]any{}
	if opts.Status != "" {
		where = "WHERE status = $status"
		vars["status"] = string(opts.Status)
	}

	order := "ORDER BY created_at ASC"
	if field, ok := surrealSortFields[opts.SortBy]; ok {
		dir := "DESC"
		if opts.SortOrder == SortAsc {
			dir = "ASC"
		}
		// Field and direction come from fixed whitelists.
		order = fmt.Sprintf("ORDER BY %s %s, created_at ASC", field, dir)
	}

	sql := fmt.Sprintf("SELECT * FROM document %s %s", where, order)
	results, err := surrealdb.Query[[]surrealDocument](ctx, s.db, sql, vars)
	if err != nil {
		return nil, wrapQueryError("list documents", err)
	}

	out := []models.DocumentMetadata{}
	if results == nil || len(*results) == 0 {
		return out, nil
	}
	for _, d := range (*results)[0].Result {
		doc, err := d.toModel()
		if err != nil {
			return nil, fmt.Errorf("list documents: %w", err)
		}
		out = append(out, doc)
	}
	return out, nil
}

func (s *SurrealStore) Update(ctx context.Context, id, summary string, keywords []string) error {
	if keywords == nil {
		keywords = []string{}
	}

	// UPDATE on a missing record id returns no rows instead of creating one.
	results, err := surrealdb.Query[[]surrealDocument](ctx, s.db, `
		UPDATE type::record("document", $id) SET
			summary = $summary,
			keywords = $keywords
		RETURN AFTER
	`, map[string]any{
		"id":       id,
		"summary":  summary,
		"keywords": keywords,
	})
	if err != nil {
		return wrapQueryError("update document", err)
	}
	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// WipeData deletes all documents while preserving the schema.
// Use for testing only.
func (s *SurrealStore) WipeData(ctx context.Context) error {
	s.logger.Warn("wiping all documents")
	if _, err := surrealdb.Query[any](ctx, s.db, "DELETE document", nil); err != nil {
		return wrapQueryError("wipe documents", err)
	}
	return nil
}

// Close closes the SurrealDB connection.
func (s *SurrealStore) Close(ctx context.Context) error {
	s.logger.Info("closing SurrealDB connection")
	return s.conn.Close(ctx)
}
