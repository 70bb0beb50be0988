package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/raphaelgruber/docpipe/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoConfig holds MongoDB connection configuration.
type MongoConfig struct {
	URI        string
	Database   string
	Collection string
}

// MongoStore stores document metadata in a MongoDB collection with a unique
// index on document_name.
type MongoStore struct {
	client    *mongo.Client
	documents *mongo.Collection
	logger    *slog.Logger
}

type mongoDocument struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	DocumentName   string             `bson:"document_name"`
	Path           string             `bson:"path"`
	SizeBytes      int64              `bson:"size"`
	NumPages       int                `bson:"num_pages"`
	Summary        string             `bson:"summary,omitempty"`
	Keywords       []string           `bson:"keywords,omitempty"`
	Status         string             `bson:"status"`
	ProcessingTime float64            `bson:"processing_time"`
	CreatedAt      time.Time          `bson:"created_at"`
}

func (d mongoDocument) toModel() models.DocumentMetadata {
	return models.DocumentMetadata{
		ID:             d.ID.Hex(),
		DocumentName:   d.DocumentName,
		Path:           d.Path,
		SizeBytes:      d.SizeBytes,
		NumPages:       d.NumPages,
		Summary:        d.Summary,
		Keywords:       d.Keywords,
		Status:         models.Status(d.Status),
		ProcessingTime: d.ProcessingTime,
		CreatedAt:      d.CreatedAt,
	}
}

var mongoSortFields = map[SortField]string{
	SortByName:           "document_name",
	SortByPages:          "num_pages",
	SortByProcessingTime: "processing_time",
}

// NewMongoStore connects to MongoDB and ensures the unique document_name index.
func NewMongoStore(ctx context.Context, cfg MongoConfig, logger *slog.Logger) (*MongoStore, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	logger.Info("connecting to MongoDB", "database", cfg.Database, "collection", cfg.Collection)
	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("%w: connect mongodb: %w", ErrPersistence, err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("%w: ping mongodb: %w", ErrPersistence, err)
	}

	s := &MongoStore{
		client:    client,
		documents: client.Database(cfg.Database).Collection(cfg.Collection),
		logger:    logger,
	}

	_, err = s.documents.Indexes().CreateOne(connectCtx, mongo.IndexModel{
		Keys:    bson.D{{Key: "document_name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("%w: create document_name index: %w", ErrPersistence, err)
	}

	logger.Info("MongoDB connection established")
	return s, nil
}

func (s *MongoStore) Insert(ctx context.Context, meta *models.DocumentMetadata) (string, error) {
	doc := mongoDocument{
		DocumentName:   meta.DocumentName,
		Path:           meta.Path,
		SizeBytes:      meta.SizeBytes,
		NumPages:       meta.NumPages,
		Summary:        meta.Summary,
		Keywords:       meta.Keywords,
		Status:         string(meta.Status),
		ProcessingTime: meta.ProcessingTime,
		CreatedAt:      meta.CreatedAt,
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}

	res, err := s.documents.InsertOne(ctx, doc)
	if err != nil {
		return "", wrapMongoError("insert document", err)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("insert document: unexpected id type %T", res.InsertedID)
	}
	meta.ID = oid.Hex()
	return meta.ID, nil
}

func (s *MongoStore) GetByID(ctx context.Context, id string) (*models.DocumentMetadata, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}

	var doc mongoDocument
	err = s.documents.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapMongoError("get document", err)
	}

	m := doc.toModel()
	return &m, nil
}

func (s *MongoStore) List(ctx context.Context, opts ListOptions) ([]models.DocumentMetadata, error) {
	filter := bson.M{}
	if opts.Status != "" {
		filter["status"] = string(opts.Status)
	}

	// _id is monotonic per client, so it doubles as creation order.
	sort := bson.D{{Key: "_id", Value: 1}}
	if field, ok := mongoSortFields[opts.SortBy]; ok {
		dir := -1
		if opts.SortOrder == SortAsc {
			dir = 1
		}
		sort = bson.D{{Key: field, Value: dir}, {Key: "_id", Value: 1}}
	}

	cursor, err := s.documents.Find(ctx, filter, options.Find().SetSort(sort))
	if err != nil {
		return nil, wrapMongoError("list documents", err)
	}
	defer cursor.Close(ctx)

	out := []models.DocumentMetadata{}
	for cursor.Next(ctx) {
		var doc mongoDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode document: %w", err)
		}
		out = append(out, doc.toModel())
	}
	if err := cursor.Err(); err != nil {
		return nil, wrapMongoError("list documents", err)
	}
	return out, nil
}

func (s *MongoStore) Update(ctx context.Context, id, summary string, keywords []string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	res, err := s.documents.UpdateByID(ctx, oid, bson.M{"$set": bson.M{
		"summary":  summary,
		"keywords": keywords,
	}})
	if err != nil {
		return wrapMongoError("update document", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// Close disconnects from MongoDB.
func (s *MongoStore) Close(ctx context.Context) error {
	s.logger.Info("closing MongoDB connection")
	return s.client.Disconnect(ctx)
}
