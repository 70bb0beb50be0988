package db

import (
	"errors"
	"fmt"
	"strings"

	"github.com/surrealdb/surrealdb.go"
	"go.mongodb.org/mongo-driver/mongo"
)

// Sentinel errors for store operations.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrDuplicateDocument indicates a record with the same document name
	// already exists. Nothing was written.
	ErrDuplicateDocument = errors.New("document already exists")

	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("document not found")

	// ErrPersistence indicates the store could not be reached or rejected
	// the operation.
	ErrPersistence = errors.New("persistence failed")
)

// wrapQueryError maps a SurrealDB error onto the store sentinels. Unique
// index violations become ErrDuplicateDocument; anything else is
// ErrPersistence.
func wrapQueryError(op string, err error) error {
	if err == nil {
		return nil
	}

	var queryErr *surrealdb.QueryError
	if errors.As(err, &queryErr) {
		msg := queryErr.Message
		if strings.Contains(msg, "already contains") || strings.Contains(msg, "already exists") {
			return fmt.Errorf("%s: %w: %s", op, ErrDuplicateDocument, msg)
		}
	}

	return fmt.Errorf("%s: %w: %w", op, ErrPersistence, err)
}

// wrapMongoError maps a MongoDB driver error onto the store sentinels.
func wrapMongoError(op string, err error) error {
	if err == nil {
		return nil
	}
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%s: %w", op, ErrDuplicateDocument)
	}
	return fmt.Errorf("%s: %w: %w", op, ErrPersistence, err)
}
