package storage

import (
	"context"

	"github.com/civicgraph/schemematch/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// FindSimilar finds scheme documents similar to the given vector.
	// Returns documents with similarity >= minSimilarity, up to limit results.
	// Results are ordered by similarity score (highest first).
	FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*core.SimilarityMatch, error)

	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	// The context passed to fn may contain transaction state.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// SchemeRepository provides operations for managing scheme documents.
type SchemeRepository interface {
	Repository
	// AddSchemeDocuments adds one or more scheme documents to storage.
	// Uses content-based IDs (IDFromContent of the document text), so
	// re-seeding the same corpus is idempotent.
	// Sets InsertedAt timestamp if not already set.
	// Returns the documents with IDs and timestamps populated.
	AddSchemeDocuments(ctx context.Context, docs ...*core.SchemeDocument) ([]*core.SchemeDocument, error)

	// DeleteSchemeDocuments removes scheme documents by their IDs.
	// Returns ErrNotFound if any document doesn't exist.
	DeleteSchemeDocuments(ctx context.Context, ids ...core.ID) error

	// GetSchemeDocument retrieves a single scheme document by ID.
	// Returns ErrNotFound if the document doesn't exist.
	GetSchemeDocument(ctx context.Context, id core.ID) (*core.SchemeDocument, error)

	// GetSchemeDocuments retrieves multiple scheme documents by their IDs.
	// Returns only the documents that exist (no error for missing documents).
	GetSchemeDocuments(ctx context.Context, ids ...core.ID) ([]*core.SchemeDocument, error)

	// GetSchemeDocumentsBySource retrieves all documents seeded from one
	// source file, ordered by document ID.
	GetSchemeDocumentsBySource(ctx context.Context, sourceFile string) ([]*core.SchemeDocument, error)

	// CountSchemeDocuments returns the number of stored scheme documents.
	CountSchemeDocuments(ctx context.Context) (int, error)

	// GetIndexInfo retrieves the index metadata written at seed time.
	// Returns ErrNotFound if the store was never seeded.
	GetIndexInfo(ctx context.Context) (*core.IndexInfo, error)

	// PutIndexInfo records which embedding model produced the stored vectors.
	PutIndexInfo(ctx context.Context, info *core.IndexInfo) error
}
