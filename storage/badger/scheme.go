package badger

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/civicgraph/schemematch/core"
	"github.com/civicgraph/schemematch/storage"
)

// SchemeRepository implements storage.SchemeRepository for BadgerDB.
type SchemeRepository struct {
	backend *Backend
}

var _ storage.SchemeRepository = (*SchemeRepository)(nil)

// NewSchemeRepository creates a new SchemeRepository on an open backend.
func NewSchemeRepository(backend *Backend) (*SchemeRepository, error) {
	return &SchemeRepository{
		backend: backend,
	}, nil
}

// NewRepository opens a BadgerDB database at path and returns a scheme
// repository over it. Closing the repository closes the database.
func NewRepository(path string) (storage.SchemeRepository, error) {
	backend, err := OpenBackend(path, false)
	if err != nil {
		return nil, err
	}
	return &ownedRepository{SchemeRepository{backend: backend}}, nil
}

// ownedRepository closes its backend on Close.
type ownedRepository struct {
	SchemeRepository
}

func (r *ownedRepository) Close() error {
	return r.backend.Close()
}

// Close releases resources. SchemeRepository does not own the backend.
func (r *SchemeRepository) Close() error {
	return nil
}

// FindSimilar delegates to the backend.
func (r *SchemeRepository) FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*core.SimilarityMatch, error) {
	return r.backend.FindSimilar(ctx, vector, minSimilarity, limit)
}

// WithTransaction delegates to the backend.
func (r *SchemeRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddSchemeDocuments adds one or more scheme documents to storage. IDs are
// derived from the document text, so seeding the same corpus twice leaves a
// single copy of each fragment.
func (r *SchemeRepository) AddSchemeDocuments(ctx context.Context, docs ...*core.SchemeDocument) ([]*core.SchemeDocument, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, doc := range docs {
			if doc.Id == 0 {
				doc.Id = core.IDFromContent(doc.Text)
			}

			key := makeSchemeDocKey(doc.Id)
			now := time.Now().UTC()

			// Re-seeding an existing fragment keeps its original insertion time.
			old, err := readSchemeDocument(tx, key)
			if err != nil {
				return err
			}
			if old != nil {
				doc.InsertedAt = old.InsertedAt
			} else if doc.InsertedAt.IsZero() {
				doc.InsertedAt = now
			}
			doc.UpdatedAt = now

			value := storage.MarshalSchemeDocument(doc)
			if err := tx.Set(key, value); err != nil {
				return err
			}

			if doc.SourceFile != "" {
				sourceKey := makeSourceKey(doc.SourceFile, doc.Id)
				if err := tx.Set(sourceKey, storage.MarshalID(doc.Id)); err != nil {
					return err
				}
			}
		}
		return tx.Commit()
	}, true)

	return docs, err
}

// DeleteSchemeDocuments removes scheme documents by their IDs.
func (r *SchemeRepository) DeleteSchemeDocuments(ctx context.Context, ids ...core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeSchemeDocKey(id)

			// Read document to get metadata for index cleanup
			doc, err := readSchemeDocument(tx, key)
			if err != nil {
				return err
			}
			if doc == nil {
				return storage.ErrNotFound
			}

			if doc.SourceFile != "" {
				sourceKey := makeSourceKey(doc.SourceFile, doc.Id)
				if err := tx.Delete(sourceKey); err != nil {
					return err
				}
			}

			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetSchemeDocument retrieves a single scheme document by ID.
func (r *SchemeRepository) GetSchemeDocument(ctx context.Context, id core.ID) (*core.SchemeDocument, error) {
	var result *core.SchemeDocument
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeSchemeDocKey(id)
		var err error
		result, err = readSchemeDocument(tx, key)
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// GetSchemeDocuments retrieves multiple scheme documents by their IDs.
func (r *SchemeRepository) GetSchemeDocuments(ctx context.Context, ids ...core.ID) ([]*core.SchemeDocument, error) {
	var result []*core.SchemeDocument
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeSchemeDocKey(id)
			doc, err := readSchemeDocument(tx, key)
			if err != nil {
				return err
			}
			if doc != nil {
				result = append(result, doc)
			}
		}
		return nil
	}, false)
	return result, err
}

// GetSchemeDocumentsBySource retrieves all documents seeded from one source file.
func (r *SchemeRepository) GetSchemeDocumentsBySource(ctx context.Context, sourceFile string) ([]*core.SchemeDocument, error) {
	var ids []core.ID
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makePartialSourceKey(sourceFile)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			item := iter.Item()
			err := item.Value(func(val []byte) error {
				id, err := storage.UnmarshalID(val)
				if err != nil {
					return err
				}
				ids = append(ids, id)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return r.GetSchemeDocuments(ctx, ids...)
}

// CountSchemeDocuments returns the number of stored scheme documents.
func (r *SchemeRepository) CountSchemeDocuments(ctx context.Context) (int, error) {
	count := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(schemeDocPrefix + ":")
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	return count, err
}

// GetIndexInfo retrieves the index metadata written at seed time.
func (r *SchemeRepository) GetIndexInfo(ctx context.Context) (*core.IndexInfo, error) {
	var result *core.IndexInfo
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeIndexInfoKey())
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			result, err = storage.UnmarshalIndexInfo(val)
			return err
		})
	}, false)
	return result, err
}

// PutIndexInfo records which embedding model produced the stored vectors.
func (r *SchemeRepository) PutIndexInfo(ctx context.Context, info *core.IndexInfo) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		info.UpdatedAt = time.Now().UTC()
		if err := tx.Set(makeIndexInfoKey(), storage.MarshalIndexInfo(info)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// readSchemeDocument reads a scheme document from the transaction.
func readSchemeDocument(tx *badger.Txn, key []byte) (*core.SchemeDocument, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var doc *core.SchemeDocument
	err = item.Value(func(val []byte) error {
		var err error
		doc, err = storage.UnmarshalSchemeDocument(val)
		return err
	})
	return doc, err
}
