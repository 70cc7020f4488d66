package services

import (
	"context"
	"fmt"
	"strconv"

	"github.com/philippgille/chromem-go"
)

// VectorPayload travels with every upserted vector so the index stays
// self-describing without a lookup into the metadata store.
type VectorPayload struct {
	FileName string
	ChunkID  int
	Text     string
}

// VectorStore is the upsert-only boundary to the vector index. This service
// defines no query or delete contract.
type VectorStore interface {
	Upsert(ctx context.Context, id string, vector []float32, payload VectorPayload) error
}

// ChromemStore keeps vectors in an embedded chromem-go collection persisted
// on local disk.
type ChromemStore struct {
	collection *chromem.Collection
}

// NewChromemStore opens (or creates) the persistent vector collection.
func NewChromemStore(path, collectionName string) (*ChromemStore, error) {
	db, err := chromem.NewPersistentDB(path, false)
	if err != nil {
		return nil, fmt.Errorf("failed to open vector store at %s: %w", path, err)
	}
	collection, err := db.GetOrCreateCollection(collectionName, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open vector collection %q: %w", collectionName, err)
	}
	return &ChromemStore{collection: collection}, nil
}

// Upsert stores the vector under the caller-chosen id. Re-upserting an id
// replaces the previous entry, which makes re-ingestion idempotent.
func (s *ChromemStore) Upsert(ctx context.Context, id string, vector []float32, payload VectorPayload) error {
	return s.collection.AddDocument(ctx, chromem.Document{
		ID:        id,
		Content:   payload.Text,
		Embedding: vector,
		Metadata: map[string]string{
			"file_name": payload.FileName,
			"chunk_id":  strconv.Itoa(payload.ChunkID),
		},
	})
}
