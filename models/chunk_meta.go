package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FileChunkMeta is the persisted metadata row for one stored chunk.
// EmbeddingID references a vector that was upserted before this row was
// written; the write order is vector store first, metadata second.
type FileChunkMeta struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FileName    string             `bson:"file_name" json:"file_name"`
	ChunkID     int                `bson:"chunk_id" json:"chunk_id"`
	ChunkText   string             `bson:"chunk_text" json:"chunk_text"`
	EmbeddingID string             `bson:"embedding_id" json:"embedding_id"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
}
