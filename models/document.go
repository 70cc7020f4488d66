package models

// Content types accepted by the ingestion intake. Anything else is rejected
// before any side effect.
const (
	ContentTypePDF  = "application/pdf"
	ContentTypeText = "text/plain"
)

// Chunking strategy names
const (
	StrategyFixed    = "fixed"
	StrategySentence = "sentence"
)

// TextChunk is one ordered retrieval unit of a document. It lives only for
// the duration of the ingestion call that produced it.
type TextChunk struct {
	Index int    `json:"chunk_index"`
	Text  string `json:"text"`
}

// ChunkResult is the per-chunk outcome of an ingestion call. A chunk either
// carries the embedding id it was stored under, or the reason its writes
// failed. Earlier chunks are never rolled back by a later failure.
type ChunkResult struct {
	ChunkID     int    `json:"chunk_id"`
	EmbeddingID string `json:"embedding_id,omitempty"`
	Error       string `json:"error,omitempty"`
}

// IngestResponse is returned after a document upload
type IngestResponse struct {
	Message    string        `json:"message"`
	FileName   string        `json:"file_name"`
	ChunkCount int           `json:"chunk_count"`
	Chunks     []ChunkResult `json:"chunks"`
}
