package domain

import "time"

// Chunk is a bounded segment of a document's text stored with its embedding.
// Chunks are immutable: they are created during ingestion and only ever
// deleted together with their parent document.
type Chunk struct {
	ID         string
	DocumentID string
	Index      int
	Content    string
	Embedding  []float32
	Metadata   map[string]string
	CreatedAt  time.Time
}

// MetadataSource is the metadata key carrying the source document name.
const MetadataSource = "source"

// RetrievedPassage is a read-only projection of a chunk plus its cosine
// similarity to a query, produced by the retriever.
type RetrievedPassage struct {
	ChunkID    string
	DocumentID string
	Content    string
	Source     string
	Similarity float64
}
