package domain

import "time"

// Document represents an ingested source document. Its chunks are owned by
// the document and are removed with it (FK cascade in the schema).
type Document struct {
	ID        string
	Name      string
	CreatedAt time.Time
}
