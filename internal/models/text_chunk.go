package models

import "time"

// TextChunk is an immutable slice of a document's text. ChunkIndex values of
// one document are contiguous from 0.
type TextChunk struct {
	ID         int64     `db:"id"`
	Content    string    `db:"content"`
	ChunkIndex int       `db:"chunk_index"`
	DocumentID int64     `db:"document_id"`
	CreatedAt  time.Time `db:"created_at"`
}
