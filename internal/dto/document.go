package dto

import (
	"time"

	"kbbot/internal/models"
)

const chunkPreviewLength = 200

type DocumentResponse struct {
	ID               int64  `json:"id"`
	Filename         string `json:"filename"`
	OriginalFilename string `json:"original_filename"`
	FileType         string `json:"file_type"`
	FileSize         int64  `json:"file_size"`
	KnowledgeBaseID  int64  `json:"knowledge_base_id"`
	Processed        bool   `json:"processed"`
	ProcessingError  string `json:"processing_error,omitempty"`
	ChunksCount      *int   `json:"chunks_count,omitempty"`
	CreatedAt        string `json:"created_at"`
}

func NewDocumentResponse(doc *models.Document) DocumentResponse {
	return DocumentResponse{
		ID:               doc.ID,
		Filename:         doc.Filename,
		OriginalFilename: doc.OriginalFilename,
		FileType:         string(doc.FileType),
		FileSize:         doc.FileSize,
		KnowledgeBaseID:  doc.KnowledgeBaseID,
		Processed:        doc.Processed,
		ProcessingError:  doc.ProcessingError,
		CreatedAt:        doc.CreatedAt.Format(time.RFC3339),
	}
}

type ChunkResponse struct {
	ID         int64  `json:"id"`
	ChunkIndex int    `json:"chunk_index"`
	DocumentID int64  `json:"document_id"`
	Content    string `json:"content"`
	CreatedAt  string `json:"created_at"`
}

// NewChunkPreview shortens the content to a preview for listings.
func NewChunkPreview(chunk models.TextChunk) ChunkResponse {
	content := chunk.Content
	if runes := []rune(content); len(runes) > chunkPreviewLength {
		content = string(runes[:chunkPreviewLength]) + "..."
	}
	return ChunkResponse{
		ID:         chunk.ID,
		ChunkIndex: chunk.ChunkIndex,
		DocumentID: chunk.DocumentID,
		Content:    content,
		CreatedAt:  chunk.CreatedAt.Format(time.RFC3339),
	}
}
