package repository

import (
	"context"

	"kbbot/internal/models"
)

// SearchStore joins the repositories the search engine reads from.
type SearchStore struct {
	knowledgeBases *KnowledgeBaseRepository
	documents      *DocumentRepository
	chunks         *ChunkRepository
}

func NewSearchStore(kbs *KnowledgeBaseRepository, docs *DocumentRepository, chunks *ChunkRepository) *SearchStore {
	return &SearchStore{knowledgeBases: kbs, documents: docs, chunks: chunks}
}

func (s *SearchStore) KnowledgeBaseIDs(ctx context.Context, botID int64) ([]int64, error) {
	return s.knowledgeBases.KnowledgeBaseIDs(ctx, botID)
}

func (s *SearchStore) ProcessedDocuments(ctx context.Context, kbIDs []int64) ([]models.Document, error) {
	return s.documents.ProcessedDocuments(ctx, kbIDs)
}

func (s *SearchStore) ChunksByDocuments(ctx context.Context, docIDs []int64) ([]models.TextChunk, error) {
	return s.chunks.ChunksByDocuments(ctx, docIDs)
}
