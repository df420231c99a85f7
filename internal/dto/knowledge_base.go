package dto

import (
	"time"

	"kbbot/internal/models"
)

type CreateKnowledgeBaseRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type KnowledgeBaseResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	BotID       int64  `json:"bot_id"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

func NewKnowledgeBaseResponse(kb *models.KnowledgeBase) KnowledgeBaseResponse {
	return KnowledgeBaseResponse{
		ID:          kb.ID,
		Name:        kb.Name,
		Description: kb.Description,
		BotID:       kb.BotID,
		CreatedAt:   kb.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   kb.UpdatedAt.Format(time.RFC3339),
	}
}

type StatsResponse struct {
	KnowledgeBaseID    int64  `json:"knowledge_base_id,omitempty"`
	Name               string `json:"name,omitempty"`
	KnowledgeBases     int    `json:"knowledge_bases"`
	TotalDocuments     int    `json:"total_documents"`
	ProcessedDocuments int    `json:"processed_documents"`
	TotalChunks        int    `json:"total_chunks"`
	ProcessingComplete bool   `json:"processing_complete"`
}

func NewStatsResponse(stats models.KnowledgeBaseStats) StatsResponse {
	return StatsResponse{
		KnowledgeBases:     stats.KnowledgeBases,
		TotalDocuments:     stats.TotalDocuments,
		ProcessedDocuments: stats.ProcessedDocuments,
		TotalChunks:        stats.TotalChunks,
		ProcessingComplete: stats.ProcessingComplete(),
	}
}
