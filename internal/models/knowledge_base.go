package models

import "time"

type KnowledgeBase struct {
	ID          int64     `db:"id"`
	Name        string    `db:"name"`
	Description string    `db:"description"`
	BotID       int64     `db:"bot_id"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// KnowledgeBaseStats aggregates document and chunk counts over one or more knowledge bases.
type KnowledgeBaseStats struct {
	KnowledgeBases     int
	TotalDocuments     int
	ProcessedDocuments int
	TotalChunks        int
}

func (s KnowledgeBaseStats) ProcessingComplete() bool {
	return s.ProcessedDocuments == s.TotalDocuments
}
