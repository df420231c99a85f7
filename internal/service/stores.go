package service

import (
	"context"

	"kbbot/internal/models"
)

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

type BotStore interface {
	Create(ctx context.Context, bot *models.Bot) error
	GetByID(ctx context.Context, id int64) (*models.Bot, error)
	List(ctx context.Context) ([]*models.Bot, error)
	Update(ctx context.Context, bot *models.Bot) error
	Delete(ctx context.Context, id int64) error
}

type KnowledgeBaseStore interface {
	Create(ctx context.Context, kb *models.KnowledgeBase) error
	GetByID(ctx context.Context, id int64) (*models.KnowledgeBase, error)
	ListByBot(ctx context.Context, botID int64) ([]*models.KnowledgeBase, error)
	KnowledgeBaseIDs(ctx context.Context, botID int64) ([]int64, error)
	Delete(ctx context.Context, id int64) error
	Stats(ctx context.Context, kbIDs []int64) (models.KnowledgeBaseStats, error)
}

type DocumentStore interface {
	Create(ctx context.Context, doc *models.Document) error
	GetByID(ctx context.Context, id int64) (*models.Document, error)
	ListByKnowledgeBase(ctx context.Context, kbID int64) ([]*models.Document, error)
	SaveChunks(ctx context.Context, docID int64, chunks []string) error
	MarkFailed(ctx context.Context, docID int64, reason string) error
	Delete(ctx context.Context, id int64) error
}

type ChunkStore interface {
	ChunksByDocuments(ctx context.Context, docIDs []int64) ([]models.TextChunk, error)
	CountByDocument(ctx context.Context, docID int64) (int, error)
}

type ConversationStore interface {
	Create(ctx context.Context, conv *models.Conversation) error
	ListByBot(ctx context.Context, botID int64, limit, offset int) ([]*models.Conversation, int, error)
}

// Queue schedules a document for background processing.
type Queue interface {
	Enqueue(documentID int64) error
}
