package service

import (
	"context"

	"kbbot/internal/models"

	"go.uber.org/zap"
)

const (
	DefaultPerPage = 20
	MaxPerPage     = 100
)

type ConversationPage struct {
	Conversations []*models.Conversation
	Page          int
	PerPage       int
	Total         int
	Pages         int
}

type ConversationService struct {
	botRepo  BotStore
	convRepo ConversationStore
	logger   *zap.Logger
}

func NewConversationService(botRepo BotStore, convRepo ConversationStore, logger *zap.Logger) *ConversationService {
	return &ConversationService{
		botRepo:  botRepo,
		convRepo: convRepo,
		logger:   logger,
	}
}

// Record stores one chat exchange.
func (s *ConversationService) Record(ctx context.Context, conv *models.Conversation) error {
	return s.convRepo.Create(ctx, conv)
}

// List returns a page of a bot's history, newest first. Page numbers start at 1.
func (s *ConversationService) List(ctx context.Context, botID int64, page, perPage int) (*ConversationPage, error) {
	if _, err := s.botRepo.GetByID(ctx, botID); err != nil {
		return nil, err
	}

	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	perPage = min(perPage, MaxPerPage)

	conversations, total, err := s.convRepo.ListByBot(ctx, botID, perPage, (page-1)*perPage)
	if err != nil {
		return nil, err
	}

	return &ConversationPage{
		Conversations: conversations,
		Page:          page,
		PerPage:       perPage,
		Total:         total,
		Pages:         (total + perPage - 1) / perPage,
	}, nil
}
