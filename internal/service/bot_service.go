package service

import (
	"context"
	"fmt"
	"strings"

	"kbbot/internal/dto"
	"kbbot/internal/models"

	"go.uber.org/zap"
)

type BotService struct {
	botRepo BotStore
	logger  *zap.Logger
}

func NewBotService(botRepo BotStore, logger *zap.Logger) *BotService {
	return &BotService{
		botRepo: botRepo,
		logger:  logger,
	}
}

// Create registers a bot. The username must be unique across bots.
func (s *BotService) Create(ctx context.Context, req *dto.CreateBotRequest) (*models.Bot, error) {
	bot := &models.Bot{
		Name:        strings.TrimSpace(req.Name),
		Token:       strings.TrimSpace(req.Token),
		Username:    strings.TrimPrefix(strings.TrimSpace(req.Username), "@"),
		Description: strings.TrimSpace(req.Description),
	}
	if bot.Name == "" || bot.Token == "" || bot.Username == "" {
		return nil, fmt.Errorf("%w: name, token and username are required", ErrInvalidInput)
	}

	if err := s.botRepo.Create(ctx, bot); err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	s.logger.Info("Bot created", zap.Int64("bot_id", bot.ID), zap.String("username", bot.Username))
	return bot, nil
}

func (s *BotService) List(ctx context.Context) ([]*models.Bot, error) {
	return s.botRepo.List(ctx)
}

func (s *BotService) Get(ctx context.Context, id int64) (*models.Bot, error) {
	return s.botRepo.GetByID(ctx, id)
}

func (s *BotService) Update(ctx context.Context, id int64, req *dto.UpdateBotRequest) (*models.Bot, error) {
	bot, err := s.botRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name must not be empty", ErrInvalidInput)
		}
		bot.Name = name
	}
	if req.Token != nil {
		token := strings.TrimSpace(*req.Token)
		if token == "" {
			return nil, fmt.Errorf("%w: token must not be empty", ErrInvalidInput)
		}
		bot.Token = token
	}
	if req.Description != nil {
		bot.Description = strings.TrimSpace(*req.Description)
	}
	if req.IsActive != nil {
		bot.IsActive = *req.IsActive
	}

	if err := s.botRepo.Update(ctx, bot); err != nil {
		return nil, fmt.Errorf("failed to update bot %d: %w", id, err)
	}
	return bot, nil
}

func (s *BotService) Delete(ctx context.Context, id int64) error {
	if err := s.botRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Bot deleted", zap.Int64("bot_id", id))
	return nil
}
