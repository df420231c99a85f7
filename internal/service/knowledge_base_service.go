package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"kbbot/internal/dto"
	"kbbot/internal/metrics"
	"kbbot/internal/models"
	"kbbot/internal/search"

	"go.uber.org/zap"
)

type KnowledgeBaseService struct {
	botRepo BotStore
	kbRepo  KnowledgeBaseStore
	engine  *search.Engine
	logger  *zap.Logger
}

func NewKnowledgeBaseService(botRepo BotStore, kbRepo KnowledgeBaseStore, engine *search.Engine, logger *zap.Logger) *KnowledgeBaseService {
	return &KnowledgeBaseService{
		botRepo: botRepo,
		kbRepo:  kbRepo,
		engine:  engine,
		logger:  logger,
	}
}

func (s *KnowledgeBaseService) ListByBot(ctx context.Context, botID int64) ([]*models.KnowledgeBase, error) {
	if _, err := s.botRepo.GetByID(ctx, botID); err != nil {
		return nil, err
	}
	return s.kbRepo.ListByBot(ctx, botID)
}

func (s *KnowledgeBaseService) Create(ctx context.Context, botID int64, req *dto.CreateKnowledgeBaseRequest) (*models.KnowledgeBase, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if _, err := s.botRepo.GetByID(ctx, botID); err != nil {
		return nil, err
	}

	kb := &models.KnowledgeBase{
		Name:        name,
		Description: strings.TrimSpace(req.Description),
		BotID:       botID,
	}
	if err := s.kbRepo.Create(ctx, kb); err != nil {
		return nil, fmt.Errorf("failed to create knowledge base: %w", err)
	}

	s.logger.Info("Knowledge base created", zap.Int64("kb_id", kb.ID), zap.Int64("bot_id", botID))
	return kb, nil
}

func (s *KnowledgeBaseService) Get(ctx context.Context, id int64) (*models.KnowledgeBase, error) {
	return s.kbRepo.GetByID(ctx, id)
}

func (s *KnowledgeBaseService) Delete(ctx context.Context, id int64) error {
	return s.kbRepo.Delete(ctx, id)
}

// Stats returns the counts for a single knowledge base.
func (s *KnowledgeBaseService) Stats(ctx context.Context, id int64) (*models.KnowledgeBase, models.KnowledgeBaseStats, error) {
	kb, err := s.kbRepo.GetByID(ctx, id)
	if err != nil {
		return nil, models.KnowledgeBaseStats{}, err
	}
	stats, err := s.kbRepo.Stats(ctx, []int64{id})
	if err != nil {
		return nil, models.KnowledgeBaseStats{}, fmt.Errorf("failed to load stats for knowledge base %d: %w", id, err)
	}
	return kb, stats, nil
}

// BotStats aggregates the counts over every knowledge base of a bot.
func (s *KnowledgeBaseService) BotStats(ctx context.Context, botID int64) (models.KnowledgeBaseStats, error) {
	if _, err := s.botRepo.GetByID(ctx, botID); err != nil {
		return models.KnowledgeBaseStats{}, err
	}
	ids, err := s.kbRepo.KnowledgeBaseIDs(ctx, botID)
	if err != nil {
		return models.KnowledgeBaseStats{}, err
	}
	return s.kbRepo.Stats(ctx, ids)
}

// Search ranks the chunks of one knowledge base against a query.
func (s *KnowledgeBaseService) Search(ctx context.Context, kbID int64, query string, maxResults int) ([]search.ScoredChunk, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: query is required", ErrInvalidInput)
	}
	if _, err := s.kbRepo.GetByID(ctx, kbID); err != nil {
		return nil, err
	}

	start := time.Now()
	matches, err := s.engine.FindChunks(ctx, []int64{kbID}, query, maxResults)
	metrics.CaptureSearch(outcome(len(matches) > 0, err), time.Since(start))
	if err != nil {
		return nil, err
	}
	return matches, nil
}

// Ask answers a question from all knowledge bases of a bot. found is false
// when nothing relevant was stored.
func (s *KnowledgeBaseService) Ask(ctx context.Context, botID int64, query string) (string, bool, error) {
	start := time.Now()
	answer, found, err := s.engine.Search(ctx, botID, query, 0)
	metrics.CaptureSearch(outcome(found, err), time.Since(start))
	if err != nil {
		s.logger.Error("Search failed", zap.Int64("bot_id", botID), zap.Error(err))
		return "", false, err
	}
	return answer, found, nil
}

func outcome(found bool, err error) string {
	switch {
	case err != nil:
		return metrics.OutcomeError
	case found:
		return metrics.OutcomeAnswered
	default:
		return metrics.OutcomeNoAnswer
	}
}
