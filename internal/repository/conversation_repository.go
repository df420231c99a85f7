package repository

import (
	"context"

	"kbbot/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type ConversationRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewConversationRepository(db *pgxpool.Pool, logger *zap.Logger) *ConversationRepository {
	return &ConversationRepository{
		db:     db,
		logger: logger,
	}
}

func (r *ConversationRepository) Create(ctx context.Context, conv *models.Conversation) error {
	query := squirrel.Insert("conversations").
		Columns("telegram_user_id", "telegram_username", "message", "response", "bot_id").
		Values(conv.TelegramUserID, conv.TelegramUsername, conv.Message, conv.Response, conv.BotID).
		Suffix("RETURNING id, created_at").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	return mapError(r.db.QueryRow(ctx, sql, args...).Scan(&conv.ID, &conv.CreatedAt))
}

// ListByBot returns one page of a bot's conversations, newest first, and the
// total number of conversations.
func (r *ConversationRepository) ListByBot(ctx context.Context, botID int64, limit, offset int) ([]*models.Conversation, int, error) {
	countSQL, countArgs, err := squirrel.Select("COUNT(*)").
		From("conversations").
		Where(squirrel.Eq{"bot_id": botID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, 0, err
	}

	var total int
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := squirrel.Select("id", "telegram_user_id", "telegram_username", "message", "response", "bot_id", "created_at").
		From("conversations").
		Where(squirrel.Eq{"bot_id": botID}).
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var conversations []*models.Conversation
	for rows.Next() {
		var c models.Conversation
		if err := rows.Scan(
			&c.ID, &c.TelegramUserID, &c.TelegramUsername, &c.Message, &c.Response, &c.BotID, &c.CreatedAt,
		); err != nil {
			return nil, 0, err
		}
		conversations = append(conversations, &c)
	}

	return conversations, total, rows.Err()
}
