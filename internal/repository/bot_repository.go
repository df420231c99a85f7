package repository

import (
	"context"

	"kbbot/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

var botColumns = []string{
	"id", "name", "token", "username", "description", "is_active", "created_at", "updated_at",
	"(SELECT COUNT(*) FROM knowledge_bases kb WHERE kb.bot_id = bots.id) AS knowledge_bases_count",
}

type BotRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewBotRepository(db *pgxpool.Pool, logger *zap.Logger) *BotRepository {
	return &BotRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts the bot. A taken username yields ErrConflict.
func (r *BotRepository) Create(ctx context.Context, bot *models.Bot) error {
	query := squirrel.Insert("bots").
		Columns("name", "token", "username", "description").
		Values(bot.Name, bot.Token, bot.Username, bot.Description).
		Suffix("RETURNING id, is_active, created_at, updated_at").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	err = r.db.QueryRow(ctx, sql, args...).Scan(&bot.ID, &bot.IsActive, &bot.CreatedAt, &bot.UpdatedAt)
	return mapError(err)
}

func (r *BotRepository) GetByID(ctx context.Context, id int64) (*models.Bot, error) {
	query := squirrel.Select(botColumns...).
		From("bots").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var bot models.Bot
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&bot.ID, &bot.Name, &bot.Token, &bot.Username, &bot.Description, &bot.IsActive,
		&bot.CreatedAt, &bot.UpdatedAt, &bot.KnowledgeBasesCount,
	)
	if err != nil {
		return nil, mapError(err)
	}

	return &bot, nil
}

func (r *BotRepository) List(ctx context.Context) ([]*models.Bot, error) {
	query := squirrel.Select(botColumns...).
		From("bots").
		OrderBy("id ASC").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bots []*models.Bot
	for rows.Next() {
		var bot models.Bot
		if err := rows.Scan(
			&bot.ID, &bot.Name, &bot.Token, &bot.Username, &bot.Description, &bot.IsActive,
			&bot.CreatedAt, &bot.UpdatedAt, &bot.KnowledgeBasesCount,
		); err != nil {
			return nil, err
		}
		bots = append(bots, &bot)
	}

	return bots, rows.Err()
}

func (r *BotRepository) Update(ctx context.Context, bot *models.Bot) error {
	query := squirrel.Update("bots").
		Set("name", bot.Name).
		Set("token", bot.Token).
		Set("description", bot.Description).
		Set("is_active", bot.IsActive).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": bot.ID}).
		Suffix("RETURNING updated_at").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	return mapError(r.db.QueryRow(ctx, sql, args...).Scan(&bot.UpdatedAt))
}

func (r *BotRepository) SetActive(ctx context.Context, id int64, active bool) error {
	query := squirrel.Update("bots").
		Set("is_active", active).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	return expectAffected(tag)
}

// DeactivateAll clears is_active on every bot. Nothing is polling right
// after start-up, so stale flags from a previous process are reset.
func (r *BotRepository) DeactivateAll(ctx context.Context) error {
	query := squirrel.Update("bots").
		Set("is_active", false).
		Where(squirrel.Eq{"is_active": true}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

// Delete removes the bot together with its knowledge bases, documents,
// chunks and conversations.
func (r *BotRepository) Delete(ctx context.Context, id int64) error {
	sql, args, err := squirrel.Delete("bots").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	return expectAffected(tag)
}
