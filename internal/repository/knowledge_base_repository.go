package repository

import (
	"context"

	"kbbot/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type KnowledgeBaseRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewKnowledgeBaseRepository(db *pgxpool.Pool, logger *zap.Logger) *KnowledgeBaseRepository {
	return &KnowledgeBaseRepository{
		db:     db,
		logger: logger,
	}
}

func (r *KnowledgeBaseRepository) Create(ctx context.Context, kb *models.KnowledgeBase) error {
	query := squirrel.Insert("knowledge_bases").
		Columns("name", "description", "bot_id").
		Values(kb.Name, kb.Description, kb.BotID).
		Suffix("RETURNING id, created_at, updated_at").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	err = r.db.QueryRow(ctx, sql, args...).Scan(&kb.ID, &kb.CreatedAt, &kb.UpdatedAt)
	return mapError(err)
}

func (r *KnowledgeBaseRepository) GetByID(ctx context.Context, id int64) (*models.KnowledgeBase, error) {
	query := squirrel.Select("id", "name", "description", "bot_id", "created_at", "updated_at").
		From("knowledge_bases").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var kb models.KnowledgeBase
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&kb.ID, &kb.Name, &kb.Description, &kb.BotID, &kb.CreatedAt, &kb.UpdatedAt,
	)
	if err != nil {
		return nil, mapError(err)
	}

	return &kb, nil
}

func (r *KnowledgeBaseRepository) ListByBot(ctx context.Context, botID int64) ([]*models.KnowledgeBase, error) {
	query := squirrel.Select("id", "name", "description", "bot_id", "created_at", "updated_at").
		From("knowledge_bases").
		Where(squirrel.Eq{"bot_id": botID}).
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

	var kbs []*models.KnowledgeBase
	for rows.Next() {
		var kb models.KnowledgeBase
		if err := rows.Scan(&kb.ID, &kb.Name, &kb.Description, &kb.BotID, &kb.CreatedAt, &kb.UpdatedAt); err != nil {
			return nil, err
		}
		kbs = append(kbs, &kb)
	}

	return kbs, rows.Err()
}

// KnowledgeBaseIDs lists the knowledge bases owned by a bot. An unknown bot
// has none.
func (r *KnowledgeBaseRepository) KnowledgeBaseIDs(ctx context.Context, botID int64) ([]int64, error) {
	query := squirrel.Select("id").
		From("knowledge_bases").
		Where(squirrel.Eq{"bot_id": botID}).
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

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

func (r *KnowledgeBaseRepository) Delete(ctx context.Context, id int64) error {
	sql, args, err := squirrel.Delete("knowledge_bases").
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

// Stats counts documents and chunks across the given knowledge bases.
func (r *KnowledgeBaseRepository) Stats(ctx context.Context, kbIDs []int64) (models.KnowledgeBaseStats, error) {
	stats := models.KnowledgeBaseStats{KnowledgeBases: len(kbIDs)}
	if len(kbIDs) == 0 {
		return stats, nil
	}

	docQuery := squirrel.Select("COUNT(*)", "COUNT(*) FILTER (WHERE processed)").
		From("documents").
		Where(squirrel.Eq{"knowledge_base_id": kbIDs}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := docQuery.ToSql()
	if err != nil {
		return stats, err
	}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&stats.TotalDocuments, &stats.ProcessedDocuments); err != nil {
		return stats, err
	}

	chunkQuery := squirrel.Select("COUNT(*)").
		From("text_chunks tc").
		Join("documents d ON d.id = tc.document_id").
		Where(squirrel.Eq{"d.knowledge_base_id": kbIDs}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err = chunkQuery.ToSql()
	if err != nil {
		return stats, err
	}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&stats.TotalChunks); err != nil {
		return stats, err
	}

	return stats, nil
}
