package repository

import (
	"context"

	"kbbot/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type ChunkRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewChunkRepository(db *pgxpool.Pool, logger *zap.Logger) *ChunkRepository {
	return &ChunkRepository{
		db:     db,
		logger: logger,
	}
}

// ChunksByDocuments returns every chunk of the given documents ordered by
// document and position.
func (r *ChunkRepository) ChunksByDocuments(ctx context.Context, docIDs []int64) ([]models.TextChunk, error) {
	if len(docIDs) == 0 {
		return nil, nil
	}

	query := squirrel.Select("id", "content", "chunk_index", "document_id", "created_at").
		From("text_chunks").
		Where(squirrel.Eq{"document_id": docIDs}).
		OrderBy("document_id ASC", "chunk_index ASC").
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

	var chunks []models.TextChunk
	for rows.Next() {
		var c models.TextChunk
		if err := rows.Scan(&c.ID, &c.Content, &c.ChunkIndex, &c.DocumentID, &c.CreatedAt); err != nil {
			return nil, err
		}
		chunks = append(chunks, c)
	}

	return chunks, rows.Err()
}

func (r *ChunkRepository) CountByDocument(ctx context.Context, docID int64) (int, error) {
	sql, args, err := squirrel.Select("COUNT(*)").
		From("text_chunks").
		Where(squirrel.Eq{"document_id": docID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return 0, err
	}

	var n int
	err = r.db.QueryRow(ctx, sql, args...).Scan(&n)
	return n, err
}
