package repository

import (
	"context"
	"errors"
	"fmt"

	"kbbot/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// ErrAlreadyProcessed is returned when chunks are saved for a document that
// another run has already finished.
var ErrAlreadyProcessed = errors.New("document already processed")

var documentColumns = []string{
	"id", "filename", "original_filename", "file_path", "file_type", "file_size",
	"knowledge_base_id", "processed", "processing_error", "created_at",
}

type DocumentRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewDocumentRepository(db *pgxpool.Pool, logger *zap.Logger) *DocumentRepository {
	return &DocumentRepository{
		db:     db,
		logger: logger,
	}
}

func (r *DocumentRepository) Create(ctx context.Context, doc *models.Document) error {
	query := squirrel.Insert("documents").
		Columns("filename", "original_filename", "file_path", "file_type", "file_size", "knowledge_base_id").
		Values(doc.Filename, doc.OriginalFilename, doc.FilePath, doc.FileType, doc.FileSize, doc.KnowledgeBaseID).
		Suffix("RETURNING id, processed, created_at").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	err = r.db.QueryRow(ctx, sql, args...).Scan(&doc.ID, &doc.Processed, &doc.CreatedAt)
	return mapError(err)
}

func (r *DocumentRepository) GetByID(ctx context.Context, id int64) (*models.Document, error) {
	query := squirrel.Select(documentColumns...).
		From("documents").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	doc, err := scanDocument(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, mapError(err)
	}
	return doc, nil
}

func (r *DocumentRepository) ListByKnowledgeBase(ctx context.Context, kbID int64) ([]*models.Document, error) {
	return r.list(ctx, squirrel.Eq{"knowledge_base_id": kbID}, "created_at DESC")
}

// ProcessedDocuments returns the processed documents of the given knowledge
// bases in id order.
func (r *DocumentRepository) ProcessedDocuments(ctx context.Context, kbIDs []int64) ([]models.Document, error) {
	if len(kbIDs) == 0 {
		return nil, nil
	}

	docs, err := r.list(ctx, squirrel.And{
		squirrel.Eq{"knowledge_base_id": kbIDs},
		squirrel.Eq{"processed": true},
	}, "id ASC")
	if err != nil {
		return nil, err
	}

	out := make([]models.Document, len(docs))
	for i, d := range docs {
		out[i] = *d
	}
	return out, nil
}

func (r *DocumentRepository) list(ctx context.Context, where squirrel.Sqlizer, orderBy string) ([]*models.Document, error) {
	query := squirrel.Select(documentColumns...).
		From("documents").
		Where(where).
		OrderBy(orderBy).
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

	var documents []*models.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		documents = append(documents, doc)
	}

	return documents, rows.Err()
}

// SaveChunks stores the chunks of a document and marks it processed in one
// transaction. The flag only flips from false, so a concurrent or repeated run
// gets ErrAlreadyProcessed and writes nothing.
func (r *DocumentRepository) SaveChunks(ctx context.Context, docID int64, chunks []string) (err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	sql, args, err := squirrel.Update("documents").
		Set("processed", true).
		Set("processing_error", "").
		Where(squirrel.Eq{"id": docID, "processed": false}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("failed to mark document processed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAlreadyProcessed
	}

	rows := make([][]any, len(chunks))
	for i, content := range chunks {
		rows[i] = []any{content, i, docID}
	}
	if _, err = tx.CopyFrom(ctx,
		pgx.Identifier{"text_chunks"},
		[]string{"content", "chunk_index", "document_id"},
		pgx.CopyFromRows(rows),
	); err != nil {
		return fmt.Errorf("failed to insert chunks: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit chunks: %w", err)
	}

	r.logger.Debug("Chunks saved", zap.Int64("document_id", docID), zap.Int("chunks", len(chunks)))
	return nil
}

// MarkFailed records why processing failed. A processed document is left as is.
func (r *DocumentRepository) MarkFailed(ctx context.Context, docID int64, reason string) error {
	sql, args, err := squirrel.Update("documents").
		Set("processing_error", reason).
		Where(squirrel.Eq{"id": docID, "processed": false}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *DocumentRepository) Delete(ctx context.Context, id int64) error {
	sql, args, err := squirrel.Delete("documents").
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

func scanDocument(row pgx.Row) (*models.Document, error) {
	var doc models.Document
	err := row.Scan(
		&doc.ID, &doc.Filename, &doc.OriginalFilename, &doc.FilePath, &doc.FileType, &doc.FileSize,
		&doc.KnowledgeBaseID, &doc.Processed, &doc.ProcessingError, &doc.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}
