package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"kbbot/internal/metrics"
	"kbbot/internal/models"
	"kbbot/internal/repository"
	"kbbot/internal/search"
	"kbbot/pkg/lock"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Extractor turns a stored file into plain text.
type Extractor interface {
	ExtractFile(fileType models.FileType, path string) (string, error)
}

type DocumentService struct {
	kbRepo        KnowledgeBaseStore
	docRepo       DocumentStore
	chunkRepo     ChunkStore
	extractor     Extractor
	segmenter     *search.Segmenter
	locker        lock.Locker
	queue         Queue
	uploadDir     string
	maxUploadSize int64
	lockTTL       time.Duration
	logger        *zap.Logger
}

type DocumentServiceConfig struct {
	UploadDir     string
	MaxUploadSize int64
	LockTTL       time.Duration
}

func NewDocumentService(
	kbRepo KnowledgeBaseStore,
	docRepo DocumentStore,
	chunkRepo ChunkStore,
	extractor Extractor,
	segmenter *search.Segmenter,
	locker lock.Locker,
	queue Queue,
	cfg DocumentServiceConfig,
	logger *zap.Logger,
) *DocumentService {
	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		logger.Warn("Failed to create upload directory", zap.Error(err))
	}

	return &DocumentService{
		kbRepo:        kbRepo,
		docRepo:       docRepo,
		chunkRepo:     chunkRepo,
		extractor:     extractor,
		segmenter:     segmenter,
		locker:        locker,
		queue:         queue,
		uploadDir:     cfg.UploadDir,
		maxUploadSize: cfg.MaxUploadSize,
		lockTTL:       cfg.LockTTL,
		logger:        logger,
	}
}

// Upload stores the file under <upload_dir>/<kb_id>/ and queues it for
// processing. The returned document is still unprocessed.
func (s *DocumentService) Upload(ctx context.Context, kbID int64, originalName string, file io.Reader) (*models.Document, error) {
	originalName = filepath.Base(strings.TrimSpace(originalName))
	fileType, ok := models.ParseFileType(originalName)
	if !ok || originalName == "." {
		return nil, fmt.Errorf("%w: %q (allowed: txt, pdf, docx, md)", ErrUnsupportedFileType, originalName)
	}

	if _, err := s.kbRepo.GetByID(ctx, kbID); err != nil {
		return nil, err
	}

	dir := filepath.Join(s.uploadDir, strconv.FormatInt(kbID, 10))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	storedName := strings.ReplaceAll(uuid.NewString(), "-", "") + "." + string(fileType)
	path := filepath.Join(dir, storedName)

	size, err := s.saveFile(path, file)
	if err != nil {
		return nil, err
	}

	doc := &models.Document{
		Filename:         storedName,
		OriginalFilename: originalName,
		FilePath:         path,
		FileType:         fileType,
		FileSize:         size,
		KnowledgeBaseID:  kbID,
	}
	if err := s.docRepo.Create(ctx, doc); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("failed to create document record: %w", err)
	}

	s.logger.Info("Document uploaded",
		zap.Int64("document_id", doc.ID),
		zap.Int64("kb_id", kbID),
		zap.String("file_type", string(fileType)),
		zap.Int64("file_size", size),
	)

	s.enqueue(doc.ID)
	return doc, nil
}

func (s *DocumentService) saveFile(path string, file io.Reader) (int64, error) {
	dst, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	src := file
	if s.maxUploadSize > 0 {
		src = io.LimitReader(file, s.maxUploadSize+1)
	}

	size, err := io.Copy(dst, src)
	if err != nil {
		os.Remove(path)
		return 0, fmt.Errorf("failed to save file: %w", err)
	}
	if s.maxUploadSize > 0 && size > s.maxUploadSize {
		os.Remove(path)
		return 0, fmt.Errorf("%w: limit is %d bytes", ErrFileTooLarge, s.maxUploadSize)
	}
	return size, nil
}

// Reprocess queues an existing document again. Processing is idempotent, so
// a processed document stays untouched.
func (s *DocumentService) Reprocess(ctx context.Context, docID int64) (*models.Document, error) {
	doc, err := s.docRepo.GetByID(ctx, docID)
	if err != nil {
		return nil, err
	}
	s.enqueue(doc.ID)
	return doc, nil
}

func (s *DocumentService) enqueue(docID int64) {
	if s.queue == nil {
		return
	}
	if err := s.queue.Enqueue(docID); err != nil {
		s.logger.Warn("Failed to queue document, it stays unprocessed until reprocessed",
			zap.Int64("document_id", docID),
			zap.Error(err),
		)
	}
}

// Process extracts and segments one document and stores its chunks. Only one
// run per document holds the lock, and an already processed document is a
// successful no-op.
func (s *DocumentService) Process(ctx context.Context, docID int64) error {
	start := time.Now()

	unlock, err := s.locker.TryLock(ctx, "document:"+strconv.FormatInt(docID, 10), s.lockTTL)
	if err != nil {
		if errors.Is(err, lock.ErrLocked) {
			s.logger.Info("Document is already being processed", zap.Int64("document_id", docID))
			metrics.CaptureDocument(metrics.OutcomeSkipped, time.Since(start))
			return nil
		}
		return err
	}
	defer func() {
		if err := unlock(context.WithoutCancel(ctx)); err != nil {
			s.logger.Warn("Failed to release document lock", zap.Int64("document_id", docID), zap.Error(err))
		}
	}()

	doc, err := s.docRepo.GetByID(ctx, docID)
	if err != nil {
		return fmt.Errorf("failed to load document %d: %w", docID, err)
	}
	if doc.Processed {
		metrics.CaptureDocument(metrics.OutcomeSkipped, time.Since(start))
		return nil
	}

	text, err := s.extractor.ExtractFile(doc.FileType, doc.FilePath)
	if err != nil {
		return s.fail(ctx, doc, err, start)
	}

	chunks := s.segmenter.Segment(text)
	if len(chunks) == 0 {
		return s.fail(ctx, doc, ErrNoContent, start)
	}

	if err := s.docRepo.SaveChunks(ctx, doc.ID, chunks); err != nil {
		if errors.Is(err, repository.ErrAlreadyProcessed) {
			metrics.CaptureDocument(metrics.OutcomeSkipped, time.Since(start))
			return nil
		}
		return s.fail(ctx, doc, err, start)
	}

	metrics.AddChunks(len(chunks))
	metrics.CaptureDocument(metrics.OutcomeProcessed, time.Since(start))
	s.logger.Info("Document processed",
		zap.Int64("document_id", doc.ID),
		zap.Int("chunks", len(chunks)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return nil
}

func (s *DocumentService) fail(ctx context.Context, doc *models.Document, cause error, start time.Time) error {
	metrics.CaptureDocument(metrics.OutcomeFailed, time.Since(start))
	s.logger.Error("Document processing failed", zap.Int64("document_id", doc.ID), zap.Error(cause))

	if err := s.docRepo.MarkFailed(context.WithoutCancel(ctx), doc.ID, cause.Error()); err != nil {
		s.logger.Error("Failed to record processing error", zap.Int64("document_id", doc.ID), zap.Error(err))
	}
	return fmt.Errorf("failed to process document %d: %w", doc.ID, cause)
}

func (s *DocumentService) List(ctx context.Context, kbID int64) ([]*models.Document, error) {
	if _, err := s.kbRepo.GetByID(ctx, kbID); err != nil {
		return nil, err
	}
	return s.docRepo.ListByKnowledgeBase(ctx, kbID)
}

// Get returns the document and how many chunks it has.
func (s *DocumentService) Get(ctx context.Context, docID int64) (*models.Document, int, error) {
	doc, err := s.docRepo.GetByID(ctx, docID)
	if err != nil {
		return nil, 0, err
	}
	count, err := s.chunkRepo.CountByDocument(ctx, docID)
	if err != nil {
		return nil, 0, err
	}
	return doc, count, nil
}

func (s *DocumentService) Chunks(ctx context.Context, docID int64) ([]models.TextChunk, error) {
	if _, err := s.docRepo.GetByID(ctx, docID); err != nil {
		return nil, err
	}
	return s.chunkRepo.ChunksByDocuments(ctx, []int64{docID})
}

// Delete removes the record, its chunks and the stored file.
func (s *DocumentService) Delete(ctx context.Context, docID int64) error {
	doc, err := s.docRepo.GetByID(ctx, docID)
	if err != nil {
		return err
	}
	if err := s.docRepo.Delete(ctx, docID); err != nil {
		return err
	}
	if err := os.Remove(doc.FilePath); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.logger.Warn("Failed to remove document file", zap.String("path", doc.FilePath), zap.Error(err))
	}
	return nil
}
