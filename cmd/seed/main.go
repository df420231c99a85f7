package main

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"time"

	"kbbot/internal/dto"
	"kbbot/internal/extract"
	"kbbot/internal/models"
	"kbbot/internal/repository"
	"kbbot/internal/search"
	"kbbot/internal/service"
	"kbbot/pkg/config"
	"kbbot/pkg/lock"
	"kbbot/pkg/logger"
	"kbbot/pkg/postgres"

	"go.uber.org/zap"
)

// seed loads every supported file of a directory into a knowledge base and
// processes it synchronously. Files already seeded with the same content are
// skipped.
func main() {
	var (
		dir    string
		kbID   int64
		botID  int64
		kbName string
	)
	flag.StringVar(&dir, "dir", filepath.Join("cmd", "seed", "data"), "directory with txt, pdf, docx or md files")
	flag.Int64Var(&kbID, "kb", 0, "target knowledge base ID")
	flag.Int64Var(&botID, "bot", 0, "bot ID; creates a knowledge base named -name when -kb is not set")
	flag.StringVar(&kbName, "name", "Seed", "name of the knowledge base created for -bot")
	flag.Parse()

	if kbID == 0 && botID == 0 {
		log.Fatal("either -kb or -bot is required")
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logger.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	appLogger := logger.Get()

	// Connect to database
	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := postgres.Migrate(ctx, db, appLogger); err != nil {
		appLogger.Fatal("Failed to apply schema", zap.Error(err))
	}

	botRepo := repository.NewBotRepository(db, appLogger)
	kbRepo := repository.NewKnowledgeBaseRepository(db, appLogger)
	docRepo := repository.NewDocumentRepository(db, appLogger)
	chunkRepo := repository.NewChunkRepository(db, appLogger)

	if kbID == 0 {
		kbService := service.NewKnowledgeBaseService(botRepo, kbRepo, nil, appLogger)
		kb, err := kbService.Create(ctx, botID, &dto.CreateKnowledgeBaseRequest{
			Name:        kbName,
			Description: "Seeded from " + dir,
		})
		if err != nil {
			appLogger.Fatal("Failed to create knowledge base", zap.Int64("bot_id", botID), zap.Error(err))
		}
		kbID = kb.ID
		appLogger.Info("Created knowledge base", zap.Int64("kb_id", kbID), zap.String("name", kb.Name))
	}

	segmenter, err := search.NewSegmenter(cfg.Ingest.ChunkSize, cfg.Ingest.ChunkOverlap)
	if err != nil {
		appLogger.Fatal("Invalid chunking settings", zap.Error(err))
	}

	// No queue: every upload is processed right here.
	docService := service.NewDocumentService(
		kbRepo, docRepo, chunkRepo,
		extract.New(logger.Named("extract")),
		segmenter,
		lock.NewLocalLocker(),
		nil,
		service.DocumentServiceConfig{
			UploadDir:     cfg.Storage.UploadDir,
			MaxUploadSize: int64(cfg.Storage.MaxUploadSize),
			LockTTL:       cfg.Ingest.LockTTL,
		},
		appLogger,
	)

	appLogger.Info("Starting knowledge base seeding...", zap.String("dir", dir), zap.Int64("kb_id", kbID))

	cacheFile := filepath.Join(dir, ".seed_cache.json")
	if err := seedDirectory(ctx, dir, cacheFile, kbID, docService, appLogger); err != nil {
		appLogger.Fatal("Failed to seed knowledge base", zap.Error(err))
	}

	appLogger.Info("Knowledge base seeding completed successfully!")
}

// ProcessedFile represents a seeded file in cache
type ProcessedFile struct {
	FilePath        string    `json:"file_path"`
	FileHash        string    `json:"file_hash"`
	KnowledgeBaseID int64     `json:"knowledge_base_id"`
	DocumentID      int64     `json:"document_id"`
	ProcessedAt     time.Time `json:"processed_at"`
}

// CacheData stores information about seeded files
type CacheData struct {
	ProcessedFiles map[string]ProcessedFile `json:"processed_files"` // key: file path
}

// loadCache loads the cache of processed files
func loadCache(cacheFile string) (*CacheData, error) {
	cache := &CacheData{
		ProcessedFiles: make(map[string]ProcessedFile),
	}

	data, err := os.ReadFile(cacheFile)
	if errors.Is(err, fs.ErrNotExist) {
		return cache, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cache file: %w", err)
	}

	if len(data) == 0 {
		return cache, nil
	}

	if err := json.Unmarshal(data, cache); err != nil {
		return nil, fmt.Errorf("failed to parse cache file: %w", err)
	}

	return cache, nil
}

// saveCache saves the cache of processed files
func saveCache(cacheFile string, cache *CacheData) error {
	data, err := json.MarshalIndent(cache, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal cache: %w", err)
	}

	if err := os.WriteFile(cacheFile, data, 0o644); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}

	return nil
}

// calculateFileHash calculates MD5 hash of a file
func calculateFileHash(filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	hash := md5.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", fmt.Errorf("failed to calculate hash: %w", err)
	}

	return fmt.Sprintf("%x", hash.Sum(nil)), nil
}

// seedFiles lists the supported files directly inside dir, sorted by name.
func seedFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed directory: %w", err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if _, ok := models.ParseFileType(entry.Name()); ok {
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	return paths, nil
}

func seedDirectory(
	ctx context.Context,
	dir string,
	cacheFile string,
	kbID int64,
	docService *service.DocumentService,
	logger *zap.Logger,
) error {
	cache, err := loadCache(cacheFile)
	if err != nil {
		logger.Warn("Failed to load cache, will process all files", zap.Error(err))
		cache = &CacheData{ProcessedFiles: make(map[string]ProcessedFile)}
	}

	paths, err := seedFiles(dir)
	if err != nil {
		return err
	}

	seeded := 0
	for _, path := range paths {
		fileHash, err := calculateFileHash(path)
		if err != nil {
			logger.Warn("Failed to calculate file hash, will process anyway", zap.String("path", path), zap.Error(err))
		}

		if cached, exists := cache.ProcessedFiles[path]; exists && cached.KnowledgeBaseID == kbID {
			if cached.FileHash == fileHash {
				logger.Info("File already seeded, skipping",
					zap.String("path", path),
					zap.Time("processed_at", cached.ProcessedAt),
				)
				continue
			}
			logger.Info("File changed, seeding again",
				zap.String("path", path),
				zap.String("old_hash", cached.FileHash),
				zap.String("new_hash", fileHash),
			)
		}

		doc, err := seedFile(ctx, path, kbID, docService)
		if err != nil {
			logger.Error("Failed to seed file", zap.String("path", path), zap.Error(err))
			continue
		}

		logger.Info("Seeded document",
			zap.String("path", path),
			zap.Int64("document_id", doc.ID),
		)
		seeded++

		cache.ProcessedFiles[path] = ProcessedFile{
			FilePath:        path,
			FileHash:        fileHash,
			KnowledgeBaseID: kbID,
			DocumentID:      doc.ID,
			ProcessedAt:     time.Now(),
		}
	}

	if err := saveCache(cacheFile, cache); err != nil {
		logger.Warn("Failed to save cache", zap.Error(err))
	} else {
		logger.Info("Cache saved", zap.Int("seeded", seeded), zap.Int("cached_files", len(cache.ProcessedFiles)))
	}

	return nil
}

func seedFile(ctx context.Context, path string, kbID int64, docService *service.DocumentService) (*models.Document, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	doc, err := docService.Upload(ctx, kbID, filepath.Base(path), file)
	if err != nil {
		return nil, err
	}
	if err := docService.Process(ctx, doc.ID); err != nil {
		return nil, err
	}
	return doc, nil
}
