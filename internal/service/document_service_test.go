package service

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"kbbot/internal/models"
	"kbbot/internal/search"
	"kbbot/pkg/lock"

	"go.uber.org/zap"
)

type stubExtractor struct {
	text  string
	err   error
	calls int
	mu    sync.Mutex
}

func (e *stubExtractor) ExtractFile(models.FileType, string) (string, error) {
	e.mu.Lock()
	e.calls++
	e.mu.Unlock()
	return e.text, e.err
}

type docFixture struct {
	svc       *DocumentService
	docs      *fakeDocuments
	queue     *fakeQueue
	extractor *stubExtractor
	locker    *lock.LocalLocker
	dir       string
}

func newDocFixture(t *testing.T, maxSize int64) *docFixture {
	t.Helper()
	segmenter, err := search.NewSegmenter(40, 10)
	if err != nil {
		t.Fatal(err)
	}

	f := &docFixture{
		docs:      newFakeDocuments(),
		queue:     &fakeQueue{},
		extractor: &stubExtractor{text: "Our refund policy allows 30 days. Shipping takes a week. Returns need a receipt."},
		locker:    lock.NewLocalLocker(),
		dir:       t.TempDir(),
	}
	kbs := &fakeKnowledgeBases{kbs: map[int64]*models.KnowledgeBase{7: {ID: 7, BotID: 1, Name: "FAQ"}}}

	f.svc = NewDocumentService(kbs, f.docs, f.docs, f.extractor, segmenter, f.locker, f.queue,
		DocumentServiceConfig{UploadDir: f.dir, MaxUploadSize: maxSize, LockTTL: time.Minute},
		zap.NewNop(),
	)
	return f
}

func TestUpload_StoresFileAndQueuesProcessing(t *testing.T) {
	f := newDocFixture(t, 0)

	doc, err := f.svc.Upload(context.Background(), 7, "Policies.TXT", strings.NewReader("refund policy"))
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	if doc.Processed {
		t.Error("a fresh upload must be unprocessed")
	}
	if doc.FileType != models.FileTypeTXT || doc.OriginalFilename != "Policies.TXT" || doc.FileSize != 13 {
		t.Errorf("unexpected document %+v", doc)
	}
	if filepath.Dir(doc.FilePath) != filepath.Join(f.dir, "7") || !strings.HasSuffix(doc.Filename, ".txt") || len(doc.Filename) != 36 {
		t.Errorf("unexpected storage location %q (%q)", doc.FilePath, doc.Filename)
	}
	if data, err := os.ReadFile(doc.FilePath); err != nil || string(data) != "refund policy" {
		t.Errorf("stored file = %q, %v", data, err)
	}
	if len(f.queue.queued) != 1 || f.queue.queued[0] != doc.ID {
		t.Errorf("queued = %v, want [%d]", f.queue.queued, doc.ID)
	}
}

func TestUpload_Rejections(t *testing.T) {
	f := newDocFixture(t, 8)

	tests := []struct {
		name    string
		kbID    int64
		file    string
		content string
		want    error
	}{
		{"unsupported type", 7, "sheet.xlsx", "x", ErrUnsupportedFileType},
		{"no extension", 7, "README", "x", ErrUnsupportedFileType},
		{"unknown knowledge base", 99, "a.txt", "x", ErrNotFound},
		{"too large", 7, "a.txt", "123456789", ErrFileTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Upload(context.Background(), tt.kbID, tt.file, strings.NewReader(tt.content))
			if !errors.Is(err, tt.want) {
				t.Errorf("Upload() error = %v, want %v", err, tt.want)
			}
		})
	}

	if len(f.docs.docs) != 0 || len(f.queue.queued) != 0 {
		t.Error("rejected uploads must not create records or jobs")
	}
	entries, _ := os.ReadDir(filepath.Join(f.dir, "7"))
	if len(entries) != 0 {
		t.Errorf("rejected uploads left %d files behind", len(entries))
	}
}

func TestUpload_QueueFullKeepsDocument(t *testing.T) {
	f := newDocFixture(t, 0)
	f.queue.err = errors.New("queue full")

	doc, err := f.svc.Upload(context.Background(), 7, "a.md", bytes.NewReader([]byte("# Title")))
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	if _, err := f.docs.GetByID(context.Background(), doc.ID); err != nil {
		t.Errorf("document record missing: %v", err)
	}
}

func TestProcess_SegmentsAndIsIdempotent(t *testing.T) {
	f := newDocFixture(t, 0)
	ctx := context.Background()
	doc, err := f.svc.Upload(ctx, 7, "faq.txt", strings.NewReader("ignored by the stub"))
	if err != nil {
		t.Fatal(err)
	}

	if err := f.svc.Process(ctx, doc.ID); err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	stored, count, err := f.svc.Get(ctx, doc.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !stored.Processed || count < 2 {
		t.Fatalf("after processing: processed=%v chunks=%d", stored.Processed, count)
	}
	first := append([]string(nil), f.docs.chunks[doc.ID]...)

	if err := f.svc.Process(ctx, doc.ID); err != nil {
		t.Fatalf("second Process failed: %v", err)
	}
	if f.extractor.calls != 1 {
		t.Errorf("extractor ran %d times, want 1", f.extractor.calls)
	}
	if got := f.docs.chunks[doc.ID]; len(got) != len(first) {
		t.Errorf("reprocessing changed chunks: %d -> %d", len(first), len(got))
	}

	chunks, err := f.svc.Chunks(ctx, doc.ID)
	if err != nil {
		t.Fatal(err)
	}
	for i, c := range chunks {
		if c.ChunkIndex != i {
			t.Errorf("chunk %d has index %d", i, c.ChunkIndex)
		}
	}
}

func TestProcess_ConcurrentRunsStoreChunksOnce(t *testing.T) {
	f := newDocFixture(t, 0)
	ctx := context.Background()
	doc, err := f.svc.Upload(ctx, 7, "faq.txt", strings.NewReader("x"))
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := f.svc.Process(ctx, doc.ID); err != nil {
				t.Errorf("Process failed: %v", err)
			}
		}()
	}
	wg.Wait()

	stored, _ := f.docs.GetByID(ctx, doc.ID)
	if !stored.Processed {
		t.Fatal("document not processed")
	}
	if f.docs.saveCalls != 1 {
		t.Errorf("chunks were saved %d times, want 1", f.docs.saveCalls)
	}
}

func TestProcess_LockedDocumentIsSkipped(t *testing.T) {
	f := newDocFixture(t, 0)
	ctx := context.Background()
	doc, _ := f.svc.Upload(ctx, 7, "faq.txt", strings.NewReader("x"))

	unlock, err := f.locker.TryLock(ctx, "document:1", time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	defer unlock(ctx)

	if err := f.svc.Process(ctx, doc.ID); err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if f.extractor.calls != 0 {
		t.Error("a locked document must not be extracted")
	}
}

func TestProcess_FailuresAreRecorded(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		err     error
		wantErr error
	}{
		{"extraction error", "", errors.New("corrupt pdf"), nil},
		{"no usable text", "*** ### ***", nil, ErrNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newDocFixture(t, 0)
			f.extractor.text, f.extractor.err = tt.text, tt.err
			ctx := context.Background()
			doc, _ := f.svc.Upload(ctx, 7, "broken.pdf", strings.NewReader("%PDF"))

			err := f.svc.Process(ctx, doc.ID)
			if err == nil {
				t.Fatal("Process succeeded on a broken document")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Process() error = %v, want %v", err, tt.wantErr)
			}

			stored, count, _ := f.svc.Get(ctx, doc.ID)
			if stored.Processed || count != 0 {
				t.Errorf("failed document: processed=%v chunks=%d", stored.Processed, count)
			}
			if stored.ProcessingError == "" {
				t.Error("processing error was not recorded")
			}
		})
	}
}

func TestProcess_StoreFailureLeavesDocumentUnprocessed(t *testing.T) {
	f := newDocFixture(t, 0)
	f.docs.saveErr = errors.New("connection reset")
	ctx := context.Background()
	doc, _ := f.svc.Upload(ctx, 7, "faq.txt", strings.NewReader("x"))

	if err := f.svc.Process(ctx, doc.ID); !errors.Is(err, f.docs.saveErr) {
		t.Fatalf("Process() error = %v, want wrapped store error", err)
	}
	stored, _ := f.docs.GetByID(ctx, doc.ID)
	if stored.Processed {
		t.Error("document marked processed although chunks were not stored")
	}
}

func TestDelete_RemovesRecordAndFile(t *testing.T) {
	f := newDocFixture(t, 0)
	ctx := context.Background()
	doc, _ := f.svc.Upload(ctx, 7, "faq.txt", strings.NewReader("x"))

	if err := f.svc.Delete(ctx, doc.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := os.Stat(doc.FilePath); !os.IsNotExist(err) {
		t.Errorf("file still present: %v", err)
	}
	if err := f.svc.Delete(ctx, doc.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}
}

func TestReprocess_QueuesExistingDocument(t *testing.T) {
	f := newDocFixture(t, 0)
	ctx := context.Background()
	doc, _ := f.svc.Upload(ctx, 7, "faq.txt", strings.NewReader("x"))

	if _, err := f.svc.Reprocess(ctx, doc.ID); err != nil {
		t.Fatal(err)
	}
	if len(f.queue.queued) != 2 {
		t.Errorf("queued = %v, want the document twice", f.queue.queued)
	}
	if _, err := f.svc.Reprocess(ctx, 404); !errors.Is(err, ErrNotFound) {
		t.Errorf("Reprocess(404) error = %v, want ErrNotFound", err)
	}
}
