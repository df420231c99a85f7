package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"kbbot/internal/dto"
	"kbbot/internal/models"
	"kbbot/internal/search"

	"go.uber.org/zap"
)

// searchStore adapts the in-memory fakes to the engine's store.
type searchStore struct {
	kbs  *fakeKnowledgeBases
	docs *fakeDocuments
}

func (s searchStore) KnowledgeBaseIDs(ctx context.Context, botID int64) ([]int64, error) {
	return s.kbs.KnowledgeBaseIDs(ctx, botID)
}

func (s searchStore) ProcessedDocuments(_ context.Context, kbIDs []int64) ([]models.Document, error) {
	var out []models.Document
	for _, id := range kbIDs {
		docs, _ := s.docs.ListByKnowledgeBase(context.Background(), id)
		for _, d := range docs {
			if d.Processed {
				out = append(out, *d)
			}
		}
	}
	return out, nil
}

func (s searchStore) ChunksByDocuments(ctx context.Context, docIDs []int64) ([]models.TextChunk, error) {
	return s.docs.ChunksByDocuments(ctx, docIDs)
}

func newKnowledgeFixture(t *testing.T) (*KnowledgeBaseService, *fakeBots, *fakeDocuments) {
	t.Helper()
	bots := newFakeBots()
	if err := bots.Create(context.Background(), &models.Bot{Name: "Support", Token: "t", Username: "support_bot"}); err != nil {
		t.Fatal(err)
	}
	kbs := &fakeKnowledgeBases{kbs: map[int64]*models.KnowledgeBase{}}
	docs := newFakeDocuments()

	engine := search.NewEngine(searchStore{kbs: kbs, docs: docs}, search.DefaultOptions(), zap.NewNop())
	return NewKnowledgeBaseService(bots, kbs, engine, zap.NewNop()), bots, docs
}

func addProcessedDocument(t *testing.T, docs *fakeDocuments, kbID int64, name string, chunks ...string) {
	t.Helper()
	ctx := context.Background()
	doc := &models.Document{OriginalFilename: name, FileType: models.FileTypeTXT, KnowledgeBaseID: kbID}
	if err := docs.Create(ctx, doc); err != nil {
		t.Fatal(err)
	}
	if err := docs.SaveChunks(ctx, doc.ID, chunks); err != nil {
		t.Fatal(err)
	}
}

func TestKnowledgeBaseService_CreateValidates(t *testing.T) {
	svc, _, _ := newKnowledgeFixture(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, 1, &dto.CreateKnowledgeBaseRequest{Name: " "}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("blank name error = %v, want ErrInvalidInput", err)
	}
	if _, err := svc.Create(ctx, 42, &dto.CreateKnowledgeBaseRequest{Name: "FAQ"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown bot error = %v, want ErrNotFound", err)
	}

	kb, err := svc.Create(ctx, 1, &dto.CreateKnowledgeBaseRequest{Name: "FAQ", Description: "common questions"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	list, _ := svc.ListByBot(ctx, 1)
	if len(list) != 1 || list[0].ID != kb.ID {
		t.Errorf("ListByBot() = %+v", list)
	}
}

func TestKnowledgeBaseService_Ask(t *testing.T) {
	svc, _, docs := newKnowledgeFixture(t)
	ctx := context.Background()
	kb, _ := svc.Create(ctx, 1, &dto.CreateKnowledgeBaseRequest{Name: "FAQ"})
	addProcessedDocument(t, docs, kb.ID, "policies.txt", "Our refund policy allows 30 days.", "Shipping takes a week.")

	answer, found, err := svc.Ask(ctx, 1, "What is the refund policy?")
	if err != nil || !found {
		t.Fatalf("Ask() = (found=%v, err=%v)", found, err)
	}
	if !strings.Contains(answer, "📄 From policies.txt:") || !strings.Contains(answer, "refund policy allows") {
		t.Errorf("unexpected answer:\n%s", answer)
	}

	if _, found, err := svc.Ask(ctx, 1, "warranty claims"); err != nil || found {
		t.Errorf("Ask(unrelated) = (found=%v, err=%v), want no answer", found, err)
	}
	if _, found, err := svc.Ask(ctx, 99, "refund"); err != nil || found {
		t.Errorf("Ask(unknown bot) = (found=%v, err=%v), want no answer", found, err)
	}
}

func TestKnowledgeBaseService_Search(t *testing.T) {
	svc, _, docs := newKnowledgeFixture(t)
	ctx := context.Background()
	kb, _ := svc.Create(ctx, 1, &dto.CreateKnowledgeBaseRequest{Name: "FAQ"})
	addProcessedDocument(t, docs, kb.ID, "policies.txt", "refund policy", "refund only")

	matches, err := svc.Search(ctx, kb.ID, "refund policy", 5)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(matches) != 2 || matches[0].Score != 1 || matches[0].Document.OriginalFilename != "policies.txt" {
		t.Errorf("unexpected matches %+v", matches)
	}

	if _, err := svc.Search(ctx, kb.ID, "   ", 5); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("blank query error = %v, want ErrInvalidInput", err)
	}
	if _, err := svc.Search(ctx, 404, "refund", 5); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown knowledge base error = %v, want ErrNotFound", err)
	}
}

func TestKnowledgeBaseService_Stats(t *testing.T) {
	svc, _, _ := newKnowledgeFixture(t)
	ctx := context.Background()
	svc.kbRepo.(*fakeKnowledgeBases).stats = models.KnowledgeBaseStats{TotalDocuments: 3, ProcessedDocuments: 2, TotalChunks: 10}
	a, _ := svc.Create(ctx, 1, &dto.CreateKnowledgeBaseRequest{Name: "A"})
	_, _ = svc.Create(ctx, 1, &dto.CreateKnowledgeBaseRequest{Name: "B"})

	kb, stats, err := svc.Stats(ctx, a.ID)
	if err != nil {
		t.Fatal(err)
	}
	if kb.Name != "A" || stats.KnowledgeBases != 1 || stats.ProcessingComplete() {
		t.Errorf("Stats() = %+v, %+v", kb, stats)
	}

	botStats, err := svc.BotStats(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if botStats.KnowledgeBases != 2 {
		t.Errorf("BotStats().KnowledgeBases = %d, want 2", botStats.KnowledgeBases)
	}
}
