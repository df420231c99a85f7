package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"kbbot/internal/models"
	"kbbot/internal/repository"
)

type fakeBots struct {
	mu     sync.Mutex
	nextID int64
	bots   map[int64]*models.Bot
}

func newFakeBots() *fakeBots {
	return &fakeBots{bots: make(map[int64]*models.Bot)}
}

func (f *fakeBots) Create(_ context.Context, bot *models.Bot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.bots {
		if b.Username == bot.Username {
			return repository.ErrConflict
		}
	}
	f.nextID++
	bot.ID = f.nextID
	bot.CreatedAt, bot.UpdatedAt = time.Now(), time.Now()
	cp := *bot
	f.bots[bot.ID] = &cp
	return nil
}

func (f *fakeBots) GetByID(_ context.Context, id int64) (*models.Bot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bots[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (f *fakeBots) List(_ context.Context) ([]*models.Bot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Bot
	for _, b := range f.bots {
		cp := *b
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeBots) Update(_ context.Context, bot *models.Bot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.bots[bot.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *bot
	f.bots[bot.ID] = &cp
	return nil
}

func (f *fakeBots) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.bots[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.bots, id)
	return nil
}

type fakeKnowledgeBases struct {
	kbs   map[int64]*models.KnowledgeBase
	stats models.KnowledgeBaseStats
}

func (f *fakeKnowledgeBases) Create(_ context.Context, kb *models.KnowledgeBase) error {
	kb.ID = int64(len(f.kbs) + 1)
	f.kbs[kb.ID] = kb
	return nil
}

func (f *fakeKnowledgeBases) GetByID(_ context.Context, id int64) (*models.KnowledgeBase, error) {
	kb, ok := f.kbs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return kb, nil
}

func (f *fakeKnowledgeBases) ListByBot(_ context.Context, botID int64) ([]*models.KnowledgeBase, error) {
	var out []*models.KnowledgeBase
	for _, kb := range f.kbs {
		if kb.BotID == botID {
			out = append(out, kb)
		}
	}
	return out, nil
}

func (f *fakeKnowledgeBases) KnowledgeBaseIDs(_ context.Context, botID int64) ([]int64, error) {
	var ids []int64
	for id, kb := range f.kbs {
		if kb.BotID == botID {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (f *fakeKnowledgeBases) Delete(_ context.Context, id int64) error {
	delete(f.kbs, id)
	return nil
}

func (f *fakeKnowledgeBases) Stats(_ context.Context, kbIDs []int64) (models.KnowledgeBaseStats, error) {
	s := f.stats
	s.KnowledgeBases = len(kbIDs)
	return s, nil
}

// fakeDocuments keeps documents and chunks in memory and mirrors the guarded
// processed flag of the postgres implementation.
type fakeDocuments struct {
	mu     sync.Mutex
	nextID int64
	docs   map[int64]*models.Document
	chunks map[int64][]string

	saveCalls int
	saveErr   error
}

func newFakeDocuments() *fakeDocuments {
	return &fakeDocuments{docs: make(map[int64]*models.Document), chunks: make(map[int64][]string)}
}

func (f *fakeDocuments) Create(_ context.Context, doc *models.Document) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	doc.ID = f.nextID
	doc.CreatedAt = time.Now()
	cp := *doc
	f.docs[doc.ID] = &cp
	return nil
}

func (f *fakeDocuments) GetByID(_ context.Context, id int64) (*models.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.docs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (f *fakeDocuments) ListByKnowledgeBase(_ context.Context, kbID int64) ([]*models.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Document
	for _, d := range f.docs {
		if d.KnowledgeBaseID == kbID {
			cp := *d
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeDocuments) SaveChunks(_ context.Context, docID int64, chunks []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saveCalls++
	if f.saveErr != nil {
		return f.saveErr
	}
	d, ok := f.docs[docID]
	if !ok || d.Processed {
		return repository.ErrAlreadyProcessed
	}
	d.Processed = true
	d.ProcessingError = ""
	f.chunks[docID] = append([]string(nil), chunks...)
	return nil
}

func (f *fakeDocuments) MarkFailed(_ context.Context, docID int64, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if d, ok := f.docs[docID]; ok && !d.Processed {
		d.ProcessingError = reason
	}
	return nil
}

func (f *fakeDocuments) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.docs[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.docs, id)
	delete(f.chunks, id)
	return nil
}

func (f *fakeDocuments) ChunksByDocuments(_ context.Context, docIDs []int64) ([]models.TextChunk, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.TextChunk
	for _, id := range docIDs {
		for i, c := range f.chunks[id] {
			out = append(out, models.TextChunk{ID: id*1000 + int64(i), Content: c, ChunkIndex: i, DocumentID: id})
		}
	}
	return out, nil
}

func (f *fakeDocuments) CountByDocument(_ context.Context, docID int64) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.chunks[docID]), nil
}

type fakeQueue struct {
	mu     sync.Mutex
	queued []int64
	err    error
}

func (q *fakeQueue) Enqueue(id int64) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.queued = append(q.queued, id)
	return nil
}

type fakeConversations struct {
	all []*models.Conversation
}

func (f *fakeConversations) Create(_ context.Context, c *models.Conversation) error {
	c.ID = int64(len(f.all) + 1)
	f.all = append(f.all, c)
	return nil
}

func (f *fakeConversations) ListByBot(_ context.Context, botID int64, limit, offset int) ([]*models.Conversation, int, error) {
	var mine []*models.Conversation
	for i := len(f.all) - 1; i >= 0; i-- {
		if f.all[i].BotID == botID {
			mine = append(mine, f.all[i])
		}
	}
	total := len(mine)
	if offset >= total {
		return nil, total, nil
	}
	end := min(offset+limit, total)
	return mine[offset:end], total, nil
}
