package search

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"kbbot/internal/models"

	"go.uber.org/zap"
)

const (
	answerPreamble = "Based on the information in my knowledge base:\n"
	snippetSuffix  = "..."
)

// Store is the read side of the document store the engine searches.
type Store interface {
	KnowledgeBaseIDs(ctx context.Context, botID int64) ([]int64, error)
	ProcessedDocuments(ctx context.Context, knowledgeBaseIDs []int64) ([]models.Document, error)
	ChunksByDocuments(ctx context.Context, documentIDs []int64) ([]models.TextChunk, error)
}

type Options struct {
	// MaxResults is used when a caller passes a non-positive limit.
	MaxResults int
	// Chunks must score strictly above MinScore to be kept.
	MinScore float64
	// DisplayLimit caps how many chunks a formatted answer shows.
	DisplayLimit int
	// SnippetLength caps each shown chunk, in runes.
	SnippetLength int
}

func DefaultOptions() Options {
	return Options{
		MaxResults:    5,
		MinScore:      0.1,
		DisplayLimit:  3,
		SnippetLength: 300,
	}
}

type ScoredChunk struct {
	Chunk    models.TextChunk
	Document models.Document
	Score    float64
}

// Engine ranks stored chunks against free-text queries. It only reads from
// the store and keeps no state between calls, so it is safe for concurrent use.
type Engine struct {
	store  Store
	opts   Options
	logger *zap.Logger
}

func NewEngine(store Store, opts Options, logger *zap.Logger) *Engine {
	defaults := DefaultOptions()
	if opts.MaxResults <= 0 {
		opts.MaxResults = defaults.MaxResults
	}
	if opts.DisplayLimit <= 0 {
		opts.DisplayLimit = defaults.DisplayLimit
	}
	if opts.SnippetLength <= 0 {
		opts.SnippetLength = defaults.SnippetLength
	}
	return &Engine{store: store, opts: opts, logger: logger}
}

// Search answers a query from every knowledge base of a bot. found is false
// when nothing matched; err is only set when the store failed.
func (e *Engine) Search(ctx context.Context, botID int64, query string, maxResults int) (answer string, found bool, err error) {
	kbIDs, err := e.store.KnowledgeBaseIDs(ctx, botID)
	if err != nil {
		return "", false, fmt.Errorf("failed to load knowledge bases for bot %d: %w", botID, err)
	}
	if len(kbIDs) == 0 {
		return "", false, nil
	}
	return e.SearchKnowledgeBases(ctx, kbIDs, query, maxResults)
}

// SearchKnowledgeBases is Search over an explicit set of knowledge bases.
func (e *Engine) SearchKnowledgeBases(ctx context.Context, kbIDs []int64, query string, maxResults int) (string, bool, error) {
	matches, err := e.FindChunks(ctx, kbIDs, query, maxResults)
	if err != nil {
		return "", false, err
	}
	if len(matches) == 0 {
		return "", false, nil
	}
	return e.Format(matches), true, nil
}

// FindChunks returns up to maxResults chunks scoring above the threshold,
// best first. Equal scores keep the order the store returned them in.
func (e *Engine) FindChunks(ctx context.Context, kbIDs []int64, query string, maxResults int) ([]ScoredChunk, error) {
	if maxResults <= 0 {
		maxResults = e.opts.MaxResults
	}

	queryWords := ExtractKeywords(query)
	if len(queryWords) == 0 || len(kbIDs) == 0 {
		return nil, nil
	}

	docs, err := e.store.ProcessedDocuments(ctx, kbIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load documents: %w", err)
	}
	if len(docs) == 0 {
		return nil, nil
	}

	docsByID := make(map[int64]models.Document, len(docs))
	docIDs := make([]int64, 0, len(docs))
	for _, doc := range docs {
		if !doc.Processed {
			continue
		}
		docsByID[doc.ID] = doc
		docIDs = append(docIDs, doc.ID)
	}
	if len(docIDs) == 0 {
		return nil, nil
	}

	chunks, err := e.store.ChunksByDocuments(ctx, docIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load chunks: %w", err)
	}

	var scored []ScoredChunk
	for _, chunk := range chunks {
		doc, ok := docsByID[chunk.DocumentID]
		if !ok {
			continue
		}
		score := Score(chunk.Content, queryWords)
		if score > e.opts.MinScore {
			scored = append(scored, ScoredChunk{Chunk: chunk, Document: doc, Score: score})
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if len(scored) > maxResults {
		scored = scored[:maxResults]
	}

	e.logger.Debug("Chunk search completed",
		zap.Int64s("kb_ids", kbIDs),
		zap.Strings("keywords", queryWords),
		zap.Int("candidates", len(chunks)),
		zap.Int("matches", len(scored)),
	)

	return scored, nil
}

// Format renders matches as a chat reply. It returns "" for no matches.
func (e *Engine) Format(matches []ScoredChunk) string {
	if len(matches) == 0 {
		return ""
	}

	parts := []string{answerPreamble}
	shown := min(len(matches), e.opts.DisplayLimit)
	for _, m := range matches[:shown] {
		parts = append(parts,
			fmt.Sprintf("📄 From %s:", m.Document.OriginalFilename),
			truncate(strings.TrimSpace(m.Chunk.Content), e.opts.SnippetLength),
			"",
		)
	}

	if len(matches) > shown {
		parts = append(parts, fmt.Sprintf("💡 Found %d relevant sections. Showing top %d.", len(matches), shown))
	}

	return strings.Join(parts, "\n")
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit]) + snippetSuffix
}
