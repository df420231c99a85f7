package bot

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"kbbot/internal/metrics"
	"kbbot/internal/models"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var (
	ErrAlreadyRunning = errors.New("bot is already running")
	ErrNotRunning     = errors.New("bot is not running")
	ErrConnect        = errors.New("failed to connect bot")
)

// Registry is the bot storage the supervisor reads and updates.
type Registry interface {
	GetByID(ctx context.Context, id int64) (*models.Bot, error)
	List(ctx context.Context) ([]*models.Bot, error)
	SetActive(ctx context.Context, id int64, active bool) error
}

type Config struct {
	RateLimit float64
	RateBurst int
}

type Status struct {
	Bot       *models.Bot
	IsRunning bool
}

type runningBot struct {
	cancel    context.CancelFunc
	done      chan struct{}
	startedAt time.Time
}

// Supervisor runs at most one connector per bot.
type Supervisor struct {
	mu       sync.Mutex
	running  map[int64]*runningBot
	starting map[int64]struct{}

	bots     Registry
	connect  ConnectFunc
	searcher Searcher
	recorder Recorder
	cfg      Config
	logger   *zap.Logger
}

func NewSupervisor(bots Registry, connect ConnectFunc, searcher Searcher, recorder Recorder, cfg Config, logger *zap.Logger) *Supervisor {
	return &Supervisor{
		running:  make(map[int64]*runningBot),
		starting: make(map[int64]struct{}),
		bots:     bots,
		connect:  connect,
		searcher: searcher,
		recorder: recorder,
		cfg:      cfg,
		logger:   logger,
	}
}

// Start connects the bot and serves its chat in the background. The id stays
// reserved in starting while connecting; the lock is not held during connect.
func (s *Supervisor) Start(ctx context.Context, botID int64) error {
	s.mu.Lock()
	if _, exists := s.running[botID]; exists {
		s.mu.Unlock()
		return ErrAlreadyRunning
	}
	if _, pending := s.starting[botID]; pending {
		s.mu.Unlock()
		return ErrAlreadyRunning
	}
	s.starting[botID] = struct{}{}
	s.mu.Unlock()

	b, conn, err := s.dial(ctx, botID)

	s.mu.Lock()
	delete(s.starting, botID)
	if err != nil {
		s.mu.Unlock()
		return err
	}

	responder := &Responder{
		botID:    b.ID,
		botName:  b.Name,
		searcher: s.searcher,
		recorder: s.recorder,
		limiter:  newUserLimiter(rate.Limit(s.cfg.RateLimit), s.cfg.RateBurst),
		logger:   s.logger.With(zap.Int64("bot_id", b.ID)),
	}

	runCtx, cancel := context.WithCancel(context.Background())
	rb := &runningBot{cancel: cancel, done: make(chan struct{}), startedAt: time.Now()}
	s.running[botID] = rb
	metrics.SetRunningBots(len(s.running))
	s.mu.Unlock()

	go s.serve(runCtx, botID, rb, conn, responder)

	if err := s.bots.SetActive(ctx, botID, true); err != nil {
		s.logger.Warn("Failed to mark bot active", zap.Int64("bot_id", botID), zap.Error(err))
	}

	s.logger.Info("Bot started", zap.Int64("bot_id", botID), zap.String("name", b.Name))
	return nil
}

func (s *Supervisor) dial(ctx context.Context, botID int64) (*models.Bot, Connector, error) {
	b, err := s.bots.GetByID(ctx, botID)
	if err != nil {
		return nil, nil, err
	}

	conn, err := s.connect(b.Token)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrConnect, err)
	}
	return b, conn, nil
}

func (s *Supervisor) serve(ctx context.Context, botID int64, rb *runningBot, conn Connector, responder *Responder) {
	defer close(rb.done)

	err := conn.Run(ctx, responder.Handle)
	if err != nil {
		s.logger.Error("Bot stopped with error", zap.Int64("bot_id", botID), zap.Error(err))
	}

	// The connector exited on its own; drop the entry unless Stop already did.
	s.mu.Lock()
	current, exists := s.running[botID]
	if exists && current == rb {
		delete(s.running, botID)
		metrics.SetRunningBots(len(s.running))
	}
	s.mu.Unlock()

	if exists && current == rb {
		if err := s.bots.SetActive(context.Background(), botID, false); err != nil {
			s.logger.Warn("Failed to mark bot inactive", zap.Int64("bot_id", botID), zap.Error(err))
		}
	}
}

// Stop cancels the bot's connector and waits for it to exit or ctx to end.
func (s *Supervisor) Stop(ctx context.Context, botID int64) error {
	s.mu.Lock()
	rb, exists := s.running[botID]
	if !exists {
		s.mu.Unlock()
		return ErrNotRunning
	}
	delete(s.running, botID)
	metrics.SetRunningBots(len(s.running))
	s.mu.Unlock()

	rb.cancel()
	select {
	case <-rb.done:
	case <-ctx.Done():
		s.logger.Warn("Bot did not stop in time", zap.Int64("bot_id", botID))
	}

	if err := s.bots.SetActive(context.WithoutCancel(ctx), botID, false); err != nil {
		s.logger.Warn("Failed to mark bot inactive", zap.Int64("bot_id", botID), zap.Error(err))
	}

	s.logger.Info("Bot stopped", zap.Int64("bot_id", botID), zap.Duration("uptime", time.Since(rb.startedAt)))
	return nil
}

func (s *Supervisor) IsRunning(botID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, exists := s.running[botID]
	return exists
}

// Running returns the ids of running bots in ascending order.
func (s *Supervisor) Running() []int64 {
	s.mu.Lock()
	ids := make([]int64, 0, len(s.running))
	for id := range s.running {
		ids = append(ids, id)
	}
	s.mu.Unlock()

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Status reports one bot.
func (s *Supervisor) Status(ctx context.Context, botID int64) (Status, error) {
	b, err := s.bots.GetByID(ctx, botID)
	if err != nil {
		return Status{}, err
	}
	return Status{Bot: b, IsRunning: s.IsRunning(botID)}, nil
}

// StatusAll reports every registered bot.
func (s *Supervisor) StatusAll(ctx context.Context) ([]Status, error) {
	bots, err := s.bots.List(ctx)
	if err != nil {
		return nil, err
	}

	statuses := make([]Status, 0, len(bots))
	for _, b := range bots {
		statuses = append(statuses, Status{Bot: b, IsRunning: s.IsRunning(b.ID)})
	}
	return statuses, nil
}

func (s *Supervisor) StopAll(ctx context.Context) {
	for _, id := range s.Running() {
		if err := s.Stop(ctx, id); err != nil && !errors.Is(err, ErrNotRunning) {
			s.logger.Warn("Failed to stop bot", zap.Int64("bot_id", id), zap.Error(err))
		}
	}
}
