// Package ingest runs document processing on a fixed set of background workers.
package ingest

import (
	"context"
	"errors"
	"sync"
	"time"

	"kbbot/internal/metrics"

	"go.uber.org/zap"
)

var (
	ErrQueueFull = errors.New("ingest queue is full")
	ErrStopped   = errors.New("ingest pool is stopped")
)

// Processor handles one queued document.
type Processor interface {
	Process(ctx context.Context, documentID int64) error
}

type Pool struct {
	jobs       chan int64
	workers    int
	jobTimeout time.Duration
	logger     *zap.Logger

	mu      sync.RWMutex
	stopped bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

func NewPool(workers, queueSize int, jobTimeout time.Duration, logger *zap.Logger) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = 1
	}
	return &Pool{
		jobs:       make(chan int64, queueSize),
		workers:    workers,
		jobTimeout: jobTimeout,
		logger:     logger,
	}
}

// Start launches the workers. They run until Stop is called or ctx ends.
func (p *Pool) Start(ctx context.Context, processor Processor) {
	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(ctx, i, processor)
	}
	p.logger.Info("Ingest workers started", zap.Int("workers", p.workers), zap.Int("queue_size", cap(p.jobs)))
}

// Enqueue schedules a document without blocking.
func (p *Pool) Enqueue(documentID int64) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.stopped {
		return ErrStopped
	}

	select {
	case p.jobs <- documentID:
		metrics.IncrementJobsInQueue()
		return nil
	default:
		return ErrQueueFull
	}
}

// Stop refuses new jobs, lets workers finish the jobs already queued and
// waits for them.
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	close(p.jobs)
	p.mu.Unlock()

	p.wg.Wait()
	if p.cancel != nil {
		p.cancel()
	}
	p.logger.Info("Ingest workers stopped")
}

func (p *Pool) worker(ctx context.Context, id int, processor Processor) {
	defer p.wg.Done()

	for {
		select {
		case documentID, ok := <-p.jobs:
			if !ok {
				return
			}
			metrics.DecrementJobsInQueue()
			p.run(ctx, id, processor, documentID)

		case <-ctx.Done():
			return
		}
	}
}

func (p *Pool) run(ctx context.Context, workerID int, processor Processor, documentID int64) {
	if p.jobTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.jobTimeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("Document processing panicked",
				zap.Int("worker", workerID),
				zap.Int64("document_id", documentID),
				zap.Any("panic", r),
			)
		}
	}()

	if err := processor.Process(ctx, documentID); err != nil {
		p.logger.Warn("Document processing failed",
			zap.Int("worker", workerID),
			zap.Int64("document_id", documentID),
			zap.Error(err),
		)
	}
}
