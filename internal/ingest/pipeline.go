package ingest

import (
	"context"
	"sync"
	"time"

	"github.com/booruoss/booru/internal/core/post"
)

const (
	pipelineBatchSize   = 100
	pipelineFlushPeriod = 500 * time.Millisecond
	pipelineSoftBound   = 5000
)

// Pipeline buffers posts discovered during a sync and flushes them to
// storage in batches of pipelineBatchSize or every pipelineFlushPeriod,
// whichever comes first (§4.1). Enqueue blocks once pipelineSoftBound
// buffered-but-unflushed posts accumulate, providing backpressure against a
// synchronizer outpacing the database.
type Pipeline struct {
	repo post.Repository

	mu      sync.Mutex
	buf     []*post.Post
	flushed chan struct{}

	insertedIDs []int
	flushErr    error

	ticker *time.Ticker
	stopCh chan struct{}
	doneCh chan struct{}
}

func NewPipeline(repo post.Repository) *Pipeline {
	p := &Pipeline{
		repo:    repo,
		flushed: make(chan struct{}, 1),
		ticker:  time.NewTicker(pipelineFlushPeriod),
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}
	go p.loop()
	return p
}

func (p *Pipeline) loop() {
	defer close(p.doneCh)
	for {
		select {
		case <-p.ticker.C:
			_ = p.Flush(context.Background())
		case <-p.stopCh:
			p.ticker.Stop()
			return
		}
	}
}

// Enqueue adds a post to the buffer, blocking briefly if the soft bound is
// exceeded until the next periodic flush drains it.
func (p *Pipeline) Enqueue(ctx context.Context, np *post.Post) error {
	for {
		p.mu.Lock()
		if len(p.buf) < pipelineSoftBound {
			p.buf = append(p.buf, np)
			full := len(p.buf) >= pipelineBatchSize
			p.mu.Unlock()
			if full {
				return p.Flush(ctx)
			}
			return nil
		}
		p.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(10 * time.Millisecond):
		}
	}
}

// Flush writes any buffered posts transactionally and records their
// assigned IDs for the caller to inspect via InsertedIDs.
func (p *Pipeline) Flush(ctx context.Context) error {
	p.mu.Lock()
	if len(p.buf) == 0 {
		p.mu.Unlock()
		return nil
	}
	batch := p.buf
	p.buf = nil
	p.mu.Unlock()

	ids, err := p.repo.InsertBatch(ctx, batch)
	if err != nil {
		p.mu.Lock()
		p.flushErr = err
		p.mu.Unlock()
		return err
	}

	p.mu.Lock()
	p.insertedIDs = append(p.insertedIDs, ids...)
	p.mu.Unlock()
	return nil
}

// Close stops the periodic flush goroutine and performs a final flush.
func (p *Pipeline) Close(ctx context.Context) error {
	close(p.stopCh)
	<-p.doneCh
	return p.Flush(ctx)
}

// InsertedIDs returns every post ID assigned across all flushes so far.
func (p *Pipeline) InsertedIDs() []int {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]int, len(p.insertedIDs))
	copy(out, p.insertedIDs)
	return out
}
