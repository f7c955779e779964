package library

import (
	"context"
	"sync"

	"media-catalog-go/pkg/logger"
)

// Cascade is the deletion worker for hidden libraries. It owns its own
// goroutine and queue; jobs run with a background context so a cancelled
// or timed-out request never interrupts a cascade that is already due.
// Failures are logged and absorbed: the caller was already told the delete
// succeeded when the library was hidden, so there is nobody to report to.
type Cascade struct {
	repo Repository
	log  logger.Logger

	mu     sync.Mutex
	jobs   chan int64
	closed bool
	wg     sync.WaitGroup
}

func NewCascade(repo Repository, queueSize int, log logger.Logger) *Cascade {
	if queueSize < 1 {
		queueSize = 1
	}
	return &Cascade{
		repo: repo,
		log:  log,
		jobs: make(chan int64, queueSize),
	}
}

func (c *Cascade) Start() {
	c.wg.Add(1)
	go c.run()
}

// Stop drains queued jobs and waits for the worker to exit.
func (c *Cascade) Stop() {
	c.mu.Lock()
	if !c.closed {
		c.closed = true
		close(c.jobs)
	}
	c.mu.Unlock()
	c.wg.Wait()
}

// Enqueue hands a hidden library id to the worker without blocking the
// request path. A full queue drops the job with a log line; the library
// stays hidden and invisible either way.
func (c *Cascade) Enqueue(id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		c.log.Warn("cascade: worker stopped, dropping job", "library_id", id)
		return
	}
	select {
	case c.jobs <- id:
	default:
		c.log.Warn("cascade: queue full, dropping job", "library_id", id)
	}
}

func (c *Cascade) run() {
	defer c.wg.Done()
	for id := range c.jobs {
		c.deleteLibrary(id)
	}
}

func (c *Cascade) deleteLibrary(id int64) {
	ctx := context.Background()

	err := c.repo.Write(ctx, func(r Repository) error {
		if err := r.DeleteLibrary(ctx, id); err != nil {
			return err
		}
		if err := r.DeleteMediaByLibrary(ctx, id); err != nil {
			return err
		}
		return r.DeleteFilesByLibrary(ctx, id)
	})
	if err != nil {
		c.log.Error("cascade: failed to delete library and its content", "library_id", id, "err", err)
		return
	}

	c.log.Info("cascade: deleted library", "library_id", id)
}
