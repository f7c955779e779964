package db

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// Arbiter serializes all writes through a single exclusive transaction slot
// while leaving reads unsynchronized. It is constructed once at startup and
// passed down; nothing else may lock the handles it owns.
type Arbiter struct {
	handles *Handles
	gate    *writerGate
}

func NewArbiter(handles *Handles) *Arbiter {
	return &Arbiter{
		handles: handles,
		gate:    newWriterGate(),
	}
}

// AcquireWriter blocks until the writer slot is free, then begins a
// transaction on the writable handle. At most one WriterTxn exists at any
// instant. The wait is cancellable through ctx without corrupting the slot.
func (a *Arbiter) AcquireWriter(ctx context.Context) (*WriterTxn, error) {
	if err := a.gate.acquire(ctx); err != nil {
		return nil, err
	}

	tx := a.handles.Writer.WithContext(ctx).Begin()
	if tx.Error != nil {
		a.gate.release()
		return nil, fmt.Errorf("begin writer txn: %w", tx.Error)
	}

	return &WriterTxn{tx: tx, gate: a.gate}, nil
}

// Reader hands out a context-scoped read handle from the pool. It never
// waits on the writer slot or on other readers; isolation is whatever the
// backing store gives committed reads.
func (a *Arbiter) Reader(ctx context.Context) *gorm.DB {
	return a.handles.Reader.WithContext(ctx)
}

// Write runs fn inside an exclusive writer transaction: commit when fn
// returns nil, rollback on error or panic. The slot is released before
// Write returns, so callers can safely schedule background work after it.
func (a *Arbiter) Write(ctx context.Context, fn func(tx *gorm.DB) error) error {
	txn, err := a.AcquireWriter(ctx)
	if err != nil {
		return err
	}
	defer txn.Rollback()

	if err := fn(txn.DB()); err != nil {
		return err
	}

	return txn.Commit()
}

// WriterTxn is the exclusive unit of work handed out by AcquireWriter. It
// must be finished with Commit or Rollback; Rollback after Commit is a
// no-op, so `defer txn.Rollback()` is the expected usage.
type WriterTxn struct {
	tx   *gorm.DB
	gate *writerGate
	done bool
}

func (t *WriterTxn) DB() *gorm.DB {
	return t.tx
}

func (t *WriterTxn) Commit() error {
	if t.done {
		return nil
	}
	t.done = true
	err := t.tx.Commit().Error
	t.gate.release()
	if err != nil {
		return fmt.Errorf("commit writer txn: %w", err)
	}
	return nil
}

func (t *WriterTxn) Rollback() {
	if t.done {
		return
	}
	t.done = true
	t.tx.Rollback()
	t.gate.release()
}

// writerGate is a one-slot semaphore. Kept separate from the Arbiter so the
// exclusion discipline can be exercised without a live database.
type writerGate struct {
	slot chan struct{}
}

func newWriterGate() *writerGate {
	return &writerGate{slot: make(chan struct{}, 1)}
}

func (g *writerGate) acquire(ctx context.Context) error {
	select {
	case g.slot <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (g *writerGate) release() {
	select {
	case <-g.slot:
	default:
		panic("db: writer gate released without holder")
	}
}
