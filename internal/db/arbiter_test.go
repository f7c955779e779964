package db

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestWriterGateMutualExclusion(t *testing.T) {
	gate := newWriterGate()

	const holders = 50
	var inside int32
	var maxInside int32
	var wg sync.WaitGroup

	for i := 0; i < holders; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := gate.acquire(context.Background()); err != nil {
				t.Errorf("acquire failed: %v", err)
				return
			}
			n := atomic.AddInt32(&inside, 1)
			for {
				current := atomic.LoadInt32(&maxInside)
				if n <= current || atomic.CompareAndSwapInt32(&maxInside, current, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inside, -1)
			gate.release()
		}()
	}

	wg.Wait()

	if got := atomic.LoadInt32(&maxInside); got != 1 {
		t.Fatalf("expected at most one concurrent holder, observed %d", got)
	}
}

func TestWriterGateAcquireCancellable(t *testing.T) {
	gate := newWriterGate()

	if err := gate.acquire(context.Background()); err != nil {
		t.Fatalf("first acquire failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := gate.acquire(ctx); err != context.DeadlineExceeded {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}

	// Cancelled waiter must not have corrupted the slot.
	gate.release()
	if err := gate.acquire(context.Background()); err != nil {
		t.Fatalf("acquire after cancelled wait failed: %v", err)
	}
	gate.release()
}

func TestWriterGateDoubleReleasePanics(t *testing.T) {
	gate := newWriterGate()
	if err := gate.acquire(context.Background()); err != nil {
		t.Fatalf("acquire failed: %v", err)
	}
	gate.release()

	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on release without holder")
		}
	}()
	gate.release()
}
