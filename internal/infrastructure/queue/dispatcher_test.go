package queue

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestDispatcher_SameKeyRunsInOrder(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d := NewDispatcher(4, zerolog.Nop())
	d.Start(ctx)

	var (
		mu    sync.Mutex
		order []int
	)
	results := make([]<-chan error, 0, 20)
	for i := 0; i < 20; i++ {
		i := i
		results = append(results, d.Submit(ctx, "my_listings", func(context.Context) error {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
			return nil
		}))
	}
	for _, ch := range results {
		if err := Wait(ctx, ch); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	for i, v := range order {
		if v != i {
			t.Fatalf("jobs ran out of order: %v", order)
		}
	}
}

func TestDispatcher_SameKeyNeverOverlaps(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d := NewDispatcher(2, zerolog.Nop())
	d.Start(ctx)

	var running, maxSeen int32
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = d.Do(ctx, "reservations", func(context.Context) error {
				n := atomic.AddInt32(&running, 1)
				for {
					m := atomic.LoadInt32(&maxSeen)
					if n <= m || atomic.CompareAndSwapInt32(&maxSeen, m, n) {
						break
					}
				}
				time.Sleep(time.Millisecond)
				atomic.AddInt32(&running, -1)
				return nil
			})
		}()
	}
	wg.Wait()
	if maxSeen != 1 {
		t.Fatalf("expected serial execution, saw %d concurrent jobs", maxSeen)
	}
}

func TestDispatcher_PropagatesError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d := NewDispatcher(1, zerolog.Nop())
	d.Start(ctx)

	boom := errors.New("boom")
	if err := d.Do(ctx, "k", func(context.Context) error { return boom }); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
}

func TestDispatcher_CancelledCallerSkipsJob(t *testing.T) {
	root, cancelRoot := context.WithCancel(context.Background())
	defer cancelRoot()
	d := NewDispatcher(1, zerolog.Nop())
	d.Start(root)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ran := false
	err := Wait(context.Background(), d.Submit(ctx, "k", func(context.Context) error {
		ran = true
		return nil
	}))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if ran {
		t.Fatalf("job must not run for a cancelled caller")
	}
}

func TestDispatcher_SubmitAfterStop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	d := NewDispatcher(1, zerolog.Nop())
	d.Start(ctx)
	cancel()
	<-d.stopped

	err := Wait(context.Background(), d.Submit(context.Background(), "k", func(context.Context) error { return nil }))
	if !errors.Is(err, ErrStopped) {
		t.Fatalf("expected ErrStopped, got %v", err)
	}
}

func TestShardIndex_Deterministic(t *testing.T) {
	d := NewDispatcher(8, zerolog.Nop())
	if d.shardIndex("all_listings") != d.shardIndex("all_listings") {
		t.Fatalf("shard index must be deterministic")
	}
	if idx := d.shardIndex("x"); idx < 0 || idx >= 8 {
		t.Fatalf("index out of range: %d", idx)
	}
}
