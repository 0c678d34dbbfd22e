package queue

import (
	"context"
	"errors"
	"hash/fnv"
	"strconv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/Zakyahmed/SaveEat-New/internal/pkg/metrics"
)

const (
	defaultWorkers = 4
	channelBuffer  = 64
)

// ErrStopped is returned for jobs submitted after the dispatcher shut down.
var ErrStopped = errors.New("dispatcher stopped")

type job struct {
	ctx  context.Context
	key  string
	fn   func(context.Context) error
	done chan error
}

// Dispatcher routes jobs to a fixed set of workers using consistent hashing
// on the job key. Jobs sharing a key run one at a time in submission order;
// jobs with different keys may run concurrently.
type Dispatcher struct {
	workers []chan job
	log     zerolog.Logger

	startOnce sync.Once
	stopped   chan struct{}
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan job, numWorkers),
		log:     log,
		stopped: make(chan struct{}),
	}
	for i := range d.workers {
		d.workers[i] = make(chan job, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	d.startOnce.Do(func() {
		for i, ch := range d.workers {
			go d.runWorker(ctx, i, ch)
		}
		go func() {
			<-ctx.Done()
			close(d.stopped)
		}()
	})
}

// Submit queues fn on the worker responsible for key and returns a channel
// that receives exactly one result. fn runs with the caller's ctx.
func (d *Dispatcher) Submit(ctx context.Context, key string, fn func(context.Context) error) <-chan error {
	j := job{ctx: ctx, key: key, fn: fn, done: make(chan error, 1)}
	select {
	case <-d.stopped:
		j.done <- ErrStopped
		return j.done
	default:
	}
	idx := d.shardIndex(key)
	select {
	case d.workers[idx] <- j:
		metrics.RefreshQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	case <-ctx.Done():
		j.done <- ctx.Err()
	case <-d.stopped:
		j.done <- ErrStopped
	}
	return j.done
}

// Do submits fn and waits for its result or for ctx to end.
func (d *Dispatcher) Do(ctx context.Context, key string, fn func(context.Context) error) error {
	return Wait(ctx, d.Submit(ctx, key, fn))
}

// Wait blocks until ch yields or ctx ends.
func Wait(ctx context.Context, ch <-chan error) error {
	select {
	case err := <-ch:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// shardIndex maps a key deterministically to a worker index.
func (d *Dispatcher) shardIndex(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan job) {
	label := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			d.drain(ch)
			return
		case j := <-ch:
			metrics.RefreshQueueDepth.WithLabelValues(label).Set(float64(len(ch)))
			if err := j.ctx.Err(); err != nil {
				j.done <- err
				continue
			}
			err := j.fn(j.ctx)
			if err != nil {
				d.log.Debug().Err(err).
					Str("key", j.key).
					Int("worker_id", id).
					Msg("job failed")
			}
			j.done <- err
		}
	}
}

// drain fails whatever is still buffered so no caller waits forever.
func (d *Dispatcher) drain(ch <-chan job) {
	for {
		select {
		case j := <-ch:
			j.done <- ErrStopped
		default:
			return
		}
	}
}
