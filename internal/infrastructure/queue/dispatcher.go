package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/dailymood/mood-tracker/internal/core/domain"
	"github.com/dailymood/mood-tracker/internal/core/ports"
	"github.com/dailymood/mood-tracker/internal/pkg/metrics"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
	deliverTimeout = 5 * time.Second
	// drainTimeout bounds how long stopping workers keep delivering what is
	// still queued.
	drainTimeout = 10 * time.Second
)

// Dispatcher fans record events out to a set of sinks on a fixed pool of
// workers. Events are sharded by user ID, so one user's events reach every
// sink in the order they were enqueued.
type Dispatcher struct {
	workers      []chan domain.RecordEvent
	sinks        []ports.EventSink
	log          zerolog.Logger
	wg           sync.WaitGroup
	drainTimeout time.Duration
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, sinks []ports.EventSink, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers:      make([]chan domain.RecordEvent, numWorkers),
		sinks:        sinks,
		log:          log,
		drainTimeout: drainTimeout,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.RecordEvent, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Once ctx is cancelled each worker
// delivers what is already queued, for at most drainTimeout, counts whatever
// is left as dropped, and returns. Wait blocks until all have.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Wait blocks until every worker has returned.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Notify enqueues ev on the worker owning its user. It never blocks: when the
// worker queue is full the event is dropped and counted.
func (d *Dispatcher) Notify(ev domain.RecordEvent) {
	idx := d.shardIndex(ev.UserID)
	select {
	case d.workers[idx] <- ev:
		metrics.EventsQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	default:
		metrics.EventsDroppedTotal.WithLabelValues("queue_full").Inc()
		d.log.Warn().
			Str("user_id", ev.UserID).
			Str("record_id", ev.RecordID).
			Int("worker_id", idx).
			Msg("event queue full, dropping record event")
	}
}

// shardIndex maps a user ID deterministically to a worker index.
func (d *Dispatcher) shardIndex(userID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.RecordEvent) {
	defer d.wg.Done()
	label := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			d.drain(id, ch)
			return
		case ev := <-ch:
			metrics.EventsQueueDepth.WithLabelValues(label).Set(float64(len(ch)))
			// Stopping does not abort an event already taken off the queue;
			// deliverTimeout still bounds it.
			d.deliver(context.WithoutCancel(ctx), id, ev)
		}
	}
}

// drain empties ch after shutdown was requested. Delivery runs on a fresh
// context since ctx is already done.
func (d *Dispatcher) drain(id int, ch <-chan domain.RecordEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), d.drainTimeout)
	defer cancel()

	label := strconv.Itoa(id)
	delivered, dropped := 0, 0
	for {
		select {
		case ev := <-ch:
			if ctx.Err() != nil {
				metrics.EventsDroppedTotal.WithLabelValues("shutdown").Inc()
				dropped++
				continue
			}
			d.deliver(ctx, id, ev)
			delivered++
		default:
			metrics.EventsQueueDepth.WithLabelValues(label).Set(0)
			if delivered > 0 || dropped > 0 {
				d.log.Info().
					Int("worker_id", id).
					Int("delivered", delivered).
					Int("dropped", dropped).
					Msg("event worker drained")
			}
			return
		}
	}
}

// deliver hands ev to every sink. Sink failures are logged and counted; they
// never stop the other sinks.
func (d *Dispatcher) deliver(ctx context.Context, workerID int, ev domain.RecordEvent) {
	for _, sink := range d.sinks {
		sctx, cancel := context.WithTimeout(ctx, deliverTimeout)
		err := sink.Deliver(sctx, ev)
		cancel()

		if err != nil {
			metrics.EventsDeliveredTotal.WithLabelValues(sink.Name(), "error").Inc()
			d.log.Error().Err(err).
				Str("sink", sink.Name()).
				Str("kind", string(ev.Kind)).
				Str("record_id", ev.RecordID).
				Int("worker_id", workerID).
				Msg("record event delivery failed")
			continue
		}
		metrics.EventsDeliveredTotal.WithLabelValues(sink.Name(), "ok").Inc()
	}
}
