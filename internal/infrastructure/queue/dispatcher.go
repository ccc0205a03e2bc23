package queue

import (
	"context"
	"hash/fnv"

	"github.com/rs/zerolog"

	"github.com/bahasaku/gateway/internal/metrics"
	"github.com/bahasaku/gateway/internal/core/domain"
	"github.com/bahasaku/gateway/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// Dispatcher fans session audit events out to a fixed set of workers,
// sharding on the session ID so events for one session are recorded in
// order. Emit never blocks a session operation: events are dropped (and
// counted) when a worker's buffer is full.
type Dispatcher struct {
	workers []chan domain.SessionEvent
	repo    ports.AuditRepository
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, repo ports.AuditRepository, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan domain.SessionEvent, numWorkers),
		repo:    repo,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.SessionEvent, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Emit queues an event for recording. Implements ports.AuditSink.
func (d *Dispatcher) Emit(event domain.SessionEvent) {
	select {
	case d.workers[d.shardIndex(event.SessionID)] <- event:
	default:
		metrics.AuditEventsDropped.Inc()
		d.log.Warn().
			Str("session_id", event.SessionID).
			Str("kind", event.Kind).
			Msg("audit buffer full, event dropped")
	}
}

// shardIndex maps a session ID deterministically to a worker index.
func (d *Dispatcher) shardIndex(sessionID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(sessionID))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.SessionEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			if err := d.repo.Record(ctx, event); err != nil {
				d.log.Error().Err(err).
					Str("session_id", event.SessionID).
					Str("kind", event.Kind).
					Int("worker_id", id).
					Msg("recording session event failed")
			}
		}
	}
}
