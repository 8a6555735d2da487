package queue

import (
	"context"
	"hash/fnv"

	"github.com/rs/zerolog"

	"github.com/rodocarga/logistics-api/internal/core/domain"
	"github.com/rodocarga/logistics-api/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// AuditDispatcher persists lifecycle audit events asynchronously, sharding by
// tracking number so one shipment's events are written in emission order.
// Implements ports.AuditPublisher; a full shard drops the event rather than
// block a lifecycle operation.
type AuditDispatcher struct {
	workers []chan domain.ShipmentEvent
	repo    ports.EventRepository
	log     zerolog.Logger
}

// NewAuditDispatcher creates an AuditDispatcher with numWorkers sharded
// workers. If numWorkers <= 0, defaultWorkers is used.
func NewAuditDispatcher(numWorkers int, repo ports.EventRepository, log zerolog.Logger) *AuditDispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &AuditDispatcher{
		workers: make([]chan domain.ShipmentEvent, numWorkers),
		repo:    repo,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.ShipmentEvent, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *AuditDispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Publish hands an event to the worker responsible for its tracking number.
func (d *AuditDispatcher) Publish(event domain.ShipmentEvent) {
	select {
	case d.workers[d.shardIndex(event.TrackingNumber)] <- event:
	default:
		d.log.Warn().Str("tracking_number", event.TrackingNumber).Str("type", event.Type).
			Msg("audit queue full, event dropped")
	}
}

// shardIndex maps a tracking number deterministically to a worker index.
func (d *AuditDispatcher) shardIndex(trackingNumber string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(trackingNumber))
	return int(h.Sum32()) % len(d.workers)
}

func (d *AuditDispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.ShipmentEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			if err := d.repo.InsertEvent(ctx, &event); err != nil {
				d.log.Warn().Err(err).
					Str("tracking_number", event.TrackingNumber).
					Str("type", event.Type).
					Int("worker_id", id).
					Msg("failed to persist audit event")
			}
		}
	}
}
