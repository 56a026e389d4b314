package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/voltaic/energy-cms/internal/pkg/metrics"
	"github.com/voltaic/energy-cms/internal/core/domain"
	"github.com/voltaic/energy-cms/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
	writeTimeout   = 5 * time.Second
)

// Dispatcher delivers activity events to the store from a fixed set of
// workers. Events are sharded on kind and entity ID so that writes for one
// record keep their order. Record never blocks: a full worker queue drops the event.
type Dispatcher struct {
	workers []chan domain.ActivityEvent
	repo    ports.ActivityRepository
	now     func() time.Time
	log     zerolog.Logger
	wg      sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, repo ports.ActivityRepository, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan domain.ActivityEvent, numWorkers),
		repo:    repo,
		now:     func() time.Time { return time.Now().UTC() },
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.ActivityEvent, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. When ctx is cancelled each worker
// flushes what is already queued and exits; Wait blocks until they have.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Wait blocks until every worker has stopped.
func (d *Dispatcher) Wait() { d.wg.Wait() }

// Record implements ports.ActivityRecorder.
func (d *Dispatcher) Record(event domain.ActivityEvent) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = d.now()
	}

	idx := d.shardIndex(event)
	select {
	case d.workers[idx] <- event:
		metrics.ActivityQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	default:
		metrics.ActivityDroppedTotal.Inc()
		d.log.Warn().
			Str("action", string(event.Action)).
			Str("kind", event.Kind).
			Int64("entity_id", event.EntityID).
			Int("worker_id", idx).
			Msg("activity queue full, event dropped")
	}
}

// shardIndex maps an event deterministically to a worker index. Events that
// concern no record are keyed by actor.
func (d *Dispatcher) shardIndex(event domain.ActivityEvent) int {
	h := fnv.New32a()
	if event.Kind != "" {
		_, _ = h.Write([]byte(event.Kind))
		_, _ = h.Write([]byte{':'})
		_, _ = h.Write([]byte(strconv.FormatInt(event.EntityID, 10)))
	} else {
		_, _ = h.Write([]byte(event.Actor))
	}
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.ActivityEvent) {
	defer d.wg.Done()

	for {
		select {
		case <-ctx.Done():
			for {
				select {
				case event := <-ch:
					d.write(ctx, id, event)
				default:
					return
				}
			}
		case event := <-ch:
			d.write(ctx, id, event)
		}
	}
}

// write persists one event. Its deadline is detached from ctx so that
// events flushed during shutdown still get written.
func (d *Dispatcher) write(ctx context.Context, id int, event domain.ActivityEvent) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), writeTimeout)
	defer cancel()

	label := strconv.Itoa(id)
	start := time.Now()
	err := d.repo.Insert(ctx, event)
	result := "ok"
	if err != nil {
		result = "error"
		d.log.Error().Err(err).
			Str("action", string(event.Action)).
			Int("worker_id", id).
			Msg("activity write failed")
	}
	metrics.ActivityWriteDuration.WithLabelValues(result).Observe(time.Since(start).Seconds())
	metrics.ActivityQueueDepth.WithLabelValues(label).Set(float64(len(d.workers[id])))
}
