package audit

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/BruksfildServices01/barbershop-booking/internal/metrics"
)

type Event struct {
	BarbershopID uint
	UserID       *uint
	Action       string
	Entity       string
	EntityID     *uint
	Metadata     any
	OccurredAt   time.Time
}

// Sink receives every dispatched event. Errors are logged by the
// dispatcher and never reach the request path.
type Sink interface {
	Write(ctx context.Context, ev Event) error
}

type Dispatcher struct {
	log   zerolog.Logger
	sinks []Sink
	queue chan Event
	done  chan struct{}

	mu     sync.RWMutex
	closed bool
}

func NewDispatcher(log zerolog.Logger, sinks ...Sink) *Dispatcher {
	d := &Dispatcher{
		log:   log.With().Str("component", "audit").Logger(),
		sinks: sinks,
		queue: make(chan Event, 100),
		done:  make(chan struct{}),
	}

	go d.worker()
	return d
}

func (d *Dispatcher) worker() {
	defer close(d.done)

	for ev := range d.queue {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		for _, s := range d.sinks {
			if err := s.Write(ctx, ev); err != nil {
				d.log.Error().
					Err(err).
					Str("action", ev.Action).
					Uint("barbershop_id", ev.BarbershopID).
					Msg("audit sink failed")
			}
		}
		cancel()
	}
}

// Dispatch never blocks: a full queue drops the event.
func (d *Dispatcher) Dispatch(ev Event) {
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return
	}

	select {
	case d.queue <- ev:
	default:
		metrics.IncAuditDropped()
		d.log.Warn().Str("action", ev.Action).Msg("audit queue full, dropping event")
	}
}

// Close stops accepting events and waits for the queue to drain or ctx to
// expire.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
