package audit

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/clinic-scheduler/internal/metrics"
	"github.com/BruksfildServices01/clinic-scheduler/internal/timezone"
)

const (
	DefaultQueueSize = 100
	writeTimeout     = 5 * time.Second
)

// Dispatcher writes events on a background worker. A full queue drops the
// event; write failures are logged. Neither reaches the caller.
type Dispatcher struct {
	store   Store
	log     *zap.Logger
	metrics *metrics.Metrics
	clock   timezone.Clock

	mu     sync.RWMutex
	closed bool
	queue  chan Event
	done   chan struct{}
	once   sync.Once
}

func NewDispatcher(
	store Store,
	queueSize int,
	clock timezone.Clock,
	log *zap.Logger,
	m *metrics.Metrics,
) *Dispatcher {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	if log == nil {
		log = zap.NewNop()
	}
	d := &Dispatcher{
		store:   store,
		log:     log.Named("audit"),
		metrics: m,
		clock:   clock,
		queue:   make(chan Event, queueSize),
		done:    make(chan struct{}),
	}

	go d.worker()
	return d
}

func (d *Dispatcher) worker() {
	defer close(d.done)

	for ev := range d.queue {
		d.write(ev)
	}
}

func (d *Dispatcher) write(ev Event) {
	row, err := ev.Entry()
	if err != nil {
		d.log.Error("audit snapshot failed", zap.String("table", ev.Table), zap.Error(err))
		d.metrics.AuditWriteFailed()
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	if err := d.store.Write(ctx, row); err != nil {
		d.log.Error("audit write failed",
			zap.String("action", string(ev.Action)),
			zap.String("table", ev.Table),
			zap.Uint("record_id", ev.RecordID),
			zap.Error(err),
		)
		d.metrics.AuditWriteFailed()
	}
}

func (d *Dispatcher) Record(ev Event) {
	if ev.At.IsZero() {
		ev.At = d.clock.Now()
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.log.Warn("audit dispatcher closed, dropping event", zap.String("table", ev.Table))
		d.metrics.AuditDropped()
		return
	}

	select {
	case d.queue <- ev:
	default:
		d.log.Warn("audit queue full, dropping event",
			zap.String("action", string(ev.Action)),
			zap.String("table", ev.Table),
			zap.Uint("record_id", ev.RecordID),
		)
		d.metrics.AuditDropped()
	}
}

// Close stops accepting events and waits until the queue is drained.
func (d *Dispatcher) Close() {
	d.once.Do(func() {
		d.mu.Lock()
		d.closed = true
		close(d.queue)
		d.mu.Unlock()
	})
	<-d.done
}

var _ Recorder = (*Dispatcher)(nil)
