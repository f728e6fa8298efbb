package audit

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/txgate/txgate/application/port/outbound"
	"github.com/txgate/txgate/domain"
	"github.com/txgate/txgate/infrastructure/service/logger"
)

// Dispatcher decouples audit writes from the transaction hot path: Record
// enqueues onto a buffered channel and a single worker drains it into the
// underlying sink. When the buffer is full the record is dropped and
// counted rather than blocking the caller.
type Dispatcher struct {
	sink    outbound.AuditSink
	logger  logger.Logger
	ch      chan domain.AuditRecord
	done    chan struct{}
	wg      sync.WaitGroup
	dropped atomic.Uint64
	closed  atomic.Bool
	once    sync.Once
}

// NewDispatcher starts the worker goroutine. bufferSize <= 0 falls back
// to 1.
func NewDispatcher(sink outbound.AuditSink, bufferSize int, log logger.Logger) *Dispatcher {
	if bufferSize <= 0 {
		bufferSize = 1
	}

	d := &Dispatcher{
		sink:   sink,
		logger: log,
		ch:     make(chan domain.AuditRecord, bufferSize),
		done:   make(chan struct{}),
	}

	d.wg.Add(1)
	go d.run()

	return d
}

func (d *Dispatcher) run() {
	defer d.wg.Done()

	for {
		select {
		case record := <-d.ch:
			d.emit(record)
		case <-d.done:
			for {
				select {
				case record := <-d.ch:
					d.emit(record)
				default:
					return
				}
			}
		}
	}
}

func (d *Dispatcher) emit(record domain.AuditRecord) {
	if err := d.sink.Record(context.Background(), record); err != nil {
		d.logger.Error(context.Background(), "Audit sink write failed", err, map[string]interface{}{
			"request_id": record.RequestID,
			"tx":         record.TX,
		})
	}
}

// Record enqueues the audit record without blocking. A full buffer drops
// the record; auditing is best-effort.
func (d *Dispatcher) Record(ctx context.Context, record domain.AuditRecord) error {
	if d.closed.Load() {
		return nil
	}

	select {
	case d.ch <- record:
	case <-d.done:
	default:
		d.dropped.Add(1)
	}
	return nil
}

// Close drains the buffer and stops the worker.
func (d *Dispatcher) Close() {
	d.once.Do(func() {
		d.closed.Store(true)
		close(d.done)
		d.wg.Wait()
	})
}

// Dropped returns the number of records lost to a full buffer.
func (d *Dispatcher) Dropped() uint64 {
	return d.dropped.Load()
}

var _ outbound.AuditSink = (*Dispatcher)(nil)
