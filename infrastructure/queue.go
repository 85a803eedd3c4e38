package infrastructure

import (
	"context"
	"errors"
	"sync"

	"devconnect/domain"
)

var ErrQueueClosed = errors.New("queue closed")

// MemoryQueue is the in-process stand-in for RabbitMQ when no broker is configured.
// The event channel is never closed; done signals shutdown to publishers and the consumer.
type MemoryQueue struct {
	ch        chan domain.ApplicationEvent
	done      chan struct{}
	closeOnce sync.Once
}

func NewMemoryQueue(buffer int) *MemoryQueue {
	if buffer < 1 {
		buffer = 1
	}
	return &MemoryQueue{
		ch:   make(chan domain.ApplicationEvent, buffer),
		done: make(chan struct{}),
	}
}

// Publish blocks while the buffer is full until the event is queued, ctx ends or the
// queue is closed.
func (q *MemoryQueue) Publish(ctx context.Context, ev domain.ApplicationEvent) error {
	select {
	case <-q.done:
		return ErrQueueClosed
	default:
	}
	select {
	case q.ch <- ev:
		return nil
	case <-q.done:
		return ErrQueueClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *MemoryQueue) Consume(ctx context.Context, handler EventHandler) error {
	log := C("queue")
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-q.done:
				return
			case ev := <-q.ch:
				if err := handler(ctx, ev); err != nil {
					log.WithError(err).WithField("application_id", ev.ApplicationID).Warn("event handler failed")
				}
			}
		}
	}()
	return nil
}

// Close unblocks pending publishers and stops the consumer. Events still buffered are
// dropped.
func (q *MemoryQueue) Close() error {
	q.closeOnce.Do(func() { close(q.done) })
	return nil
}
