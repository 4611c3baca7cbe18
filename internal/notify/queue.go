package notify

import (
	"context"
	"time"

	"go.uber.org/zap"

	"riskScope/internal/metrics"
)

const (
	DefaultQueueSize = 256
	DefaultInterval  = time.Second
)

// Sender delivers one message.
type Sender interface {
	Send(ctx context.Context, text string) error
}

// Queue buffers outbound messages and drains them in FIFO order, one per
// tick. Delivery is best-effort: a full queue or a failed send drops the
// message.
type Queue struct {
	ch       chan string
	sender   Sender
	interval time.Duration
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

func NewQueue(sender Sender, size int, interval time.Duration, m *metrics.Metrics, logger *zap.Logger) *Queue {
	if logger == nil {
		logger = zap.NewNop()
	}
	if size <= 0 {
		size = DefaultQueueSize
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Queue{
		ch:       make(chan string, size),
		sender:   sender,
		interval: interval,
		metrics:  m,
		logger:   logger,
	}
}

// Notify enqueues a message without blocking.
func (q *Queue) Notify(text string) {
	select {
	case q.ch <- text:
	default:
		q.metrics.Notification("dropped")
		q.logger.Warn("notification queue full, dropping message", zap.Int("capacity", cap(q.ch)))
	}
}

// Len returns the number of queued messages.
func (q *Queue) Len() int {
	return len(q.ch)
}

// Run drains the queue until ctx is cancelled.
func (q *Queue) Run(ctx context.Context) error {
	ticker := time.NewTicker(q.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			select {
			case text := <-q.ch:
				q.deliver(ctx, text)
			default:
			}
		}
	}
}

func (q *Queue) deliver(ctx context.Context, text string) {
	if q.sender == nil {
		q.metrics.Notification("dropped")
		return
	}
	if err := q.sender.Send(ctx, text); err != nil {
		q.metrics.Notification("failed")
		q.logger.Warn("notification send failed", zap.Error(err))
		return
	}
	q.metrics.Notification("sent")
}
