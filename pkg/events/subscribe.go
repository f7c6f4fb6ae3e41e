package events

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/ghuser/invoiceledger/pkg/logger"
)

// Handler processes one message. A nil return Acks it.
type Handler func(ctx context.Context, msg *message.Message) error

// retryPolicy bounds how often a failing handler is re-run before the message
// is Nacked.
type retryPolicy struct {
	attempts  int
	baseDelay time.Duration
}

var defaultRetryPolicy = retryPolicy{attempts: 3, baseDelay: time.Second}

// Subscribe runs handler for every message on topic until ctx ends or the bus
// closes. A handler error is retried 3 times (1s, 2s backoff) before the
// message is Nacked and the error is sent on the returned channel.
//
// The channel is buffered; callers must drain it:
//
//	errCh, err := bus.Subscribe(ctx, topic, handler)
//	go func() { for err := range errCh { log.ErrorContext(ctx, "subscriber error", "error", err) } }()
func (q *EventBus) Subscribe(ctx context.Context, topic string, handler Handler) (<-chan error, error) {
	msgs, err := q.sub.Subscribe(ctx, topic)
	if err != nil {
		return nil, fmt.Errorf("events: subscribe %s: %w", topic, err)
	}

	errCh := make(chan error, errorBufferSize)
	q.inflight.Add(1)
	go func() {
		defer q.inflight.Done()
		defer close(errCh)

		for msg := range msgs {
			msgCtx := extractTrace(ctx, msg)
			if err := deliver(msgCtx, msg, handler, q.retry, q.log); err != nil {
				msg.Nack()
				select {
				case errCh <- fmt.Errorf("%s: %w", topic, err):
				default:
					q.log.ErrorContext(msgCtx, "events: error channel full, dropping error",
						"topic", topic, "error", err)
				}
				continue
			}
			msg.Ack()
		}
	}()

	return errCh, nil
}

// deliver calls handler until it succeeds or the policy's attempts run out,
// doubling the delay between attempts.
func deliver(ctx context.Context, msg *message.Message, handler Handler, policy retryPolicy, log logger.Logger) error {
	delay := policy.baseDelay
	var err error
	for attempt := 1; ; attempt++ {
		if err = handler(ctx, msg); err == nil {
			return nil
		}
		if attempt >= policy.attempts {
			return fmt.Errorf("events: message %s failed after %d attempts: %w", msg.UUID, attempt, err)
		}
		log.WarnContext(ctx, "events: handler failed, retrying",
			"message_id", msg.UUID,
			"attempt", attempt,
			"next_delay", delay,
			"error", err,
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
}
