package events

import (
	"context"
	"errors"
	"fmt"

	watermillsql "github.com/ThreeDotsLabs/watermill-sql/v3/pkg/sql"
	"github.com/ThreeDotsLabs/watermill/components/forwarder"
)

// StartForwarder runs the daemon that drains the outbox topic into the real
// topics. It returns once the daemon is consuming. Valid only once, and only
// on a bus created with Options.UseForwarder.
func (q *EventBus) StartForwarder(ctx context.Context) error {
	if !q.outbox {
		return errors.New("events: forwarder requires Options.UseForwarder")
	}
	if q.fwd != nil {
		return errors.New("events: forwarder already started")
	}

	outboxSub, err := watermillsql.NewSubscriber(q.db, subscriberConfig("invoice-forwarder"), q.wlog)
	if err != nil {
		return fmt.Errorf("events: new outbox subscriber: %w", err)
	}
	targetPub, err := watermillsql.NewPublisher(q.db, publisherConfig(true), q.wlog)
	if err != nil {
		_ = outboxSub.Close()
		return fmt.Errorf("events: new target publisher: %w", err)
	}

	fwd, err := forwarder.NewForwarder(outboxSub, targetPub, q.wlog, forwarder.Config{
		ForwarderTopic: outboxTopic,
	})
	if err != nil {
		_ = targetPub.Close()
		_ = outboxSub.Close()
		return fmt.Errorf("events: new forwarder: %w", err)
	}
	q.fwd = fwd

	q.inflight.Add(1)
	go func() {
		defer q.inflight.Done()
		q.log.InfoContext(ctx, "events: forwarder running", "outbox_topic", outboxTopic)
		if err := fwd.Run(ctx); err != nil {
			q.log.ErrorContext(ctx, "events: forwarder stopped", "error", err)
		}
	}()

	select {
	case <-fwd.Running():
		return nil
	case <-ctx.Done():
		return fmt.Errorf("events: waiting for forwarder: %w", ctx.Err())
	}
}
