// Package events is the invoice ledger's integration-event transport: a
// Watermill pub/sub on the PostgreSQL tables the service already owns.
//
// Repositories publish through PublishInTx, so an event row is written in the
// same transaction as the mutation it describes and exists iff that commits.
// With Options.UseForwarder the rows land in a single outbox topic and the
// forwarder daemon (StartForwarder) relays them to their real topics.
//
// Subscribers in the same ConsumerGroup share the stream; an empty group
// broadcasts every message to every subscriber. Handlers must be idempotent:
// a failing handler is retried with exponential backoff and then Nacked.
//
// The OTel trace of the publishing request travels in message metadata and is
// restored before the handler runs.
package events

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	watermillsql "github.com/ThreeDotsLabs/watermill-sql/v3/pkg/sql"
	"github.com/ThreeDotsLabs/watermill/components/forwarder"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/ghuser/invoiceledger/pkg/logger"
)

const (
	// outboxTopic is the forwarder queue every tx publish lands in.
	outboxTopic     = "invoice_outbox"
	closeTimeout    = 30 * time.Second
	errorBufferSize = 100
)

// Options configures NewEventBus.
type Options struct {
	// ConsumerGroup load-balances subscribers sharing the same name. Empty broadcasts.
	ConsumerGroup string
	// UseForwarder routes every publish through the outbox topic.
	// Call StartForwarder once the bus is created.
	UseForwarder bool
}

// EventBus publishes and consumes invoice events over watermill-sql.
type EventBus struct {
	db       *sql.DB
	log      logger.Logger
	wlog     *watermillLogger
	outbox   bool
	retry    retryPolicy
	sub      *watermillsql.Subscriber
	fwd      *forwarder.Forwarder
	inflight sync.WaitGroup
}

// NewEventBus builds the subscriber on db. Events are only published inside a
// caller transaction (PublishInTx). Tables are created on first use. db belongs
// to the caller and stays open after Close.
func NewEventBus(db *sql.DB, opts Options, log logger.Logger) (*EventBus, error) {
	wlog := &watermillLogger{log: log}

	sub, err := watermillsql.NewSubscriber(db, subscriberConfig(opts.ConsumerGroup), wlog)
	if err != nil {
		return nil, fmt.Errorf("events: new subscriber: %w", err)
	}

	return &EventBus{
		db:     db,
		log:    log,
		wlog:   wlog,
		outbox: opts.UseForwarder,
		retry:  defaultRetryPolicy,
		sub:    sub,
	}, nil
}

func publisherConfig(autoInit bool) watermillsql.PublisherConfig {
	return watermillsql.PublisherConfig{
		SchemaAdapter:        watermillsql.DefaultPostgreSQLSchema{},
		AutoInitializeSchema: autoInit,
	}
}

func subscriberConfig(group string) watermillsql.SubscriberConfig {
	return watermillsql.SubscriberConfig{
		SchemaAdapter:    watermillsql.DefaultPostgreSQLSchema{},
		OffsetsAdapter:   watermillsql.DefaultPostgreSQLOffsetsAdapter{},
		InitializeSchema: true,
		ConsumerGroup:    group,
	}
}

// wrapOutbox envelopes messages for the forwarder when outbox mode is on.
func wrapOutbox(pub message.Publisher, outbox bool) message.Publisher {
	if !outbox {
		return pub
	}
	return forwarder.NewPublisher(pub, forwarder.PublisherConfig{ForwarderTopic: outboxTopic})
}

// Ping checks the connection the bus publishes through.
func (q *EventBus) Ping(ctx context.Context) error {
	if err := q.db.PingContext(ctx); err != nil {
		return fmt.Errorf("events: ping db: %w", err)
	}
	return nil
}

// Close stops the subscriber and the forwarder, then waits up to 30s for
// running handlers. The shared *sql.DB stays open.
func (q *EventBus) Close() error {
	if err := q.sub.Close(); err != nil {
		return fmt.Errorf("events: close subscriber: %w", err)
	}
	if q.fwd != nil {
		if err := q.fwd.Close(); err != nil {
			return fmt.Errorf("events: close forwarder: %w", err)
		}
	}

	done := make(chan struct{})
	go func() {
		q.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(closeTimeout):
		q.log.Error("events: handlers still running after close timeout", "timeout", closeTimeout)
	}
	return nil
}
