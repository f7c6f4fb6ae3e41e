package events

import (
	"context"
	"database/sql"
	"fmt"

	watermillsql "github.com/ThreeDotsLabs/watermill-sql/v3/pkg/sql"
	"github.com/ThreeDotsLabs/watermill/message"
)

// PublishInTx writes msg to topic inside tx, so the event is stored iff tx
// commits. Topic tables must already exist; the forwarder and subscribers
// create them at start-up.
func (q *EventBus) PublishInTx(ctx context.Context, tx *sql.Tx, topic string, msg *message.Message) error {
	pub, err := watermillsql.NewPublisher(tx, publisherConfig(false), q.wlog)
	if err != nil {
		return fmt.Errorf("events: new tx publisher: %w", err)
	}
	injectTrace(ctx, msg)
	if err := wrapOutbox(pub, q.outbox).Publish(topic, msg); err != nil { //nolint:contextcheck
		return fmt.Errorf("events: publish %s in tx: %w", topic, err)
	}
	return nil
}
