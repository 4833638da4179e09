// Package queue publishes pack-opened events to RabbitMQ for downstream
// consumers. Delivery is best-effort: errors are returned so the caller can
// log and ignore them without interrupting the open flow.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/hexapod/packs-go/internal/domain"
	"github.com/hexapod/packs-go/internal/ports"
)

const queueName = "pack.opened"

// PackOpenedEvent is the message body published on each successful open.
type PackOpenedEvent struct {
	PackID     string             `json:"pack_id"`
	IdentityID string             `json:"identity_id"`
	Username   string             `json:"username"`
	Cards      []domain.DrawnCard `json:"cards"`
	OpenedAt   time.Time          `json:"opened_at"`
}

// Publisher writes PackOpenedEvent messages to a durable queue. Each publish
// dials its own short-lived connection; the open path stays decoupled from
// broker availability.
type Publisher struct {
	url string
}

func NewPublisher(url string) *Publisher {
	return &Publisher{url: url}
}

func (p *Publisher) Name() string { return "queue" }

func (p *Publisher) PackOpened(ctx context.Context, identity domain.Identity, pack domain.Pack) error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return fmt.Errorf("dial broker: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	// Idempotent declare; durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	body, err := json.Marshal(PackOpenedEvent{
		PackID:     pack.ID,
		IdentityID: identity.ID,
		Username:   identity.Username,
		Cards:      pack.Cards,
		OpenedAt:   pack.OpenedAt,
	})
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	if err := ch.PublishWithContext(ctx, "", queueName, false, false, pub); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	return nil
}

// compile-time interface check
var _ ports.Notifier = (*Publisher)(nil)
