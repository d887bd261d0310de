package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/shaiso/Rotor/internal/domain"
)

// MessageType — тип сообщения в очереди.
type MessageType string

// Типы сообщений.
const (
	MessageTypeRotationCompleted MessageType = "rotation.completed"
	MessageTypeRotationFailed    MessageType = "rotation.failed"
)

// Publisher публикует события ротации в RabbitMQ.
type Publisher struct {
	conn   *Connection
	logger *slog.Logger
}

// NewPublisher создаёт новый Publisher.
func NewPublisher(conn *Connection, logger *slog.Logger) *Publisher {
	return &Publisher{
		conn:   conn,
		logger: logger,
	}
}

// Message — сообщение для публикации.
type Message struct {
	// ID — уникальный идентификатор сообщения.
	ID string `json:"id"`

	// Type — тип сообщения.
	Type MessageType `json:"type"`

	// Payload — полезная нагрузка.
	Payload any `json:"payload"`

	// Timestamp — время создания.
	Timestamp time.Time `json:"timestamp"`
}

// RotationCompletedPayload — payload события об успешной ротации.
type RotationCompletedPayload struct {
	PanelID   int64     `json:"panel_id"`
	Username  string    `json:"username"`
	Parts     int       `json:"parts"`
	NextDueAt time.Time `json:"next_due_at"`
}

// RotationFailedPayload — payload события о неудачном запуске.
type RotationFailedPayload struct {
	PanelID  int64  `json:"panel_id"`
	Username string `json:"username"`
	Error    string `json:"error"`
}

// Publish публикует сообщение в exchange событий с routing key.
func (p *Publisher) Publish(ctx context.Context, routingKey RoutingKey, msg *Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	return p.conn.WithChannel(func(ch *amqp.Channel) error {
		err := ch.PublishWithContext(
			ctx,
			string(ExchangeEvents), // exchange
			string(routingKey),     // routing key
			false,
			false,
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent, // сообщение переживёт рестарт RabbitMQ
				MessageId:    msg.ID,
				Timestamp:    msg.Timestamp,
				Body:         body,
			},
		)
		if err != nil {
			return fmt.Errorf("publish to %s/%s: %w", ExchangeEvents, routingKey, err)
		}

		p.logger.Debug("published message",
			"routing_key", routingKey,
			"message_id", msg.ID,
			"type", msg.Type,
		)

		return nil
	})
}

// PublishRotationCompleted публикует событие об успешной ротации.
func (p *Publisher) PublishRotationCompleted(ctx context.Context, key domain.AccountKey, parts int, nextDue time.Time) error {
	msg := &Message{
		ID:   uuid.New().String(),
		Type: MessageTypeRotationCompleted,
		Payload: RotationCompletedPayload{
			PanelID:   key.PanelID,
			Username:  key.Username,
			Parts:     parts,
			NextDueAt: nextDue,
		},
		Timestamp: time.Now(),
	}

	return p.Publish(ctx, RoutingKeyRotationCompleted, msg)
}

// PublishRotationFailed публикует событие о неудачном запуске.
func (p *Publisher) PublishRotationFailed(ctx context.Context, key domain.AccountKey, errText string) error {
	msg := &Message{
		ID:   uuid.New().String(),
		Type: MessageTypeRotationFailed,
		Payload: RotationFailedPayload{
			PanelID:  key.PanelID,
			Username: key.Username,
			Error:    errText,
		},
		Timestamp: time.Now(),
	}

	return p.Publish(ctx, RoutingKeyRotationFailed, msg)
}
