package mq

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Exchange — тип для имени обменника.
type Exchange string

// Queue — тип для имени очереди.
type Queue string

// RoutingKey — тип для ключа маршрутизации.
type RoutingKey string

// ExchangeEvents — единственный обменник событий ротации.
const ExchangeEvents Exchange = "rotor.events"

// QueueAudit — durable-очередь всех событий ротации. Внешний
// потребитель разбирает её сам; без потребителя события копятся,
// а не теряются.
const QueueAudit Queue = "rotor.events.audit"

// Routing keys.
const (
	RoutingKeyRotationCompleted RoutingKey = "rotation.completed"
	RoutingKeyRotationFailed    RoutingKey = "rotation.failed"

	// routingKeyAllRotations — binding аудиторской очереди.
	routingKeyAllRotations RoutingKey = "rotation.*"
)

// SetupTopology объявляет exchange, очереди и bindings. Идемпотентно.
func SetupTopology(conn *Connection) error {
	return conn.WithChannel(func(ch *amqp.Channel) error {
		err := ch.ExchangeDeclare(
			string(ExchangeEvents), // name
			"topic",                // type
			true,                   // durable
			false,                  // auto-deleted
			false,                  // internal
			false,                  // no-wait
			nil,                    // arguments
		)
		if err != nil {
			return fmt.Errorf("declare exchange %s: %w", ExchangeEvents, err)
		}

		_, err = ch.QueueDeclare(
			string(QueueAudit), // name
			true,               // durable
			false,              // delete when unused
			false,              // exclusive
			false,              // no-wait
			nil,                // arguments
		)
		if err != nil {
			return fmt.Errorf("declare queue %s: %w", QueueAudit, err)
		}

		err = ch.QueueBind(
			string(QueueAudit),             // queue name
			string(routingKeyAllRotations), // routing key
			string(ExchangeEvents),         // exchange
			false,                          // no-wait
			nil,                            // arguments
		)
		if err != nil {
			return fmt.Errorf("bind queue %s to %s: %w", QueueAudit, ExchangeEvents, err)
		}

		return nil
	})
}
