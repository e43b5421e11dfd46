// Package amqpsink publishes booking events to a RabbitMQ topic exchange.
package amqpsink

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/MarkoPoloResearchLab/settlement/pkg/settlement"
)

const (
	exchangeKind       = "topic"
	contentTypeJSON    = "application/json"
	routingKeyPrefix   = "booking."
	headerEventVersion = "booking_version"
)

type channel interface {
	PublishWithContext(ctx context.Context, exchange string, key string, mandatory bool, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher is a notify.Sink backed by an AMQP channel.
type Publisher struct {
	conn     *amqp.Connection
	channel  channel
	exchange string
}

// New dials url and declares a durable topic exchange.
func New(url string, exchange string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	amqpChannel, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := amqpChannel.ExchangeDeclare(exchange, exchangeKind, true, false, false, false, nil); err != nil {
		_ = amqpChannel.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	return &Publisher{conn: conn, channel: amqpChannel, exchange: exchange}, nil
}

func (publisher *Publisher) Name() string {
	return "amqp"
}

// Publish sends the event with routing key booking.<state>.
func (publisher *Publisher) Publish(ctx context.Context, event settlement.BookingEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	return publisher.channel.PublishWithContext(ctx, publisher.exchange, RoutingKey(event), false, false, amqp.Publishing{
		ContentType:  contentTypeJSON,
		DeliveryMode: amqp.Persistent,
		MessageId:    event.BookingID + ":" + strconv.FormatInt(event.Version, 10),
		Timestamp:    event.OccurredAt,
		Type:         string(event.State),
		Headers:      amqp.Table{headerEventVersion: event.Version},
		Body:         body,
	})
}

// Close releases the channel and the connection.
func (publisher *Publisher) Close() error {
	if publisher.channel != nil {
		_ = publisher.channel.Close()
	}
	if publisher.conn != nil {
		return publisher.conn.Close()
	}
	return nil
}

// RoutingKey returns the topic routing key for an event.
func RoutingKey(event settlement.BookingEvent) string {
	return routingKeyPrefix + string(event.State)
}
