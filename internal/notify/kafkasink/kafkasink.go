// Package kafkasink publishes booking events to a Kafka topic keyed by booking id.
package kafkasink

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/IBM/sarama"

	"github.com/MarkoPoloResearchLab/settlement/pkg/settlement"
)

const (
	headerContentType = "content-type"
	headerEventState  = "booking-state"
	headerVersion     = "booking-version"
	contentTypeJSON   = "application/json"
)

// ErrMissingTopic is returned when no topic is configured.
var ErrMissingTopic = errors.New("kafka topic is required")

// Producer is a notify.Sink backed by a sarama sync producer.
type Producer struct {
	sync  sarama.SyncProducer
	topic string
}

// NewConfig returns the idempotent, all-replica-ack producer configuration.
func NewConfig() *sarama.Config {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Idempotent = true
	config.Producer.Return.Successes = true
	config.Net.MaxOpenRequests = 1
	return config
}

// New connects to brokers and publishes to topic.
func New(brokers []string, topic string) (*Producer, error) {
	sync, err := sarama.NewSyncProducer(brokers, NewConfig())
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return NewWithProducer(sync, topic)
}

// NewWithProducer wraps an existing producer.
func NewWithProducer(sync sarama.SyncProducer, topic string) (*Producer, error) {
	if topic == "" {
		return nil, ErrMissingTopic
	}
	return &Producer{sync: sync, topic: topic}, nil
}

func (producer *Producer) Name() string {
	return "kafka"
}

// Publish sends the event; the booking id key keeps one booking's events ordered.
func (producer *Producer) Publish(ctx context.Context, event settlement.BookingEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	message := &sarama.ProducerMessage{
		Topic: producer.topic,
		Key:   sarama.StringEncoder(event.BookingID),
		Value: sarama.ByteEncoder(payload),
		Headers: []sarama.RecordHeader{
			{Key: []byte(headerContentType), Value: []byte(contentTypeJSON)},
			{Key: []byte(headerEventState), Value: []byte(event.State)},
			{Key: []byte(headerVersion), Value: []byte(strconv.FormatInt(event.Version, 10))},
		},
		Timestamp: event.OccurredAt,
	}
	if _, _, err := producer.sync.SendMessage(message); err != nil {
		return fmt.Errorf("kafka send: %w", err)
	}
	return nil
}

// Close flushes and closes the producer.
func (producer *Producer) Close() error {
	if producer.sync == nil {
		return nil
	}
	return producer.sync.Close()
}
