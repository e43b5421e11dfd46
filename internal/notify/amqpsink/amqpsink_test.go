package amqpsink

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/MarkoPoloResearchLab/settlement/pkg/settlement"
)

type publishedMessage struct {
	exchange string
	key      string
	message  amqp.Publishing
}

type recordingChannel struct {
	published []publishedMessage
	err       error
	closed    bool
}

func (channel *recordingChannel) PublishWithContext(ctx context.Context, exchange string, key string, mandatory bool, immediate bool, msg amqp.Publishing) error {
	if channel.err != nil {
		return channel.err
	}
	channel.published = append(channel.published, publishedMessage{exchange: exchange, key: key, message: msg})
	return nil
}

func (channel *recordingChannel) Close() error {
	channel.closed = true
	return nil
}

func TestPublishRoutesByState(test *testing.T) {
	test.Parallel()
	recorder := &recordingChannel{}
	publisher := &Publisher{channel: recorder, exchange: "bookings"}
	occurredAt := time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)
	event := settlement.BookingEvent{
		BookingID:     "walk-1",
		PreviousState: settlement.StateHeld,
		State:         settlement.StateReleased,
		Version:       3,
		OccurredAt:    occurredAt,
	}
	if err := publisher.Publish(context.Background(), event); err != nil {
		test.Fatalf("publish: %v", err)
	}
	if len(recorder.published) != 1 {
		test.Fatalf("expected one message, got %d", len(recorder.published))
	}
	published := recorder.published[0]
	if published.exchange != "bookings" || published.key != "booking.released" {
		test.Fatalf("unexpected route %s/%s", published.exchange, published.key)
	}
	if published.message.MessageId != "walk-1:3" || published.message.ContentType != contentTypeJSON || !published.message.Timestamp.Equal(occurredAt) {
		test.Fatalf("unexpected message: %+v", published.message)
	}
	var decoded settlement.BookingEvent
	if err := json.Unmarshal(published.message.Body, &decoded); err != nil {
		test.Fatalf("decode body: %v", err)
	}
	if decoded.BookingID != "walk-1" || decoded.State != settlement.StateReleased {
		test.Fatalf("unexpected body: %+v", decoded)
	}
}

func TestPublishSurfacesChannelErrors(test *testing.T) {
	test.Parallel()
	channelErr := errors.New("channel closed")
	publisher := &Publisher{channel: &recordingChannel{err: channelErr}, exchange: "bookings"}
	if err := publisher.Publish(context.Background(), settlement.BookingEvent{BookingID: "walk-2"}); !errors.Is(err, channelErr) {
		test.Fatalf("expected channel error, got %v", err)
	}
}

func TestCloseWithoutConnection(test *testing.T) {
	test.Parallel()
	recorder := &recordingChannel{}
	publisher := &Publisher{channel: recorder}
	if err := publisher.Close(); err != nil {
		test.Fatalf("close: %v", err)
	}
	if !recorder.closed {
		test.Fatalf("expected channel to be closed")
	}
}
