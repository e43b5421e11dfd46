package receiptsink

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"

	"github.com/MarkoPoloResearchLab/settlement/internal/notify"
	"github.com/MarkoPoloResearchLab/settlement/pkg/pricing"
	"github.com/MarkoPoloResearchLab/settlement/pkg/settlement"
)

type storedObject struct {
	bucket  string
	payload []byte
	options minio.PutObjectOptions
}

type memoryObjectStore struct {
	buckets    map[string]bool
	objects    map[string]storedObject
	existsErrs []error
	madeCount  int
}

func newMemoryObjectStore() *memoryObjectStore {
	return &memoryObjectStore{buckets: make(map[string]bool), objects: make(map[string]storedObject)}
}

func (store *memoryObjectStore) BucketExists(ctx context.Context, bucketName string) (bool, error) {
	if len(store.existsErrs) > 0 {
		err := store.existsErrs[0]
		store.existsErrs = store.existsErrs[1:]
		return false, err
	}
	return store.buckets[bucketName], nil
}

func (store *memoryObjectStore) MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error {
	store.madeCount++
	store.buckets[bucketName] = true
	return nil
}

func (store *memoryObjectStore) PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	payload, err := io.ReadAll(reader)
	if err != nil {
		return minio.UploadInfo{}, err
	}
	store.objects[objectName] = storedObject{bucket: bucketName, payload: payload, options: opts}
	return minio.UploadInfo{Bucket: bucketName, Key: objectName, Size: objectSize}, nil
}

func releasedEvent() settlement.BookingEvent {
	return settlement.BookingEvent{
		BookingID:     "walk-1",
		Vertical:      settlement.VerticalWalk,
		ProviderID:    "provider-1",
		CustomerID:    "customer-1",
		PreviousState: settlement.StateHeld,
		State:         settlement.StateReleased,
		Pricing: pricing.Pricing{
			BaseAmount: 15000, CommissionAmount: 3000, TaxAmount: 540, TotalCharged: 18540, Currency: "usd",
		},
		Version:    3,
		OccurredAt: time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC),
	}
}

func TestPublishArchivesTerminalReceipt(test *testing.T) {
	test.Parallel()
	store := newMemoryObjectStore()
	archiver := &Archiver{bucket: "receipts", client: store}
	if err := archiver.Publish(context.Background(), releasedEvent()); err != nil {
		test.Fatalf("publish: %v", err)
	}
	object, ok := store.objects[ObjectKey("walk-1")]
	if !ok {
		test.Fatalf("receipt not stored: %+v", store.objects)
	}
	if object.bucket != "receipts" || object.options.ContentType != contentTypeJSON {
		test.Fatalf("unexpected object: %+v", object)
	}
	var receipt notify.Receipt
	if err := json.Unmarshal(object.payload, &receipt); err != nil {
		test.Fatalf("decode receipt: %v", err)
	}
	if receipt.ProviderPayout != 15000 || receipt.PlatformCommission != 3000 || receipt.PlatformTax != 540 || receipt.CustomerRefund != 0 {
		test.Fatalf("unexpected receipt: %+v", receipt)
	}
	if store.madeCount != 1 {
		test.Fatalf("expected bucket creation, got %d", store.madeCount)
	}
}

func TestPublishSkipsNonTerminalEvents(test *testing.T) {
	test.Parallel()
	store := newMemoryObjectStore()
	archiver := &Archiver{bucket: "receipts", client: store}
	event := releasedEvent()
	event.State = settlement.StateDisputed
	if err := archiver.Publish(context.Background(), event); err != nil {
		test.Fatalf("publish: %v", err)
	}
	if len(store.objects) != 0 || store.madeCount != 0 {
		test.Fatalf("expected no storage calls, got %+v", store.objects)
	}
}

func TestPublishRetriesBucketCheck(test *testing.T) {
	test.Parallel()
	store := newMemoryObjectStore()
	store.buckets["receipts"] = true
	store.existsErrs = []error{errors.New("connection refused")}
	archiver := &Archiver{bucket: "receipts", client: store}
	if err := archiver.Publish(context.Background(), releasedEvent()); err == nil {
		test.Fatalf("expected bucket check failure")
	}
	if err := archiver.Publish(context.Background(), releasedEvent()); err != nil {
		test.Fatalf("second publish: %v", err)
	}
	if store.madeCount != 0 {
		test.Fatalf("existing bucket must not be recreated")
	}
}

func TestObjectKeyEscapesBookingID(test *testing.T) {
	test.Parallel()
	if key := ObjectKey("walk/1"); key != "receipts/walk%2F1.json" {
		test.Fatalf("unexpected key %q", key)
	}
}

func TestNewRequiresEndpointAndBucket(test *testing.T) {
	test.Parallel()
	if _, err := New(Config{Bucket: "receipts"}); err == nil {
		test.Fatalf("expected endpoint error")
	}
	if _, err := New(Config{Endpoint: "localhost:9000"}); err == nil {
		test.Fatalf("expected bucket error")
	}
}
