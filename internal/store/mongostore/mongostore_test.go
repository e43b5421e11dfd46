package mongostore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/MarkoPoloResearchLab/settlement/pkg/pricing"
	"github.com/MarkoPoloResearchLab/settlement/pkg/settlement"
)

const mongoURIEnv = "SETTLEMENT_TEST_MONGO_URI"

func sampleBooking(bookingID string, createdAt time.Time) settlement.Booking {
	return settlement.Booking{
		ID:         bookingID,
		Vertical:   settlement.VerticalSitting,
		ProviderID: "provider-1",
		CustomerID: "customer-1",
		Pricing: pricing.Pricing{
			BaseRatePerUnit: 10000, Units: "1.5", BaseAmount: 15000,
			CommissionRate: "20", CommissionAmount: 3000, TaxRate: "18", TaxAmount: 540,
			TotalCharged: 18540, Currency: "usd",
		},
		State:     settlement.StatePendingPayment,
		Version:   1,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

func TestDocumentRoundTripKeepsNanoseconds(test *testing.T) {
	test.Parallel()
	createdAt := time.Date(2026, 3, 1, 12, 0, 0, 123456789, time.UTC)
	holdExpiresAt := createdAt.Add(72 * time.Hour)
	booking := sampleBooking("sit-1", createdAt)
	booking.State = settlement.StateHeld
	booking.HoldExpiresAt = &holdExpiresAt
	booking.Intent = settlement.IntentRelease

	restored, err := newBookingDocument(booking).toBooking()
	if err != nil {
		test.Fatalf("to booking: %v", err)
	}
	if restored.HoldExpiresAt == nil || !restored.HoldExpiresAt.Equal(holdExpiresAt) {
		test.Fatalf("hold expiry lost precision: %v", restored.HoldExpiresAt)
	}
	if restored.ServiceStart != nil || restored.ServiceEnd != nil {
		test.Fatalf("expected unset service times, got %+v", restored)
	}
	if restored.Pricing != booking.Pricing || restored.Intent != settlement.IntentRelease || !restored.CreatedAt.Equal(createdAt) {
		test.Fatalf("unexpected booking: %+v", restored)
	}
}

func TestDocumentRejectsUnknownState(test *testing.T) {
	test.Parallel()
	document := newBookingDocument(sampleBooking("sit-2", time.Now()))
	document.State = "archived"
	if _, err := document.toBooking(); !errors.Is(err, settlement.ErrInvalidState) {
		test.Fatalf("expected ErrInvalidState, got %v", err)
	}
}

func TestTxStoreStagesWrites(test *testing.T) {
	test.Parallel()
	ctx := context.Background()
	createdAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	transaction := newTxStore(&Store{})
	booking := sampleBooking("sit-3", createdAt)
	if err := transaction.InsertBooking(ctx, booking); err != nil {
		test.Fatalf("insert: %v", err)
	}
	if err := transaction.InsertBooking(ctx, booking); !errors.Is(err, settlement.ErrDuplicateBooking) {
		test.Fatalf("expected duplicate booking, got %v", err)
	}

	held := booking
	held.State = settlement.StateHeld
	held.Version = 2
	if err := transaction.UpdateBooking(ctx, held, 5); !errors.Is(err, settlement.ErrConflict) {
		test.Fatalf("expected conflict, got %v", err)
	}
	if err := transaction.UpdateBooking(ctx, held, 1); err != nil {
		test.Fatalf("update: %v", err)
	}
	entry := settlement.LedgerEntry{
		EntryID:        "entry-1",
		BookingID:      booking.ID,
		Type:           settlement.EntryCharge,
		Amount:         18540,
		CounterpartyID: "customer-1",
		IdempotencyKey: "sit-3:charge",
		CreatedAt:      createdAt,
	}
	if err := transaction.InsertEntry(ctx, entry); err != nil {
		test.Fatalf("entry: %v", err)
	}
	if err := transaction.InsertEntry(ctx, entry); !errors.Is(err, settlement.ErrDuplicateEntry) {
		test.Fatalf("expected duplicate entry, got %v", err)
	}

	loaded, err := transaction.GetBooking(ctx, booking.ID)
	if err != nil {
		test.Fatalf("get: %v", err)
	}
	if loaded.State != settlement.StateHeld || loaded.Version != 2 {
		test.Fatalf("unexpected staged booking: %+v", loaded)
	}
	entries, err := transaction.ListEntries(ctx, booking.ID)
	if err != nil {
		test.Fatalf("entries: %v", err)
	}
	if len(entries) != 1 || entries[0].MetadataJSON != defaultMetadataJSON || entries[0].BookingID != booking.ID {
		test.Fatalf("unexpected staged entries: %+v", entries)
	}
}

func TestStoreAgainstMongo(test *testing.T) {
	uri := os.Getenv(mongoURIEnv)
	if uri == "" {
		test.Skipf("%s not set", mongoURIEnv)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		test.Fatalf("connect: %v", err)
	}
	test.Cleanup(func() { _ = client.Disconnect(context.Background()) })
	database := client.Database(fmt.Sprintf("settlement_test_%d", time.Now().UnixNano()))
	test.Cleanup(func() { _ = database.Drop(context.Background()) })

	store := New(database)
	if err := store.EnsureIndexes(ctx); err != nil {
		test.Fatalf("indexes: %v", err)
	}
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ledger, err := settlement.NewLedger(store, func() time.Time { return now })
	if err != nil {
		test.Fatalf("ledger: %v", err)
	}
	created, err := ledger.Create(ctx, sampleBooking("sit-live", now))
	if err != nil {
		test.Fatalf("create: %v", err)
	}
	if _, err := ledger.Create(ctx, sampleBooking("sit-live", now)); !errors.Is(err, settlement.ErrDuplicateBooking) {
		test.Fatalf("expected duplicate booking, got %v", err)
	}
	holdExpiresAt := now.Add(72 * time.Hour)
	held, err := ledger.Transition(ctx, created.ID, created.Version, settlement.StateHeld,
		settlement.TransitionFields{HoldExpiresAt: &holdExpiresAt, ExternalChargeID: "ch_1"},
		[]settlement.LedgerEntry{{Type: settlement.EntryCharge, Amount: 18540, CounterpartyID: "customer-1"}},
	)
	if err != nil {
		test.Fatalf("transition: %v", err)
	}
	if _, err := ledger.Transition(ctx, created.ID, created.Version, settlement.StateHeld, settlement.TransitionFields{}, nil); !errors.Is(err, settlement.ErrConflict) {
		test.Fatalf("expected conflict, got %v", err)
	}
	bookings, err := ledger.ListHeld(ctx)
	if err != nil {
		test.Fatalf("list: %v", err)
	}
	if len(bookings) != 1 || bookings[0].Version != held.Version {
		test.Fatalf("unexpected held bookings: %+v", bookings)
	}
	entries, err := ledger.ListEntries(ctx, created.ID)
	if err != nil {
		test.Fatalf("entries: %v", err)
	}
	if settlement.SumEntries(entries) != 18540 {
		test.Fatalf("unexpected entries: %+v", entries)
	}
}
