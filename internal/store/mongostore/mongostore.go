// Package mongostore persists bookings as MongoDB documents with their
// ledger entries embedded. A transaction stages writes per booking and
// commits each one as a single version-filtered update.
package mongostore

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/MarkoPoloResearchLab/settlement/pkg/settlement"
)

const (
	// CollectionName is the collection holding booking documents.
	CollectionName           = "bookings"
	defaultMetadataJSON      = "{}"
	fieldID                  = "_id"
	fieldVersion             = "version"
	fieldState               = "state"
	fieldProviderID          = "provider_id"
	fieldCreatedAt           = "created_at"
	fieldEntries             = "entries"
	fieldEntryKey            = "entries.idempotency_key"
	fieldHoldExpiresAt       = "hold_expires_at"
	errorOperationStore      = "store"
	errorSubjectBooking      = "booking"
	errorSubjectEntry        = "entry"
	errorSubjectSchema       = "schema"
	errorSubjectTransaction  = "transaction"
	errorCodeCommit          = "commit"
	errorCodeDuplicate       = "duplicate"
	errorCodeGet             = "get"
	errorCodeIndex           = "index"
	errorCodeInsert          = "insert"
	errorCodeInvalid         = "invalid"
	errorCodeList            = "list"
	errorCodeNotFound        = "not_found"
	errorCodeUpdate          = "update"
	errorCodeVersionMismatch = "version_mismatch"
)

// Store implements settlement.Store over a MongoDB collection.
type Store struct {
	collection *mongo.Collection
}

// New returns a Store using the bookings collection of database.
func New(database *mongo.Database) *Store {
	return &Store{collection: database.Collection(CollectionName)}
}

// EnsureIndexes creates the secondary indexes used by list queries.
func (store *Store) EnsureIndexes(ctx context.Context) error {
	models := []mongo.IndexModel{
		{Keys: bson.D{{Key: fieldProviderID, Value: 1}, {Key: fieldState, Value: 1}}},
		{Keys: bson.D{{Key: fieldState, Value: 1}, {Key: fieldHoldExpiresAt, Value: 1}}},
	}
	if _, err := store.collection.Indexes().CreateMany(ctx, models); err != nil {
		return wrapStoreError(errorSubjectSchema, errorCodeIndex, unavailable(err))
	}
	return nil
}

// WithTx stages every write made by fn and commits them when fn succeeds.
func (store *Store) WithTx(ctx context.Context, fn func(ctx context.Context, txStore settlement.Store) error) error {
	transaction := newTxStore(store)
	if err := fn(ctx, transaction); err != nil {
		return err
	}
	return transaction.commit(ctx)
}

func (store *Store) InsertBooking(ctx context.Context, booking settlement.Booking) error {
	_, err := store.collection.InsertOne(ctx, newBookingDocument(booking))
	if mongo.IsDuplicateKeyError(err) {
		return wrapStoreError(errorSubjectBooking, errorCodeDuplicate, settlement.ErrDuplicateBooking)
	}
	if err != nil {
		return wrapStoreError(errorSubjectBooking, errorCodeInsert, unavailable(err))
	}
	return nil
}

func (store *Store) GetBooking(ctx context.Context, bookingID string) (settlement.Booking, error) {
	document, err := store.findDocument(ctx, bookingID)
	if err != nil {
		return settlement.Booking{}, err
	}
	booking, err := document.toBooking()
	if err != nil {
		return settlement.Booking{}, wrapStoreError(errorSubjectBooking, errorCodeInvalid, err)
	}
	return booking, nil
}

func (store *Store) UpdateBooking(ctx context.Context, booking settlement.Booking, expectedVersion int64) error {
	result, err := store.collection.UpdateOne(ctx,
		bson.M{fieldID: booking.ID, fieldVersion: expectedVersion},
		bson.M{"$set": bookingFields(newBookingDocument(booking))},
	)
	if err != nil {
		return wrapStoreError(errorSubjectBooking, errorCodeUpdate, unavailable(err))
	}
	if result.MatchedCount == 0 {
		return store.missingOrConflict(ctx, booking.ID)
	}
	return nil
}

func (store *Store) InsertEntry(ctx context.Context, entry settlement.LedgerEntry) error {
	result, err := store.collection.UpdateOne(ctx,
		bson.M{fieldID: entry.BookingID, fieldEntryKey: bson.M{"$ne": entry.IdempotencyKey}},
		bson.M{"$push": bson.M{fieldEntries: newEntryDocument(entry)}},
	)
	if err != nil {
		return wrapStoreError(errorSubjectEntry, errorCodeInsert, unavailable(err))
	}
	if result.MatchedCount > 0 {
		return nil
	}
	if _, err := store.findDocument(ctx, entry.BookingID); err != nil {
		return err
	}
	return wrapStoreError(errorSubjectEntry, errorCodeDuplicate, settlement.ErrDuplicateEntry)
}

func (store *Store) ListBookings(ctx context.Context, filter settlement.BookingFilter) ([]settlement.Booking, error) {
	query := bson.M{}
	if filter.ProviderID != "" {
		query[fieldProviderID] = filter.ProviderID
	}
	if len(filter.States) > 0 {
		query[fieldState] = bson.M{"$in": filter.StateStrings()}
	}
	findOptions := options.Find().
		SetSort(bson.D{{Key: fieldCreatedAt, Value: 1}, {Key: fieldID, Value: 1}}).
		SetProjection(bson.M{fieldEntries: 0})
	if filter.Limit > 0 {
		findOptions.SetLimit(int64(filter.Limit))
	}
	cursor, err := store.collection.Find(ctx, query, findOptions)
	if err != nil {
		return nil, wrapStoreError(errorSubjectBooking, errorCodeList, unavailable(err))
	}
	var documents []bookingDocument
	if err := cursor.All(ctx, &documents); err != nil {
		return nil, wrapStoreError(errorSubjectBooking, errorCodeList, unavailable(err))
	}
	bookings := make([]settlement.Booking, 0, len(documents))
	for _, document := range documents {
		booking, err := document.toBooking()
		if err != nil {
			return nil, wrapStoreError(errorSubjectBooking, errorCodeInvalid, err)
		}
		bookings = append(bookings, booking)
	}
	return bookings, nil
}

func (store *Store) ListEntries(ctx context.Context, bookingID string) ([]settlement.LedgerEntry, error) {
	document, err := store.findDocument(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	return document.ledgerEntries(), nil
}

func (store *Store) findDocument(ctx context.Context, bookingID string) (bookingDocument, error) {
	var document bookingDocument
	err := store.collection.FindOne(ctx, bson.M{fieldID: bookingID}).Decode(&document)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return bookingDocument{}, wrapStoreError(errorSubjectBooking, errorCodeNotFound, settlement.ErrUnknownBooking)
	}
	if err != nil {
		return bookingDocument{}, wrapStoreError(errorSubjectBooking, errorCodeGet, unavailable(err))
	}
	return document, nil
}

func (store *Store) missingOrConflict(ctx context.Context, bookingID string) error {
	count, err := store.collection.CountDocuments(ctx, bson.M{fieldID: bookingID})
	if err != nil {
		return wrapStoreError(errorSubjectBooking, errorCodeUpdate, unavailable(err))
	}
	if count == 0 {
		return wrapStoreError(errorSubjectBooking, errorCodeNotFound, settlement.ErrUnknownBooking)
	}
	return wrapStoreError(errorSubjectBooking, errorCodeVersionMismatch, settlement.ErrConflict)
}

type stagedBooking struct {
	document    bookingDocument
	baseVersion int64
	inserted    bool
	updated     bool
	newEntries  []entryDocument
}

type txStore struct {
	store  *Store
	staged map[string]*stagedBooking
	order  []string
}

func newTxStore(store *Store) *txStore {
	return &txStore{store: store, staged: make(map[string]*stagedBooking)}
}

func (transaction *txStore) WithTx(ctx context.Context, fn func(ctx context.Context, txStore settlement.Store) error) error {
	return fn(ctx, transaction)
}

func (transaction *txStore) load(ctx context.Context, bookingID string) (*stagedBooking, error) {
	if staged, ok := transaction.staged[bookingID]; ok {
		return staged, nil
	}
	document, err := transaction.store.findDocument(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	staged := &stagedBooking{document: document, baseVersion: document.Version}
	transaction.stage(bookingID, staged)
	return staged, nil
}

func (transaction *txStore) stage(bookingID string, staged *stagedBooking) {
	transaction.staged[bookingID] = staged
	transaction.order = append(transaction.order, bookingID)
}

func (transaction *txStore) InsertBooking(ctx context.Context, booking settlement.Booking) error {
	if _, ok := transaction.staged[booking.ID]; ok {
		return wrapStoreError(errorSubjectBooking, errorCodeDuplicate, settlement.ErrDuplicateBooking)
	}
	transaction.stage(booking.ID, &stagedBooking{document: newBookingDocument(booking), inserted: true})
	return nil
}

func (transaction *txStore) GetBooking(ctx context.Context, bookingID string) (settlement.Booking, error) {
	staged, err := transaction.load(ctx, bookingID)
	if err != nil {
		return settlement.Booking{}, err
	}
	booking, err := staged.document.toBooking()
	if err != nil {
		return settlement.Booking{}, wrapStoreError(errorSubjectBooking, errorCodeInvalid, err)
	}
	return booking, nil
}

func (transaction *txStore) UpdateBooking(ctx context.Context, booking settlement.Booking, expectedVersion int64) error {
	staged, err := transaction.load(ctx, booking.ID)
	if err != nil {
		return err
	}
	if staged.document.Version != expectedVersion {
		return wrapStoreError(errorSubjectBooking, errorCodeVersionMismatch, settlement.ErrConflict)
	}
	entries := staged.document.Entries
	staged.document = newBookingDocument(booking)
	staged.document.Entries = entries
	staged.updated = true
	return nil
}

func (transaction *txStore) InsertEntry(ctx context.Context, entry settlement.LedgerEntry) error {
	staged, err := transaction.load(ctx, entry.BookingID)
	if err != nil {
		return err
	}
	if staged.document.hasEntryKey(entry.IdempotencyKey) {
		return wrapStoreError(errorSubjectEntry, errorCodeDuplicate, settlement.ErrDuplicateEntry)
	}
	document := newEntryDocument(entry)
	staged.document.Entries = append(staged.document.Entries, document)
	staged.newEntries = append(staged.newEntries, document)
	return nil
}

func (transaction *txStore) ListBookings(ctx context.Context, filter settlement.BookingFilter) ([]settlement.Booking, error) {
	return transaction.store.ListBookings(ctx, filter)
}

func (transaction *txStore) ListEntries(ctx context.Context, bookingID string) ([]settlement.LedgerEntry, error) {
	staged, err := transaction.load(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	return staged.document.ledgerEntries(), nil
}

func (transaction *txStore) commit(ctx context.Context) error {
	for _, bookingID := range transaction.order {
		staged := transaction.staged[bookingID]
		switch {
		case staged.inserted:
			if _, err := transaction.store.collection.InsertOne(ctx, staged.document); err != nil {
				if mongo.IsDuplicateKeyError(err) {
					return wrapStoreError(errorSubjectBooking, errorCodeDuplicate, settlement.ErrDuplicateBooking)
				}
				return wrapStoreError(errorSubjectTransaction, errorCodeCommit, unavailable(err))
			}
		case staged.updated || len(staged.newEntries) > 0:
			if err := transaction.commitUpdate(ctx, staged); err != nil {
				return err
			}
		}
	}
	return nil
}

func (transaction *txStore) commitUpdate(ctx context.Context, staged *stagedBooking) error {
	update := bson.M{"$set": bookingFields(staged.document)}
	if len(staged.newEntries) > 0 {
		update["$push"] = bson.M{fieldEntries: bson.M{"$each": staged.newEntries}}
	}
	result, err := transaction.store.collection.UpdateOne(ctx,
		bson.M{fieldID: staged.document.ID, fieldVersion: staged.baseVersion},
		update,
	)
	if err != nil {
		return wrapStoreError(errorSubjectTransaction, errorCodeCommit, unavailable(err))
	}
	if result.MatchedCount == 0 {
		return transaction.store.missingOrConflict(ctx, staged.document.ID)
	}
	return nil
}

// bookingFields returns the mutable booking attributes as a $set document.
func bookingFields(document bookingDocument) bson.M {
	return bson.M{
		fieldState:           document.State,
		"service_start":      document.ServiceStart,
		"service_end":        document.ServiceEnd,
		fieldHoldExpiresAt:   document.HoldExpiresAt,
		"external_charge_id": document.ExternalChargeID,
		"dispute_reason":     document.DisputeReason,
		"intent":             document.Intent,
		fieldVersion:         document.Version,
		"updated_at":         document.UpdatedAt,
	}
}

func wrapStoreError(subject string, code string, err error) error {
	return settlement.WrapError(errorOperationStore, subject, code, err)
}

func unavailable(err error) error {
	return errors.Join(settlement.ErrLedgerUnavailable, err)
}
