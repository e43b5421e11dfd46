package gormstore

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	gosqlite "github.com/glebarez/go-sqlite"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/MarkoPoloResearchLab/settlement/pkg/pricing"
	"github.com/MarkoPoloResearchLab/settlement/pkg/settlement"
)

const (
	constraintBookingPrimary   = "bookings_pkey"
	constraintEntryIdempotency = "uniq_booking_entry_idem"
	defaultMetadataJSON        = "{}"
	pgUniqueViolationCode      = "23505"
	errorOperationStore        = "store"
	errorSubjectBooking        = "booking"
	errorSubjectEntry          = "entry"
	errorCodeDuplicate         = "duplicate"
	errorCodeGet               = "get"
	errorCodeInsert            = "insert"
	errorCodeInvalid           = "invalid"
	errorCodeList              = "list"
	errorCodeNotFound          = "not_found"
	errorCodeUpdate            = "update"
	errorCodeVersionMismatch   = "version_mismatch"
	errorCodePosition          = "position"
)

// Store implements settlement.Store using GORM.
type Store struct {
	db *gorm.DB
}

// New returns a Store backed by gorm.DB.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// WithTx executes fn within a transaction.
func (store *Store) WithTx(ctx context.Context, fn func(ctx context.Context, txStore settlement.Store) error) error {
	return store.db.WithContext(ctx).Transaction(func(transaction *gorm.DB) error {
		return fn(ctx, &Store{db: transaction})
	})
}

// InsertBooking stores a new booking row.
func (store *Store) InsertBooking(ctx context.Context, booking settlement.Booking) error {
	model, err := toBookingModel(booking)
	if err != nil {
		return wrapStoreError(errorSubjectBooking, errorCodeInvalid, err)
	}
	err = store.db.WithContext(ctx).Create(&model).Error
	if isUniqueViolation(err, constraintBookingPrimary) {
		return wrapStoreError(errorSubjectBooking, errorCodeDuplicate, settlement.ErrDuplicateBooking)
	}
	if err != nil {
		return wrapStoreError(errorSubjectBooking, errorCodeInsert, unavailable(err))
	}
	return nil
}

// GetBooking loads a booking by id.
func (store *Store) GetBooking(ctx context.Context, bookingID string) (settlement.Booking, error) {
	var model Booking
	err := store.db.WithContext(ctx).Where("booking_id = ?", bookingID).Take(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return settlement.Booking{}, wrapStoreError(errorSubjectBooking, errorCodeNotFound, settlement.ErrUnknownBooking)
		}
		return settlement.Booking{}, wrapStoreError(errorSubjectBooking, errorCodeGet, unavailable(err))
	}
	booking, err := fromBookingModel(model)
	if err != nil {
		return settlement.Booking{}, wrapStoreError(errorSubjectBooking, errorCodeInvalid, err)
	}
	return booking, nil
}

// UpdateBooking writes the booking when the stored version still equals expectedVersion.
func (store *Store) UpdateBooking(ctx context.Context, booking settlement.Booking, expectedVersion int64) error {
	model, err := toBookingModel(booking)
	if err != nil {
		return wrapStoreError(errorSubjectBooking, errorCodeInvalid, err)
	}
	result := store.db.WithContext(ctx).
		Model(&Booking{}).
		Where("booking_id = ? AND version = ?", model.BookingID, expectedVersion).
		Updates(map[string]interface{}{
			"state":              model.State,
			"pricing":            model.Pricing,
			"total_charged":      model.TotalCharged,
			"currency":           model.Currency,
			"service_start":      model.ServiceStart,
			"service_end":        model.ServiceEnd,
			"hold_expires_at":    model.HoldExpiresAt,
			"external_charge_id": model.ExternalChargeID,
			"dispute_reason":     model.DisputeReason,
			"intent":             model.Intent,
			"version":            model.Version,
			"updated_at":         model.UpdatedAt,
		})
	if result.Error != nil {
		return wrapStoreError(errorSubjectBooking, errorCodeUpdate, unavailable(result.Error))
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := store.db.WithContext(ctx).Model(&Booking{}).Where("booking_id = ?", model.BookingID).Count(&count).Error; err != nil {
			return wrapStoreError(errorSubjectBooking, errorCodeUpdate, unavailable(err))
		}
		if count == 0 {
			return wrapStoreError(errorSubjectBooking, errorCodeNotFound, settlement.ErrUnknownBooking)
		}
		return wrapStoreError(errorSubjectBooking, errorCodeVersionMismatch, settlement.ErrConflict)
	}
	return nil
}

// InsertEntry appends an entry after the booking's existing ones.
func (store *Store) InsertEntry(ctx context.Context, entry settlement.LedgerEntry) error {
	var position int64
	err := store.db.WithContext(ctx).Model(&BookingEntry{}).Where("booking_id = ?", entry.BookingID).Count(&position).Error
	if err != nil {
		return wrapStoreError(errorSubjectEntry, errorCodePosition, unavailable(err))
	}
	model := BookingEntry{
		EntryID:        entry.EntryID,
		BookingID:      entry.BookingID,
		Position:       position,
		Type:           string(entry.Type),
		Amount:         entry.Amount,
		CounterpartyID: entry.CounterpartyID,
		IdempotencyKey: entry.IdempotencyKey,
		Metadata:       datatypesJSON(entry.MetadataJSON),
		CreatedAt:      entry.CreatedAt.UTC(),
	}
	if model.CreatedAt.IsZero() {
		model.CreatedAt = time.Now().UTC()
	}
	err = store.db.WithContext(ctx).Create(&model).Error
	if isUniqueViolation(err, constraintEntryIdempotency) {
		return wrapStoreError(errorSubjectEntry, errorCodeDuplicate, settlement.ErrDuplicateEntry)
	}
	if err != nil {
		return wrapStoreError(errorSubjectEntry, errorCodeInsert, unavailable(err))
	}
	return nil
}

// ListBookings returns bookings matching filter ordered by creation time.
func (store *Store) ListBookings(ctx context.Context, filter settlement.BookingFilter) ([]settlement.Booking, error) {
	query := store.db.WithContext(ctx).Model(&Booking{})
	if filter.ProviderID != "" {
		query = query.Where("provider_id = ?", filter.ProviderID)
	}
	if len(filter.States) > 0 {
		query = query.Where("state IN ?", filter.StateStrings())
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	var rows []Booking
	if err := query.Order("created_at ASC").Order("booking_id ASC").Find(&rows).Error; err != nil {
		return nil, wrapStoreError(errorSubjectBooking, errorCodeList, unavailable(err))
	}
	bookings := make([]settlement.Booking, 0, len(rows))
	for _, row := range rows {
		booking, err := fromBookingModel(row)
		if err != nil {
			return nil, wrapStoreError(errorSubjectBooking, errorCodeInvalid, err)
		}
		bookings = append(bookings, booking)
	}
	return bookings, nil
}

// ListEntries returns a booking's entries in insertion order.
func (store *Store) ListEntries(ctx context.Context, bookingID string) ([]settlement.LedgerEntry, error) {
	var rows []BookingEntry
	err := store.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("position ASC").
		Find(&rows).Error
	if err != nil {
		return nil, wrapStoreError(errorSubjectEntry, errorCodeList, unavailable(err))
	}
	entries := make([]settlement.LedgerEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, settlement.LedgerEntry{
			EntryID:        row.EntryID,
			BookingID:      row.BookingID,
			Type:           settlement.EntryType(row.Type),
			Amount:         row.Amount,
			CounterpartyID: row.CounterpartyID,
			IdempotencyKey: row.IdempotencyKey,
			MetadataJSON:   string(row.Metadata),
			CreatedAt:      row.CreatedAt.UTC(),
		})
	}
	return entries, nil
}

func wrapStoreError(subject string, code string, err error) error {
	return settlement.WrapError(errorOperationStore, subject, code, err)
}

func unavailable(err error) error {
	return errors.Join(settlement.ErrLedgerUnavailable, err)
}

func toBookingModel(booking settlement.Booking) (Booking, error) {
	encodedPricing, err := json.Marshal(booking.Pricing)
	if err != nil {
		return Booking{}, err
	}
	return Booking{
		BookingID:        booking.ID,
		Vertical:         string(booking.Vertical),
		ProviderID:       booking.ProviderID,
		CustomerID:       booking.CustomerID,
		State:            string(booking.State),
		Pricing:          datatypes.JSON(encodedPricing),
		TotalCharged:     booking.Pricing.TotalCharged,
		Currency:         booking.Pricing.Currency,
		ServiceStart:     utcPointer(booking.ServiceStart),
		ServiceEnd:       utcPointer(booking.ServiceEnd),
		HoldExpiresAt:    utcPointer(booking.HoldExpiresAt),
		ExternalChargeID: booking.ExternalChargeID,
		DisputeReason:    booking.DisputeReason,
		Intent:           string(booking.Intent),
		Version:          booking.Version,
		CreatedAt:        booking.CreatedAt.UTC(),
		UpdatedAt:        booking.UpdatedAt.UTC(),
	}, nil
}

func fromBookingModel(model Booking) (settlement.Booking, error) {
	var quoted pricing.Pricing
	if err := json.Unmarshal(model.Pricing, &quoted); err != nil {
		return settlement.Booking{}, err
	}
	vertical, err := settlement.ParseVertical(model.Vertical)
	if err != nil {
		return settlement.Booking{}, err
	}
	state, err := settlement.ParseState(model.State)
	if err != nil {
		return settlement.Booking{}, err
	}
	return settlement.Booking{
		ID:               model.BookingID,
		Vertical:         vertical,
		ProviderID:       model.ProviderID,
		CustomerID:       model.CustomerID,
		Pricing:          quoted,
		State:            state,
		ServiceStart:     utcPointer(model.ServiceStart),
		ServiceEnd:       utcPointer(model.ServiceEnd),
		HoldExpiresAt:    utcPointer(model.HoldExpiresAt),
		ExternalChargeID: model.ExternalChargeID,
		DisputeReason:    model.DisputeReason,
		Intent:           settlement.SettlementIntent(model.Intent),
		CreatedAt:        model.CreatedAt.UTC(),
		UpdatedAt:        model.UpdatedAt.UTC(),
		Version:          model.Version,
	}, nil
}

func utcPointer(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	converted := value.UTC()
	return &converted
}

func datatypesJSON(raw string) datatypes.JSON {
	if raw == "" {
		return datatypes.JSON([]byte(defaultMetadataJSON))
	}
	return datatypes.JSON([]byte(raw))
}

func isUniqueViolation(err error, constraint string) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolationCode && pgErr.ConstraintName == constraint
	}
	var sqliteErr *gosqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		}
	}
	return false
}
