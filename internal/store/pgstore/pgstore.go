package pgstore

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MarkoPoloResearchLab/settlement/pkg/pricing"
	"github.com/MarkoPoloResearchLab/settlement/pkg/settlement"
)

const (
	constraintBookingPrimary   = "bookings_pkey"
	constraintEntryIdempotency = "uniq_booking_entry_idem"
	pgUniqueViolationCode      = "23505"
	errorOperationStore        = "store"
	errorSubjectBooking        = "booking"
	errorSubjectEntry          = "entry"
	errorSubjectSchema         = "schema"
	errorSubjectTransaction    = "transaction"
	errorCodeBegin             = "begin"
	errorCodeCommit            = "commit"
	errorCodeDuplicate         = "duplicate"
	errorCodeGet               = "get"
	errorCodeInsert            = "insert"
	errorCodeInvalid           = "invalid"
	errorCodeList              = "list"
	errorCodeMigrate           = "migrate"
	errorCodeNotFound          = "not_found"
	errorCodeUpdate            = "update"
	errorCodeVersionMismatch   = "version_mismatch"

	// Schema is the DDL for the settlement tables.
	Schema = `
		create table if not exists bookings (
			booking_id text primary key,
			vertical text not null,
			provider_id text not null,
			customer_id text not null,
			state text not null,
			pricing jsonb not null,
			total_charged bigint not null,
			currency char(3) not null,
			service_start timestamptz,
			service_end timestamptz,
			hold_expires_at timestamptz,
			external_charge_id text not null default '',
			dispute_reason text not null default '',
			intent text not null default '',
			version bigint not null,
			created_at timestamptz not null,
			updated_at timestamptz not null
		);
		create index if not exists idx_bookings_provider_state on bookings(provider_id, state);
		create index if not exists idx_bookings_state on bookings(state);
		create table if not exists booking_entries (
			entry_id uuid primary key,
			booking_id text not null references bookings(booking_id),
			position bigserial,
			type text not null,
			amount bigint not null,
			counterparty_id text not null,
			idempotency_key text not null,
			metadata jsonb not null default '{}'::jsonb,
			created_at timestamptz not null,
			constraint uniq_booking_entry_idem unique (booking_id, idempotency_key)
		);
		create index if not exists idx_booking_entries_booking on booking_entries(booking_id, position);
	`

	sqlBookingColumns = `
		booking_id, vertical, provider_id, customer_id, state, pricing::text,
		service_start, service_end, hold_expires_at, external_charge_id,
		dispute_reason, intent, version, created_at, updated_at
	`

	sqlInsertBooking = `
		insert into bookings(
			booking_id, vertical, provider_id, customer_id, state, pricing, total_charged, currency,
			service_start, service_end, hold_expires_at, external_charge_id, dispute_reason, intent,
			version, created_at, updated_at
		)
		values ($1, $2, $3, $4, $5, $6::jsonb, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`

	sqlSelectBooking = `select ` + sqlBookingColumns + ` from bookings where booking_id = $1`

	sqlUpdateBooking = `
		update bookings
		set state = $3, service_start = $4, service_end = $5, hold_expires_at = $6,
			external_charge_id = $7, dispute_reason = $8, intent = $9, version = $10, updated_at = $11
		where booking_id = $1 and version = $2
	`

	sqlBookingExists = `select exists(select 1 from bookings where booking_id = $1)`

	sqlListBookings = `
		select ` + sqlBookingColumns + `
		from bookings
		where ($1 = '' or provider_id = $1) and (cardinality($2::text[]) = 0 or state = any($2::text[]))
		order by created_at asc, booking_id asc
		limit nullif($3, 0)
	`

	sqlInsertEntry = `
		insert into booking_entries(
			entry_id, booking_id, type, amount, counterparty_id, idempotency_key, metadata, created_at
		)
		values ($1, $2, $3, $4, $5, $6, coalesce(nullif($7,''),'{}')::jsonb, $8)
	`

	sqlListEntries = `
		select entry_id::text, booking_id, type, amount, counterparty_id, idempotency_key,
			coalesce(metadata::text,'{}'), created_at
		from booking_entries
		where booking_id = $1
		order by position asc
	`
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store implements settlement.Store using a pgx connection pool (autocommit).
type Store struct {
	pool *pgxpool.Pool
	db   querier
}

// TxStore implements settlement.Store for an active transaction.
type TxStore struct {
	tx pgx.Tx
	db querier
}

// New returns a Store backed by a pgx pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool, db: pool}
}

// EnsureSchema creates the settlement tables when they are missing.
func (store *Store) EnsureSchema(ctx context.Context) error {
	if _, err := store.pool.Exec(ctx, Schema); err != nil {
		return wrapStoreError(errorSubjectSchema, errorCodeMigrate, err)
	}
	return nil
}

// WithTx executes fn within BEGIN ... COMMIT, rolling back on error.
func (store *Store) WithTx(ctx context.Context, fn func(ctx context.Context, txStore settlement.Store) error) error {
	tx, err := store.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return wrapStoreError(errorSubjectTransaction, errorCodeBegin, unavailable(err))
	}
	transactionStore := &TxStore{tx: tx, db: tx}
	if err := fn(ctx, transactionStore); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return wrapStoreError(errorSubjectTransaction, errorCodeCommit, unavailable(err))
	}
	return nil
}

func (store *Store) InsertBooking(ctx context.Context, booking settlement.Booking) error {
	return insertBooking(ctx, store.db, booking)
}

func (store *Store) GetBooking(ctx context.Context, bookingID string) (settlement.Booking, error) {
	return getBooking(ctx, store.db, bookingID)
}

func (store *Store) UpdateBooking(ctx context.Context, booking settlement.Booking, expectedVersion int64) error {
	return updateBooking(ctx, store.db, booking, expectedVersion)
}

func (store *Store) InsertEntry(ctx context.Context, entry settlement.LedgerEntry) error {
	return insertEntry(ctx, store.db, entry)
}

func (store *Store) ListBookings(ctx context.Context, filter settlement.BookingFilter) ([]settlement.Booking, error) {
	return listBookings(ctx, store.db, filter)
}

func (store *Store) ListEntries(ctx context.Context, bookingID string) ([]settlement.LedgerEntry, error) {
	return listEntries(ctx, store.db, bookingID)
}

func (store *TxStore) WithTx(ctx context.Context, fn func(ctx context.Context, txStore settlement.Store) error) error {
	return fn(ctx, store)
}

func (store *TxStore) InsertBooking(ctx context.Context, booking settlement.Booking) error {
	return insertBooking(ctx, store.db, booking)
}

func (store *TxStore) GetBooking(ctx context.Context, bookingID string) (settlement.Booking, error) {
	return getBooking(ctx, store.db, bookingID)
}

func (store *TxStore) UpdateBooking(ctx context.Context, booking settlement.Booking, expectedVersion int64) error {
	return updateBooking(ctx, store.db, booking, expectedVersion)
}

func (store *TxStore) InsertEntry(ctx context.Context, entry settlement.LedgerEntry) error {
	return insertEntry(ctx, store.db, entry)
}

func (store *TxStore) ListBookings(ctx context.Context, filter settlement.BookingFilter) ([]settlement.Booking, error) {
	return listBookings(ctx, store.db, filter)
}

func (store *TxStore) ListEntries(ctx context.Context, bookingID string) ([]settlement.LedgerEntry, error) {
	return listEntries(ctx, store.db, bookingID)
}

func insertBooking(ctx context.Context, db querier, booking settlement.Booking) error {
	encodedPricing, err := json.Marshal(booking.Pricing)
	if err != nil {
		return wrapStoreError(errorSubjectBooking, errorCodeInvalid, err)
	}
	_, err = db.Exec(ctx, sqlInsertBooking,
		booking.ID,
		string(booking.Vertical),
		booking.ProviderID,
		booking.CustomerID,
		string(booking.State),
		string(encodedPricing),
		booking.Pricing.TotalCharged,
		booking.Pricing.Currency,
		booking.ServiceStart,
		booking.ServiceEnd,
		booking.HoldExpiresAt,
		booking.ExternalChargeID,
		booking.DisputeReason,
		string(booking.Intent),
		booking.Version,
		booking.CreatedAt.UTC(),
		booking.UpdatedAt.UTC(),
	)
	if isUniqueViolation(err, constraintBookingPrimary) {
		return wrapStoreError(errorSubjectBooking, errorCodeDuplicate, settlement.ErrDuplicateBooking)
	}
	if err != nil {
		return wrapStoreError(errorSubjectBooking, errorCodeInsert, unavailable(err))
	}
	return nil
}

func getBooking(ctx context.Context, db querier, bookingID string) (settlement.Booking, error) {
	booking, err := scanBooking(db.QueryRow(ctx, sqlSelectBooking, bookingID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return settlement.Booking{}, wrapStoreError(errorSubjectBooking, errorCodeNotFound, settlement.ErrUnknownBooking)
		}
		return settlement.Booking{}, wrapStoreError(errorSubjectBooking, errorCodeGet, unavailable(err))
	}
	return booking, nil
}

func updateBooking(ctx context.Context, db querier, booking settlement.Booking, expectedVersion int64) error {
	tag, err := db.Exec(ctx, sqlUpdateBooking,
		booking.ID,
		expectedVersion,
		string(booking.State),
		booking.ServiceStart,
		booking.ServiceEnd,
		booking.HoldExpiresAt,
		booking.ExternalChargeID,
		booking.DisputeReason,
		string(booking.Intent),
		booking.Version,
		booking.UpdatedAt.UTC(),
	)
	if err != nil {
		return wrapStoreError(errorSubjectBooking, errorCodeUpdate, unavailable(err))
	}
	if tag.RowsAffected() > 0 {
		return nil
	}
	var exists bool
	if err := db.QueryRow(ctx, sqlBookingExists, booking.ID).Scan(&exists); err != nil {
		return wrapStoreError(errorSubjectBooking, errorCodeUpdate, unavailable(err))
	}
	if !exists {
		return wrapStoreError(errorSubjectBooking, errorCodeNotFound, settlement.ErrUnknownBooking)
	}
	return wrapStoreError(errorSubjectBooking, errorCodeVersionMismatch, settlement.ErrConflict)
}

func insertEntry(ctx context.Context, db querier, entry settlement.LedgerEntry) error {
	createdAt := entry.CreatedAt.UTC()
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := db.Exec(ctx, sqlInsertEntry,
		entry.EntryID,
		entry.BookingID,
		string(entry.Type),
		entry.Amount,
		entry.CounterpartyID,
		entry.IdempotencyKey,
		entry.MetadataJSON,
		createdAt,
	)
	if isUniqueViolation(err, constraintEntryIdempotency) {
		return wrapStoreError(errorSubjectEntry, errorCodeDuplicate, settlement.ErrDuplicateEntry)
	}
	if err != nil {
		return wrapStoreError(errorSubjectEntry, errorCodeInsert, unavailable(err))
	}
	return nil
}

func listBookings(ctx context.Context, db querier, filter settlement.BookingFilter) ([]settlement.Booking, error) {
	rows, err := db.Query(ctx, sqlListBookings, filter.ProviderID, filter.StateStrings(), filter.Limit)
	if err != nil {
		return nil, wrapStoreError(errorSubjectBooking, errorCodeList, unavailable(err))
	}
	defer rows.Close()
	var bookings []settlement.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, wrapStoreError(errorSubjectBooking, errorCodeInvalid, err)
		}
		bookings = append(bookings, booking)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapStoreError(errorSubjectBooking, errorCodeList, unavailable(err))
	}
	return bookings, nil
}

func listEntries(ctx context.Context, db querier, bookingID string) ([]settlement.LedgerEntry, error) {
	rows, err := db.Query(ctx, sqlListEntries, bookingID)
	if err != nil {
		return nil, wrapStoreError(errorSubjectEntry, errorCodeList, unavailable(err))
	}
	defer rows.Close()
	var entries []settlement.LedgerEntry
	for rows.Next() {
		var (
			entry     settlement.LedgerEntry
			entryType string
		)
		if err := rows.Scan(
			&entry.EntryID,
			&entry.BookingID,
			&entryType,
			&entry.Amount,
			&entry.CounterpartyID,
			&entry.IdempotencyKey,
			&entry.MetadataJSON,
			&entry.CreatedAt,
		); err != nil {
			return nil, wrapStoreError(errorSubjectEntry, errorCodeInvalid, err)
		}
		entry.Type = settlement.EntryType(entryType)
		entry.CreatedAt = entry.CreatedAt.UTC()
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapStoreError(errorSubjectEntry, errorCodeList, unavailable(err))
	}
	return entries, nil
}

func scanBooking(row pgx.Row) (settlement.Booking, error) {
	var (
		booking      settlement.Booking
		vertical     string
		state        string
		pricingJSON  string
		intent       string
		serviceStart *time.Time
		serviceEnd   *time.Time
		holdExpires  *time.Time
	)
	if err := row.Scan(
		&booking.ID,
		&vertical,
		&booking.ProviderID,
		&booking.CustomerID,
		&state,
		&pricingJSON,
		&serviceStart,
		&serviceEnd,
		&holdExpires,
		&booking.ExternalChargeID,
		&booking.DisputeReason,
		&intent,
		&booking.Version,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	); err != nil {
		return settlement.Booking{}, err
	}
	var quoted pricing.Pricing
	if err := json.Unmarshal([]byte(pricingJSON), &quoted); err != nil {
		return settlement.Booking{}, err
	}
	parsedVertical, err := settlement.ParseVertical(vertical)
	if err != nil {
		return settlement.Booking{}, err
	}
	parsedState, err := settlement.ParseState(state)
	if err != nil {
		return settlement.Booking{}, err
	}
	booking.Vertical = parsedVertical
	booking.State = parsedState
	booking.Pricing = quoted
	booking.Intent = settlement.SettlementIntent(intent)
	booking.ServiceStart = utcPointer(serviceStart)
	booking.ServiceEnd = utcPointer(serviceEnd)
	booking.HoldExpiresAt = utcPointer(holdExpires)
	booking.CreatedAt = booking.CreatedAt.UTC()
	booking.UpdatedAt = booking.UpdatedAt.UTC()
	return booking, nil
}

func utcPointer(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	converted := value.UTC()
	return &converted
}

func wrapStoreError(subject string, code string, err error) error {
	return settlement.WrapError(errorOperationStore, subject, code, err)
}

func unavailable(err error) error {
	return errors.Join(settlement.ErrLedgerUnavailable, err)
}

func isUniqueViolation(err error, constraint string) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolationCode && pgErr.ConstraintName == constraint
	}
	return false
}
