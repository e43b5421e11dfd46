package gormstore

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Booking mirrors the bookings table.
type Booking struct {
	BookingID        string         `gorm:"primaryKey;size:128"`
	Vertical         string         `gorm:"size:32;not null"`
	ProviderID       string         `gorm:"not null;index:idx_bookings_provider_state,priority:1"`
	CustomerID       string         `gorm:"not null;index:idx_bookings_customer"`
	State            string         `gorm:"size:32;not null;index:idx_bookings_provider_state,priority:2;index:idx_bookings_state"`
	Pricing          datatypes.JSON `gorm:"type:jsonb;not null"`
	TotalCharged     int64          `gorm:"not null"`
	Currency         string         `gorm:"size:3;not null"`
	ServiceStart     *time.Time
	ServiceEnd       *time.Time
	HoldExpiresAt    *time.Time `gorm:"index:idx_bookings_hold_expires_at"`
	ExternalChargeID string     `gorm:"not null;default:''"`
	DisputeReason    string     `gorm:"not null;default:''"`
	Intent           string     `gorm:"size:16;not null;default:''"`
	Version          int64      `gorm:"not null"`
	CreatedAt        time.Time  `gorm:"not null;autoCreateTime:false"`
	UpdatedAt        time.Time  `gorm:"not null;autoUpdateTime:false"`
}

func (Booking) TableName() string { return "bookings" }

// BookingEntry mirrors the booking_entries table.
type BookingEntry struct {
	EntryID        string         `gorm:"primaryKey;size:36"`
	BookingID      string         `gorm:"size:128;not null;index:uniq_booking_entry_idem,unique,priority:1;index:uniq_booking_entry_position,unique,priority:1"`
	Position       int64          `gorm:"not null;index:uniq_booking_entry_position,unique,priority:2"`
	Type           string         `gorm:"size:16;not null"`
	Amount         int64          `gorm:"not null"`
	CounterpartyID string         `gorm:"not null"`
	IdempotencyKey string         `gorm:"not null;index:uniq_booking_entry_idem,unique,priority:2"`
	Metadata       datatypes.JSON `gorm:"type:jsonb;not null"`
	CreatedAt      time.Time      `gorm:"not null;autoCreateTime:false"`
}

func (BookingEntry) TableName() string { return "booking_entries" }

func (entry *BookingEntry) BeforeCreate(tx *gorm.DB) error {
	if entry.EntryID == "" {
		entry.EntryID = uuid.NewString()
	}
	return nil
}

// Migrate creates or updates the settlement tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Booking{}, &BookingEntry{})
}
