package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/paytaksi/paytaksi-backend/pkg/enums"
)

// LedgerEntry records an immutable signed movement on a driver wallet. The
// driver's balance snapshot must always equal the sum of their entries.
type LedgerEntry struct {
	ID                uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	DriverID          uuid.UUID             `gorm:"column:driver_id;type:uuid;not null;index"`
	Kind              enums.LedgerEntryKind `gorm:"column:kind;type:text;not null"`
	AmountCents       int64                 `gorm:"column:amount_cents;not null"`
	BalanceAfterCents int64                 `gorm:"column:balance_after_cents;not null"`
	RideID            *uuid.UUID            `gorm:"column:ride_id;type:uuid;index"`
	TopupID           *uuid.UUID            `gorm:"column:topup_id;type:uuid"`
	Note              *string               `gorm:"column:note;type:text"`
	CreatedAt         time.Time             `gorm:"column:created_at;autoCreateTime"`
}

func (LedgerEntry) TableName() string { return "ledger_entries" }
