package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/paytaksi/paytaksi-backend/pkg/enums"
)

// TopupRequest is a driver's pending balance credit awaiting an admin
// decision. Approval appends the matching ledger entry.
type TopupRequest struct {
	ID          uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	DriverID    uuid.UUID         `gorm:"column:driver_id;type:uuid;not null;index"`
	AmountCents int64             `gorm:"column:amount_cents;not null"`
	Method      enums.TopupMethod `gorm:"column:method;type:text;not null"`
	Status      enums.TopupStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	DecidedBy   *uuid.UUID        `gorm:"column:decided_by;type:uuid"`
	DecidedAt   *time.Time        `gorm:"column:decided_at"`
	Note        *string           `gorm:"column:note;type:text"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

func (TopupRequest) TableName() string { return "topup_requests" }
