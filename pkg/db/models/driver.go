package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/paytaksi/paytaksi-backend/pkg/enums"
)

// Driver represents a registered driver and their wallet balance snapshot.
// BalanceCents is only ever mutated together with a ledger entry append.
type Driver struct {
	ID             uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name           string               `gorm:"column:name;type:text;not null"`
	Phone          string               `gorm:"column:phone;type:text;not null;uniqueIndex"`
	CarModel       string               `gorm:"column:car_model;type:text;not null"`
	CarPlate       string               `gorm:"column:car_plate;type:text;not null"`
	Approval       enums.DriverApproval `gorm:"column:approval;type:text;not null;default:'pending'"`
	BalanceCents   int64                `gorm:"column:balance_cents;not null;default:0"`
	Online         bool                 `gorm:"column:online;not null;default:false"`
	LastLat        *float64             `gorm:"column:last_lat"`
	LastLng        *float64             `gorm:"column:last_lng"`
	LastPositionAt *time.Time           `gorm:"column:last_position_at"`
	CreatedAt      time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

func (Driver) TableName() string { return "drivers" }
