package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/paytaksi/paytaksi-backend/pkg/enums"
)

// Offer links a ride to one candidate driver. At most one offer per ride ever
// reaches the accepted state; its siblings are expired in the same transaction.
type Offer struct {
	ID           uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	RideID       uuid.UUID         `gorm:"column:ride_id;type:uuid;not null;uniqueIndex:idx_offers_ride_driver"`
	DriverID     uuid.UUID         `gorm:"column:driver_id;type:uuid;not null;uniqueIndex:idx_offers_ride_driver"`
	Status       enums.OfferStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	PickupDistKm float64           `gorm:"column:pickup_dist_km;not null"`
	RespondedAt  *time.Time        `gorm:"column:responded_at"`
	CreatedAt    time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

func (Offer) TableName() string { return "offers" }
