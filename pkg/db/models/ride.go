package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/paytaksi/paytaksi-backend/pkg/enums"
)

// Ride carries a single trip through its lifecycle. Fare and commission are
// frozen at creation time so later tariff changes never reprice an open ride.
type Ride struct {
	ID              uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	PassengerID     uuid.UUID          `gorm:"column:passenger_id;type:uuid;not null;index"`
	DriverID        *uuid.UUID         `gorm:"column:driver_id;type:uuid;index"`
	Status          enums.RideStatus   `gorm:"column:status;type:text;not null;default:'new'"`
	PickupLat       float64            `gorm:"column:pickup_lat;not null"`
	PickupLng       float64            `gorm:"column:pickup_lng;not null"`
	PickupAddress   string             `gorm:"column:pickup_address;type:text;not null"`
	DropoffLat      float64            `gorm:"column:dropoff_lat;not null"`
	DropoffLng      float64            `gorm:"column:dropoff_lng;not null"`
	DropoffAddress  string             `gorm:"column:dropoff_address;type:text;not null"`
	DistanceKm      float64            `gorm:"column:distance_km;not null"`
	FareCents       int64              `gorm:"column:fare_cents;not null"`
	CommissionCents int64              `gorm:"column:commission_cents;not null"`
	CanceledBy      *enums.CancelActor `gorm:"column:canceled_by;type:text"`
	AcceptedAt      *time.Time         `gorm:"column:accepted_at"`
	StartedAt       *time.Time         `gorm:"column:started_at"`
	FinishedAt      *time.Time         `gorm:"column:finished_at"`
	CanceledAt      *time.Time         `gorm:"column:canceled_at"`
	CreatedAt       time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

func (Ride) TableName() string { return "rides" }
