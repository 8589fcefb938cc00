package rides

import (
	"time"

	"github.com/google/uuid"

	"github.com/paytaksi/paytaksi-backend/pkg/enums"
	"github.com/paytaksi/paytaksi-backend/pkg/types"
)

// RequestRideInput captures a passenger's ride request. Addresses are
// optional; missing ones are reverse geocoded when a geocoder is configured.
type RequestRideInput struct {
	Pickup         types.LatLng `json:"pickup"`
	Dropoff        types.LatLng `json:"dropoff"`
	PickupAddress  string       `json:"pickup_address,omitempty"`
	DropoffAddress string       `json:"dropoff_address,omitempty"`
}

// RideView is the externally visible ride representation.
type RideView struct {
	ID              uuid.UUID          `json:"id"`
	PassengerID     uuid.UUID          `json:"passenger_id"`
	DriverID        *uuid.UUID         `json:"driver_id,omitempty"`
	Status          enums.RideStatus   `json:"status"`
	Pickup          types.LatLng       `json:"pickup"`
	Dropoff         types.LatLng       `json:"dropoff"`
	PickupAddress   string             `json:"pickup_address"`
	DropoffAddress  string             `json:"dropoff_address"`
	DistanceKm      float64            `json:"distance_km"`
	FareCents       int64              `json:"fare_cents"`
	CommissionCents int64              `json:"commission_cents"`
	CanceledBy      *enums.CancelActor `json:"canceled_by,omitempty"`
	AcceptedAt      *time.Time         `json:"accepted_at,omitempty"`
	StartedAt       *time.Time         `json:"started_at,omitempty"`
	FinishedAt      *time.Time         `json:"finished_at,omitempty"`
	CanceledAt      *time.Time         `json:"canceled_at,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
}

// OfferView is the driver-facing offer representation.
type OfferView struct {
	ID           uuid.UUID         `json:"id"`
	RideID       uuid.UUID         `json:"ride_id"`
	Status       enums.OfferStatus `json:"status"`
	PickupDistKm float64           `json:"pickup_dist_km"`
	Ride         *RideView         `json:"ride,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
}
