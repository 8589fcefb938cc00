package drivers

import (
	"time"

	"github.com/google/uuid"

	"github.com/paytaksi/paytaksi-backend/pkg/enums"
	"github.com/paytaksi/paytaksi-backend/pkg/types"
)

// RegisterDriverInput captures the fields required to enroll a new driver.
type RegisterDriverInput struct {
	Name     string `json:"name" validate:"required,min=2,max=120"`
	Phone    string `json:"phone" validate:"required,min=5,max=32"`
	CarModel string `json:"car_model" validate:"required,max=120"`
	CarPlate string `json:"car_plate" validate:"required,max=16"`
}

// UpdatePositionInput carries a driver location heartbeat.
type UpdatePositionInput struct {
	Position types.LatLng
}

// DriverProfile is the externally visible driver view.
type DriverProfile struct {
	ID             uuid.UUID            `json:"id"`
	Name           string               `json:"name"`
	Phone          string               `json:"phone"`
	CarModel       string               `json:"car_model"`
	CarPlate       string               `json:"car_plate"`
	Approval       enums.DriverApproval `json:"approval"`
	BalanceCents   int64                `json:"balance_cents"`
	Online         bool                 `json:"online"`
	LastPositionAt *time.Time           `json:"last_position_at,omitempty"`
	CreatedAt      time.Time            `json:"created_at"`
}
