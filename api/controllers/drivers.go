package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/paytaksi/paytaksi-backend/api/responses"
	"github.com/paytaksi/paytaksi-backend/api/validators"
	"github.com/paytaksi/paytaksi-backend/internal/drivers"
	"github.com/paytaksi/paytaksi-backend/pkg/enums"
	pkgerrors "github.com/paytaksi/paytaksi-backend/pkg/errors"
	"github.com/paytaksi/paytaksi-backend/pkg/logger"
	"github.com/paytaksi/paytaksi-backend/pkg/types"
)

// RegisterDriver enrolls a new driver in pending approval state.
func RegisterDriver(svc drivers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input drivers.RegisterDriverInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		profile, err := svc.Register(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, profile)
	}
}

// DriverProfile returns the driver's profile including balance.
func DriverProfile(svc drivers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		driverID, err := uuidParam(r, "driverId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		profile, err := svc.Get(r.Context(), driverID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, profile)
	}
}

type setOnlineRequest struct {
	Online bool `json:"online"`
}

// DriverSetOnline toggles the driver's availability for dispatch.
func DriverSetOnline(svc drivers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		driverID, err := uuidParam(r, "driverId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var input setOnlineRequest
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.SetOnline(r.Context(), driverID, input.Online); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"online": input.Online})
	}
}

type positionRequest struct {
	Lat float64 `json:"lat" validate:"min=-90,max=90"`
	Lng float64 `json:"lng" validate:"min=-180,max=180"`
}

// DriverUpdatePosition records a location heartbeat.
func DriverUpdatePosition(svc drivers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		driverID, err := uuidParam(r, "driverId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var input positionRequest
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		err = svc.UpdatePosition(r.Context(), driverID, drivers.UpdatePositionInput{
			Position: types.LatLng{Lat: input.Lat, Lng: input.Lng},
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "recorded"})
	}
}

type approvalRequest struct {
	Approval string `json:"approval" validate:"required"`
}

// AdminSetDriverApproval approves or rejects a driver application.
func AdminSetDriverApproval(svc drivers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		driverID, err := uuidParam(r, "driverId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		adminID, err := adminIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var input approvalRequest
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		approval, err := enums.ParseDriverApproval(input.Approval)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid approval"))
			return
		}

		profile, err := svc.SetApproval(r.Context(), adminID, driverID, approval)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, profile)
	}
}

func adminIDFromRequest(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(r.Header.Get("X-Admin-Id"))
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "X-Admin-Id header required")
	}
	return id, nil
}
