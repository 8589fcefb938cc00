package controllers

import (
	"net/http"

	"github.com/paytaksi/paytaksi-backend/api/responses"
	"github.com/paytaksi/paytaksi-backend/api/validators"
	"github.com/paytaksi/paytaksi-backend/internal/rides"
	"github.com/paytaksi/paytaksi-backend/pkg/enums"
	"github.com/paytaksi/paytaksi-backend/pkg/logger"
	"github.com/paytaksi/paytaksi-backend/pkg/types"
)

type requestRideRequest struct {
	PickupLat      float64 `json:"pickup_lat" validate:"min=-90,max=90"`
	PickupLng      float64 `json:"pickup_lng" validate:"min=-180,max=180"`
	DropoffLat     float64 `json:"dropoff_lat" validate:"min=-90,max=90"`
	DropoffLng     float64 `json:"dropoff_lng" validate:"min=-180,max=180"`
	PickupAddress  string  `json:"pickup_address,omitempty" validate:"max=255"`
	DropoffAddress string  `json:"dropoff_address,omitempty" validate:"max=255"`
}

// RequestRide creates a ride with a frozen fare and fans out offers.
func RequestRide(svc rides.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		passengerID, err := uuidParam(r, "passengerId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var input requestRideRequest
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.RequestRide(r.Context(), passengerID, rides.RequestRideInput{
			Pickup:         types.LatLng{Lat: input.PickupLat, Lng: input.PickupLng},
			Dropoff:        types.LatLng{Lat: input.DropoffLat, Lng: input.DropoffLng},
			PickupAddress:  input.PickupAddress,
			DropoffAddress: input.DropoffAddress,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, view)
	}
}

// RideDetail returns a single ride by id.
func RideDetail(svc rides.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rideID, err := uuidParam(r, "rideId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.GetRide(r.Context(), rideID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// PassengerRides lists a passenger's ride history, newest first.
func PassengerRides(svc rides.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		passengerID, err := uuidParam(r, "passengerId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		views, err := svc.ListPassengerRides(r.Context(), passengerID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, views)
	}
}

// PassengerCancelRide cancels the passenger's own non-terminal ride.
func PassengerCancelRide(svc rides.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		passengerID, err := uuidParam(r, "passengerId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rideID, err := uuidParam(r, "rideId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.CancelRide(r.Context(), enums.CancelActorPassenger, passengerID, rideID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// DriverRides lists rides assigned to a driver, newest first.
func DriverRides(svc rides.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		driverID, err := uuidParam(r, "driverId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		views, err := svc.ListDriverRides(r.Context(), driverID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, views)
	}
}

// DriverOffers lists the driver's open offers with ride context.
func DriverOffers(svc rides.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		driverID, err := uuidParam(r, "driverId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		views, err := svc.ListDriverOffers(r.Context(), driverID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, views)
	}
}

// AcceptOffer claims a ride for the driver; losers of the race get a conflict.
func AcceptOffer(svc rides.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		driverID, err := uuidParam(r, "driverId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		offerID, err := uuidParam(r, "offerId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.AcceptOffer(r.Context(), driverID, offerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// DeclineOffer declines a pending offer without touching the ride.
func DeclineOffer(svc rides.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		driverID, err := uuidParam(r, "driverId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		offerID, err := uuidParam(r, "offerId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeclineOffer(r.Context(), driverID, offerID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "declined"})
	}
}

// StartRide moves an accepted ride to started.
func StartRide(svc rides.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		driverID, err := uuidParam(r, "driverId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rideID, err := uuidParam(r, "rideId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.StartRide(r.Context(), driverID, rideID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// CompleteRide finishes a started ride and settles the commission.
func CompleteRide(svc rides.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		driverID, err := uuidParam(r, "driverId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rideID, err := uuidParam(r, "rideId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.CompleteRide(r.Context(), driverID, rideID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}
