package controllers

import (
	"net/http"

	"github.com/paytaksi/paytaksi-backend/api/responses"
	"github.com/paytaksi/paytaksi-backend/api/validators"
	"github.com/paytaksi/paytaksi-backend/internal/rides"
	"github.com/paytaksi/paytaksi-backend/internal/wallet"
	"github.com/paytaksi/paytaksi-backend/pkg/enums"
	"github.com/paytaksi/paytaksi-backend/pkg/logger"
)

// AdminPendingTopups lists topups awaiting a decision, oldest visible via cursor paging.
func AdminPendingTopups(svc wallet.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		topups, err := svc.ListPendingTopups(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, topups)
	}
}

// AdminDecideTopup approves or rejects a pending topup. Approval credits the
// driver's balance in the same transaction.
func AdminDecideTopup(svc wallet.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		topupID, err := uuidParam(r, "topupId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		adminID, err := adminIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var input wallet.DecideTopupInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		topup, err := svc.DecideTopup(r.Context(), adminID, topupID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, topup)
	}
}

// AdminAdjustBalance applies a manual signed correction to a driver's balance.
func AdminAdjustBalance(svc wallet.Service, logg *logger.Logger) http.HandlerFunc {
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

		var input wallet.AdjustInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entry, err := svc.Adjust(r.Context(), adminID, driverID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, entry)
	}
}

// AdminBalanceAudit replays the ledger and compares it with the stored balance.
func AdminBalanceAudit(svc wallet.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		driverID, err := uuidParam(r, "driverId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		audit, err := svc.RecomputeBalance(r.Context(), driverID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, audit)
	}
}

// AdminCancelRide cancels any non-terminal ride on behalf of operations.
func AdminCancelRide(svc rides.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rideID, err := uuidParam(r, "rideId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		adminID, err := adminIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.CancelRide(r.Context(), enums.CancelActorAdmin, adminID, rideID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// AdminRedispatchRide re-runs offer fan-out for a ride stuck without a driver.
func AdminRedispatchRide(svc rides.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rideID, err := uuidParam(r, "rideId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.Redispatch(r.Context(), rideID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}
