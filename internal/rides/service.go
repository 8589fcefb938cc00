package rides

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/paytaksi/paytaksi-backend/internal/dispatch"
	"github.com/paytaksi/paytaksi-backend/internal/drivers"
	"github.com/paytaksi/paytaksi-backend/pkg/config"
	"github.com/paytaksi/paytaksi-backend/pkg/db/models"
	"github.com/paytaksi/paytaksi-backend/pkg/enums"
	pkgerrors "github.com/paytaksi/paytaksi-backend/pkg/errors"
	"github.com/paytaksi/paytaksi-backend/pkg/geo"
	"github.com/paytaksi/paytaksi-backend/pkg/logger"
	"github.com/paytaksi/paytaksi-backend/pkg/maps"
	"github.com/paytaksi/paytaksi-backend/pkg/metrics"
	"github.com/paytaksi/paytaksi-backend/pkg/outbox"
	"github.com/paytaksi/paytaksi-backend/pkg/pagination"
	"github.com/paytaksi/paytaksi-backend/pkg/pricing"
	"github.com/paytaksi/paytaksi-backend/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
	EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type commissionDebitor interface {
	DebitCommission(ctx context.Context, tx *gorm.DB, driverID, rideID uuid.UUID, amountCents int64) (*models.LedgerEntry, error)
}

// Service drives the ride lifecycle from request to settlement.
type Service interface {
	RequestRide(ctx context.Context, passengerID uuid.UUID, input RequestRideInput) (*RideView, error)
	GetRide(ctx context.Context, rideID uuid.UUID) (*RideView, error)
	AcceptOffer(ctx context.Context, driverID, offerID uuid.UUID) (*RideView, error)
	DeclineOffer(ctx context.Context, driverID, offerID uuid.UUID) error
	StartRide(ctx context.Context, driverID, rideID uuid.UUID) (*RideView, error)
	CompleteRide(ctx context.Context, driverID, rideID uuid.UUID) (*RideView, error)
	CancelRide(ctx context.Context, actor enums.CancelActor, actorID, rideID uuid.UUID) (*RideView, error)
	Redispatch(ctx context.Context, rideID uuid.UUID) (*RideView, error)
	ListPassengerRides(ctx context.Context, passengerID uuid.UUID, params pagination.Params) ([]RideView, error)
	ListDriverRides(ctx context.Context, driverID uuid.UUID, params pagination.Params) ([]RideView, error)
	ListDriverOffers(ctx context.Context, driverID uuid.UUID) ([]OfferView, error)
}

type service struct {
	repo       Repository
	offers     dispatch.Repository
	drivers    drivers.Repository
	dispatcher dispatch.Service
	wallet     commissionDebitor
	tx         txRunner
	events     outboxEmitter
	geocoder   maps.Geocoder
	pricingCfg pricing.Config
	walletCfg  config.WalletConfig
	metrics    *metrics.DispatchMetrics
	logg       *logger.Logger
}

// NewService wires the ride service. The geocoder is optional; without it
// distances come from the great-circle formula and addresses stay as given.
func NewService(
	repo Repository,
	offers dispatch.Repository,
	driversRepo drivers.Repository,
	dispatcher dispatch.Service,
	wallet commissionDebitor,
	tx txRunner,
	events outboxEmitter,
	geocoder maps.Geocoder,
	pricingCfg config.PricingConfig,
	walletCfg config.WalletConfig,
	m *metrics.DispatchMetrics,
	logg *logger.Logger,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("ride repository required")
	}
	if offers == nil {
		return nil, fmt.Errorf("offer repository required")
	}
	if driversRepo == nil {
		return nil, fmt.Errorf("driver repository required")
	}
	if dispatcher == nil {
		return nil, fmt.Errorf("dispatch service required")
	}
	if wallet == nil {
		return nil, fmt.Errorf("wallet service required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if events == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	return &service{
		repo:       repo,
		offers:     offers,
		drivers:    driversRepo,
		dispatcher: dispatcher,
		wallet:     wallet,
		tx:         tx,
		events:     events,
		geocoder:   geocoder,
		pricingCfg: pricing.Config{
			BaseFare:          pricingCfg.BaseFare,
			IncludedKm:        pricingCfg.IncludedKm,
			PerKmAfter:        pricingCfg.PerKmAfter,
			CommissionPercent: pricingCfg.CommissionPercent,
		},
		walletCfg: walletCfg,
		metrics:   m,
		logg:      logg,
	}, nil
}

func (s *service) RequestRide(ctx context.Context, passengerID uuid.UUID, input RequestRideInput) (*RideView, error) {
	if passengerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "passenger id is required")
	}
	if !input.Pickup.Valid() || !input.Dropoff.Valid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coordinates out of range")
	}

	distanceKm := s.tripDistanceKm(ctx, input.Pickup, input.Dropoff)
	quote := pricing.Calculate(decimal.NewFromFloat(distanceKm), s.pricingCfg)

	pickupAddr, dropoffAddr := s.resolveAddresses(ctx, input)

	ride := &models.Ride{
		ID:              uuid.New(),
		PassengerID:     passengerID,
		Status:          enums.RideStatusNew,
		PickupLat:       input.Pickup.Lat,
		PickupLng:       input.Pickup.Lng,
		PickupAddress:   pickupAddr,
		DropoffLat:      input.Dropoff.Lat,
		DropoffLng:      input.Dropoff.Lng,
		DropoffAddress:  dropoffAddr,
		DistanceKm:      distanceKm,
		FareCents:       quote.FareCents,
		CommissionCents: quote.CommissionCents,
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, ride); err != nil {
			return err
		}
		if err := s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventRideRequested,
			AggregateType: enums.AggregateRide,
			AggregateID:   ride.ID,
			Actor:         outbox.PassengerActor(passengerID),
			Data:          rideEventData(ride),
			Version:       1,
		}); err != nil {
			return err
		}
		return s.fanOutLocked(ctx, tx, ride, nil)
	})
	if err != nil {
		return nil, err
	}
	return toView(ride), nil
}

// fanOutLocked dispatches offers for a ride the caller already holds (either
// freshly created or row locked) and moves it to offered or no_drivers.
func (s *service) fanOutLocked(ctx context.Context, tx *gorm.DB, ride *models.Ride, exclude []uuid.UUID) error {
	offers, err := s.dispatcher.FanOut(ctx, tx, ride, exclude)
	if err != nil {
		return err
	}

	from := ride.Status
	if len(offers) == 0 {
		if _, err := s.repo.WithTx(tx).TransitionStatus(ctx, ride.ID, from, enums.RideStatusNoDrivers, nil); err != nil {
			return err
		}
		ride.Status = enums.RideStatusNoDrivers
		return s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventRideNoDrivers,
			AggregateType: enums.AggregateRide,
			AggregateID:   ride.ID,
			Data:          rideEventData(ride),
			Version:       1,
		})
	}

	if _, err := s.repo.WithTx(tx).TransitionStatus(ctx, ride.ID, from, enums.RideStatusOffered, nil); err != nil {
		return err
	}
	ride.Status = enums.RideStatusOffered
	return s.events.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventRideOffered,
		AggregateType: enums.AggregateRide,
		AggregateID:   ride.ID,
		Data: map[string]any{
			"ride_id": ride.ID,
			"offers":  len(offers),
		},
		Version: 1,
	})
}

func (s *service) GetRide(ctx context.Context, rideID uuid.UUID) (*RideView, error) {
	ride, err := s.repo.FindByID(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if ride == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "ride not found")
	}
	return toView(ride), nil
}

// AcceptOffer is the contended path: several drivers race for the same ride.
// The offer and ride rows are locked for the whole transaction and every
// precondition is rechecked under the lock, so exactly one acceptance wins
// and the rest observe a state conflict.
func (s *service) AcceptOffer(ctx context.Context, driverID, offerID uuid.UUID) (*RideView, error) {
	var accepted *models.Ride

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		offersRepo := s.offers.WithTx(tx)
		ridesRepo := s.repo.WithTx(tx)

		offer, err := offersRepo.FindByIDForUpdate(ctx, offerID)
		if err != nil {
			return err
		}
		if offer == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "offer not found")
		}
		if offer.DriverID != driverID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "offer belongs to another driver")
		}

		ride, err := ridesRepo.FindByIDForUpdate(ctx, offer.RideID)
		if err != nil {
			return err
		}
		if ride == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "ride not found")
		}

		if offer.Status != enums.OfferStatusPending {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "offer is no longer open").
				WithDetails(map[string]any{"offer_status": offer.Status})
		}
		if ride.Status != enums.RideStatusOffered {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "ride is no longer available").
				WithDetails(map[string]any{"ride_status": ride.Status})
		}

		driver, err := s.drivers.WithTx(tx).FindByIDForUpdate(ctx, driverID)
		if err != nil {
			return err
		}
		if driver == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "driver not found")
		}
		if driver.Approval != enums.DriverApprovalApproved {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "driver is not approved")
		}
		if driver.BalanceCents <= s.walletCfg.BlockThresholdCents {
			return pkgerrors.New(pkgerrors.CodeThreshold, "balance is at or below the block threshold").
				WithDetails(map[string]any{
					"balance_cents":   driver.BalanceCents,
					"threshold_cents": s.walletCfg.BlockThresholdCents,
				})
		}

		now := time.Now().UTC()
		rows, err := offersRepo.MarkAccepted(ctx, offerID, now)
		if err != nil {
			return err
		}
		if rows == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "offer is no longer open")
		}

		if _, err := offersRepo.ExpireSiblings(ctx, ride.ID, offerID); err != nil {
			return err
		}

		rows, err = ridesRepo.TransitionStatus(ctx, ride.ID, enums.RideStatusOffered, enums.RideStatusAccepted, map[string]any{
			"driver_id":   driverID,
			"accepted_at": now,
		})
		if err != nil {
			return err
		}
		if rows == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "ride is no longer available")
		}

		ride.Status = enums.RideStatusAccepted
		ride.DriverID = &driverID
		ride.AcceptedAt = &now
		accepted = ride

		return s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventRideAccepted,
			AggregateType: enums.AggregateRide,
			AggregateID:   ride.ID,
			Actor:         outbox.DriverActor(driverID),
			Data:          rideEventData(ride),
			Version:       1,
		})
	})
	if err != nil {
		s.metrics.IncAcceptRejected(rejectionReason(err))
		return nil, err
	}

	s.metrics.IncAccepted()
	if s.logg != nil {
		ctx := s.logg.WithRideID(s.logg.WithDriverID(ctx, driverID.String()), accepted.ID.String())
		s.logg.Info(ctx, "offer accepted")
	}
	return toView(accepted), nil
}

func (s *service) DeclineOffer(ctx context.Context, driverID, offerID uuid.UUID) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		offersRepo := s.offers.WithTx(tx)

		offer, err := offersRepo.FindByIDForUpdate(ctx, offerID)
		if err != nil {
			return err
		}
		if offer == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "offer not found")
		}
		if offer.DriverID != driverID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "offer belongs to another driver")
		}
		if offer.Status != enums.OfferStatusPending {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "offer is no longer open")
		}

		rows, err := offersRepo.MarkDeclined(ctx, offerID, time.Now().UTC())
		if err != nil {
			return err
		}
		if rows == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "offer is no longer open")
		}

		return s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOfferDeclined,
			AggregateType: enums.AggregateOffer,
			AggregateID:   offerID,
			Actor:         outbox.DriverActor(driverID),
			Data: map[string]any{
				"offer_id":  offerID,
				"ride_id":   offer.RideID,
				"driver_id": driverID,
			},
			Version: 1,
		})
	})
}

func (s *service) StartRide(ctx context.Context, driverID, rideID uuid.UUID) (*RideView, error) {
	var started *models.Ride

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		ridesRepo := s.repo.WithTx(tx)

		ride, err := ridesRepo.FindByIDForUpdate(ctx, rideID)
		if err != nil {
			return err
		}
		if ride == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "ride not found")
		}
		if ride.DriverID == nil {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "ride cannot be started").
				WithDetails(map[string]any{"ride_status": ride.Status})
		}
		if *ride.DriverID != driverID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "ride is assigned to another driver")
		}
		if ride.Status != enums.RideStatusAccepted {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "ride cannot be started").
				WithDetails(map[string]any{"ride_status": ride.Status})
		}

		now := time.Now().UTC()
		rows, err := ridesRepo.TransitionStatus(ctx, rideID, enums.RideStatusAccepted, enums.RideStatusStarted, map[string]any{
			"started_at": now,
		})
		if err != nil {
			return err
		}
		if rows == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "ride cannot be started")
		}

		ride.Status = enums.RideStatusStarted
		ride.StartedAt = &now
		started = ride

		return s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventRideStarted,
			AggregateType: enums.AggregateRide,
			AggregateID:   rideID,
			Actor:         outbox.DriverActor(driverID),
			Data:          rideEventData(ride),
			Version:       1,
		})
	})
	if err != nil {
		return nil, err
	}
	return toView(started), nil
}

// CompleteRide settles a started ride: the status flips to finished and the
// commission is debited in the same transaction. Completing an already
// finished ride returns it unchanged without a second debit.
func (s *service) CompleteRide(ctx context.Context, driverID, rideID uuid.UUID) (*RideView, error) {
	var finished *models.Ride
	var alreadyDone bool

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		ridesRepo := s.repo.WithTx(tx)

		ride, err := ridesRepo.FindByIDForUpdate(ctx, rideID)
		if err != nil {
			return err
		}
		if ride == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "ride not found")
		}
		if ride.DriverID == nil {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "ride cannot be completed").
				WithDetails(map[string]any{"ride_status": ride.Status})
		}
		if *ride.DriverID != driverID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "ride is assigned to another driver")
		}
		if ride.Status == enums.RideStatusFinished {
			finished = ride
			alreadyDone = true
			return nil
		}
		if ride.Status != enums.RideStatusStarted {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "ride cannot be completed").
				WithDetails(map[string]any{"ride_status": ride.Status})
		}

		now := time.Now().UTC()
		rows, err := ridesRepo.TransitionStatus(ctx, rideID, enums.RideStatusStarted, enums.RideStatusFinished, map[string]any{
			"finished_at": now,
		})
		if err != nil {
			return err
		}
		if rows == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "ride cannot be completed")
		}

		if _, err := s.wallet.DebitCommission(ctx, tx, driverID, rideID, ride.CommissionCents); err != nil {
			return err
		}

		ride.Status = enums.RideStatusFinished
		ride.FinishedAt = &now
		finished = ride

		// Terminal events are single-shot per ride.
		return s.events.EmitIfNotExists(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventRideFinished,
			AggregateType: enums.AggregateRide,
			AggregateID:   rideID,
			Actor:         outbox.DriverActor(driverID),
			Data:          rideEventData(ride),
			Version:       1,
		})
	})
	if err != nil {
		return nil, err
	}
	if !alreadyDone {
		s.metrics.IncRideCompleted()
	}
	return toView(finished), nil
}

func (s *service) CancelRide(ctx context.Context, actor enums.CancelActor, actorID, rideID uuid.UUID) (*RideView, error) {
	if !actor.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid cancel actor %q", actor))
	}

	var canceled *models.Ride

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		ridesRepo := s.repo.WithTx(tx)

		ride, err := ridesRepo.FindByIDForUpdate(ctx, rideID)
		if err != nil {
			return err
		}
		if ride == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "ride not found")
		}
		if actor == enums.CancelActorPassenger && ride.PassengerID != actorID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "ride belongs to another passenger")
		}
		if ride.Status.IsTerminal() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "ride is already finished or canceled").
				WithDetails(map[string]any{"ride_status": ride.Status})
		}

		now := time.Now().UTC()
		rows, err := ridesRepo.TransitionStatus(ctx, rideID, ride.Status, enums.RideStatusCanceled, map[string]any{
			"canceled_by": actor,
			"canceled_at": now,
		})
		if err != nil {
			return err
		}
		if rows == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "ride is already finished or canceled")
		}

		if _, err := s.offers.WithTx(tx).ExpirePendingByRide(ctx, rideID); err != nil {
			return err
		}

		ride.Status = enums.RideStatusCanceled
		ride.CanceledBy = &actor
		ride.CanceledAt = &now
		canceled = ride

		return s.events.EmitIfNotExists(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventRideCanceled,
			AggregateType: enums.AggregateRide,
			AggregateID:   rideID,
			Data:          rideEventData(ride),
			Version:       1,
		})
	})
	if err != nil {
		return nil, err
	}
	return toView(canceled), nil
}

// Redispatch retries offer fan-out for a ride that is still unassigned.
// Drivers who already hold an offer for the ride, in any state, are skipped.
func (s *service) Redispatch(ctx context.Context, rideID uuid.UUID) (*RideView, error) {
	var ride *models.Ride

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		ridesRepo := s.repo.WithTx(tx)
		offersRepo := s.offers.WithTx(tx)

		var err error
		ride, err = ridesRepo.FindByIDForUpdate(ctx, rideID)
		if err != nil {
			return err
		}
		if ride == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "ride not found")
		}
		if ride.Status != enums.RideStatusOffered && ride.Status != enums.RideStatusNoDrivers {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "ride is not waiting for a driver").
				WithDetails(map[string]any{"ride_status": ride.Status})
		}

		if _, err := offersRepo.ExpirePendingByRide(ctx, rideID); err != nil {
			return err
		}

		previous, err := offersRepo.ListByRide(ctx, rideID)
		if err != nil {
			return err
		}
		exclude := make([]uuid.UUID, 0, len(previous))
		for _, o := range previous {
			exclude = append(exclude, o.DriverID)
		}

		return s.fanOutLocked(ctx, tx, ride, exclude)
	})
	if err != nil {
		return nil, err
	}
	return toView(ride), nil
}

func (s *service) ListPassengerRides(ctx context.Context, passengerID uuid.UUID, params pagination.Params) ([]RideView, error) {
	rows, err := s.repo.ListByPassenger(ctx, passengerID, params)
	if err != nil {
		return nil, err
	}
	return toViews(rows, params.Limit), nil
}

func (s *service) ListDriverRides(ctx context.Context, driverID uuid.UUID, params pagination.Params) ([]RideView, error) {
	rows, err := s.repo.ListByDriver(ctx, driverID, params)
	if err != nil {
		return nil, err
	}
	return toViews(rows, params.Limit), nil
}

func (s *service) ListDriverOffers(ctx context.Context, driverID uuid.UUID) ([]OfferView, error) {
	offers, err := s.offers.ListPendingByDriver(ctx, driverID)
	if err != nil {
		return nil, err
	}

	views := make([]OfferView, 0, len(offers))
	for _, o := range offers {
		view := OfferView{
			ID:           o.ID,
			RideID:       o.RideID,
			Status:       o.Status,
			PickupDistKm: o.PickupDistKm,
			CreatedAt:    o.CreatedAt,
		}
		ride, err := s.repo.FindByID(ctx, o.RideID)
		if err != nil {
			return nil, err
		}
		if ride != nil {
			view.Ride = toView(ride)
		}
		views = append(views, view)
	}
	return views, nil
}

// tripDistanceKm prefers the road distance and falls back to great-circle.
func (s *service) tripDistanceKm(ctx context.Context, pickup, dropoff types.LatLng) float64 {
	if s.geocoder != nil {
		if km, err := s.geocoder.RouteDistanceKm(ctx, pickup, dropoff); err == nil && km > 0 {
			return km
		} else if err != nil && s.logg != nil {
			s.logg.Warn(ctx, "route lookup failed, using great-circle distance")
		}
	}
	return geo.DistanceKm(pickup, dropoff)
}

func (s *service) resolveAddresses(ctx context.Context, input RequestRideInput) (string, string) {
	pickup, dropoff := input.PickupAddress, input.DropoffAddress
	if s.geocoder == nil {
		return pickup, dropoff
	}
	if pickup == "" {
		if place, err := s.geocoder.ReverseLookup(ctx, input.Pickup); err == nil {
			pickup = place.Address
		}
	}
	if dropoff == "" {
		if place, err := s.geocoder.ReverseLookup(ctx, input.Dropoff); err == nil {
			dropoff = place.Address
		}
	}
	return pickup, dropoff
}

func rejectionReason(err error) string {
	switch {
	case pkgerrors.Is(err, pkgerrors.CodeThreshold):
		return "threshold"
	case pkgerrors.Is(err, pkgerrors.CodeStateConflict):
		return "state_conflict"
	case pkgerrors.Is(err, pkgerrors.CodeForbidden):
		return "forbidden"
	case pkgerrors.Is(err, pkgerrors.CodeNotFound):
		return "not_found"
	default:
		return "error"
	}
}

func rideEventData(ride *models.Ride) map[string]any {
	data := map[string]any{
		"ride_id":          ride.ID,
		"passenger_id":     ride.PassengerID,
		"status":           ride.Status,
		"distance_km":      ride.DistanceKm,
		"fare_cents":       ride.FareCents,
		"commission_cents": ride.CommissionCents,
	}
	if ride.DriverID != nil {
		data["driver_id"] = *ride.DriverID
	}
	return data
}

func toView(ride *models.Ride) *RideView {
	return &RideView{
		ID:              ride.ID,
		PassengerID:     ride.PassengerID,
		DriverID:        ride.DriverID,
		Status:          ride.Status,
		Pickup:          types.LatLng{Lat: ride.PickupLat, Lng: ride.PickupLng},
		Dropoff:         types.LatLng{Lat: ride.DropoffLat, Lng: ride.DropoffLng},
		PickupAddress:   ride.PickupAddress,
		DropoffAddress:  ride.DropoffAddress,
		DistanceKm:      ride.DistanceKm,
		FareCents:       ride.FareCents,
		CommissionCents: ride.CommissionCents,
		CanceledBy:      ride.CanceledBy,
		AcceptedAt:      ride.AcceptedAt,
		StartedAt:       ride.StartedAt,
		FinishedAt:      ride.FinishedAt,
		CanceledAt:      ride.CanceledAt,
		CreatedAt:       ride.CreatedAt,
	}
}

func toViews(rows []models.Ride, limit int) []RideView {
	max := pagination.NormalizeLimit(limit)
	if len(rows) > max {
		rows = rows[:max]
	}
	views := make([]RideView, 0, len(rows))
	for i := range rows {
		views = append(views, *toView(&rows[i]))
	}
	return views
}
