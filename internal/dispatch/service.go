package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/paytaksi/paytaksi-backend/internal/eligibility"
	"github.com/paytaksi/paytaksi-backend/pkg/config"
	"github.com/paytaksi/paytaksi-backend/pkg/db/models"
	"github.com/paytaksi/paytaksi-backend/pkg/enums"
	"github.com/paytaksi/paytaksi-backend/pkg/logger"
	"github.com/paytaksi/paytaksi-backend/pkg/metrics"
	"github.com/paytaksi/paytaksi-backend/pkg/outbox"
	"github.com/paytaksi/paytaksi-backend/pkg/types"
)

type driverLister interface {
	ListDispatchable(ctx context.Context, positionSince time.Time) ([]models.Driver, error)
}

type outboxEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service fans ride offers out to eligible drivers.
type Service interface {
	// FanOut creates pending offers for the best candidates inside the
	// caller's transaction and returns them. Drivers listed in exclude
	// never receive an offer; an empty result means no eligible drivers.
	FanOut(ctx context.Context, tx *gorm.DB, ride *models.Ride, exclude []uuid.UUID) ([]models.Offer, error)
}

type service struct {
	offers   Repository
	drivers  driverLister
	events   outboxEmitter
	dispatch config.DispatchConfig
	wallet   config.WalletConfig
	metrics  *metrics.DispatchMetrics
	logg     *logger.Logger
}

// NewService wires the dispatch service.
func NewService(offers Repository, drivers driverLister, events outboxEmitter, dispatch config.DispatchConfig, wallet config.WalletConfig, m *metrics.DispatchMetrics, logg *logger.Logger) (Service, error) {
	if offers == nil {
		return nil, fmt.Errorf("offer repository required")
	}
	if drivers == nil {
		return nil, fmt.Errorf("driver lister required")
	}
	if events == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	return &service{
		offers:   offers,
		drivers:  drivers,
		events:   events,
		dispatch: dispatch,
		wallet:   wallet,
		metrics:  m,
		logg:     logg,
	}, nil
}

func (s *service) FanOut(ctx context.Context, tx *gorm.DB, ride *models.Ride, exclude []uuid.UUID) ([]models.Offer, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction required")
	}
	if ride == nil {
		return nil, fmt.Errorf("ride required")
	}

	now := time.Now().UTC()
	rows, err := s.drivers.ListDispatchable(ctx, now.Add(-s.dispatch.PositionFreshness))
	if err != nil {
		return nil, err
	}

	excluded := make(map[uuid.UUID]struct{}, len(exclude))
	for _, id := range exclude {
		excluded[id] = struct{}{}
	}

	pickup := types.LatLng{Lat: ride.PickupLat, Lng: ride.PickupLng}
	candidates := eligibility.Filter(rows, pickup, eligibility.Rules{
		SearchRadiusKm:      s.dispatch.SearchRadiusKm,
		PositionFreshness:   s.dispatch.PositionFreshness,
		BlockThresholdCents: s.wallet.BlockThresholdCents,
		Now:                 now,
	})

	offers := make([]models.Offer, 0, s.dispatch.MaxOffers)
	for _, c := range candidates {
		if len(offers) == s.dispatch.MaxOffers {
			break
		}
		if _, skip := excluded[c.Driver.ID]; skip {
			continue
		}
		offers = append(offers, models.Offer{
			ID:           uuid.New(),
			RideID:       ride.ID,
			DriverID:     c.Driver.ID,
			Status:       enums.OfferStatusPending,
			PickupDistKm: c.PickupDistKm,
		})
	}

	if len(offers) == 0 {
		s.metrics.IncNoDrivers()
		return nil, nil
	}

	if err := s.offers.WithTx(tx).CreateBatch(ctx, offers); err != nil {
		return nil, err
	}

	for _, offer := range offers {
		err := s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOfferCreated,
			AggregateType: enums.AggregateOffer,
			AggregateID:   offer.ID,
			Data: map[string]any{
				"offer_id":       offer.ID,
				"ride_id":        ride.ID,
				"driver_id":      offer.DriverID,
				"pickup_dist_km": offer.PickupDistKm,
			},
			Version: 1,
		})
		if err != nil {
			return nil, err
		}
	}

	s.metrics.AddOffersCreated(len(offers))
	if s.logg != nil {
		fields := map[string]any{"ride_id": ride.ID.String(), "offers": len(offers)}
		s.logg.Info(s.logg.WithFields(ctx, fields), "offers dispatched")
	}
	return offers, nil
}
