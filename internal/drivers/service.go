package drivers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/paytaksi/paytaksi-backend/pkg/config"
	"github.com/paytaksi/paytaksi-backend/pkg/db/models"
	"github.com/paytaksi/paytaksi-backend/pkg/enums"
	pkgerrors "github.com/paytaksi/paytaksi-backend/pkg/errors"
	"github.com/paytaksi/paytaksi-backend/pkg/logger"
	"github.com/paytaksi/paytaksi-backend/pkg/outbox"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type presenceStore interface {
	MarkDriverOnline(ctx context.Context, driverID string, ttl time.Duration) error
	MarkDriverOffline(ctx context.Context, driverID string) error
}

type outboxEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service exposes driver roster operations.
type Service interface {
	Register(ctx context.Context, input RegisterDriverInput) (*DriverProfile, error)
	Get(ctx context.Context, id uuid.UUID) (*DriverProfile, error)
	SetApproval(ctx context.Context, adminID, driverID uuid.UUID, approval enums.DriverApproval) (*DriverProfile, error)
	SetOnline(ctx context.Context, driverID uuid.UUID, online bool) error
	UpdatePosition(ctx context.Context, driverID uuid.UUID, input UpdatePositionInput) error
}

type service struct {
	repo     Repository
	tx       txRunner
	presence presenceStore
	events   outboxEmitter
	dispatch config.DispatchConfig
	logg     *logger.Logger
}

// NewService wires a driver service with the provided dependencies. The
// presence store is optional; without it online state lives only in the DB.
func NewService(repo Repository, tx txRunner, events outboxEmitter, presence presenceStore, dispatch config.DispatchConfig, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("driver repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if events == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	return &service{
		repo:     repo,
		tx:       tx,
		presence: presence,
		events:   events,
		dispatch: dispatch,
		logg:     logg,
	}, nil
}

func (s *service) Register(ctx context.Context, input RegisterDriverInput) (*DriverProfile, error) {
	phone := strings.TrimSpace(input.Phone)
	if phone == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "phone is required")
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}

	existing, err := s.repo.FindByPhone(ctx, phone)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "driver with this phone already exists")
	}

	driver := &models.Driver{
		ID:       uuid.New(),
		Name:     strings.TrimSpace(input.Name),
		Phone:    phone,
		CarModel: strings.TrimSpace(input.CarModel),
		CarPlate: strings.TrimSpace(input.CarPlate),
		Approval: enums.DriverApprovalPending,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, driver); err != nil {
			return err
		}
		return s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventDriverApprovalSet,
			AggregateType: enums.AggregateDriver,
			AggregateID:   driver.ID,
			Actor:         outbox.DriverActor(driver.ID),
			Data: map[string]any{
				"driver_id": driver.ID,
				"approval":  driver.Approval,
			},
			Version: 1,
		})
	})
	if err != nil {
		return nil, err
	}
	return toProfile(driver), nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*DriverProfile, error) {
	driver, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if driver == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "driver not found")
	}
	return toProfile(driver), nil
}

func (s *service) SetApproval(ctx context.Context, adminID, driverID uuid.UUID, approval enums.DriverApproval) (*DriverProfile, error) {
	if !approval.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid approval state %q", approval))
	}

	driver, err := s.repo.FindByID(ctx, driverID)
	if err != nil {
		return nil, err
	}
	if driver == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "driver not found")
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).UpdateApproval(ctx, driverID, approval); err != nil {
			return err
		}
		return s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventDriverApprovalSet,
			AggregateType: enums.AggregateDriver,
			AggregateID:   driverID,
			Actor:         outbox.AdminActor(adminID),
			Data: map[string]any{
				"driver_id": driverID,
				"approval":  approval,
			},
			Version: 1,
		})
	})
	if err != nil {
		return nil, err
	}

	driver.Approval = approval
	return toProfile(driver), nil
}

func (s *service) SetOnline(ctx context.Context, driverID uuid.UUID, online bool) error {
	driver, err := s.repo.FindByID(ctx, driverID)
	if err != nil {
		return err
	}
	if driver == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "driver not found")
	}
	if online && driver.Approval != enums.DriverApprovalApproved {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "driver is not approved")
	}

	if err := s.repo.SetOnline(ctx, driverID, online); err != nil {
		return err
	}

	// Presence heartbeat is best effort; the DB row remains authoritative.
	if s.presence != nil {
		var presenceErr error
		if online {
			presenceErr = s.presence.MarkDriverOnline(ctx, driverID.String(), s.presenceTTL())
		} else {
			presenceErr = s.presence.MarkDriverOffline(ctx, driverID.String())
		}
		if presenceErr != nil && s.logg != nil {
			s.logg.Warn(s.logg.WithDriverID(ctx, driverID.String()), "presence update failed")
		}
	}
	return nil
}

func (s *service) UpdatePosition(ctx context.Context, driverID uuid.UUID, input UpdatePositionInput) error {
	if !input.Position.Valid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "coordinates out of range")
	}

	driver, err := s.repo.FindByID(ctx, driverID)
	if err != nil {
		return err
	}
	if driver == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "driver not found")
	}

	now := time.Now().UTC()
	if err := s.repo.UpdatePosition(ctx, driverID, input.Position.Lat, input.Position.Lng, now); err != nil {
		return err
	}

	if s.presence != nil && driver.Online {
		if err := s.presence.MarkDriverOnline(ctx, driverID.String(), s.presenceTTL()); err != nil && s.logg != nil {
			s.logg.Warn(s.logg.WithDriverID(ctx, driverID.String()), "presence refresh failed")
		}
	}
	return nil
}

func (s *service) presenceTTL() time.Duration {
	if s.dispatch.PositionFreshness > 0 {
		return s.dispatch.PositionFreshness
	}
	return 15 * time.Minute
}

func toProfile(d *models.Driver) *DriverProfile {
	return &DriverProfile{
		ID:             d.ID,
		Name:           d.Name,
		Phone:          d.Phone,
		CarModel:       d.CarModel,
		CarPlate:       d.CarPlate,
		Approval:       d.Approval,
		BalanceCents:   d.BalanceCents,
		Online:         d.Online,
		LastPositionAt: d.LastPositionAt,
		CreatedAt:      d.CreatedAt,
	}
}
