package wallet

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/paytaksi/paytaksi-backend/internal/drivers"
	"github.com/paytaksi/paytaksi-backend/pkg/db/models"
	"github.com/paytaksi/paytaksi-backend/pkg/enums"
	pkgerrors "github.com/paytaksi/paytaksi-backend/pkg/errors"
	"github.com/paytaksi/paytaksi-backend/pkg/logger"
	"github.com/paytaksi/paytaksi-backend/pkg/metrics"
	"github.com/paytaksi/paytaksi-backend/pkg/outbox"
	"github.com/paytaksi/paytaksi-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service exposes wallet operations. Every balance mutation appends a ledger
// entry in the same transaction; the stored balance is a cached sum.
type Service interface {
	RequestTopup(ctx context.Context, driverID uuid.UUID, input RequestTopupInput) (*models.TopupRequest, error)
	DecideTopup(ctx context.Context, adminID, topupID uuid.UUID, input DecideTopupInput) (*models.TopupRequest, error)
	DebitCommission(ctx context.Context, tx *gorm.DB, driverID, rideID uuid.UUID, amountCents int64) (*models.LedgerEntry, error)
	Adjust(ctx context.Context, adminID, driverID uuid.UUID, input AdjustInput) (*models.LedgerEntry, error)
	Balance(ctx context.Context, driverID uuid.UUID) (int64, error)
	ListLedger(ctx context.Context, driverID uuid.UUID, params pagination.Params) (*LedgerList, error)
	ListTopups(ctx context.Context, driverID uuid.UUID, params pagination.Params) ([]models.TopupRequest, error)
	ListPendingTopups(ctx context.Context, params pagination.Params) ([]models.TopupRequest, error)
	RecomputeBalance(ctx context.Context, driverID uuid.UUID) (*BalanceAudit, error)
}

type service struct {
	repo    Repository
	drivers drivers.Repository
	tx      txRunner
	events  outboxEmitter
	metrics *metrics.DispatchMetrics
	logg    *logger.Logger
}

// NewService wires a wallet service with the provided dependencies.
func NewService(repo Repository, driversRepo drivers.Repository, tx txRunner, events outboxEmitter, m *metrics.DispatchMetrics, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("wallet repository required")
	}
	if driversRepo == nil {
		return nil, fmt.Errorf("driver repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if events == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	return &service{
		repo:    repo,
		drivers: driversRepo,
		tx:      tx,
		events:  events,
		metrics: m,
		logg:    logg,
	}, nil
}

func (s *service) RequestTopup(ctx context.Context, driverID uuid.UUID, input RequestTopupInput) (*models.TopupRequest, error) {
	if input.AmountCents <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "topup amount must be positive")
	}
	if !input.Method.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid topup method %q", input.Method))
	}

	driver, err := s.drivers.FindByID(ctx, driverID)
	if err != nil {
		return nil, err
	}
	if driver == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "driver not found")
	}

	topup := &models.TopupRequest{
		ID:          uuid.New(),
		DriverID:    driverID,
		AmountCents: input.AmountCents,
		Method:      input.Method,
		Status:      enums.TopupStatusPending,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).CreateTopup(ctx, topup); err != nil {
			return err
		}
		return s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventTopupRequested,
			AggregateType: enums.AggregateLedgerEntry,
			AggregateID:   topup.ID,
			Actor:         outbox.DriverActor(driverID),
			Data: map[string]any{
				"topup_id":     topup.ID,
				"driver_id":    driverID,
				"amount_cents": topup.AmountCents,
				"method":       topup.Method,
			},
			Version: 1,
		})
	})
	if err != nil {
		return nil, err
	}
	return topup, nil
}

func (s *service) DecideTopup(ctx context.Context, adminID, topupID uuid.UUID, input DecideTopupInput) (*models.TopupRequest, error) {
	var decided *models.TopupRequest

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		topup, err := repo.FindTopupByIDForUpdate(ctx, topupID)
		if err != nil {
			return err
		}
		if topup == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "topup request not found")
		}
		if topup.Status != enums.TopupStatusPending {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "topup request already decided")
		}

		status := enums.TopupStatusRejected
		if input.Approve {
			status = enums.TopupStatusApproved
		}
		now := time.Now().UTC()

		rows, err := repo.DecideTopup(ctx, topupID, status, adminID, now, input.Note)
		if err != nil {
			return err
		}
		if rows == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "topup request already decided")
		}

		if input.Approve {
			if _, err := s.appendEntry(ctx, tx, appendEntryInput{
				driverID:    topup.DriverID,
				kind:        enums.LedgerEntryKindTopup,
				amountCents: topup.AmountCents,
				topupID:     &topup.ID,
				note:        input.Note,
			}); err != nil {
				return err
			}
		}

		topup.Status = status
		topup.DecidedBy = &adminID
		topup.DecidedAt = &now
		if input.Note != nil {
			topup.Note = input.Note
		}
		decided = topup

		return s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventTopupDecided,
			AggregateType: enums.AggregateLedgerEntry,
			AggregateID:   topup.ID,
			Actor:         outbox.AdminActor(adminID),
			Data: map[string]any{
				"topup_id":     topup.ID,
				"driver_id":    topup.DriverID,
				"amount_cents": topup.AmountCents,
				"status":       status,
			},
			Version: 1,
		})
	})
	if err != nil {
		return nil, err
	}
	return decided, nil
}

// DebitCommission charges the platform commission for a finished ride inside
// the caller's transaction. A ride is debited at most once: a second call
// returns the existing entry without touching the balance.
func (s *service) DebitCommission(ctx context.Context, tx *gorm.DB, driverID, rideID uuid.UUID, amountCents int64) (*models.LedgerEntry, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction required")
	}
	if amountCents < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "commission amount must not be negative")
	}

	repo := s.repo.WithTx(tx)
	existing, err := repo.FindCommissionEntryByRide(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	entry, err := s.appendEntry(ctx, tx, appendEntryInput{
		driverID:    driverID,
		kind:        enums.LedgerEntryKindCommission,
		amountCents: -amountCents,
		rideID:      &rideID,
	})
	if err != nil {
		return nil, err
	}

	err = s.events.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventCommissionDebited,
		AggregateType: enums.AggregateLedgerEntry,
		AggregateID:   entry.ID,
		Data: map[string]any{
			"driver_id":           driverID,
			"ride_id":             rideID,
			"amount_cents":        entry.AmountCents,
			"balance_after_cents": entry.BalanceAfterCents,
		},
		Version: 1,
	})
	if err != nil {
		return nil, err
	}

	s.metrics.AddCommissionCents(amountCents)
	return entry, nil
}

func (s *service) Adjust(ctx context.Context, adminID, driverID uuid.UUID, input AdjustInput) (*models.LedgerEntry, error) {
	if input.AmountCents == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "adjustment amount must not be zero")
	}

	var entry *models.LedgerEntry
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		entry, err = s.appendEntry(ctx, tx, appendEntryInput{
			driverID:    driverID,
			kind:        enums.LedgerEntryKindAdjustment,
			amountCents: input.AmountCents,
			note:        input.Note,
		})
		if err != nil {
			return err
		}
		return s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventBalanceAdjusted,
			AggregateType: enums.AggregateLedgerEntry,
			AggregateID:   entry.ID,
			Actor:         outbox.AdminActor(adminID),
			Data: map[string]any{
				"driver_id":           driverID,
				"amount_cents":        entry.AmountCents,
				"balance_after_cents": entry.BalanceAfterCents,
			},
			Version: 1,
		})
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *service) Balance(ctx context.Context, driverID uuid.UUID) (int64, error) {
	driver, err := s.drivers.FindByID(ctx, driverID)
	if err != nil {
		return 0, err
	}
	if driver == nil {
		return 0, pkgerrors.New(pkgerrors.CodeNotFound, "driver not found")
	}
	return driver.BalanceCents, nil
}

func (s *service) ListLedger(ctx context.Context, driverID uuid.UUID, params pagination.Params) (*LedgerList, error) {
	entries, err := s.repo.ListEntriesByDriver(ctx, driverID, params)
	if err != nil {
		return nil, err
	}

	limit := pagination.NormalizeLimit(params.Limit)
	next := ""
	if len(entries) > limit {
		entries = entries[:limit]
		last := entries[len(entries)-1]
		next = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}

	views := make([]LedgerEntryView, 0, len(entries))
	for _, e := range entries {
		views = append(views, LedgerEntryView{
			ID:                e.ID,
			Kind:              e.Kind,
			AmountCents:       e.AmountCents,
			BalanceAfterCents: e.BalanceAfterCents,
			RideID:            e.RideID,
			TopupID:           e.TopupID,
			Note:              e.Note,
			CreatedAt:         e.CreatedAt,
		})
	}
	return &LedgerList{Entries: views, NextCursor: next}, nil
}

func (s *service) ListTopups(ctx context.Context, driverID uuid.UUID, params pagination.Params) ([]models.TopupRequest, error) {
	return s.repo.ListTopupsByDriver(ctx, driverID, params)
}

func (s *service) ListPendingTopups(ctx context.Context, params pagination.Params) ([]models.TopupRequest, error) {
	return s.repo.ListPendingTopups(ctx, params)
}

// RecomputeBalance compares the cached driver balance with the ledger sum.
func (s *service) RecomputeBalance(ctx context.Context, driverID uuid.UUID) (*BalanceAudit, error) {
	driver, err := s.drivers.FindByID(ctx, driverID)
	if err != nil {
		return nil, err
	}
	if driver == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "driver not found")
	}

	sum, err := s.repo.SumEntriesByDriver(ctx, driverID)
	if err != nil {
		return nil, err
	}

	audit := &BalanceAudit{
		DriverID:      driverID,
		StoredCents:   driver.BalanceCents,
		ComputedCents: sum,
		Consistent:    driver.BalanceCents == sum,
	}
	if !audit.Consistent && s.logg != nil {
		s.logg.Error(s.logg.WithDriverID(ctx, driverID.String()), "ledger sum does not match stored balance", nil)
	}
	return audit, nil
}

type appendEntryInput struct {
	driverID    uuid.UUID
	kind        enums.LedgerEntryKind
	amountCents int64
	rideID      *uuid.UUID
	topupID     *uuid.UUID
	note        *string
}

// appendEntry locks the driver row, applies the delta, and appends the entry
// carrying the resulting balance. Always runs inside a transaction.
func (s *service) appendEntry(ctx context.Context, tx *gorm.DB, input appendEntryInput) (*models.LedgerEntry, error) {
	driversRepo := s.drivers.WithTx(tx)

	driver, err := driversRepo.FindByIDForUpdate(ctx, input.driverID)
	if err != nil {
		return nil, err
	}
	if driver == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "driver not found")
	}

	newBalance, err := driversRepo.AdjustBalance(ctx, input.driverID, input.amountCents)
	if err != nil {
		return nil, err
	}

	entry := &models.LedgerEntry{
		ID:                uuid.New(),
		DriverID:          input.driverID,
		Kind:              input.kind,
		AmountCents:       input.amountCents,
		BalanceAfterCents: newBalance,
		RideID:            input.rideID,
		TopupID:           input.topupID,
		Note:              input.note,
	}
	if err := s.repo.WithTx(tx).CreateEntry(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}
