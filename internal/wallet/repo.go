package wallet

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/paytaksi/paytaksi-backend/pkg/db/models"
	"github.com/paytaksi/paytaksi-backend/pkg/enums"
	"github.com/paytaksi/paytaksi-backend/pkg/pagination"
)

// Repository manages persistence for ledger entries and topup requests.
// Ledger entries are append only; nothing here updates or deletes them.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateEntry(ctx context.Context, entry *models.LedgerEntry) error
	ListEntriesByDriver(ctx context.Context, driverID uuid.UUID, params pagination.Params) ([]models.LedgerEntry, error)
	SumEntriesByDriver(ctx context.Context, driverID uuid.UUID) (int64, error)
	FindCommissionEntryByRide(ctx context.Context, rideID uuid.UUID) (*models.LedgerEntry, error)
	CreateTopup(ctx context.Context, topup *models.TopupRequest) error
	FindTopupByID(ctx context.Context, id uuid.UUID) (*models.TopupRequest, error)
	FindTopupByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.TopupRequest, error)
	DecideTopup(ctx context.Context, id uuid.UUID, status enums.TopupStatus, decidedBy uuid.UUID, decidedAt time.Time, note *string) (int64, error)
	ListTopupsByDriver(ctx context.Context, driverID uuid.UUID, params pagination.Params) ([]models.TopupRequest, error)
	ListPendingTopups(ctx context.Context, params pagination.Params) ([]models.TopupRequest, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a wallet repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateEntry(ctx context.Context, entry *models.LedgerEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) ListEntriesByDriver(ctx context.Context, driverID uuid.UUID, params pagination.Params) ([]models.LedgerEntry, error) {
	q := r.db.WithContext(ctx).
		Where("driver_id = ?", driverID).
		Order("created_at DESC").
		Order("id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit))

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		q = q.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var entries []models.LedgerEntry
	if err := q.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repository) SumEntriesByDriver(ctx context.Context, driverID uuid.UUID) (int64, error) {
	var sum *int64
	err := r.db.WithContext(ctx).Model(&models.LedgerEntry{}).
		Where("driver_id = ?", driverID).
		Select("SUM(amount_cents)").
		Scan(&sum).Error
	if err != nil {
		return 0, err
	}
	if sum == nil {
		return 0, nil
	}
	return *sum, nil
}

func (r *repository) FindCommissionEntryByRide(ctx context.Context, rideID uuid.UUID) (*models.LedgerEntry, error) {
	var entry models.LedgerEntry
	err := r.db.WithContext(ctx).
		Where("ride_id = ? AND kind = ?", rideID, enums.LedgerEntryKindCommission).
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

func (r *repository) CreateTopup(ctx context.Context, topup *models.TopupRequest) error {
	if topup.ID == uuid.Nil {
		topup.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(topup).Error
}

func (r *repository) FindTopupByID(ctx context.Context, id uuid.UUID) (*models.TopupRequest, error) {
	var topup models.TopupRequest
	err := r.db.WithContext(ctx).First(&topup, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &topup, nil
}

func (r *repository) FindTopupByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.TopupRequest, error) {
	var topup models.TopupRequest
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&topup, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &topup, nil
}

// DecideTopup flips a pending topup to its final status. The status guard
// keeps a second concurrent decision from applying twice.
func (r *repository) DecideTopup(ctx context.Context, id uuid.UUID, status enums.TopupStatus, decidedBy uuid.UUID, decidedAt time.Time, note *string) (int64, error) {
	updates := map[string]any{
		"status":     status,
		"decided_by": decidedBy,
		"decided_at": decidedAt,
	}
	if note != nil {
		updates["note"] = *note
	}
	res := r.db.WithContext(ctx).Model(&models.TopupRequest{}).
		Where("id = ? AND status = ?", id, enums.TopupStatusPending).
		Updates(updates)
	return res.RowsAffected, res.Error
}

func (r *repository) ListTopupsByDriver(ctx context.Context, driverID uuid.UUID, params pagination.Params) ([]models.TopupRequest, error) {
	var topups []models.TopupRequest
	err := r.db.WithContext(ctx).
		Where("driver_id = ?", driverID).
		Order("created_at DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Find(&topups).Error
	return topups, err
}

func (r *repository) ListPendingTopups(ctx context.Context, params pagination.Params) ([]models.TopupRequest, error) {
	var topups []models.TopupRequest
	err := r.db.WithContext(ctx).
		Where("status = ?", enums.TopupStatusPending).
		Order("created_at ASC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Find(&topups).Error
	return topups, err
}
