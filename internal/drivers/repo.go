package drivers

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/paytaksi/paytaksi-backend/pkg/db/models"
	"github.com/paytaksi/paytaksi-backend/pkg/enums"
)

// Repository manages persistence for drivers.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, driver *models.Driver) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Driver, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Driver, error)
	FindByPhone(ctx context.Context, phone string) (*models.Driver, error)
	UpdateApproval(ctx context.Context, id uuid.UUID, approval enums.DriverApproval) error
	SetOnline(ctx context.Context, id uuid.UUID, online bool) error
	UpdatePosition(ctx context.Context, id uuid.UUID, lat, lng float64, at time.Time) error
	AdjustBalance(ctx context.Context, id uuid.UUID, deltaCents int64) (int64, error)
	ListDispatchable(ctx context.Context, positionSince time.Time) ([]models.Driver, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a driver repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, driver *models.Driver) error {
	if driver.ID == uuid.Nil {
		driver.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(driver).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Driver, error) {
	var driver models.Driver
	err := r.db.WithContext(ctx).First(&driver, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &driver, nil
}

func (r *repository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Driver, error) {
	var driver models.Driver
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&driver, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &driver, nil
}

func (r *repository) FindByPhone(ctx context.Context, phone string) (*models.Driver, error) {
	var driver models.Driver
	err := r.db.WithContext(ctx).First(&driver, "phone = ?", phone).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &driver, nil
}

func (r *repository) UpdateApproval(ctx context.Context, id uuid.UUID, approval enums.DriverApproval) error {
	return r.db.WithContext(ctx).Model(&models.Driver{}).
		Where("id = ?", id).
		Update("approval", approval).Error
}

func (r *repository) SetOnline(ctx context.Context, id uuid.UUID, online bool) error {
	return r.db.WithContext(ctx).Model(&models.Driver{}).
		Where("id = ?", id).
		Update("online", online).Error
}

func (r *repository) UpdatePosition(ctx context.Context, id uuid.UUID, lat, lng float64, at time.Time) error {
	return r.db.WithContext(ctx).Model(&models.Driver{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"last_lat":         lat,
			"last_lng":         lng,
			"last_position_at": at,
		}).Error
}

// AdjustBalance applies a signed delta atomically and returns the new balance.
func (r *repository) AdjustBalance(ctx context.Context, id uuid.UUID, deltaCents int64) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Driver{}).
		Where("id = ?", id).
		Update("balance_cents", gorm.Expr("balance_cents + ?", deltaCents))
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, gorm.ErrRecordNotFound
	}

	var balance int64
	err := r.db.WithContext(ctx).Model(&models.Driver{}).
		Where("id = ?", id).
		Pluck("balance_cents", &balance).Error
	return balance, err
}

// ListDispatchable returns approved online drivers with a position heartbeat
// newer than positionSince. Distance filtering happens in the caller.
func (r *repository) ListDispatchable(ctx context.Context, positionSince time.Time) ([]models.Driver, error) {
	var rows []models.Driver
	err := r.db.WithContext(ctx).
		Where("approval = ?", enums.DriverApprovalApproved).
		Where("online = ?", true).
		Where("last_lat IS NOT NULL AND last_lng IS NOT NULL").
		Where("last_position_at >= ?", positionSince).
		Order("id ASC").
		Find(&rows).Error
	return rows, err
}
