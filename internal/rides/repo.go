package rides

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/paytaksi/paytaksi-backend/pkg/db/models"
	"github.com/paytaksi/paytaksi-backend/pkg/enums"
	"github.com/paytaksi/paytaksi-backend/pkg/pagination"
)

// Repository manages persistence for rides.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, ride *models.Ride) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Ride, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Ride, error)
	TransitionStatus(ctx context.Context, id uuid.UUID, from, to enums.RideStatus, updates map[string]any) (int64, error)
	ListByPassenger(ctx context.Context, passengerID uuid.UUID, params pagination.Params) ([]models.Ride, error)
	ListByDriver(ctx context.Context, driverID uuid.UUID, params pagination.Params) ([]models.Ride, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a ride repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, ride *models.Ride) error {
	if ride.ID == uuid.Nil {
		ride.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(ride).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Ride, error) {
	var ride models.Ride
	err := r.db.WithContext(ctx).First(&ride, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &ride, nil
}

// FindByIDForUpdate locks the ride row for the rest of the transaction.
// Every lifecycle transition goes through this lock so concurrent writers
// serialize on the ride.
func (r *repository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Ride, error) {
	var ride models.Ride
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&ride, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &ride, nil
}

// TransitionStatus applies a guarded status change. The from-status in the
// WHERE clause means a lost race affects zero rows instead of clobbering a
// concurrent transition; callers must check the returned count.
func (r *repository) TransitionStatus(ctx context.Context, id uuid.UUID, from, to enums.RideStatus, updates map[string]any) (int64, error) {
	if updates == nil {
		updates = map[string]any{}
	}
	updates["status"] = to

	res := r.db.WithContext(ctx).Model(&models.Ride{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	return res.RowsAffected, res.Error
}

func (r *repository) ListByPassenger(ctx context.Context, passengerID uuid.UUID, params pagination.Params) ([]models.Ride, error) {
	return r.list(ctx, "passenger_id = ?", passengerID, params)
}

func (r *repository) ListByDriver(ctx context.Context, driverID uuid.UUID, params pagination.Params) ([]models.Ride, error) {
	return r.list(ctx, "driver_id = ?", driverID, params)
}

func (r *repository) list(ctx context.Context, cond string, id uuid.UUID, params pagination.Params) ([]models.Ride, error) {
	q := r.db.WithContext(ctx).
		Where(cond, id).
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

	var rides []models.Ride
	if err := q.Find(&rides).Error; err != nil {
		return nil, err
	}
	return rides, nil
}
