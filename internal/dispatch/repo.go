package dispatch

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

// Repository manages persistence for ride offers.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateBatch(ctx context.Context, offers []models.Offer) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Offer, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Offer, error)
	ListByRide(ctx context.Context, rideID uuid.UUID) ([]models.Offer, error)
	ListPendingByDriver(ctx context.Context, driverID uuid.UUID) ([]models.Offer, error)
	MarkAccepted(ctx context.Context, id uuid.UUID, at time.Time) (int64, error)
	MarkDeclined(ctx context.Context, id uuid.UUID, at time.Time) (int64, error)
	ExpireSiblings(ctx context.Context, rideID, acceptedOfferID uuid.UUID) (int64, error)
	ExpirePendingByRide(ctx context.Context, rideID uuid.UUID) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an offer repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateBatch(ctx context.Context, offers []models.Offer) error {
	if len(offers) == 0 {
		return nil
	}
	for i := range offers {
		if offers[i].ID == uuid.Nil {
			offers[i].ID = uuid.New()
		}
	}
	return r.db.WithContext(ctx).Create(&offers).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Offer, error) {
	var offer models.Offer
	err := r.db.WithContext(ctx).First(&offer, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &offer, nil
}

func (r *repository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Offer, error) {
	var offer models.Offer
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&offer, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &offer, nil
}

func (r *repository) ListByRide(ctx context.Context, rideID uuid.UUID) ([]models.Offer, error) {
	var offers []models.Offer
	err := r.db.WithContext(ctx).
		Where("ride_id = ?", rideID).
		Order("pickup_dist_km ASC").
		Find(&offers).Error
	return offers, err
}

func (r *repository) ListPendingByDriver(ctx context.Context, driverID uuid.UUID) ([]models.Offer, error) {
	var offers []models.Offer
	err := r.db.WithContext(ctx).
		Where("driver_id = ? AND status = ?", driverID, enums.OfferStatusPending).
		Order("created_at ASC").
		Find(&offers).Error
	return offers, err
}

// MarkAccepted flips a pending offer to accepted. The status guard in the
// WHERE clause makes the transition race safe; callers check rows affected.
func (r *repository) MarkAccepted(ctx context.Context, id uuid.UUID, at time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Offer{}).
		Where("id = ? AND status = ?", id, enums.OfferStatusPending).
		Updates(map[string]any{
			"status":       enums.OfferStatusAccepted,
			"responded_at": at,
		})
	return res.RowsAffected, res.Error
}

func (r *repository) MarkDeclined(ctx context.Context, id uuid.UUID, at time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Offer{}).
		Where("id = ? AND status = ?", id, enums.OfferStatusPending).
		Updates(map[string]any{
			"status":       enums.OfferStatusDeclined,
			"responded_at": at,
		})
	return res.RowsAffected, res.Error
}

// ExpireSiblings expires every other pending offer on the ride in one
// statement so the losing drivers drop out atomically with the acceptance.
func (r *repository) ExpireSiblings(ctx context.Context, rideID, acceptedOfferID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Offer{}).
		Where("ride_id = ? AND id <> ? AND status = ?", rideID, acceptedOfferID, enums.OfferStatusPending).
		Update("status", enums.OfferStatusExpired)
	return res.RowsAffected, res.Error
}

func (r *repository) ExpirePendingByRide(ctx context.Context, rideID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Offer{}).
		Where("ride_id = ? AND status = ?", rideID, enums.OfferStatusPending).
		Update("status", enums.OfferStatusExpired)
	return res.RowsAffected, res.Error
}
