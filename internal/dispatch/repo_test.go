package dispatch

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/paytaksi/paytaksi-backend/pkg/db/models"
	"github.com/paytaksi/paytaksi-backend/pkg/enums"
)

func setupOffersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	offers := `
CREATE TABLE IF NOT EXISTS offers (
  id TEXT PRIMARY KEY,
  ride_id TEXT NOT NULL,
  driver_id TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  pickup_dist_km REAL NOT NULL DEFAULT 0,
  responded_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE (ride_id, driver_id)
);`
	require.NoError(t, db.Exec(offers).Error)
	return db
}

func seedOffers(t *testing.T, repo Repository, rideID uuid.UUID, count int) []models.Offer {
	t.Helper()

	offers := make([]models.Offer, count)
	for i := range offers {
		offers[i] = models.Offer{
			RideID:       rideID,
			DriverID:     uuid.New(),
			Status:       enums.OfferStatusPending,
			PickupDistKm: float64(i) + 0.5,
		}
	}
	require.NoError(t, repo.CreateBatch(context.Background(), offers))
	return offers
}

func TestOfferRepoCreateBatchAssignsIDs(t *testing.T) {
	db := setupOffersTestDB(t)
	repo := NewRepository(db)

	offers := seedOffers(t, repo, uuid.New(), 2)
	for _, o := range offers {
		assert.NotEqual(t, uuid.Nil, o.ID)
	}
}

func TestOfferRepoUniquePerRideAndDriver(t *testing.T) {
	db := setupOffersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	rideID := uuid.New()
	driverID := uuid.New()
	first := []models.Offer{{RideID: rideID, DriverID: driverID, Status: enums.OfferStatusPending}}
	require.NoError(t, repo.CreateBatch(ctx, first))

	dup := []models.Offer{{RideID: rideID, DriverID: driverID, Status: enums.OfferStatusPending}}
	assert.Error(t, repo.CreateBatch(ctx, dup))
}

func TestOfferRepoMarkAcceptedGuard(t *testing.T) {
	db := setupOffersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	offers := seedOffers(t, repo, uuid.New(), 1)
	now := time.Now().UTC()

	rows, err := repo.MarkAccepted(ctx, offers[0].ID, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	// The second acceptance attempt matches nothing.
	rows, err = repo.MarkAccepted(ctx, offers[0].ID, now)
	require.NoError(t, err)
	assert.Equal(t, int64(0), rows)

	found, err := repo.FindByID(ctx, offers[0].ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, enums.OfferStatusAccepted, found.Status)
	assert.NotNil(t, found.RespondedAt)
}

func TestOfferRepoExpireSiblings(t *testing.T) {
	db := setupOffersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	rideID := uuid.New()
	offers := seedOffers(t, repo, rideID, 3)

	rows, err := repo.MarkAccepted(ctx, offers[0].ID, time.Now().UTC())
	require.NoError(t, err)
	require.Equal(t, int64(1), rows)

	expired, err := repo.ExpireSiblings(ctx, rideID, offers[0].ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), expired)

	all, err := repo.ListByRide(ctx, rideID)
	require.NoError(t, err)
	require.Len(t, all, 3)
	for _, o := range all {
		if o.ID == offers[0].ID {
			assert.Equal(t, enums.OfferStatusAccepted, o.Status)
		} else {
			assert.Equal(t, enums.OfferStatusExpired, o.Status)
		}
	}
}

func TestOfferRepoExpirePendingByRide(t *testing.T) {
	db := setupOffersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	rideID := uuid.New()
	offers := seedOffers(t, repo, rideID, 2)

	_, err := repo.MarkDeclined(ctx, offers[0].ID, time.Now().UTC())
	require.NoError(t, err)

	rows, err := repo.ExpirePendingByRide(ctx, rideID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	declined, err := repo.FindByID(ctx, offers[0].ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OfferStatusDeclined, declined.Status)
}

func TestOfferRepoListPendingByDriver(t *testing.T) {
	db := setupOffersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	driverID := uuid.New()
	mine := []models.Offer{{RideID: uuid.New(), DriverID: driverID, Status: enums.OfferStatusPending}}
	require.NoError(t, repo.CreateBatch(ctx, mine))
	seedOffers(t, repo, uuid.New(), 1)

	pending, err := repo.ListPendingByDriver(ctx, driverID)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, mine[0].ID, pending[0].ID)

	_, err = repo.MarkDeclined(ctx, mine[0].ID, time.Now().UTC())
	require.NoError(t, err)

	pending, err = repo.ListPendingByDriver(ctx, driverID)
	require.NoError(t, err)
	assert.Empty(t, pending)
}
