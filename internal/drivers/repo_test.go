package drivers

import (
	"context"
	"fmt"
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

func setupDriversTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	drivers := `
CREATE TABLE IF NOT EXISTS drivers (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  phone TEXT NOT NULL,
  car_model TEXT NOT NULL DEFAULT '',
  car_plate TEXT NOT NULL DEFAULT '',
  approval TEXT NOT NULL DEFAULT 'pending',
  balance_cents INTEGER NOT NULL DEFAULT 0,
  online INTEGER NOT NULL DEFAULT 0,
  last_lat REAL,
  last_lng REAL,
  last_position_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(drivers).Error)
	return db
}

func seedDriver(t *testing.T, repo Repository, approval enums.DriverApproval, online bool, positionAt *time.Time) *models.Driver {
	t.Helper()

	driver := &models.Driver{
		ID:       uuid.New(),
		Name:     "Test Driver",
		Phone:    fmt.Sprintf("+99450%09d", time.Now().UnixNano()%1_000_000_000),
		CarModel: "Prius",
		CarPlate: "90-AA-123",
		Approval: approval,
		Online:   online,
	}
	if positionAt != nil {
		lat, lng := 40.4093, 49.8671
		driver.LastLat = &lat
		driver.LastLng = &lng
		driver.LastPositionAt = positionAt
	}
	require.NoError(t, repo.Create(context.Background(), driver))
	return driver
}

func TestDriversRepoCreateAndFind(t *testing.T) {
	db := setupDriversTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	now := time.Now()
	created := seedDriver(t, repo, enums.DriverApprovalPending, false, &now)

	found, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, created.Phone, found.Phone)
	assert.Equal(t, enums.DriverApprovalPending, found.Approval)

	byPhone, err := repo.FindByPhone(ctx, created.Phone)
	require.NoError(t, err)
	require.NotNil(t, byPhone)
	assert.Equal(t, created.ID, byPhone.ID)

	missing, err := repo.FindByID(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestDriversRepoAdjustBalance(t *testing.T) {
	db := setupDriversTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	driver := seedDriver(t, repo, enums.DriverApprovalApproved, true, nil)

	balance, err := repo.AdjustBalance(ctx, driver.ID, 2000)
	require.NoError(t, err)
	assert.Equal(t, int64(2000), balance)

	balance, err = repo.AdjustBalance(ctx, driver.ID, -4300)
	require.NoError(t, err)
	assert.Equal(t, int64(-2300), balance)

	_, err = repo.AdjustBalance(ctx, uuid.New(), 100)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestDriversRepoListDispatchable(t *testing.T) {
	db := setupDriversTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	fresh := time.Now().Add(-time.Minute)
	stale := time.Now().Add(-time.Hour)

	eligible := seedDriver(t, repo, enums.DriverApprovalApproved, true, &fresh)
	seedDriver(t, repo, enums.DriverApprovalApproved, true, &stale)    // stale heartbeat
	seedDriver(t, repo, enums.DriverApprovalApproved, false, &fresh)   // offline
	seedDriver(t, repo, enums.DriverApprovalPending, true, &fresh)     // not approved
	seedDriver(t, repo, enums.DriverApprovalApproved, true, nil)       // never reported position

	rows, err := repo.ListDispatchable(ctx, time.Now().Add(-15*time.Minute))
	require.NoError(t, err)

	var ids []uuid.UUID
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	assert.Contains(t, ids, eligible.ID)
	for _, row := range rows {
		assert.Equal(t, enums.DriverApprovalApproved, row.Approval)
		assert.True(t, row.Online)
		require.NotNil(t, row.LastPositionAt)
		assert.True(t, row.LastPositionAt.After(time.Now().Add(-15*time.Minute)))
	}
}

func TestDriversRepoUpdatePositionAndOnline(t *testing.T) {
	db := setupDriversTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	driver := seedDriver(t, repo, enums.DriverApprovalApproved, false, nil)

	at := time.Now()
	require.NoError(t, repo.UpdatePosition(ctx, driver.ID, 40.41, 49.87, at))
	require.NoError(t, repo.SetOnline(ctx, driver.ID, true))
	require.NoError(t, repo.UpdateApproval(ctx, driver.ID, enums.DriverApprovalApproved))

	found, err := repo.FindByID(ctx, driver.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.True(t, found.Online)
	require.NotNil(t, found.LastLat)
	assert.InDelta(t, 40.41, *found.LastLat, 0.0001)
	require.NotNil(t, found.LastPositionAt)
}
