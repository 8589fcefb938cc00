package wallet

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/paytaksi/paytaksi-backend/pkg/db"
	"github.com/paytaksi/paytaksi-backend/pkg/db/models"
	"github.com/paytaksi/paytaksi-backend/pkg/enums"
	"github.com/paytaksi/paytaksi-backend/pkg/pagination"
)

func setupWalletTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	ledgerEntries := `
CREATE TABLE IF NOT EXISTS ledger_entries (
  id TEXT PRIMARY KEY,
  driver_id TEXT NOT NULL,
  kind TEXT NOT NULL,
  amount_cents INTEGER NOT NULL,
  balance_after_cents INTEGER NOT NULL,
  ride_id TEXT,
  topup_id TEXT,
  note TEXT,
  created_at DATETIME
);`
	commissionIdx := `
CREATE UNIQUE INDEX IF NOT EXISTS ux_ledger_commission_per_ride
  ON ledger_entries (ride_id) WHERE kind = 'commission';`
	topupRequests := `
CREATE TABLE IF NOT EXISTS topup_requests (
  id TEXT PRIMARY KEY,
  driver_id TEXT NOT NULL,
  amount_cents INTEGER NOT NULL,
  method TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  decided_by TEXT,
  decided_at DATETIME,
  note TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, conn.Exec(ledgerEntries).Error)
	require.NoError(t, conn.Exec(commissionIdx).Error)
	require.NoError(t, conn.Exec(topupRequests).Error)
	return conn
}

func appendTestEntry(t *testing.T, repo Repository, driverID uuid.UUID, kind enums.LedgerEntryKind, amountCents, balanceAfter int64, rideID *uuid.UUID) *models.LedgerEntry {
	t.Helper()

	entry := &models.LedgerEntry{
		DriverID:          driverID,
		Kind:              kind,
		AmountCents:       amountCents,
		BalanceAfterCents: balanceAfter,
		RideID:            rideID,
	}
	require.NoError(t, repo.CreateEntry(context.Background(), entry))
	return entry
}

func TestWalletRepoSumEntries(t *testing.T) {
	conn := setupWalletTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	driverID := uuid.New()
	appendTestEntry(t, repo, driverID, enums.LedgerEntryKindTopup, 1000, 1000, nil)
	rideID := uuid.New()
	appendTestEntry(t, repo, driverID, enums.LedgerEntryKindCommission, -43, 957, &rideID)

	sum, err := repo.SumEntriesByDriver(ctx, driverID)
	require.NoError(t, err)
	assert.Equal(t, int64(957), sum)

	empty, err := repo.SumEntriesByDriver(ctx, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, int64(0), empty)
}

func TestWalletRepoCommissionUniquePerRide(t *testing.T) {
	conn := setupWalletTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	driverID := uuid.New()
	rideID := uuid.New()
	appendTestEntry(t, repo, driverID, enums.LedgerEntryKindCommission, -43, -43, &rideID)

	dup := &models.LedgerEntry{
		DriverID:          driverID,
		Kind:              enums.LedgerEntryKindCommission,
		AmountCents:       -43,
		BalanceAfterCents: -86,
		RideID:            &rideID,
	}
	err := repo.CreateEntry(ctx, dup)
	require.Error(t, err)
	assert.True(t, db.IsUniqueViolation(err, "ux_ledger_commission_per_ride"))

	found, err := repo.FindCommissionEntryByRide(ctx, rideID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, int64(-43), found.AmountCents)

	// A topup entry for the same ride id is not constrained.
	appendTestEntry(t, repo, driverID, enums.LedgerEntryKindTopup, 500, 457, &rideID)
}

func TestWalletRepoFindCommissionEntryMissing(t *testing.T) {
	conn := setupWalletTestDB(t)
	repo := NewRepository(conn)

	found, err := repo.FindCommissionEntryByRide(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestWalletRepoDecideTopupGuard(t *testing.T) {
	conn := setupWalletTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	topup := &models.TopupRequest{
		DriverID:    uuid.New(),
		AmountCents: 2000,
		Method:      enums.TopupMethodCard,
		Status:      enums.TopupStatusPending,
	}
	require.NoError(t, repo.CreateTopup(ctx, topup))

	adminID := uuid.New()
	now := time.Now().UTC()
	rows, err := repo.DecideTopup(ctx, topup.ID, enums.TopupStatusApproved, adminID, now, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	// The decision is final; a second one matches nothing.
	rows, err = repo.DecideTopup(ctx, topup.ID, enums.TopupStatusRejected, adminID, now, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), rows)

	found, err := repo.FindTopupByID(ctx, topup.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, enums.TopupStatusApproved, found.Status)
	require.NotNil(t, found.DecidedBy)
	assert.Equal(t, adminID, *found.DecidedBy)
}

func TestWalletRepoListPendingTopups(t *testing.T) {
	conn := setupWalletTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	driverID := uuid.New()
	first := &models.TopupRequest{DriverID: driverID, AmountCents: 500, Method: enums.TopupMethodM10, Status: enums.TopupStatusPending}
	require.NoError(t, repo.CreateTopup(ctx, first))
	second := &models.TopupRequest{DriverID: driverID, AmountCents: 700, Method: enums.TopupMethodCard, Status: enums.TopupStatusPending}
	require.NoError(t, repo.CreateTopup(ctx, second))

	_, err := repo.DecideTopup(ctx, first.ID, enums.TopupStatusRejected, uuid.New(), time.Now().UTC(), nil)
	require.NoError(t, err)

	mine, err := repo.ListTopupsByDriver(ctx, driverID, pagination.Params{})
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	pending, err := repo.ListPendingTopups(ctx, pagination.Params{})
	require.NoError(t, err)
	for _, p := range pending {
		assert.Equal(t, enums.TopupStatusPending, p.Status)
	}
}
