package outbox

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	dbpkg "github.com/paytaksi/paytaksi-backend/pkg/db"
	"github.com/paytaksi/paytaksi-backend/pkg/db/models"
	"github.com/paytaksi/paytaksi-backend/pkg/enums"
)

func setupOutboxTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	ddl := `
CREATE TABLE IF NOT EXISTS outbox_events (
  id TEXT PRIMARY KEY,
  event_type TEXT NOT NULL,
  aggregate_type TEXT NOT NULL,
  aggregate_id TEXT NOT NULL,
  payload TEXT NOT NULL,
  created_at DATETIME,
  published_at DATETIME,
  attempt_count INTEGER NOT NULL DEFAULT 0,
  last_error TEXT
);`
	require.NoError(t, db.Exec(ddl).Error)
	require.NoError(t, db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS ux_outbox_events_event_aggregate
ON outbox_events (event_type, aggregate_type, aggregate_id)
WHERE event_type IN ('ride_finished', 'ride_canceled')`).Error)
	return db
}

func countEvents(t *testing.T, db *gorm.DB, eventType enums.OutboxEventType, aggregateID uuid.UUID) int64 {
	t.Helper()

	var count int64
	require.NoError(t, db.Model(&models.OutboxEvent{}).
		Where("event_type = ? AND aggregate_id = ?", eventType, aggregateID).
		Count(&count).Error)
	return count
}

func TestEmitIfNotExistsIsSingleShot(t *testing.T) {
	db := setupOutboxTestDB(t)
	svc := NewService(NewRepository(db), nil)
	ctx := context.Background()

	rideID := uuid.New()
	event := DomainEvent{
		EventType:     enums.EventRideFinished,
		AggregateType: enums.AggregateRide,
		AggregateID:   rideID,
		Data:          map[string]any{"ride_id": rideID},
		Version:       1,
	}

	require.NoError(t, svc.EmitIfNotExists(ctx, db, event))
	require.NoError(t, svc.EmitIfNotExists(ctx, db, event))
	assert.Equal(t, int64(1), countEvents(t, db, enums.EventRideFinished, rideID))

	otherRide := uuid.New()
	event.AggregateID = otherRide
	require.NoError(t, svc.EmitIfNotExists(ctx, db, event))
	assert.Equal(t, int64(1), countEvents(t, db, enums.EventRideFinished, otherRide))
}

func TestEmitDuplicateTerminalEventHitsIndex(t *testing.T) {
	db := setupOutboxTestDB(t)
	svc := NewService(NewRepository(db), nil)
	ctx := context.Background()

	rideID := uuid.New()
	event := DomainEvent{
		EventType:     enums.EventRideCanceled,
		AggregateType: enums.AggregateRide,
		AggregateID:   rideID,
		Data:          map[string]any{"ride_id": rideID},
		Version:       1,
	}

	require.NoError(t, svc.Emit(ctx, db, event))
	err := svc.Emit(ctx, db, event)
	require.Error(t, err)
	assert.True(t, dbpkg.IsUniqueViolation(err, "ux_outbox_events_event_aggregate"))
}

func TestEmitAllowsRepeatedNonTerminalEvents(t *testing.T) {
	db := setupOutboxTestDB(t)
	svc := NewService(NewRepository(db), nil)
	ctx := context.Background()

	driverID := uuid.New()
	event := DomainEvent{
		EventType:     enums.EventBalanceAdjusted,
		AggregateType: enums.AggregateDriver,
		AggregateID:   driverID,
		Data:          map[string]any{"driver_id": driverID},
		Version:       1,
	}

	require.NoError(t, svc.Emit(ctx, db, event))
	require.NoError(t, svc.Emit(ctx, db, event))
	assert.Equal(t, int64(2), countEvents(t, db, enums.EventBalanceAdjusted, driverID))
}
