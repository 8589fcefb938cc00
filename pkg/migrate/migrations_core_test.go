package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func readMigration(t *testing.T, glob string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", glob))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no migration matching %q", glob)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}

func TestCoreMigrationGuardsInvariants(t *testing.T) {
	content := readMigration(t, "*_init_core.sql")

	checks := []string{
		"CREATE TABLE drivers",
		"CREATE TABLE rides",
		"CREATE TABLE offers",
		"CREATE TABLE ledger_entries",
		"CREATE TABLE topup_requests",
		"CREATE UNIQUE INDEX ux_offers_one_accepted_per_ride ON offers (ride_id) WHERE status = 'accepted'",
		"CREATE UNIQUE INDEX ux_ledger_commission_per_ride ON ledger_entries (ride_id) WHERE kind = 'commission'",
		"CREATE INDEX idx_rides_passenger ON rides (passenger_id, created_at DESC)",
		"CREATE INDEX idx_offers_driver_pending ON offers (driver_id) WHERE status = 'pending'",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestOutboxDedupMigrationCoversTerminalEvents(t *testing.T) {
	content := readMigration(t, "*_outbox_event_dedup.sql")

	checks := []string{
		"CREATE UNIQUE INDEX ux_outbox_events_event_aggregate ON outbox_events (event_type, aggregate_type, aggregate_id)",
		"WHERE event_type IN ('ride_finished', 'ride_canceled')",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestOutboxMigrationIndexesUnpublished(t *testing.T) {
	content := readMigration(t, "*_outbox_notifications.sql")

	checks := []string{
		"CREATE TABLE outbox_events",
		"CREATE TABLE notifications",
		"CREATE INDEX idx_outbox_events_unpublished ON outbox_events (created_at) WHERE published_at IS NULL",
		"CREATE INDEX idx_notifications_recipient ON notifications (recipient_id, created_at DESC)",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}
