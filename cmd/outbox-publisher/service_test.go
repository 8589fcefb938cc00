package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/paytaksi/paytaksi-backend/pkg/config"
	"github.com/paytaksi/paytaksi-backend/pkg/db/models"
	"github.com/paytaksi/paytaksi-backend/pkg/enums"
	"github.com/paytaksi/paytaksi-backend/pkg/logger"
)

type fakeOutboxRepo struct {
	events    []models.OutboxEvent
	published []uuid.UUID
	failed    map[uuid.UUID]string
	fetchErr  error
}

func (f *fakeOutboxRepo) FetchUnpublished(limit int) ([]models.OutboxEvent, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	if len(f.events) > limit {
		return f.events[:limit], nil
	}
	return f.events, nil
}

func (f *fakeOutboxRepo) MarkPublished(id uuid.UUID) error {
	f.published = append(f.published, id)
	return nil
}

func (f *fakeOutboxRepo) MarkFailed(id uuid.UUID, err error) error {
	if f.failed == nil {
		f.failed = map[uuid.UUID]string{}
	}
	f.failed[id] = err.Error()
	return nil
}

type fakeResult struct {
	err error
}

func (f fakeResult) Get(context.Context) (string, error) {
	return "msg-1", f.err
}

type fakePublisher struct {
	messages []*pubsub.Message
	err      error
}

func (f *fakePublisher) Publish(_ context.Context, msg *pubsub.Message) publishResult {
	f.messages = append(f.messages, msg)
	return fakeResult{err: f.err}
}

func outboxEvent(eventType enums.OutboxEventType, aggregate enums.OutboxAggregateType) models.OutboxEvent {
	return models.OutboxEvent{
		ID:            uuid.New(),
		EventType:     eventType,
		AggregateType: aggregate,
		AggregateID:   uuid.New(),
		Payload:       json.RawMessage(`{"version":1}`),
		CreatedAt:     time.Now(),
	}
}

func newPublisherService(t *testing.T, repo *fakeOutboxRepo, ridePub, walletPub publisher) *Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Config:          &config.Config{Outbox: config.OutboxConfig{BatchSize: 10, PollInterval: time.Second}},
		Logger:          logger.New(logger.Options{Output: io.Discard}),
		Repository:      repo,
		RidePublisher:   ridePub,
		WalletPublisher: walletPub,
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestProcessBatchPublishesAndMarks(t *testing.T) {
	event := outboxEvent(enums.EventRideAccepted, enums.AggregateRide)
	repo := &fakeOutboxRepo{events: []models.OutboxEvent{event}}
	ridePub := &fakePublisher{}
	walletPub := &fakePublisher{}
	svc := newPublisherService(t, repo, ridePub, walletPub)

	processed, err := svc.processBatch(context.Background())
	if err != nil {
		t.Fatalf("processBatch: %v", err)
	}
	if processed != 1 {
		t.Fatalf("processed = %d, want 1", processed)
	}
	if len(ridePub.messages) != 1 || len(walletPub.messages) != 0 {
		t.Fatalf("ride=%d wallet=%d, want ride topic only", len(ridePub.messages), len(walletPub.messages))
	}

	msg := ridePub.messages[0]
	if msg.Attributes["event_type"] != string(enums.EventRideAccepted) {
		t.Fatalf("event_type attribute = %q", msg.Attributes["event_type"])
	}
	if msg.Attributes["event_id"] != event.ID.String() {
		t.Fatalf("event_id attribute = %q", msg.Attributes["event_id"])
	}
	if len(repo.published) != 1 || repo.published[0] != event.ID {
		t.Fatalf("published = %v", repo.published)
	}
}

func TestProcessBatchRoutesWalletEvents(t *testing.T) {
	repo := &fakeOutboxRepo{events: []models.OutboxEvent{
		outboxEvent(enums.EventCommissionDebited, enums.AggregateLedgerEntry),
		outboxEvent(enums.EventTopupDecided, enums.AggregateDriver),
		outboxEvent(enums.EventRideFinished, enums.AggregateRide),
	}}
	ridePub := &fakePublisher{}
	walletPub := &fakePublisher{}
	svc := newPublisherService(t, repo, ridePub, walletPub)

	processed, err := svc.processBatch(context.Background())
	if err != nil {
		t.Fatalf("processBatch: %v", err)
	}
	if processed != 3 {
		t.Fatalf("processed = %d, want 3", processed)
	}
	if len(walletPub.messages) != 2 {
		t.Fatalf("wallet messages = %d, want 2", len(walletPub.messages))
	}
	if len(ridePub.messages) != 1 {
		t.Fatalf("ride messages = %d, want 1", len(ridePub.messages))
	}
}

func TestProcessBatchMarksFailedOnPublishError(t *testing.T) {
	event := outboxEvent(enums.EventRideRequested, enums.AggregateRide)
	repo := &fakeOutboxRepo{events: []models.OutboxEvent{event}}
	ridePub := &fakePublisher{err: errors.New("broker unavailable")}
	svc := newPublisherService(t, repo, ridePub, &fakePublisher{})

	processed, err := svc.processBatch(context.Background())
	if err != nil {
		t.Fatalf("processBatch: %v", err)
	}
	if processed != 0 {
		t.Fatalf("processed = %d, want 0", processed)
	}
	if len(repo.published) != 0 {
		t.Fatalf("published = %v, want none", repo.published)
	}
	if repo.failed[event.ID] != "broker unavailable" {
		t.Fatalf("failed = %v", repo.failed)
	}
}

func TestNewServiceRequiresPublishers(t *testing.T) {
	_, err := NewService(ServiceParams{
		Config:     &config.Config{},
		Logger:     logger.New(logger.Options{Output: io.Discard}),
		Repository: &fakeOutboxRepo{},
	})
	if err == nil {
		t.Fatal("expected error for missing publishers")
	}
}
