package main

import (
	"context"
	"errors"
	"time"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/paytaksi/paytaksi-backend/pkg/config"
	"github.com/paytaksi/paytaksi-backend/pkg/db/models"
	"github.com/paytaksi/paytaksi-backend/pkg/enums"
	"github.com/paytaksi/paytaksi-backend/pkg/logger"
	"github.com/paytaksi/paytaksi-backend/pkg/metrics"
)

const (
	defaultBatchSize      = 50
	defaultPollInterval   = 2 * time.Second
	defaultPublishTimeout = 15 * time.Second
)

type outboxRepository interface {
	FetchUnpublished(limit int) ([]models.OutboxEvent, error)
	MarkPublished(id uuid.UUID) error
	MarkFailed(id uuid.UUID, err error) error
}

type publisher interface {
	Publish(ctx context.Context, msg *pubsub.Message) publishResult
}

type publishResult interface {
	Get(ctx context.Context) (string, error)
}

type gcpPublisher struct {
	inner *pubsub.Publisher
}

func (p gcpPublisher) Publish(ctx context.Context, msg *pubsub.Message) publishResult {
	return p.inner.Publish(ctx, msg)
}

// walletEvents fan out on the wallet topic; everything else rides the
// ride topic so the notifications subscription sees the full lifecycle.
var walletEvents = map[enums.OutboxEventType]struct{}{
	enums.EventCommissionDebited: {},
	enums.EventTopupRequested:    {},
	enums.EventTopupDecided:      {},
	enums.EventBalanceAdjusted:   {},
}

type ServiceParams struct {
	Config          *config.Config
	Logger          *logger.Logger
	Repository      outboxRepository
	RidePublisher   publisher
	WalletPublisher publisher
	Metrics         *metrics.DispatchMetrics
}

// Service drains the outbox table and relays events to Pub/Sub.
// Rows are only marked published after the broker acks, so delivery
// is at-least-once and consumers must dedupe on event id.
type Service struct {
	cfg          *config.Config
	logg         *logger.Logger
	repo         outboxRepository
	ridePub      publisher
	walletPub    publisher
	m            *metrics.DispatchMetrics
	batchSize    int
	pollInterval time.Duration
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Config == nil {
		return nil, errors.New("config is required")
	}
	if params.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if params.Repository == nil {
		return nil, errors.New("outbox repository is required")
	}
	if params.RidePublisher == nil || params.WalletPublisher == nil {
		return nil, errors.New("ride and wallet publishers are required")
	}

	batch := params.Config.Outbox.BatchSize
	if batch <= 0 {
		batch = defaultBatchSize
	}
	interval := params.Config.Outbox.PollInterval
	if interval <= 0 {
		interval = defaultPollInterval
	}

	return &Service{
		cfg:          params.Config,
		logg:         params.Logger,
		repo:         params.Repository,
		ridePub:      params.RidePublisher,
		walletPub:    params.WalletPublisher,
		m:            params.Metrics,
		batchSize:    batch,
		pollInterval: interval,
	}, nil
}

func (s *Service) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		processed, err := s.processBatch(ctx)
		if err != nil {
			s.logg.Error(ctx, "outbox batch failed", err)
		}
		if processed > 0 {
			// Drain the backlog before going back to sleep.
			continue
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (s *Service) processBatch(ctx context.Context) (int, error) {
	events, err := s.repo.FetchUnpublished(s.batchSize)
	if err != nil {
		return 0, err
	}

	published := 0
	for _, event := range events {
		if ctx.Err() != nil {
			return published, ctx.Err()
		}
		if err := s.publishOne(ctx, event); err != nil {
			s.markFailed(ctx, event, err)
			continue
		}
		if err := s.repo.MarkPublished(event.ID); err != nil {
			s.logg.Error(logEvent(ctx, s.logg, event), "failed to mark outbox event published", err)
			continue
		}
		if s.m != nil {
			s.m.IncOutboxPublished()
		}
		published++
	}
	return published, nil
}

func (s *Service) publishOne(ctx context.Context, event models.OutboxEvent) error {
	target := s.ridePub
	if _, ok := walletEvents[event.EventType]; ok {
		target = s.walletPub
	}

	publishCtx, cancel := context.WithTimeout(ctx, defaultPublishTimeout)
	defer cancel()

	result := target.Publish(publishCtx, &pubsub.Message{
		Data: event.Payload,
		Attributes: map[string]string{
			"event_id":       event.ID.String(),
			"event_type":     string(event.EventType),
			"aggregate_type": string(event.AggregateType),
			"aggregate_id":   event.AggregateID.String(),
		},
	})
	if result == nil {
		return errors.New("publisher returned nil result")
	}
	_, err := result.Get(publishCtx)
	return err
}

func (s *Service) markFailed(ctx context.Context, event models.OutboxEvent, cause error) {
	if s.m != nil {
		s.m.IncOutboxFailure()
	}
	s.logg.Error(logEvent(ctx, s.logg, event), "failed to publish outbox event", cause)
	if err := s.repo.MarkFailed(event.ID, cause); err != nil {
		s.logg.Error(ctx, "failed to record outbox publish failure", err)
	}
}

func logEvent(ctx context.Context, logg *logger.Logger, event models.OutboxEvent) context.Context {
	return logg.WithFields(ctx, map[string]any{
		"event_id":   event.ID.String(),
		"event_type": string(event.EventType),
	})
}
