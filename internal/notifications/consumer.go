package notifications

import (
	"context"
	"encoding/json"
	"fmt"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/paytaksi/paytaksi-backend/pkg/db/models"
	"github.com/paytaksi/paytaksi-backend/pkg/enums"
	"github.com/paytaksi/paytaksi-backend/pkg/logger"
	"github.com/paytaksi/paytaksi-backend/pkg/outbox"
	"github.com/paytaksi/paytaksi-backend/pkg/outbox/idempotency"
)

const rideNotificationConsumer = "ride-notifications"

type repository interface {
	Create(ctx context.Context, notification *models.Notification) error
}

// Consumer watches domain events and records in-app notifications for the
// drivers and passengers they concern. Delivery to devices is out of scope;
// this layer only persists the rows.
type Consumer struct {
	repo         repository
	subscription *pubsub.Subscriber
	idempotency  *idempotency.Manager
	logg         *logger.Logger
}

// NewConsumer builds a ride notification consumer.
func NewConsumer(repo repository, subscription *pubsub.Subscriber, manager *idempotency.Manager, logg *logger.Logger) (*Consumer, error) {
	if repo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	if subscription == nil {
		return nil, fmt.Errorf("domain subscription required")
	}
	if manager == nil {
		return nil, fmt.Errorf("idempotency manager required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{
		repo:         repo,
		subscription: subscription,
		idempotency:  manager,
		logg:         logg,
	}, nil
}

// Run starts the consumer loop until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		result := c.process(ctx, msg)
		if result.nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

type processResult struct {
	ack  bool
	nack bool
}

func (c *Consumer) process(ctx context.Context, msg *pubsub.Message) processResult {
	rawType := msg.Attributes["event_type"]
	logCtx := c.logg.WithFields(ctx, map[string]any{
		"message_id": msg.ID,
		"event_type": rawType,
	})

	eventType, err := enums.ParseOutboxEventType(rawType)
	if err != nil {
		c.logg.Info(logCtx, "skipping unknown event type")
		return processResult{ack: true}
	}

	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(msg.Data, &envelope); err != nil {
		c.logg.Error(logCtx, "failed to decode envelope", err)
		return processResult{ack: true}
	}

	eventID, err := uuid.Parse(envelope.EventID)
	if err != nil {
		c.logg.Error(logCtx, "invalid event id", err)
		return processResult{ack: true}
	}

	already, err := c.idempotency.CheckAndMarkProcessed(ctx, rideNotificationConsumer, eventID)
	if err != nil {
		c.logg.Error(logCtx, "idempotency check failed", err)
		return processResult{nack: true}
	}
	if already {
		c.logg.Info(logCtx, "event already processed")
		return processResult{ack: true}
	}

	if err := c.handleEvent(ctx, eventType, envelope.Data, logCtx); err != nil {
		c.logg.Error(logCtx, "notification handling failed", err)
		_ = c.idempotency.Delete(ctx, rideNotificationConsumer, eventID)
		return processResult{nack: true}
	}

	return processResult{ack: true}
}

func (c *Consumer) handleEvent(ctx context.Context, eventType enums.OutboxEventType, data json.RawMessage, logCtx context.Context) error {
	switch eventType {
	case enums.EventOfferCreated:
		return c.handleOfferCreated(ctx, data, logCtx)
	case enums.EventRideAccepted, enums.EventRideStarted, enums.EventRideFinished,
		enums.EventRideCanceled, enums.EventRideNoDrivers:
		return c.handleRideLifecycle(ctx, eventType, data, logCtx)
	case enums.EventCommissionDebited, enums.EventTopupDecided, enums.EventBalanceAdjusted:
		return c.handleWallet(ctx, eventType, data, logCtx)
	case enums.EventDriverApprovalSet:
		return c.handleApproval(ctx, data, logCtx)
	default:
		c.logg.Info(logCtx, "event type not handled")
		return nil
	}
}

type offerPayload struct {
	OfferID      uuid.UUID `json:"offer_id"`
	RideID       uuid.UUID `json:"ride_id"`
	DriverID     uuid.UUID `json:"driver_id"`
	PickupDistKm float64   `json:"pickup_dist_km"`
}

func (c *Consumer) handleOfferCreated(ctx context.Context, data json.RawMessage, logCtx context.Context) error {
	var payload offerPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return err
	}
	if payload.DriverID == uuid.Nil {
		return fmt.Errorf("driver id missing")
	}
	notification := &models.Notification{
		RecipientKind: enums.RecipientDriver,
		RecipientID:   payload.DriverID,
		Type:          enums.NotificationTypeOffer,
		Title:         "New ride offer",
		Message:       fmt.Sprintf("Pickup is %.1f km away. Open the app to accept.", payload.PickupDistKm),
		RideID:        &payload.RideID,
	}
	if err := c.repo.Create(ctx, notification); err != nil {
		return err
	}
	c.logg.Info(logCtx, "driver notified of new offer")
	return nil
}

type ridePayload struct {
	RideID      uuid.UUID  `json:"ride_id"`
	PassengerID uuid.UUID  `json:"passenger_id"`
	DriverID    *uuid.UUID `json:"driver_id"`
	Status      string     `json:"status"`
	FareCents   int64      `json:"fare_cents"`
}

func (c *Consumer) handleRideLifecycle(ctx context.Context, eventType enums.OutboxEventType, data json.RawMessage, logCtx context.Context) error {
	var payload ridePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return err
	}
	if payload.PassengerID == uuid.Nil {
		return fmt.Errorf("passenger id missing")
	}

	var title, message string
	switch eventType {
	case enums.EventRideAccepted:
		title = "Driver found"
		message = "A driver accepted your ride and is on the way."
	case enums.EventRideStarted:
		title = "Ride started"
		message = "Your ride is underway."
	case enums.EventRideFinished:
		title = "Ride finished"
		message = fmt.Sprintf("Your ride is complete. Fare: %.2f AZN.", float64(payload.FareCents)/100)
	case enums.EventRideCanceled:
		title = "Ride canceled"
		message = "Your ride was canceled."
	case enums.EventRideNoDrivers:
		title = "No drivers available"
		message = "No drivers are available right now. Please try again shortly."
	}

	notification := &models.Notification{
		RecipientKind: enums.RecipientPassenger,
		RecipientID:   payload.PassengerID,
		Type:          enums.NotificationTypeRideUpdate,
		Title:         title,
		Message:       message,
		RideID:        &payload.RideID,
	}
	if err := c.repo.Create(ctx, notification); err != nil {
		return err
	}

	// A cancellation also concerns the assigned driver.
	if eventType == enums.EventRideCanceled && payload.DriverID != nil {
		driverNote := &models.Notification{
			RecipientKind: enums.RecipientDriver,
			RecipientID:   *payload.DriverID,
			Type:          enums.NotificationTypeRideUpdate,
			Title:         "Ride canceled",
			Message:       "The ride you accepted was canceled.",
			RideID:        &payload.RideID,
		}
		if err := c.repo.Create(ctx, driverNote); err != nil {
			return err
		}
	}

	c.logg.Info(logCtx, "ride lifecycle notification recorded")
	return nil
}

type walletPayload struct {
	DriverID          uuid.UUID  `json:"driver_id"`
	RideID            *uuid.UUID `json:"ride_id"`
	TopupID           *uuid.UUID `json:"topup_id"`
	AmountCents       int64      `json:"amount_cents"`
	BalanceAfterCents int64      `json:"balance_after_cents"`
	Status            string     `json:"status"`
}

func (c *Consumer) handleWallet(ctx context.Context, eventType enums.OutboxEventType, data json.RawMessage, logCtx context.Context) error {
	var payload walletPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return err
	}
	if payload.DriverID == uuid.Nil {
		return fmt.Errorf("driver id missing")
	}

	var title, message string
	switch eventType {
	case enums.EventCommissionDebited:
		title = "Commission charged"
		message = fmt.Sprintf("%.2f AZN commission was deducted. Balance: %.2f AZN.",
			float64(-payload.AmountCents)/100, float64(payload.BalanceAfterCents)/100)
	case enums.EventTopupDecided:
		title = "Topup " + payload.Status
		message = fmt.Sprintf("Your %.2f AZN topup request was %s.",
			float64(payload.AmountCents)/100, payload.Status)
	case enums.EventBalanceAdjusted:
		title = "Balance adjusted"
		message = fmt.Sprintf("Your balance was adjusted by %.2f AZN. Balance: %.2f AZN.",
			float64(payload.AmountCents)/100, float64(payload.BalanceAfterCents)/100)
	}

	notification := &models.Notification{
		RecipientKind: enums.RecipientDriver,
		RecipientID:   payload.DriverID,
		Type:          enums.NotificationTypeWallet,
		Title:         title,
		Message:       message,
		RideID:        payload.RideID,
	}
	if err := c.repo.Create(ctx, notification); err != nil {
		return err
	}
	c.logg.Info(logCtx, "wallet notification recorded")
	return nil
}

type approvalPayload struct {
	DriverID uuid.UUID `json:"driver_id"`
	Approval string    `json:"approval"`
}

func (c *Consumer) handleApproval(ctx context.Context, data json.RawMessage, logCtx context.Context) error {
	var payload approvalPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return err
	}
	if payload.DriverID == uuid.Nil {
		return fmt.Errorf("driver id missing")
	}

	message := "Your driver application status changed to " + payload.Approval + "."
	if payload.Approval == string(enums.DriverApprovalApproved) {
		message = "Your driver application was approved. Go online to receive offers."
	}

	notification := &models.Notification{
		RecipientKind: enums.RecipientDriver,
		RecipientID:   payload.DriverID,
		Type:          enums.NotificationTypeSystem,
		Title:         "Application update",
		Message:       message,
	}
	if err := c.repo.Create(ctx, notification); err != nil {
		return err
	}
	c.logg.Info(logCtx, "approval notification recorded")
	return nil
}
