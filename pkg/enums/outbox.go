package enums

import "fmt"

// OutboxAggregateType is stored as text in Postgres, with writes guarded by IsValid.
type OutboxAggregateType string

const (
	AggregateRide        OutboxAggregateType = "ride"
	AggregateOffer       OutboxAggregateType = "offer"
	AggregateDriver      OutboxAggregateType = "driver"
	AggregateLedgerEntry OutboxAggregateType = "ledger_entry"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateRide,
	AggregateOffer,
	AggregateDriver,
	AggregateLedgerEntry,
}

// IsValid reports whether the value matches the canonical aggregate_type enum.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType is stored as text in Postgres, with writes guarded by IsValid.
type OutboxEventType string

const (
	EventRideRequested      OutboxEventType = "ride_requested"
	EventRideOffered        OutboxEventType = "ride_offered"
	EventRideNoDrivers      OutboxEventType = "ride_no_drivers"
	EventOfferCreated       OutboxEventType = "offer_created"
	EventOfferDeclined      OutboxEventType = "offer_declined"
	EventRideAccepted       OutboxEventType = "ride_accepted"
	EventRideStarted        OutboxEventType = "ride_started"
	EventRideFinished       OutboxEventType = "ride_finished"
	EventRideCanceled       OutboxEventType = "ride_canceled"
	EventCommissionDebited  OutboxEventType = "commission_debited"
	EventTopupRequested     OutboxEventType = "topup_requested"
	EventTopupDecided       OutboxEventType = "topup_decided"
	EventDriverApprovalSet  OutboxEventType = "driver_approval_set"
	EventBalanceAdjusted    OutboxEventType = "balance_adjusted"
	EventNotificationQueued OutboxEventType = "notification_queued"
)

var validOutboxEventTypes = []OutboxEventType{
	EventRideRequested,
	EventRideOffered,
	EventRideNoDrivers,
	EventOfferCreated,
	EventOfferDeclined,
	EventRideAccepted,
	EventRideStarted,
	EventRideFinished,
	EventRideCanceled,
	EventCommissionDebited,
	EventTopupRequested,
	EventTopupDecided,
	EventDriverApprovalSet,
	EventBalanceAdjusted,
	EventNotificationQueued,
}

// IsValid reports whether the value matches the canonical event_type enum.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}
