package outbox

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ActorRef identifies who produced the event.
type ActorRef struct {
	Kind string    `json:"kind"`
	ID   uuid.UUID `json:"id"`
}

// DriverActor builds an ActorRef for a driver-initiated event.
func DriverActor(id uuid.UUID) *ActorRef {
	return &ActorRef{Kind: "driver", ID: id}
}

// PassengerActor builds an ActorRef for a passenger-initiated event.
func PassengerActor(id uuid.UUID) *ActorRef {
	return &ActorRef{Kind: "passenger", ID: id}
}

// AdminActor builds an ActorRef for an admin-initiated event.
func AdminActor(id uuid.UUID) *ActorRef {
	return &ActorRef{Kind: "admin", ID: id}
}

// PayloadEnvelope is the stable payload structure stored in outbox_events.
type PayloadEnvelope struct {
	Version    int             `json:"version"`
	EventID    string          `json:"eventId"`
	OccurredAt time.Time       `json:"occurredAt"`
	Actor      *ActorRef       `json:"actor,omitempty"`
	Data       json.RawMessage `json:"data"`
}
