package enums

import "fmt"

// CancelActor records who requested a ride cancellation.
type CancelActor string

const (
	CancelActorPassenger CancelActor = "passenger"
	CancelActorAdmin     CancelActor = "admin"
)

var validCancelActors = []CancelActor{
	CancelActorPassenger,
	CancelActorAdmin,
}

// IsValid reports whether the value matches a known cancel actor.
func (a CancelActor) IsValid() bool {
	for _, candidate := range validCancelActors {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseCancelActor converts raw input into CancelActor.
func ParseCancelActor(value string) (CancelActor, error) {
	for _, candidate := range validCancelActors {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid cancel actor %q", value)
}
