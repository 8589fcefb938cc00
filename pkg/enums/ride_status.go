package enums

import "fmt"

// RideStatus is stored as text in Postgres, with writes guarded by IsValid.
type RideStatus string

const (
	RideStatusNew       RideStatus = "new"
	RideStatusOffered   RideStatus = "offered"
	RideStatusNoDrivers RideStatus = "no_drivers"
	RideStatusAccepted  RideStatus = "accepted"
	RideStatusStarted   RideStatus = "started"
	RideStatusFinished  RideStatus = "finished"
	RideStatusCanceled  RideStatus = "canceled"
)

var validRideStatuses = []RideStatus{
	RideStatusNew,
	RideStatusOffered,
	RideStatusNoDrivers,
	RideStatusAccepted,
	RideStatusStarted,
	RideStatusFinished,
	RideStatusCanceled,
}

// IsValid reports whether the value matches the canonical ride status enum.
func (s RideStatus) IsValid() bool {
	for _, candidate := range validRideStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed from this status.
func (s RideStatus) IsTerminal() bool {
	return s == RideStatusFinished || s == RideStatusCanceled
}

// ParseRideStatus converts raw input into RideStatus.
func ParseRideStatus(value string) (RideStatus, error) {
	for _, candidate := range validRideStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid ride status %q", value)
}
