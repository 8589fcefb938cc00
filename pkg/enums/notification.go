package enums

import "fmt"

// NotificationType is stored as text in Postgres, with writes guarded by IsValid.
type NotificationType string

const (
	NotificationTypeRideUpdate NotificationType = "ride_update"
	NotificationTypeOffer      NotificationType = "offer"
	NotificationTypeWallet     NotificationType = "wallet"
	NotificationTypeSystem     NotificationType = "system"
)

var validNotificationTypes = []NotificationType{
	NotificationTypeRideUpdate,
	NotificationTypeOffer,
	NotificationTypeWallet,
	NotificationTypeSystem,
}

// IsValid reports whether the value matches the canonical notification type enum.
func (n NotificationType) IsValid() bool {
	for _, candidate := range validNotificationTypes {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNotificationType converts raw input into NotificationType.
func ParseNotificationType(value string) (NotificationType, error) {
	for _, candidate := range validNotificationTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification type %q", value)
}

// RecipientKind distinguishes who a notification is addressed to.
type RecipientKind string

const (
	RecipientDriver    RecipientKind = "driver"
	RecipientPassenger RecipientKind = "passenger"
)

// IsValid reports whether the value matches a known recipient kind.
func (r RecipientKind) IsValid() bool {
	return r == RecipientDriver || r == RecipientPassenger
}
