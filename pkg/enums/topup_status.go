package enums

import "fmt"

// TopupStatus is stored as text in Postgres, with writes guarded by IsValid. Only ledger
// entries of kind topup carry a non-empty status; commission and adjustment
// entries are effective immediately and never await a decision.
type TopupStatus string

const (
	TopupStatusPending  TopupStatus = "pending"
	TopupStatusApproved TopupStatus = "approved"
	TopupStatusRejected TopupStatus = "rejected"
)

var validTopupStatuses = []TopupStatus{
	TopupStatusPending,
	TopupStatusApproved,
	TopupStatusRejected,
}

// IsValid reports whether the value matches the canonical topup status enum.
func (s TopupStatus) IsValid() bool {
	for _, candidate := range validTopupStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseTopupStatus converts raw input into TopupStatus.
func ParseTopupStatus(value string) (TopupStatus, error) {
	for _, candidate := range validTopupStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid topup status %q", value)
}
