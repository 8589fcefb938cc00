package enums

import "fmt"

// DriverApproval is stored as text in Postgres, with writes guarded by IsValid.
type DriverApproval string

const (
	DriverApprovalPending  DriverApproval = "pending"
	DriverApprovalApproved DriverApproval = "approved"
	DriverApprovalRejected DriverApproval = "rejected"
)

var validDriverApprovals = []DriverApproval{
	DriverApprovalPending,
	DriverApprovalApproved,
	DriverApprovalRejected,
}

// IsValid reports whether the value matches the canonical driver approval enum.
func (a DriverApproval) IsValid() bool {
	for _, candidate := range validDriverApprovals {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseDriverApproval converts raw input into DriverApproval.
func ParseDriverApproval(value string) (DriverApproval, error) {
	for _, candidate := range validDriverApprovals {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid driver approval %q", value)
}
