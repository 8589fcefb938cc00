package enums

import "fmt"

// LedgerEntryKind is stored as text in Postgres, with writes guarded by IsValid.
type LedgerEntryKind string

const (
	LedgerEntryKindTopup      LedgerEntryKind = "topup"
	LedgerEntryKindCommission LedgerEntryKind = "commission"
	LedgerEntryKindAdjustment LedgerEntryKind = "adjustment"
)

var validLedgerEntryKinds = []LedgerEntryKind{
	LedgerEntryKindTopup,
	LedgerEntryKindCommission,
	LedgerEntryKindAdjustment,
}

// IsValid reports whether the value matches the canonical ledger entry kind enum.
func (k LedgerEntryKind) IsValid() bool {
	for _, candidate := range validLedgerEntryKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// ParseLedgerEntryKind converts raw input into LedgerEntryKind.
func ParseLedgerEntryKind(value string) (LedgerEntryKind, error) {
	for _, candidate := range validLedgerEntryKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid ledger entry kind %q", value)
}
