package enums

import "fmt"

// TopupMethod is stored as text in Postgres, with writes guarded by IsValid.
type TopupMethod string

const (
	TopupMethodCard TopupMethod = "card"
	TopupMethodM10  TopupMethod = "m10"
)

var validTopupMethods = []TopupMethod{
	TopupMethodCard,
	TopupMethodM10,
}

// IsValid reports whether the value matches the canonical topup method enum.
func (m TopupMethod) IsValid() bool {
	for _, candidate := range validTopupMethods {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseTopupMethod converts raw input into TopupMethod.
func ParseTopupMethod(value string) (TopupMethod, error) {
	for _, candidate := range validTopupMethods {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid topup method %q", value)
}
