// Package pricing computes ride fares and platform commission. Amounts are
// calculated with decimal arithmetic and returned as integer cents; fare and
// commission are each rounded half-up to two decimal places independently.
package pricing

import "github.com/shopspring/decimal"

// Config carries the pricing parameters frozen into a ride at creation time.
type Config struct {
	BaseFare          decimal.Decimal
	IncludedKm        decimal.Decimal
	PerKmAfter        decimal.Decimal
	CommissionPercent decimal.Decimal
}

// Quote is the fare breakdown for a single ride.
type Quote struct {
	FareCents       int64
	CommissionCents int64
}

var oneHundred = decimal.NewFromInt(100)

// Calculate returns the fare and commission for the given distance. Negative
// distances clamp to zero. Fare equals the base fare up to the included
// distance; beyond it every kilometer is billed at the per-km rate.
func Calculate(distanceKm decimal.Decimal, cfg Config) Quote {
	if distanceKm.IsNegative() {
		distanceKm = decimal.Zero
	}

	fare := cfg.BaseFare
	if distanceKm.GreaterThan(cfg.IncludedKm) {
		extra := distanceKm.Sub(cfg.IncludedKm).Mul(cfg.PerKmAfter)
		fare = fare.Add(extra)
	}
	fare = fare.Round(2)

	commission := fare.Mul(cfg.CommissionPercent).Div(oneHundred).Round(2)

	return Quote{
		FareCents:       toCents(fare),
		CommissionCents: toCents(commission),
	}
}

// CentsToDecimal converts an integer cents amount back into a 2dp decimal.
func CentsToDecimal(cents int64) decimal.Decimal {
	return decimal.NewFromInt(cents).Div(oneHundred)
}

func toCents(amount decimal.Decimal) int64 {
	return amount.Mul(oneHundred).IntPart()
}
