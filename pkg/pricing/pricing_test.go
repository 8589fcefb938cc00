package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
)

func defaultConfig() Config {
	return Config{
		BaseFare:          decimal.RequireFromString("3.50"),
		IncludedKm:        decimal.RequireFromString("3"),
		PerKmAfter:        decimal.RequireFromString("0.40"),
		CommissionPercent: decimal.RequireFromString("10"),
	}
}

func TestCalculateFiveKilometers(t *testing.T) {
	q := Calculate(decimal.RequireFromString("5.0"), defaultConfig())

	if q.FareCents != 430 {
		t.Fatalf("fare = %d cents, want 430", q.FareCents)
	}
	if q.CommissionCents != 43 {
		t.Fatalf("commission = %d cents, want 43", q.CommissionCents)
	}
}

func TestCalculateWithinIncludedDistance(t *testing.T) {
	for _, d := range []string{"0", "1.2", "3"} {
		q := Calculate(decimal.RequireFromString(d), defaultConfig())
		if q.FareCents != 350 {
			t.Fatalf("distance %s: fare = %d cents, want base fare", d, q.FareCents)
		}
		if q.CommissionCents != 35 {
			t.Fatalf("distance %s: commission = %d cents, want 35", d, q.CommissionCents)
		}
	}
}

func TestCalculateClampsNegativeDistance(t *testing.T) {
	q := Calculate(decimal.RequireFromString("-4"), defaultConfig())
	if q.FareCents != 350 {
		t.Fatalf("negative distance must clamp to zero, got fare %d", q.FareCents)
	}
}

func TestCalculateRoundsHalfUp(t *testing.T) {
	// 3.0125 km over the included distance: 3.50 + 0.0125*0.40 = 3.505 → 3.51.
	cfg := defaultConfig()
	q := Calculate(decimal.RequireFromString("6.0125"), cfg)
	if q.FareCents != 351 {
		t.Fatalf("fare = %d cents, want 351 (half-up)", q.FareCents)
	}
}

func TestCalculateNonDecreasing(t *testing.T) {
	cfg := defaultConfig()
	prev := int64(0)
	for _, d := range []string{"0", "0.5", "2.99", "3", "3.01", "4", "10", "42.5"} {
		q := Calculate(decimal.RequireFromString(d), cfg)
		if q.FareCents < prev {
			t.Fatalf("fare decreased at distance %s: %d < %d", d, q.FareCents, prev)
		}
		if q.FareCents < 350 {
			t.Fatalf("fare below base at distance %s", d)
		}
		prev = q.FareCents
	}
}
