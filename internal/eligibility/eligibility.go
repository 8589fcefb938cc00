// Package eligibility decides which drivers may receive an offer for a ride.
// The rules mirror the acceptance gate: only approved, online drivers with a
// fresh position, inside the search radius, and a balance above the block
// threshold are candidates.
package eligibility

import (
	"sort"
	"time"

	"github.com/paytaksi/paytaksi-backend/pkg/db/models"
	"github.com/paytaksi/paytaksi-backend/pkg/enums"
	"github.com/paytaksi/paytaksi-backend/pkg/geo"
	"github.com/paytaksi/paytaksi-backend/pkg/types"
)

// Rules carries the thresholds applied when filtering candidates.
type Rules struct {
	SearchRadiusKm      float64
	PositionFreshness   time.Duration
	BlockThresholdCents int64
	Now                 time.Time
}

// Candidate pairs a driver with their distance to the pickup point.
type Candidate struct {
	Driver       models.Driver
	PickupDistKm float64
}

// Filter returns the ranked candidates for a pickup point. Ordering is by
// pickup distance ascending; ties break on driver ID ascending so repeated
// dispatch runs produce the same ranking.
func Filter(drivers []models.Driver, pickup types.LatLng, rules Rules) []Candidate {
	now := rules.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	candidates := make([]Candidate, 0, len(drivers))
	for _, d := range drivers {
		if !Eligible(d, rules, now) {
			continue
		}
		pos := types.LatLng{Lat: *d.LastLat, Lng: *d.LastLng}
		dist := geo.DistanceKm(pos, pickup)
		if rules.SearchRadiusKm > 0 && dist > rules.SearchRadiusKm {
			continue
		}
		candidates = append(candidates, Candidate{Driver: d, PickupDistKm: dist})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].PickupDistKm != candidates[j].PickupDistKm {
			return candidates[i].PickupDistKm < candidates[j].PickupDistKm
		}
		return candidates[i].Driver.ID.String() < candidates[j].Driver.ID.String()
	})
	return candidates
}

// Eligible reports whether a single driver passes every gate except distance.
func Eligible(d models.Driver, rules Rules, now time.Time) bool {
	if d.Approval != enums.DriverApprovalApproved {
		return false
	}
	if !d.Online {
		return false
	}
	if d.BalanceCents <= rules.BlockThresholdCents {
		return false
	}
	if d.LastLat == nil || d.LastLng == nil || d.LastPositionAt == nil {
		return false
	}
	if rules.PositionFreshness > 0 && now.Sub(*d.LastPositionAt) > rules.PositionFreshness {
		return false
	}
	return true
}
