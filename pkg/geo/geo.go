// Package geo provides great-circle distance math for eligibility checks.
// Distances use the haversine formula on a spherical Earth model; adequate
// for short urban distances, not a substitute for road-network routing.
package geo

import (
	"math"

	"github.com/paytaksi/paytaksi-backend/pkg/types"
)

// EarthRadiusKm is the mean Earth radius used by the spherical model.
const EarthRadiusKm = 6371.0

// DistanceKm returns the haversine distance between two coordinates in kilometers.
func DistanceKm(a, b types.LatLng) float64 {
	dLat := radians(b.Lat - a.Lat)
	dLng := radians(b.Lng - a.Lng)

	sinLat := math.Sin(dLat / 2)
	sinLng := math.Sin(dLng / 2)
	h := sinLat*sinLat + math.Cos(radians(a.Lat))*math.Cos(radians(b.Lat))*sinLng*sinLng
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return EarthRadiusKm * c
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
