package types

import "fmt"

// LatLng is a WGS84 coordinate pair. It is embedded into ride and driver rows
// as plain numeric columns rather than a geometry type so the same models work
// against Postgres and the sqlite test harness.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Valid reports whether the pair is inside WGS84 bounds.
func (p LatLng) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

func (p LatLng) String() string {
	return fmt.Sprintf("%.6f,%.6f", p.Lat, p.Lng)
}
