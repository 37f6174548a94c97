package attendance

import (
	"fmt"

	"rollcall/pkg/geo"
)

// MissingLocationDistance is the sentinel distance reported when the
// student's location was required but not provided. It is distinct from
// any out-of-range distance, which is always >= 0.
const MissingLocationDistance = -1.0

// DefaultRadiusMeters applies to courses that enable geofencing without
// configuring a radius.
const DefaultRadiusMeters = 100.0

// Geofence is a course's optional circular check-in boundary.
type Geofence struct {
	Lat          *float64 `json:"latitude"`
	Lon          *float64 `json:"longitude"`
	RadiusMeters float64  `json:"radius_meters"`
}

// Enabled reports whether the course has a fence center configured.
func (g Geofence) Enabled() bool {
	return g.Lat != nil && g.Lon != nil
}

// ValidateLocation decides whether a reported position is acceptable for
// the fence and returns the computed distance in meters, rounded to two
// decimals.
//
// Precedence: a disabled fence accepts everything, including absent
// coordinates, before the missing-location check applies. overrideRadius
// replaces the fence radius when positive.
func ValidateLocation(fence Geofence, lat, lon *float64, overrideRadius float64) (bool, float64, error) {
	if !fence.Enabled() {
		return true, 0, nil
	}

	if lat == nil || lon == nil {
		return false, MissingLocationDistance, nil
	}

	if err := geo.CheckCoordinate(*fence.Lat, *fence.Lon); err != nil {
		return false, 0, fmt.Errorf("course geofence center: %w", err)
	}
	if err := geo.CheckCoordinate(*lat, *lon); err != nil {
		return false, 0, fmt.Errorf("student location: %w", err)
	}

	radius := fence.RadiusMeters
	if overrideRadius > 0 {
		radius = overrideRadius
	}
	if radius <= 0 {
		radius = DefaultRadiusMeters
	}

	distance := geo.Round2(geo.Distance(*fence.Lat, *fence.Lon, *lat, *lon))
	return distance <= radius, distance, nil
}
