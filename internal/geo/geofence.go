// Package geo implements great-circle distance and circular geofence checks.
package geo

import (
	"errors"
	"fmt"
	"math"
)

// EarthRadiusMeters is the mean Earth radius used by Distance.
const EarthRadiusMeters = 6371000.0

// ErrInvalidArgument is returned for non-finite or out-of-range coordinates and
// non-positive radii.
var ErrInvalidArgument = errors.New("invalid geofence argument")

// Point is a coordinate in decimal degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Validate checks that p is a finite coordinate within WGS84 bounds.
func (p Point) Validate() error {
	if !finite(p.Lat) || !finite(p.Lng) {
		return fmt.Errorf("%w: coordinate (%v, %v) is not finite", ErrInvalidArgument, p.Lat, p.Lng)
	}
	if p.Lat < -90 || p.Lat > 90 || p.Lng < -180 || p.Lng > 180 {
		return fmt.Errorf("%w: coordinate (%v, %v) out of range", ErrInvalidArgument, p.Lat, p.Lng)
	}
	return nil
}

// Result is the outcome of a geofence check. Distance is rounded to centimetres.
type Result struct {
	IsInside bool
	Distance float64
}

// Distance returns the Haversine distance between a and b in meters. The value
// is not rounded.
func Distance(a, b Point) float64 {
	phi1 := toRadians(a.Lat)
	phi2 := toRadians(b.Lat)
	dPhi := toRadians(b.Lat - a.Lat)
	dLambda := toRadians(b.Lng - a.Lng)

	sinPhi := math.Sin(dPhi / 2)
	sinLambda := math.Sin(dLambda / 2)
	h := sinPhi*sinPhi + math.Cos(phi1)*math.Cos(phi2)*sinLambda*sinLambda
	// Float error can push h just past 1 for antipodal points.
	h = math.Min(1, math.Max(0, h))

	return 2 * EarthRadiusMeters * math.Asin(math.Sqrt(h))
}

// CheckGeofence reports whether point lies within radius meters of center.
// The boundary is closed: a point exactly radius away is inside.
func CheckGeofence(point, center Point, radius float64) (Result, error) {
	if !finite(radius) || radius <= 0 {
		return Result{}, fmt.Errorf("%w: radius must be greater than 0, got %v", ErrInvalidArgument, radius)
	}
	if err := point.Validate(); err != nil {
		return Result{}, err
	}
	if err := center.Validate(); err != nil {
		return Result{}, err
	}

	d := Distance(point, center)
	return Result{
		IsInside: d <= radius,
		Distance: Round2(d),
	}, nil
}

// Round2 rounds v to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
