// Package models defines the core data structures for users, sessions and map locations.
package models

import (
	"errors"
	"math"

	"github.com/paulmach/orb"
)

// ErrInvalidPosition is returned when a latitude/longitude pair is out of range.
var ErrInvalidPosition = errors.New("invalid position")

// Location is a named point on the map. It is the canonical marker shape
// shared by the service, the client and the import/export files.
type Location struct {
	// ID is assigned by the service on insert. Zero means "not persisted".
	ID int64 `json:"id,omitempty"`
	// Lat is the latitude in degrees.
	Lat float64 `json:"lat"`
	// Lon is the longitude in degrees.
	Lon float64 `json:"lon"`
	// Name is the human-readable label shown in the popup.
	Name string `json:"name"`
}

// Point returns the location as an orb.Point ([lon, lat]).
func (l Location) Point() orb.Point {
	return orb.Point{l.Lon, l.Lat}
}

// Validate checks that the position is a finite latitude/longitude pair.
func (l Location) Validate() error {
	return ValidatePosition(l.Lat, l.Lon)
}

// ValidatePosition reports ErrInvalidPosition unless lat is within [-90, 90]
// and lon within [-180, 180].
func ValidatePosition(lat, lon float64) error {
	if math.IsNaN(lat) || math.IsNaN(lon) || math.IsInf(lat, 0) || math.IsInf(lon, 0) {
		return ErrInvalidPosition
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return ErrInvalidPosition
	}
	return nil
}

// LocationFromPoint builds an unsaved Location from an orb.Point.
func LocationFromPoint(p orb.Point, name string) Location {
	return Location{Lat: p.Lat(), Lon: p.Lon(), Name: name}
}

// LocationPatch carries the optional fields of an update.
type LocationPatch struct {
	Name *string  `json:"name,omitempty"`
	Lat  *float64 `json:"lat,omitempty"`
	Lon  *float64 `json:"lon,omitempty"`
}

// Apply returns loc with the non-nil fields of p applied.
func (p LocationPatch) Apply(loc Location) Location {
	if p.Name != nil {
		loc.Name = *p.Name
	}
	if p.Lat != nil {
		loc.Lat = *p.Lat
	}
	if p.Lon != nil {
		loc.Lon = *p.Lon
	}
	return loc
}

// Empty reports whether the patch changes nothing.
func (p LocationPatch) Empty() bool {
	return p.Name == nil && p.Lat == nil && p.Lon == nil
}
