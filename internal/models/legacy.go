package models

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrLegacyGeocode is returned for a legacy marker whose geocode is not a [lat, lng] pair.
var ErrLegacyGeocode = errors.New("geocode must be [lat, lng]")

// LegacyMarker is the flat-file marker shape served by /data.json and found in
// older exports: {"geocode": [lat, lng], "popUp": "label"}.
type LegacyMarker struct {
	Geocode []float64 `json:"geocode"`
	PopUp   string    `json:"popUp"`
}

// Location migrates the legacy marker to the canonical shape. No ID is assigned.
func (m LegacyMarker) Location() (Location, error) {
	if len(m.Geocode) != 2 {
		return Location{}, ErrLegacyGeocode
	}
	return Location{Lat: m.Geocode[0], Lon: m.Geocode[1], Name: m.PopUp}, nil
}

// MigrateLegacy converts a slice of legacy markers, failing on the first malformed entry.
func MigrateLegacy(in []LegacyMarker) ([]Location, error) {
	out := make([]Location, 0, len(in))
	for i, m := range in {
		loc, err := m.Location()
		if err != nil {
			return nil, fmt.Errorf("marker %d: %w", i, err)
		}
		out = append(out, loc)
	}
	return out, nil
}

// ErrMarkerShape is returned for an element that is neither {lat, lon, ...}
// nor {geocode, popUp}.
var ErrMarkerShape = errors.New("marker needs lat and lon, or geocode")

// DecodeMarker reads one marker object in either the canonical or the legacy
// shape. Legacy entries are migrated.
func DecodeMarker(data []byte) (Location, error) {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return Location{}, err
	}

	if _, ok := keys["geocode"]; ok {
		var m LegacyMarker
		if err := json.Unmarshal(data, &m); err != nil {
			return Location{}, err
		}
		return m.Location()
	}

	_, hasLat := keys["lat"]
	_, hasLon := keys["lon"]
	if !hasLat || !hasLon {
		return Location{}, ErrMarkerShape
	}
	var loc Location
	if err := json.Unmarshal(data, &loc); err != nil {
		return Location{}, err
	}
	return loc, nil
}
