// Package geo locates the device once so the map can be centred on it.
package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/atinyakov/MapKeeper/internal/models"
	"github.com/paulmach/orb"
)

// DefaultCenter is used until (or unless) the device is located: Milan.
var DefaultCenter = orb.Point{9.1859243, 45.4654219}

// ErrUnavailable is returned when the lookup answers without a position.
var ErrUnavailable = errors.New("position unavailable")

// Locator returns the device position as [lon, lat].
type Locator interface {
	Locate(ctx context.Context) (orb.Point, error)
}

// StaticLocator always answers with the same position, or Err when set.
type StaticLocator struct {
	Point orb.Point
	Err   error
}

// Locate implements Locator.
func (s StaticLocator) Locate(context.Context) (orb.Point, error) {
	if s.Err != nil {
		return orb.Point{}, s.Err
	}
	return s.Point, nil
}

// HTTPLocator queries an ip-api compatible endpoint answering
// {"status":"success","lat":..,"lon":..}.
type HTTPLocator struct {
	URL    string
	Client *http.Client
}

type ipAPIResponse struct {
	Status  string  `json:"status"`
	Message string  `json:"message"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

// Locate implements Locator.
func (l *HTTPLocator) Locate(ctx context.Context) (orb.Point, error) {
	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.URL, nil)
	if err != nil {
		return orb.Point{}, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return orb.Point{}, fmt.Errorf("geolocate: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return orb.Point{}, fmt.Errorf("geolocate: unexpected status %d", resp.StatusCode)
	}

	var body ipAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return orb.Point{}, fmt.Errorf("geolocate: decode: %w", err)
	}
	if body.Status != "" && body.Status != "success" {
		return orb.Point{}, fmt.Errorf("%w: %s", ErrUnavailable, body.Message)
	}
	if err := models.ValidatePosition(body.Lat, body.Lon); err != nil {
		return orb.Point{}, err
	}
	return orb.Point{body.Lon, body.Lat}, nil
}
