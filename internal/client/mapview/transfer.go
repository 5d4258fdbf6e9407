package mapview

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/atinyakov/MapKeeper/internal/models"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"go.uber.org/zap"
)

var (
	// ErrNotPoint is returned when a GeoJSON feature is not a Point.
	ErrNotPoint = errors.New("feature geometry is not a point")
	// ErrFormat is returned for input that is neither a JSON array nor an object.
	ErrFormat = errors.New("expected a marker array or a GeoJSON FeatureCollection")
)

// Export writes the marker list as two-space indented JSON.
func (v *View) Export(w io.Writer) error {
	data, err := json.MarshalIndent(v.Markers(), "", "  ")
	if err != nil {
		return err
	}
	_, err = w.Write(append(data, '\n'))
	return err
}

// ExportFile writes Export's output to path.
func (v *View) ExportFile(path string) error {
	return writeFile(path, v.Export)
}

// ExportGeoJSON writes the markers as a FeatureCollection of points with
// "id" (when set) and "name" properties.
func (v *View) ExportGeoJSON(w io.Writer) error {
	fc := geojson.NewFeatureCollection()
	for _, m := range v.Markers() {
		f := geojson.NewFeature(m.Point())
		if m.ID != 0 {
			f.Properties["id"] = m.ID
		}
		f.Properties["name"] = m.Name
		fc.Append(f)
	}

	data, err := json.MarshalIndent(fc, "", "  ")
	if err != nil {
		return err
	}
	_, err = w.Write(append(data, '\n'))
	return err
}

// ExportGeoJSONFile writes ExportGeoJSON's output to path.
func (v *View) ExportGeoJSONFile(path string) error {
	return writeFile(path, v.ExportGeoJSON)
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Import replaces the marker list with the content of r. On any error the
// list is left as it was.
func (v *View) Import(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		v.log.Error("failed to read import", zap.Error(err))
		return err
	}

	markers, err := ParseMarkers(data)
	if err != nil {
		v.log.Error("failed to parse import", zap.Error(err))
		return err
	}

	v.replace(markers)
	return nil
}

// ImportFile imports the file at path.
func (v *View) ImportFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		v.log.Error("failed to open import", zap.String("path", path), zap.Error(err))
		return err
	}
	defer f.Close()
	return v.Import(f)
}

// ParseMarkers reads a marker array, whose elements may be canonical
// {lat, lon, name} or legacy {geocode, popUp} objects, or a GeoJSON
// FeatureCollection of points.
func ParseMarkers(data []byte) ([]models.Location, error) {
	data = bytes.TrimSpace(data)

	var (
		out []models.Location
		err error
	)
	switch {
	case bytes.HasPrefix(data, []byte("{")):
		out, err = parseGeoJSON(data)
	case bytes.HasPrefix(data, []byte("[")):
		out, err = parseArray(data)
	default:
		err = ErrFormat
	}
	if err != nil {
		return nil, err
	}

	for i, m := range out {
		if err := m.Validate(); err != nil {
			return nil, fmt.Errorf("marker %d: %w", i, err)
		}
	}
	return out, nil
}

func parseArray(data []byte) ([]models.Location, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}

	out := make([]models.Location, 0, len(items))
	for i, item := range items {
		loc, err := models.DecodeMarker(item)
		if err != nil {
			return nil, fmt.Errorf("marker %d: %w", i, err)
		}
		out = append(out, loc)
	}
	return out, nil
}

func parseGeoJSON(data []byte) ([]models.Location, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, err
	}

	out := make([]models.Location, 0, len(fc.Features))
	for i, f := range fc.Features {
		p, ok := f.Geometry.(orb.Point)
		if !ok {
			return nil, fmt.Errorf("feature %d: %w", i, ErrNotPoint)
		}
		loc := models.LocationFromPoint(p, "")
		if name, ok := f.Properties["name"].(string); ok {
			loc.Name = name
		}
		if id, ok := f.Properties["id"].(float64); ok {
			loc.ID = int64(id)
		}
		out = append(out, loc)
	}
	return out, nil
}
