package mapview

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/atinyakov/MapKeeper/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestExportImportRoundTrip(t *testing.T) {
	lists := map[string][]models.Location{
		"empty": {},
		"mixed": {
			{ID: 1, Lon: 45.1, Lat: 9.2, Name: "A"},
			{Lon: 45.5, Lat: 9.3, Name: "ciao"},
		},
	}
	for name, list := range lists {
		t.Run(name, func(t *testing.T) {
			src := mounted(t, &fakeStore{}, list...)
			var buf bytes.Buffer
			require.NoError(t, src.Export(&buf))

			dst := New(&fakeStore{}, nil, nil, zap.NewNop())
			require.NoError(t, dst.Import(&buf))
			assert.Equal(t, src.Markers(), dst.Markers())
		})
	}
}

func TestGeoJSONRoundTrip(t *testing.T) {
	list := []models.Location{
		{ID: 7, Lon: 9.18, Lat: 45.46, Name: "Duomo"},
		{Lon: 12.49, Lat: 41.89, Name: "Colosseo"},
	}
	src := mounted(t, &fakeStore{}, list...)

	var buf bytes.Buffer
	require.NoError(t, src.ExportGeoJSON(&buf))

	var raw map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &raw))
	assert.Equal(t, "FeatureCollection", raw["type"])

	dst := New(&fakeStore{}, nil, nil, zap.NewNop())
	require.NoError(t, dst.Import(&buf))
	assert.Equal(t, list, dst.Markers())
}

func TestImport_Legacy(t *testing.T) {
	v := New(&fakeStore{}, nil, nil, zap.NewNop())
	require.NoError(t, v.Import(strings.NewReader(`[{"geocode":[45.46,9.18],"popUp":"Duomo"}]`)))

	assert.Equal(t, []models.Location{{Lat: 45.46, Lon: 9.18, Name: "Duomo"}}, v.Markers())
}

func TestImport_InvalidLeavesListUnchanged(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"not json", `{{ nope`},
		{"truncated array", `[{"lat":1,`},
		{"bad legacy geocode", `[{"geocode":[1],"popUp":"x"}]`},
		{"out of range", `[{"lat":95,"lon":0,"name":"x"}]`},
		{"line feature", `{"type":"FeatureCollection","features":[{"type":"Feature","geometry":{"type":"LineString","coordinates":[[0,0],[1,1]]},"properties":{}}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zap.ErrorLevel)
			v := New(&fakeStore{}, staticSource(models.Location{ID: 1, Name: "keep"}), nil, zap.New(core))
			<-v.Mount(t.Context())

			err := v.Import(strings.NewReader(tt.input))
			assert.Error(t, err)
			assert.Equal(t, []models.Location{{ID: 1, Name: "keep"}}, v.Markers())
			assert.Equal(t, 1, logs.FilterMessage("failed to parse import").Len())
		})
	}
}

func TestImport_WrongShapeLeavesListUnchanged(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"unknown keys", `[{"foo":1},{"bar":"x"}]`},
		{"canonical then junk", `[{"lat":1,"lon":2,"name":"a"},{"foo":1}]`},
		{"missing lon", `[{"lat":1,"name":"a"}]`},
		{"scalars", `[1,2]`},
		{"top-level string", `"markers"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := New(&fakeStore{}, staticSource(models.Location{ID: 1, Lat: 5, Lon: 6, Name: "keep"}), nil, zap.NewNop())
			<-v.Mount(t.Context())

			require.Error(t, v.Import(strings.NewReader(tt.input)))
			assert.Equal(t, []models.Location{{ID: 1, Lat: 5, Lon: 6, Name: "keep"}}, v.Markers())
		})
	}
}

func TestImport_MixedCanonicalAndLegacy(t *testing.T) {
	v := New(&fakeStore{}, nil, nil, zap.NewNop())
	input := `[{"id":3,"lat":45.47,"lon":9.17,"name":"Castello"},{"geocode":[45.4,9.1],"popUp":"Duomo"}]`

	require.NoError(t, v.Import(strings.NewReader(input)))
	assert.Equal(t, []models.Location{
		{ID: 3, Lat: 45.47, Lon: 9.17, Name: "Castello"},
		{Lat: 45.4, Lon: 9.1, Name: "Duomo"},
	}, v.Markers())
}

func TestImportFile_Missing(t *testing.T) {
	v := New(&fakeStore{}, nil, nil, zap.NewNop())
	assert.Error(t, v.ImportFile("/no/such/markers.json"))
}
