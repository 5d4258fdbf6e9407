package cluster

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestByTile(t *testing.T) {
	points := []orb.Point{
		{9.1900, 45.4640},  // Duomo
		{12.4964, 41.9028}, // Rome
		{9.1910, 45.4650},  // next to the Duomo
	}

	t.Run("city zoom keeps Milan together", func(t *testing.T) {
		got, err := ByTile(points, 10)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, []int{0, 2}, got[0].Members)
		assert.Equal(t, 2, got[0].Count())
		assert.InDelta(t, 9.1905, got[0].Center.Lon(), 1e-9)
		assert.InDelta(t, 45.4645, got[0].Center.Lat(), 1e-9)
		assert.Equal(t, []int{1}, got[1].Members)
		assert.Equal(t, points[1], got[1].Center)
	})

	t.Run("world zoom is one cluster", func(t *testing.T) {
		got, err := ByTile(points, 0)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, 3, got[0].Count())
	})

	t.Run("street zoom splits everything", func(t *testing.T) {
		got, err := ByTile(points, 20)
		require.NoError(t, err)
		assert.Len(t, got, 3)
	})
}

func TestByTile_Empty(t *testing.T) {
	got, err := ByTile(nil, 5)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestByTile_BadZoom(t *testing.T) {
	_, err := ByTile([]orb.Point{{0, 0}}, -1)
	assert.ErrorIs(t, err, ErrZoom)
	_, err = ByTile([]orb.Point{{0, 0}}, MaxZoom+1)
	assert.ErrorIs(t, err, ErrZoom)
}
