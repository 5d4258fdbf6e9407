// Package cluster groups map points that fall on the same Web Mercator tile.
package cluster

import (
	"errors"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"
)

// MaxZoom is the deepest zoom level accepted.
const MaxZoom = 22

// ErrZoom is returned for a zoom outside [0, MaxZoom].
var ErrZoom = errors.New("zoom out of range")

// Cluster is a group of points sharing a tile.
type Cluster struct {
	Tile maptile.Tile
	// Center is the centre of the members' bounding box.
	Center orb.Point
	// Members are indices into the input slice, ascending.
	Members []int
}

// Count is the number of points in the cluster.
func (c Cluster) Count() int {
	return len(c.Members)
}

// ByTile groups points by tile at zoom. Clusters are ordered by their first
// member, so the output is stable for a given input. Singletons are clusters of one.
func ByTile(points []orb.Point, zoom int) ([]Cluster, error) {
	if zoom < 0 || zoom > MaxZoom {
		return nil, ErrZoom
	}
	z := maptile.Zoom(zoom)

	index := make(map[maptile.Tile]int)
	var out []Cluster
	var bounds []orb.Bound

	for i, p := range points {
		t := maptile.At(p, z)
		ci, ok := index[t]
		if !ok {
			ci = len(out)
			index[t] = ci
			out = append(out, Cluster{Tile: t})
			bounds = append(bounds, p.Bound())
		}
		out[ci].Members = append(out[ci].Members, i)
		bounds[ci] = bounds[ci].Extend(p)
	}

	for i := range out {
		out[i].Center = bounds[i].Center()
	}
	return out, nil
}
