// Package mapview is the marker map of the client: the in-memory marker list,
// click-to-add with its delete cooldown, the popup lock and import/export.
//
// Remote writes are optimistic. A failed insert, update or delete is logged
// and the local list keeps the change.
package mapview

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/atinyakov/MapKeeper/internal/client/geo"
	"github.com/atinyakov/MapKeeper/internal/cluster"
	"github.com/atinyakov/MapKeeper/internal/models"
	"github.com/paulmach/orb"
	"go.uber.org/zap"
)

const (
	// Cooldown is how long clicks are ignored after a delete.
	Cooldown = 100 * time.Millisecond
	// PlaceholderName labels a freshly clicked marker.
	PlaceholderName = "ciao"
)

// ErrIndexOutOfRange is returned for a marker index not in the list.
var ErrIndexOutOfRange = errors.New("marker index out of range")

// State is the click state of the map.
type State int

const (
	// Idle means a click adds a marker.
	Idle State = iota
	// Suspended means clicks are ignored until the cooldown ends.
	Suspended
)

func (s State) String() string {
	if s == Suspended {
		return "suspended"
	}
	return "idle"
}

// Store is the remote locations table.
type Store interface {
	InsertLocation(ctx context.Context, loc models.Location) (models.Location, error)
	UpdateLocation(ctx context.Context, id int64, patch models.LocationPatch) (models.Location, error)
	DeleteLocation(ctx context.Context, id int64) error
}

// Source loads the initial marker list.
type Source func(ctx context.Context) ([]models.Location, error)

// View holds the map state. All methods are safe for concurrent use.
type View struct {
	store   Store
	source  Source
	locator geo.Locator
	log     *zap.Logger

	mu       sync.Mutex
	markers  []models.Location
	state    State
	popup    int
	center   orb.Point
	user     *orb.Point
	cooldown time.Duration
	gen      uint64
}

// New returns an empty view centred on geo.DefaultCenter. locator may be nil,
// in which case Mount never recentres.
func New(store Store, source Source, locator geo.Locator, log *zap.Logger) *View {
	return &View{
		store:    store,
		source:   source,
		locator:  locator,
		log:      log,
		markers:  []models.Location{},
		popup:    -1,
		center:   geo.DefaultCenter,
		cooldown: Cooldown,
	}
}

// Mount loads the markers and locates the device concurrently. The returned
// channel is closed once both have finished.
func (v *View) Mount(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		v.load(ctx)
	}()
	go func() {
		defer wg.Done()
		v.locate(ctx)
	}()
	go func() {
		wg.Wait()
		close(done)
	}()

	return done
}

func (v *View) load(ctx context.Context) {
	if v.source == nil {
		return
	}
	markers, err := v.source(ctx)
	if err != nil {
		v.log.Error("failed to load markers", zap.Error(err))
		return
	}
	v.replace(markers)
	v.log.Debug("markers loaded", zap.Int("count", len(markers)))
}

func (v *View) locate(ctx context.Context) {
	if v.locator == nil {
		return
	}
	p, err := v.locator.Locate(ctx)
	if err != nil {
		v.log.Warn("geolocation failed, keeping default centre", zap.Error(err))
		return
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	v.center = p
	v.user = &p
}

func (v *View) replace(markers []models.Location) {
	list := make([]models.Location, len(markers))
	copy(list, markers)

	v.mu.Lock()
	v.markers = list
	v.mu.Unlock()
}

// Click adds a marker at p ([lon, lat]) named PlaceholderName. It reports
// false without doing anything while suspended or while a popup is open.
// Exactly one entry is appended whatever the remote insert does.
func (v *View) Click(ctx context.Context, p orb.Point) (bool, error) {
	v.mu.Lock()
	blocked := v.state == Suspended || v.popup >= 0
	v.mu.Unlock()
	if blocked {
		return false, nil
	}

	loc := models.LocationFromPoint(p, PlaceholderName)
	if err := loc.Validate(); err != nil {
		return false, err
	}

	row, err := v.store.InsertLocation(ctx, loc)
	if err != nil {
		v.log.Error("failed to insert location", zap.Error(err))
	} else {
		loc.ID = row.ID
	}

	v.mu.Lock()
	v.markers = append(v.markers, loc)
	v.mu.Unlock()
	return true, nil
}

// Rename sets the name of marker i and updates the remote row. Other entries
// and all positions are untouched.
func (v *View) Rename(ctx context.Context, i int, name string) error {
	v.mu.Lock()
	if i < 0 || i >= len(v.markers) {
		v.mu.Unlock()
		return ErrIndexOutOfRange
	}
	v.markers[i].Name = name
	id := v.markers[i].ID
	v.mu.Unlock()

	if id == 0 {
		v.log.Warn("marker has no id, skipping remote rename", zap.Int("index", i))
		return nil
	}
	if _, err := v.store.UpdateLocation(ctx, id, models.LocationPatch{Name: &name}); err != nil {
		v.log.Error("failed to rename location", zap.Int64("id", id), zap.Error(err))
	}
	return nil
}

// Delete removes marker i, closes the popup and suspends clicks for the
// cooldown. A delete during a cooldown restarts it.
func (v *View) Delete(ctx context.Context, i int) error {
	v.mu.Lock()
	if i < 0 || i >= len(v.markers) {
		v.mu.Unlock()
		return ErrIndexOutOfRange
	}
	id := v.markers[i].ID
	v.markers = append(v.markers[:i:i], v.markers[i+1:]...)
	v.popup = -1
	v.suspendLocked()
	v.mu.Unlock()

	if id == 0 {
		v.log.Warn("marker has no id, skipping remote delete", zap.Int("index", i))
		return nil
	}
	if err := v.store.DeleteLocation(ctx, id); err != nil {
		v.log.Error("failed to delete location", zap.Int64("id", id), zap.Error(err))
	}
	return nil
}

func (v *View) suspendLocked() {
	v.state = Suspended
	v.gen++
	gen := v.gen
	time.AfterFunc(v.cooldown, func() {
		v.mu.Lock()
		defer v.mu.Unlock()
		if v.gen == gen {
			v.state = Idle
		}
	})
}

// OpenPopup opens the detail popup of marker i. Clicks are ignored while it is open.
func (v *View) OpenPopup(i int) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if i < 0 || i >= len(v.markers) {
		return ErrIndexOutOfRange
	}
	v.popup = i
	return nil
}

// ClosePopup closes the popup, if any.
func (v *View) ClosePopup() {
	v.mu.Lock()
	v.popup = -1
	v.mu.Unlock()
}

// Popup returns the index of the open popup.
func (v *View) Popup() (int, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.popup, v.popup >= 0
}

// State returns the click state.
func (v *View) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// Markers returns a copy of the marker list.
func (v *View) Markers() []models.Location {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]models.Location, len(v.markers))
	copy(out, v.markers)
	return out
}

// Center returns the map centre.
func (v *View) Center() orb.Point {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.center
}

// UserLocation returns the "you are here" position once the device is located.
func (v *View) UserLocation() (orb.Point, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.user == nil {
		return orb.Point{}, false
	}
	return *v.user, true
}

// Clusters groups the markers by tile at zoom.
func (v *View) Clusters(zoom int) ([]cluster.Cluster, error) {
	markers := v.Markers()
	points := make([]orb.Point, len(markers))
	for i, m := range markers {
		points[i] = m.Point()
	}
	return cluster.ByTile(points, zoom)
}
