// Package router resolves client routes, applies the auth guard and picks
// the page layout.
package router

import (
	"errors"
	"sync"

	"go.uber.org/zap"
)

// Route paths.
const (
	Home     = "/"
	Login    = "/login"
	Register = "/register"
	Secret   = "/secret"
)

// ErrUnknownRoute is returned by Navigate for a path with no route.
var ErrUnknownRoute = errors.New("unknown route")

// Layout is how a page is framed.
type Layout int

const (
	// SplitScreen shows the page next to the intro text.
	SplitScreen Layout = iota
	// FullScreen gives the whole window to the page.
	FullScreen
)

func (l Layout) String() string {
	if l == FullScreen {
		return "full-screen"
	}
	return "split-screen"
}

// IntroText accompanies every split-screen page.
const IntroText = "MapKeeper: keep your places on a map. Sign up or log in to start pinning."

// NavLinks are always offered by the nav bar.
var NavLinks = []string{Login, Register}

// Route describes one entry of the routing table.
type Route struct {
	Path      string
	Redirect  string
	Protected bool
	Layout    Layout
}

// Table is the client routing table.
var Table = map[string]Route{
	Home:     {Path: Home, Redirect: Register},
	Login:    {Path: Login},
	Register: {Path: Register},
	Secret:   {Path: Secret, Protected: true, Layout: FullScreen},
}

// Router tracks the current route.
type Router struct {
	mu            sync.Mutex
	current       string
	authenticated func() bool
	log           *zap.Logger
}

// New returns a router positioned at Home (which resolves to Register).
// authenticated reports whether a user is signed in.
func New(authenticated func() bool, log *zap.Logger) *Router {
	r := &Router{authenticated: authenticated, log: log}
	r.current = r.resolve(Home)
	return r
}

// Navigate resolves path through redirects and the auth guard, makes the
// result current and returns it.
func (r *Router) Navigate(path string) (string, error) {
	if _, ok := Table[path]; !ok {
		return r.Current(), ErrUnknownRoute
	}

	target := r.resolve(path)

	r.mu.Lock()
	r.current = target
	r.mu.Unlock()

	if target != path {
		r.log.Debug("route redirected", zap.String("from", path), zap.String("to", target))
	}
	return target, nil
}

func (r *Router) resolve(path string) string {
	route := Table[path]
	if route.Redirect != "" {
		return r.resolve(route.Redirect)
	}
	if route.Protected {
		return Protected(r.authenticated, path)
	}
	return path
}

// Protected returns target when someone is signed in and Login otherwise.
func Protected(authenticated func() bool, target string) string {
	if authenticated == nil || !authenticated() {
		return Login
	}
	return target
}

// Current returns the current route path.
func (r *Router) Current() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Layout returns the layout of the current route.
func (r *Router) Layout() Layout {
	return Table[r.Current()].Layout
}
