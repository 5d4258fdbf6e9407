// Package main is the MapKeeper terminal client: a shell over the marker map.
package main

import (
	"bufio"
	"cmp"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/atinyakov/MapKeeper/internal/client/auth"
	"github.com/atinyakov/MapKeeper/internal/client/geo"
	"github.com/atinyakov/MapKeeper/internal/client/mapview"
	"github.com/atinyakov/MapKeeper/internal/client/remote"
	"github.com/atinyakov/MapKeeper/internal/client/router"
	"github.com/atinyakov/MapKeeper/internal/client/storage"
	"github.com/atinyakov/MapKeeper/internal/client/views"
	"github.com/atinyakov/MapKeeper/internal/config"
	"github.com/atinyakov/MapKeeper/internal/logger"
	"github.com/paulmach/orb"
	"go.uber.org/zap"
)

var (
	version   string
	buildDate string
)

const helpText = `Available commands:
  help                      show this list
  register | login          submit the form
  logout                    sign out
  goto <route>              navigate (/, /login, /register, /secret)
  where                     current route and layout
  list                      markers on the map
  click <lon> <lat>         add a marker
  open <i> | close          open or close a marker popup
  rename <i> <name>         rename marker i
  delete <i>                delete marker i
  export <file> [geojson]   save markers to a file
  import <file>             load markers from a file
  clusters <zoom>           group markers by tile
  exit`

// lockedWriter serialises writes from the shell and from map mounts finishing
// in the background.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

// app bundles the client state the shell drives.
type app struct {
	out    io.Writer
	log    *zap.Logger
	auth   *auth.Context
	router *router.Router
	views  *views.Views
	newMap func() *mapview.View
	view   atomic.Pointer[mapview.View]
}

// main parses flags and runs the shell.
func main() {
	opts, err := config.ParseClient(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	if opts.ShowVersion {
		fmt.Printf("MapKeeper Client\nVersion: %s\nBuild Date: %s\n", cmp.Or(version, "N/A"), cmp.Or(buildDate, "N/A"))
		return
	}

	log := logger.New()
	if err := log.InitConsole(opts.LogLevel); err != nil {
		fmt.Fprintln(os.Stderr, "failed to init logger:", err)
		os.Exit(1)
	}
	defer func() { _ = log.Log.Sync() }()

	store := storage.New(opts.StateFile)
	if err := store.Load(); err != nil {
		log.Log.Warn("local storage unreadable, starting empty", zap.Error(err))
	}

	client := remote.New(opts.URL, opts.APIKey)
	authCtx := auth.New(store, client, log.Log)
	client.SetTokenSource(authCtx.Token)

	r := router.New(authCtx.Authenticated, log.Log)
	authCtx.SetNavigator(r)

	scanner := bufio.NewScanner(os.Stdin)
	term := views.NewTerminal(scanner, os.Stdout)

	var locator geo.Locator
	if opts.GeoURL != "" {
		locator = &geo.HTTPLocator{URL: opts.GeoURL}
	}
	source := mapview.Source(client.ListLocations)
	if opts.Source == config.SourceStatic {
		source = client.FetchStaticMarkers
	}

	a := &app{
		out:    &lockedWriter{w: os.Stdout},
		log:    log.Log,
		auth:   authCtx,
		router: r,
		views:  views.New(client, authCtx, term, term),
		newMap: func() *mapview.View { return mapview.New(client, source, locator, log.Log) },
	}

	ctx := context.Background()
	if authCtx.Authenticated() {
		a.navigate(ctx, router.Secret)
	}
	a.repl(ctx, scanner)
}

// repl runs the interactive shell loop.
func (a *app) repl(ctx context.Context, scanner *bufio.Scanner) {
	for {
		fmt.Fprintf(a.out, "mapkeeper %s> ", a.router.Current())
		if !scanner.Scan() {
			break
		}
		if !a.exec(ctx, scanner.Text()) {
			return
		}
	}
}

// exec runs one command line and reports whether the shell should keep going.
func (a *app) exec(ctx context.Context, line string) bool {
	args := strings.Fields(line)
	if len(args) == 0 {
		return true
	}

	switch args[0] {
	case "help":
		fmt.Fprintln(a.out, helpText)
	case "register":
		if a.views.Register(ctx) {
			a.mountMap(ctx)
		}
	case "login":
		if a.views.Login(ctx) {
			a.mountMap(ctx)
		}
	case "logout":
		a.auth.Logout(ctx)
		a.view.Store(nil)
	case "goto":
		if len(args) < 2 {
			fmt.Fprintln(a.out, "Usage: goto <route>")
			break
		}
		a.navigate(ctx, args[1])
	case "where":
		fmt.Fprintf(a.out, "%s (%s)\n", a.router.Current(), a.router.Layout())
		if a.router.Layout() == router.SplitScreen {
			fmt.Fprintln(a.out, router.IntroText)
		}
		fmt.Fprintf(a.out, "nav: %s\n", strings.Join(router.NavLinks, " | "))
	case "exit":
		fmt.Fprintln(a.out, "Bye")
		return false
	default:
		a.mapCommand(ctx, line, args)
	}
	return true
}

// mapCommand runs the commands available on the map page.
func (a *app) mapCommand(ctx context.Context, line string, args []string) {
	v := a.view.Load()
	if v == nil || a.router.Current() != router.Secret {
		fmt.Fprintln(a.out, "Unknown command or not on the map. Type 'help' for a list of commands.")
		return
	}

	switch args[0] {
	case "list":
		a.printMarkers(v)
	case "click":
		lon, lat, ok := parsePoint(args)
		if !ok {
			fmt.Fprintln(a.out, "Usage: click <lon> <lat>")
			return
		}
		added, err := v.Click(ctx, orb.Point{lon, lat})
		switch {
		case err != nil:
			fmt.Fprintln(a.out, err)
		case !added:
			fmt.Fprintln(a.out, "Map is not accepting clicks right now")
		default:
			fmt.Fprintln(a.out, "Marker added")
		}
	case "open":
		i, ok := parseIndex(args)
		if !ok {
			fmt.Fprintln(a.out, "Usage: open <i>")
			return
		}
		a.report(v.OpenPopup(i), "Popup open")
	case "close":
		v.ClosePopup()
	case "rename":
		i, ok := parseIndex(args)
		name := afterFields(line, 2)
		if !ok || name == "" {
			fmt.Fprintln(a.out, "Usage: rename <i> <name>")
			return
		}
		a.report(v.Rename(ctx, i, name), "Marker renamed")
	case "delete":
		i, ok := parseIndex(args)
		if !ok {
			fmt.Fprintln(a.out, "Usage: delete <i>")
			return
		}
		a.report(v.Delete(ctx, i), "Marker deleted")
	case "export":
		if len(args) < 2 {
			fmt.Fprintln(a.out, "Usage: export <file> [geojson]")
			return
		}
		if len(args) > 2 && args[2] == "geojson" {
			a.report(v.ExportGeoJSONFile(args[1]), "Exported")
			return
		}
		a.report(v.ExportFile(args[1]), "Exported")
	case "import":
		if len(args) < 2 {
			fmt.Fprintln(a.out, "Usage: import <file>")
			return
		}
		a.report(v.ImportFile(args[1]), "Imported")
	case "clusters":
		zoom, ok := parseIndex(args)
		if !ok {
			fmt.Fprintln(a.out, "Usage: clusters <zoom>")
			return
		}
		clusters, err := v.Clusters(zoom)
		if err != nil {
			fmt.Fprintln(a.out, err)
			return
		}
		for _, c := range clusters {
			fmt.Fprintf(a.out, "(%d) at %.5f,%.5f: %v\n", c.Count(), c.Center.Lat(), c.Center.Lon(), c.Members)
		}
	default:
		fmt.Fprintln(a.out, "Unknown command. Type 'help' for a list of commands.")
	}
}

func (a *app) navigate(ctx context.Context, path string) {
	got, err := a.router.Navigate(path)
	if err != nil {
		fmt.Fprintln(a.out, err)
		return
	}
	if got == router.Secret {
		a.mountMap(ctx)
	}
}

// mountMap shows a fresh map, as entering the page does. Loading and
// geolocation run in the background; the returned channel is closed once both
// finished and the result was printed. Until then list shows what is there.
func (a *app) mountMap(ctx context.Context) <-chan struct{} {
	printed := make(chan struct{})
	if a.router.Current() != router.Secret {
		close(printed)
		return printed
	}

	view := a.newMap()
	a.view.Store(view)
	done := view.Mount(ctx)
	fmt.Fprintln(a.out, "Loading map...")

	go func() {
		defer close(printed)
		<-done
		if a.view.Load() != view {
			return
		}
		c := view.Center()
		fmt.Fprintf(a.out, "\nMap centred at %.5f,%.5f\n", c.Lat(), c.Lon())
		a.printMarkers(view)
	}()
	return printed
}

func (a *app) printMarkers(v *mapview.View) {
	if p, ok := v.UserLocation(); ok {
		fmt.Fprintf(a.out, "you are here: %.5f,%.5f\n", p.Lat(), p.Lon())
	}
	popup, open := v.Popup()
	for i, m := range v.Markers() {
		mark := " "
		if open && i == popup {
			mark = "*"
		}
		fmt.Fprintf(a.out, "%s[%d] %s (lat %.5f, lon %.5f) id=%d\n", mark, i, m.Name, m.Lat, m.Lon, m.ID)
	}
}

func (a *app) report(err error, ok string) {
	if err != nil {
		fmt.Fprintln(a.out, "Error:", err)
		return
	}
	fmt.Fprintln(a.out, ok)
}

func parseIndex(args []string) (int, bool) {
	if len(args) < 2 {
		return 0, false
	}
	i, err := strconv.Atoi(args[1])
	return i, err == nil
}

func parsePoint(args []string) (lon, lat float64, ok bool) {
	if len(args) < 3 {
		return 0, 0, false
	}
	lon, err1 := strconv.ParseFloat(args[1], 64)
	lat, err2 := strconv.ParseFloat(args[2], 64)
	return lon, lat, err1 == nil && err2 == nil
}

// afterFields returns line with its first n fields removed and the rest kept
// verbatim, apart from surrounding blanks.
func afterFields(line string, n int) string {
	rest := strings.TrimLeft(line, " \t")
	for i := 0; i < n; i++ {
		end := strings.IndexAny(rest, " \t")
		if end < 0 {
			return ""
		}
		rest = strings.TrimLeft(rest[end:], " \t")
	}
	return strings.TrimRight(rest, " \t")
}
