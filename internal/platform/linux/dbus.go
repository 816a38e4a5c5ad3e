//go:build linux

package linux

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/stigoleg/wakefull/internal/platform"
)

// GNOME SessionManager inhibit flags.
const (
	gnomeInhibitSuspend = 4  // Inhibit suspending the session
	gnomeInhibitIdle    = 8  // Inhibit the session being marked as idle
	gnomeInhibitBoth    = gnomeInhibitSuspend | gnomeInhibitIdle
)

const inhibitReason = "Desktop idleness inhibited by " + platform.AppName

// BusCaller makes method calls on the session bus.
type BusCaller interface {
	// Call invokes method (interface-qualified) on dest at path and
	// returns the reply body.
	Call(ctx context.Context, dest, path, method string, args ...any) ([]any, error)
	Connected() bool
	Close() error
}

// inhibitTarget is one D-Bus service offering an inhibit/uninhibit pair.
type inhibitTarget struct {
	name      string
	dest      string
	path      string
	iface     string
	uninhibit string
	args      []any
}

var inhibitTargets = []inhibitTarget{
	{
		name:      "screensaver",
		dest:      "org.freedesktop.ScreenSaver",
		path:      "/org/freedesktop/ScreenSaver",
		iface:     "org.freedesktop.ScreenSaver",
		uninhibit: "UnInhibit",
		args:      []any{platform.AppName, inhibitReason},
	},
	{
		name:      "power",
		dest:      "org.freedesktop.PowerManagement.Inhibit",
		path:      "/org/freedesktop/PowerManagement/Inhibit",
		iface:     "org.freedesktop.PowerManagement.Inhibit",
		uninhibit: "UnInhibit",
		args:      []any{platform.AppName, inhibitReason},
	},
	{
		name:      "session",
		dest:      "org.gnome.SessionManager",
		path:      "/org/gnome/SessionManager",
		iface:     "org.gnome.SessionManager",
		uninhibit: "Uninhibit",
		args:      []any{platform.AppName, uint32(0), inhibitReason, uint32(gnomeInhibitBoth)},
	},
}

// DBusStrategy holds inhibit cookies from the freedesktop ScreenSaver and
// PowerManagement services and the GNOME SessionManager.
type DBusStrategy struct {
	dial     func() (BusCaller, error)
	fallback BusCaller
	bus      BusCaller
	cookies  map[string]uint32
}

// NewDBusStrategy connects through godbus and falls back to the dbus-send
// or gdbus command line clients when no connection can be made.
func NewDBusStrategy(r platform.Runner, caps Capabilities) *DBusStrategy {
	d := &DBusStrategy{dial: dialSessionBus}
	switch {
	case caps.DBusSend:
		d.fallback = &cliCaller{runner: r, tool: toolDBusSend}
	case caps.GDBus:
		d.fallback = &cliCaller{runner: r, tool: toolGDBus}
	}
	return d
}

func (d *DBusStrategy) Method() platform.Method { return platform.MethodDBus }

func (d *DBusStrategy) Start(ctx context.Context) error {
	if d.bus != nil {
		return nil
	}

	bus, err := d.dial()
	if err != nil {
		if d.fallback == nil {
			return fmt.Errorf("cannot connect to session bus: %w", err)
		}
		log.Printf("linux: session bus connection failed (%v), falling back to command line client", err)
		bus = d.fallback
	}
	d.bus = bus
	d.cookies = make(map[string]uint32)

	d.inhibitMissing(ctx)
	if len(d.cookies) == 0 {
		_ = d.bus.Close()
		d.bus = nil
		return errors.New("no D-Bus inhibit service accepted the request")
	}
	return nil
}

func (d *DBusStrategy) inhibitMissing(ctx context.Context) {
	for _, t := range inhibitTargets {
		if _, ok := d.cookies[t.name]; ok {
			continue
		}
		body, err := d.bus.Call(ctx, t.dest, t.path, t.iface+".Inhibit", t.args...)
		if err != nil {
			log.Printf("linux: dbus inhibitor %s unavailable: %v", t.name, err)
			continue
		}
		cookie, ok := cookieFrom(body)
		if !ok || cookie == 0 {
			log.Printf("linux: dbus inhibitor %s returned no usable cookie: %v", t.name, body)
			continue
		}
		d.cookies[t.name] = cookie
		log.Printf("linux: dbus inhibitor %s activated with cookie %d", t.name, cookie)
	}
}

func cookieFrom(body []any) (uint32, bool) {
	if len(body) == 0 {
		return 0, false
	}
	cookie, ok := body[0].(uint32)
	return cookie, ok
}

func (d *DBusStrategy) Refresh(ctx context.Context) error {
	if d.bus == nil {
		return nil
	}
	if _, err := d.bus.Call(ctx, "org.freedesktop.ScreenSaver", "/org/freedesktop/ScreenSaver",
		"org.freedesktop.ScreenSaver.SimulateUserActivity"); err != nil {
		log.Printf("linux: SimulateUserActivity failed: %v", err)
	}
	// Inhibitors taken by a command line client die with its connection,
	// so every target is asked again.
	if _, ok := d.bus.(*cliCaller); ok {
		d.cookies = make(map[string]uint32)
	}
	d.inhibitMissing(ctx)
	return nil
}

func (d *DBusStrategy) Alive() bool {
	return d.bus != nil && d.bus.Connected()
}

func (d *DBusStrategy) Stop(timeout time.Duration) error {
	if d.bus == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout+platform.CommandTimeout)
	defer cancel()

	var errs []error
	for _, t := range inhibitTargets {
		cookie, ok := d.cookies[t.name]
		if !ok {
			continue
		}
		if _, err := d.bus.Call(ctx, t.dest, t.path, t.iface+"."+t.uninhibit, cookie); err != nil {
			errs = append(errs, fmt.Errorf("%s uninhibit: %w", t.name, err))
		}
	}
	errs = append(errs, d.bus.Close())
	d.bus = nil
	d.cookies = nil
	return errors.Join(errs...)
}

func (d *DBusStrategy) State() platform.StrategyState {
	if len(d.cookies) == 0 {
		return platform.StrategyState{}
	}
	cookies := make(map[string]uint32, len(d.cookies))
	for k, v := range d.cookies {
		cookies[k] = v
	}
	return platform.StrategyState{Cookies: cookies}
}

// godbusCaller is a BusCaller on a private session bus connection. Every
// inhibit it takes is dropped by the services when it disconnects.
type godbusCaller struct {
	conn *dbus.Conn
}

func dialSessionBus() (BusCaller, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, err
	}
	return &godbusCaller{conn: conn}, nil
}

func (g *godbusCaller) Call(ctx context.Context, dest, path, method string, args ...any) ([]any, error) {
	call := g.conn.Object(dest, dbus.ObjectPath(path)).CallWithContext(ctx, method, 0, args...)
	if call.Err != nil {
		return nil, call.Err
	}
	return call.Body, nil
}

func (g *godbusCaller) Connected() bool { return g.conn.Connected() }

func (g *godbusCaller) Close() error { return g.conn.Close() }

// cliCaller is a BusCaller driving dbus-send or gdbus. Each call is its own
// bus connection, so it is only used when no connection can be kept.
type cliCaller struct {
	runner platform.Runner
	tool   string
}

func (c *cliCaller) Call(ctx context.Context, dest, path, method string, args ...any) ([]any, error) {
	var cmdArgs []string
	if c.tool == toolGDBus {
		cmdArgs = []string{"call", "--session", "--dest", dest, "--object-path", path, "--method", method}
		for _, a := range args {
			cmdArgs = append(cmdArgs, gvariantArg(a))
		}
	} else {
		cmdArgs = []string{"--session", "--print-reply", "--dest=" + dest, path, method}
		for _, a := range args {
			cmdArgs = append(cmdArgs, dbusSendArg(a))
		}
	}

	out, err := c.runner.Run(ctx, c.tool, cmdArgs...)
	if err != nil {
		return nil, fmt.Errorf("%s call %s failed (output: %q): %w", c.tool, method, out, err)
	}
	if cookie, err := parseCookie(out); err == nil {
		return []any{cookie}, nil
	}
	return nil, nil
}

func (c *cliCaller) Connected() bool { return true }

func (c *cliCaller) Close() error { return nil }

func dbusSendArg(a any) string {
	switch v := a.(type) {
	case uint32:
		return "uint32:" + strconv.FormatUint(uint64(v), 10)
	default:
		return fmt.Sprintf("string:%v", v)
	}
}

func gvariantArg(a any) string {
	switch v := a.(type) {
	case uint32:
		return "uint32 " + strconv.FormatUint(uint64(v), 10)
	default:
		return strconv.Quote(fmt.Sprint(v))
	}
}

// parseCookie reads the uint32 from "uint32 42" (dbus-send) or
// "(uint32 42,)" (gdbus) replies.
func parseCookie(out string) (uint32, error) {
	parts := strings.Fields(out)
	if len(parts) > 0 {
		last := strings.TrimRight(parts[len(parts)-1], ",)")
		if val, err := strconv.ParseUint(last, 10, 32); err == nil {
			return uint32(val), nil
		}
	}
	return 0, fmt.Errorf("failed to parse cookie from: %q", out)
}

// SessionBusServices lists which inhibit services own a name on the
// session bus.
func SessionBusServices(ctx context.Context) ([]string, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	var names []string
	if err := conn.BusObject().CallWithContext(ctx, "org.freedesktop.DBus.ListNames", 0).Store(&names); err != nil {
		return nil, fmt.Errorf("failed to list bus names: %w", err)
	}
	owned := make(map[string]bool, len(names))
	for _, n := range names {
		owned[n] = true
	}

	var found []string
	for _, t := range inhibitTargets {
		if owned[t.dest] {
			found = append(found, t.dest)
		}
	}
	sort.Strings(found)
	return found, nil
}
