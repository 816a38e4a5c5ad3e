//go:build linux

package linux

import (
	"fmt"
	"sync"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/dpms"
	"github.com/jezek/xgb/xproto"

	"github.com/stigoleg/wakefull/internal/platform"
)

// helperWindow is the window xdg-screensaver tracks. Its id is what
// "xdg-screensaver suspend" and "resume" are called with.
type helperWindow interface {
	ID() string
	Alive() bool
	Close() error
}

// windowOpener opens a helper window on display; injectable for tests.
type windowOpener func(display string) (helperWindow, error)

// x11Window is an unmapped 1x1 window held on its own X connection.
type x11Window struct {
	mu   sync.Mutex
	conn *xgb.Conn
	wid  xproto.Window
}

func openX11Window(display string) (helperWindow, error) {
	conn, err := xgb.NewConnDisplay(display)
	if err != nil {
		return nil, fmt.Errorf("cannot open X11 display %q: %w", display, err)
	}

	screen := xproto.Setup(conn).DefaultScreen(conn)
	wid, err := xproto.NewWindowId(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("cannot allocate X11 window id: %w", err)
	}

	err = xproto.CreateWindowChecked(conn, xproto.WindowClassCopyFromParent, wid, screen.Root,
		0, 0, 1, 1, 0, xproto.WindowClassInputOutput, screen.RootVisual, 0, nil).Check()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("cannot create X11 window: %w", err)
	}

	name := []byte(platform.AppName)
	err = xproto.ChangePropertyChecked(conn, xproto.PropModeReplace, wid,
		xproto.AtomWmName, xproto.AtomString, 8, uint32(len(name)), name).Check()
	if err != nil {
		_ = xproto.DestroyWindowChecked(conn, wid).Check()
		conn.Close()
		return nil, fmt.Errorf("cannot name X11 window: %w", err)
	}

	return &x11Window{conn: conn, wid: wid}, nil
}

func (w *x11Window) ID() string {
	return fmt.Sprintf("0x%x", uint32(w.wid))
}

// Alive round-trips a cheap request to detect a dead X connection.
func (w *x11Window) Alive() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.conn == nil {
		return false
	}
	_, err := xproto.GetInputFocus(w.conn).Reply()
	return err == nil
}

func (w *x11Window) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.conn == nil {
		return nil
	}
	err := xproto.DestroyWindowChecked(w.conn, w.wid).Check()
	w.conn.Close()
	w.conn = nil
	if err != nil {
		return fmt.Errorf("cannot destroy X11 window: %w", err)
	}
	return nil
}

// DPMSStatus is the display power state reported by the X server.
type DPMSStatus struct {
	Capable        bool
	Enabled        bool
	PowerLevel     string
	StandbyTimeout uint16
	SuspendTimeout uint16
	OffTimeout     uint16
}

// QueryDPMS asks the X server on display for its DPMS state.
func QueryDPMS(display string) (DPMSStatus, error) {
	conn, err := xgb.NewConnDisplay(display)
	if err != nil {
		return DPMSStatus{}, fmt.Errorf("cannot open X11 display %q: %w", display, err)
	}
	defer conn.Close()

	if err := dpms.Init(conn); err != nil {
		return DPMSStatus{}, fmt.Errorf("DPMS not available: %w", err)
	}

	capReply, err := dpms.Capable(conn).Reply()
	if err != nil || capReply == nil || !capReply.Capable {
		return DPMSStatus{}, nil
	}
	status := DPMSStatus{Capable: true}

	info, err := dpms.Info(conn).Reply()
	if err != nil {
		return status, fmt.Errorf("failed to query DPMS state: %w", err)
	}
	status.Enabled = info.State
	status.PowerLevel = powerLevelName(info.PowerLevel)

	timeouts, err := dpms.GetTimeouts(conn).Reply()
	if err != nil {
		return status, fmt.Errorf("failed to query DPMS timeouts: %w", err)
	}
	status.StandbyTimeout = timeouts.StandbyTimeout
	status.SuspendTimeout = timeouts.SuspendTimeout
	status.OffTimeout = timeouts.OffTimeout
	return status, nil
}

func powerLevelName(level uint16) string {
	switch level {
	case dpms.DPMSModeOn:
		return "on"
	case dpms.DPMSModeStandby:
		return "standby"
	case dpms.DPMSModeSuspend:
		return "suspend"
	case dpms.DPMSModeOff:
		return "off"
	default:
		return fmt.Sprintf("unknown (%d)", level)
	}
}
