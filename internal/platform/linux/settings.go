//go:build linux

package linux

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/stigoleg/wakefull/internal/platform"
)

// desiredSetting is one key wakefull sets while it runs.
type desiredSetting struct {
	channel string
	key     string
	value   string
	kind    string // xfconf type for keys that must be created
}

var xfceSettings = []desiredSetting{
	{"xfce4-power-manager", "/xfce4-power-manager/presentation-mode", "true", "bool"},
	{"xfce4-power-manager", "/xfce4-power-manager/dpms-enabled", "false", "bool"},
	{"xfce4-power-manager", "/xfce4-power-manager/blank-on-ac", "0", "int"},
	{"xfce4-power-manager", "/xfce4-power-manager/inactivity-on-ac", "0", "uint"},
	{"xfce4-screensaver", "/saver/enabled", "false", "bool"},
}

var gnomeSettings = []desiredSetting{
	{"org.gnome.desktop.session", "idle-delay", "0", ""},
	{"org.gnome.settings-daemon.plugins.power", "sleep-inactive-ac-type", "'nothing'", ""},
	{"org.gnome.settings-daemon.plugins.power", "sleep-inactive-battery-type", "'nothing'", ""},
	{"org.gnome.settings-daemon.plugins.power", "sleep-inactive-ac-timeout", "0", ""},
	{"org.gnome.settings-daemon.plugins.power", "sleep-inactive-battery-timeout", "0", ""},
	{"org.gnome.settings-daemon.plugins.power", "idle-dim", "false", ""},
}

// settingsTool reads and writes desktop settings through a CLI.
type settingsTool interface {
	name() string
	get(ctx context.Context, channel, key string) (value string, existed bool, err error)
	set(ctx context.Context, channel, key, value, kind string, existed bool) error
	reset(ctx context.Context, channel, key string) error
}

type xfconfTool struct{ runner platform.Runner }

func (x xfconfTool) name() string { return toolXfconf }

func (x xfconfTool) get(ctx context.Context, channel, key string) (string, bool, error) {
	out, err := x.runner.Run(ctx, toolXfconf, "-c", channel, "-p", key)
	if err != nil {
		if strings.Contains(out, "does not exist") {
			return "", false, nil
		}
		return "", false, fmt.Errorf("xfconf-query get %s%s failed (output: %q): %w", channel, key, out, err)
	}
	return out, true, nil
}

func (x xfconfTool) set(ctx context.Context, channel, key, value, kind string, existed bool) error {
	args := []string{"-c", channel, "-p", key}
	if !existed && kind != "" {
		args = append(args, "-n", "-t", kind)
	}
	args = append(args, "-s", value)
	if out, err := x.runner.Run(ctx, toolXfconf, args...); err != nil {
		return fmt.Errorf("xfconf-query set %s%s failed (output: %q): %w", channel, key, out, err)
	}
	return nil
}

func (x xfconfTool) reset(ctx context.Context, channel, key string) error {
	if out, err := x.runner.Run(ctx, toolXfconf, "-c", channel, "-p", key, "-r"); err != nil {
		return fmt.Errorf("xfconf-query reset %s%s failed (output: %q): %w", channel, key, out, err)
	}
	return nil
}

type gsettingsTool struct{ runner platform.Runner }

func (g gsettingsTool) name() string { return toolGsettings }

// get always reports existed: gsettings falls back to the schema default.
func (g gsettingsTool) get(ctx context.Context, schema, key string) (string, bool, error) {
	out, err := g.runner.Run(ctx, toolGsettings, "get", schema, key)
	if err != nil {
		return "", false, fmt.Errorf("gsettings get %s %s failed (output: %q): %w", schema, key, out, err)
	}
	return out, true, nil
}

func (g gsettingsTool) set(ctx context.Context, schema, key, value, _ string, _ bool) error {
	if out, err := g.runner.Run(ctx, toolGsettings, "set", schema, key, value); err != nil {
		return fmt.Errorf("gsettings set %s %s failed (output: %q): %w", schema, key, out, err)
	}
	return nil
}

func (g gsettingsTool) reset(ctx context.Context, schema, key string) error {
	if out, err := g.runner.Run(ctx, toolGsettings, "reset", schema, key); err != nil {
		return fmt.Errorf("gsettings reset %s %s failed (output: %q): %w", schema, key, out, err)
	}
	return nil
}

func toolFor(name string, r platform.Runner) (settingsTool, bool) {
	switch name {
	case toolXfconf:
		return xfconfTool{runner: r}, true
	case toolGsettings:
		return gsettingsTool{runner: r}, true
	default:
		return nil, false
	}
}

// SettingsStrategy turns off blanking, DPMS and sleep through the desktop's
// own settings, saving every prior value first.
type SettingsStrategy struct {
	runner   platform.Runner
	tool     settingsTool
	settings []desiredSetting
	backup   platform.SettingsBackup
	x11      bool
	active   bool
}

// NewSettingsStrategy returns the strategy for profile. The xset calls are
// added when caps show an X11 display with xset installed.
func NewSettingsStrategy(r platform.Runner, profile SettingsProfile, backup platform.SettingsBackup, caps Capabilities) (*SettingsStrategy, error) {
	s := &SettingsStrategy{
		runner: r,
		backup: backup,
		x11:    caps.Xset && caps.Display != "",
	}
	switch profile {
	case ProfileXFCE:
		s.tool, s.settings = xfconfTool{runner: r}, xfceSettings
	case ProfileGNOME:
		s.tool, s.settings = gsettingsTool{runner: r}, gnomeSettings
	default:
		return nil, fmt.Errorf("no desktop settings profile for %s", caps.DesktopEnvironment)
	}
	return s, nil
}

func (s *SettingsStrategy) Method() platform.Method { return platform.MethodDesktopSettings }

func (s *SettingsStrategy) Start(ctx context.Context) error {
	var failed []string
	for _, d := range s.settings {
		prior, existed, err := s.tool.get(ctx, d.channel, d.key)
		if err != nil {
			log.Printf("linux: %v", err)
			failed = append(failed, d.key)
			continue
		}
		snapshot := platform.Setting{Tool: s.tool.name(), Channel: d.channel, Key: d.key, Value: prior, Existed: existed}
		if err := s.backup.Save(snapshot); err != nil {
			log.Printf("linux: not changing %s: %v", d.key, err)
			failed = append(failed, d.key)
			continue
		}
		if err := s.tool.set(ctx, d.channel, d.key, d.value, d.kind, existed); err != nil {
			log.Printf("linux: %v", err)
			failed = append(failed, d.key)
		}
	}

	if len(failed) == len(s.settings) {
		return fmt.Errorf("all %s settings failed to apply: %v", s.tool.name(), failed)
	}
	if len(failed) > 0 {
		log.Printf("linux: %s: some settings failed to apply: %v", s.tool.name(), failed)
	}

	s.active = true
	s.applyX11(ctx)
	log.Printf("linux: desktop settings applied via %s", s.tool.name())
	return nil
}

// Refresh re-applies the values in case the desktop reverted them.
func (s *SettingsStrategy) Refresh(ctx context.Context) error {
	if !s.active {
		return nil
	}
	for _, d := range s.settings {
		if err := s.tool.set(ctx, d.channel, d.key, d.value, d.kind, true); err != nil {
			log.Printf("linux: refresh: %v", err)
		}
	}
	s.applyX11(ctx)
	return nil
}

func (s *SettingsStrategy) applyX11(ctx context.Context) {
	if !s.x11 {
		return
	}
	runBestEffort(ctx, s.runner, toolXset, "s", "off")
	runBestEffort(ctx, s.runner, toolXset, "-dpms")
}

// Alive is true while applied; there is no process to lose.
func (s *SettingsStrategy) Alive() bool { return s.active }

func (s *SettingsStrategy) Stop(timeout time.Duration) error {
	if !s.active {
		return nil
	}
	s.active = false
	ctx, cancel := context.WithTimeout(context.Background(), timeout+platform.CommandTimeout)
	defer cancel()

	if s.x11 {
		runBestEffort(ctx, s.runner, toolXset, "s", "on")
		runBestEffort(ctx, s.runner, toolXset, "+dpms")
	}
	return RestoreSettings(ctx, s.runner, s.backup)
}

func (s *SettingsStrategy) State() platform.StrategyState { return platform.StrategyState{} }

// RestoreSettings writes every saved setting back and discards its snapshot.
// Snapshots that fail to restore are kept for a later attempt.
func RestoreSettings(ctx context.Context, r platform.Runner, backup platform.SettingsBackup) error {
	saved, err := backup.Load()
	if err != nil {
		return err
	}

	var errs []error
	for _, s := range saved {
		tool, ok := toolFor(s.Tool, r)
		if !ok {
			errs = append(errs, fmt.Errorf("unknown settings tool %q for %s", s.Tool, s.Key))
			continue
		}
		if s.Existed {
			err = tool.set(ctx, s.Channel, s.Key, s.Value, "", true)
		} else {
			err = tool.reset(ctx, s.Channel, s.Key)
		}
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := backup.Discard(s); err != nil {
			errs = append(errs, err)
		}
	}
	if len(saved) > 0 {
		log.Printf("linux: restored %d of %d desktop settings", len(saved)-len(errs), len(saved))
	}
	return errors.Join(errs...)
}
