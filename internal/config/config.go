// Package config loads wakefull's settings from an optional YAML file,
// WAKEFULL_* environment variables and command line modifiers.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/stigoleg/wakefull/internal/platform"
	"github.com/stigoleg/wakefull/internal/state"
	"github.com/stigoleg/wakefull/internal/util"
)

// Config keys.
const (
	KeyStateDir         = "state_dir"
	KeyLogFile          = "log_file"
	KeyRefreshInterval  = "refresh_interval"
	KeyHealthInterval   = "health_interval"
	KeyStopTimeout      = "stop_timeout"
	KeyStartTimeout     = "start_timeout"
	KeyCommandTimeout   = "command_timeout"
	KeyMethod           = "method"
	KeySimulateActivity = "simulate_activity"
)

const envPrefix = "WAKEFULL"

// Config is the resolved configuration.
type Config struct {
	StateDir         string
	LogFile          string
	RefreshInterval  time.Duration
	HealthInterval   time.Duration
	StopTimeout      time.Duration
	StartTimeout     time.Duration
	CommandTimeout   time.Duration
	Method           platform.Method // MethodNone means automatic
	SimulateActivity bool

	// File is the config file that was read, if any.
	File string
}

// Paths returns the state file layout under StateDir.
func (c *Config) Paths() state.Paths {
	return state.NewPaths(c.StateDir)
}

// ConfigDir is $XDG_CONFIG_HOME/wakefull, or ~/.config/wakefull.
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, platform.AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", platform.AppName)
}

// DefaultLogFile is $XDG_STATE_HOME/wakefull/wakefull.log, or the same
// under ~/.local/state.
func DefaultLogFile() string {
	dir := os.Getenv("XDG_STATE_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(os.TempDir(), platform.AppName+".log")
		}
		dir = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(dir, platform.AppName, platform.AppName+".log")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyStateDir, state.DefaultDir())
	v.SetDefault(KeyLogFile, DefaultLogFile())
	v.SetDefault(KeyRefreshInterval, platform.RefreshInterval.String())
	v.SetDefault(KeyHealthInterval, platform.HealthCheckInterval.String())
	v.SetDefault(KeyStopTimeout, platform.StopTimeout.String())
	v.SetDefault(KeyStartTimeout, platform.StartTimeout.String())
	v.SetDefault(KeyCommandTimeout, platform.CommandTimeout.String())
	v.SetDefault(KeyMethod, "auto")
	v.SetDefault(KeySimulateActivity, true)
}

// Load resolves the configuration. An empty path searches ConfigDir for
// config.yaml and tolerates its absence; an explicit path must exist.
// overrides take precedence over file and environment.
func Load(path string, overrides map[string]string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		if dir := ConfigDir(); dir != "" {
			v.AddConfigPath(dir)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			file := v.ConfigFileUsed()
			if file == "" {
				file = path
			}
			return nil, fmt.Errorf("failed to read config file %s: %w", file, err)
		}
	}
	for key, value := range overrides {
		v.Set(key, value)
	}

	cfg := &Config{
		StateDir:         v.GetString(KeyStateDir),
		LogFile:          v.GetString(KeyLogFile),
		SimulateActivity: v.GetBool(KeySimulateActivity),
		File:             v.ConfigFileUsed(),
	}
	if cfg.StateDir == "" {
		return nil, errors.New("state_dir must not be empty")
	}

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{KeyRefreshInterval, &cfg.RefreshInterval},
		{KeyHealthInterval, &cfg.HealthInterval},
		{KeyStopTimeout, &cfg.StopTimeout},
		{KeyStartTimeout, &cfg.StartTimeout},
		{KeyCommandTimeout, &cfg.CommandTimeout},
	}
	for _, d := range durations {
		parsed, err := util.ParseDuration(v.GetString(d.key))
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", d.key, err)
		}
		if parsed <= 0 {
			return nil, fmt.Errorf("invalid %s: must be greater than zero", d.key)
		}
		*d.dst = parsed
	}

	method := v.GetString(KeyMethod)
	if strings.EqualFold(method, "auto") {
		method = ""
	}
	m, err := platform.ParseMethod(method)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", KeyMethod, err)
	}
	cfg.Method = m

	return cfg, nil
}
