package platform

import "time"

// Default timings. All of them can be overridden through configuration.
const (
	// RefreshInterval is how often the active strategy re-applies itself.
	RefreshInterval = 30 * time.Second

	// HealthCheckInterval is how often the daemon checks that the strategy
	// is still alive and restarts it when it is not.
	HealthCheckInterval = 60 * time.Second

	// StopTimeout bounds the wait between SIGTERM and SIGKILL.
	StopTimeout = 5 * time.Second

	// StartTimeout bounds how long --start waits for the daemon record.
	StartTimeout = 5 * time.Second

	// CommandTimeout bounds a single external command invocation.
	CommandTimeout = 10 * time.Second
)

// AppName is used as the inhibitor "who" and the X11 window name.
const AppName = "wakefull"
