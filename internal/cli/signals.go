package cli

import (
	"os"
	"syscall"
)

// ShutdownSignals end a daemon gracefully.
var ShutdownSignals = []os.Signal{
	syscall.SIGINT,
	syscall.SIGTERM,
	syscall.SIGHUP,
	syscall.SIGQUIT,
}
