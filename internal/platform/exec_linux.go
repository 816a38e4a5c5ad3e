//go:build linux

package platform

import "syscall"

// Kernel sends SIGTERM to the child when the daemon dies, so an inhibitor
// never outlives a SIGKILLed daemon.
func childSysProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setpgid: true, Pdeathsig: syscall.SIGTERM}
}
