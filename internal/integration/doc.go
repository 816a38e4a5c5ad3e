// Package integration holds end-to-end tests that launch real daemon
// processes from the test binary and control them through the state
// files, the same way the wakefull CLI does.
package integration
