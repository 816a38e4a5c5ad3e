// Package mocks provides testify mocks for the platform interfaces.
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/stigoleg/wakefull/internal/platform"
)

// Runner is a mock of platform.Runner. Expectations match on the args
// slice: r.On("Run", mock.Anything, "xset", []string{"s", "off"}).
type Runner struct {
	mock.Mock
}

func (m *Runner) Run(ctx context.Context, name string, args ...string) (string, error) {
	if args == nil {
		args = []string{}
	}
	ret := m.Called(ctx, name, args)
	return ret.String(0), ret.Error(1)
}

// Spawner is a mock of platform.Spawner.
type Spawner struct {
	mock.Mock
}

func (m *Spawner) Spawn(ctx context.Context, name string, args ...string) (platform.Process, error) {
	if args == nil {
		args = []string{}
	}
	ret := m.Called(ctx, name, args)
	var p platform.Process
	if v := ret.Get(0); v != nil {
		p = v.(platform.Process)
	}
	return p, ret.Error(1)
}

// Process is a mock of platform.Process.
type Process struct {
	mock.Mock
}

func (m *Process) Pid() int {
	return m.Called().Int(0)
}

func (m *Process) Alive() bool {
	return m.Called().Bool(0)
}

func (m *Process) Done() <-chan struct{} {
	ret := m.Called()
	return ret.Get(0).(<-chan struct{})
}

func (m *Process) Terminate(timeout time.Duration) error {
	return m.Called(timeout).Error(0)
}

// Strategy is a mock of platform.Strategy.
type Strategy struct {
	mock.Mock
}

func (m *Strategy) Method() platform.Method {
	return m.Called().Get(0).(platform.Method)
}

func (m *Strategy) Start(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *Strategy) Refresh(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *Strategy) Alive() bool {
	return m.Called().Bool(0)
}

func (m *Strategy) Stop(timeout time.Duration) error {
	return m.Called(timeout).Error(0)
}

func (m *Strategy) State() platform.StrategyState {
	return m.Called().Get(0).(platform.StrategyState)
}
