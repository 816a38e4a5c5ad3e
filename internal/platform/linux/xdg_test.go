//go:build linux

package linux

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/stigoleg/wakefull/internal/platform"
	"github.com/stigoleg/wakefull/internal/platform/mocks"
)

type fakeWindow struct {
	id     string
	alive  bool
	closed bool
}

func (w *fakeWindow) ID() string   { return w.id }
func (w *fakeWindow) Alive() bool  { return w.alive && !w.closed }
func (w *fakeWindow) Close() error { w.closed = true; return nil }

func newTestXDG(r platform.Runner, w *fakeWindow, opts XDGOptions) *XDGStrategy {
	x := NewXDGStrategy(r, opts)
	x.open = func(display string) (helperWindow, error) {
		if w == nil {
			return nil, errors.New("cannot open X11 display")
		}
		return w, nil
	}
	return x
}

func TestXDGStrategyLifecycle(t *testing.T) {
	r := &mocks.Runner{}
	r.On("Run", mock.Anything, "xdg-screensaver", []string{"suspend", "0x2a00001"}).Return("", nil).Times(2)
	r.On("Run", mock.Anything, "xset", []string{"s", "off"}).Return("", nil).Times(2)
	r.On("Run", mock.Anything, "xset", []string{"-dpms"}).Return("", nil).Times(2)
	r.On("Run", mock.Anything, "xset", []string{"s", "noblank"}).Return("", nil).Times(2)
	r.On("Run", mock.Anything, "xdotool", []string{"key", "shift"}).Return("", nil).Times(2)
	r.On("Run", mock.Anything, "xdg-screensaver", []string{"resume", "0x2a00001"}).Return("", nil).Once()
	r.On("Run", mock.Anything, "xset", []string{"s", "on"}).Return("", nil).Once()
	r.On("Run", mock.Anything, "xset", []string{"+dpms"}).Return("", nil).Once()

	w := &fakeWindow{id: "0x2a00001", alive: true}
	x := newTestXDG(r, w, XDGOptions{Display: ":0", Xset: true, Xdotool: true, SimulateActivity: true})
	assert.Equal(t, platform.MethodXDG, x.Method())

	require.NoError(t, x.Start(context.Background()))
	assert.True(t, x.Alive())
	assert.Equal(t, "0x2a00001", x.State().WindowID)

	require.NoError(t, x.Refresh(context.Background()))
	require.NoError(t, x.Stop(time.Second))
	assert.True(t, w.closed)
	assert.False(t, x.Alive())
	assert.Empty(t, x.State().WindowID)

	r.AssertExpectations(t)
}

func TestXDGStrategySuspendFailureKeepsXset(t *testing.T) {
	r := &mocks.Runner{}
	r.On("Run", mock.Anything, "xdg-screensaver", []string{"suspend", "0x1"}).Return("xprop: command not found", errors.New("exit status 1"))
	r.On("Run", mock.Anything, "xset", []string{"s", "off"}).Return("", nil).Once()
	r.On("Run", mock.Anything, "xset", []string{"-dpms"}).Return("", nil).Once()
	r.On("Run", mock.Anything, "xset", []string{"s", "noblank"}).Return("", nil).Once()

	w := &fakeWindow{id: "0x1", alive: true}
	x := newTestXDG(r, w, XDGOptions{Display: ":0", Xset: true})

	require.NoError(t, x.Start(context.Background()))
	assert.False(t, w.closed)
	assert.True(t, x.Alive())
	assert.Equal(t, "0x1", x.State().WindowID)
	r.AssertExpectations(t)
}

func TestXDGStrategyNothingApplied(t *testing.T) {
	tests := []struct {
		name string
		xset bool
	}{
		{"no xset", false},
		{"xset fails", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &mocks.Runner{}
			r.On("Run", mock.Anything, "xdg-screensaver", []string{"suspend", "0x1"}).Return("no screensaver", errors.New("exit status 1"))
			r.On("Run", mock.Anything, "xset", mock.Anything).Return("", errors.New("unable to open display"))

			w := &fakeWindow{id: "0x1", alive: true}
			x := newTestXDG(r, w, XDGOptions{Display: ":0", Xset: tt.xset})

			err := x.Start(context.Background())
			require.Error(t, err)
			assert.Contains(t, err.Error(), "xdg-screensaver suspend failed")
			assert.True(t, w.closed)
			assert.False(t, x.Alive())
		})
	}
}

func TestXDGStrategyNoDisplay(t *testing.T) {
	x := newTestXDG(&mocks.Runner{}, nil, XDGOptions{})
	assert.Error(t, x.Start(context.Background()))
	assert.NoError(t, x.Stop(time.Second))
}

func TestXDGStrategyBestEffortRefresh(t *testing.T) {
	r := &mocks.Runner{}
	r.On("Run", mock.Anything, "xdg-screensaver", []string{"suspend", "0x5"}).Return("", nil).Once()
	r.On("Run", mock.Anything, "xdg-screensaver", []string{"suspend", "0x5"}).Return("", errors.New("boom")).Once()
	r.On("Run", mock.Anything, "xset", mock.Anything).Return("", errors.New("no display"))

	x := newTestXDG(r, &fakeWindow{id: "0x5", alive: true}, XDGOptions{Display: ":0", Xset: true})
	require.NoError(t, x.Start(context.Background()))
	assert.NoError(t, x.Refresh(context.Background()))
	assert.True(t, x.Alive())
}

func TestResumeWindow(t *testing.T) {
	r := &mocks.Runner{}
	r.On("Run", mock.Anything, "xdg-screensaver", []string{"resume", "0x9"}).Return("", nil).Once()

	require.NoError(t, ResumeWindow(context.Background(), r, "0x9"))
	require.NoError(t, ResumeWindow(context.Background(), r, ""))
	r.AssertExpectations(t)
}
