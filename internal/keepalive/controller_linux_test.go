//go:build linux

package keepalive

import (
	"context"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/stigoleg/wakefull/internal/platform"
	"github.com/stigoleg/wakefull/internal/platform/mocks"
	"github.com/stigoleg/wakefull/internal/state"
)

func TestControllerStopRestoresLeftoverSettings(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping process test in short mode")
	}

	tests := []struct {
		name       string
		daemon     func(t *testing.T) int
		wantErr    error
		wantForced bool
	}{
		{
			name: "daemon ignores SIGTERM",
			daemon: func(t *testing.T) int {
				cmd := exec.Command("sh", "-c", "trap '' TERM; while true; do sleep 0.1; done")
				require.NoError(t, cmd.Start())
				go cmd.Wait()
				t.Cleanup(func() { _ = cmd.Process.Kill() })
				time.Sleep(200 * time.Millisecond)
				return cmd.Process.Pid
			},
			wantForced: true,
		},
		{
			name: "stale record",
			daemon: func(t *testing.T) int {
				cmd := exec.Command("true")
				require.NoError(t, cmd.Run())
				return cmd.Process.Pid
			},
			wantErr: state.ErrStaleRecord,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newController(t)
			c.StopTimeout = 200 * time.Millisecond

			backup := state.NewBackup(c.Paths.Backup)
			require.NoError(t, backup.Save(platform.Setting{
				Tool:    "xfconf-query",
				Channel: "xfce4-power-manager",
				Key:     "/xfce4-power-manager/dpms-enabled",
				Value:   "true",
				Existed: true,
			}))
			require.False(t, backup.Empty())

			r := &mocks.Runner{}
			r.On("Run", mock.Anything, "xfconf-query",
				[]string{"-c", "xfce4-power-manager", "-p", "/xfce4-power-manager/dpms-enabled", "-s", "true"}).
				Return("", nil).Once()
			c.Runner = r

			require.NoError(t, state.WriteRecord(c.Paths.Record, state.Record{PID: tt.daemon(t), Method: "desktop-settings"}))

			res, err := c.Stop(context.Background())
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.wantForced, res.Forced)

			r.AssertExpectations(t)
			assert.True(t, backup.Empty())
			assert.NoFileExists(t, c.Paths.Record)
		})
	}
}
