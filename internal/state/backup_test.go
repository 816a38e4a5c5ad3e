package state

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stigoleg/wakefull/internal/platform"
)

func TestBackupFirstSnapshotWins(t *testing.T) {
	b := NewBackup(filepath.Join(t.TempDir(), "backup"))

	original := platform.Setting{
		Tool: "xfconf-query", Channel: "xfce4-power-manager",
		Key: "/xfce4-power-manager/dpms-enabled", Value: "true", Existed: true,
	}
	require.NoError(t, b.Save(original))

	// A later save with wakefull's own value must not clobber the original.
	overwritten := original
	overwritten.Value = "false"
	require.NoError(t, b.Save(overwritten))

	settings, err := b.Load()
	require.NoError(t, err)
	require.Len(t, settings, 1)
	assert.Equal(t, original, settings[0])
}

func TestBackupUnsetMarker(t *testing.T) {
	b := NewBackup(filepath.Join(t.TempDir(), "backup"))

	unset := platform.Setting{Tool: "xfconf-query", Channel: "xfce4-screensaver", Key: "/saver/enabled"}
	require.NoError(t, b.Save(unset))

	data, err := os.ReadFile(filepath.Join(b.Dir, fileName(unset)))
	require.NoError(t, err)
	assert.Equal(t, unsetMarker, string(data))

	settings, err := b.Load()
	require.NoError(t, err)
	require.Len(t, settings, 1)
	assert.False(t, settings[0].Existed)
	assert.Equal(t, "/saver/enabled", settings[0].Key)
}

func TestBackupDiscard(t *testing.T) {
	b := NewBackup(filepath.Join(t.TempDir(), "backup"))
	assert.True(t, b.Empty())

	a := platform.Setting{Tool: "gsettings", Channel: "org.gnome.desktop.session", Key: "idle-delay", Value: "uint32 300", Existed: true}
	c := platform.Setting{Tool: "gsettings", Channel: "org.gnome.desktop.screensaver", Key: "lock-enabled", Value: "true", Existed: true}
	require.NoError(t, b.Save(a))
	require.NoError(t, b.Save(c))
	assert.False(t, b.Empty())

	require.NoError(t, b.Discard(a))
	settings, err := b.Load()
	require.NoError(t, err)
	assert.Equal(t, []platform.Setting{c}, settings)

	require.NoError(t, b.Discard(c))
	assert.True(t, b.Empty())
	assert.NoDirExists(t, b.Dir)

	// Discarding twice is fine.
	require.NoError(t, b.Discard(c))
}
