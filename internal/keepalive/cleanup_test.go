package keepalive

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanupManagerReverseOrder(t *testing.T) {
	cm := NewCleanupManager(time.Second)
	var order []string
	for _, name := range []string{"lock", "record", "strategy"} {
		name := name
		cm.RegisterFunc(name, func() error {
			order = append(order, name)
			return nil
		})
	}

	require.NoError(t, cm.Execute())
	assert.Equal(t, []string{"strategy", "record", "lock"}, order)

	// Execute runs once.
	require.NoError(t, cm.Execute())
	assert.Len(t, order, 3)
}

func TestCleanupManagerErrorsDoNotStopLaterSteps(t *testing.T) {
	cm := NewCleanupManager(time.Second)
	ran := 0
	cm.RegisterFunc("first", func() error { ran++; return nil })
	cm.RegisterFunc("panics", func() error { panic("boom") })
	cm.RegisterFunc("fails", func() error { ran++; return errors.New("settings") })

	err := cm.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fails: settings")
	assert.Contains(t, err.Error(), "panic")
	assert.Equal(t, 2, ran)
}

func TestCleanupManagerTimeout(t *testing.T) {
	cm := NewCleanupManager(50 * time.Millisecond)
	release := make(chan struct{})
	defer close(release)
	cm.RegisterFunc("stuck", func() error { <-release; return nil })

	start := time.Now()
	err := cm.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timeout")
	assert.Less(t, time.Since(start), time.Second)
}
