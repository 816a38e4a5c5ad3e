//go:build !linux

package cli

import (
	"context"
	"fmt"
	"runtime"

	"github.com/stigoleg/wakefull/internal/platform"
)

func (a *App) diagnose(context.Context) error {
	return fmt.Errorf("%w on %s", platform.ErrNoMethod, runtime.GOOS)
}
