//go:build linux

package linux

import (
	"context"

	"github.com/stigoleg/wakefull/internal/platform"
)

// Report is everything --diagnose prints. Gathering it changes nothing.
type Report struct {
	Capabilities Capabilities
	Ranked       []platform.Method
	Selected     platform.Method
	Distro       DistroInfo
	Missing      []DependencyInfo

	// DPMS is nil when no display was available or the query failed.
	DPMS    *DPMSStatus
	DPMSErr error

	BusServices []string
	BusErr      error
}

// Diagnose probes the environment and the display and bus it points at.
func Diagnose(ctx context.Context, probe Probe) Report {
	caps := probe.Detect()
	distro := DetectDistribution()
	r := Report{
		Capabilities: caps,
		Ranked:       Rank(caps),
		Selected:     SelectMethod(caps),
		Distro:       distro,
		Missing:      CheckMissingDependencies(caps, distro),
	}

	if caps.Display != "" {
		status, err := QueryDPMS(caps.Display)
		if err != nil {
			r.DPMSErr = err
		} else {
			r.DPMS = &status
		}
	}
	if caps.SessionBus {
		r.BusServices, r.BusErr = SessionBusServices(ctx)
	}
	return r
}
