package telemetry

import (
	"fmt"
	"runtime"

	"github.com/grafana/pyroscope-go"
)

// ProfilingConfig contains configuration for Pyroscope continuous profiling.
type ProfilingConfig struct {
	// Enabled controls whether profiling is enabled
	Enabled bool

	// ServiceName is the application name shown in Pyroscope
	ServiceName string

	// ServiceVersion is the application version
	ServiceVersion string

	// Endpoint is the Pyroscope server URL (e.g., "http://localhost:4040")
	Endpoint string

	// ProfileTypes selects the profiles to collect; empty means DefaultProfileTypes.
	ProfileTypes []string
}

// DefaultProfileTypes is collected when no profile types are configured.
var DefaultProfileTypes = []string{"cpu", "alloc_objects", "alloc_space", "inuse_objects", "inuse_space", "goroutines"}

var (
	profiler         *pyroscope.Profiler
	profilingEnabled bool
)

var profileTypesByName = map[string]pyroscope.ProfileType{
	"cpu":            pyroscope.ProfileCPU,
	"alloc_objects":  pyroscope.ProfileAllocObjects,
	"alloc_space":    pyroscope.ProfileAllocSpace,
	"inuse_objects":  pyroscope.ProfileInuseObjects,
	"inuse_space":    pyroscope.ProfileInuseSpace,
	"goroutines":     pyroscope.ProfileGoroutines,
	"mutex_count":    pyroscope.ProfileMutexCount,
	"mutex_duration": pyroscope.ProfileMutexDuration,
	"block_count":    pyroscope.ProfileBlockCount,
	"block_duration": pyroscope.ProfileBlockDuration,
}

// InitProfiling starts pushing profiles to Pyroscope when cfg.Enabled is
// set. The returned function stops the profiler.
func InitProfiling(cfg ProfilingConfig) (shutdown func() error, err error) {
	if !cfg.Enabled {
		profilingEnabled = false
		return func() error { return nil }, nil
	}

	names := cfg.ProfileTypes
	if len(names) == 0 {
		names = DefaultProfileTypes
	}

	types := make([]pyroscope.ProfileType, 0, len(names))
	for _, name := range names {
		pt, err := parseProfileType(name)
		if err != nil {
			return nil, fmt.Errorf("invalid profile type %q: %w", name, err)
		}
		types = append(types, pt)
		enableRuntimeProfile(pt)
	}

	profiler, err = pyroscope.Start(pyroscope.Config{
		ApplicationName: cfg.ServiceName,
		ServerAddress:   cfg.Endpoint,
		Tags:            map[string]string{"version": cfg.ServiceVersion},
		ProfileTypes:    types,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start Pyroscope profiler: %w", err)
	}
	profilingEnabled = true

	return func() error {
		profilingEnabled = false
		return profiler.Stop()
	}, nil
}

// enableRuntimeProfile turns on the sampling that mutex and block profiles
// depend on; the runtime keeps both off by default.
func enableRuntimeProfile(pt pyroscope.ProfileType) {
	switch pt {
	case pyroscope.ProfileMutexCount, pyroscope.ProfileMutexDuration:
		runtime.SetMutexProfileFraction(5)
	case pyroscope.ProfileBlockCount, pyroscope.ProfileBlockDuration:
		runtime.SetBlockProfileRate(5)
	}
}

// IsProfilingEnabled reports whether the profiler is running.
func IsProfilingEnabled() bool {
	return profilingEnabled
}

func parseProfileType(name string) (pyroscope.ProfileType, error) {
	pt, ok := profileTypesByName[name]
	if !ok {
		return "", fmt.Errorf("unknown profile type: %s", name)
	}
	return pt, nil
}
