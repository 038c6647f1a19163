// Package config combines every subsystem's configuration into a single
// top-level Config, loadable from YAML, with flags overriding file
// values. Grounded on vango's ServerConfig/SessionConfig split
// (pkg/server/config.go): a struct-of-structs with a DefaultConfig
// constructor and a Validate method returning warnings rather than a
// hard failure, mirroring vango's GetConfigWarnings/ValidateConfig.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Corten-Browser/Corten-DevTools-sub001/internal/batch"
	"github.com/Corten-Browser/Corten-DevTools-sub001/internal/metrics"
	"github.com/Corten-Browser/Corten-DevTools-sub001/internal/telemetry"
	"github.com/Corten-Browser/Corten-DevTools-sub001/internal/transport"
	"github.com/Corten-Browser/Corten-DevTools-sub001/pkg/domains/heapprofiler"
	"github.com/Corten-Browser/Corten-DevTools-sub001/pkg/domains/profiler"
)

// Config is the whole-process configuration: transport listener knobs,
// domain-stack limits, and ambient-stack (metrics/telemetry) settings.
type Config struct {
	// Transport holds the WebSocket listener configuration (bind
	// address, port, origin allow-list, message size cap, timeouts).
	Transport transport.Config `yaml:"transport"`

	// HeapProfiler holds the memory allocation tracker's sampling rate
	// and leak-detection thresholds.
	HeapProfiler heapprofiler.Config `yaml:"heap_profiler"`

	// NetworkMaxResponseBodySize caps how many bytes of a response body
	// the Network Request Ledger retains per request.
	NetworkMaxResponseBodySize int `yaml:"network_max_response_body_size"`

	// NetworkMaxRequestBodySize caps how many bytes of an outbound
	// request body the Network Request Ledger retains per request.
	NetworkMaxRequestBodySize int `yaml:"max_request_body_size"`

	// RuntimeMaxRemoteObjects bounds the Runtime domain's RemoteObject
	// LRU cache.
	RuntimeMaxRemoteObjects int `yaml:"runtime_max_remote_objects"`

	// Profiler seeds the CPU sampling profiler's default sampling
	// interval (cpu_profiler.sampling_interval_µs) before any
	// Profiler.setSamplingInterval call overrides it.
	Profiler profiler.Config `yaml:"cpu_profiler"`

	// Batch bounds the event batcher's per-(session,domain) coalescing
	// window for domains that opt in (currently DOM mutation records).
	Batch batch.Config `yaml:"batch"`

	// Metrics configures the Prometheus namespace/registry.
	Metrics metrics.Config `yaml:"-"`

	// Telemetry configures the OpenTelemetry tracer.
	Telemetry telemetry.Config `yaml:"-"`

	// LogLevel names a log level: "debug", "info", "warn", or "error".
	// It is loaded and checked by Validate only; nothing in this module
	// installs a slog handler from it, so it does not change what is logged.
	LogLevel string `yaml:"log_level"`

	// LogFormat names a log format: "text" or "json". Like LogLevel, it is
	// loaded and checked by Validate only and selects no slog handler.
	LogFormat string `yaml:"log_format"`
}

// DefaultConfig returns the configuration the server starts with absent
// any file or flags: loopback-only transport on Chrome's canonical
// remote-debugging port, conservative heap-sampling defaults, a 10MB
// response-body cap, a 1000-entry remote-object cache, and text logging
// at info level.
func DefaultConfig() Config {
	return Config{
		Transport:                  transport.DefaultConfig(),
		HeapProfiler:               heapprofiler.DefaultConfig(),
		NetworkMaxResponseBodySize: 10 * 1024 * 1024,
		NetworkMaxRequestBodySize:  5 * 1024 * 1024,
		RuntimeMaxRemoteObjects:    1000,
		Profiler:                   profiler.DefaultConfig(),
		Batch:                      batch.Config{MaxBatchSize: 32, MaxBatchAge: 50 * time.Millisecond},
		Metrics:                    metrics.DefaultConfig(),
		Telemetry:                  telemetry.Config{TracerName: "corten-devtools"},
		LogLevel:                   "info",
		LogFormat:                  "text",
	}
}

// Load reads a YAML config file at path and merges it over DefaultConfig.
// A missing file is not an error — the caller gets defaults back, matching
// vango's config.LoadFromWorkingDir's "absent config is not fatal" stance.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("config: reading %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return cfg, nil
}

// Validate returns human-readable warnings for legal-but-likely-mistaken
// values across every subsystem. Like transport.Config.Validate, these are
// never hard failures: an operator who sets them deliberately is assumed
// to know what they're doing.
func (c Config) Validate() []string {
	var warnings []string
	warnings = append(warnings, c.Transport.Validate()...)

	if c.NetworkMaxResponseBodySize <= 0 {
		warnings = append(warnings, "network_max_response_body_size is not positive; response bodies will be stored without a size cap")
	}
	if c.NetworkMaxRequestBodySize <= 0 {
		warnings = append(warnings, "max_request_body_size is not positive; request bodies will be stored without a size cap")
	}
	if c.Profiler.SamplingIntervalUS <= 0 {
		warnings = append(warnings, "cpu_profiler sampling_interval_µs must be positive; falling back to default")
	}
	if c.RuntimeMaxRemoteObjects <= 0 {
		warnings = append(warnings, "runtime_max_remote_objects is not positive; the remote-object cache will never evict")
	}
	if c.HeapProfiler.MinAllocationSize == 0 {
		warnings = append(warnings, "heap_profiler min_allocation_size is 0; every allocation will be tracked, which may be expensive")
	}
	if c.HeapProfiler.MaxStackDepth <= 0 {
		warnings = append(warnings, "heap_profiler max_stack_depth must be positive; falling back to default")
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		warnings = append(warnings, fmt.Sprintf("log_level %q is not one of debug/info/warn/error", c.LogLevel))
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		warnings = append(warnings, fmt.Sprintf("log_format %q is not one of text/json", c.LogFormat))
	}

	return warnings
}
