// Package transport implements the CDP WebSocket listener: HTTP/WS
// handshake, origin policy, frame size enforcement, and the per-connection
// read/write pumps. Grounded on vango's pkg/server (Server/upgrader/
// HandleWebSocket shape) and on the original Rust cdp_server's
// transport.rs/config.rs (origin wildcard matching, message-size
// validation, ServerConfig field set and defaults).
package transport

import "time"

// Config is the CDP transport's listener configuration (spec.md §6
// "Server Configuration").
type Config struct {
	// BindAddress is the interface to listen on. Defaults to 127.0.0.1,
	// i.e. localhost-only, matching Chrome's own default remote-debugging
	// posture.
	BindAddress string `yaml:"bind_address"`

	// Port is the TCP port to listen on.
	Port uint16 `yaml:"port"`

	// MaxMessageSize caps an individual inbound WebSocket frame, in bytes.
	MaxMessageSize int64 `yaml:"max_message_size"`

	// AllowedOrigins is the Origin header allow-list. Entries ending in
	// "*" match by prefix; all other entries must match exactly.
	AllowedOrigins []string `yaml:"allowed_origins"`

	// EnableRemoteDebugging gates whether the /json HTTP discovery surface
	// and WebSocket upgrade are served at all. When false the listener
	// still binds (for health checks) but refuses every CDP connection.
	EnableRemoteDebugging bool `yaml:"enable_remote_debugging"`

	// ProtocolVersion is reported from the /json/version discovery
	// endpoint and from Browser.getVersion.
	ProtocolVersion string `yaml:"protocol_version"`

	// HandshakeTimeout bounds how long the listener waits to read an
	// incoming HTTP request's headers, including the WebSocket upgrade
	// request (http.Server.ReadHeaderTimeout).
	HandshakeTimeout time.Duration `yaml:"handshake_timeout"`

	// ReadTimeout/WriteTimeout bound individual frame I/O once a
	// connection is established.
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// ShutdownTimeout bounds graceful drain on Stop.
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// DefaultConfig returns the configuration the original implementation
// ships with: port 9222 (Chrome's canonical remote-debugging port),
// 100MB message cap, localhost-only origins, bound to loopback.
func DefaultConfig() Config {
	return Config{
		BindAddress:           "127.0.0.1",
		Port:                  9222,
		MaxMessageSize:        100 * 1024 * 1024,
		AllowedOrigins:        []string{"http://localhost:*"},
		EnableRemoteDebugging: true,
		ProtocolVersion:       "1.3",
		HandshakeTimeout:      10 * time.Second,
		ReadTimeout:           60 * time.Second,
		WriteTimeout:          10 * time.Second,
		ShutdownTimeout:       5 * time.Second,
	}
}

// Validate returns human-readable warnings for configuration values that
// are legal but likely mistakes. It never returns hard errors: an
// operator overriding these fields is assumed to know what they want,
// matching vango's GetConfigWarnings/ValidateConfig split (warn, don't
// refuse to start).
func (c Config) Validate() []string {
	var warnings []string

	if c.Port == 0 {
		warnings = append(warnings, "port is 0; the OS will assign an ephemeral port")
	}
	if c.MaxMessageSize <= 0 {
		warnings = append(warnings, "max_message_size must be positive; falling back to default")
	}
	if len(c.AllowedOrigins) == 0 {
		warnings = append(warnings, "allowed_origins is empty; every WebSocket upgrade will be refused")
	}
	if c.BindAddress != "127.0.0.1" && c.BindAddress != "localhost" {
		warnings = append(warnings, "bind_address is not loopback; remote-debugging will be reachable off-host")
	}
	for _, origin := range c.AllowedOrigins {
		if origin == "*" {
			warnings = append(warnings, "allowed_origins contains a bare \"*\"; this allows any origin to attach a debugger session")
		}
	}

	return warnings
}
