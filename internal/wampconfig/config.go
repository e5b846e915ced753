// Package wampconfig handles client configuration loading.
package wampconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultSearchPaths returns the config file search order.
// An explicit path (from -config flag) is checked first.
// Then: ./wampclient.yaml, ~/.config/wampclient/config.yaml, /etc/wampclient/config.yaml.
func DefaultSearchPaths() []string {
	paths := []string{"wampclient.yaml"}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "wampclient", "config.yaml"))
	}

	paths = append(paths, "/etc/wampclient/config.yaml")
	return paths
}

// searchPathsFunc is a seam for tests to avoid picking up real config
// files on the developer's machine.
var searchPathsFunc = DefaultSearchPaths

// FindConfig locates a config file. If explicit is non-empty, it must exist.
// Otherwise, searches DefaultSearchPaths and returns the first that exists.
// Returns the path found, or an error if nothing was found.
func FindConfig(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	paths := searchPathsFunc()
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}

	return "", fmt.Errorf("no config file found (searched: %v)", paths)
}

// Config holds the client-side session configuration: everything needed
// to open a realm against a router and advertise roles.
type Config struct {
	// RouterURL is the WebSocket endpoint of the router, e.g.
	// "wss://router.example.com/ws".
	RouterURL string `yaml:"router_url"`

	// Realm is the realm to join.
	Realm string `yaml:"realm"`

	// Serializer selects the wire serialization: "json" or "msgpack".
	Serializer string `yaml:"serializer"`

	// Agent is the client name string advertised in HELLO details.
	// Empty uses buildinfo's default.
	Agent string `yaml:"agent"`

	// Roles is the advertised role set. Caller, Subscriber, and
	// Publisher are always advertised regardless of this list; set
	// Callee here to advertise register support.
	Roles RolesConfig `yaml:"roles"`

	// Auth configures challenge-response authentication. AuthMethods
	// empty means no auth methods are advertised and the session will
	// abort if the router issues a CHALLENGE.
	Auth AuthConfig `yaml:"auth"`

	// Reconnect controls the single-retry auto-reconnect behavior.
	Reconnect ReconnectConfig `yaml:"reconnect"`

	// LogLevel is one of trace, debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

// RolesConfig selects which optional roles this client advertises.
// Caller, Subscriber, and Publisher are always advertised unconditionally.
type RolesConfig struct {
	Callee bool `yaml:"callee"`
}

// AuthConfig configures the HELLO details' auth fields.
type AuthConfig struct {
	AuthMethods []string `yaml:"auth_methods"`
	AuthID      string   `yaml:"auth_id"`
	AuthRole    string   `yaml:"auth_role"`
}

// ReconnectConfig controls whether a fresh session is established after
// a transport disconnect that carried neither a reason nor an error.
type ReconnectConfig struct {
	Enabled bool          `yaml:"enabled"`
	Delay   time.Duration `yaml:"delay"`
}

// Configured reports whether enough information is present to attempt a
// connection (router URL and realm).
func (c *Config) Configured() bool {
	return c.RouterURL != "" && c.Realm != ""
}

// Load reads configuration from a YAML file, expands environment
// variables, applies defaults for any unset fields, and validates the
// result. After Load returns successfully, all fields are usable without
// additional nil/empty checks.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Expand environment variables (e.g., ${WAMP_ROUTER_URL}). This is a
	// convenience for container deployments; the recommended approach is
	// to put values directly in the config file.
	expanded := os.ExpandEnv(string(data))

	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// applyDefaults fills in zero-value fields with sensible defaults.
// Called automatically by Load. After this, callers can read any field
// without checking for empty strings or zero values.
func (c *Config) applyDefaults() {
	if c.Serializer == "" {
		c.Serializer = "json"
	}
	if c.Reconnect.Delay == 0 {
		c.Reconnect.Delay = time.Second
	}
}

// Validate checks that the configuration is internally consistent. It
// runs after applyDefaults, so it can assume defaults are populated.
// Returns an error describing the first problem found, or nil.
func (c *Config) Validate() error {
	switch c.Serializer {
	case "json", "msgpack":
	default:
		return fmt.Errorf("serializer %q must be \"json\" or \"msgpack\"", c.Serializer)
	}
	if c.LogLevel != "" {
		if _, err := ParseLogLevel(c.LogLevel); err != nil {
			return err
		}
	}
	return nil
}

// Default returns a default configuration suitable for local development
// against a router on localhost. All defaults are already applied.
func Default() *Config {
	cfg := &Config{
		RouterURL: "ws://127.0.0.1:8080/ws",
		Realm:     "realm1",
	}
	cfg.applyDefaults()
	return cfg
}
