package common

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Protocol defaults. The port and timeout match what the remote application
// uses out of the box; raise the timeout for slow machines.
const (
	DefaultHost    = "127.0.0.1"
	DefaultPort    = 20500
	DefaultTimeout = 1000 * time.Millisecond

	// LaunchLineWait bounds how long the launcher waits for each stdout line
	// of a freshly spawned remote application before giving up.
	LaunchLineWait = 5 * time.Second
)

// --------------------------------------------------------------------------
// RPC client configuration struct
// --------------------------------------------------------------------------

// ClientConfig holds all parameters needed to reach (or start) the remote
// simulation application.
type ClientConfig struct {
	// Connection parameters
	Host    string
	Port    int
	Timeout time.Duration

	// Auto-launch parameters. AppPath is the remote application binary;
	// AppArgs is a space-separated argument string. When a non-default port
	// is configured, a "/PORT=<port>" flag is appended at launch time.
	AppPath    string
	AppArgs    string
	AutoLaunch bool
}

// NewClientConfig returns a configuration with protocol defaults applied.
func NewClientConfig() ClientConfig {
	return ClientConfig{
		Host:    DefaultHost,
		Port:    DefaultPort,
		Timeout: DefaultTimeout,
	}
}

// Endpoint returns the host:port address string.
func (c *ClientConfig) Endpoint() string {
	host := c.Host
	if host == "" {
		host = DefaultHost
	}
	port := c.Port
	if port <= 0 {
		port = DefaultPort
	}
	return fmt.Sprintf("%s:%d", host, port)
}

// EffectiveTimeout returns the configured timeout or the protocol default.
func (c *ClientConfig) EffectiveTimeout() time.Duration {
	if c.Timeout <= 0 {
		return DefaultTimeout
	}
	return c.Timeout
}

// LaunchArgs returns the argument vector for spawning the remote application,
// splitting AppArgs on spaces and appending the /PORT flag for non-default
// ports.
func (c *ClientConfig) LaunchArgs() []string {
	args := strings.Fields(c.AppArgs)
	if c.Port > 0 && c.Port != DefaultPort {
		args = append(args, "/PORT="+strconv.Itoa(c.Port))
	}
	return args
}

// String returns a formatted string representation of the configuration
func (c *ClientConfig) String() string {
	var sb strings.Builder

	// Create helper functions for consistent formatting
	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	addSection("Connection")
	addField("Endpoint", c.Endpoint())
	addField("Timeout", c.EffectiveTimeout().String())

	addSection("Auto-Launch")
	addField("Enabled", strconv.FormatBool(c.AutoLaunch))
	if c.AutoLaunch {
		addField("Binary", c.AppPath)
		addField("Arguments", strings.Join(c.LaunchArgs(), " "))
	}

	return sb.String()
}
