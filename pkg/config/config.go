// Package config loads tlsecho settings from a YAML file.
//
// Every field is optional; missing fields keep their defaults, which
// reproduce the fixed network identity of the demo (localhost:9999,
// server name "localhost", a budget of 32 handshake iterations).
//
// Example:
//
//	address: localhost:9999
//	server_name: localhost
//	handshake_budget: 32
//	payload: I AM A TLS PACKET
//	connect_timeout: 30s
//	log_level: info
//	protocol_log: /tmp/tlsecho.tlog
//	advertise: false
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults.
const (
	DefaultAddress         = "localhost:9999"
	DefaultServerName      = "localhost"
	DefaultHandshakeBudget = 32
	DefaultPayload         = "I AM A TLS PACKET"
	DefaultConnectTimeout  = 30 * time.Second
	DefaultLogLevel        = "info"
)

// Config holds the settings shared by the server and client commands.
type Config struct {
	// Address is the TCP address the server binds and the client dials.
	Address string `yaml:"address"`

	// ServerName is the name the client verifies in the server certificate.
	ServerName string `yaml:"server_name"`

	// HandshakeBudget bounds the handshake pump iterations.
	HandshakeBudget int `yaml:"handshake_budget"`

	// Payload is the message the client sends.
	Payload string `yaml:"payload"`

	// ConnectTimeout bounds the client's TCP dial.
	ConnectTimeout time.Duration `yaml:"connect_timeout"`

	// LogLevel is one of trace, debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	// ProtocolLog is a capture file path. Empty disables capture.
	ProtocolLog string `yaml:"protocol_log"`

	// Advertise enables mDNS advertisement of the server.
	Advertise bool `yaml:"advertise"`

	// Interface restricts mDNS advertisement to one network interface.
	Interface string `yaml:"interface"`
}

// LoadError describes a config file that could not be used.
type LoadError struct {
	File    string
	Message string
	Cause   error
}

func (e *LoadError) Error() string {
	msg := e.Message
	if e.File != "" {
		msg = e.File + ": " + msg
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Address:         DefaultAddress,
		ServerName:      DefaultServerName,
		HandshakeBudget: DefaultHandshakeBudget,
		Payload:         DefaultPayload,
		ConnectTimeout:  DefaultConnectTimeout,
		LogLevel:        DefaultLogLevel,
	}
}

// Parse decodes YAML over the defaults and validates the result.
// Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, &LoadError{Message: "failed to parse YAML", Cause: err}
	}

	if err := cfg.Validate(); err != nil {
		return nil, &LoadError{Message: "invalid configuration", Cause: err}
	}
	return cfg, nil
}

// Load reads and parses a config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{File: path, Message: "failed to read file", Cause: err}
	}

	cfg, err := Parse(data)
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) {
			le.File = path
		}
		return nil, err
	}
	return cfg, nil
}

// Validate checks field values.
func (c *Config) Validate() error {
	if _, _, err := net.SplitHostPort(c.Address); err != nil {
		return fmt.Errorf("address %q: %w", c.Address, err)
	}
	if strings.TrimSpace(c.ServerName) == "" {
		return errors.New("server_name is required")
	}
	if c.HandshakeBudget <= 0 {
		return fmt.Errorf("handshake_budget must be positive, got %d", c.HandshakeBudget)
	}
	if c.Payload == "" {
		return errors.New("payload must not be empty")
	}
	if c.ConnectTimeout < 0 {
		return fmt.Errorf("connect_timeout must not be negative, got %s", c.ConnectTimeout)
	}
	switch strings.ToLower(c.LogLevel) {
	case "trace", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("unknown log_level %q", c.LogLevel)
	}
	return nil
}
