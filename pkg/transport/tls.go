package transport

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
)

// TLS constants for the echo protocol.
const (
	// ALPNProtocol is the ALPN identifier offered by both endpoints.
	ALPNProtocol = "tlsecho/1"

	// DefaultAddress is the address the server binds and the client dials.
	// "localhost" because that is the DNS name in the certificates.
	DefaultAddress = "localhost:9999"

	// DefaultServerName is the name the client verifies the server
	// certificate against.
	DefaultServerName = "localhost"
)

// DefaultPayload is the single application message sent by the client.
var DefaultPayload = []byte("I AM A TLS PACKET")

// TLSConfig holds the material for building server and client configs.
type TLSConfig struct {
	// Certificate is the server certificate chain and private key.
	Certificate tls.Certificate

	// RootCAs is the pool of trusted CA certificates for clients.
	RootCAs *x509.CertPool

	// ServerName is the expected server name for client connections.
	ServerName string
}

// NewServerTLSConfig creates a TLS configuration for the echo server.
// Clients are not asked for a certificate.
func NewServerTLSConfig(cfg *TLSConfig) (*tls.Config, error) {
	if cfg == nil {
		return nil, fmt.Errorf("TLSConfig is required")
	}
	if len(cfg.Certificate.Certificate) == 0 {
		return nil, fmt.Errorf("server certificate is required")
	}

	return &tls.Config{
		// TLS 1.3 only - no fallback
		MinVersion: tls.VersionTLS13,
		MaxVersion: tls.VersionTLS13,

		ClientAuth:   tls.NoClientCert,
		Certificates: []tls.Certificate{cfg.Certificate},
		NextProtos:   []string{ALPNProtocol},

		CurvePreferences: []tls.CurveID{
			tls.X25519,
			tls.CurveP256,
		},

		// Single-shot exchange, no resumption
		SessionTicketsDisabled: true,
	}, nil
}

// NewClientTLSConfig creates a TLS configuration for the echo client.
func NewClientTLSConfig(cfg *TLSConfig) (*tls.Config, error) {
	if cfg == nil {
		return nil, fmt.Errorf("TLSConfig is required")
	}
	if cfg.RootCAs == nil {
		return nil, fmt.Errorf("root CA pool is required")
	}
	serverName := cfg.ServerName
	if serverName == "" {
		serverName = DefaultServerName
	}

	return &tls.Config{
		MinVersion: tls.VersionTLS13,
		MaxVersion: tls.VersionTLS13,

		RootCAs:    cfg.RootCAs,
		ServerName: serverName,
		NextProtos: []string{ALPNProtocol},

		CurvePreferences: []tls.CurveID{
			tls.X25519,
			tls.CurveP256,
		},

		SessionTicketsDisabled: true,
	}, nil
}

// VerifyTLS13 checks that a TLS connection is using TLS 1.3.
func VerifyTLS13(state tls.ConnectionState) error {
	if state.Version != tls.VersionTLS13 {
		return fmt.Errorf("TLS version %x is not TLS 1.3 (0x0304)", state.Version)
	}
	return nil
}

// VerifyALPN checks that the negotiated ALPN protocol is correct.
func VerifyALPN(state tls.ConnectionState) error {
	if state.NegotiatedProtocol != ALPNProtocol {
		return fmt.Errorf("ALPN protocol %q is not %q", state.NegotiatedProtocol, ALPNProtocol)
	}
	return nil
}

// VerifyConnection performs standard echo connection verification.
func VerifyConnection(state tls.ConnectionState) error {
	if err := VerifyTLS13(state); err != nil {
		return err
	}
	if err := VerifyALPN(state); err != nil {
		return err
	}
	return nil
}
