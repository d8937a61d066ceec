package transport

import (
	"context"
	"io"
	"net"
)

// Session is the capability set the handshake pump drives.
// Implemented by Engine.
type Session interface {
	// IsHandshaking reports whether the handshake is still incomplete.
	// Once false it stays false for the lifetime of the session.
	IsHandshaking() bool

	// WantsRead reports whether the session is waiting for more ciphertext.
	WantsRead() bool

	// WantsWrite reports whether ciphertext is queued for the transport.
	WantsWrite() bool

	// ReadTLS performs one read from r and buffers the ciphertext.
	// Returns io.EOF when r reached end of stream.
	ReadTLS(r io.Reader) (int, error)

	// ProcessNewPackets hands buffered ciphertext to the TLS engine.
	ProcessNewPackets() error

	// WriteTLS writes one queued batch of ciphertext to w.
	WriteTLS(w io.Writer) (int, error)

	// Read drains decrypted application data.
	Read(p []byte) (int, error)

	// Write queues application data for encryption.
	Write(p []byte) (int, error)
}

// EchoServer represents the single-shot echo server.
// Implemented by Server.
type EchoServer interface {
	// Listen binds the listen address.
	Listen(ctx context.Context) error

	// Addr returns the bound address.
	Addr() net.Addr

	// ServeOne accepts a single connection and reads one message.
	ServeOne(ctx context.Context) (*Message, error)

	// Close releases the listener.
	Close() error
}

// EchoClient represents the one-directional echo client.
// Implemented by Client.
type EchoClient interface {
	// Send dials the server and delivers the payload.
	Send(ctx context.Context) error

	// Exchange delivers the payload over an established transport.
	Exchange(conn io.ReadWriter) error
}

// Compile-time interface satisfaction checks.
var (
	_ Session    = (*Engine)(nil)
	_ EchoServer = (*Server)(nil)
	_ EchoClient = (*Client)(nil)
)
