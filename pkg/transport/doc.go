// Package transport provides the tlsecho transport layer implementation.
//
// The transport layer handles:
//   - Driving a TLS session to handshake completion over a byte stream
//   - A sans-IO adapter that exposes crypto/tls as a Session
//   - The single-shot echo server and one-directional echo client
//
// # Protocol Stack
//
//	┌────────────────────────────────┐
//	│   Payload (application data)   │
//	├────────────────────────────────┤
//	│     TLS (crypto/tls Engine)    │
//	├────────────────────────────────┤
//	│         Handshake Pump         │
//	├────────────────────────────────┤
//	│              TCP               │
//	└────────────────────────────────┘
//
// # Handshake Pump
//
// The pump shuttles records between a Session and a transport. Each
// iteration reads once if the session wants input, then drains every
// queued write. The loop is bounded by a budget of iterations (32 by
// default); a peer that never completes the handshake yields
// ErrHandshakeTimeout instead of spinning forever. There is no wall-clock
// timeout.
//
// # Errors
//
// Failures are classified with sentinel errors that can be matched with
// errors.Is:
//   - ErrHandshakeTimeout: budget exhausted
//   - ErrHandshakeIO: transport read or write failed
//   - ErrHandshakeProtocol: the TLS engine rejected a record
//   - ErrApplicationRead: reading application data failed
//
// Nothing is retried.
package transport
