// Package log provides protocol capture for tlsecho connections.
//
// Capture is separate from operational logging (slog). The handshake pump
// and the echo endpoints emit Events describing every TLS record moved,
// every state transition and every failure, so a run can be replayed and
// inspected afterwards.
//
// # Basic Usage
//
//	// Console output while developing
//	cfg.ProtocolLogger = log.NewSlogAdapter(slog.Default())
//
//	// Binary capture file
//	cfg.ProtocolLogger, _ = log.NewFileLogger("server.tlog")
//
//	// Both
//	cfg.ProtocolLogger = log.NewMultiLogger(console, file)
//
// # Event Types
//
//   - Transport: ciphertext records read or written by the pump (RecordEvent)
//   - Session: handshake state changes and handshake errors
//   - Application: decrypted payloads (ApplicationEvent)
//
// # File Format
//
// Capture files are a stream of CBOR-encoded events with integer keys and
// use the .tlog extension. The tlsecho-log command views them.
package log
