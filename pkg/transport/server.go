package transport

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tlsecho/tlsecho-go/pkg/discovery"
	"github.com/tlsecho/tlsecho-go/pkg/log"
)

// ServerConfig configures the echo server.
type ServerConfig struct {
	// TLSConfig contains the server certificate and key.
	TLSConfig *TLSConfig

	// Address to listen on (default: localhost:9999).
	Address string

	// HandshakeBudget bounds the handshake pump (default: 32).
	HandshakeBudget int

	// Logger for operational messages (optional).
	Logger *slog.Logger

	// ProtocolLogger for protocol capture (optional).
	ProtocolLogger log.Logger

	// Advertiser publishes the server over mDNS while it listens (optional).
	Advertiser discovery.Advertiser

	// ServerName is advertised in mDNS TXT records (default: localhost).
	ServerName string
}

// Message is the application data read by the server.
type Message struct {
	// ConnectionID identifies the connection in protocol captures.
	ConnectionID string

	// RemoteAddr is the client address.
	RemoteAddr net.Addr

	// Bytes is the number of plaintext bytes read.
	Bytes int

	// Text is the plaintext.
	Text string
}

// Server accepts exactly one connection, completes a TLS handshake and
// reads one message.
type Server struct {
	config  ServerConfig
	tlsConf *tls.Config
	logger  *slog.Logger

	mu         sync.Mutex
	listener   net.Listener
	advertised bool
}

// NewServer creates an echo server.
func NewServer(config ServerConfig) (*Server, error) {
	if config.TLSConfig == nil {
		return nil, fmt.Errorf("TLSConfig is required")
	}
	if config.Address == "" {
		config.Address = DefaultAddress
	}
	if config.ServerName == "" {
		config.ServerName = DefaultServerName
	}

	tlsConf, err := NewServerTLSConfig(config.TLSConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create TLS config: %w", err)
	}

	return &Server{
		config:  config,
		tlsConf: tlsConf,
		logger:  loggerOrDiscard(config.Logger),
	}, nil
}

// Listen binds the listen address and starts advertising, if configured.
func (s *Server) Listen(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener != nil {
		return fmt.Errorf("server already listening")
	}

	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", s.config.Address)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	if s.config.Advertiser != nil {
		port := listener.Addr().(*net.TCPAddr).Port
		err := s.config.Advertiser.Advertise(ctx, &discovery.ServiceInfo{
			Port:       port,
			ServerName: s.config.ServerName,
			ALPN:       ALPNProtocol,
		})
		if err != nil {
			listener.Close()
			return fmt.Errorf("failed to advertise: %w", err)
		}
		s.advertised = true
	}

	s.listener = listener
	s.logger.Info("server: listening", slog.String("addr", listener.Addr().String()))
	return nil
}

// Addr returns the listen address, or nil before Listen.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr()
	}
	return nil
}

// ServeOne accepts one connection, handles it, and stops serving.
// It calls Listen first if needed. Cancelling ctx aborts Accept.
func (s *Server) ServeOne(ctx context.Context) (*Message, error) {
	if s.Addr() == nil {
		if err := s.Listen(ctx); err != nil {
			return nil, err
		}
	}
	defer s.Close()

	s.mu.Lock()
	listener := s.listener
	s.mu.Unlock()

	stop := context.AfterFunc(ctx, func() { listener.Close() })
	defer stop()

	conn, err := listener.Accept()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("accept error: %w", err)
	}
	defer conn.Close()

	return s.Handle(conn)
}

// Handle runs the server side of the exchange on an accepted connection.
func (s *Server) Handle(conn net.Conn) (*Message, error) {
	connID := uuid.New().String()
	remote := conn.RemoteAddr()
	s.logger.Info("server: accepted connection",
		slog.String("conn_id", connID),
		slog.String("remote_addr", remote.String()),
	)
	s.captureState(connID, remote, log.StateEntityConnection, "", "CONNECTED")
	defer s.captureState(connID, remote, log.StateEntityConnection, "CONNECTED", "DISCONNECTED")

	sess := NewServerEngine(s.tlsConf)
	defer sess.Close()

	pump := Pump{
		Budget:  s.config.HandshakeBudget,
		Logger:  s.logger,
		Capture: s.config.ProtocolLogger,
		ConnID:  connID,
		Role:    log.RoleServer,
	}
	if err := pump.Run(sess, conn); err != nil {
		return nil, err
	}
	if err := VerifyConnection(sess.ConnectionState()); err != nil {
		return nil, handshakeProtocolError(err)
	}
	s.logger.Info("server: finished TLS handshake", slog.String("conn_id", connID))

	text, err := readMessage(sess, conn)
	if err != nil {
		return nil, err
	}
	s.logger.Info(fmt.Sprintf("server: read %d bytes: %q", len(text), text),
		slog.String("conn_id", connID),
	)

	if s.config.ProtocolLogger != nil {
		s.config.ProtocolLogger.Log(log.Event{
			Timestamp:    time.Now(),
			ConnectionID: connID,
			Direction:    log.DirectionIn,
			Layer:        log.LayerApplication,
			Category:     log.CategoryApplication,
			LocalRole:    log.RoleServer,
			RemoteAddr:   remote.String(),
			Application:  log.NewApplicationEvent([]byte(text)),
		})
	}

	return &Message{
		ConnectionID: connID,
		RemoteAddr:   remote,
		Bytes:        len(text),
		Text:         text,
	}, nil
}

// readMessage performs one read from the transport and returns every
// plaintext byte buffered afterwards. The peer may close right after its
// last flight, so end of stream is not an error here.
func readMessage(sess Session, conn io.Reader) (string, error) {
	if _, err := sess.ReadTLS(conn); err != nil && !errors.Is(err, io.EOF) {
		return "", applicationReadError("read", err)
	}
	if err := sess.ProcessNewPackets(); err != nil {
		return "", applicationReadError("process", err)
	}

	var b strings.Builder
	if _, err := io.Copy(&b, sess); err != nil {
		return "", applicationReadError("decrypt", err)
	}
	return b.String(), nil
}

// Close stops listening and withdraws the advertisement.
// It is safe to call Close multiple times.
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	if s.advertised {
		s.advertised = false
		if err := s.config.Advertiser.Stop(); err != nil {
			errs = append(errs, err)
		}
	}
	if s.listener != nil {
		if err := s.listener.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *Server) captureState(connID string, remote net.Addr, entity log.StateEntity, oldState, newState string) {
	if s.config.ProtocolLogger == nil {
		return
	}
	s.config.ProtocolLogger.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: connID,
		Layer:        log.LayerTransport,
		Category:     log.CategoryState,
		LocalRole:    log.RoleServer,
		RemoteAddr:   remote.String(),
		StateChange: &log.StateChangeEvent{
			Entity:   entity,
			OldState: oldState,
			NewState: newState,
		},
	})
}

func loggerOrDiscard(l *slog.Logger) *slog.Logger {
	if l != nil {
		return l
	}
	return slog.New(slog.DiscardHandler)
}
