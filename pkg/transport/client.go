package transport

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"log/slog"
	"net"
	"time"

	"github.com/google/uuid"
	"github.com/tlsecho/tlsecho-go/pkg/log"
)

// ClientConfig configures the echo client.
type ClientConfig struct {
	// TLSConfig contains the trust root and expected server name.
	TLSConfig *TLSConfig

	// Address to dial (default: localhost:9999).
	Address string

	// Payload is the message to send (default: DefaultPayload).
	Payload []byte

	// HandshakeBudget bounds the handshake pump (default: 32).
	HandshakeBudget int

	// ConnectTimeout is the dial timeout (default: 30s).
	ConnectTimeout time.Duration

	// Logger for operational messages (optional).
	Logger *slog.Logger

	// ProtocolLogger for protocol capture (optional).
	ProtocolLogger log.Logger
}

// Client connects to the echo server and sends one payload. It does not
// read a response.
type Client struct {
	config  ClientConfig
	tlsConf *tls.Config
	logger  *slog.Logger
}

// NewClient creates an echo client.
func NewClient(config ClientConfig) (*Client, error) {
	if config.TLSConfig == nil {
		return nil, fmt.Errorf("TLSConfig is required")
	}
	if config.Address == "" {
		config.Address = DefaultAddress
	}
	if len(config.Payload) == 0 {
		config.Payload = DefaultPayload
	}
	if config.ConnectTimeout == 0 {
		config.ConnectTimeout = 30 * time.Second
	}

	tlsConf, err := NewClientTLSConfig(config.TLSConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create TLS config: %w", err)
	}

	return &Client{
		config:  config,
		tlsConf: tlsConf,
		logger:  loggerOrDiscard(config.Logger),
	}, nil
}

// Send dials the server and runs Exchange on the new connection.
func (c *Client) Send(ctx context.Context) error {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.ConnectTimeout)
		defer cancel()
	}

	dialer := &net.Dialer{}
	conn, err := dialer.DialContext(ctx, "tcp", c.config.Address)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer conn.Close()

	return c.Exchange(conn)
}

// Exchange writes the payload into a new client session, flushes the
// ClientHello and pumps the handshake. The payload is held by the session
// until the handshake completes and leaves with its trailing writes.
func (c *Client) Exchange(conn io.ReadWriter) error {
	connID := uuid.New().String()

	sess := NewClientEngine(c.tlsConf)
	defer sess.Close()

	if _, err := sess.Write(c.config.Payload); err != nil {
		return fmt.Errorf("failed to queue payload: %w", err)
	}
	n, err := sess.WriteTLS(conn)
	if err != nil {
		return handshakeIOError("write", err)
	}
	c.logger.Log(context.Background(), LevelTrace, "client: sent hello",
		slog.String("conn_id", connID),
		slog.Int("bytes", n),
	)

	pump := Pump{
		Budget:  c.config.HandshakeBudget,
		Logger:  c.logger,
		Capture: c.config.ProtocolLogger,
		ConnID:  connID,
		Role:    log.RoleClient,
	}
	if err := pump.Run(sess, conn); err != nil {
		return err
	}
	if err := VerifyConnection(sess.ConnectionState()); err != nil {
		return handshakeProtocolError(err)
	}
	c.logger.Info("client: finished TLS handshake", slog.String("conn_id", connID))

	if c.config.ProtocolLogger != nil {
		c.config.ProtocolLogger.Log(log.Event{
			Timestamp:    time.Now(),
			ConnectionID: connID,
			Direction:    log.DirectionOut,
			Layer:        log.LayerApplication,
			Category:     log.CategoryApplication,
			LocalRole:    log.RoleClient,
			Application:  log.NewApplicationEvent(c.config.Payload),
		})
	}
	return nil
}
