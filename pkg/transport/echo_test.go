package transport

import (
	"context"
	"crypto/x509"
	"errors"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tlsecho/tlsecho-go/pkg/discovery"
	discoverymocks "github.com/tlsecho/tlsecho-go/pkg/discovery/mocks"
	"github.com/tlsecho/tlsecho-go/pkg/log"
)

type serveResult struct {
	msg *Message
	err error
}

func startServer(t *testing.T, config ServerConfig) (*Server, <-chan serveResult) {
	t.Helper()

	m := loadTestMaterial(t)
	config.TLSConfig = &TLSConfig{Certificate: m.serverCert}
	if config.Address == "" {
		config.Address = "127.0.0.1:0"
	}

	srv, err := NewServer(config)
	require.NoError(t, err)
	require.NoError(t, srv.Listen(context.Background()))
	t.Cleanup(func() { srv.Close() })

	results := make(chan serveResult, 1)
	go func() {
		msg, err := srv.ServeOne(context.Background())
		results <- serveResult{msg: msg, err: err}
	}()
	return srv, results
}

func newTestClient(t *testing.T, addr net.Addr, roots *x509.CertPool, payload []byte) *Client {
	t.Helper()
	c, err := NewClient(ClientConfig{
		TLSConfig: &TLSConfig{RootCAs: roots, ServerName: "localhost"},
		Address:   addr.String(),
		Payload:   payload,
	})
	require.NoError(t, err)
	return c
}

func waitResult(t *testing.T, results <-chan serveResult) serveResult {
	t.Helper()
	select {
	case res := <-results:
		return res
	case <-time.After(10 * time.Second):
		t.Fatal("server did not finish")
		return serveResult{}
	}
}

func TestEchoDefaultPayload(t *testing.T) {
	srv, results := startServer(t, ServerConfig{})
	client := newTestClient(t, srv.Addr(), loadTestMaterial(t).trustedRoots, nil)

	require.NoError(t, client.Send(context.Background()))

	res := waitResult(t, results)
	require.NoError(t, res.err)
	assert.Equal(t, 17, res.msg.Bytes)
	assert.Equal(t, "I AM A TLS PACKET", res.msg.Text)
	assert.NotEmpty(t, res.msg.ConnectionID)
	assert.NotNil(t, res.msg.RemoteAddr)
}

func TestEchoPayloads(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
	}{
		{"single byte", []byte("x")},
		{"utf8", []byte("grüße 👋")},
		{"kilobyte", []byte(strings.Repeat("a", 1024))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, results := startServer(t, ServerConfig{})
			client := newTestClient(t, srv.Addr(), loadTestMaterial(t).trustedRoots, tt.payload)

			require.NoError(t, client.Send(context.Background()))

			res := waitResult(t, results)
			require.NoError(t, res.err)
			assert.Equal(t, len(tt.payload), res.msg.Bytes)
			assert.Equal(t, string(tt.payload), res.msg.Text)
		})
	}
}

func TestEchoUntrustedServer(t *testing.T) {
	srv, results := startServer(t, ServerConfig{})
	client := newTestClient(t, srv.Addr(), loadTestMaterial(t).untrustedRoots, []byte("secret"))

	err := client.Send(context.Background())
	require.ErrorIs(t, err, ErrHandshakeProtocol)

	res := waitResult(t, results)
	require.Error(t, res.err)
	assert.Nil(t, res.msg)
}

func TestEchoServerCapture(t *testing.T) {
	capture := &recordingLogger{}
	srv, results := startServer(t, ServerConfig{ProtocolLogger: capture})
	client := newTestClient(t, srv.Addr(), loadTestMaterial(t).trustedRoots, nil)

	require.NoError(t, client.Send(context.Background()))
	res := waitResult(t, results)
	require.NoError(t, res.err)

	events := capture.Events()
	require.NotEmpty(t, events)

	first := events[0]
	require.NotNil(t, first.StateChange)
	assert.Equal(t, "CONNECTED", first.StateChange.NewState)

	last := events[len(events)-1]
	require.NotNil(t, last.StateChange)
	assert.Equal(t, "DISCONNECTED", last.StateChange.NewState)

	var app *log.ApplicationEvent
	for _, e := range events {
		assert.Equal(t, res.msg.ConnectionID, e.ConnectionID)
		assert.Equal(t, log.RoleServer, e.LocalRole)
		if e.Application != nil {
			app = e.Application
		}
	}
	require.NotNil(t, app)
	assert.Equal(t, []byte("I AM A TLS PACKET"), app.Data)
	assert.Positive(t, capture.count(log.CategoryRecord))
}

func TestEchoClientCapture(t *testing.T) {
	capture := &recordingLogger{}
	srv, results := startServer(t, ServerConfig{})

	client, err := NewClient(ClientConfig{
		TLSConfig:      &TLSConfig{RootCAs: loadTestMaterial(t).trustedRoots},
		Address:        srv.Addr().String(),
		ProtocolLogger: capture,
	})
	require.NoError(t, err)
	require.NoError(t, client.Send(context.Background()))
	require.NoError(t, waitResult(t, results).err)

	var out int
	var inTypes, outTypes []string
	for _, e := range capture.Events() {
		assert.Equal(t, log.RoleClient, e.LocalRole)
		if e.Category != log.CategoryRecord {
			continue
		}
		if e.Direction == log.DirectionOut {
			out++
			outTypes = append(outTypes, e.Record.ContentTypes...)
		} else {
			inTypes = append(inTypes, e.Record.ContentTypes...)
		}
	}
	assert.Positive(t, out)
	require.NotEmpty(t, inTypes)
	assert.Equal(t, "handshake", inTypes[0], "server flight starts with ServerHello")
	assert.Contains(t, outTypes, "application_data")
	assert.Equal(t, 1, capture.count(log.CategoryApplication))
}

func TestServerAdvertisesListenPort(t *testing.T) {
	adv := discoverymocks.NewMockAdvertiser(t)

	var advertised *discovery.ServiceInfo
	adv.EXPECT().Advertise(mock.Anything, mock.Anything).
		Run(func(_ context.Context, info *discovery.ServiceInfo) { advertised = info }).
		Return(nil).Once()
	adv.EXPECT().Stop().Return(nil).Once()

	srv, results := startServer(t, ServerConfig{Advertiser: adv})
	require.NotNil(t, advertised)
	assert.Equal(t, srv.Addr().(*net.TCPAddr).Port, advertised.Port)
	assert.Equal(t, "localhost", advertised.ServerName)
	assert.Equal(t, ALPNProtocol, advertised.ALPN)

	client := newTestClient(t, srv.Addr(), loadTestMaterial(t).trustedRoots, nil)
	require.NoError(t, client.Send(context.Background()))
	require.NoError(t, waitResult(t, results).err)

	// Close after ServeOne must not stop the advertiser twice.
	require.NoError(t, srv.Close())
}

func TestServerAdvertiseFailureClosesListener(t *testing.T) {
	adv := discoverymocks.NewMockAdvertiser(t)
	adv.EXPECT().Advertise(mock.Anything, mock.Anything).Return(errors.New("no multicast")).Once()

	srv, err := NewServer(ServerConfig{
		TLSConfig:  &TLSConfig{Certificate: loadTestMaterial(t).serverCert},
		Address:    "127.0.0.1:0",
		Advertiser: adv,
	})
	require.NoError(t, err)

	err = srv.Listen(context.Background())
	require.ErrorContains(t, err, "no multicast")
	assert.Nil(t, srv.Addr())
}

func TestServerListenTwice(t *testing.T) {
	srv, err := NewServer(ServerConfig{
		TLSConfig: &TLSConfig{Certificate: loadTestMaterial(t).serverCert},
		Address:   "127.0.0.1:0",
	})
	require.NoError(t, err)
	require.NoError(t, srv.Listen(context.Background()))
	defer srv.Close()

	assert.Error(t, srv.Listen(context.Background()))
}

func TestServeOneCancelled(t *testing.T) {
	srv, err := NewServer(ServerConfig{
		TLSConfig: &TLSConfig{Certificate: loadTestMaterial(t).serverCert},
		Address:   "127.0.0.1:0",
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := srv.ServeOne(ctx)
		done <- err
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("ServeOne did not return after cancel")
	}
}

func TestServerPeerClosesEarly(t *testing.T) {
	srv, results := startServer(t, ServerConfig{})

	conn, err := net.Dial("tcp", srv.Addr().String())
	require.NoError(t, err)
	conn.Close()

	res := waitResult(t, results)
	require.ErrorIs(t, res.err, ErrHandshakeIO)
	assert.Nil(t, res.msg)
}

func TestClientConnectRefused(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr()
	l.Close()

	client := newTestClient(t, addr, loadTestMaterial(t).trustedRoots, nil)
	err = client.Send(context.Background())
	require.ErrorContains(t, err, "failed to connect")
	assert.NotErrorIs(t, err, ErrHandshakeIO)
}

func TestNewServerRequiresCertificate(t *testing.T) {
	_, err := NewServer(ServerConfig{})
	assert.Error(t, err)

	_, err = NewServer(ServerConfig{TLSConfig: &TLSConfig{}})
	assert.Error(t, err)
}

func TestNewClientRequiresRoots(t *testing.T) {
	_, err := NewClient(ClientConfig{})
	assert.Error(t, err)

	_, err = NewClient(ClientConfig{TLSConfig: &TLSConfig{}})
	assert.Error(t, err)
}
