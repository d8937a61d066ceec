package transport

import (
	"crypto/tls"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClientTLSConfig(t *testing.T) {
	roots := loadTestMaterial(t).trustedRoots

	conf, err := NewClientTLSConfig(&TLSConfig{RootCAs: roots})
	require.NoError(t, err)
	assert.Equal(t, DefaultServerName, conf.ServerName)
	assert.Same(t, roots, conf.RootCAs)
	assert.False(t, conf.InsecureSkipVerify)
	assert.Equal(t, uint16(tls.VersionTLS13), conf.MinVersion)
	assert.Equal(t, []string{ALPNProtocol}, conf.NextProtos)
}

func TestNewClientTLSConfigRequiresRoots(t *testing.T) {
	_, err := NewClientTLSConfig(&TLSConfig{ServerName: "localhost"})
	assert.ErrorContains(t, err, "root CA pool is required")

	_, err = NewClientTLSConfig(nil)
	assert.Error(t, err)
}

func TestNewServerTLSConfigRequiresCertificate(t *testing.T) {
	_, err := NewServerTLSConfig(&TLSConfig{})
	assert.ErrorContains(t, err, "server certificate is required")

	conf, err := NewServerTLSConfig(&TLSConfig{Certificate: loadTestMaterial(t).serverCert})
	require.NoError(t, err)
	assert.Equal(t, tls.NoClientCert, conf.ClientAuth)
	assert.True(t, conf.SessionTicketsDisabled)
}

func TestVerifyConnection(t *testing.T) {
	good := tls.ConnectionState{Version: tls.VersionTLS13, NegotiatedProtocol: ALPNProtocol}
	assert.NoError(t, VerifyConnection(good))

	oldVersion := good
	oldVersion.Version = tls.VersionTLS12
	assert.Error(t, VerifyConnection(oldVersion))

	wrongALPN := good
	wrongALPN.NegotiatedProtocol = "h2"
	assert.Error(t, VerifyConnection(wrongALPN))
}
