package transport

import (
	"crypto/tls"
	"crypto/x509"
	"net"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tlsecho/tlsecho-go/pkg/cert"
	"github.com/tlsecho/tlsecho-go/pkg/log"
)

// testMaterial holds a CA-signed localhost certificate and two trust roots:
// one that issued the certificate and one that did not.
type testMaterial struct {
	serverCert     tls.Certificate
	trustedRoots   *x509.CertPool
	untrustedRoots *x509.CertPool
}

var (
	materialOnce sync.Once
	material     testMaterial
	materialErr  error
)

// loadTestMaterial generates RSA keys once per test binary.
func loadTestMaterial(t *testing.T) testMaterial {
	t.Helper()

	materialOnce.Do(func() {
		ca, err := cert.GenerateAuthority("tlsecho test CA")
		if err != nil {
			materialErr = err
			return
		}
		other, err := cert.GenerateAuthority("unrelated CA")
		if err != nil {
			materialErr = err
			return
		}
		leaf, key, err := ca.IssueServerCertificate(
			[]string{"localhost"},
			[]net.IP{net.IPv4(127, 0, 0, 1)},
		)
		if err != nil {
			materialErr = err
			return
		}

		trusted := x509.NewCertPool()
		trusted.AddCert(ca.Cert)
		untrusted := x509.NewCertPool()
		untrusted.AddCert(other.Cert)

		material = testMaterial{
			serverCert: tls.Certificate{
				Certificate: [][]byte{leaf.Raw, ca.Cert.Raw},
				PrivateKey:  key,
				Leaf:        leaf,
			},
			trustedRoots:   trusted,
			untrustedRoots: untrusted,
		}
	})
	require.NoError(t, materialErr)
	return material
}

func serverTLSConfig(t *testing.T) *tls.Config {
	t.Helper()
	m := loadTestMaterial(t)
	conf, err := NewServerTLSConfig(&TLSConfig{Certificate: m.serverCert})
	require.NoError(t, err)
	return conf
}

func clientTLSConfig(t *testing.T, roots *x509.CertPool) *tls.Config {
	t.Helper()
	conf, err := NewClientTLSConfig(&TLSConfig{RootCAs: roots, ServerName: "localhost"})
	require.NoError(t, err)
	return conf
}

// recordingLogger collects capture events.
type recordingLogger struct {
	mu     sync.Mutex
	events []log.Event
}

func (r *recordingLogger) Log(event log.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordingLogger) Events() []log.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]log.Event(nil), r.events...)
}

func (r *recordingLogger) count(category log.Category) int {
	n := 0
	for _, e := range r.Events() {
		if e.Category == category {
			n++
		}
	}
	return n
}
