package cert

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"fmt"
	"math/big"
	"net"
	"path/filepath"
	"time"
)

// DefaultKeyBits is the RSA modulus size for generated keys.
const DefaultKeyBits = 2048

// DefaultValidity is the lifetime of generated certificates.
const DefaultValidity = 365 * 24 * time.Hour

// Authority is a self-signed CA used to issue server certificates.
type Authority struct {
	Cert *x509.Certificate
	Key  *rsa.PrivateKey
}

// GenerateAuthority creates a self-signed RSA CA.
func GenerateAuthority(commonName string) (*Authority, error) {
	key, err := rsa.GenerateKey(rand.Reader, DefaultKeyBits)
	if err != nil {
		return nil, fmt.Errorf("generate CA key: %w", err)
	}
	serial, err := randomSerial()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	template := &x509.Certificate{
		SerialNumber:          serial,
		Subject:               pkix.Name{CommonName: commonName},
		NotBefore:             now.Add(-time.Hour),
		NotAfter:              now.Add(DefaultValidity),
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageCRLSign,
		BasicConstraintsValid: true,
		IsCA:                  true,
		MaxPathLen:            1,
	}
	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	if err != nil {
		return nil, fmt.Errorf("create CA certificate: %w", err)
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		return nil, fmt.Errorf("parse CA certificate: %w", err)
	}
	return &Authority{Cert: cert, Key: key}, nil
}

// IssueServerCertificate issues an RSA server certificate for the given DNS
// names and IP addresses. The first DNS name is also the common name.
func (a *Authority) IssueServerCertificate(dnsNames []string, ips []net.IP) (*x509.Certificate, *rsa.PrivateKey, error) {
	key, err := rsa.GenerateKey(rand.Reader, DefaultKeyBits)
	if err != nil {
		return nil, nil, fmt.Errorf("generate server key: %w", err)
	}
	serial, err := randomSerial()
	if err != nil {
		return nil, nil, err
	}

	var commonName string
	if len(dnsNames) > 0 {
		commonName = dnsNames[0]
	}

	now := time.Now()
	template := &x509.Certificate{
		SerialNumber: serial,
		Subject:      pkix.Name{CommonName: commonName},
		NotBefore:    now.Add(-time.Hour),
		NotAfter:     now.Add(DefaultValidity),
		KeyUsage:     x509.KeyUsageDigitalSignature | x509.KeyUsageKeyEncipherment,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		DNSNames:     dnsNames,
		IPAddresses:  ips,
	}
	der, err := x509.CreateCertificate(rand.Reader, template, a.Cert, &key.PublicKey, a.Key)
	if err != nil {
		return nil, nil, fmt.Errorf("create server certificate: %w", err)
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		return nil, nil, fmt.Errorf("parse server certificate: %w", err)
	}
	return cert, key, nil
}

// Files names the PEM files written by WriteDemoFiles.
type Files struct {
	CAFile   string
	CertFile string
	KeyFile  string
}

// WriteDemoFiles generates a CA and a localhost server certificate and
// writes ca.pem, server.pem (leaf then CA) and server.key into dir.
func WriteDemoFiles(dir string) (Files, error) {
	ca, err := GenerateAuthority("tlsecho CA")
	if err != nil {
		return Files{}, err
	}
	leaf, key, err := ca.IssueServerCertificate(
		[]string{"localhost"},
		[]net.IP{net.IPv4(127, 0, 0, 1), net.IPv6loopback},
	)
	if err != nil {
		return Files{}, err
	}

	files := Files{
		CAFile:   filepath.Join(dir, "ca.pem"),
		CertFile: filepath.Join(dir, "server.pem"),
		KeyFile:  filepath.Join(dir, "server.key"),
	}
	if err := WriteCertFile(files.CAFile, ca.Cert); err != nil {
		return Files{}, err
	}
	if err := WriteCertFile(files.CertFile, leaf, ca.Cert); err != nil {
		return Files{}, err
	}
	if err := WriteKeyFile(files.KeyFile, key); err != nil {
		return Files{}, err
	}
	return files, nil
}

func randomSerial() (*big.Int, error) {
	limit := new(big.Int).Lsh(big.NewInt(1), 128)
	serial, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return nil, fmt.Errorf("generate serial: %w", err)
	}
	return serial, nil
}
