package cert

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
)

// LoadError reports a certificate or key file that could not be used.
type LoadError struct {
	File    string
	Message string
	Cause   error
}

func (e *LoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.File, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.File, e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}

// ReadCertChainFile reads every certificate in a PEM file.
func ReadCertChainFile(path string) ([]*x509.Certificate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{File: path, Message: "failed to read certificate file", Cause: err}
	}
	certs, err := DecodeCertsPEM(data)
	if err != nil {
		return nil, &LoadError{File: path, Message: "could not load certificates", Cause: err}
	}
	return certs, nil
}

// LoadServerCertificate loads a PEM certificate chain and a PEM RSA private
// key and pairs them into a tls.Certificate. The key must match the leaf.
func LoadServerCertificate(certPath, keyPath string) (tls.Certificate, error) {
	chain, err := ReadCertChainFile(certPath)
	if err != nil {
		return tls.Certificate{}, err
	}

	data, err := os.ReadFile(keyPath)
	if err != nil {
		return tls.Certificate{}, &LoadError{File: keyPath, Message: "failed to read key file", Cause: err}
	}
	key, err := DecodeKeyPEM(data)
	if err != nil {
		return tls.Certificate{}, &LoadError{File: keyPath, Message: "could not load private keys", Cause: err}
	}

	leaf := chain[0]
	if !key.PublicKey.Equal(leaf.PublicKey) {
		return tls.Certificate{}, &LoadError{File: keyPath, Message: "unusable private key", Cause: ErrKeyMismatch}
	}

	raw := make([][]byte, len(chain))
	for i, c := range chain {
		raw[i] = c.Raw
	}
	return tls.Certificate{
		Certificate: raw,
		PrivateKey:  key,
		Leaf:        leaf,
	}, nil
}

// LoadCertPool reads the CA certificates in a PEM file into a new pool.
func LoadCertPool(path string) (*x509.CertPool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{File: path, Message: "failed to read CA file", Cause: err}
	}
	certs, err := DecodeCertsPEM(data)
	if err != nil {
		return nil, &LoadError{File: path, Message: "could not add CA", Cause: err}
	}
	pool := x509.NewCertPool()
	for _, c := range certs {
		pool.AddCert(c)
	}
	return pool, nil
}
