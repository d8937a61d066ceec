// Package cert loads and generates the PEM material used by the echo
// endpoints: the server certificate chain and RSA private key, and the CA
// certificates that seed the client's trust root.
package cert

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"os"
)

// PEM encoding/decoding errors.
var (
	ErrInvalidPEM     = errors.New("invalid PEM data")
	ErrInvalidKey     = errors.New("invalid private key")
	ErrNoCertificates = errors.New("no certificates found")
	ErrNoPrivateKey   = errors.New("no RSA private key found")
	ErrKeyMismatch    = errors.New("private key does not match certificate")
)

// PEM block types.
const (
	blockCertificate   = "CERTIFICATE"
	blockRSAPrivateKey = "RSA PRIVATE KEY"
	blockPrivateKey    = "PRIVATE KEY"
)

// EncodeCertPEM encodes an X.509 certificate to PEM format.
func EncodeCertPEM(cert *x509.Certificate) []byte {
	return pem.EncodeToMemory(&pem.Block{
		Type:  blockCertificate,
		Bytes: cert.Raw,
	})
}

// DecodeCertsPEM decodes every CERTIFICATE block in data, in order.
// Blocks of other types are skipped.
func DecodeCertsPEM(data []byte) ([]*x509.Certificate, error) {
	var certs []*x509.Certificate
	for {
		var block *pem.Block
		block, data = pem.Decode(data)
		if block == nil {
			break
		}
		if block.Type != blockCertificate {
			continue
		}
		c, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return nil, err
		}
		certs = append(certs, c)
	}
	if len(certs) == 0 {
		return nil, ErrNoCertificates
	}
	return certs, nil
}

// EncodeKeyPEM encodes an RSA private key as a PKCS#1 PEM block.
func EncodeKeyPEM(key *rsa.PrivateKey) []byte {
	return pem.EncodeToMemory(&pem.Block{
		Type:  blockRSAPrivateKey,
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})
}

// DecodeKeyPEM decodes the first RSA private key in data. PKCS#1 blocks
// and PKCS#8 blocks holding an RSA key are accepted.
func DecodeKeyPEM(data []byte) (*rsa.PrivateKey, error) {
	for {
		var block *pem.Block
		block, data = pem.Decode(data)
		if block == nil {
			return nil, ErrNoPrivateKey
		}
		switch block.Type {
		case blockRSAPrivateKey:
			key, err := x509.ParsePKCS1PrivateKey(block.Bytes)
			if err != nil {
				return nil, errors.Join(ErrInvalidKey, err)
			}
			return key, nil
		case blockPrivateKey:
			parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
			if err != nil {
				return nil, errors.Join(ErrInvalidKey, err)
			}
			key, ok := parsed.(*rsa.PrivateKey)
			if !ok {
				return nil, ErrInvalidKey
			}
			return key, nil
		}
	}
}

// WriteCertFile writes certificates to a PEM file, leaf first.
func WriteCertFile(path string, certs ...*x509.Certificate) error {
	var data []byte
	for _, c := range certs {
		data = append(data, EncodeCertPEM(c)...)
	}
	return os.WriteFile(path, data, 0644)
}

// WriteKeyFile writes a private key to a PEM file with restricted permissions.
func WriteKeyFile(path string, key *rsa.PrivateKey) error {
	return os.WriteFile(path, EncodeKeyPEM(key), 0600)
}
