package certs

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"time"
)

// ErrNoCertificate is returned when a PEM file holds no CERTIFICATE block.
var ErrNoCertificate = errors.New("failed to parse certificate PEM")

// CertManager loads the server's TLS keypair.
type CertManager struct {
	certFile string
	keyFile  string
}

// NewCertManager creates a CertManager for the given PEM files.
func NewCertManager(certFile, keyFile string) *CertManager {
	return &CertManager{certFile: certFile, keyFile: keyFile}
}

// LoadCertificate parses the leaf certificate from the cert file.
func (cm *CertManager) LoadCertificate() (*x509.Certificate, error) {
	data, err := os.ReadFile(cm.certFile)
	if err != nil {
		return nil, err
	}
	for {
		var block *pem.Block
		block, data = pem.Decode(data)
		if block == nil {
			return nil, fmt.Errorf("%s: %w", cm.certFile, ErrNoCertificate)
		}
		if block.Type == "CERTIFICATE" {
			return x509.ParseCertificate(block.Bytes)
		}
	}
}

// TLSConfig returns a server TLS config serving the keypair.
func (cm *CertManager) TLSConfig() (*tls.Config, error) {
	pair, err := tls.LoadX509KeyPair(cm.certFile, cm.keyFile)
	if err != nil {
		return nil, fmt.Errorf("load keypair: %w", err)
	}
	return &tls.Config{
		MinVersion:   tls.VersionTLS12,
		Certificates: []tls.Certificate{pair},
	}, nil
}

// IsExpired checks if a certificate is expired at now.
func IsExpired(cert *x509.Certificate, now time.Time) bool {
	return cert.NotAfter.Before(now)
}

// ExpiresWithin reports whether cert stops being valid within d of now.
func ExpiresWithin(cert *x509.Certificate, now time.Time, d time.Duration) bool {
	return cert.NotAfter.Before(now.Add(d))
}
