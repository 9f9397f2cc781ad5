package certs

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSelfSigned(t *testing.T, notAfter time.Time) (string, string) {
	t.Helper()
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "lounge.local"},
		NotBefore:    notAfter.Add(-24 * time.Hour),
		NotAfter:     notAfter,
		DNSNames:     []string{"lounge.local"},
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &priv.PublicKey, priv)
	require.NoError(t, err)
	keyDER, err := x509.MarshalECPrivateKey(priv)
	require.NoError(t, err)

	dir := t.TempDir()
	certFile := filepath.Join(dir, "server.crt")
	keyFile := filepath.Join(dir, "server.key")
	require.NoError(t, os.WriteFile(certFile, pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}), 0600))
	require.NoError(t, os.WriteFile(keyFile, pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER}), 0600))
	return certFile, keyFile
}

func TestCertManager(t *testing.T) {
	now := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	certFile, keyFile := writeSelfSigned(t, now.Add(10*24*time.Hour))
	cm := NewCertManager(certFile, keyFile)

	cert, err := cm.LoadCertificate()
	require.NoError(t, err)
	assert.Equal(t, "lounge.local", cert.Subject.CommonName)
	assert.False(t, IsExpired(cert, now))
	assert.True(t, IsExpired(cert, now.Add(11*24*time.Hour)))
	assert.True(t, ExpiresWithin(cert, now, 30*24*time.Hour))
	assert.False(t, ExpiresWithin(cert, now, 24*time.Hour))

	cfg, err := cm.TLSConfig()
	require.NoError(t, err)
	require.Len(t, cfg.Certificates, 1)
	assert.Equal(t, uint16(tls.VersionTLS12), cfg.MinVersion)
}

func TestCertManager_Errors(t *testing.T) {
	dir := t.TempDir()
	bogus := filepath.Join(dir, "bogus.pem")
	require.NoError(t, os.WriteFile(bogus, []byte("not pem"), 0600))

	_, err := NewCertManager(bogus, bogus).LoadCertificate()
	assert.ErrorIs(t, err, ErrNoCertificate)

	_, err = NewCertManager(filepath.Join(dir, "missing.crt"), "").LoadCertificate()
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = NewCertManager(bogus, bogus).TLSConfig()
	assert.Error(t, err)
}
