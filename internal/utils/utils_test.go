package utils

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "aerogate.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0600))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err, "an explicit path must exist")
	assert.Nil(t, cfg)

	cfg, err = LoadConfig(writeConfig(t, "{}\n"))
	require.NoError(t, err)
	assert.Equal(t, ":8000", cfg.Server.Addr)
	assert.Equal(t, []string{"http://localhost:8080"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 10*time.Second, cfg.Server.ReadHeaderTimeout)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, int64(10<<20), cfg.Upload.MaxBytes)
	assert.Equal(t, 4096*4096, cfg.Upload.MaxPixels)
	assert.Equal(t, VerifyModeEmbedding, cfg.Verify.Mode)
	assert.Equal(t, 0.60, cfg.Verify.Threshold)
	assert.Equal(t, 3*time.Second, cfg.Verify.SimulateDelay)
	assert.Equal(t, 0.7, cfg.Verify.GrantRatio)
	assert.Equal(t, "LNG-04", cfg.Terminal)
	assert.Equal(t, "master.key", cfg.Crypto.MasterKeyFile)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: ":9000"
  allowed_origins:
    - https://lounge.example.com
verify:
  mode: simulate
  simulate_delay: 500ms
terminal: LNG-01
`)
	t.Setenv("AEROGATE_TERMINAL", "LNG-07")
	t.Setenv("MASTER_KEY_HEX", "abcd")
	t.Setenv("AEROGATE_READ_HEADER_TIMEOUT", "2s")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, []string{"https://lounge.example.com"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, VerifyModeSimulate, cfg.Verify.Mode)
	assert.Equal(t, 500*time.Millisecond, cfg.Verify.SimulateDelay)
	assert.Equal(t, "LNG-07", cfg.Terminal, "env overrides file")
	assert.Equal(t, "abcd", cfg.Crypto.MasterKeyHex, "legacy env name still honoured")
	assert.Equal(t, 2*time.Second, cfg.Server.ReadHeaderTimeout)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := map[string]string{
		"unknown mode":      "verify:\n  mode: psychic\n",
		"threshold too big": "verify:\n  threshold: 1.5\n",
		"negative ratio":    "verify:\n  grant_ratio: -0.1\n",
		"zero upload":       "upload:\n  max_bytes: 0\n",
		"zero pixels":       "upload:\n  max_pixels: 0\n",
		"no header timeout": "server:\n  read_header_timeout: 0s\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}

func TestNewLogger(t *testing.T) {
	l, err := NewLogger(LogConfig{Level: "debug", Development: true})
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(-1))

	l, err = NewLogger(LogConfig{})
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(-1))

	_, err = NewLogger(LogConfig{Level: "chatty"})
	assert.Error(t, err)
}

func TestStatusOf(t *testing.T) {
	code, msg := StatusOf(New(http.StatusBadRequest, "name: required"))
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "name: required", msg)

	cause := errors.New("boom")
	wrapped := fmt.Errorf("handler: %w", Wrap(http.StatusRequestEntityTooLarge, "upload too large", cause))
	code, msg = StatusOf(wrapped)
	assert.Equal(t, http.StatusRequestEntityTooLarge, code)
	assert.Equal(t, "upload too large", msg)
	assert.ErrorIs(t, wrapped, cause)

	code, _ = StatusOf(cause)
	assert.Equal(t, http.StatusInternalServerError, code)
}
