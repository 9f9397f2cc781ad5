package utils

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/spf13/viper"
)

// DefaultConfigFile is looked up in the working directory and the project root.
const DefaultConfigFile = "aerogate.yaml"

// ServerConfig configures the HTTP listener. TLSCertFile and TLSKeyFile
// enable HTTPS when both are set.
type ServerConfig struct {
	Addr              string        `mapstructure:"addr"`
	AllowedOrigins    []string      `mapstructure:"allowed_origins"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout"`
	TLSCertFile       string        `mapstructure:"tls_cert_file"`
	TLSKeyFile        string        `mapstructure:"tls_key_file"`
}

// UploadConfig limits capture uploads. MaxPixels bounds the dimensions an
// image header may declare before it is decoded.
type UploadConfig struct {
	MaxBytes  int64 `mapstructure:"max_bytes"`
	MaxPixels int   `mapstructure:"max_pixels"`
}

// VerifyConfig selects and tunes the verifier.
type VerifyConfig struct {
	Mode          string        `mapstructure:"mode"`
	Threshold     float64       `mapstructure:"threshold"`
	SimulateDelay time.Duration `mapstructure:"simulate_delay"`
	GrantRatio    float64       `mapstructure:"grant_ratio"`
}

// CryptoConfig locates the master key.
//
// WARNING: MasterKeyHex is a secret and should not be logged.
type CryptoConfig struct {
	MasterKeyHex  string `mapstructure:"master_key_hex"`
	MasterKeyFile string `mapstructure:"master_key_file"`
}

// LogConfig configures zap.
type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// Config is the whole server configuration.
type Config struct {
	Server   ServerConfig `mapstructure:"server"`
	Upload   UploadConfig `mapstructure:"upload"`
	Verify   VerifyConfig `mapstructure:"verify"`
	Terminal string       `mapstructure:"terminal"`
	Crypto   CryptoConfig `mapstructure:"crypto"`
	Log      LogConfig    `mapstructure:"log"`
}

const (
	VerifyModeEmbedding = "embedding"
	VerifyModeSimulate  = "simulate"
)

var defaults = map[string]any{
	"server.addr":                ":8000",
	"server.allowed_origins":     []string{"http://localhost:8080"},
	"server.read_header_timeout": 10 * time.Second,
	"server.shutdown_timeout":    10 * time.Second,
	"server.tls_cert_file":       "",
	"server.tls_key_file":        "",
	"upload.max_bytes":           int64(10 << 20),
	"upload.max_pixels":          4096 * 4096,
	"verify.mode":                VerifyModeEmbedding,
	"verify.threshold":           0.60,
	"verify.simulate_delay":      3 * time.Second,
	"verify.grant_ratio":         0.7,
	"terminal":                   "LNG-04",
	"crypto.master_key_hex":      "",
	"crypto.master_key_file":     "master.key",
	"log.level":                  "info",
	"log.development":            false,
}

// envBindings maps config keys to the environment variables that can set them.
var envBindings = map[string][]string{
	"server.addr":                {"AEROGATE_ADDR"},
	"server.allowed_origins":     {"AEROGATE_ALLOWED_ORIGINS"},
	"server.read_header_timeout": {"AEROGATE_READ_HEADER_TIMEOUT"},
	"server.tls_cert_file":       {"AEROGATE_TLS_CERT_FILE"},
	"server.tls_key_file":        {"AEROGATE_TLS_KEY_FILE"},
	"upload.max_bytes":           {"AEROGATE_UPLOAD_MAX_BYTES"},
	"upload.max_pixels":          {"AEROGATE_UPLOAD_MAX_PIXELS"},
	"verify.mode":                {"AEROGATE_VERIFY_MODE"},
	"verify.threshold":           {"AEROGATE_VERIFY_THRESHOLD"},
	"verify.simulate_delay":      {"AEROGATE_SIMULATE_DELAY"},
	"verify.grant_ratio":         {"AEROGATE_GRANT_RATIO"},
	"terminal":                   {"AEROGATE_TERMINAL"},
	"crypto.master_key_hex":      {"AEROGATE_MASTER_KEY_HEX", "MASTER_KEY_HEX"},
	"crypto.master_key_file":     {"AEROGATE_MASTER_KEY_FILE"},
	"log.level":                  {"AEROGATE_LOG_LEVEL"},
	"log.development":            {"AEROGATE_LOG_DEVELOPMENT"},
}

// LoadConfig reads the YAML file at path if it exists, applies environment
// overrides and defaults, and validates the result. An empty path looks for
// DefaultConfigFile in the working directory, then the project root.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	if err := bindEnvs(v); err != nil {
		return nil, err
	}

	explicit := path != ""
	if !explicit {
		path = findConfigFile()
	}
	if path != "" {
		v.SetConfigFile(path)
		_, statErr := os.Stat(path)
		switch {
		case statErr == nil:
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		case explicit || !errors.Is(statErr, fs.ErrNotExist):
			return nil, fmt.Errorf("config %s: %w", path, statErr)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	switch c.Verify.Mode {
	case VerifyModeEmbedding, VerifyModeSimulate:
	default:
		return fmt.Errorf("verify.mode must be %q or %q, got %q", VerifyModeEmbedding, VerifyModeSimulate, c.Verify.Mode)
	}
	if c.Verify.Threshold <= 0 || c.Verify.Threshold > 1 {
		return fmt.Errorf("verify.threshold must be in (0, 1], got %v", c.Verify.Threshold)
	}
	if c.Verify.GrantRatio < 0 || c.Verify.GrantRatio > 1 {
		return fmt.Errorf("verify.grant_ratio must be in [0, 1], got %v", c.Verify.GrantRatio)
	}
	if c.Verify.SimulateDelay < 0 {
		return fmt.Errorf("verify.simulate_delay must not be negative")
	}
	if c.Upload.MaxBytes <= 0 {
		return fmt.Errorf("upload.max_bytes must be positive")
	}
	if c.Upload.MaxPixels <= 0 {
		return fmt.Errorf("upload.max_pixels must be positive")
	}
	if c.Server.ReadHeaderTimeout <= 0 {
		return fmt.Errorf("server.read_header_timeout must be positive")
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if (c.Server.TLSCertFile == "") != (c.Server.TLSKeyFile == "") {
		return fmt.Errorf("server.tls_cert_file and server.tls_key_file must be set together")
	}
	return nil
}

func bindEnvs(v *viper.Viper) error {
	for key, envs := range envBindings {
		inputs := slices.Insert(slices.Clone(envs), 0, key)
		if err := v.BindEnv(inputs...); err != nil {
			return err
		}
	}
	return nil
}

func findConfigFile() string {
	for _, dir := range []string{".", GetProjectRoot()} {
		p := filepath.Join(dir, DefaultConfigFile)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// GetProjectRoot returns the nearest ancestor of the working directory holding a go.mod.
func GetProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return "."
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "."
		}
		dir = parent
	}
}
