package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/crypto/hkdf"
)

// KeySize is the length of the master key and every key derived from it.
const KeySize = 32

const templateKeyInfo = "aerogate-template"

// ErrInvalidKeyLength is returned when the provided key length is invalid.
var ErrInvalidKeyLength = errors.New("invalid key length")

// ErrNoMasterKey is returned when neither a hex value nor a key file is available.
var ErrNoMasterKey = errors.New("master key not configured")

// ParseMasterKey decodes a hex master key, tolerating surrounding whitespace.
func ParseMasterKey(h string) ([]byte, error) {
	b, err := hex.DecodeString(strings.TrimSpace(h))
	if err != nil {
		return nil, fmt.Errorf("master key hex decode error: %w", err)
	}
	if len(b) != KeySize {
		return nil, fmt.Errorf("master key must be %d bytes (hex %d chars): %w", KeySize, KeySize*2, ErrInvalidKeyLength)
	}
	return b, nil
}

// ReadMasterKey returns the key from hexKey if set, otherwise from the file at path.
func ReadMasterKey(hexKey, path string) ([]byte, error) {
	if hexKey != "" {
		return ParseMasterKey(hexKey)
	}
	if path == "" {
		return nil, ErrNoMasterKey
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNoMasterKey
		}
		return nil, fmt.Errorf("read master key: %w", err)
	}
	return ParseMasterKey(string(data))
}

// GenerateMasterKey returns a fresh random master key.
func GenerateMasterKey() ([]byte, error) {
	return generateRandomBytes(KeySize)
}

// DeriveTemplateKey derives the key used to seal face templates using HKDF-SHA256.
func DeriveTemplateKey(master []byte) ([]byte, error) {
	if len(master) != KeySize {
		return nil, ErrInvalidKeyLength
	}
	h := hkdf.New(sha256.New, master, nil, []byte(templateKeyInfo))
	out := make([]byte, KeySize)
	if _, err := io.ReadFull(h, out); err != nil {
		return nil, err
	}
	return out, nil
}

// generateRandomBytes generates a slice of random bytes of the given length.
func generateRandomBytes(length int) ([]byte, error) {
	bytes := make([]byte, length)
	if _, err := io.ReadFull(rand.Reader, bytes); err != nil {
		return nil, err
	}
	return bytes, nil
}
