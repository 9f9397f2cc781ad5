package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"errors"
)

// ErrCiphertextTooShort is returned when a sealed blob is shorter than its nonce.
var ErrCiphertextTooShort = errors.New("ciphertext too short")

// Sealer encrypts small blobs with AES-256-GCM. The nonce is prepended to the ciphertext.
type Sealer struct {
	aead cipher.AEAD
}

// NewSealer builds a Sealer from a 32-byte key.
func NewSealer(key []byte) (*Sealer, error) {
	if len(key) != KeySize {
		return nil, ErrInvalidKeyLength
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &Sealer{aead: gcm}, nil
}

// Seal encrypts plaintext, binding it to aad.
func (s *Sealer) Seal(plaintext, aad []byte) ([]byte, error) {
	nonce, err := generateRandomBytes(s.aead.NonceSize())
	if err != nil {
		return nil, err
	}
	ct := s.aead.Seal(nil, nonce, plaintext, aad)
	return append(nonce, ct...), nil
}

// Open decrypts a blob produced by Seal with the same aad.
func (s *Sealer) Open(blob, aad []byte) ([]byte, error) {
	ns := s.aead.NonceSize()
	if len(blob) < ns {
		return nil, ErrCiphertextTooShort
	}
	return s.aead.Open(nil, blob[:ns], blob[ns:], aad)
}
