package crypto

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKeyHex = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func TestReadMasterKey(t *testing.T) {
	t.Run("hex takes precedence over file", func(t *testing.T) {
		key, err := ReadMasterKey(testKeyHex, filepath.Join(t.TempDir(), "missing.key"))
		require.NoError(t, err)
		assert.Len(t, key, KeySize)
		assert.Equal(t, byte(0x1f), key[31])
	})

	t.Run("file with trailing newline", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "master.key")
		require.NoError(t, os.WriteFile(path, []byte(testKeyHex+"\n"), 0600))

		key, err := ReadMasterKey("", path)
		require.NoError(t, err)
		assert.Len(t, key, KeySize)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := ReadMasterKey("", filepath.Join(t.TempDir(), "missing.key"))
		assert.ErrorIs(t, err, ErrNoMasterKey)
	})

	t.Run("short key", func(t *testing.T) {
		_, err := ReadMasterKey("abcd", "")
		assert.ErrorIs(t, err, ErrInvalidKeyLength)
	})

	t.Run("not hex", func(t *testing.T) {
		_, err := ReadMasterKey(strings.Repeat("zz", KeySize), "")
		assert.Error(t, err)
	})
}

func TestDeriveTemplateKey(t *testing.T) {
	master, err := ParseMasterKey(testKeyHex)
	require.NoError(t, err)

	a, err := DeriveTemplateKey(master)
	require.NoError(t, err)
	b, err := DeriveTemplateKey(master)
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NotEqual(t, master, a)

	_, err = DeriveTemplateKey(master[:16])
	assert.ErrorIs(t, err, ErrInvalidKeyLength)
}

func TestSealer(t *testing.T) {
	key, err := GenerateMasterKey()
	require.NoError(t, err)
	s, err := NewSealer(key)
	require.NoError(t, err)

	plain := []byte(`[0.1,0.2,0.3]`)
	blob, err := s.Seal(plain, []byte("AB1234567"))
	require.NoError(t, err)
	assert.NotContains(t, string(blob), string(plain))

	got, err := s.Open(blob, []byte("AB1234567"))
	require.NoError(t, err)
	assert.Equal(t, plain, got)

	_, err = s.Open(blob, []byte("XY0000000"))
	assert.Error(t, err, "aad mismatch must fail")

	_, err = s.Open(blob[:4], nil)
	assert.ErrorIs(t, err, ErrCiphertextTooShort)

	_, err = NewSealer(key[:10])
	assert.ErrorIs(t, err, ErrInvalidKeyLength)
}
