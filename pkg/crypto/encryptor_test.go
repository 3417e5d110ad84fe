package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEncryptor_GenerateNewKey(t *testing.T) {
	enc, err := NewEncryptor("")
	require.NoError(t, err)
	assert.NotNil(t, enc.identity)
	assert.NotNil(t, enc.recipient)
}

func TestNewEncryptor_WithProvidedKey(t *testing.T) {
	key, err := GenerateKey()
	require.NoError(t, err)

	enc, err := NewEncryptor(key)
	require.NoError(t, err)
	assert.Contains(t, enc.PublicKey(), "age1")
}

func TestNewEncryptor_InvalidKey(t *testing.T) {
	_, err := NewEncryptor("invalid-key-format")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing identity")
}

func TestEncrypt_Decrypt(t *testing.T) {
	enc, err := NewEncryptor("")
	require.NoError(t, err)

	plaintext := []byte(`{"api_key":"secret"}`)
	ciphertext, err := enc.Encrypt(plaintext)
	require.NoError(t, err)
	assert.NotEqual(t, plaintext, ciphertext)

	decrypted, err := enc.Decrypt(ciphertext)
	require.NoError(t, err)
	assert.Equal(t, plaintext, decrypted)
}

func TestDecrypt_WrongKey(t *testing.T) {
	enc1, err := NewEncryptor("")
	require.NoError(t, err)
	enc2, err := NewEncryptor("")
	require.NoError(t, err)

	ciphertext, err := enc1.Encrypt([]byte("data"))
	require.NoError(t, err)

	_, err = enc2.Decrypt(ciphertext)
	assert.Error(t, err)
}

func TestDecrypt_Empty(t *testing.T) {
	enc, err := NewEncryptor("")
	require.NoError(t, err)

	_, err = enc.Decrypt(nil)
	assert.ErrorIs(t, err, ErrEmptyCiphertext)
}

func TestSealJSON_OpenJSON(t *testing.T) {
	enc, err := NewEncryptor("")
	require.NoError(t, err)

	sealed, err := enc.SealJSON(`{"tenant":"acme","batch_size":50}`)
	require.NoError(t, err)

	var cfg struct {
		Tenant    string `json:"tenant"`
		BatchSize int    `json:"batch_size"`
	}
	require.NoError(t, enc.OpenJSON(sealed, &cfg))
	assert.Equal(t, "acme", cfg.Tenant)
	assert.Equal(t, 50, cfg.BatchSize)
}

func TestSealJSON_RejectsInvalidJSON(t *testing.T) {
	enc, err := NewEncryptor("")
	require.NoError(t, err)

	_, err = enc.SealJSON("{not json")
	assert.Error(t, err)
}

func TestEncryptor_KeyReuse(t *testing.T) {
	key, err := GenerateKey()
	require.NoError(t, err)

	enc1, err := NewEncryptor(key)
	require.NoError(t, err)
	sealed, err := enc1.SealJSON(`{"k":"v"}`)
	require.NoError(t, err)

	enc2, err := NewEncryptor(key)
	require.NoError(t, err)
	var out map[string]string
	require.NoError(t, enc2.OpenJSON(sealed, &out))
	assert.Equal(t, "v", out["k"])
}
