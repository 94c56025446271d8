package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodecRoundTrip(t *testing.T) {
	codec, err := NewCodec([]byte("application-secret"))
	require.NoError(t, err)

	tests := []struct {
		name      string
		plaintext string
	}{
		{"empty", ""},
		{"short", "x"},
		{"json payload", `{"email":"a@x.com","mail_type":"login"}`},
		{"binary-ish", "\x00\x01\xff\xfe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blob, err := codec.Encrypt([]byte(tt.plaintext))
			require.NoError(t, err)

			out, err := codec.Decrypt(blob)
			require.NoError(t, err)
			assert.Equal(t, tt.plaintext, string(out))
		})
	}
}

func TestCodecNonceFreshness(t *testing.T) {
	codec, err := NewCodec([]byte("application-secret"))
	require.NoError(t, err)

	a, err := codec.Encrypt([]byte("same plaintext"))
	require.NoError(t, err)
	b, err := codec.Encrypt([]byte("same plaintext"))
	require.NoError(t, err)

	assert.NotEqual(t, a, b, "two encryptions of the same plaintext must differ")
}

func TestCodecTamperDetection(t *testing.T) {
	codec, err := NewCodec([]byte("application-secret"))
	require.NoError(t, err)

	blob, err := codec.Encrypt([]byte("payload under test"))
	require.NoError(t, err)

	// Flipping any single byte (nonce, ciphertext, or tag) must fail.
	for i := range blob {
		mutated := make([]byte, len(blob))
		copy(mutated, blob)
		mutated[i] ^= 0x01

		_, err := codec.Decrypt(mutated)
		assert.ErrorIs(t, err, ErrAuthentication, "byte %d", i)
	}
}

func TestCodecMalformedInput(t *testing.T) {
	codec, err := NewCodec([]byte("application-secret"))
	require.NoError(t, err)

	tests := []struct {
		name string
		blob []byte
	}{
		{"nil", nil},
		{"empty", []byte{}},
		{"shorter than nonce", []byte("abc")},
		{"nonce but no tag", make([]byte, 13)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := codec.Decrypt(tt.blob)
			assert.ErrorIs(t, err, ErrAuthentication)
		})
	}
}

func TestCodecWrongSecret(t *testing.T) {
	a, err := NewCodec([]byte("secret-a"))
	require.NoError(t, err)
	b, err := NewCodec([]byte("secret-b"))
	require.NoError(t, err)

	blob, err := a.Encrypt([]byte("for a only"))
	require.NoError(t, err)

	_, err = b.Decrypt(blob)
	assert.ErrorIs(t, err, ErrAuthentication)
}

func TestNewCodecEmptySecret(t *testing.T) {
	_, err := NewCodec(nil)
	assert.Error(t, err)
}
