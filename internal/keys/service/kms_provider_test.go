package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocloud.dev/secrets"

	apperrors "github.com/allisson/keyring/internal/errors"
)

// generateLocalSecretsURI generates a base64key:// URI for testing.
func generateLocalSecretsURI(t *testing.T) string {
	t.Helper()
	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)
	return "base64key://" + base64.URLEncoding.EncodeToString(key)
}

func TestKMSProvider_CreateKeyPair(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_LocalTemplate", func(t *testing.T) {
		provider, err := NewKMSProvider(localProviderURI)
		require.NoError(t, err)
		defer func() {
			assert.NoError(t, provider.Close())
		}()

		pair, err := provider.CreateKeyPair(ctx)
		require.NoError(t, err)
		require.NotNil(t, pair)
		assert.True(t, strings.HasPrefix(pair.Reference, "base64key://"))

		// Each creation mints a distinct reference.
		pair2, err := provider.CreateKeyPair(ctx)
		require.NoError(t, err)
		assert.NotEqual(t, pair.Reference, pair2.Reference)
	})

	t.Run("Error_TemplateWithoutPlaceholder", func(t *testing.T) {
		// A static template would mint the same provider key on every
		// rotation, so it is rejected up front.
		provider, err := NewKMSProvider(generateLocalSecretsURI(t))
		assert.Nil(t, provider)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})

	t.Run("Success_PlaceholderSubstitution", func(t *testing.T) {
		provider := &kmsProvider{
			uriTemplate: "hashivault://keyring-{key_id}",
			keepers:     make(map[string]*secrets.Keeper),
		}
		reference, err := provider.mintReference()
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(reference, "hashivault://keyring-"))
		assert.NotContains(t, reference, "{key_id}")

		reference2, err := provider.mintReference()
		require.NoError(t, err)
		assert.NotEqual(t, reference, reference2)
	})

	t.Run("Error_UnknownScheme", func(t *testing.T) {
		provider, err := NewKMSProvider("invalid://{key_id}")
		require.NoError(t, err)
		defer func() {
			assert.NoError(t, provider.Close())
		}()

		pair, err := provider.CreateKeyPair(ctx)
		assert.Error(t, err)
		assert.Nil(t, pair)
	})
}

func TestKMSProvider_EncryptDecrypt(t *testing.T) {
	ctx := context.Background()
	provider, err := NewKMSProvider(localProviderURI)
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, provider.Close())
	}()

	pair, err := provider.CreateKeyPair(ctx)
	require.NoError(t, err)

	testCases := []struct {
		name      string
		plaintext []byte
	}{
		{
			name:      "ShortText",
			plaintext: []byte("hello"),
		},
		{
			name: "LongText",
			plaintext: []byte(
				"This is a longer piece of text that should be encrypted and decrypted successfully",
			),
		},
		{
			name:      "BinaryData",
			plaintext: []byte{0x00, 0x01, 0x02, 0x03, 0xFF, 0xFE, 0xFD},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ciphertext, err := provider.Encrypt(ctx, pair.Reference, tc.plaintext)
			require.NoError(t, err)
			assert.NotEqual(t, tc.plaintext, ciphertext)

			decrypted, err := provider.Decrypt(ctx, pair.Reference, ciphertext)
			require.NoError(t, err)
			assert.Equal(t, tc.plaintext, decrypted)
		})
	}
}

func TestKMSProvider_DecryptWithWrongKey(t *testing.T) {
	ctx := context.Background()
	provider, err := NewKMSProvider(localProviderURI)
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, provider.Close())
	}()

	pair1, err := provider.CreateKeyPair(ctx)
	require.NoError(t, err)
	pair2, err := provider.CreateKeyPair(ctx)
	require.NoError(t, err)

	plaintext := []byte("test data")
	ciphertext, err := provider.Encrypt(ctx, pair1.Reference, plaintext)
	require.NoError(t, err)

	decrypted, err := provider.Decrypt(ctx, pair2.Reference, ciphertext)
	assert.Error(t, err)
	assert.Nil(t, decrypted)
}

func TestKMSProvider_DecryptInvalidCiphertext(t *testing.T) {
	ctx := context.Background()
	provider, err := NewKMSProvider(localProviderURI)
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, provider.Close())
	}()

	pair, err := provider.CreateKeyPair(ctx)
	require.NoError(t, err)

	decrypted, err := provider.Decrypt(ctx, pair.Reference, []byte("not a valid ciphertext"))
	assert.Error(t, err)
	assert.Nil(t, decrypted)

	// Permanent failure, never retried.
	assert.False(t, IsTransient(err))
}

func TestKMSProvider_CloseIsIdempotent(t *testing.T) {
	provider, err := NewKMSProvider(localProviderURI)
	require.NoError(t, err)
	assert.NoError(t, provider.Close())
	assert.NoError(t, provider.Close())
}

func TestIsTransient(t *testing.T) {
	t.Run("NilIsNotTransient", func(t *testing.T) {
		assert.False(t, IsTransient(nil))
	})

	t.Run("UnknownErrorIsNotTransient", func(t *testing.T) {
		assert.False(t, IsTransient(errors.New("provider failure")))
	})

	t.Run("DeadlineExceededIsTransient", func(t *testing.T) {
		// gcerrors.Code maps context deadline errors to DeadlineExceeded,
		// including wrapped ones.
		assert.True(t, IsTransient(context.DeadlineExceeded))
		assert.True(t, IsTransient(fmt.Errorf("provider call: %w", context.DeadlineExceeded)))
	})

	t.Run("PermanentDecryptFailureIsNotTransient", func(t *testing.T) {
		ctx := context.Background()
		provider, err := NewKMSProvider(localProviderURI)
		require.NoError(t, err)
		defer func() {
			assert.NoError(t, provider.Close())
		}()

		pair, err := provider.CreateKeyPair(ctx)
		require.NoError(t, err)

		_, err = provider.Decrypt(ctx, pair.Reference, []byte("garbage"))
		require.Error(t, err)
		assert.False(t, IsTransient(err))
	})
}
