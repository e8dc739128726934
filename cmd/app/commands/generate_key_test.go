package commands

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	keysDomain "github.com/allisson/keyring/internal/keys/domain"
	keysMocks "github.com/allisson/keyring/internal/keys/mocks"
)

func testCommandKey(userID int64) *keysDomain.Key {
	now := time.Now().UTC()
	return &keysDomain.Key{
		UserID:          userID,
		KeyMaterial:     "base64key://dGVzdC1rZXktbWF0ZXJpYWwtcmVmZXJlbmNl",
		CreatedAt:       now,
		UpdatedAt:       now,
		IsActive:        true,
		RotationVersion: 1,
	}
}

func TestRunGenerateKey(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	t.Run("success-text", func(t *testing.T) {
		key := testCommandKey(42)
		mockUseCase := &keysMocks.MockKeyUseCase{}
		mockUseCase.On("GenerateKey", ctx, int64(42)).Return(key, nil)

		var buf bytes.Buffer
		err := RunGenerateKey(ctx, mockUseCase, logger, &buf, 42, "text")
		require.NoError(t, err)
		require.Contains(t, buf.String(), "Key generated for user 42")
		require.Contains(t, buf.String(), key.Fingerprint())
		require.NotContains(t, buf.String(), key.KeyMaterial)
		mockUseCase.AssertExpectations(t)
	})

	t.Run("success-json", func(t *testing.T) {
		key := testCommandKey(42)
		mockUseCase := &keysMocks.MockKeyUseCase{}
		mockUseCase.On("GenerateKey", ctx, int64(42)).Return(key, nil)

		var buf bytes.Buffer
		err := RunGenerateKey(ctx, mockUseCase, logger, &buf, 42, "json")
		require.NoError(t, err)
		require.Contains(t, buf.String(), `"key_fingerprint"`)
		require.NotContains(t, buf.String(), key.KeyMaterial)
		mockUseCase.AssertExpectations(t)
	})

	t.Run("invalid-format", func(t *testing.T) {
		mockUseCase := &keysMocks.MockKeyUseCase{}

		var buf bytes.Buffer
		err := RunGenerateKey(ctx, mockUseCase, logger, &buf, 42, "yaml")
		require.Error(t, err)
		require.Contains(t, err.Error(), "invalid format")
		mockUseCase.AssertNotCalled(t, "GenerateKey")
	})

	t.Run("usecase-error", func(t *testing.T) {
		mockUseCase := &keysMocks.MockKeyUseCase{}
		mockUseCase.On("GenerateKey", ctx, int64(42)).Return(nil, keysDomain.ErrKeyAlreadyExists)

		var buf bytes.Buffer
		err := RunGenerateKey(ctx, mockUseCase, logger, &buf, 42, "text")
		require.Error(t, err)
		require.ErrorIs(t, err, keysDomain.ErrKeyAlreadyExists)
		mockUseCase.AssertExpectations(t)
	})
}
