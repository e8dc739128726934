package commands

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	keysDomain "github.com/allisson/keyring/internal/keys/domain"
	keysMocks "github.com/allisson/keyring/internal/keys/mocks"
)

func TestRunRotateKey(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	t.Run("success", func(t *testing.T) {
		key := testCommandKey(42)
		key.RotationVersion = 2
		mockUseCase := &keysMocks.MockRotationUseCase{}
		mockUseCase.On("RotateKey", ctx, int64(42), "compliance", keysDomain.InitiatorOperator).
			Return(key, nil)

		var buf bytes.Buffer
		err := RunRotateKey(ctx, mockUseCase, logger, &buf, 42, "compliance", keysDomain.InitiatorOperator, "text")
		require.NoError(t, err)
		require.Contains(t, buf.String(), "Key rotated for user 42")
		require.Contains(t, buf.String(), "Rotation version: 2")
		require.NotContains(t, buf.String(), key.KeyMaterial)
		mockUseCase.AssertExpectations(t)
	})

	t.Run("invalid-format", func(t *testing.T) {
		mockUseCase := &keysMocks.MockRotationUseCase{}

		var buf bytes.Buffer
		err := RunRotateKey(ctx, mockUseCase, logger, &buf, 42, "compliance", keysDomain.InitiatorOperator, "xml")
		require.Error(t, err)
		require.Contains(t, err.Error(), "invalid format")
		mockUseCase.AssertNotCalled(t, "RotateKey")
	})

	t.Run("throttled", func(t *testing.T) {
		mockUseCase := &keysMocks.MockRotationUseCase{}
		mockUseCase.On("RotateKey", ctx, int64(42), "compliance", keysDomain.InitiatorOperator).
			Return(nil, keysDomain.ErrRotationThrottled)

		var buf bytes.Buffer
		err := RunRotateKey(ctx, mockUseCase, logger, &buf, 42, "compliance", keysDomain.InitiatorOperator, "text")
		require.Error(t, err)
		require.ErrorIs(t, err, keysDomain.ErrRotationThrottled)
		mockUseCase.AssertExpectations(t)
	})
}
