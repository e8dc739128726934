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

func TestRunKeyHistory(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	histories := []*keysDomain.KeyHistory{
		{
			ID:                  2,
			UserID:              42,
			PriorKeyFingerprint: "a1b2c3d4e5f60718",
			RotationVersion:     2,
			RotationDate:        time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC),
			RotationReason:      "compliance",
			InitiatedBy:         keysDomain.InitiatorOperator,
			SystemVersion:       "1.0.0",
		},
		{
			ID:                  1,
			UserID:              42,
			PriorKeyFingerprint: "0918273645f6e5d4",
			RotationVersion:     1,
			RotationDate:        time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC),
			RotationReason:      "scheduled",
			InitiatedBy:         keysDomain.InitiatorSystem,
			SystemVersion:       "1.0.0",
		},
	}

	t.Run("success-text", func(t *testing.T) {
		mockUseCase := &keysMocks.MockKeyUseCase{}
		mockUseCase.On("GetHistory", ctx, int64(42), uint(50), uint(0)).Return(histories, nil)

		var buf bytes.Buffer
		err := RunKeyHistory(ctx, mockUseCase, logger, &buf, 42, 50, 0, "text")
		require.NoError(t, err)
		require.Contains(t, buf.String(), "Rotation history for user 42")
		require.Contains(t, buf.String(), "a1b2c3d4e5f60718")
		require.Contains(t, buf.String(), `reason="compliance"`)
		mockUseCase.AssertExpectations(t)
	})

	t.Run("success-json", func(t *testing.T) {
		mockUseCase := &keysMocks.MockKeyUseCase{}
		mockUseCase.On("GetHistory", ctx, int64(42), uint(10), uint(20)).Return(histories, nil)

		var buf bytes.Buffer
		err := RunKeyHistory(ctx, mockUseCase, logger, &buf, 42, 10, 20, "json")
		require.NoError(t, err)
		require.Contains(t, buf.String(), `"prior_key_fingerprint"`)
		mockUseCase.AssertExpectations(t)
	})

	t.Run("empty-history", func(t *testing.T) {
		mockUseCase := &keysMocks.MockKeyUseCase{}
		mockUseCase.On("GetHistory", ctx, int64(42), uint(50), uint(0)).
			Return([]*keysDomain.KeyHistory{}, nil)

		var buf bytes.Buffer
		err := RunKeyHistory(ctx, mockUseCase, logger, &buf, 42, 50, 0, "text")
		require.NoError(t, err)
		require.Contains(t, buf.String(), "No rotation history for user 42")
		mockUseCase.AssertExpectations(t)
	})

	t.Run("invalid-format", func(t *testing.T) {
		mockUseCase := &keysMocks.MockKeyUseCase{}

		var buf bytes.Buffer
		err := RunKeyHistory(ctx, mockUseCase, logger, &buf, 42, 50, 0, "csv")
		require.Error(t, err)
		require.Contains(t, err.Error(), "invalid format")
		mockUseCase.AssertNotCalled(t, "GetHistory")
	})

	t.Run("usecase-error", func(t *testing.T) {
		mockUseCase := &keysMocks.MockKeyUseCase{}
		mockUseCase.On("GetHistory", ctx, int64(42), uint(50), uint(0)).
			Return(nil, keysDomain.ErrKeyNotFound)

		var buf bytes.Buffer
		err := RunKeyHistory(ctx, mockUseCase, logger, &buf, 42, 50, 0, "text")
		require.Error(t, err)
		require.ErrorIs(t, err, keysDomain.ErrKeyNotFound)
		mockUseCase.AssertExpectations(t)
	})
}
