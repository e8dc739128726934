package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/allisson/keyring/internal/keys/http/dto"
	keysUseCase "github.com/allisson/keyring/internal/keys/usecase"
)

// RunEmergencyRotateKey rotates a user's key immediately, bypassing the
// minimum rotation interval. Intended for suspected key compromise.
func RunEmergencyRotateKey(
	ctx context.Context,
	rotationUseCase keysUseCase.RotationUseCase,
	logger *slog.Logger,
	w io.Writer,
	userID int64,
	reason string,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	logger.Warn("emergency key rotation requested",
		slog.Int64("user_id", userID),
		slog.String("reason", reason),
	)

	key, err := rotationUseCase.EmergencyRotateKey(ctx, userID, reason)
	if err != nil {
		return fmt.Errorf("failed to rotate key: %w", err)
	}

	logger.Info("emergency rotation completed",
		slog.Int64("user_id", key.UserID),
		slog.Uint64("rotation_version", uint64(key.RotationVersion)),
	)

	response := dto.MapKeyToResponse(key)
	if format == "json" {
		return writeJSON(w, response)
	}

	fmt.Fprintf(w, "Emergency rotation completed for user %d\n", response.UserID)
	fmt.Fprintf(w, "  Fingerprint:      %s\n", response.KeyFingerprint)
	fmt.Fprintf(w, "  Rotation version: %d\n", response.RotationVersion)
	return nil
}
