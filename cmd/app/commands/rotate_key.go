package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/allisson/keyring/internal/keys/http/dto"
	keysUseCase "github.com/allisson/keyring/internal/keys/usecase"
)

// RunRotateKey rotates a user's key, recording the rotation in the audit
// trail. The rotation is rejected when the key is younger than the minimum
// rotation interval; use RunEmergencyRotateKey to bypass the throttle.
func RunRotateKey(
	ctx context.Context,
	rotationUseCase keysUseCase.RotationUseCase,
	logger *slog.Logger,
	w io.Writer,
	userID int64,
	reason string,
	initiatedBy string,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	logger.Info("rotating key",
		slog.Int64("user_id", userID),
		slog.String("reason", reason),
		slog.String("initiated_by", initiatedBy),
	)

	key, err := rotationUseCase.RotateKey(ctx, userID, reason, initiatedBy)
	if err != nil {
		return fmt.Errorf("failed to rotate key: %w", err)
	}

	logger.Info("key rotated successfully",
		slog.Int64("user_id", key.UserID),
		slog.Uint64("rotation_version", uint64(key.RotationVersion)),
	)

	response := dto.MapKeyToResponse(key)
	if format == "json" {
		return writeJSON(w, response)
	}

	fmt.Fprintf(w, "Key rotated for user %d\n", response.UserID)
	fmt.Fprintf(w, "  Fingerprint:      %s\n", response.KeyFingerprint)
	fmt.Fprintf(w, "  Rotation version: %d\n", response.RotationVersion)
	return nil
}
