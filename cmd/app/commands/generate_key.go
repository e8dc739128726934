package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/allisson/keyring/internal/keys/http/dto"
	keysUseCase "github.com/allisson/keyring/internal/keys/usecase"
)

// RunGenerateKey provisions a new key for a user and prints its metadata.
// The raw key material is never printed; only the fingerprint is shown.
func RunGenerateKey(
	ctx context.Context,
	keyUseCase keysUseCase.KeyUseCase,
	logger *slog.Logger,
	w io.Writer,
	userID int64,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	logger.Info("generating key", slog.Int64("user_id", userID))

	key, err := keyUseCase.GenerateKey(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to generate key: %w", err)
	}

	logger.Info("key generated successfully",
		slog.Int64("user_id", key.UserID),
		slog.Uint64("rotation_version", uint64(key.RotationVersion)),
	)

	response := dto.MapKeyToResponse(key)
	if format == "json" {
		return writeJSON(w, response)
	}

	fmt.Fprintf(w, "Key generated for user %d\n", response.UserID)
	fmt.Fprintf(w, "  Fingerprint:      %s\n", response.KeyFingerprint)
	fmt.Fprintf(w, "  Rotation version: %d\n", response.RotationVersion)
	fmt.Fprintf(w, "  Created at:       %s\n", response.CreatedAt)
	return nil
}
