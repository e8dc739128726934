package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	keysUseCase "github.com/allisson/keyring/internal/keys/usecase"
)

// RunDeactivateKey deactivates a user's key. The key row is retained so the
// rotation audit trail stays intact; a new key can be generated afterwards.
func RunDeactivateKey(
	ctx context.Context,
	keyUseCase keysUseCase.KeyUseCase,
	logger *slog.Logger,
	w io.Writer,
	userID int64,
) error {
	logger.Info("deactivating key", slog.Int64("user_id", userID))

	if err := keyUseCase.DeactivateKey(ctx, userID); err != nil {
		return fmt.Errorf("failed to deactivate key: %w", err)
	}

	logger.Info("key deactivated successfully", slog.Int64("user_id", userID))

	fmt.Fprintf(w, "Key deactivated for user %d\n", userID)
	return nil
}
