package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/allisson/keyring/internal/keys/http/dto"
	keysUseCase "github.com/allisson/keyring/internal/keys/usecase"
)

// RunKeyHistory lists a user's rotation audit records, most recent first.
func RunKeyHistory(
	ctx context.Context,
	keyUseCase keysUseCase.KeyUseCase,
	logger *slog.Logger,
	w io.Writer,
	userID int64,
	limit, offset uint,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	logger.Info("listing key history",
		slog.Int64("user_id", userID),
		slog.Uint64("limit", uint64(limit)),
		slog.Uint64("offset", uint64(offset)),
	)

	histories, err := keyUseCase.GetHistory(ctx, userID, limit, offset)
	if err != nil {
		return fmt.Errorf("failed to list key history: %w", err)
	}

	response := dto.MapHistoriesToListResponse(histories)
	if format == "json" {
		return writeJSON(w, response)
	}

	if len(response.Data) == 0 {
		fmt.Fprintf(w, "No rotation history for user %d\n", userID)
		return nil
	}

	fmt.Fprintf(w, "Rotation history for user %d:\n", userID)
	for _, record := range response.Data {
		fmt.Fprintf(w, "  [v%d] %s reason=%q initiated_by=%s prior_fingerprint=%s\n",
			record.RotationVersion,
			record.RotationDate.Format("2006-01-02 15:04:05"),
			record.RotationReason,
			record.InitiatedBy,
			record.PriorKeyFingerprint,
		)
	}
	return nil
}
