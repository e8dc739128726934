package usecase

import (
	"context"
	"encoding/base64"
	"fmt"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	apperrors "github.com/allisson/keyring/internal/errors"
	keysDomain "github.com/allisson/keyring/internal/keys/domain"
	keysService "github.com/allisson/keyring/internal/keys/service"
)

// batchCryptoUseCase implements the BatchCryptoUseCase interface.
//
// Batches are split into fixed-size groups processed concurrently; a shared
// semaphore bounds in-flight provider calls across all groups of all batches
// handled by this instance. Results are written by original index so output
// order always matches input order regardless of completion order.
type batchCryptoUseCase struct {
	keyUseCase KeyUseCase
	provider   keysService.KeyProvider
	sem        *semaphore.Weighted
	cfg        BatchConfig
}

// EncryptBatch encrypts each plaintext under the user's active key and
// returns base64-encoded ciphertexts in input order.
func (b *batchCryptoUseCase) EncryptBatch(
	ctx context.Context,
	userID int64,
	plaintexts []string,
) ([]string, error) {
	if err := validateBatch(userID, plaintexts); err != nil {
		return nil, err
	}

	key, err := b.keyUseCase.GetActiveKey(ctx, userID)
	if err != nil {
		return nil, err
	}

	inputs := make([][]byte, len(plaintexts))
	for i, plaintext := range plaintexts {
		inputs[i] = []byte(plaintext)
	}

	outputs, err := b.process(ctx, key.KeyMaterial, inputs, b.provider.Encrypt)
	if err != nil {
		return nil, err
	}

	results := make([]string, len(outputs))
	for i, ciphertext := range outputs {
		results[i] = base64.StdEncoding.EncodeToString(ciphertext)
	}
	return results, nil
}

// DecryptBatch decrypts each base64-encoded ciphertext under the user's
// active key and returns plaintexts in input order.
func (b *batchCryptoUseCase) DecryptBatch(
	ctx context.Context,
	userID int64,
	ciphertexts []string,
) ([]string, error) {
	if err := validateBatch(userID, ciphertexts); err != nil {
		return nil, err
	}

	// Decode everything up front: a malformed item fails the batch before any
	// provider call is made.
	inputs := make([][]byte, len(ciphertexts))
	for i, ciphertext := range ciphertexts {
		decoded, err := base64.StdEncoding.DecodeString(ciphertext)
		if err != nil {
			return nil, apperrors.Wrap(
				keysDomain.ErrInvalidBatchItem,
				fmt.Sprintf("item %d is not valid base64", i),
			)
		}
		inputs[i] = decoded
	}

	key, err := b.keyUseCase.GetActiveKey(ctx, userID)
	if err != nil {
		return nil, err
	}

	outputs, err := b.process(ctx, key.KeyMaterial, inputs, b.provider.Decrypt)
	if err != nil {
		return nil, err
	}

	results := make([]string, len(outputs))
	for i, plaintext := range outputs {
		results[i] = string(plaintext)
	}
	return results, nil
}

// process runs op over every input with bounded concurrency and per-call
// retry, returning outputs indexed like the inputs. The first unrecoverable
// error cancels all remaining work.
func (b *batchCryptoUseCase) process(
	ctx context.Context,
	keyRef string,
	inputs [][]byte,
	op func(ctx context.Context, keyRef string, data []byte) ([]byte, error),
) ([][]byte, error) {
	outputs := make([][]byte, len(inputs))

	group, groupCtx := errgroup.WithContext(ctx)
	for start := 0; start < len(inputs); start += b.cfg.Size {
		end := min(start+b.cfg.Size, len(inputs))

		group.Go(func() error {
			for i := start; i < end; i++ {
				if err := b.sem.Acquire(groupCtx, 1); err != nil {
					return err
				}

				err := retryProvider(groupCtx, b.cfg, func() error {
					result, callErr := op(groupCtx, keyRef, inputs[i])
					if callErr != nil {
						return callErr
					}
					outputs[i] = result
					return nil
				})
				b.sem.Release(1)
				if err != nil {
					return mapProviderError(err)
				}
			}
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}
	return outputs, nil
}

// validateBatch checks the structural batch rules shared by both operations.
func validateBatch(userID int64, items []string) error {
	if userID <= 0 {
		return keysDomain.ErrInvalidUserID
	}
	if len(items) == 0 {
		return apperrors.Wrap(keysDomain.ErrInvalidBatchItem, "batch is empty")
	}
	for i, item := range items {
		if item == "" {
			return apperrors.Wrap(
				keysDomain.ErrInvalidBatchItem,
				fmt.Sprintf("item %d is empty", i),
			)
		}
	}
	return nil
}

// NewBatchCryptoUseCase creates a new batch crypto use case instance with the
// provided dependencies.
func NewBatchCryptoUseCase(
	keyUseCase KeyUseCase,
	provider keysService.KeyProvider,
	cfg BatchConfig,
) BatchCryptoUseCase {
	return &batchCryptoUseCase{
		keyUseCase: keyUseCase,
		provider:   provider,
		sem:        semaphore.NewWeighted(cfg.MaxConcurrentCalls),
		cfg:        cfg,
	}
}
