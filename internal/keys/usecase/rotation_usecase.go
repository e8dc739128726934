package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/allisson/keyring/internal/cache"
	"github.com/allisson/keyring/internal/database"
	apperrors "github.com/allisson/keyring/internal/errors"
	keysDomain "github.com/allisson/keyring/internal/keys/domain"
	keysService "github.com/allisson/keyring/internal/keys/service"
)

// rotationUseCase implements the RotationUseCase interface for atomic key
// rotation with audit history.
type rotationUseCase struct {
	txManager database.TxManager
	keyRepo   KeyRepository
	provider  keysService.KeyProvider
	cache     cache.Cache
	keyCfg    KeyConfig
	batchCfg  BatchConfig
}

// RotateKey atomically replaces the user's active key and appends an audit
// record for the superseded key.
func (r *rotationUseCase) RotateKey(
	ctx context.Context,
	userID int64,
	reason, initiatedBy string,
) (*keysDomain.Key, error) {
	return r.rotate(ctx, userID, reason, initiatedBy, false)
}

// EmergencyRotateKey rotates immediately, bypassing the minimum rotation
// interval throttle.
func (r *rotationUseCase) EmergencyRotateKey(
	ctx context.Context,
	userID int64,
	reason string,
) (*keysDomain.Key, error) {
	return r.rotate(ctx, userID, reason, keysDomain.InitiatorEmergency, true)
}

// rotate performs the shared rotation flow. The provider key pair is minted
// before the transaction opens so a provider outage never holds a database
// transaction; the history insert and the guarded key swap then commit or
// roll back together.
func (r *rotationUseCase) rotate(
	ctx context.Context,
	userID int64,
	reason, initiatedBy string,
	bypassThrottle bool,
) (*keysDomain.Key, error) {
	if userID <= 0 {
		return nil, keysDomain.ErrInvalidUserID
	}
	if err := keysDomain.ValidateRotationReason(reason); err != nil {
		return nil, err
	}

	current, err := r.keyRepo.GetActive(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, keysDomain.ErrKeyNotFound
		}
		return nil, err
	}

	if !bypassThrottle && time.Since(current.CreatedAt) < r.keyCfg.MinRotationInterval {
		return nil, keysDomain.ErrRotationThrottled
	}

	var pair *keysService.KeyPair
	err = retryProvider(ctx, r.batchCfg, func() error {
		var callErr error
		pair, callErr = r.provider.CreateKeyPair(ctx)
		return callErr
	})
	if err != nil {
		return nil, mapProviderError(err)
	}
	if err := keysDomain.ValidateKeyMaterial(pair.Reference); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	rotated := &keysDomain.Key{
		UserID:          userID,
		KeyMaterial:     pair.Reference,
		CreatedAt:       now,
		UpdatedAt:       now,
		IsActive:        true,
		RotationVersion: current.RotationVersion + 1,
		LockVersion:     current.LockVersion + 1,
	}

	err = r.txManager.WithTx(ctx, func(txCtx context.Context) error {
		history := keysDomain.NewKeyHistory(current, reason, initiatedBy, r.keyCfg.SystemVersion)
		if err := r.keyRepo.InsertHistory(txCtx, history); err != nil {
			return err
		}

		if err := r.keyRepo.Update(txCtx, rotated, current.LockVersion); err != nil {
			if errors.Is(err, apperrors.ErrConflict) {
				return keysDomain.ErrRotationInProgress
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.cache.Delete(cache.UserKeyCacheKey(userID))
	return rotated, nil
}

// ScheduleRotation records an accepted request to rotate at a future time.
func (r *rotationUseCase) ScheduleRotation(
	ctx context.Context,
	userID int64,
	scheduledAt time.Time,
	reason string,
) (*keysDomain.ScheduledRotation, error) {
	if userID <= 0 {
		return nil, keysDomain.ErrInvalidUserID
	}
	if err := keysDomain.ValidateRotationReason(reason); err != nil {
		return nil, err
	}
	if !scheduledAt.After(time.Now()) {
		return nil, keysDomain.ErrInvalidScheduleTime
	}

	// A schedule only makes sense for a user that currently holds a key.
	if _, err := r.keyRepo.GetActive(ctx, userID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, keysDomain.ErrKeyNotFound
		}
		return nil, err
	}

	schedule := keysDomain.NewScheduledRotation(userID, scheduledAt, reason)
	if err := r.keyRepo.InsertScheduledRotation(ctx, schedule); err != nil {
		return nil, err
	}
	return schedule, nil
}

// retryProvider runs a provider call with exponential backoff, retrying only
// transient failures. Permanent failures and context cancellation abort
// immediately.
func retryProvider(ctx context.Context, cfg BatchConfig, call func() error) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = cfg.RetryInitialInterval

	operation := func() error {
		err := call()
		if err == nil {
			return nil
		}
		if keysService.IsTransient(err) {
			return err
		}
		return backoff.Permanent(err)
	}

	return backoff.Retry(
		operation,
		backoff.WithContext(backoff.WithMaxRetries(bo, cfg.MaxRetries), ctx),
	)
}

// NewRotationUseCase creates a new rotation use case instance with the
// provided dependencies.
func NewRotationUseCase(
	txManager database.TxManager,
	keyRepo KeyRepository,
	provider keysService.KeyProvider,
	keyCache cache.Cache,
	keyCfg KeyConfig,
	batchCfg BatchConfig,
) RotationUseCase {
	return &rotationUseCase{
		txManager: txManager,
		keyRepo:   keyRepo,
		provider:  provider,
		cache:     keyCache,
		keyCfg:    keyCfg,
		batchCfg:  batchCfg,
	}
}
