package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/allisson/keyring/internal/cache"
	apperrors "github.com/allisson/keyring/internal/errors"
	keysDomain "github.com/allisson/keyring/internal/keys/domain"
	keysService "github.com/allisson/keyring/internal/keys/service"
)

// keyUseCase implements the KeyUseCase interface for key lifecycle management.
type keyUseCase struct {
	keyRepo  KeyRepository
	provider keysService.KeyProvider
	cache    cache.Cache
	cfg      KeyConfig
}

// GenerateKey provisions a new provider key pair and stores it as the user's
// active key.
func (k *keyUseCase) GenerateKey(ctx context.Context, userID int64) (*keysDomain.Key, error) {
	if userID <= 0 {
		return nil, keysDomain.ErrInvalidUserID
	}

	existing, err := k.keyRepo.Get(ctx, userID)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}
	if existing != nil && existing.IsActive {
		return nil, keysDomain.ErrKeyAlreadyExists
	}

	pair, err := k.provider.CreateKeyPair(ctx)
	if err != nil {
		return nil, mapProviderError(err)
	}
	if err := keysDomain.ValidateKeyMaterial(pair.Reference); err != nil {
		return nil, err
	}

	if existing == nil {
		key := keysDomain.NewKey(userID, pair.Reference)
		if err := k.keyRepo.Create(ctx, key); err != nil {
			if errors.Is(err, apperrors.ErrConflict) {
				// Lost a creation race against a concurrent GenerateKey.
				return nil, keysDomain.ErrKeyAlreadyExists
			}
			return nil, err
		}
		k.cache.Delete(cache.UserKeyCacheKey(userID))
		return key, nil
	}

	// Reactivation after a deactivation: fresh material, next version, same
	// row. The guarded update keeps this safe against concurrent writers.
	now := time.Now().UTC()
	key := &keysDomain.Key{
		UserID:          userID,
		KeyMaterial:     pair.Reference,
		CreatedAt:       now,
		UpdatedAt:       now,
		IsActive:        true,
		RotationVersion: existing.RotationVersion + 1,
		LockVersion:     existing.LockVersion + 1,
	}
	if err := k.keyRepo.Update(ctx, key, existing.LockVersion); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return nil, keysDomain.ErrKeyAlreadyExists
		}
		return nil, err
	}

	k.cache.Delete(cache.UserKeyCacheKey(userID))
	return key, nil
}

// GetActiveKey retrieves the user's active key, serving from the cache when
// possible and enforcing the maximum key age on every read.
func (k *keyUseCase) GetActiveKey(ctx context.Context, userID int64) (*keysDomain.Key, error) {
	if userID <= 0 {
		return nil, keysDomain.ErrInvalidUserID
	}

	cacheKey := cache.UserKeyCacheKey(userID)

	var cached keysDomain.Key
	if err := k.cache.Get(cacheKey, &cached); err == nil {
		if !cached.Expired(k.cfg.MaxAge) {
			return &cached, nil
		}
		// Expired entry: drop it and decide against the store.
		k.cache.Delete(cacheKey)
	}

	key, err := k.keyRepo.GetActive(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, keysDomain.ErrKeyNotFound
		}
		return nil, err
	}

	if key.Expired(k.cfg.MaxAge) {
		if err := k.deactivate(ctx, key); err != nil {
			return nil, err
		}
		return nil, keysDomain.ErrKeyExpired
	}

	// Cache failures must not fail the read path.
	_ = k.cache.Set(cacheKey, key)

	return key, nil
}

// DeactivateKey marks the user's key as inactive.
func (k *keyUseCase) DeactivateKey(ctx context.Context, userID int64) error {
	if userID <= 0 {
		return keysDomain.ErrInvalidUserID
	}

	key, err := k.keyRepo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return keysDomain.ErrKeyNotFound
		}
		return err
	}
	if !key.IsActive {
		return keysDomain.ErrKeyAlreadyInactive
	}

	return k.deactivate(ctx, key)
}

// deactivate flips a key to inactive with a guarded update and invalidates
// the user's cache entry.
func (k *keyUseCase) deactivate(ctx context.Context, key *keysDomain.Key) error {
	updated := *key
	updated.IsActive = false
	updated.UpdatedAt = time.Now().UTC()
	updated.LockVersion = key.LockVersion + 1

	if err := k.keyRepo.Update(ctx, &updated, key.LockVersion); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return keysDomain.ErrRotationInProgress
		}
		return err
	}

	k.cache.Delete(cache.UserKeyCacheKey(key.UserID))
	return nil
}

// GetHistory retrieves the user's rotation audit records, most recent first.
func (k *keyUseCase) GetHistory(
	ctx context.Context,
	userID int64,
	limit, offset uint,
) ([]*keysDomain.KeyHistory, error) {
	if userID <= 0 {
		return nil, keysDomain.ErrInvalidUserID
	}
	return k.keyRepo.ListHistory(ctx, userID, limit, offset)
}

// mapProviderError translates a key provider failure into a domain error:
// transient conditions surface as provider unavailability, everything else as
// a permanent cryptographic failure.
func mapProviderError(err error) error {
	if keysService.IsTransient(err) {
		return keysDomain.ErrProviderUnavailable
	}
	// The underlying cause is deliberately not propagated: crypto failure
	// details would leak information about key state and ciphertext validity.
	return keysDomain.ErrCryptoFailed
}

// NewKeyUseCase creates a new key lifecycle use case instance with the
// provided dependencies.
func NewKeyUseCase(
	keyRepo KeyRepository,
	provider keysService.KeyProvider,
	keyCache cache.Cache,
	cfg KeyConfig,
) KeyUseCase {
	return &keyUseCase{
		keyRepo:  keyRepo,
		provider: provider,
		cache:    keyCache,
		cfg:      cfg,
	}
}
