package usecase

import (
	"context"
	"time"

	keysDomain "github.com/allisson/keyring/internal/keys/domain"
	"github.com/allisson/keyring/internal/metrics"
)

// keyUseCaseWithMetrics decorates KeyUseCase with metrics instrumentation.
type keyUseCaseWithMetrics struct {
	next    KeyUseCase
	metrics metrics.BusinessMetrics
}

// NewKeyUseCaseWithMetrics wraps a KeyUseCase with metrics recording.
func NewKeyUseCaseWithMetrics(useCase KeyUseCase, m metrics.BusinessMetrics) KeyUseCase {
	return &keyUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// GenerateKey records metrics for key generation operations.
func (k *keyUseCaseWithMetrics) GenerateKey(ctx context.Context, userID int64) (*keysDomain.Key, error) {
	start := time.Now()
	key, err := k.next.GenerateKey(ctx, userID)

	status := "success"
	if err != nil {
		status = "error"
	}

	k.metrics.RecordOperation(ctx, "keys", "key_generate", status)
	k.metrics.RecordDuration(ctx, "keys", "key_generate", time.Since(start), status)

	return key, err
}

// GetActiveKey records metrics for active key retrieval operations.
func (k *keyUseCaseWithMetrics) GetActiveKey(ctx context.Context, userID int64) (*keysDomain.Key, error) {
	start := time.Now()
	key, err := k.next.GetActiveKey(ctx, userID)

	status := "success"
	if err != nil {
		status = "error"
	}

	k.metrics.RecordOperation(ctx, "keys", "key_get_active", status)
	k.metrics.RecordDuration(ctx, "keys", "key_get_active", time.Since(start), status)

	return key, err
}

// DeactivateKey records metrics for key deactivation operations.
func (k *keyUseCaseWithMetrics) DeactivateKey(ctx context.Context, userID int64) error {
	start := time.Now()
	err := k.next.DeactivateKey(ctx, userID)

	status := "success"
	if err != nil {
		status = "error"
	}

	k.metrics.RecordOperation(ctx, "keys", "key_deactivate", status)
	k.metrics.RecordDuration(ctx, "keys", "key_deactivate", time.Since(start), status)

	return err
}

// GetHistory records metrics for rotation history retrieval operations.
func (k *keyUseCaseWithMetrics) GetHistory(
	ctx context.Context,
	userID int64,
	limit, offset uint,
) ([]*keysDomain.KeyHistory, error) {
	start := time.Now()
	histories, err := k.next.GetHistory(ctx, userID, limit, offset)

	status := "success"
	if err != nil {
		status = "error"
	}

	k.metrics.RecordOperation(ctx, "keys", "key_history", status)
	k.metrics.RecordDuration(ctx, "keys", "key_history", time.Since(start), status)

	return histories, err
}

// rotationUseCaseWithMetrics decorates RotationUseCase with metrics instrumentation.
type rotationUseCaseWithMetrics struct {
	next    RotationUseCase
	metrics metrics.BusinessMetrics
}

// NewRotationUseCaseWithMetrics wraps a RotationUseCase with metrics recording.
func NewRotationUseCaseWithMetrics(useCase RotationUseCase, m metrics.BusinessMetrics) RotationUseCase {
	return &rotationUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// RotateKey records metrics for key rotation operations.
func (r *rotationUseCaseWithMetrics) RotateKey(
	ctx context.Context,
	userID int64,
	reason, initiatedBy string,
) (*keysDomain.Key, error) {
	start := time.Now()
	key, err := r.next.RotateKey(ctx, userID, reason, initiatedBy)

	status := "success"
	if err != nil {
		status = "error"
	}

	r.metrics.RecordOperation(ctx, "keys", "key_rotate", status)
	r.metrics.RecordDuration(ctx, "keys", "key_rotate", time.Since(start), status)

	return key, err
}

// EmergencyRotateKey records metrics for emergency rotation operations.
func (r *rotationUseCaseWithMetrics) EmergencyRotateKey(
	ctx context.Context,
	userID int64,
	reason string,
) (*keysDomain.Key, error) {
	start := time.Now()
	key, err := r.next.EmergencyRotateKey(ctx, userID, reason)

	status := "success"
	if err != nil {
		status = "error"
	}

	r.metrics.RecordOperation(ctx, "keys", "key_rotate_emergency", status)
	r.metrics.RecordDuration(ctx, "keys", "key_rotate_emergency", time.Since(start), status)

	return key, err
}

// ScheduleRotation records metrics for rotation scheduling operations.
func (r *rotationUseCaseWithMetrics) ScheduleRotation(
	ctx context.Context,
	userID int64,
	scheduledAt time.Time,
	reason string,
) (*keysDomain.ScheduledRotation, error) {
	start := time.Now()
	schedule, err := r.next.ScheduleRotation(ctx, userID, scheduledAt, reason)

	status := "success"
	if err != nil {
		status = "error"
	}

	r.metrics.RecordOperation(ctx, "keys", "key_rotate_schedule", status)
	r.metrics.RecordDuration(ctx, "keys", "key_rotate_schedule", time.Since(start), status)

	return schedule, err
}

// batchCryptoUseCaseWithMetrics decorates BatchCryptoUseCase with metrics instrumentation.
type batchCryptoUseCaseWithMetrics struct {
	next    BatchCryptoUseCase
	metrics metrics.BusinessMetrics
}

// NewBatchCryptoUseCaseWithMetrics wraps a BatchCryptoUseCase with metrics recording.
func NewBatchCryptoUseCaseWithMetrics(useCase BatchCryptoUseCase, m metrics.BusinessMetrics) BatchCryptoUseCase {
	return &batchCryptoUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// EncryptBatch records metrics for batch encryption operations.
func (b *batchCryptoUseCaseWithMetrics) EncryptBatch(
	ctx context.Context,
	userID int64,
	plaintexts []string,
) ([]string, error) {
	start := time.Now()
	results, err := b.next.EncryptBatch(ctx, userID, plaintexts)

	status := "success"
	if err != nil {
		status = "error"
	}

	b.metrics.RecordOperation(ctx, "keys", "batch_encrypt", status)
	b.metrics.RecordDuration(ctx, "keys", "batch_encrypt", time.Since(start), status)

	return results, err
}

// DecryptBatch records metrics for batch decryption operations.
func (b *batchCryptoUseCaseWithMetrics) DecryptBatch(
	ctx context.Context,
	userID int64,
	ciphertexts []string,
) ([]string, error) {
	start := time.Now()
	results, err := b.next.DecryptBatch(ctx, userID, ciphertexts)

	status := "success"
	if err != nil {
		status = "error"
	}

	b.metrics.RecordOperation(ctx, "keys", "batch_decrypt", status)
	b.metrics.RecordDuration(ctx, "keys", "batch_decrypt", time.Since(start), status)

	return results, err
}
