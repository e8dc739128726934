// Package mocks provides mock implementations for testing key management
// use cases and HTTP handlers.
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	keysDomain "github.com/allisson/keyring/internal/keys/domain"
	keysService "github.com/allisson/keyring/internal/keys/service"
)

// MockKeyRepository is a mock implementation of KeyRepository for testing.
type MockKeyRepository struct {
	mock.Mock
}

// Get mocks the Get method of KeyRepository.
func (m *MockKeyRepository) Get(ctx context.Context, userID int64) (*keysDomain.Key, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*keysDomain.Key), args.Error(1)
}

// GetActive mocks the GetActive method of KeyRepository.
func (m *MockKeyRepository) GetActive(ctx context.Context, userID int64) (*keysDomain.Key, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*keysDomain.Key), args.Error(1)
}

// Create mocks the Create method of KeyRepository.
func (m *MockKeyRepository) Create(ctx context.Context, key *keysDomain.Key) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// Update mocks the Update method of KeyRepository.
func (m *MockKeyRepository) Update(
	ctx context.Context,
	key *keysDomain.Key,
	expectedLockVersion int64,
) error {
	args := m.Called(ctx, key, expectedLockVersion)
	return args.Error(0)
}

// InsertHistory mocks the InsertHistory method of KeyRepository.
func (m *MockKeyRepository) InsertHistory(ctx context.Context, history *keysDomain.KeyHistory) error {
	args := m.Called(ctx, history)
	return args.Error(0)
}

// ListHistory mocks the ListHistory method of KeyRepository.
func (m *MockKeyRepository) ListHistory(
	ctx context.Context,
	userID int64,
	limit, offset uint,
) ([]*keysDomain.KeyHistory, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*keysDomain.KeyHistory), args.Error(1)
}

// InsertScheduledRotation mocks the InsertScheduledRotation method of KeyRepository.
func (m *MockKeyRepository) InsertScheduledRotation(
	ctx context.Context,
	schedule *keysDomain.ScheduledRotation,
) error {
	args := m.Called(ctx, schedule)
	return args.Error(0)
}

// MockKeyProvider is a mock implementation of service.KeyProvider for testing.
type MockKeyProvider struct {
	mock.Mock
}

// CreateKeyPair mocks the CreateKeyPair method of KeyProvider.
func (m *MockKeyProvider) CreateKeyPair(ctx context.Context) (*keysService.KeyPair, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*keysService.KeyPair), args.Error(1)
}

// Encrypt mocks the Encrypt method of KeyProvider.
func (m *MockKeyProvider) Encrypt(ctx context.Context, keyRef string, plaintext []byte) ([]byte, error) {
	args := m.Called(ctx, keyRef, plaintext)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// Decrypt mocks the Decrypt method of KeyProvider.
func (m *MockKeyProvider) Decrypt(ctx context.Context, keyRef string, ciphertext []byte) ([]byte, error) {
	args := m.Called(ctx, keyRef, ciphertext)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// Close mocks the Close method of KeyProvider.
func (m *MockKeyProvider) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockKeyUseCase is a mock implementation of KeyUseCase for testing.
type MockKeyUseCase struct {
	mock.Mock
}

// GenerateKey mocks the GenerateKey method of KeyUseCase.
func (m *MockKeyUseCase) GenerateKey(ctx context.Context, userID int64) (*keysDomain.Key, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*keysDomain.Key), args.Error(1)
}

// GetActiveKey mocks the GetActiveKey method of KeyUseCase.
func (m *MockKeyUseCase) GetActiveKey(ctx context.Context, userID int64) (*keysDomain.Key, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*keysDomain.Key), args.Error(1)
}

// DeactivateKey mocks the DeactivateKey method of KeyUseCase.
func (m *MockKeyUseCase) DeactivateKey(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// GetHistory mocks the GetHistory method of KeyUseCase.
func (m *MockKeyUseCase) GetHistory(
	ctx context.Context,
	userID int64,
	limit, offset uint,
) ([]*keysDomain.KeyHistory, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*keysDomain.KeyHistory), args.Error(1)
}

// MockRotationUseCase is a mock implementation of RotationUseCase for testing.
type MockRotationUseCase struct {
	mock.Mock
}

// RotateKey mocks the RotateKey method of RotationUseCase.
func (m *MockRotationUseCase) RotateKey(
	ctx context.Context,
	userID int64,
	reason, initiatedBy string,
) (*keysDomain.Key, error) {
	args := m.Called(ctx, userID, reason, initiatedBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*keysDomain.Key), args.Error(1)
}

// EmergencyRotateKey mocks the EmergencyRotateKey method of RotationUseCase.
func (m *MockRotationUseCase) EmergencyRotateKey(
	ctx context.Context,
	userID int64,
	reason string,
) (*keysDomain.Key, error) {
	args := m.Called(ctx, userID, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*keysDomain.Key), args.Error(1)
}

// ScheduleRotation mocks the ScheduleRotation method of RotationUseCase.
func (m *MockRotationUseCase) ScheduleRotation(
	ctx context.Context,
	userID int64,
	scheduledAt time.Time,
	reason string,
) (*keysDomain.ScheduledRotation, error) {
	args := m.Called(ctx, userID, scheduledAt, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*keysDomain.ScheduledRotation), args.Error(1)
}

// MockBatchCryptoUseCase is a mock implementation of BatchCryptoUseCase for testing.
type MockBatchCryptoUseCase struct {
	mock.Mock
}

// EncryptBatch mocks the EncryptBatch method of BatchCryptoUseCase.
func (m *MockBatchCryptoUseCase) EncryptBatch(
	ctx context.Context,
	userID int64,
	plaintexts []string,
) ([]string, error) {
	args := m.Called(ctx, userID, plaintexts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// DecryptBatch mocks the DecryptBatch method of BatchCryptoUseCase.
func (m *MockBatchCryptoUseCase) DecryptBatch(
	ctx context.Context,
	userID int64,
	ciphertexts []string,
) ([]string, error) {
	args := m.Called(ctx, userID, ciphertexts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// FakeTxManager is a passthrough TxManager that runs the callback without a
// real transaction.
type FakeTxManager struct{}

// WithTx executes the callback with the given context.
func (f *FakeTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
