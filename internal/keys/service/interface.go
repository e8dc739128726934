// Package service provides the external key provider integration.
// Key pairs are minted and cryptographic operations performed through
// gocloud.dev/secrets keepers, so the same code path serves AWS KMS, GCP KMS,
// Azure Key Vault, HashiCorp Vault, and local keys.
package service

import (
	"context"
)

// KeyPair is the provider's response to a key creation request.
type KeyPair struct {
	// Reference is the opaque provider key reference (a keeper URI). It is
	// persisted as the user's key material and passed back to the provider
	// for every cryptographic operation.
	Reference string

	// PublicMaterial is the shareable portion of the key pair, when the
	// provider exposes one. Empty for providers that keep both halves opaque.
	PublicMaterial string
}

// KeyProvider defines the interface to the external key management provider.
//
// All operations accept a context for cancellation and may fail transiently;
// callers classify failures with IsTransient and retry only those.
type KeyProvider interface {
	// CreateKeyPair mints a new provider-held key pair and returns its
	// reference. The provider call is idempotent from this service's point of
	// view: a failed creation leaves no observable state here.
	CreateKeyPair(ctx context.Context) (*KeyPair, error)

	// Encrypt encrypts plaintext under the key identified by keyRef.
	Encrypt(ctx context.Context, keyRef string, plaintext []byte) ([]byte, error)

	// Decrypt decrypts ciphertext under the key identified by keyRef.
	Decrypt(ctx context.Context, keyRef string, ciphertext []byte) ([]byte, error)

	// Close releases provider resources. Safe to call more than once.
	Close() error
}
