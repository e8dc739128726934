package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"strings"
	"sync"

	"github.com/google/uuid"
	"gocloud.dev/gcerrors"
	"gocloud.dev/secrets"

	"github.com/allisson/keyring/internal/errors"

	// Register all KMS provider drivers
	_ "gocloud.dev/secrets/awskms"
	_ "gocloud.dev/secrets/azurekeyvault"
	_ "gocloud.dev/secrets/gcpkms"
	_ "gocloud.dev/secrets/hashivault"
	_ "gocloud.dev/secrets/localsecrets"
)

// localProviderURI selects the in-process provider: CreateKeyPair mints a
// random base64key:// keeper URI instead of calling out to a managed KMS.
const localProviderURI = "local"

// kmsProvider implements KeyProvider using gocloud.dev/secrets.
//
// uriTemplate controls how key references are minted. The special value
// "local" mints random base64key:// URIs. Any other value is treated as a
// provider URI template; the placeholder "{key_id}" is replaced with a fresh
// UUID per key (e.g. "hashivault://keyring-{key_id}").
//
// Opened keepers are cached per URI: a keeper is a live handle to one
// provider key and is reused across all operations referencing it.
type kmsProvider struct {
	uriTemplate string

	mu      sync.RWMutex
	keepers map[string]*secrets.Keeper
	closed  bool
}

// NewKMSProvider creates a KeyProvider backed by gocloud.dev/secrets.
// Supports: gcpkms://, awskms://, azurekeyvault://, hashivault://,
// base64key://, and the special template "local".
//
// A managed-KMS template must contain the "{key_id}" placeholder. Without it
// every minted reference would be the same provider key, so rotations would
// silently reuse the old material.
func NewKMSProvider(uriTemplate string) (KeyProvider, error) {
	if uriTemplate != localProviderURI && !strings.Contains(uriTemplate, "{key_id}") {
		return nil, errors.Wrap(
			errors.ErrInvalidInput,
			"provider URI template must be \"local\" or contain the {key_id} placeholder",
		)
	}

	return &kmsProvider{
		uriTemplate: uriTemplate,
		keepers:     make(map[string]*secrets.Keeper),
	}, nil
}

// CreateKeyPair mints a new provider key reference and verifies it is usable
// by opening a keeper for it.
func (p *kmsProvider) CreateKeyPair(ctx context.Context) (*KeyPair, error) {
	reference, err := p.mintReference()
	if err != nil {
		return nil, err
	}

	// Opening the keeper validates the reference against the provider before
	// anything is persisted.
	if _, err := p.keeper(ctx, reference); err != nil {
		return nil, err
	}

	return &KeyPair{Reference: reference}, nil
}

// Encrypt encrypts plaintext under the key identified by keyRef.
func (p *kmsProvider) Encrypt(ctx context.Context, keyRef string, plaintext []byte) ([]byte, error) {
	keeper, err := p.keeper(ctx, keyRef)
	if err != nil {
		return nil, err
	}

	ciphertext, err := keeper.Encrypt(ctx, plaintext)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encrypt with provider key")
	}
	return ciphertext, nil
}

// Decrypt decrypts ciphertext under the key identified by keyRef.
func (p *kmsProvider) Decrypt(ctx context.Context, keyRef string, ciphertext []byte) ([]byte, error) {
	keeper, err := p.keeper(ctx, keyRef)
	if err != nil {
		return nil, err
	}

	plaintext, err := keeper.Decrypt(ctx, ciphertext)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decrypt with provider key")
	}
	return plaintext, nil
}

// Close closes every cached keeper. Safe to call more than once.
func (p *kmsProvider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true

	var firstErr error
	for uri, keeper := range p.keepers {
		if err := keeper.Close(); err != nil && firstErr == nil {
			firstErr = errors.Wrap(err, "failed to close keeper")
		}
		delete(p.keepers, uri)
	}
	return firstErr
}

// mintReference produces a fresh provider key reference from the template.
func (p *kmsProvider) mintReference() (string, error) {
	if p.uriTemplate == localProviderURI {
		raw := make([]byte, 32)
		if _, err := rand.Read(raw); err != nil {
			return "", errors.Wrap(err, "failed to generate local key")
		}
		return "base64key://" + base64.URLEncoding.EncodeToString(raw), nil
	}

	return strings.ReplaceAll(p.uriTemplate, "{key_id}", uuid.Must(uuid.NewV7()).String()), nil
}

// keeper returns the cached keeper for uri, opening it on first use.
func (p *kmsProvider) keeper(ctx context.Context, uri string) (*secrets.Keeper, error) {
	p.mu.RLock()
	keeper, ok := p.keepers[uri]
	p.mu.RUnlock()
	if ok {
		return keeper, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, errors.Wrap(errors.ErrUnavailable, "key provider is closed")
	}
	if keeper, ok := p.keepers[uri]; ok {
		return keeper, nil
	}

	keeper, err := secrets.OpenKeeper(ctx, uri)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open provider keeper")
	}
	p.keepers[uri] = keeper
	return keeper, nil
}

// IsTransient reports whether a provider error is worth retrying. Resource
// exhaustion, unavailability, timeouts, and internal provider faults are
// transient; everything else (invalid key reference, malformed ciphertext,
// permission denial) is permanent and must not be retried.
func IsTransient(err error) bool {
	switch gcerrors.Code(err) {
	case gcerrors.ResourceExhausted, gcerrors.DeadlineExceeded, gcerrors.Internal:
		return true
	}
	return false
}
