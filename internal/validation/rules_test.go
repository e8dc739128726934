package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "github.com/allisson/keyring/internal/errors"
)

func TestWrapValidationError(t *testing.T) {
	t.Run("NilError", func(t *testing.T) {
		assert.Nil(t, WrapValidationError(nil))
	})

	t.Run("WrapsAsInvalidInput", func(t *testing.T) {
		err := WrapValidationError(assert.AnError)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
		assert.Contains(t, err.Error(), assert.AnError.Error())
	})
}

func TestNotBlank(t *testing.T) {
	assert.NoError(t, NotBlank.Validate("value"))
	assert.Error(t, NotBlank.Validate(""))
	assert.Error(t, NotBlank.Validate("   "))
}

func TestNoWhitespace(t *testing.T) {
	assert.NoError(t, NoWhitespace.Validate("value"))
	assert.Error(t, NoWhitespace.Validate(" value"))
	assert.Error(t, NoWhitespace.Validate("value "))
}

func TestBase64(t *testing.T) {
	assert.NoError(t, Base64.Validate("aGVsbG8gd29ybGQ="))
	assert.NoError(t, Base64.Validate(""))
	assert.Error(t, Base64.Validate("not base64!!"))
}
