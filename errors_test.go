package auth_test

import (
	"errors"
	"testing"

	"github.com/duelshop/go-auth"
	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
)

func TestIsTokenExpiredError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "Structured token expired error",
			err:      auth.ErrTokenExpired,
			expected: true,
		},
		{
			name:     "Legacy token expired error (string match)",
			err:      errors.New("some wrapper: token is expired"),
			expected: true,
		},
		{
			name:     "Different structured error",
			err:      auth.ErrIdentityNotFound,
			expected: false,
		},
		{
			name:     "Different legacy error",
			err:      errors.New("invalid token"),
			expected: false,
		},
		{
			name:     "Nil error",
			err:      nil,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := auth.IsTokenExpiredError(tt.err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestIsMalformedError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "Structured malformed error",
			err:      auth.ErrTokenMalformed,
			expected: true,
		},
		{
			name:     "Legacy malformed error (string match)",
			err:      errors.New("token is malformed"),
			expected: true,
		},
		{
			name:     "Legacy missing JWT error (string match)",
			err:      errors.New("missing or malformed JWT"),
			expected: true,
		},
		{
			name:     "Different legacy error",
			err:      errors.New("invalid token"),
			expected: false,
		},
		{
			name:     "Nil error",
			err:      nil,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := auth.IsMalformedError(tt.err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestStructuredErrorProperties(t *testing.T) {
	t.Run("ErrIdentityNotFound", func(t *testing.T) {
		assert.Equal(t, goerrors.CategoryNotFound, auth.ErrIdentityNotFound.Category)
		assert.Equal(t, "identity not found", auth.ErrIdentityNotFound.Message)
	})

	t.Run("ErrMismatchedHashAndPassword", func(t *testing.T) {
		assert.Equal(t, goerrors.CategoryAuth, auth.ErrMismatchedHashAndPassword.Category)
		assert.Equal(t, auth.TextCodeInvalidCreds, auth.ErrMismatchedHashAndPassword.TextCode)
		assert.Equal(t, "the credentials provided are invalid", auth.ErrMismatchedHashAndPassword.Message)
	})

	t.Run("ErrAccountConflict", func(t *testing.T) {
		assert.Equal(t, goerrors.CategoryConflict, auth.ErrAccountConflict.Category)
		assert.Equal(t, auth.TextCodeAccountConflict, auth.ErrAccountConflict.TextCode)
	})

	t.Run("ErrTokenNotFound", func(t *testing.T) {
		assert.Equal(t, goerrors.CategoryNotFound, auth.ErrTokenNotFound.Category)
		assert.Equal(t, auth.TextCodeTokenNotFound, auth.ErrTokenNotFound.TextCode)
	})

	t.Run("ErrTokenExpired", func(t *testing.T) {
		assert.Equal(t, goerrors.CategoryValidation, auth.ErrTokenExpired.Category)
		assert.Equal(t, auth.TextCodeTokenExpired, auth.ErrTokenExpired.TextCode)
	})

	t.Run("ErrTemplateRender", func(t *testing.T) {
		assert.Equal(t, goerrors.CategoryInternal, auth.ErrTemplateRender.Category)
		assert.Equal(t, auth.TextCodeTemplateRender, auth.ErrTemplateRender.TextCode)
	})

	t.Run("ErrNotificationSend", func(t *testing.T) {
		assert.Equal(t, goerrors.CategoryOperation, auth.ErrNotificationSend.Category)
		assert.Equal(t, auth.TextCodeNotificationSend, auth.ErrNotificationSend.TextCode)
	})

	t.Run("ErrMissingSigningSecret", func(t *testing.T) {
		assert.Equal(t, goerrors.CategoryInternal, auth.ErrMissingSigningSecret.Category)
		assert.Equal(t, auth.TextCodeMissingSigningSecret, auth.ErrMissingSigningSecret.TextCode)
	})

	t.Run("ErrNoEmptyString", func(t *testing.T) {
		assert.Equal(t, goerrors.CategoryValidation, auth.ErrNoEmptyString.Category)
		assert.Equal(t, auth.TextCodeEmptyPassword, auth.ErrNoEmptyString.TextCode)
	})
}
