package auth

import (
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

// Text codes exposed to the request layer
const (
	TextCodeInvalidCreds         = "INVALID_CREDENTIALS"
	TextCodeAccountConflict      = "ACCOUNT_CONFLICT"
	TextCodeTokenNotFound        = "TOKEN_NOT_FOUND"
	TextCodeTokenExpired         = "TOKEN_EXPIRED"
	TextCodeTokenMalformed       = "TOKEN_MALFORMED"
	TextCodeTemplateRender       = "TEMPLATE_RENDER_FAILED"
	TextCodeNotificationSend     = "NOTIFICATION_SEND_FAILED"
	TextCodeMissingSigningSecret = "MISSING_SIGNING_SECRET"
	TextCodeEmptyPassword        = "EMPTY_PASSWORD"
)

// ErrIdentityNotFound is the error we return for non found identities
var ErrIdentityNotFound = goerrors.New("identity not found", goerrors.CategoryNotFound)

// ErrMismatchedHashAndPassword is the single error every authentication
// failure collapses to: unknown login, wrong password and disabled
// account are indistinguishable to the caller.
var ErrMismatchedHashAndPassword = goerrors.New("the credentials provided are invalid", goerrors.CategoryAuth).
	WithTextCode(TextCodeInvalidCreds)

// ErrAccountConflict means the login or email is already registered
var ErrAccountConflict = goerrors.New("login or email already registered", goerrors.CategoryConflict).
	WithTextCode(TextCodeAccountConflict)

// ErrTokenNotFound is returned when a one time token value is unknown,
// already consumed, or replaced by a newer token
var ErrTokenNotFound = goerrors.New("invalid or unknown token", goerrors.CategoryNotFound).
	WithTextCode(TextCodeTokenNotFound)

// ErrTokenExpired is returned when a token was found past its expiry.
// The token is deleted as a side effect, a second attempt reports not found.
var ErrTokenExpired = goerrors.New("token has expired", goerrors.CategoryValidation).
	WithTextCode(TextCodeTokenExpired)

// ErrTokenMalformed covers session tokens that fail signature or claim checks
var ErrTokenMalformed = goerrors.New("token is malformed", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed)

// ErrTemplateRender means notification content could not be rendered.
// The primary operation already committed when this surfaces.
var ErrTemplateRender = goerrors.New("failed to render notification template", goerrors.CategoryInternal).
	WithTextCode(TextCodeTemplateRender)

// ErrNotificationSend means the notification transport failed.
// The primary operation already committed when this surfaces.
var ErrNotificationSend = goerrors.New("failed to send notification", goerrors.CategoryOperation).
	WithTextCode(TextCodeNotificationSend)

// ErrMissingSigningSecret is a startup class configuration error
var ErrMissingSigningSecret = goerrors.New("signing secret is missing or unusable", goerrors.CategoryInternal).
	WithTextCode(TextCodeMissingSigningSecret)

// ErrNoEmptyString rejects empty passwords before hashing
var ErrNoEmptyString = goerrors.New("password must not be empty", goerrors.CategoryValidation).
	WithTextCode(TextCodeEmptyPassword)

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	if goerrors.Is(err, ErrTokenExpired) {
		return true
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	if goerrors.Is(err, ErrTokenMalformed) {
		return true
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}

// isUniqueViolation matches duplicate key errors across the drivers we
// run against; uniqueness is enforced by the store, not the application.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "Duplicate entry")
}
