package auth

import (
	"crypto/rand"
	"encoding/base64"

	"github.com/goliatone/go-errors"
)

// tokenValueBytes gives 256 bits of entropy; collisions are handled by
// the unique index plus a single regenerate-and-retry on insert.
const tokenValueBytes = 32

// NewTokenValue generates an opaque one time token value from a
// cryptographically strong random source.
func NewTokenValue() (string, error) {
	buf := make([]byte, tokenValueBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to generate token value")
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
