package secrets

import (
	"crypto/rand"
	"encoding/base64"

	dErrors "allad/pkg/domain-errors"
)

// GenerateState creates a cryptographically secure random token.
// Returns a base64-encoded string suitable for use as OAuth CSRF state values.
func GenerateState() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "could not generate state token")
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
