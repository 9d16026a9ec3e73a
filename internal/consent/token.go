package consent

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// tokenBytes gives 256 bits of entropy, well past the 128-bit floor for an
// unguessable bearer credential.
const tokenBytes = 32

// GenerateToken creates a cryptographically unguessable shareable token.
// Base64 RawURL keeps it safe inside a path segment.
func GenerateToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("could not generate shareable token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
