// Package fingerprint computes stable content digests of normalized policy
// text. The digest is the sole staleness signal for cached analyses: two
// byte-identical texts always produce the same fingerprint, and the value is
// only ever compared for equality, never decoded.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
)

// Hash returns the lowercase hex SHA-256 digest of text.
func Hash(text string) string {
	sum := sha256.Sum256([]byte(text))

	return hex.EncodeToString(sum[:])
}
