// Package token derives opaque student tokens from real-world identifiers.
//
// Every entry point that turns an identifier into a token (bulk roster
// import, student self-lookup) must go through Resolve so the two paths can
// never drift apart.
package token

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Length is the number of hex characters kept from the digest.
const Length = 12

// Resolve maps an identifier to its stable opaque token. The identifier is
// lowercased and trimmed before hashing, so "Alice@Example.com " and
// "alice@example.com" yield the same token.
func Resolve(identifier string) string {
	normalized := strings.ToLower(strings.TrimSpace(identifier))
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])[:Length]
}
