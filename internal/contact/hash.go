package contact

import (
	"encoding/hex"

	"golang.org/x/crypto/sha3"
)

// Hasher derives a stable identifying string from a contact.
type Hasher interface {
	Hash(c Contact) string
}

// HasherFunc adapts a function to the Hasher interface.
type HasherFunc func(c Contact) string

func (f HasherFunc) Hash(c Contact) string { return f(c) }

// NameHasher hashes the display name with NameHash.
var NameHasher Hasher = HasherFunc(func(c Contact) string {
	return NameHash(c.DisplayName)
})

// NameHash returns the keccak-256 digest of name as 0x-prefixed lowercase
// hex. The prefix matters to colors: only the first digest digit falls in
// the three characters the palette reads.
func NameHash(name string) string {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(name))
	return "0x" + hex.EncodeToString(h.Sum(nil))
}
