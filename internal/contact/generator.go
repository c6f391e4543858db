package contact

import (
	"crypto/rand"
	"encoding/hex"
	"math/big"
	"time"
)

// Generator produces sample contacts using crypto/rand.
type Generator struct{}

// NewGenerator creates a generator.
func NewGenerator() *Generator {
	return &Generator{}
}

// Generate produces a sample contact with a random name and address.
func (g *Generator) Generate() Contact {
	first, last := g.Name()
	return Contact{
		ID:          NewID(),
		DisplayName: first + " " + last,
		Address:     g.Address(),
		CreatedAt:   time.Now().UTC(),
	}
}

// Name returns a random first/last name pair.
func (g *Generator) Name() (first, last string) {
	return pick(firstNames), pick(lastNames)
}

// Address returns a random 0x-prefixed 20-byte hex address.
func (g *Generator) Address() string {
	b := make([]byte, 20)
	mustRead(b)
	return "0x" + hex.EncodeToString(b)
}

// NewID returns an 8-character hex identifier.
func NewID() string {
	b := make([]byte, 4)
	mustRead(b)
	return hex.EncodeToString(b)
}

func pick(s []string) string {
	return s[randIntn(len(s))]
}

// randIntn returns a cryptographically random int in [0, n).
func randIntn(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		// crypto/rand failure is unrecoverable
		panic("crypto/rand: " + err.Error())
	}
	return int(v.Int64())
}

func mustRead(b []byte) {
	if _, err := rand.Read(b); err != nil {
		panic("crypto/rand: " + err.Error())
	}
}
