// Package password hashes credentials with bcrypt.
package password

import (
	"crypto/sha256"
	"encoding/base64"

	"github.com/juju/errors"
	"golang.org/x/crypto/bcrypt"
)

// Hasher hashes and verifies plaintext passwords.
type Hasher struct {
	cost int
}

// NewHasher returns a Hasher using cost, or bcrypt.DefaultCost when cost
// is zero.
func NewHasher(cost int) (*Hasher, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, errors.NotValidf("bcrypt cost %d", cost)
	}
	return &Hasher{cost: cost}, nil
}

// Hash returns a salted bcrypt hash of plain.
func (h *Hasher) Hash(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword(digest(plain), h.cost)
	if err != nil {
		return "", errors.Annotate(err, "hashing password")
	}
	return string(hash), nil
}

// Verify reports whether plain matches stored.
func (h *Hasher) Verify(plain, stored string) bool {
	return bcrypt.CompareHashAndPassword([]byte(stored), digest(plain)) == nil
}

// digest maps plain onto 44 ASCII bytes, below bcrypt's 72 byte input
// limit, whatever its length or encoding.
func digest(plain string) []byte {
	sum := sha256.Sum256([]byte(plain))
	out := make([]byte, base64.StdEncoding.EncodedLen(len(sum)))
	base64.StdEncoding.Encode(out, sum[:])
	return out
}
