package auth

import (
	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost is used when no cost is configured.
const DefaultBcryptCost = bcrypt.DefaultCost

// Hasher hashes and checks passwords.
type Hasher interface {
	Hash(plain string) (string, error)
	Verify(plain, digest string) bool
}

// BcryptHasher salts every digest internally.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher returns a hasher with cost clamped to bcrypt's accepted range.
func NewBcryptHasher(cost int) *BcryptHasher {
	switch {
	case cost == 0:
		cost = DefaultBcryptCost
	case cost < bcrypt.MinCost:
		cost = bcrypt.MinCost
	case cost > bcrypt.MaxCost:
		cost = bcrypt.MaxCost
	}
	return &BcryptHasher{cost: cost}
}

// Cost returns the work factor in use.
func (h *BcryptHasher) Cost() int {
	return h.cost
}

// Hash returns the bcrypt digest of plain.
func (h *BcryptHasher) Hash(plain string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// Verify reports whether digest was produced from plain.
func (h *BcryptHasher) Verify(plain, digest string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(plain))
	return err == nil
}
