package security

import (
	"golang.org/x/crypto/bcrypt"
)

// Hasher produces and checks bcrypt password hashes at a fixed cost. Plaintext
// passwords pass through it and must never be logged or stored.
type Hasher struct {
	Cost int
}

// NewHasher builds a Hasher, clamping cost into bcrypt's valid range. Zero or
// negative cost selects bcrypt's default; config validation keeps production
// at 12.
func NewHasher(cost int) *Hasher {
	switch {
	case cost <= 0:
		cost = bcrypt.DefaultCost
	case cost < bcrypt.MinCost:
		cost = bcrypt.MinCost
	case cost > bcrypt.MaxCost:
		cost = bcrypt.MaxCost
	}
	return &Hasher{Cost: cost}
}

// Hash returns the bcrypt hash of password for storage. Each call salts
// independently, so equal passwords produce distinct hashes.
func (h *Hasher) Hash(password []byte) (string, error) {
	b, err := bcrypt.GenerateFromPassword(password, h.Cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Compare checks password against a stored hash, returning nil only on a
// match. The mismatch error is bcrypt.ErrMismatchedHashAndPassword; callers
// fold it into the generic credential failure.
func (h *Hasher) Compare(hash string, password []byte) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), password)
}
