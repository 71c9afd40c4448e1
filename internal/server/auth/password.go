package auth

import (
	"github.com/dmitrijs2005/scriptkeeper/internal/shared"
	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher hashes and checks user passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

// BcryptHasher implements PasswordHasher with bcrypt. Every Hash call uses
// a fresh random salt, and the returned string carries salt and cost.
type BcryptHasher struct {
	cost int
}

func NewBcryptHasher(cost int) *BcryptHasher {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

// Hash returns the bcrypt hash of password. Passwords longer than 72 bytes
// are rejected by bcrypt and surface as an error.
func (h *BcryptHasher) Hash(password string) (string, error) {
	b := []byte(password)
	defer shared.WipeByteArray(b)

	hash, err := bcrypt.GenerateFromPassword(b, h.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify reports whether password matches hash. A malformed hash yields false.
func (h *BcryptHasher) Verify(password, hash string) bool {
	b := []byte(password)
	defer shared.WipeByteArray(b)

	return bcrypt.CompareHashAndPassword([]byte(hash), b) == nil
}
