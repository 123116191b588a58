package auth

import (
	"golang.org/x/crypto/bcrypt"
)

type PasswordHasher interface {
	Hash(plain string) (string, error)
}

type PasswordVerifier interface {
	Verify(plain string, hashed string) bool
}

// HasherとVerifierを兼ねる
type Bcrypt struct {
	cost int
}

// 範囲外のコストはDefaultCost
func NewBcrypt(cost int) *Bcrypt {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Bcrypt{cost: cost}
}

func (b *Bcrypt) Hash(plain string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(plain), b.cost)
	return string(h), err
}

func (b *Bcrypt) Verify(plain string, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain)) == nil
}

var (
	_ PasswordHasher   = (*Bcrypt)(nil)
	_ PasswordVerifier = (*Bcrypt)(nil)
)
