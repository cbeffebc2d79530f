package identity

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Admin is a persistable privileged identity with a hashed credential. The
// live admin authentication path uses the shared admin code and a role-claim
// token instead; this entity exists for deployments that want per-admin
// accounts.
type Admin struct {
	ID           string
	Email        string // stored lowercased
	PasswordHash string
	Name         string
	CreatedAt    time.Time
}

// SetPassword hashes the plaintext with a per-record salt. The plaintext is
// never stored.
func (a *Admin) SetPassword(plaintext string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	a.PasswordHash = string(hash)
	return nil
}

// ComparePassword reports whether the plaintext matches the stored hash.
func (a *Admin) ComparePassword(plaintext string) bool {
	return bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(plaintext)) == nil
}
