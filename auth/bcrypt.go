package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// hashCost is deliberately above the bcrypt default; login is rare enough to
// pay for the extra rounds.
const hashCost = 14

// HashPassword derives the stored credential for a password. Empty passwords
// are rejected before hashing since bcrypt would happily hash them.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrNoEmptyString
	}

	h, err := bcrypt.GenerateFromPassword([]byte(password), hashCost)
	return string(h), err
}

// ComparePasswordAndHash checks a cleartext password against the stored hash,
// normalizing the mismatch case to the taxonomy kind.
func ComparePasswordAndHash(password, hash string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrMismatchedHashAndPassword
		}
		return err
	}
	return nil
}
