package utils

import "golang.org/x/crypto/bcrypt"

// HashSecret returns a bcrypt hash of the provided value. Used for
// both user passwords and one-time codes.
func HashSecret(plain string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckSecret compares a bcrypt hash with its possible plaintext.
func CheckSecret(hashed, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain)) == nil
}
