package security

import "golang.org/x/crypto/bcrypt"

// cost 10
const hashCost = bcrypt.DefaultCost

// HashPassword hashes a plain text password with bcrypt.
func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), hashCost)

	if err != nil {
		return "", err
	}

	return string(hash), nil
}

// PasswordMatches reports whether plain matches the stored hash. A malformed
// hash is a mismatch.
func PasswordMatches(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
