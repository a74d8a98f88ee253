package auth

import "golang.org/x/crypto/bcrypt"

// HashCost is deliberately high so brute-forcing stored digests stays
// expensive.
const HashCost = 14

// HashPassword produces a salted one-way digest. Two calls with the
// same plaintext yield different digests.
func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), HashCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether plain matches digest. A malformed
// digest is a mismatch, never an error.
func CheckPassword(plain, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plain)) == nil
}
