package crypto

import (
	"golang.org/x/crypto/bcrypt"
)

// DefaultWorkFactor is the bcrypt cost applied when no explicit value is configured.
const DefaultWorkFactor = 10

// HashPassword returns a bcrypt hash of the supplied password using the
// given work factor. Higher cost trades login latency for resistance to
// offline brute force.
func HashPassword(password string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultWorkFactor
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword compares the hashed password with the plaintext candidate.
// The underlying comparison is constant time.
func VerifyPassword(hashedPassword, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)) == nil
}
