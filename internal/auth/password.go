package auth

import "golang.org/x/crypto/bcrypt"

// defaultBcryptCost matches the cost accounts were originally hashed with.
// Existing hashes embed their own cost, so changing this never invalidates
// stored credentials.
const defaultBcryptCost = 12

// HashPassword hashes a plaintext password. An out-of-range cost falls back
// to the default instead of failing registration.
func HashPassword(password string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = defaultBcryptCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// ComparePassword verifies a password against its hashed value.
func ComparePassword(hashed, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
}
