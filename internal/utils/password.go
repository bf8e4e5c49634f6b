package utils

import "golang.org/x/crypto/bcrypt"

// DefaultBcryptCost is the work factor used when the configured cost is out
// of bcrypt's valid range.
const DefaultBcryptCost = 10

// HashPassword returns a bcrypt hash of plain using the given cost. The salt
// is generated internally and embedded in the output, so verification needs
// only the plaintext and the stored hash.
func HashPassword(plain string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword safely compares a bcrypt hash and a plain password. The
// comparison is constant-time with respect to mismatches; the result carries
// no information beyond match/no-match.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
