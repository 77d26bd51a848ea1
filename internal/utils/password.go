package utils

import "golang.org/x/crypto/bcrypt"

// HashPasscode returns the bcrypt hash of plain. Costs outside bcrypt's
// range fall back to the default cost.
func HashPasscode(plain string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPasscode safely compares a bcrypt hash and a plain passcode. An
// empty hash never matches.
func VerifyPasscode(hash, plain string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
