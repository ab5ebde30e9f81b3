package utils

import "golang.org/x/crypto/bcrypt"

// HashPassword bcrypt-hashes an account password at registration.  The
// cost comes from the caller so the user repository can keep a single
// place to tune it.
func HashPassword(plain string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword compares a stored account hash against a login
// attempt in constant time.  Only the boolean leaves this package; the
// login handler reports a generic credentials error either way.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
