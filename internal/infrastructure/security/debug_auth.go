package security

import "golang.org/x/crypto/bcrypt"

// CheckDebugPassword compares an operator-supplied password against the
// configured bcrypt hash guarding the debug inspection surface. An
// empty configured hash disables the surface entirely.
func CheckDebugPassword(password, configuredHash string) bool {
	if configuredHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(configuredHash), []byte(password)) == nil
}
