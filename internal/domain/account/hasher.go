package account

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"

	"golang.org/x/crypto/pbkdf2"
)

const (
	hashRounds    = 1_000
	credentialLen = sha256.Size
)

// Hash derives a storable digest from a secret, salted with the identity
// it belongs to. Same secret under two usernames yields two digests.
func Hash(identitySalt, secret string) string {
	derived := pbkdf2.Key([]byte(secret), []byte(identitySalt), hashRounds, credentialLen, sha256.New)
	return base64.StdEncoding.EncodeToString(derived)
}

// Verify recomputes the digest for the attempted secret and compares in
// constant time. A digest that does not decode fails closed: false, not an
// error, so callers cannot tell malformed storage apart from a wrong
// password.
func Verify(identitySalt, storedDigest, attemptedSecret string) bool {
	want, err := base64.StdEncoding.DecodeString(storedDigest)
	if err != nil {
		return false
	}
	got := pbkdf2.Key([]byte(attemptedSecret), []byte(identitySalt), hashRounds, credentialLen, sha256.New)
	return subtle.ConstantTimeCompare(want, got) == 1
}
