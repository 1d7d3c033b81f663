package crypto

import (
	"crypto/subtle"
	"encoding/hex"

	"golang.org/x/crypto/argon2"

	"github.com/AlibekovAA/secure-blog/internal/common/constants"
)

// PasswordDigester derives the stored form of a password. The result must be
// stable for a given (password, secret) pair since login recomputes it.
type PasswordDigester interface {
	Digest(password string) string
	Matches(storedDigest, password string) bool
}

type Argon2Digester struct {
	secret []byte
}

func NewArgon2Digester(secret string) *Argon2Digester {
	return &Argon2Digester{secret: []byte(secret)}
}

func (d *Argon2Digester) Digest(password string) string {
	return Digest(password, d.secret)
}

func (d *Argon2Digester) Matches(storedDigest, password string) bool {
	computed := d.Digest(password)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(storedDigest)) == 1
}

// Digest is argon2id keyed by the server secret, hex encoded. An empty
// password yields a well-defined digest; callers reject it before this point.
func Digest(password string, secret []byte) string {
	key := argon2.IDKey(
		[]byte(password),
		secret,
		constants.DigestTime,
		constants.DigestMemory,
		constants.DigestThreads,
		constants.DigestKeyLen,
	)
	return hex.EncodeToString(key)
}
