package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/binary"
	"encoding/hex"
	"hash"
)

// TokenSigner binds a session to the credential it was minted from. The
// binding is recomputable from the stored record alone, so nothing about the
// session itself has to be persisted server-side.
type TokenSigner struct {
	key []byte
}

func NewTokenSigner(secret string) *TokenSigner {
	return &TokenSigner{key: []byte(secret)}
}

// MintToken returns HMAC-SHA256(secret, username | digest | salt) in hex. Each
// field is length-prefixed so ("ab","c") and ("a","bc") never collide. An
// empty salt is accepted.
func (s *TokenSigner) MintToken(username, passwordDigest, salt string) string {
	mac := hmac.New(sha256.New, s.key)
	writeField(mac, username)
	writeField(mac, passwordDigest)
	writeField(mac, salt)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyToken recomputes the binding and compares in constant time. Malformed
// or empty input simply fails.
func (s *TokenSigner) VerifyToken(username, storedDigest, salt, presented string) bool {
	if presented == "" || username == "" || storedDigest == "" {
		return false
	}
	expected := s.MintToken(username, storedDigest, salt)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(presented)) == 1
}

func writeField(h hash.Hash, v string) {
	var n [4]byte
	binary.BigEndian.PutUint32(n[:], uint32(len(v)))
	h.Write(n[:])
	h.Write([]byte(v))
}
