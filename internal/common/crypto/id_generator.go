package crypto

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"

	"github.com/AlibekovAA/secure-blog/internal/common/constants"
)

type IDGenerator interface {
	NewID() (string, error)
}

type UUIDGenerator struct{}

func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

func (g *UUIDGenerator) NewID() (string, error) {
	return uuid.NewString(), nil
}

type SaltGenerator interface {
	NewSalt() (string, error)
}

type RandomSaltGenerator struct{}

func NewRandomSaltGenerator() *RandomSaltGenerator {
	return &RandomSaltGenerator{}
}

func (g *RandomSaltGenerator) NewSalt() (string, error) {
	buf := make([]byte, constants.CredentialSaltLen)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random salt: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
