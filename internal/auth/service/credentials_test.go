package service_test

import (
	"testing"

	"github.com/AlibekovAA/secure-blog/internal/auth/service"
)

func TestTokenSigner_MintIsDeterministic(t *testing.T) {
	signer := service.NewTokenSigner(testSecret)

	a := signer.MintToken("alice", "digest", "salt")
	b := signer.MintToken("alice", "digest", "salt")
	if a != b {
		t.Fatalf("expected equal tokens, got %s and %s", a, b)
	}
	if len(a) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(a))
	}
}

func TestTokenSigner_VerifyToken(t *testing.T) {
	signer := service.NewTokenSigner(testSecret)
	token := signer.MintToken("alice", "digest", "salt")

	tests := []struct {
		name      string
		username  string
		digest    string
		salt      string
		presented string
		want      bool
	}{
		{"match", "alice", "digest", "salt", token, true},
		{"other user", "bob", "digest", "salt", token, false},
		{"other digest", "alice", "digest2", "salt", token, false},
		{"other salt", "alice", "digest", "salt2", token, false},
		{"empty token", "alice", "digest", "salt", "", false},
		{"empty username", "", "digest", "salt", token, false},
		{"truncated", "alice", "digest", "salt", token[:len(token)-1], false},
		{"tampered", "alice", "digest", "salt", flipMiddle(token), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := signer.VerifyToken(tt.username, tt.digest, tt.salt, tt.presented); got != tt.want {
				t.Errorf("VerifyToken() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTokenSigner_FieldBoundaries(t *testing.T) {
	signer := service.NewTokenSigner(testSecret)

	if signer.MintToken("ab", "c", "") == signer.MintToken("a", "bc", "") {
		t.Error("shifting bytes between fields must change the token")
	}
}

func TestTokenSigner_SecretMatters(t *testing.T) {
	a := service.NewTokenSigner(testSecret).MintToken("alice", "digest", "salt")
	b := service.NewTokenSigner(testSecret + "x").MintToken("alice", "digest", "salt")
	if a == b {
		t.Error("expected different secrets to produce different tokens")
	}
}
