package domain

import "time"

// Credential is the stored identity of one account. Only TokenVersion ever
// changes after creation.
type Credential struct {
	Username       string
	PasswordDigest string
	Salt           string
	Email          string
	TokenVersion   int64
	CreatedAt      time.Time
}

// Session is what a verified session token resolves to.
type Session struct {
	Username     string
	JTI          string
	TokenVersion int64
	IssuedAt     time.Time
	ExpiresAt    time.Time
}
