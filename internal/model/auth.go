package model

import "time"

// User is the legacy username/password table. It exists for data
// compatibility with older database exports; no active route reads it.
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Password  string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// MagicLinkToken is one issued login link. Only the SHA-256 hash of the raw
// token is persisted; consumed rows keep their used_at timestamp as an audit
// trail.
type MagicLinkToken struct {
	ID        int64      `json:"id"`
	Email     string     `json:"email"`
	TokenHash string     `json:"-"`
	ExpiresAt time.Time  `json:"expires_at"`
	UsedAt    *time.Time `json:"used_at"`
	CreatedAt time.Time  `json:"created_at"`
}

// Consumed reports whether the token has already been exchanged for a session.
func (m *MagicLinkToken) Consumed() bool {
	return m.UsedAt != nil
}

type Session struct {
	ID        int64     `json:"id"`
	Token     string    `json:"-"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}
