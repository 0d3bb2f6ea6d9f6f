package models

import "time"

// Session is the server-side record behind an issued token. Deleting the row
// revokes the token.
type Session struct {
	ID        string
	UserName  string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// IsExpiredAt reports whether the session is no longer valid at t.
func (s *Session) IsExpiredAt(t time.Time) bool {
	return !t.Before(s.ExpiresAt)
}
