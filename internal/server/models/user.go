// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is a credential record. Verifier is an encoded one-way hash of the
// password; the plaintext is never stored.
type User struct {
	ID        int64
	UserName  string
	Verifier  string
	CreatedAt time.Time
}
