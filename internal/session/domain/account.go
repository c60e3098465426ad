package domain

import "time"

// Account is a registered subject. Accounts are never mutated once created.
type Account struct {
	Username     string
	PasswordHash string // argon2id PHC string, peppered
	CreatedAt    time.Time
}

// Profile is the public view of an account.
type Profile struct {
	Username string
}
