// Package models defines the row types and public shapes of the web tools API.
package models

import (
	"time"
)

// Account is a person known to the system, keyed by email.
type Account struct {
	ID           int64     `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	Name         *string   `json:"name,omitempty" db:"name"`
	Image        *string   `json:"image,omitempty" db:"image"`
	PasswordHash *string   `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// Profile returns the public view of the account.
func (a *Account) Profile() *AccountProfile {
	p := &AccountProfile{ID: a.ID, Email: a.Email}
	if a.Name != nil {
		p.Name = *a.Name
	}
	if a.Image != nil {
		p.Image = *a.Image
	}
	return p
}

// AccountProfile is what sign-in and /api/user return. It never carries tokens.
type AccountProfile struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	Image string `json:"image,omitempty"`
}
