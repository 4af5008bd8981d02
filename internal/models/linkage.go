package models

import (
	"time"
)

// Provider identifies an external identity provider.
type Provider string

const (
	ProviderGitHub Provider = "github"
	ProviderGoogle Provider = "google"
)

// Valid reports whether p is a supported provider.
func (p Provider) Valid() bool {
	switch p {
	case ProviderGitHub, ProviderGoogle:
		return true
	}
	return false
}

// ProviderLinkage binds one external identity to exactly one Account.
type ProviderLinkage struct {
	ID                int64      `json:"id" db:"id"`
	AccountID         int64      `json:"account_id" db:"account_id"`
	Provider          Provider   `json:"provider" db:"provider"`
	ProviderSubjectID string     `json:"provider_subject_id" db:"provider_subject_id"`
	ProfileImage      *string    `json:"profile_image,omitempty" db:"profile_image"`
	AccessToken       *string    `json:"-" db:"access_token"`
	RefreshToken      *string    `json:"-" db:"refresh_token"`
	ExpiresAt         *time.Time `json:"-" db:"expires_at"`
	CreatedAt         time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at" db:"updated_at"`
}

// LinkedAccount is the sanitized view of a linkage shown to its owner.
type LinkedAccount struct {
	ID             int64     `json:"id"`
	Provider       Provider  `json:"provider"`
	ProviderUserID string    `json:"provider_user_id"`
	CreatedAt      time.Time `json:"created_at"`
}

// Sanitize drops credentials from the linkage.
func (l *ProviderLinkage) Sanitize() LinkedAccount {
	return LinkedAccount{
		ID:             l.ID,
		Provider:       l.Provider,
		ProviderUserID: l.ProviderSubjectID,
		CreatedAt:      l.CreatedAt,
	}
}

// ProviderTokens are the credentials a provider hands back on sign-in.
// Nil fields mean the provider did not return that value.
type ProviderTokens struct {
	AccessToken  *string
	RefreshToken *string
	ExpiresAt    *time.Time
}

// LinkageUpsert is the result of writing a linkage.
type LinkageUpsert struct {
	ID        int64
	AccountID int64
	Created   bool
}
