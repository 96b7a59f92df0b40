// Package model defines the domain types shared across DDA.
package model

import "time"

// UserSource is the identity provider a user originally signed up with.
type UserSource string

const (
	// UserSourceGoogle marks users created from a Google ID token.
	UserSourceGoogle UserSource = "google"
)

// User is a DDA account.
// Email is unique among users; PhoneNumber, when set, is unique as well.
type User struct {
	ID              string
	Email           string
	GivenName       string
	FamilyName      string
	PhoneNumber     *string
	ProfilePicture  *string
	IsEmailVerified bool
	IsPhoneVerified bool
	Source          UserSource
	CreatedAt       time.Time
	UpdatedAt       time.Time
	DeletedAt       *time.Time
}

// Profile is the normalized identity returned by a credential verifier.
type Profile struct {
	Email           string
	GivenName       string
	FamilyName      string
	IsEmailVerified bool
	IsPhoneVerified bool
	PhoneNumber     *string
	ProfilePicture  *string
}

// UserPatch holds a partial profile update. Nil fields are left untouched.
type UserPatch struct {
	Email          *string
	GivenName      *string
	FamilyName     *string
	PhoneNumber    *string
	ProfilePicture *string
}

// Session is the single active session token of a user.
type Session struct {
	Token     string
	UserID    string
	ExpiresAt time.Time
}

// IsExpired reports whether the session is no longer valid at now.
func (s *Session) IsExpired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
