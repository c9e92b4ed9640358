package auth

import "time"

// Identity is one human account as stored by the identity store.
type Identity struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Enabled      bool      `json:"enabled"`
	Active       bool      `json:"active"`
	Roles        []OrgRole `json:"roles"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Profile is the optional staff extension of an identity. Its domain
// attributes are carried through untouched; only the role set matters here.
type Profile struct {
	Username       string    `json:"username"`
	LawRoles       []LawRole `json:"law_roles"`
	BarNumber      string    `json:"bar_number,omitempty"`
	Specialization string    `json:"specialization,omitempty"`
	ExperienceYrs  int       `json:"experience_years,omitempty"`
}

// StatusUpdate mutates the account flags an administrator controls. Nil fields
// are left untouched.
type StatusUpdate struct {
	Enabled *bool
	Active  *bool
}
