package auth

import "context"

// IdentityStore describes the persistence operations the auth subsystem
// depends on. Lookups are keyed by unique username and reflect the latest
// committed state at call time.
type IdentityStore interface {
	// FindIdentity loads an account; ErrNotFound when no such username exists.
	FindIdentity(ctx context.Context, username string) (*Identity, error)
	// FindProfile loads the professional profile; ErrNotFound means the user
	// is a plain client, which is not an error condition for callers.
	FindProfile(ctx context.Context, username string) (*Profile, error)

	UpdateStatus(ctx context.Context, username string, upd StatusUpdate) error
	AssignLawRole(ctx context.Context, username string, role LawRole) error
	UpdatePassword(ctx context.Context, username, passwordHash string) error
}
