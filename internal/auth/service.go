package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"aslaw.org/internal/obs"
)

// Service ties the identity store, principal builder and token service
// together: credentials in, signed token out, and the admin mutations that
// feed them.
type Service struct {
	store  IdentityStore
	tokens *TokenService
	now    func() time.Time
}

// ServiceOption configures Service.
type ServiceOption func(*Service)

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) ServiceOption {
	return func(s *Service) {
		if fn != nil {
			s.now = fn
		}
	}
}

// NewService constructs the login service.
func NewService(store IdentityStore, tokens *TokenService, opts ...ServiceOption) (*Service, error) {
	if store == nil {
		return nil, errors.New("auth: identity store is required")
	}
	if tokens == nil {
		return nil, errors.New("auth: token service is required")
	}
	s := &Service{store: store, tokens: tokens, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// LoginResult is returned to a successfully authenticated caller.
type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Role      string    `json:"role"`
}

// Login authenticates credentials and issues a session token. Typed failures
// (ErrInvalidCredentials, ErrAccountDisabled, ErrAccountInactive) are for
// server-side diagnostics only; the HTTP boundary collapses them into one
// generic outcome so usernames cannot be enumerated.
func (s *Service) Login(ctx context.Context, username, password string) (LoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		obs.CountLogin("bad_credentials")
		return LoginResult{}, ErrInvalidCredentials
	}

	identity, err := s.store.FindIdentity(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			obs.CountLogin("bad_credentials")
			return LoginResult{}, ErrInvalidCredentials
		}
		obs.CountLogin("error")
		return LoginResult{}, fmt.Errorf("load identity: %w", err)
	}
	if err := VerifyPassword(identity.PasswordHash, password); err != nil {
		obs.CountLogin("bad_credentials")
		return LoginResult{}, ErrInvalidCredentials
	}

	principal, err := s.resolve(ctx, identity)
	if err != nil {
		switch {
		case errors.Is(err, ErrAccountDisabled):
			obs.CountLogin("disabled")
		case errors.Is(err, ErrAccountInactive):
			obs.CountLogin("inactive")
		default:
			obs.CountLogin("error")
		}
		return LoginResult{}, err
	}

	token, expiresAt, err := s.tokens.Issue(principal)
	if err != nil {
		obs.CountLogin("error")
		return LoginResult{}, fmt.Errorf("issue token: %w", err)
	}
	obs.CountLogin("success")
	return LoginResult{Token: token, ExpiresAt: expiresAt, Role: principal.PrimaryRole}, nil
}

// Authenticate validates a bearer token and reconstructs the principal. By
// design this never re-queries the identity store: a still-valid token keeps
// its authority set until expiry even if the account changed underneath.
func (s *Service) Authenticate(ctx context.Context, token string) (Principal, error) {
	principal, err := s.tokens.Validate(token)
	if err != nil {
		switch {
		case errors.Is(err, ErrTokenExpired):
			obs.CountTokenValidation("expired")
		case errors.Is(err, ErrTokenSignature):
			obs.CountTokenValidation("bad_signature")
		default:
			obs.CountTokenValidation("malformed")
		}
		return Principal{}, err
	}
	obs.CountTokenValidation("ok")
	return principal, nil
}

// Principal loads an account fresh from the store and builds its merged
// identity. Used by admin surfaces that need live state rather than claims.
func (s *Service) Principal(ctx context.Context, username string) (Principal, error) {
	identity, err := s.store.FindIdentity(ctx, username)
	if err != nil {
		return Principal{}, err
	}
	return s.resolve(ctx, identity)
}

// SetUserStatus enables/disables or suspends/restores an account.
func (s *Service) SetUserStatus(ctx context.Context, username string, upd StatusUpdate) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return fmt.Errorf("%w: username is required", ErrInvalidInput)
	}
	if upd.Enabled == nil && upd.Active == nil {
		return fmt.Errorf("%w: nothing to update", ErrInvalidInput)
	}
	return s.store.UpdateStatus(ctx, username, upd)
}

// AssignLawRole attaches a professional role to an account. The role's
// organizational prerequisite is enforced here, at assignment time; it is not
// re-validated on later requests.
func (s *Service) AssignLawRole(ctx context.Context, username string, role LawRole) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return fmt.Errorf("%w: username is required", ErrInvalidInput)
	}
	identity, err := s.store.FindIdentity(ctx, username)
	if err != nil {
		return err
	}
	required := RequiredBaseRole(role)
	var hasBase bool
	for _, r := range identity.Roles {
		if r == required {
			hasBase = true
			break
		}
	}
	if !hasBase {
		return fmt.Errorf("%w: %s requires %s", ErrRolePrerequisite, role, required)
	}
	return s.store.AssignLawRole(ctx, username, role)
}

// ChangePassword hashes and stores a new password for the account.
func (s *Service) ChangePassword(ctx context.Context, username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" || strings.TrimSpace(password) == "" {
		return fmt.Errorf("%w: username and password are required", ErrInvalidInput)
	}
	hash, err := HashPassword(password)
	if err != nil {
		return err
	}
	return s.store.UpdatePassword(ctx, username, hash)
}

func (s *Service) resolve(ctx context.Context, identity *Identity) (Principal, error) {
	profile, err := s.store.FindProfile(ctx, identity.Username)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return Principal{}, fmt.Errorf("load profile: %w", err)
	}
	return BuildPrincipal(identity, profile)
}
