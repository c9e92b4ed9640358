package auth

import "strings"

// Principal is the resolved, request-scoped identity used for authorization
// decisions. It is never persisted; it is built once at login and rebuilt from
// token claims on every subsequent request.
type Principal struct {
	Username    string   `json:"username"`
	Authorities []string `json:"authorities"`
	PrimaryRole string   `json:"primary_role"`
}

// BuildPrincipal merges an account's organizational roles with its optional
// professional profile into one authority set. Pure merge over already-loaded
// data; no I/O.
func BuildPrincipal(identity *Identity, profile *Profile) (Principal, error) {
	if identity == nil {
		return Principal{}, ErrInvalidInput
	}
	if !identity.Enabled {
		return Principal{}, ErrAccountDisabled
	}
	if !identity.Active {
		return Principal{}, ErrAccountInactive
	}

	var authorities []string
	seen := make(map[string]struct{})
	add := func(tag string) {
		if _, ok := seen[tag]; ok {
			return
		}
		seen[tag] = struct{}{}
		authorities = append(authorities, tag)
	}
	for _, r := range identity.Roles {
		add(r.Authority())
	}
	if profile != nil {
		for _, r := range profile.LawRoles {
			add(r.Authority())
		}
	}

	return Principal{
		Username:    identity.Username,
		Authorities: authorities,
		PrimaryRole: primaryRole(authorities),
	}, nil
}

// PrincipalFromClaims rebuilds a principal from a validated token's subject and
// authority tags. The primary role is re-derived with the same precedence used
// at build time, so both paths agree.
func PrincipalFromClaims(subject string, authorities []string) Principal {
	deduped := dedupeAuthorities(authorities)
	return Principal{
		Username:    subject,
		Authorities: deduped,
		PrimaryRole: primaryRole(deduped),
	}
}

// HasAuthority reports whether the principal carries the exact tag.
func (p Principal) HasAuthority(tag string) bool {
	for _, a := range p.Authorities {
		if a == tag {
			return true
		}
	}
	return false
}

// HasAnyAuthority reports whether the principal carries at least one of tags.
func (p Principal) HasAnyAuthority(tags ...string) bool {
	for _, tag := range tags {
		if p.HasAuthority(tag) {
			return true
		}
	}
	return false
}

// Authenticated reports whether the principal represents a real subject rather
// than the anonymous zero value.
func (p Principal) Authenticated() bool {
	return p.Username != ""
}

// primaryRole picks the single display role for an authority set: the highest
// professional role by precedence, else the highest organizational role, else
// the literal USER.
func primaryRole(authorities []string) string {
	has := make(map[string]struct{}, len(authorities))
	for _, a := range authorities {
		has[a] = struct{}{}
	}
	for _, r := range lawRolePrecedence {
		if _, ok := has[r.Authority()]; ok {
			return string(r)
		}
	}
	for _, r := range orgRolePrecedence {
		if _, ok := has[r.Authority()]; ok {
			return string(r)
		}
	}
	return string(OrgUser)
}

func dedupeAuthorities(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(tags))
	var out []string
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}
