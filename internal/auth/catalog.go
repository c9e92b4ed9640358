package auth

import "strings"

// OrgRole is the coarse administrative tier every account carries.
type OrgRole string

const (
	OrgManager  OrgRole = "MANAGER"
	OrgEmployee OrgRole = "EMPLOYEE"
	OrgAdmin    OrgRole = "ADMIN"
	OrgUser     OrgRole = "USER"
)

// LawRole is a law-office job title layered on top of an organizational role.
// Staff accounts carry one or more of these through their professional profile;
// plain clients carry none.
type LawRole string

const (
	LawLawyer         LawRole = "LAWYER"
	LawPartner        LawRole = "PARTNER"
	LawClerk          LawRole = "CLERK"
	LawParalegal      LawRole = "PARALEGAL"
	LawIntern         LawRole = "INTERN"
	LawLegalAssistant LawRole = "LEGAL_ASSISTANT"
)

// baseRoleFor maps each professional role to the organizational role it
// presumes. The invariant is enforced at assignment time only; runtime checks
// trust the stored state.
var baseRoleFor = map[LawRole]OrgRole{
	LawLawyer:         OrgManager,
	LawPartner:        OrgManager,
	LawClerk:          OrgEmployee,
	LawParalegal:      OrgEmployee,
	LawIntern:         OrgEmployee,
	LawLegalAssistant: OrgEmployee,
}

// RequiredBaseRole returns the organizational role a professional role requires.
// Total over the closed enum; unknown values fall back to EMPLOYEE.
func RequiredBaseRole(r LawRole) OrgRole {
	if base, ok := baseRoleFor[r]; ok {
		return base
	}
	return OrgEmployee
}

// Precedence lists used when a single display role must be derived from a set.
// The underlying sets are unordered, so the pick is made explicit here instead
// of leaning on iteration order.
var (
	lawRolePrecedence = []LawRole{
		LawPartner, LawLawyer, LawParalegal, LawClerk, LawIntern, LawLegalAssistant,
	}
	orgRolePrecedence = []OrgRole{
		OrgAdmin, OrgManager, OrgEmployee, OrgUser,
	}
)

const authorityPrefix = "ROLE_"

// Authority returns the tag granted by an organizational role, e.g. ROLE_ADMIN.
func (r OrgRole) Authority() string { return authorityPrefix + string(r) }

// Authority returns the tag granted by a professional role, e.g. ROLE_LAWYER.
func (r LawRole) Authority() string { return authorityPrefix + string(r) }

// ParseOrgRole normalizes and validates an organizational role name.
func ParseOrgRole(s string) (OrgRole, bool) {
	switch OrgRole(strings.ToUpper(strings.TrimSpace(s))) {
	case OrgManager:
		return OrgManager, true
	case OrgEmployee:
		return OrgEmployee, true
	case OrgAdmin:
		return OrgAdmin, true
	case OrgUser:
		return OrgUser, true
	}
	return "", false
}

// ParseLawRole normalizes and validates a professional role name.
func ParseLawRole(s string) (LawRole, bool) {
	role := LawRole(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := baseRoleFor[role]; ok {
		return role, true
	}
	return "", false
}
