package auth

import (
	"context"
	"fmt"

	"aslaw.org/internal/obs"
)

// Operation classifies an endpoint for the static allow-list table.
type Operation string

const (
	OpCaseList       Operation = "case.list"
	OpCaseListOwn    Operation = "case.list_own"
	OpCaseRead       Operation = "case.read"
	OpCaseDelete     Operation = "case.delete"
	OpDocumentRead   Operation = "document.read"
	OpDocumentDelete Operation = "document.delete"
	OpUserManage     Operation = "user.manage"
	OpProfileRead    Operation = "profile.read"
)

// Staff authorities bypass resource-ownership checks entirely.
var staffAuthorities = []string{
	OrgAdmin.Authority(),
	LawLawyer.Authority(),
	LawClerk.Authority(),
}

// endpointPolicy maps each operation class to its allow-list. An empty list
// means any authenticated caller passes the endpoint-class layer.
var endpointPolicy = map[Operation][]string{
	OpCaseList:       staffAuthorities,
	OpCaseListOwn:    {OrgUser.Authority()},
	OpCaseRead:       {OrgAdmin.Authority(), LawLawyer.Authority(), LawClerk.Authority(), OrgUser.Authority()},
	OpCaseDelete:     {OrgAdmin.Authority()},
	OpDocumentRead:   {OrgAdmin.Authority(), LawLawyer.Authority(), LawClerk.Authority(), OrgUser.Authority()},
	OpDocumentDelete: {OrgAdmin.Authority()},
	OpUserManage:     {OrgAdmin.Authority()},
	OpProfileRead:    {},
}

// OwnerLookup resolves a resource to the username of its owning client. The
// document owner is derived transitively through the document's case. Supplied
// by the CRUD layer; the core treats resources as opaque (id -> owner) pairs.
type OwnerLookup interface {
	CaseOwner(ctx context.Context, caseID string) (string, error)
	DocumentOwner(ctx context.Context, documentID string) (string, error)
}

// Authorizer is the single authorization entry point consumed by the HTTP
// layer. Two layers must pass: the endpoint-class allow-list, then (for
// client-tier callers on case/document operations) resource ownership.
type Authorizer struct {
	owners OwnerLookup
}

// NewAuthorizer constructs an Authorizer over the given owner lookup.
func NewAuthorizer(owners OwnerLookup) *Authorizer {
	return &Authorizer{owners: owners}
}

// Authorize decides whether principal may perform op, optionally against the
// resource identified by resourceID (empty for collection-level operations).
// Returns nil, ErrUnauthenticated, ErrForbidden or ErrNotFound. A missing
// resource is reported before ownership is evaluated, so existence and
// permission failures stay consistently distinguishable.
func (a *Authorizer) Authorize(ctx context.Context, p Principal, op Operation, resourceID string) error {
	if !p.Authenticated() {
		return ErrUnauthenticated
	}

	allowed, known := endpointPolicy[op]
	if !known {
		obs.CountAuthzDenial(string(op))
		return fmt.Errorf("%w: unknown operation %s", ErrForbidden, op)
	}
	if len(allowed) > 0 && !p.HasAnyAuthority(allowed...) {
		obs.CountAuthzDenial(string(op))
		return ErrForbidden
	}

	if resourceID == "" || p.HasAnyAuthority(staffAuthorities...) {
		return nil
	}

	owner, err := a.ownerOf(ctx, op, resourceID)
	if err != nil {
		return err
	}
	if owner != p.Username {
		obs.CountAuthzDenial(string(op))
		return ErrForbidden
	}
	return nil
}

func (a *Authorizer) ownerOf(ctx context.Context, op Operation, resourceID string) (string, error) {
	if a.owners == nil {
		return "", fmt.Errorf("%w: no owner lookup configured", ErrForbidden)
	}
	switch op {
	case OpCaseRead, OpCaseDelete:
		return a.owners.CaseOwner(ctx, resourceID)
	case OpDocumentRead, OpDocumentDelete:
		return a.owners.DocumentOwner(ctx, resourceID)
	default:
		// Non-resource operations never reach here with a resource id.
		return "", fmt.Errorf("%w: operation %s is not resource-scoped", ErrForbidden, op)
	}
}
