// Package docket holds the case/document records the authorization core
// consults for ownership. The rest of the CRUD surface lives with the calling
// layer; the core only ever asks who owns a resource.
package docket

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("docket: not found")

// Case is a legal matter owned by a client and worked by assigned staff.
type Case struct {
	ID             string    `json:"id"`
	CaseNumber     string    `json:"case_number"`
	Title          string    `json:"title"`
	Description    string    `json:"description,omitempty"`
	Status         string    `json:"status"`
	Type           string    `json:"type"`
	FilingDate     time.Time `json:"filing_date"`
	ClientUsername string    `json:"client_username"`
	AssignedTo     string    `json:"assigned_to,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Document is a file attached to a case. Ownership is derived through the
// case's client; the blob itself lives in an opaque store elsewhere.
type Document struct {
	ID          string    `json:"id"`
	CaseID      string    `json:"case_id"`
	Title       string    `json:"title"`
	FileName    string    `json:"file_name"`
	ContentType string    `json:"content_type,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Store is the persistence surface the HTTP layer and the authorization core
// share. CaseOwner and DocumentOwner satisfy auth.OwnerLookup.
type Store interface {
	ListCases(ctx context.Context) ([]Case, error)
	ListCasesByClient(ctx context.Context, clientUsername string) ([]Case, error)
	FindCase(ctx context.Context, id string) (*Case, error)
	DeleteCase(ctx context.Context, id string) error

	FindDocument(ctx context.Context, id string) (*Document, error)
	DeleteDocument(ctx context.Context, id string) error

	CaseOwner(ctx context.Context, caseID string) (string, error)
	DocumentOwner(ctx context.Context, documentID string) (string, error)
}
