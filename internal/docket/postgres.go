package docket

import (
	"context"
	"database/sql"
	"errors"
)

var _ Store = (*PGStore)(nil)

// PGStore implements Store using PostgreSQL.
type PGStore struct {
	db *sql.DB
}

// NewPGStore wraps an open database handle.
func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{db: db}
}

const caseColumns = `c.id, c.case_number, c.title, c.description, c.status, c.type,
	c.filing_date, coalesce(cu.username, ''), coalesce(au.username, ''), c.created_at, c.updated_at`

const caseFrom = ` from cases c
	left join users cu on cu.id = c.client_id
	left join users au on au.id = c.assigned_user_id`

func scanCase(scanner interface{ Scan(dest ...any) error }) (Case, error) {
	var c Case
	err := scanner.Scan(
		&c.ID, &c.CaseNumber, &c.Title, &c.Description, &c.Status, &c.Type,
		&c.FilingDate, &c.ClientUsername, &c.AssignedTo, &c.CreatedAt, &c.UpdatedAt,
	)
	return c, err
}

func (s *PGStore) ListCases(ctx context.Context) ([]Case, error) {
	rows, err := s.db.QueryContext(ctx,
		`select `+caseColumns+caseFrom+` order by c.created_at desc`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectCases(rows)
}

func (s *PGStore) ListCasesByClient(ctx context.Context, clientUsername string) ([]Case, error) {
	rows, err := s.db.QueryContext(ctx,
		`select `+caseColumns+caseFrom+` where cu.username=$1 order by c.created_at desc`,
		clientUsername)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectCases(rows)
}

func collectCases(rows *sql.Rows) ([]Case, error) {
	var cases []Case
	for rows.Next() {
		c, err := scanCase(rows)
		if err != nil {
			return nil, err
		}
		cases = append(cases, c)
	}
	return cases, rows.Err()
}

func (s *PGStore) FindCase(ctx context.Context, id string) (*Case, error) {
	row := s.db.QueryRowContext(ctx,
		`select `+caseColumns+caseFrom+` where c.id=$1`, id)
	c, err := scanCase(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (s *PGStore) DeleteCase(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `delete from cases where id=$1`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *PGStore) FindDocument(ctx context.Context, id string) (*Document, error) {
	row := s.db.QueryRowContext(ctx,
		`select id, case_id, title, file_name, content_type, created_at
		 from documents where id=$1`, id)
	var d Document
	if err := row.Scan(&d.ID, &d.CaseID, &d.Title, &d.FileName, &d.ContentType, &d.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

func (s *PGStore) DeleteDocument(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `delete from documents where id=$1`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// CaseOwner resolves a case to the username of its owning client.
func (s *PGStore) CaseOwner(ctx context.Context, caseID string) (string, error) {
	row := s.db.QueryRowContext(ctx,
		`select coalesce(u.username, '') from cases c
		 left join users u on u.id = c.client_id
		 where c.id=$1`, caseID)
	var owner string
	if err := row.Scan(&owner); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	return owner, nil
}

// DocumentOwner resolves a document to its owner through the document's case.
func (s *PGStore) DocumentOwner(ctx context.Context, documentID string) (string, error) {
	row := s.db.QueryRowContext(ctx,
		`select coalesce(u.username, '') from documents d
		 join cases c on c.id = d.case_id
		 left join users u on u.id = c.client_id
		 where d.id=$1`, documentID)
	var owner string
	if err := row.Scan(&owner); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	return owner, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
