package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

var _ IdentityStore = (*PGStore)(nil)

// PGStore implements IdentityStore using PostgreSQL.
type PGStore struct {
	db *sql.DB
}

// NewPGStore wraps an open database handle.
func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{db: db}
}

func (s *PGStore) FindIdentity(ctx context.Context, username string) (*Identity, error) {
	row := s.db.QueryRowContext(ctx,
		`select id, username, email, password_hash, enabled, active, created_at, updated_at
		 from users where username=$1`, username)
	var identity Identity
	if err := row.Scan(
		&identity.ID, &identity.Username, &identity.Email, &identity.PasswordHash,
		&identity.Enabled, &identity.Active, &identity.CreatedAt, &identity.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`select role from user_roles where user_id=$1 order by role`, identity.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		role, ok := ParseOrgRole(raw)
		if !ok {
			return nil, fmt.Errorf("%w: unknown organizational role %q", ErrInvalidInput, raw)
		}
		identity.Roles = append(identity.Roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &identity, nil
}

func (s *PGStore) FindProfile(ctx context.Context, username string) (*Profile, error) {
	row := s.db.QueryRowContext(ctx,
		`select u.username, p.bar_number, p.specialization, p.experience_years
		 from law_profiles p join users u on u.id = p.user_id
		 where u.username=$1`, username)
	var profile Profile
	if err := row.Scan(
		&profile.Username, &profile.BarNumber, &profile.Specialization, &profile.ExperienceYrs,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`select r.role from law_profile_roles r
		 join users u on u.id = r.user_id
		 where u.username=$1 order by r.role`, username)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		role, ok := ParseLawRole(raw)
		if !ok {
			return nil, fmt.Errorf("%w: unknown professional role %q", ErrInvalidInput, raw)
		}
		profile.LawRoles = append(profile.LawRoles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (s *PGStore) UpdateStatus(ctx context.Context, username string, upd StatusUpdate) error {
	res, err := s.db.ExecContext(ctx,
		`update users
		 set enabled = coalesce($2, enabled),
		     active  = coalesce($3, active),
		     updated_at = now()
		 where username=$1`,
		username, upd.Enabled, upd.Active)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *PGStore) AssignLawRole(ctx context.Context, username string, role LawRole) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var userID string
	if err := tx.QueryRowContext(ctx,
		`select id from users where username=$1`, username).Scan(&userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`insert into law_profiles(user_id) values($1) on conflict (user_id) do nothing`,
		userID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`insert into law_profile_roles(user_id, role) values($1,$2) on conflict do nothing`,
		userID, string(role)); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *PGStore) UpdatePassword(ctx context.Context, username, passwordHash string) error {
	res, err := s.db.ExecContext(ctx,
		`update users set password_hash=$2, updated_at=now() where username=$1`,
		username, passwordHash)
	if err != nil {
		return err
	}
	return requireRow(res)
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
