package credentials

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/jsabonet/milagre-car-site/internal/auth"
	"github.com/jsabonet/milagre-car-site/internal/db"
)

// PGSource reads principals from Postgres.
type PGSource struct {
	db *db.DB
}

func NewPGSource(db *db.DB) *PGSource {
	return &PGSource{db: db}
}

func (s *PGSource) GetByUsername(
	ctx context.Context,
	username string,
) (*auth.Principal, error) {

	var p auth.Principal

	err := s.db.QueryRowContext(ctx, `
		SELECT id, username, email, first_name, last_name,
		       password_hash, is_active, is_staff, is_superuser, created_at
		FROM principals
		WHERE LOWER(username) = LOWER($1)
	`, username).Scan(
		&p.ID,
		&p.Username,
		&p.Email,
		&p.FirstName,
		&p.LastName,
		&p.PasswordHash,
		&p.IsActive,
		&p.IsStaff,
		&p.IsSuperuser,
		&p.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &p, nil
}

// GetByID loads a principal by primary key. Used by the token lifecycle
// manager to rebind a stored token to its owner.
func (s *PGSource) GetByID(
	ctx context.Context,
	id string,
) (*auth.Principal, error) {

	// Principal IDs are UUIDs; anything else cannot match a row and
	// would only make Postgres raise a cast error.
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}

	var p auth.Principal

	err := s.db.QueryRowContext(ctx, `
		SELECT id, username, email, first_name, last_name,
		       password_hash, is_active, is_staff, is_superuser, created_at
		FROM principals
		WHERE id = $1
	`, id).Scan(
		&p.ID,
		&p.Username,
		&p.Email,
		&p.FirstName,
		&p.LastName,
		&p.PasswordHash,
		&p.IsActive,
		&p.IsStaff,
		&p.IsSuperuser,
		&p.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &p, nil
}
