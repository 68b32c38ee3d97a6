package rbac

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides PostgreSQL backed persistence for role assignments.
// Removal writes an empty role instead of deleting the row, so assignment
// history survives.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// FindAssignment returns the subject's current role. A missing row or an
// empty role both report no assignment.
func (r *Repository) FindAssignment(ctx context.Context, email string) (Role, bool, error) {
	var role string
	err := r.pool.QueryRow(ctx,
		`SELECT role FROM user_roles WHERE email = $1`, email,
	).Scan(&role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return RoleNone, false, nil
		}
		return RoleNone, false, fmt.Errorf("rbac: find assignment: %w", err)
	}
	if role == "" {
		return RoleNone, false, nil
	}
	return Role(role), true, nil
}

// UpsertAssignment replaces the subject's role.
func (r *Repository) UpsertAssignment(ctx context.Context, email string, role Role) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO user_roles (email, role, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (email) DO UPDATE SET role = EXCLUDED.role, updated_at = NOW()`,
		email, string(role),
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23514" {
			// user_roles_role_check rejects values outside the enumeration.
			return fmt.Errorf("%w: %q", ErrInvalidRole, role)
		}
		return fmt.Errorf("rbac: upsert assignment: %w", err)
	}
	return nil
}

// ClearAssignment moves the subject to the no-role state, keeping the row.
func (r *Repository) ClearAssignment(ctx context.Context, email string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO user_roles (email, role, updated_at)
		VALUES ($1, '', NOW())
		ON CONFLICT (email) DO UPDATE SET role = '', updated_at = NOW()`,
		email,
	)
	if err != nil {
		return fmt.Errorf("rbac: clear assignment: %w", err)
	}
	return nil
}

// ListAssignments returns active assignments ordered by subject email.
func (r *Repository) ListAssignments(ctx context.Context) ([]Assignment, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT email, role, updated_at FROM user_roles WHERE role <> '' ORDER BY email`,
	)
	if err != nil {
		return nil, fmt.Errorf("rbac: list assignments: %w", err)
	}
	defer rows.Close()

	var assignments []Assignment
	for rows.Next() {
		var a Assignment
		var role string
		if err := rows.Scan(&a.Email, &role, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("rbac: scan assignment: %w", err)
		}
		a.Role = Role(role)
		assignments = append(assignments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rbac: list assignments: %w", err)
	}
	return assignments, nil
}
