package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// UserDirectory implements usecase.UserDirectory against the users
// table. Settlement never writes this table; the marketplace identity
// service owns it.
type UserDirectory struct {
	pool *pgxpool.Pool
}

// NewUserDirectory creates a new UserDirectory.
func NewUserDirectory(pool *pgxpool.Pool) *UserDirectory {
	return &UserDirectory{pool: pool}
}

// Exists reports whether an active user with the given id exists.
func (d *UserDirectory) Exists(ctx context.Context, userID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1 AND active)`

	var exists bool
	if err := d.pool.QueryRow(ctx, query, userID).Scan(&exists); err != nil {
		return false, err
	}

	return exists, nil
}
