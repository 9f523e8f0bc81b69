package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
)

const admins = "admins"

// AdminRepository is the allow-list of users who may moderate.
type AdminRepository interface {
	Add(ctx context.Context, userID string) error
	IsAdmin(ctx context.Context, userID string) (bool, error)
}

type adminRepository struct {
	db *sqlx.DB
}

func NewAdminRepository(db *sqlx.DB) AdminRepository {
	return &adminRepository{db: db}
}

// Add is idempotent.
func (r *adminRepository) Add(ctx context.Context, userID string) error {
	query := `INSERT INTO admins (user_id, created_at) VALUES ($1, $2) ON CONFLICT (user_id) DO NOTHING`

	_, err := r.db.ExecContext(ctx, query, userID, time.Now().UTC())
	return storeErr("create", admins, err)
}

func (r *adminRepository) IsAdmin(ctx context.Context, userID string) (bool, error) {
	var n int
	query := `SELECT COUNT(*) FROM admins WHERE user_id = $1`

	err := r.db.GetContext(ctx, &n, query, userID)
	if err != nil {
		return false, storeErr("get", admins, err)
	}
	return n > 0, nil
}
