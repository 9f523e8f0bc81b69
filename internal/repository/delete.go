package repository

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"
)

// deleteByID removes one row permanently. table is a package constant,
// never caller input.
func deleteByID(ctx context.Context, db *sqlx.DB, table, id string) error {
	res, err := db.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = $1`, id)
	if err != nil {
		return storeErr("delete", table, err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return storeErr("delete", table, err)
	}
	if rows == 0 {
		return storeErr("delete", table, ErrNotFound)
	}
	return nil
}

func joinSets(sets []string) string {
	return strings.Join(sets, ", ")
}
