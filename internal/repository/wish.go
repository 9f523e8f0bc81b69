package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/templui/vows/internal/model"
)

const wishes = "wishes"

var wishColumns = map[string]bool{
	"id":          true,
	"name":        true,
	"is_approved": true,
	"is_featured": true,
}

// WishPatch lists the fields an update may change; nil fields keep their value.
type WishPatch struct {
	IsApproved *bool
	IsFeatured *bool
	VideoURL   *string
}

type WishRepository interface {
	List(ctx context.Context, q Query) ([]*model.Wish, error)
	Count(ctx context.Context, filters ...Filter) (int, error)
	Create(ctx context.Context, wish *model.Wish) error
	ByID(ctx context.Context, id string) (*model.Wish, error)
	Update(ctx context.Context, id string, patch WishPatch) (*model.Wish, error)
	Delete(ctx context.Context, id string) error
}

type wishRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewWishRepository(db *sqlx.DB) WishRepository {
	return &wishRepository{db: db, now: time.Now}
}

func (r *wishRepository) List(ctx context.Context, q Query) ([]*model.Wish, error) {
	b := &sqlBuilder{}
	b.write(`SELECT id, name, message, video_url, is_approved, is_featured, created_at FROM wishes`)
	err := b.where(q.Filters, wishColumns)
	if err != nil {
		return nil, storeErr("list", wishes, err)
	}
	err = b.page(q)
	if err != nil {
		return nil, storeErr("list", wishes, err)
	}

	var rows []*model.Wish
	err = r.db.SelectContext(ctx, &rows, b.String(), b.args...)
	if err != nil {
		return nil, storeErr("list", wishes, err)
	}

	for _, w := range rows {
		err = w.Validate()
		if err != nil {
			return nil, storeErr("list", wishes, fmt.Errorf("row %q: %w", w.ID, err))
		}
	}

	return rows, nil
}

func (r *wishRepository) Count(ctx context.Context, filters ...Filter) (int, error) {
	b := &sqlBuilder{}
	b.write(`SELECT COUNT(*) FROM wishes`)
	err := b.where(filters, wishColumns)
	if err != nil {
		return 0, storeErr("count", wishes, err)
	}

	var n int
	err = r.db.GetContext(ctx, &n, b.String(), b.args...)
	if err != nil {
		return 0, storeErr("count", wishes, err)
	}
	return n, nil
}

// Create assigns id and created_at; both are owned by the store.
func (r *wishRepository) Create(ctx context.Context, wish *model.Wish) error {
	wish.ID = uuid.New().String()
	wish.CreatedAt = r.now().UTC().Truncate(time.Microsecond)

	query := `INSERT INTO wishes (id, name, message, video_url, is_approved, is_featured, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.ExecContext(ctx, query,
		wish.ID,
		wish.Name,
		wish.Message,
		wish.VideoURL,
		wish.IsApproved,
		wish.IsFeatured,
		wish.CreatedAt,
	)
	return storeErr("create", wishes, err)
}

func (r *wishRepository) ByID(ctx context.Context, id string) (*model.Wish, error) {
	wish := &model.Wish{}
	query := `SELECT id, name, message, video_url, is_approved, is_featured, created_at FROM wishes WHERE id = $1`

	err := r.db.GetContext(ctx, wish, query, id)
	if err != nil {
		return nil, storeErr("get", wishes, err)
	}

	err = wish.Validate()
	if err != nil {
		return nil, storeErr("get", wishes, fmt.Errorf("row %q: %w", id, err))
	}
	return wish, nil
}

// Update writes all set fields in one statement, so both moderation flags
// change together.
func (r *wishRepository) Update(ctx context.Context, id string, patch WishPatch) (*model.Wish, error) {
	b := &sqlBuilder{}
	var sets []string
	if patch.IsApproved != nil {
		sets = append(sets, "is_approved = "+b.arg(*patch.IsApproved))
	}
	if patch.IsFeatured != nil {
		sets = append(sets, "is_featured = "+b.arg(*patch.IsFeatured))
	}
	if patch.VideoURL != nil {
		sets = append(sets, "video_url = "+b.arg(*patch.VideoURL))
	}
	if len(sets) == 0 {
		return r.ByID(ctx, id)
	}

	b.write("UPDATE wishes SET " + joinSets(sets) + " WHERE id = " + b.arg(id))
	res, err := r.db.ExecContext(ctx, b.String(), b.args...)
	if err != nil {
		return nil, storeErr("update", wishes, err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return nil, storeErr("update", wishes, err)
	}
	if rows == 0 {
		return nil, storeErr("update", wishes, ErrNotFound)
	}

	return r.ByID(ctx, id)
}

func (r *wishRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.db, wishes, id)
}
