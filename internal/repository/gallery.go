package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/templui/vows/internal/model"
)

const galleryImages = "gallery_images"

var galleryColumns = map[string]bool{
	"id":          true,
	"is_featured": true,
}

type GalleryPatch struct {
	IsFeatured *bool
}

type GalleryRepository interface {
	List(ctx context.Context, q Query) ([]*model.GalleryImage, error)
	Count(ctx context.Context, filters ...Filter) (int, error)
	Create(ctx context.Context, image *model.GalleryImage) error
	ByID(ctx context.Context, id string) (*model.GalleryImage, error)
	Update(ctx context.Context, id string, patch GalleryPatch) (*model.GalleryImage, error)
	Delete(ctx context.Context, id string) error
}

type galleryRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewGalleryRepository(db *sqlx.DB) GalleryRepository {
	return &galleryRepository{db: db, now: time.Now}
}

func (r *galleryRepository) List(ctx context.Context, q Query) ([]*model.GalleryImage, error) {
	b := &sqlBuilder{}
	b.write(`SELECT id, image_url, storage_path, is_featured, created_at FROM gallery_images`)
	err := b.where(q.Filters, galleryColumns)
	if err != nil {
		return nil, storeErr("list", galleryImages, err)
	}
	err = b.page(q)
	if err != nil {
		return nil, storeErr("list", galleryImages, err)
	}

	var rows []*model.GalleryImage
	err = r.db.SelectContext(ctx, &rows, b.String(), b.args...)
	if err != nil {
		return nil, storeErr("list", galleryImages, err)
	}

	for _, img := range rows {
		err = img.Validate()
		if err != nil {
			return nil, storeErr("list", galleryImages, fmt.Errorf("row %q: %w", img.ID, err))
		}
	}

	return rows, nil
}

func (r *galleryRepository) Count(ctx context.Context, filters ...Filter) (int, error) {
	b := &sqlBuilder{}
	b.write(`SELECT COUNT(*) FROM gallery_images`)
	err := b.where(filters, galleryColumns)
	if err != nil {
		return 0, storeErr("count", galleryImages, err)
	}

	var n int
	err = r.db.GetContext(ctx, &n, b.String(), b.args...)
	return n, storeErr("count", galleryImages, err)
}

func (r *galleryRepository) Create(ctx context.Context, image *model.GalleryImage) error {
	image.ID = uuid.New().String()
	image.CreatedAt = r.now().UTC().Truncate(time.Microsecond)

	query := `INSERT INTO gallery_images (id, image_url, storage_path, is_featured, created_at)
	          VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.ExecContext(ctx, query,
		image.ID,
		image.ImageURL,
		image.StoragePath,
		image.IsFeatured,
		image.CreatedAt,
	)
	return storeErr("create", galleryImages, err)
}

func (r *galleryRepository) ByID(ctx context.Context, id string) (*model.GalleryImage, error) {
	image := &model.GalleryImage{}
	query := `SELECT id, image_url, storage_path, is_featured, created_at FROM gallery_images WHERE id = $1`

	err := r.db.GetContext(ctx, image, query, id)
	if err != nil {
		return nil, storeErr("get", galleryImages, err)
	}

	err = image.Validate()
	if err != nil {
		return nil, storeErr("get", galleryImages, fmt.Errorf("row %q: %w", id, err))
	}
	return image, nil
}

func (r *galleryRepository) Update(ctx context.Context, id string, patch GalleryPatch) (*model.GalleryImage, error) {
	if patch.IsFeatured == nil {
		return r.ByID(ctx, id)
	}

	query := `UPDATE gallery_images SET is_featured = $1 WHERE id = $2`
	res, err := r.db.ExecContext(ctx, query, *patch.IsFeatured, id)
	if err != nil {
		return nil, storeErr("update", galleryImages, err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return nil, storeErr("update", galleryImages, err)
	}
	if rows == 0 {
		return nil, storeErr("update", galleryImages, ErrNotFound)
	}

	return r.ByID(ctx, id)
}

func (r *galleryRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.db, galleryImages, id)
}
