package model

import (
	"time"
)

type GalleryImage struct {
	ID          string    `db:"id" json:"id"`
	ImageURL    string    `db:"image_url" json:"image_url"`
	StoragePath *string   `db:"storage_path" json:"-"` // Object key, nil for images added by URL
	IsFeatured  bool      `db:"is_featured" json:"is_featured"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

func (g GalleryImage) Key() string {
	return g.ID
}

func (g GalleryImage) Created() time.Time {
	return g.CreatedAt
}

func (g *GalleryImage) Validate() error {
	if g.ID == "" {
		return ErrMissingID
	}
	if g.ImageURL == "" {
		return ErrMissingURL
	}
	if g.CreatedAt.IsZero() {
		return ErrMissingCreatedAt
	}
	return nil
}
