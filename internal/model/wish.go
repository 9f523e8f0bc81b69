package model

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrMissingID        = errors.New("record has no id")
	ErrMissingName      = errors.New("wish has no name")
	ErrMissingURL       = errors.New("gallery image has no url")
	ErrFeaturedPending  = errors.New("featured wish is not approved")
	ErrMissingCreatedAt = errors.New("record has no created_at")
)

type Wish struct {
	ID         string    `db:"id" json:"id"`
	Name       string    `db:"name" json:"name"`
	Message    string    `db:"message" json:"message"`
	VideoURL   *string   `db:"video_url" json:"video_url,omitempty"`
	IsApproved bool      `db:"is_approved" json:"is_approved"`
	IsFeatured bool      `db:"is_featured" json:"is_featured"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// Key implements listview.Keyed.
func (w Wish) Key() string {
	return w.ID
}

func (w Wish) Created() time.Time {
	return w.CreatedAt
}

func (w Wish) HasVideo() bool {
	return w.VideoURL != nil && *w.VideoURL != ""
}

// Validate rejects rows that must never reach callers.
func (w *Wish) Validate() error {
	if w.ID == "" {
		return ErrMissingID
	}
	if strings.TrimSpace(w.Name) == "" {
		return ErrMissingName
	}
	if w.IsFeatured && !w.IsApproved {
		return ErrFeaturedPending
	}
	if w.CreatedAt.IsZero() {
		return ErrMissingCreatedAt
	}
	return nil
}
