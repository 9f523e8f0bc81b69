package model

import (
	"time"
)

type User struct {
	ID           string    `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash *string   `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}

func (u *User) Validate() error {
	if u.ID == "" {
		return ErrMissingID
	}
	return nil
}

// Admin marks a user as allowed into the admin area.
type Admin struct {
	UserID    string    `db:"user_id"`
	CreatedAt time.Time `db:"created_at"`
}
