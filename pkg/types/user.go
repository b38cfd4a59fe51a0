package types

import "time"

type User struct {
	ID       int64   `db:"user_id" json:"user_id"`
	Username *string `db:"username" json:"username"`
	Email    string  `db:"email" json:"email"`
	PwHash   string  `db:"pw_hash" json:"-"`
	Type     string  `db:"type" json:"type"`
}

func (u *User) Role() (Role, error) {
	return ParseRole(u.Type)
}

type PasswordReset struct {
	UserID    int64     `db:"user_id"`
	Email     string    `db:"email"`
	TokenHash string    `db:"token_hash"`
	ExpiresAt time.Time `db:"expires_at"`
}
