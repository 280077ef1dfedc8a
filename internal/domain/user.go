package domain

import "time"

type User struct {
	ID           int64     `db:"id" json:"id"`
	Email        *string   `db:"email" json:"email,omitempty"`
	Username     string    `db:"username" json:"username"`
	PasswordHash string    `db:"password_hash" json:"-"`
	TgID         *int64    `db:"tg_id" json:"tgId,omitempty"`
	FirstName    string    `db:"first_name" json:"firstName,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}

// AuthResult is returned by every login-like flow.
type AuthResult struct {
	User         *User  `json:"user"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}
