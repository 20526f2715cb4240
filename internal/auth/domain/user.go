package domain

import "time"

type UserID string

// User is a registered principal. PasswordHash never leaves the service
// boundary; use Public for anything written to a client.
type User struct {
	ID           UserID
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

type PublicUser struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

func (u User) Public() PublicUser {
	return PublicUser{
		ID:        string(u.ID),
		Username:  u.Username,
		CreatedAt: u.CreatedAt,
	}
}

type AccessToken struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}
