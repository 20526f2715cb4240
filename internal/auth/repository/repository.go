package repository

import (
	"context"
	"embed"
	"errors"

	"github.com/perplexiplay/backend/internal/auth/domain"
)

//go:embed migrations
var migrationsFS embed.FS

var (
	ErrUserNotFound          = errors.New("user not found")
	ErrUsernameAlreadyExists = errors.New("username already exists")
)

// UserRepository persists users. Insert assigns the id and creation time and
// must reject a taken username atomically, even under concurrent inserts.
type UserRepository interface {
	FindByUsername(ctx context.Context, username string) (domain.User, error)
	Insert(ctx context.Context, username, passwordHash string) (domain.User, error)
}
