package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/perplexiplay/backend/internal/auth/domain"
	"github.com/perplexiplay/backend/internal/common/clock"
	"github.com/perplexiplay/backend/internal/common/crypto"
	"github.com/perplexiplay/backend/internal/common/db"
)

const sqliteStoreLabel = "sqlite"

type SQLiteUserRepository struct {
	db    *sql.DB
	ids   crypto.IDGenerator
	clock clock.Clock
}

var _ UserRepository = (*SQLiteUserRepository)(nil)

func NewSQLiteUserRepository(sqlDB *sql.DB, ids crypto.IDGenerator, clk clock.Clock) *SQLiteUserRepository {
	return &SQLiteUserRepository{db: sqlDB, ids: ids, clock: clk}
}

func (r *SQLiteUserRepository) Insert(ctx context.Context, username, passwordHash string) (user domain.User, err error) {
	startTime := time.Now()
	defer func() { db.ObserveQuery(sqliteStoreLabel, "insert_user", startTime, err, ErrUsernameAlreadyExists) }()

	id, err := r.ids.NewID()
	if err != nil {
		return domain.User{}, fmt.Errorf("generate user id: %w", err)
	}

	createdAt := r.clock.Now().UTC().Truncate(time.Millisecond)

	_, err = r.db.ExecContext(
		ctx,
		`INSERT INTO users (id, username, password_hash, created_at) VALUES (?, ?, ?, ?)`,
		id,
		username,
		passwordHash,
		createdAt.UnixMilli(),
	)
	if err != nil {
		var liteErr *sqlite.Error
		if errors.As(err, &liteErr) && liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE {
			return domain.User{}, ErrUsernameAlreadyExists
		}
		return domain.User{}, fmt.Errorf("insert user: %w", err)
	}

	return domain.User{
		ID:           domain.UserID(id),
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    createdAt,
	}, nil
}

func (r *SQLiteUserRepository) FindByUsername(ctx context.Context, username string) (user domain.User, err error) {
	startTime := time.Now()
	defer func() { db.ObserveQuery(sqliteStoreLabel, "find_user_by_username", startTime, err, ErrUserNotFound) }()

	var (
		id        string
		createdAt int64
	)
	err = r.db.QueryRowContext(
		ctx,
		`SELECT id, username, password_hash, created_at FROM users WHERE username = ?`,
		username,
	).Scan(&id, &user.Username, &user.PasswordHash, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("find user: %w", err)
	}

	user.ID = domain.UserID(id)
	user.CreatedAt = time.UnixMilli(createdAt).UTC()
	return user, nil
}
