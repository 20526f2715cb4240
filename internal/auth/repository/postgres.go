package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgconn"
	pgx "github.com/jackc/pgx/v4"

	"github.com/perplexiplay/backend/internal/auth/domain"
	"github.com/perplexiplay/backend/internal/common/clock"
	"github.com/perplexiplay/backend/internal/common/crypto"
	"github.com/perplexiplay/backend/internal/common/db"
)

const (
	pgStoreLabel         = "postgres"
	pgUniqueViolation    = "23505"
	pgUsernameConstraint = "users_username_key"
)

// DBTX is the subset of pgxpool.Pool used by PgUserRepository.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

type PgUserRepository struct {
	db    DBTX
	ids   crypto.IDGenerator
	clock clock.Clock
}

var _ UserRepository = (*PgUserRepository)(nil)

func NewPgUserRepository(conn DBTX, ids crypto.IDGenerator, clk clock.Clock) *PgUserRepository {
	return &PgUserRepository{db: conn, ids: ids, clock: clk}
}

func (r *PgUserRepository) Insert(ctx context.Context, username, passwordHash string) (user domain.User, err error) {
	startTime := time.Now()
	defer func() { db.ObserveQuery(pgStoreLabel, "insert_user", startTime, err, ErrUsernameAlreadyExists) }()

	id, err := r.ids.NewID()
	if err != nil {
		return domain.User{}, fmt.Errorf("generate user id: %w", err)
	}

	// Postgres keeps microseconds; truncate so the returned record matches a later read.
	createdAt := r.clock.Now().UTC().Truncate(time.Microsecond)

	_, err = r.db.Exec(
		ctx,
		`INSERT INTO users (id, username, password_hash, created_at) VALUES ($1, $2, $3, $4)`,
		id,
		username,
		passwordHash,
		createdAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation && pgErr.ConstraintName == pgUsernameConstraint {
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

func (r *PgUserRepository) FindByUsername(ctx context.Context, username string) (user domain.User, err error) {
	startTime := time.Now()
	defer func() { db.ObserveQuery(pgStoreLabel, "find_user_by_username", startTime, err, ErrUserNotFound) }()

	row := r.db.QueryRow(
		ctx,
		`SELECT id::text, username, password_hash, created_at FROM users WHERE username = $1`,
		username,
	)

	var id string
	if err = row.Scan(&id, &user.Username, &user.PasswordHash, &user.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("find user: %w", err)
	}

	user.ID = domain.UserID(id)
	user.CreatedAt = user.CreatedAt.UTC()
	return user, nil
}
