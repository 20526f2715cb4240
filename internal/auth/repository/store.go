package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/jackc/pgx/v4/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/perplexiplay/backend/internal/common/clock"
	"github.com/perplexiplay/backend/internal/common/constants"
	"github.com/perplexiplay/backend/internal/common/crypto"
	"github.com/perplexiplay/backend/internal/common/db"
	"github.com/perplexiplay/backend/internal/common/logger"
)

const (
	sqliteScheme = "sqlite://"
	sqlitePragma = "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
)

type StoreConfig struct {
	DatabaseURL  string
	DatabaseName string
}

// Store owns the database handle behind Users.
type Store struct {
	Users   UserRepository
	Backend string
	closeFn func()
}

func (s *Store) Close(context.Context) error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

// Open connects to the store named by cfg.DatabaseURL and applies pending
// migrations. sqlite://<path> selects the embedded SQLite store; anything
// else is treated as a Postgres connection string.
func Open(ctx context.Context, log *logger.Logger, cfg StoreConfig, ids crypto.IDGenerator, clk clock.Clock) (*Store, error) {
	if path, ok := strings.CutPrefix(cfg.DatabaseURL, sqliteScheme); ok {
		return openSQLite(ctx, log, path, ids, clk)
	}
	return openPostgres(ctx, log, cfg, ids, clk)
}

func openSQLite(ctx context.Context, log *logger.Logger, path string, ids crypto.IDGenerator, clk clock.Clock) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}

	sqlDB, err := sql.Open("sqlite", path+sqlitePragma)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	if err := db.Migrate(ctx, log, sqlDB, goose.DialectSQLite3, migrationsFS, "migrations/sqlite"); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	// SQLite allows one writer; a single connection queues writers instead of
	// failing them with SQLITE_BUSY.
	sqlDB.SetMaxOpenConns(1)

	log.Infof("sqlite store opened at %s", path)

	return &Store{
		Users:   NewSQLiteUserRepository(sqlDB, ids, clk),
		Backend: sqliteStoreLabel,
		closeFn: func() { _ = sqlDB.Close() },
	}, nil
}

func openPostgres(ctx context.Context, log *logger.Logger, cfg StoreConfig, ids crypto.IDGenerator, clk clock.Clock) (*Store, error) {
	poolCfg, err := db.ParsePoolConfig(cfg.DatabaseURL, cfg.DatabaseName)
	if err != nil {
		return nil, err
	}

	pool, err := db.NewPool(ctx, log, poolCfg)
	if err != nil {
		return nil, err
	}

	if err := migratePostgres(ctx, log, poolCfg); err != nil {
		pool.Close()
		return nil, err
	}

	metricsCtx, stopMetrics := context.WithCancel(context.Background())
	db.StartPoolMetrics(metricsCtx, pool, constants.DBPoolMetricsInterval)

	return &Store{
		Users:   NewPgUserRepository(pool, ids, clk),
		Backend: pgStoreLabel,
		closeFn: func() {
			stopMetrics()
			pool.Close()
		},
	}, nil
}

func migratePostgres(ctx context.Context, log *logger.Logger, poolCfg *pgxpool.Config) error {
	sqlDB := stdlib.OpenDB(*poolCfg.ConnConfig)
	defer sqlDB.Close()

	return db.Migrate(ctx, log, sqlDB, goose.DialectPostgres, migrationsFS, "migrations/postgres")
}
