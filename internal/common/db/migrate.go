package db

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"

	"github.com/perplexiplay/backend/internal/common/logger"
)

// Migrate applies every pending migration found at dir inside fsys.
func Migrate(ctx context.Context, log *logger.Logger, sqlDB *sql.DB, dialect goose.Dialect, fsys fs.FS, dir string) error {
	migrations, err := fs.Sub(fsys, dir)
	if err != nil {
		return fmt.Errorf("open migrations %s: %w", dir, err)
	}

	provider, err := goose.NewProvider(dialect, sqlDB, migrations)
	if err != nil {
		return fmt.Errorf("create migration provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	for _, r := range results {
		log.Infof("applied migration %s in %v", r.Source.Path, r.Duration)
	}

	return nil
}
