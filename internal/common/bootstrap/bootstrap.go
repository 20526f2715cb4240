package bootstrap

import (
	"context"
	"fmt"
	"os"

	authrepo "github.com/perplexiplay/backend/internal/auth/repository"
	"github.com/perplexiplay/backend/internal/common/clock"
	"github.com/perplexiplay/backend/internal/common/config"
	"github.com/perplexiplay/backend/internal/common/crypto"
	"github.com/perplexiplay/backend/internal/common/logger"
)

var closeLogger = func(log *logger.Logger) error { return log.Close() }

// AuthApp holds the process-wide handles shared by the auth service.
type AuthApp struct {
	Log    *logger.Logger
	Config config.AuthConfig
	Clock  clock.Clock
	Store  *authrepo.Store
}

func NewAuthApp(ctx context.Context) (*AuthApp, error) {
	log, err := initializeLogger("auth")
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	cfg, err := config.LoadAuthConfig()
	if err != nil {
		_ = closeLogger(log)
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	app, err := newAuthApp(ctx, log, cfg)
	if err != nil {
		_ = closeLogger(log)
		return nil, err
	}
	return app, nil
}

func newAuthApp(ctx context.Context, log *logger.Logger, cfg config.AuthConfig) (*AuthApp, error) {
	clk := clock.NewRealClock()

	store, err := authrepo.Open(
		ctx,
		log,
		authrepo.StoreConfig{DatabaseURL: cfg.DatabaseURL, DatabaseName: cfg.DatabaseName},
		crypto.NewUUIDGenerator(),
		clk,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open user store: %w", err)
	}
	log.Infof("user store ready: backend=%s", store.Backend)

	return &AuthApp{
		Log:    log,
		Config: cfg,
		Clock:  clk,
		Store:  store,
	}, nil
}

func initializeLogger(serviceName string) (*logger.Logger, error) {
	return logger.New(os.Getenv("LOG_DIR"), serviceName, os.Getenv("LOG_LEVEL"))
}
