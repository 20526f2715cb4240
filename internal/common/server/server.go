package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/perplexiplay/backend/internal/common/logger"
)

type ShutdownHook func(ctx context.Context) error

// Run serves on ln until ctx is cancelled, then stops accepting connections,
// runs hooks within the drain period and shuts the server down.
func Run(
	ctx context.Context,
	server *http.Server,
	ln net.Listener,
	cfg ServerConfig,
	log *logger.Logger,
	serviceName string,
	hooks []ShutdownHook,
) error {
	errCh := make(chan error, 1)
	go func() {
		log.Infof("%s service listening on %s", serviceName, ln.Addr())
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok && err != nil {
			return fmt.Errorf("%s service: %w", serviceName, err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Infof("shutting down %s service...", serviceName)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	server.SetKeepAlivesEnabled(false)

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorf("%s service forced to shutdown: %v", serviceName, err)
	}

	if len(hooks) > 0 {
		drainCtx, drainCancel := context.WithTimeout(shutdownCtx, cfg.DrainTimeout)
		defer drainCancel()

		log.Infof("%s service: executing shutdown hooks (drain period: %v)", serviceName, cfg.DrainTimeout)
		for i, hook := range hooks {
			if err := hook(drainCtx); err != nil {
				log.Errorf("%s service: shutdown hook %d failed: %v", serviceName, i, err)
			}
		}
	}

	log.Infof("%s service stopped gracefully", serviceName)
	return nil
}

// ListenAndRun opens a TCP listener on server.Addr and calls Run.
func ListenAndRun(ctx context.Context, server *http.Server, cfg ServerConfig, log *logger.Logger, serviceName string, hooks []ShutdownHook) error {
	ln, err := net.Listen("tcp", server.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", server.Addr, err)
	}
	return Run(ctx, server, ln, cfg, log, serviceName, hooks)
}
