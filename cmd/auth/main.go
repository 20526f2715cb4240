package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	authhttp "github.com/perplexiplay/backend/internal/auth/http"
	"github.com/perplexiplay/backend/internal/auth/service"
	"github.com/perplexiplay/backend/internal/common/bootstrap"
	commoncrypto "github.com/perplexiplay/backend/internal/common/crypto"
	commonhttp "github.com/perplexiplay/backend/internal/common/http"
	srv "github.com/perplexiplay/backend/internal/common/server"
	"github.com/perplexiplay/backend/internal/mirror"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.NewAuthApp(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "auth service: %v\n", err)
		os.Exit(1)
	}
	log, cfg := app.Log, app.Config
	defer log.Close()

	dispatcher := mirror.NewDispatcher(mirror.New(ctx, cfg.Mirror, log), cfg.Mirror.Timeout, log)

	codec := service.NewJWTCodec(cfg.JWTSecret, cfg.AccessTokenTTL, app.Clock)
	authService := service.NewAuthService(
		app.Store.Users,
		commoncrypto.NewBcryptHasher(cfg.BcryptCost),
		codec,
		dispatcher,
		log,
	)
	resolver := service.NewIdentityResolver(codec, app.Store.Users, log)

	mux := authhttp.NewHandler(authService, resolver, cfg.RequestTimeout, log)
	mux.Handle("/metrics", promhttp.Handler())

	serverConfig := srv.DefaultServerConfig(cfg.HTTPPort)
	server := srv.NewServer(serverConfig, commonhttp.BuildBaseHandler(log, mux))

	shutdownHooks := []srv.ShutdownHook{
		func(ctx context.Context) error {
			log.Info("auth service: waiting for mirror writes")
			return dispatcher.Wait(ctx)
		},
		app.Store.Close,
	}

	if err := srv.ListenAndRun(ctx, server, serverConfig, log, "auth", shutdownHooks); err != nil {
		log.Errorf("%v", err)
		_ = app.Store.Close(context.Background())
		os.Exit(1)
	}
}
