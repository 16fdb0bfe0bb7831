package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/evgeny-myasishchev/ledger.bank-accounts/pkg/api"
	"github.com/evgeny-myasishchev/ledger.bank-accounts/pkg/app"
	"github.com/evgeny-myasishchev/ledger.bank-accounts/pkg/lib-core-golang/diag"
	"github.com/evgeny-myasishchev/ledger.bank-accounts/pkg/lib-core-golang/router"
	"github.com/evgeny-myasishchev/ledger.bank-accounts/pkg/version"
)

var logger = diag.CreateLogger()

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-signals
		logger.Info(ctx, "Got %v signal", sig)
		cancel()
	}()

	appCfg, err := app.LoadConfig(ctx)
	if err != nil {
		logger.WithError(err).Error(ctx, "Failed to load app config")
		os.Exit(1)
	}

	logger.
		WithData(diag.MsgData{"version": version.Version, "gitHash": version.GitHash, "env": appCfg.Env.Name}).
		Info(ctx, "Starting %v", version.AppName)

	injector := app.BootstrapServices(ctx, appCfg)
	if err := injector(func(server *api.Server) error {
		return router.StartServer(ctx, appCfg.Server.Port.Value(), func(r router.Router) {
			r.Use(router.MiddlewareFunc(diag.NewRequestIDMiddleware()))
			r.Use(router.MiddlewareFunc(diag.NewLogRequestsMiddleware()))
			r.Use(router.MiddlewareFunc(diag.NewRecoverMiddleware(nil)))
			server.Setup(r)
		})
	}); err != nil {
		logger.WithError(err).Error(ctx, "Server failed")
		os.Exit(1)
	}
	logger.Info(ctx, "Server stopped")
}
