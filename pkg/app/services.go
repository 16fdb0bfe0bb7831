package app

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
	"go.uber.org/dig"

	"github.com/evgeny-myasishchev/ledger.bank-accounts/config"
	"github.com/evgeny-myasishchev/ledger.bank-accounts/pkg/accounts"
	"github.com/evgeny-myasishchev/ledger.bank-accounts/pkg/api"
	"github.com/evgeny-myasishchev/ledger.bank-accounts/pkg/client"
	"github.com/evgeny-myasishchev/ledger.bank-accounts/pkg/dal"
	"github.com/evgeny-myasishchev/ledger.bank-accounts/pkg/lib-core-golang/diag"
)

var logger = diag.CreateLogger()

// Injector is a function that will inject desired services
// to a target function
type Injector func(function interface{}) error

// BootstrapServices setup di container with all app services
func BootstrapServices(ctx context.Context, appCfg *config.AppConfig) Injector {
	c := dig.New()
	provide := func(constructor interface{}) {
		if err := c.Provide(constructor); err != nil {
			panic(err)
		}
	}

	provide(func() (*sql.DB, error) {
		db, err := sql.Open(appCfg.Storage.Driver.Value(), appCfg.Storage.DSN.Value())
		if err != nil {
			return nil, err
		}

		// sqlite does not allow concurrent writers
		db.SetMaxOpenConns(1)
		return db, nil
	})

	provide(func(db *sql.DB) (dal.Storage, error) {
		return dal.NewSQLStorage(dal.WithSQLDb(db))
	})

	provide(func(storage dal.Storage) (accounts.Ledger, error) {
		if err := storage.Setup(ctx); err != nil {
			return nil, err
		}
		snapshots, err := storage.GetAccounts(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "Failed to restore accounts")
		}
		ledger := accounts.NewLedger()
		ledger.Restore(snapshots...)
		logger.Info(ctx, "Restored %v accounts", len(snapshots))
		return ledger, nil
	})

	provide(func(ledger accounts.Ledger, storage dal.Storage) *api.Server {
		return api.NewServer(api.WithLedger(ledger), api.WithStorage(storage))
	})

	provide(func() client.API {
		return client.NewAPI(appCfg.API.BaseURL.Value())
	})

	return func(function interface{}) error {
		return c.Invoke(function)
	}
}
