package app

import (
	"context"

	"github.com/evgeny-myasishchev/ledger.bank-accounts/config"
	"github.com/evgeny-myasishchev/ledger.bank-accounts/pkg/lib-core-golang/diag"
)

// LoadConfig will load the app config and setup logging accordingly
func LoadConfig(ctx context.Context) (*config.AppConfig, error) {
	appCfg, err := config.LoadAppConfig(ctx)
	if err != nil {
		return nil, err
	}
	diag.SetupLoggingSystem(func(setup diag.LoggingSystemSetup) {
		setup.SetLogLevel(appCfg.Log.Level.Value())
	})
	return appCfg, nil
}
