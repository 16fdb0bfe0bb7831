package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/evgeny-myasishchev/ledger.bank-accounts/pkg/app"
	"github.com/evgeny-myasishchev/ledger.bank-accounts/pkg/dal"
	"github.com/evgeny-myasishchev/ledger.bank-accounts/pkg/lib-core-golang/diag"
)

var logger = diag.CreateLogger()

var cliArgs struct {
	cmd string
}

func init() {
	flag.StringVar(&cliArgs.cmd, "cmd", "", "Command to run. Available commands: setup, dump")

	flag.Parse()
}

func showHelpAndExit() {
	flag.PrintDefaults()
	os.Exit(1)
}

func main() {
	if cliArgs.cmd == "" {
		showHelpAndExit()
	}
	ctx := context.Background()

	appCfg, err := app.LoadConfig(ctx)
	if err != nil {
		logger.WithError(err).Error(ctx, "Failed to load app config")
		os.Exit(1)
	}

	injector := app.BootstrapServices(ctx, appCfg)

	switch cliArgs.cmd {
	case "setup":
		if err := injector(func(storage dal.Storage) error {
			return storage.Setup(ctx)
		}); err != nil {
			logger.WithError(err).Error(ctx, "Failed to setup storage")
			os.Exit(1)
		}
	case "dump":
		if err := injector(func(storage dal.Storage) error {
			snapshots, err := storage.GetAccounts(ctx)
			if err != nil {
				return err
			}
			for _, acc := range snapshots {
				fmt.Printf("%v\t%v\t%v\tbalance=%v\toverdraft=%v\tclosed=%v\n",
					acc.ID, acc.FullName, acc.EmailAddress, acc.Balance, acc.OverdraftLimit, acc.IsClosed)
			}
			return nil
		}); err != nil {
			logger.WithError(err).Error(ctx, "Failed to dump accounts")
			os.Exit(1)
		}
	default:
		showHelpAndExit()
	}
}
