package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	uuid "github.com/satori/go.uuid"
	"github.com/shopspring/decimal"

	"github.com/evgeny-myasishchev/ledger.bank-accounts/pkg/app"
	"github.com/evgeny-myasishchev/ledger.bank-accounts/pkg/client"
	"github.com/evgeny-myasishchev/ledger.bank-accounts/pkg/lib-core-golang/diag"
)

var logger = diag.CreateLogger()

var cliArgs struct {
	cmd    string
	id     string
	to     string
	amount string
	name   string
	email  string
}

func init() {
	flag.StringVar(&cliArgs.cmd, "cmd", "",
		"Command to run. Available commands: open, list, get, balance, deposit, withdraw, transfer, overdraft, close")
	flag.StringVar(&cliArgs.id, "id", "", "Account ID")
	flag.StringVar(&cliArgs.to, "to", "", "Account ID to transfer to")
	flag.StringVar(&cliArgs.amount, "amount", "", "Amount (or overdraft limit) as a decimal string")
	flag.StringVar(&cliArgs.name, "name", "", "Full name of the account holder")
	flag.StringVar(&cliArgs.email, "email", "", "Email address of the account holder")

	flag.Parse()
}

func showHelpAndExit() {
	flag.PrintDefaults()
	os.Exit(1)
}

func mustID(value string) uuid.UUID {
	id, err := uuid.FromString(value)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid account id %q\n", value)
		showHelpAndExit()
	}
	return id
}

func mustAmount() decimal.Decimal {
	amount, err := decimal.NewFromString(cliArgs.amount)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid amount %q\n", cliArgs.amount)
		showHelpAndExit()
	}
	return amount
}

func run(ctx context.Context, api client.API) (interface{}, error) {
	switch cliArgs.cmd {
	case "open":
		if cliArgs.name == "" || cliArgs.email == "" {
			showHelpAndExit()
		}
		return api.OpenAccount(ctx, cliArgs.name, cliArgs.email)
	case "list":
		return api.ListAccounts(ctx)
	case "get":
		return api.GetAccount(ctx, mustID(cliArgs.id))
	case "balance":
		return api.GetBalance(ctx, mustID(cliArgs.id))
	case "deposit":
		return api.Deposit(ctx, mustID(cliArgs.id), mustAmount())
	case "withdraw":
		return api.Withdraw(ctx, mustID(cliArgs.id), mustAmount())
	case "transfer":
		return api.Transfer(ctx, mustID(cliArgs.id), mustID(cliArgs.to), mustAmount())
	case "overdraft":
		if cliArgs.amount == "" {
			return api.GetOverdraftLimit(ctx, mustID(cliArgs.id))
		}
		return api.SetOverdraftLimit(ctx, mustID(cliArgs.id), mustAmount())
	case "close":
		return api.CloseAccount(ctx, mustID(cliArgs.id))
	}
	showHelpAndExit()
	return nil, nil
}

func main() {
	if cliArgs.cmd == "" {
		showHelpAndExit()
	}
	ctx := diag.ContextWithRequestID(context.Background(), uuid.NewV4().String())

	appCfg, err := app.LoadConfig(ctx)
	if err != nil {
		logger.WithError(err).Error(ctx, "Failed to load app config")
		os.Exit(1)
	}

	injector := app.BootstrapServices(ctx, appCfg)
	if err := injector(func(api client.API) error {
		result, err := run(ctx, api)
		if err != nil {
			return err
		}
		output, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(output))
		return nil
	}); err != nil {
		logger.WithError(err).Error(ctx, "Command %v failed", cliArgs.cmd)
		os.Exit(1)
	}
}
