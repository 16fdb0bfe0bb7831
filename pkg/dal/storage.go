package dal

import (
	"context"

	"github.com/evgeny-myasishchev/ledger.bank-accounts/pkg/accounts"
	"github.com/evgeny-myasishchev/ledger.bank-accounts/pkg/lib-core-golang/diag"
)

//go:generate mockgen -destination=mocks/storage.go -package=mocks . Storage

var logger = diag.CreateLogger()

// Storage is a persistance layer of account snapshots
type Storage interface {
	Setup(ctx context.Context) error

	// SaveAccounts upserts given snapshots. Stored row is only replaced
	// by a snapshot of a higher version
	SaveAccounts(ctx context.Context, snapshots ...accounts.Account) error

	GetAccounts(ctx context.Context) ([]accounts.Account, error)
}
