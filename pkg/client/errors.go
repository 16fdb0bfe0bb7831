package client

import (
	"github.com/pkg/errors"

	"github.com/evgeny-myasishchev/ledger.bank-accounts/pkg/accounts"
	bankAPI "github.com/evgeny-myasishchev/ledger.bank-accounts/pkg/api"
	"github.com/evgeny-myasishchev/ledger.bank-accounts/pkg/lib-core-golang/request"
)

// Error is a rejected API call. Ledger failures can be checked with errors.Is
// against accounts.ErrAccountNotFound, accounts.ErrAccountClosed etc
type Error struct {
	*request.HTTPError
	kind error
}

// Unwrap returns the ledger error kind, nil if the code is not known
func (e *Error) Unwrap() error {
	return e.kind
}

var errorKinds = map[string]error{
	bankAPI.CodeAccountNotFound:   accounts.ErrAccountNotFound,
	bankAPI.CodeAccountClosed:     accounts.ErrAccountClosed,
	bankAPI.CodeInsufficientFunds: accounts.ErrInsufficientFunds,
}

func apiError(err error) error {
	var httpErr *request.HTTPError
	if !errors.As(err, &httpErr) {
		return err
	}
	return &Error{HTTPError: httpErr, kind: errorKinds[httpErr.Code]}
}
