package api

import (
	"net/http"

	"github.com/pkg/errors"

	"github.com/evgeny-myasishchev/ledger.bank-accounts/pkg/accounts"
	"github.com/evgeny-myasishchev/ledger.bank-accounts/pkg/lib-core-golang/router"
)

// Error codes sent in the "code" field of error responses
const (
	CodeAccountNotFound   = "AccountNotFoundError"
	CodeAccountClosed     = "AccountClosedError"
	CodeInsufficientFunds = "InsufficientFundsError"
)

// ledgerError translates ledger failures to http errors.
// Unknown errors are returned as is and become 500
func ledgerError(err error) error {
	switch {
	case errors.Is(err, accounts.ErrAccountNotFound):
		return router.NewHTTPErrorWithCode(http.StatusNotFound, CodeAccountNotFound, err.Error())
	case errors.Is(err, accounts.ErrAccountClosed):
		return router.NewHTTPErrorWithCode(http.StatusConflict, CodeAccountClosed, err.Error())
	case errors.Is(err, accounts.ErrInsufficientFunds):
		return router.NewHTTPErrorWithCode(http.StatusUnprocessableEntity, CodeInsufficientFunds, err.Error())
	}
	return err
}
