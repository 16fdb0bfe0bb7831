package accounts

import (
	"fmt"

	"github.com/pkg/errors"
	uuid "github.com/satori/go.uuid"
	"github.com/shopspring/decimal"
)

var (
	// ErrAccountNotFound is returned when an account id is not registered in the ledger
	ErrAccountNotFound = errors.New("account not found")

	// ErrTransaction is a kind of all errors that reject a mutation of an existing account.
	// Use errors.Is(err, ErrTransaction) to check for any of them
	ErrTransaction = errors.New("transaction failed")

	// ErrAccountClosed is returned when mutating a closed account (including closing it again)
	ErrAccountClosed error = &transactionError{msg: "account closed"}

	// ErrInsufficientFunds is returned when a debit would take the balance below the overdraft limit
	ErrInsufficientFunds error = &transactionError{msg: "insufficient funds"}
)

type transactionError struct {
	msg string
}

func (e *transactionError) Error() string {
	return e.msg
}

func (e *transactionError) Is(target error) bool {
	return target == ErrTransaction
}

// IsTransactionError returns true if the err is a closed account or insufficient funds error
func IsTransactionError(err error) bool {
	return errors.Is(err, ErrTransaction)
}

func accountNotFound(id uuid.UUID) error {
	return errors.Wrapf(ErrAccountNotFound, "account %v", id)
}

func accountClosed(id uuid.UUID) error {
	return errors.Wrapf(ErrAccountClosed, "account %v", id)
}

func insufficientFunds(id uuid.UUID, balance, amount, overdraftLimit decimal.Decimal) error {
	return errors.Wrapf(ErrInsufficientFunds,
		"account %v: can not debit %v (balance %v, overdraft limit %v)",
		id, amount, balance, overdraftLimit)
}

// ContractError is a panic value raised when a caller breaks a precondition
// of an operation (e.g negative overdraft limit). It is not a business failure
// and should never be handled as one.
type ContractError struct {
	Msg string
}

func (e *ContractError) Error() string {
	return "contract violation: " + e.Msg
}

func violate(format string, args ...interface{}) {
	panic(&ContractError{Msg: fmt.Sprintf(format, args...)})
}
