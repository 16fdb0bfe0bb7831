package accounts

import (
	"time"

	uuid "github.com/satori/go.uuid"
	"github.com/shopspring/decimal"
)

// Account is a point in time snapshot of a bank account.
// Ledger only hands out copies, changing it has no effect on the ledger state
type Account struct {
	ID             uuid.UUID       `json:"id"`
	FullName       string          `json:"full_name"`
	EmailAddress   string          `json:"email_address"`
	Balance        decimal.Decimal `json:"balance"`
	OverdraftLimit decimal.Decimal `json:"overdraft_limit"`
	IsClosed       bool            `json:"is_closed"`

	// Version is incremented with every successful mutation
	Version    int64     `json:"version"`
	CreatedAt  time.Time `json:"created_at"`
	ModifiedAt time.Time `json:"modified_at"`
}

// account is the entity owned by the ledger. It guards its own invariants:
// balance >= -overdraftLimit while open, nothing changes once closed
type account struct {
	state Account
}

func newAccount(id uuid.UUID, fullName, emailAddress string, now time.Time) *account {
	return &account{state: Account{
		ID:             id,
		FullName:       fullName,
		EmailAddress:   emailAddress,
		Balance:        decimal.Zero,
		OverdraftLimit: decimal.Zero,
		Version:        1,
		CreatedAt:      now,
		ModifiedAt:     now,
	}}
}

func (a *account) snapshot() Account {
	return a.state
}

func (a *account) touch(now time.Time) {
	a.state.Version++
	a.state.ModifiedAt = now
}

func (a *account) checkOpen() error {
	if a.state.IsClosed {
		return accountClosed(a.state.ID)
	}
	return nil
}

func (a *account) credit(amount decimal.Decimal, now time.Time) error {
	requirePositive(amount)
	if err := a.checkOpen(); err != nil {
		return err
	}
	a.state.Balance = a.state.Balance.Add(amount)
	a.touch(now)
	return nil
}

// canDebit checks the debit without applying it
func (a *account) canDebit(amount decimal.Decimal) error {
	requirePositive(amount)
	if err := a.checkOpen(); err != nil {
		return err
	}
	if a.state.Balance.Sub(amount).LessThan(a.state.OverdraftLimit.Neg()) {
		return insufficientFunds(a.state.ID, a.state.Balance, amount, a.state.OverdraftLimit)
	}
	return nil
}

func (a *account) debit(amount decimal.Decimal, now time.Time) error {
	if err := a.canDebit(amount); err != nil {
		return err
	}
	a.state.Balance = a.state.Balance.Sub(amount)
	a.touch(now)
	return nil
}

func (a *account) setOverdraftLimit(limit decimal.Decimal, now time.Time) error {
	if err := a.checkOpen(); err != nil {
		return err
	}
	if limit.IsNegative() {
		violate("overdraft limit must not be negative, got %v", limit)
	}
	a.state.OverdraftLimit = limit
	a.touch(now)
	return nil
}

// close is not idempotent, closing a closed account is an error
func (a *account) close(now time.Time) error {
	if err := a.checkOpen(); err != nil {
		return err
	}
	a.state.IsClosed = true
	a.touch(now)
	return nil
}

func requirePositive(amount decimal.Decimal) {
	if !amount.IsPositive() {
		violate("amount must be greater than zero, got %v", amount)
	}
}
