// Package accounts is the accounting core: bank accounts and the ledger that
// moves money between them. It keeps everything in memory and does no I/O.
package accounts

import (
	"sort"
	"sync"
	"time"

	uuid "github.com/satori/go.uuid"
	"github.com/shopspring/decimal"
)

// Ledger is a registry of accounts and the only way to change them.
// All operations are safe for concurrent use, each one is applied atomically.
type Ledger interface {
	OpenAccount(fullName, emailAddress string) uuid.UUID
	GetAccount(id uuid.UUID) (Account, error)
	GetBalance(id uuid.UUID) (decimal.Decimal, error)
	GetOverdraftLimit(id uuid.UUID) (decimal.Decimal, error)
	ListAccounts() []Account

	DepositFunds(creditAccountID uuid.UUID, amount decimal.Decimal) error
	WithdrawFunds(debitAccountID uuid.UUID, amount decimal.Decimal) error

	// TransferFunds debits one account and credits the other as a single step.
	// If anything fails neither account is changed
	TransferFunds(debitAccountID, creditAccountID uuid.UUID, amount decimal.Decimal) error

	// SetOverdraftLimit panics with *ContractError if the limit is negative
	// and the account is open
	SetOverdraftLimit(id uuid.UUID, overdraftLimit decimal.Decimal) error
	CloseAccount(id uuid.UUID) error

	// Restore puts previously saved snapshots back to the ledger,
	// replacing accounts with the same id
	Restore(accounts ...Account)
}

type ledger struct {
	// mu guards the registry and every account in it. A single lock makes
	// transfers indivisible for readers without any lock ordering
	mu       sync.RWMutex
	accounts map[uuid.UUID]*account

	newID func() uuid.UUID
	now   func() time.Time
}

func (l *ledger) lookup(id uuid.UUID) (*account, error) {
	acc, ok := l.accounts[id]
	if !ok {
		return nil, accountNotFound(id)
	}
	return acc, nil
}

func (l *ledger) OpenAccount(fullName, emailAddress string) uuid.UUID {
	l.mu.Lock()
	defer l.mu.Unlock()
	id := l.newID()
	for _, taken := l.accounts[id]; taken; _, taken = l.accounts[id] {
		id = l.newID()
	}
	l.accounts[id] = newAccount(id, fullName, emailAddress, l.now())
	return id
}

func (l *ledger) GetAccount(id uuid.UUID) (Account, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	acc, err := l.lookup(id)
	if err != nil {
		return Account{}, err
	}
	return acc.snapshot(), nil
}

func (l *ledger) GetBalance(id uuid.UUID) (decimal.Decimal, error) {
	acc, err := l.GetAccount(id)
	if err != nil {
		return decimal.Zero, err
	}
	return acc.Balance, nil
}

func (l *ledger) GetOverdraftLimit(id uuid.UUID) (decimal.Decimal, error) {
	acc, err := l.GetAccount(id)
	if err != nil {
		return decimal.Zero, err
	}
	return acc.OverdraftLimit, nil
}

func (l *ledger) ListAccounts() []Account {
	l.mu.RLock()
	result := make([]Account, 0, len(l.accounts))
	for _, acc := range l.accounts {
		result = append(result, acc.snapshot())
	}
	l.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID.String() < result[j].ID.String()
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result
}

// mutate runs fn against a single account under the write lock
func (l *ledger) mutate(id uuid.UUID, fn func(acc *account, now time.Time) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	acc, err := l.lookup(id)
	if err != nil {
		return err
	}
	return fn(acc, l.now())
}

func (l *ledger) DepositFunds(creditAccountID uuid.UUID, amount decimal.Decimal) error {
	return l.mutate(creditAccountID, func(acc *account, now time.Time) error {
		return acc.credit(amount, now)
	})
}

func (l *ledger) WithdrawFunds(debitAccountID uuid.UUID, amount decimal.Decimal) error {
	return l.mutate(debitAccountID, func(acc *account, now time.Time) error {
		return acc.debit(amount, now)
	})
}

func (l *ledger) TransferFunds(debitAccountID, creditAccountID uuid.UUID, amount decimal.Decimal) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	debitAcc, err := l.lookup(debitAccountID)
	if err != nil {
		return err
	}
	creditAcc, err := l.lookup(creditAccountID)
	if err != nil {
		return err
	}
	if err := debitAcc.checkOpen(); err != nil {
		return err
	}
	if err := creditAcc.checkOpen(); err != nil {
		return err
	}

	// Both legs are validated before the first one is applied,
	// the credit can not fail once the debit went through
	if err := debitAcc.canDebit(amount); err != nil {
		return err
	}
	now := l.now()
	if err := debitAcc.debit(amount, now); err != nil {
		return err
	}
	return creditAcc.credit(amount, now)
}

func (l *ledger) SetOverdraftLimit(id uuid.UUID, overdraftLimit decimal.Decimal) error {
	return l.mutate(id, func(acc *account, now time.Time) error {
		return acc.setOverdraftLimit(overdraftLimit, now)
	})
}

func (l *ledger) CloseAccount(id uuid.UUID) error {
	return l.mutate(id, func(acc *account, now time.Time) error {
		return acc.close(now)
	})
}

func (l *ledger) Restore(accounts ...Account) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, snapshot := range accounts {
		l.accounts[snapshot.ID] = &account{state: snapshot}
	}
}

// LedgerOpt is an option of the ledger
type LedgerOpt func(l *ledger)

// WithIDGenerator will use given function to generate new account ids
func WithIDGenerator(newID func() uuid.UUID) LedgerOpt {
	return func(l *ledger) {
		l.newID = newID
	}
}

// WithNow will use given function to timestamp account changes
func WithNow(now func() time.Time) LedgerOpt {
	return func(l *ledger) {
		l.now = now
	}
}

// NewLedger returns an empty in-memory ledger
func NewLedger(opts ...LedgerOpt) Ledger {
	l := &ledger{
		accounts: map[uuid.UUID]*account{},
		newID:    uuid.NewV4,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}
