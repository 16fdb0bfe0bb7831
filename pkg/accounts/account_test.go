package accounts

import (
	"errors"
	"testing"
	"time"

	"github.com/bxcodec/faker/v3"
	tst "github.com/evgeny-myasishchev/ledger.bank-accounts/pkg/internal/testing"
	uuid "github.com/satori/go.uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func assertAmount(t *testing.T, want string, got decimal.Decimal) bool {
	t.Helper()
	return assert.True(t, tst.MustDecimal(want).Equal(got), "expected amount %v, got %v", want, got)
}

func randomAccount(balance string, overdraftLimit string) *account {
	acc := newAccount(uuid.NewV4(), faker.Name(), faker.Email(), time.Now())
	acc.state.Balance = tst.MustDecimal(balance)
	acc.state.OverdraftLimit = tst.MustDecimal(overdraftLimit)
	return acc
}

func TestNewAccount(t *testing.T) {
	id := uuid.NewV4()
	name := faker.Name()
	email := faker.Email()
	now := time.Now()

	acc := newAccount(id, name, email, now)
	got := acc.snapshot()

	assert.Equal(t, id, got.ID)
	assert.Equal(t, name, got.FullName)
	assert.Equal(t, email, got.EmailAddress)
	assertAmount(t, "0.00", got.Balance)
	assertAmount(t, "0.00", got.OverdraftLimit)
	assert.False(t, got.IsClosed)
	assert.Equal(t, int64(1), got.Version)
	assert.Equal(t, now, got.CreatedAt)
	assert.Equal(t, now, got.ModifiedAt)
}

func Test_account_credit(t *testing.T) {
	type testCase struct {
		name   string
		acc    *account
		amount decimal.Decimal
		assert func(t *testing.T, acc *account, err error)
	}
	tests := []func() testCase{
		func() testCase {
			return testCase{
				name:   "increase balance",
				acc:    randomAccount("100.10", "0"),
				amount: tst.MustDecimal("0.20"),
				assert: func(t *testing.T, acc *account, err error) {
					if !assert.NoError(t, err) {
						return
					}
					assertAmount(t, "100.30", acc.state.Balance)
					assert.Equal(t, int64(2), acc.state.Version)
				},
			}
		},
		func() testCase {
			acc := randomAccount("-10", "50")
			return testCase{
				name:   "increase negative balance",
				acc:    acc,
				amount: tst.MustDecimal("15.5"),
				assert: func(t *testing.T, acc *account, err error) {
					if !assert.NoError(t, err) {
						return
					}
					assertAmount(t, "5.5", acc.state.Balance)
				},
			}
		},
		func() testCase {
			acc := randomAccount("10", "0")
			acc.state.IsClosed = true
			return testCase{
				name:   "fail if closed",
				acc:    acc,
				amount: tst.MustDecimal("1"),
				assert: func(t *testing.T, acc *account, err error) {
					assert.True(t, errors.Is(err, ErrAccountClosed))
					assert.True(t, IsTransactionError(err))
					assertAmount(t, "10", acc.state.Balance)
					assert.Equal(t, int64(1), acc.state.Version)
				},
			}
		},
	}
	for _, tt := range tests {
		tt := tt()
		t.Run(tt.name, func(t *testing.T) {
			err := tt.acc.credit(tt.amount, time.Now())
			tt.assert(t, tt.acc, err)
		})
	}
}

func Test_account_debit(t *testing.T) {
	type testCase struct {
		name   string
		acc    *account
		amount decimal.Decimal
		assert func(t *testing.T, acc *account, err error)
	}
	tests := []func() testCase{
		func() testCase {
			return testCase{
				name:   "decrease balance",
				acc:    randomAccount("100", "0"),
				amount: tst.MustDecimal("30.01"),
				assert: func(t *testing.T, acc *account, err error) {
					if !assert.NoError(t, err) {
						return
					}
					assertAmount(t, "69.99", acc.state.Balance)
				},
			}
		},
		func() testCase {
			return testCase{
				name:   "debit whole balance",
				acc:    randomAccount("100", "0"),
				amount: tst.MustDecimal("100"),
				assert: func(t *testing.T, acc *account, err error) {
					if !assert.NoError(t, err) {
						return
					}
					assertAmount(t, "0", acc.state.Balance)
				},
			}
		},
		func() testCase {
			return testCase{
				name:   "go into overdraft up to the limit",
				acc:    randomAccount("100", "500"),
				amount: tst.MustDecimal("600"),
				assert: func(t *testing.T, acc *account, err error) {
					if !assert.NoError(t, err) {
						return
					}
					assertAmount(t, "-500", acc.state.Balance)
				},
			}
		},
		func() testCase {
			return testCase{
				name:   "fail if over the limit by a cent",
				acc:    randomAccount("100", "500"),
				amount: tst.MustDecimal("600.01"),
				assert: func(t *testing.T, acc *account, err error) {
					assert.True(t, errors.Is(err, ErrInsufficientFunds))
					assert.True(t, IsTransactionError(err))
					assertAmount(t, "100", acc.state.Balance)
					assert.Equal(t, int64(1), acc.state.Version)
				},
			}
		},
		func() testCase {
			acc := randomAccount("100", "0")
			acc.state.IsClosed = true
			return testCase{
				name:   "fail if closed",
				acc:    acc,
				amount: tst.MustDecimal("1"),
				assert: func(t *testing.T, acc *account, err error) {
					assert.True(t, errors.Is(err, ErrAccountClosed))
					assertAmount(t, "100", acc.state.Balance)
				},
			}
		},
	}
	for _, tt := range tests {
		tt := tt()
		t.Run(tt.name, func(t *testing.T) {
			err := tt.acc.debit(tt.amount, time.Now())
			tt.assert(t, tt.acc, err)
		})
	}
}

func Test_account_nonPositiveAmounts(t *testing.T) {
	for _, amount := range []string{"0", "0.00", "-1", "-0.01"} {
		acc := randomAccount("100", "0")
		assert.Panics(t, func() { _ = acc.credit(tst.MustDecimal(amount), time.Now()) }, "credit %v", amount)
		assert.Panics(t, func() { _ = acc.debit(tst.MustDecimal(amount), time.Now()) }, "debit %v", amount)
		assertAmount(t, "100", acc.state.Balance)
	}
}

func Test_account_setOverdraftLimit(t *testing.T) {
	t.Run("set limit", func(t *testing.T) {
		acc := randomAccount("0", "0")
		if !assert.NoError(t, acc.setOverdraftLimit(tst.MustDecimal("500.00"), time.Now())) {
			return
		}
		assertAmount(t, "500", acc.state.OverdraftLimit)
	})

	t.Run("lower the limit below current overdraft", func(t *testing.T) {
		acc := randomAccount("-300", "500")
		if !assert.NoError(t, acc.setOverdraftLimit(tst.MustDecimal("100"), time.Now())) {
			return
		}
		assertAmount(t, "100", acc.state.OverdraftLimit)
		err := acc.debit(tst.MustDecimal("0.01"), time.Now())
		assert.True(t, errors.Is(err, ErrInsufficientFunds))
	})

	t.Run("panic if negative", func(t *testing.T) {
		acc := randomAccount("0", "10")
		defer func() {
			rec := recover()
			if !assert.NotNil(t, rec) {
				return
			}
			_, isContractErr := rec.(*ContractError)
			assert.True(t, isContractErr, "expected ContractError, got %v", rec)
			assertAmount(t, "10", acc.state.OverdraftLimit)
		}()
		_ = acc.setOverdraftLimit(tst.MustDecimal("-500.00"), time.Now())
	})

	t.Run("closed wins over negative limit", func(t *testing.T) {
		acc := randomAccount("0", "10")
		acc.state.IsClosed = true
		var err error
		assert.NotPanics(t, func() {
			err = acc.setOverdraftLimit(tst.MustDecimal("-1"), time.Now())
		})
		assert.True(t, errors.Is(err, ErrAccountClosed))
	})
}

func Test_account_close(t *testing.T) {
	acc := randomAccount("10", "0")
	closedAt := time.Now().Add(time.Minute)
	if !assert.NoError(t, acc.close(closedAt)) {
		return
	}
	assert.True(t, acc.state.IsClosed)
	assert.Equal(t, closedAt, acc.state.ModifiedAt)
	assert.Equal(t, int64(2), acc.state.Version)

	err := acc.close(time.Now())
	assert.True(t, errors.Is(err, ErrAccountClosed), "closing twice should fail")
	assert.Equal(t, int64(2), acc.state.Version)
}
