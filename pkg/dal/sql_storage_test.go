package dal

import (
	"context"
	"database/sql"
	"math/rand"
	"testing"
	"time"

	"github.com/bxcodec/faker/v3"
	_ "github.com/mattn/go-sqlite3"
	uuid "github.com/satori/go.uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/evgeny-myasishchev/ledger.bank-accounts/pkg/accounts"
	tst "github.com/evgeny-myasishchev/ledger.bank-accounts/pkg/internal/testing"
)

func init() {
	rand.Seed(time.Now().Unix())
}

func randomAccount() accounts.Account {
	createdAt := time.Now().UTC().Add(-time.Duration(rand.Intn(100000)) * time.Second)
	return accounts.Account{
		ID:             uuid.NewV4(),
		FullName:       faker.Name(),
		EmailAddress:   faker.Email(),
		Balance:        tst.RandomAmount(100000),
		OverdraftLimit: tst.RandomAmount(1000),
		IsClosed:       rand.Intn(2) == 1,
		Version:        1 + rand.Int63n(100),
		CreatedAt:      createdAt,
		ModifiedAt:     createdAt.Add(time.Duration(rand.Intn(1000)) * time.Second),
	}
}

// decimals may come back with a different exponent so compare them by value
func assertAccountsEqual(t *testing.T, want []accounts.Account, got []accounts.Account) bool {
	if !assert.Len(t, got, len(want)) {
		return false
	}
	ok := true
	for i := range want {
		w, g := want[i], got[i]
		ok = assert.True(t, w.Balance.Equal(g.Balance), "balance want %v got %v", w.Balance, g.Balance) && ok
		ok = assert.True(t, w.OverdraftLimit.Equal(g.OverdraftLimit), "limit want %v got %v", w.OverdraftLimit, g.OverdraftLimit) && ok
		w.Balance, g.Balance = decimal.Zero, decimal.Zero
		w.OverdraftLimit, g.OverdraftLimit = decimal.Zero, decimal.Zero
		ok = assert.Equal(t, w, g) && ok
	}
	return ok
}

func setupStorage(t *testing.T) (Storage, *sql.DB, func()) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		panic(err)
	}
	db.SetMaxOpenConns(1)
	s, err := NewSQLStorage(WithSQLDb(db))
	if err != nil {
		panic(err)
	}
	if err := s.Setup(context.Background()); err != nil {
		panic(err)
	}
	return s, db, func() { db.Close() }
}

func TestNewSQLStorage(t *testing.T) {
	_, err := NewSQLStorage()
	assert.EqualError(t, err, "SQL db is required")
}

func Test_sqlStorage_Setup(t *testing.T) {
	s, _, done := setupStorage(t)
	defer done()
	assert.NoError(t, s.Setup(context.Background()), "setup should be repeatable")
}

func Test_sqlStorage_SaveAccounts(t *testing.T) {
	type testCase struct {
		name  string
		setup []accounts.Account
		save  []accounts.Account
		want  []accounts.Account
	}
	tests := []func() testCase{
		func() testCase {
			acc1, acc2 := randomAccount(), randomAccount()
			acc2.CreatedAt = acc1.CreatedAt.Add(time.Second)
			return testCase{
				name: "insert new accounts",
				save: []accounts.Account{acc1, acc2},
				want: []accounts.Account{acc1, acc2},
			}
		},
		func() testCase {
			acc := randomAccount()
			updated := acc
			updated.Balance = acc.Balance.Add(decimal.New(1050, -2))
			updated.IsClosed = !acc.IsClosed
			updated.Version = acc.Version + 1
			updated.ModifiedAt = acc.ModifiedAt.Add(time.Minute)
			return testCase{
				name:  "update with newer version",
				setup: []accounts.Account{acc},
				save:  []accounts.Account{updated},
				want:  []accounts.Account{updated},
			}
		},
		func() testCase {
			acc := randomAccount()
			acc.Version = 10
			stale := acc
			stale.Balance = acc.Balance.Sub(decimal.New(1, 0))
			stale.Version = 9
			return testCase{
				name:  "ignore stale version",
				setup: []accounts.Account{acc},
				save:  []accounts.Account{stale},
				want:  []accounts.Account{acc},
			}
		},
		func() testCase {
			acc := randomAccount()
			same := acc
			same.FullName = faker.Name()
			return testCase{
				name:  "ignore same version",
				setup: []accounts.Account{acc},
				save:  []accounts.Account{same},
				want:  []accounts.Account{acc},
			}
		},
		func() testCase {
			return testCase{
				name: "save nothing",
				want: []accounts.Account{},
			}
		},
	}
	for _, tt := range tests {
		tt := tt()
		t.Run(tt.name, func(t *testing.T) {
			s, _, done := setupStorage(t)
			defer done()
			ctx := context.Background()
			if !assert.NoError(t, s.SaveAccounts(ctx, tt.setup...)) {
				return
			}
			if !assert.NoError(t, s.SaveAccounts(ctx, tt.save...)) {
				return
			}
			got, err := s.GetAccounts(ctx)
			if !assert.NoError(t, err) {
				return
			}
			assertAccountsEqual(t, tt.want, got)
		})
	}
}

func Test_sqlStorage_SaveAccounts_exactDecimals(t *testing.T) {
	s, _, done := setupStorage(t)
	defer done()
	acc := randomAccount()
	acc.Balance = tst.MustDecimal("-12345678901234567890.123456789")
	acc.OverdraftLimit = tst.MustDecimal("0.1")
	if !assert.NoError(t, s.SaveAccounts(context.Background(), acc)) {
		return
	}
	got, err := s.GetAccounts(context.Background())
	if !assert.NoError(t, err) || !assert.Len(t, got, 1) {
		return
	}
	assert.Equal(t, "-12345678901234567890.123456789", got[0].Balance.String())
	assert.Equal(t, "0.1", got[0].OverdraftLimit.String())
}

func Test_sqlStorage_SaveAccounts_rollback(t *testing.T) {
	s, db, done := setupStorage(t)
	defer done()
	acc := randomAccount()
	if _, err := db.Exec(`DROP TABLE accounts`); err != nil {
		panic(err)
	}
	err := s.SaveAccounts(context.Background(), acc)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "Failed to save account "+acc.ID.String())
}

func Test_sqlStorage_GetAccounts_restoresLedger(t *testing.T) {
	s, _, done := setupStorage(t)
	defer done()
	ctx := context.Background()

	ledger := accounts.NewLedger()
	id1 := ledger.OpenAccount(faker.Name(), faker.Email())
	id2 := ledger.OpenAccount(faker.Name(), faker.Email())
	if !assert.NoError(t, ledger.DepositFunds(id1, tst.MustDecimal("100.25"))) {
		return
	}
	if !assert.NoError(t, ledger.TransferFunds(id1, id2, tst.MustDecimal("40"))) {
		return
	}
	if !assert.NoError(t, s.SaveAccounts(ctx, ledger.ListAccounts()...)) {
		return
	}

	stored, err := s.GetAccounts(ctx)
	if !assert.NoError(t, err) {
		return
	}
	restored := accounts.NewLedger()
	restored.Restore(stored...)
	for id, want := range map[uuid.UUID]string{id1: "60.25", id2: "40"} {
		got, err := restored.GetBalance(id)
		if assert.NoError(t, err) {
			assert.Equal(t, want, got.String())
		}
	}
}
