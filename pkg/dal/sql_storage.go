package dal

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"github.com/evgeny-myasishchev/ledger.bank-accounts/pkg/accounts"

	// This has to be here to let go mods work work
	_ "github.com/mattn/go-sqlite3"
)

type sqlStorage struct {
	db *sql.DB
}

func (s *sqlStorage) Setup(ctx context.Context) error {
	logger.Info(ctx, "Setup SQL storage")
	_, err := s.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS accounts(
	id              nvarchar(36) NOT NULL PRIMARY KEY,
	full_name       nvarchar(255) NOT NULL,
	email_address   nvarchar(255) NOT NULL,
	balance         TEXT NOT NULL,
	overdraft_limit TEXT NOT NULL,
	is_closed       BOOLEAN NOT NULL,
	version         INTEGER NOT NULL,
	created_at      timestamp NOT NULL,
	modified_at     timestamp NOT NULL
);
`)
	return errors.Wrap(err, "Failed to setup storage")
}

func (s *sqlStorage) SaveAccounts(ctx context.Context, snapshots ...accounts.Account) error {
	if len(snapshots) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "Failed to begin transaction")
	}
	for _, acc := range snapshots {
		if _, err := tx.ExecContext(ctx, `
	INSERT INTO accounts(
		id,
		full_name,
		email_address,
		balance,
		overdraft_limit,
		is_closed,
		version,
		created_at,
		modified_at
	)
	VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9)
	ON CONFLICT(id) DO UPDATE
	SET full_name=excluded.full_name,
		email_address=excluded.email_address,
		balance=excluded.balance,
		overdraft_limit=excluded.overdraft_limit,
		is_closed=excluded.is_closed,
		version=excluded.version,
		modified_at=excluded.modified_at
	WHERE excluded.version > accounts.version
	`,
			acc.ID.String(),
			acc.FullName,
			acc.EmailAddress,
			acc.Balance.String(),
			acc.OverdraftLimit.String(),
			acc.IsClosed,
			acc.Version,
			acc.CreatedAt.UTC(),
			acc.ModifiedAt.UTC(),
		); err != nil {
			if rollbackErr := tx.Rollback(); rollbackErr != nil {
				logger.WithError(rollbackErr).Warn(ctx, "Failed to rollback")
			}
			return errors.Wrapf(err, "Failed to save account %v", acc.ID)
		}
	}
	return errors.Wrap(tx.Commit(), "Failed to commit accounts")
}

func (s *sqlStorage) GetAccounts(ctx context.Context) ([]accounts.Account, error) {
	rows, err := s.db.QueryContext(ctx, `
	SELECT
		id, full_name, email_address, balance, overdraft_limit,
		is_closed, version, created_at, modified_at
	FROM accounts
	ORDER BY created_at, id`)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to query accounts")
	}
	defer rows.Close()

	result := []accounts.Account{}
	for rows.Next() {
		var acc accounts.Account
		if err := rows.Scan(
			&acc.ID,
			&acc.FullName,
			&acc.EmailAddress,
			&acc.Balance,
			&acc.OverdraftLimit,
			&acc.IsClosed,
			&acc.Version,
			&acc.CreatedAt,
			&acc.ModifiedAt,
		); err != nil {
			return nil, errors.Wrap(err, "Failed to read account")
		}
		result = append(result, acc)
	}
	return result, errors.Wrap(rows.Err(), "Failed to read accounts")
}

// SQLStorageOpt is an option of SQL storage
type SQLStorageOpt func(s *sqlStorage)

// WithSQLDb will set an explicit db instance for a storage
func WithSQLDb(db *sql.DB) SQLStorageOpt {
	return func(s *sqlStorage) {
		s.db = db
	}
}

// NewSQLStorage returns an instance of a sql storage
func NewSQLStorage(opts ...SQLStorageOpt) (Storage, error) {
	storage := &sqlStorage{}
	for _, opt := range opts {
		opt(storage)
	}
	if storage.db == nil {
		return nil, errors.New("SQL db is required")
	}
	return storage, nil
}
