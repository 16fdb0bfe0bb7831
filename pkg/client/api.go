package client

import (
	"context"

	uuid "github.com/satori/go.uuid"
	"github.com/shopspring/decimal"

	"github.com/evgeny-myasishchev/ledger.bank-accounts/pkg/accounts"
	"github.com/evgeny-myasishchev/ledger.bank-accounts/pkg/lib-core-golang/request"
)

// API is an interface to communicate with the bank accounts service
type API interface {
	OpenAccount(ctx context.Context, fullName, emailAddress string) (accounts.Account, error)
	GetAccount(ctx context.Context, id uuid.UUID) (accounts.Account, error)
	GetBalance(ctx context.Context, id uuid.UUID) (decimal.Decimal, error)
	GetOverdraftLimit(ctx context.Context, id uuid.UUID) (decimal.Decimal, error)
	ListAccounts(ctx context.Context) ([]accounts.Account, error)

	Deposit(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (accounts.Account, error)
	Withdraw(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (accounts.Account, error)
	Transfer(ctx context.Context, fromID, toID uuid.UUID, amount decimal.Decimal) (TransferResult, error)
	SetOverdraftLimit(ctx context.Context, id uuid.UUID, limit decimal.Decimal) (accounts.Account, error)
	CloseAccount(ctx context.Context, id uuid.UUID) (accounts.Account, error)
}

// TransferResult holds snapshots of both accounts after a transfer
type TransferResult struct {
	DebitAccount  accounts.Account `json:"debit_account"`
	CreditAccount accounts.Account `json:"credit_account"`
}

type api struct {
	baseURL string
	opts    []request.SendOpt
}

func (a *api) accountURL(id uuid.UUID, parts ...string) string {
	url := a.baseURL + "/v1/accounts/" + id.String()
	for _, part := range parts {
		url += "/" + part
	}
	return url
}

func (a *api) send(ctx context.Context, factory request.ReqFactory, receiver interface{}) error {
	return apiError(request.Do(ctx, factory, a.opts...).DecodeJSON(receiver))
}

func (a *api) OpenAccount(ctx context.Context, fullName, emailAddress string) (accounts.Account, error) {
	var result accounts.Account
	err := a.send(ctx, request.Post(a.baseURL+"/v1/accounts", map[string]string{
		"full_name":     fullName,
		"email_address": emailAddress,
	}), &result)
	return result, err
}

func (a *api) GetAccount(ctx context.Context, id uuid.UUID) (accounts.Account, error) {
	var result accounts.Account
	err := a.send(ctx, request.Get(a.accountURL(id)), &result)
	return result, err
}

func (a *api) GetBalance(ctx context.Context, id uuid.UUID) (decimal.Decimal, error) {
	var result struct {
		Balance decimal.Decimal `json:"balance"`
	}
	err := a.send(ctx, request.Get(a.accountURL(id, "balance")), &result)
	return result.Balance, err
}

func (a *api) GetOverdraftLimit(ctx context.Context, id uuid.UUID) (decimal.Decimal, error) {
	var result struct {
		OverdraftLimit decimal.Decimal `json:"overdraft_limit"`
	}
	err := a.send(ctx, request.Get(a.accountURL(id, "overdraft")), &result)
	return result.OverdraftLimit, err
}

func (a *api) ListAccounts(ctx context.Context) ([]accounts.Account, error) {
	var result []accounts.Account
	if err := a.send(ctx, request.Get(a.baseURL+"/v1/accounts"), &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (a *api) Deposit(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (accounts.Account, error) {
	var result accounts.Account
	err := a.send(ctx, request.Post(a.accountURL(id, "deposit"), map[string]decimal.Decimal{"amount": amount}), &result)
	return result, err
}

func (a *api) Withdraw(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (accounts.Account, error) {
	var result accounts.Account
	err := a.send(ctx, request.Post(a.accountURL(id, "withdraw"), map[string]decimal.Decimal{"amount": amount}), &result)
	return result, err
}

func (a *api) Transfer(ctx context.Context, fromID, toID uuid.UUID, amount decimal.Decimal) (TransferResult, error) {
	var result TransferResult
	err := a.send(ctx, request.Post(a.accountURL(fromID, "transfer"), map[string]interface{}{
		"to_account_id": toID,
		"amount":        amount,
	}), &result)
	return result, err
}

func (a *api) SetOverdraftLimit(ctx context.Context, id uuid.UUID, limit decimal.Decimal) (accounts.Account, error) {
	var result accounts.Account
	err := a.send(ctx, request.Post(a.accountURL(id, "overdraft"), map[string]decimal.Decimal{"limit": limit}), &result)
	return result, err
}

func (a *api) CloseAccount(ctx context.Context, id uuid.UUID) (accounts.Account, error) {
	var result accounts.Account
	err := a.send(ctx, request.Post(a.accountURL(id, "close"), nil), &result)
	return result, err
}

// APIOpt is an option of the api client
type APIOpt func(a *api)

// WithSendOpts will apply given options to every request
func WithSendOpts(opts ...request.SendOpt) APIOpt {
	return func(a *api) {
		a.opts = append(a.opts, opts...)
	}
}

// NewAPI returns an instance of the API for given service url
func NewAPI(baseURL string, opts ...APIOpt) API {
	a := &api{baseURL: baseURL}
	for _, opt := range opts {
		opt(a)
	}
	return a
}
