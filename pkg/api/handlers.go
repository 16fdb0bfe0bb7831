package api

import (
	"net/http"

	uuid "github.com/satori/go.uuid"
	"github.com/shopspring/decimal"

	"github.com/evgeny-myasishchev/ledger.bank-accounts/pkg/accounts"
	"github.com/evgeny-myasishchev/ledger.bank-accounts/pkg/lib-core-golang/router"
)

type openAccountPayload struct {
	FullName     string `json:"full_name" validate:"required"`
	EmailAddress string `json:"email_address" validate:"required,email"`
}

type amountPayload struct {
	Amount decimal.Decimal `json:"amount"`
}

type transferPayload struct {
	ToAccountID uuid.UUID       `json:"to_account_id" validate:"required"`
	Amount      decimal.Decimal `json:"amount"`
}

type overdraftPayload struct {
	Limit *decimal.Decimal `json:"limit" validate:"required"`
}

type balanceResponse struct {
	ID      uuid.UUID       `json:"id"`
	Balance decimal.Decimal `json:"balance"`
}

type overdraftResponse struct {
	ID             uuid.UUID       `json:"id"`
	OverdraftLimit decimal.Decimal `json:"overdraft_limit"`
}

type transferResponse struct {
	DebitAccount  accounts.Account `json:"debit_account"`
	CreditAccount accounts.Account `json:"credit_account"`
}

func requirePositive(name string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return router.BadRequestError("ValidationFailed: " + name + " must be greater than zero")
	}
	return nil
}

func (s *Server) ping(w http.ResponseWriter, req *http.Request, h router.HandlerToolkit) error {
	return h.WriteJSON(map[string]string{"status": "ok"})
}

func (s *Server) listAccounts(w http.ResponseWriter, req *http.Request, h router.HandlerToolkit) error {
	return h.WriteJSON(s.ledger.ListAccounts())
}

func (s *Server) openAccount(w http.ResponseWriter, req *http.Request, h router.HandlerToolkit) error {
	var payload openAccountPayload
	if err := h.BindPayload(&payload); err != nil {
		return err
	}
	id := s.ledger.OpenAccount(payload.FullName, payload.EmailAddress)
	logger.Info(req.Context(), "Opened account %v", id)
	snapshots, err := s.persist(req.Context(), id)
	if err != nil {
		return ledgerError(err)
	}
	return h.WriteJSON(snapshots[0], h.WithStatus(http.StatusCreated))
}

func (s *Server) getAccount(w http.ResponseWriter, req *http.Request, h router.HandlerToolkit, id uuid.UUID) error {
	snapshot, err := s.ledger.GetAccount(id)
	if err != nil {
		return ledgerError(err)
	}
	return h.WriteJSON(snapshot)
}

func (s *Server) getBalance(w http.ResponseWriter, req *http.Request, h router.HandlerToolkit, id uuid.UUID) error {
	balance, err := s.ledger.GetBalance(id)
	if err != nil {
		return ledgerError(err)
	}
	return h.WriteJSON(balanceResponse{ID: id, Balance: balance})
}

func (s *Server) getOverdraftLimit(w http.ResponseWriter, req *http.Request, h router.HandlerToolkit, id uuid.UUID) error {
	limit, err := s.ledger.GetOverdraftLimit(id)
	if err != nil {
		return ledgerError(err)
	}
	return h.WriteJSON(overdraftResponse{ID: id, OverdraftLimit: limit})
}

func (s *Server) depositFunds(w http.ResponseWriter, req *http.Request, h router.HandlerToolkit, id uuid.UUID) error {
	var payload amountPayload
	if err := h.BindPayload(&payload); err != nil {
		return err
	}
	if err := requirePositive("amount", payload.Amount); err != nil {
		return err
	}
	if err := s.ledger.DepositFunds(id, payload.Amount); err != nil {
		return ledgerError(err)
	}
	return s.writeSnapshot(req, h, id)
}

func (s *Server) withdrawFunds(w http.ResponseWriter, req *http.Request, h router.HandlerToolkit, id uuid.UUID) error {
	var payload amountPayload
	if err := h.BindPayload(&payload); err != nil {
		return err
	}
	if err := requirePositive("amount", payload.Amount); err != nil {
		return err
	}
	if err := s.ledger.WithdrawFunds(id, payload.Amount); err != nil {
		return ledgerError(err)
	}
	return s.writeSnapshot(req, h, id)
}

func (s *Server) transferFunds(w http.ResponseWriter, req *http.Request, h router.HandlerToolkit, id uuid.UUID) error {
	var payload transferPayload
	if err := h.BindPayload(&payload); err != nil {
		return err
	}
	if err := requirePositive("amount", payload.Amount); err != nil {
		return err
	}
	if err := s.ledger.TransferFunds(id, payload.ToAccountID, payload.Amount); err != nil {
		return ledgerError(err)
	}
	logger.Info(req.Context(), "Transferred %v to %v", payload.Amount, payload.ToAccountID)
	snapshots, err := s.persist(req.Context(), id, payload.ToAccountID)
	if err != nil {
		return ledgerError(err)
	}
	return h.WriteJSON(transferResponse{DebitAccount: snapshots[0], CreditAccount: snapshots[1]})
}

func (s *Server) setOverdraftLimit(w http.ResponseWriter, req *http.Request, h router.HandlerToolkit, id uuid.UUID) error {
	var payload overdraftPayload
	if err := h.BindPayload(&payload); err != nil {
		return err
	}
	limit := *payload.Limit
	if limit.IsNegative() {
		return router.BadRequestError("ValidationFailed: limit must not be negative")
	}
	if err := s.ledger.SetOverdraftLimit(id, limit); err != nil {
		return ledgerError(err)
	}
	return s.writeSnapshot(req, h, id)
}

func (s *Server) closeAccount(w http.ResponseWriter, req *http.Request, h router.HandlerToolkit, id uuid.UUID) error {
	if err := s.ledger.CloseAccount(id); err != nil {
		return ledgerError(err)
	}
	logger.Info(req.Context(), "Closed account")
	return s.writeSnapshot(req, h, id)
}

func (s *Server) writeSnapshot(req *http.Request, h router.HandlerToolkit, id uuid.UUID) error {
	snapshots, err := s.persist(req.Context(), id)
	if err != nil {
		return ledgerError(err)
	}
	return h.WriteJSON(snapshots[0])
}
