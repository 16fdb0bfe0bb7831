package api

import (
	"context"
	"net/http"

	uuid "github.com/satori/go.uuid"

	"github.com/evgeny-myasishchev/ledger.bank-accounts/pkg/accounts"
	"github.com/evgeny-myasishchev/ledger.bank-accounts/pkg/dal"
	"github.com/evgeny-myasishchev/ledger.bank-accounts/pkg/lib-core-golang/diag"
	"github.com/evgeny-myasishchev/ledger.bank-accounts/pkg/lib-core-golang/router"
)

var logger = diag.CreateLogger()

// Server exposes the ledger over http
type Server struct {
	ledger  accounts.Ledger
	storage dal.Storage
}

// ServerOpt is an option of the server
type ServerOpt func(s *Server)

// WithLedger sets the ledger requests are served from
func WithLedger(ledger accounts.Ledger) ServerOpt {
	return func(s *Server) {
		s.ledger = ledger
	}
}

// WithStorage sets the storage snapshots are saved to after every mutation.
// Without a storage the state lives in memory only
func WithStorage(storage dal.Storage) ServerOpt {
	return func(s *Server) {
		s.storage = storage
	}
}

// NewServer creates a server. An empty ledger is used if not provided
func NewServer(opts ...ServerOpt) *Server {
	s := &Server{}
	for _, opt := range opts {
		opt(s)
	}
	if s.ledger == nil {
		s.ledger = accounts.NewLedger()
	}
	return s
}

// Setup registers all routes
func (s *Server) Setup(r router.Router) {
	r.Handle("GET", "/v1/healthcheck/ping", router.ToolkitHandlerFunc(s.ping))

	r.Handle("GET", "/v1/accounts", router.ToolkitHandlerFunc(s.listAccounts))
	r.Handle("POST", "/v1/accounts", router.ToolkitHandlerFunc(s.openAccount))
	r.Handle("GET", "/v1/accounts/:id", s.withAccount(s.getAccount))
	r.Handle("GET", "/v1/accounts/:id/balance", s.withAccount(s.getBalance))
	r.Handle("GET", "/v1/accounts/:id/overdraft", s.withAccount(s.getOverdraftLimit))

	r.Handle("POST", "/v1/accounts/:id/deposit", s.withAccount(s.depositFunds))
	r.Handle("POST", "/v1/accounts/:id/withdraw", s.withAccount(s.withdrawFunds))
	r.Handle("POST", "/v1/accounts/:id/transfer", s.withAccount(s.transferFunds))
	r.Handle("POST", "/v1/accounts/:id/overdraft", s.withAccount(s.setOverdraftLimit))
	r.Handle("POST", "/v1/accounts/:id/close", s.withAccount(s.closeAccount))
}

type accountHandlerFunc func(
	w http.ResponseWriter,
	req *http.Request,
	h router.HandlerToolkit,
	accountID uuid.UUID,
) error

// withAccount binds the :id path param and tags the request context with it
func (s *Server) withAccount(handler accountHandlerFunc) router.ToolkitHandlerFunc {
	return func(w http.ResponseWriter, req *http.Request, h router.HandlerToolkit) error {
		var params struct {
			id uuid.UUID
		}
		if err := h.BindParams().PathParam("id").UUID(&params.id).Validate(&params); err != nil {
			return err
		}
		req = req.WithContext(diag.ContextWithAccountID(req.Context(), params.id.String()))
		return handler(w, req, h, params.id)
	}
}

// persist saves current snapshots of given accounts and returns them.
// Failing to save is not a failure of the request that has already
// been applied to the ledger
func (s *Server) persist(ctx context.Context, ids ...uuid.UUID) ([]accounts.Account, error) {
	snapshots := make([]accounts.Account, 0, len(ids))
	for _, id := range ids {
		snapshot, err := s.ledger.GetAccount(id)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, snapshot)
	}
	if s.storage == nil {
		return snapshots, nil
	}
	if err := s.storage.SaveAccounts(ctx, snapshots...); err != nil {
		logger.WithError(err).Error(ctx, "Failed to save accounts %v", ids)
	}
	return snapshots, nil
}
