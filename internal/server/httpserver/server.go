// Package httpserver exposes the dashboard's form actions and listings over
// HTTP.
package httpserver

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/dashboard/internal/common"
	"github.com/dmitrijs2005/dashboard/internal/logging"
	"github.com/dmitrijs2005/dashboard/internal/server/auth"
	"github.com/dmitrijs2005/dashboard/internal/server/metrics"
	"github.com/dmitrijs2005/dashboard/internal/server/models"
	"github.com/dmitrijs2005/dashboard/internal/server/services"
	"github.com/dmitrijs2005/dashboard/internal/server/validation"
	"github.com/dmitrijs2005/dashboard/internal/server/viewcache"
)

const shutdownTimeout = 10 * time.Second

type InvoiceActions interface {
	CreateInvoice(ctx context.Context, prev services.State, form validation.Form) (services.Result, error)
	UpdateInvoice(ctx context.Context, prev services.State, form validation.Form) (services.Result, error)
	DeleteInvoice(ctx context.Context, id string) (services.Result, error)
	ListInvoices(ctx context.Context) ([]*models.Invoice, error)
	GetInvoice(ctx context.Context, id string) (*models.Invoice, error)
}

type UserActions interface {
	CreateUser(ctx context.Context, prev services.State, form validation.Form) (services.Result, error)
	UpdateUser(ctx context.Context, prev services.State, form validation.Form) (services.Result, error)
	DeleteUser(ctx context.Context, id string) (services.Result, error)
	ListUsers(ctx context.Context) ([]*models.User, error)
	GetUser(ctx context.Context, id string) (*models.User, error)
}

type Authenticator interface {
	Authenticate(ctx context.Context, prev string, form validation.Form) (services.SignInResult, error)
}

type SessionParser interface {
	Parse(token string) (*auth.Session, error)
}

// ViewCache is the read-through cache behind the listing endpoints.
type ViewCache interface {
	Get(path string) ([]byte, uint64, bool)
	Fill(path string, gen uint64, body []byte) bool
}

var _ ViewCache = (*viewcache.Cache)(nil)

type Options struct {
	Address      string
	SecureCookie bool
}

type HTTPServer struct {
	address      string
	secureCookie bool
	invoices     InvoiceActions
	users        UserActions
	auth         Authenticator
	sessions     SessionParser
	cache        ViewCache
	metrics      *metrics.Metrics
	logger       logging.Logger
}

func NewHTTPServer(opts Options, l logging.Logger, invoices InvoiceActions, users UserActions,
	authn Authenticator, sessions SessionParser, cache ViewCache, m *metrics.Metrics) *HTTPServer {
	return &HTTPServer{
		address:      opts.Address,
		secureCookie: opts.SecureCookie,
		invoices:     invoices,
		users:        users,
		auth:         authn,
		sessions:     sessions,
		cache:        cache,
		metrics:      m,
		logger:       l.With("module", "http_server"),
	}
}

// Handler returns the routed handler wrapped in request logging.
func (s *HTTPServer) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST "+common.LoginPath, s.login)
	mux.HandleFunc("POST /logout", s.logout)
	mux.Handle("GET /metrics", s.metrics.Handler())

	guarded := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, s.requireSession(h))
	}

	guarded("GET "+common.InvoicesPath, s.listInvoices)
	guarded("GET "+common.InvoicesPath+"/{id}", s.getInvoice)
	guarded("POST "+common.InvoicesPath, s.createInvoice)
	guarded("POST "+common.InvoicesPath+"/{id}/edit", s.updateInvoice)
	guarded("POST "+common.InvoicesPath+"/{id}/delete", s.deleteInvoice)

	guarded("GET "+common.UsersPath, s.listUsers)
	guarded("GET "+common.UsersPath+"/{id}", s.getUser)
	guarded("POST "+common.UsersPath, s.createUser)
	guarded("POST "+common.UsersPath+"/{id}/edit", s.updateUser)
	guarded("POST "+common.UsersPath+"/{id}/delete", s.deleteUser)

	return s.logRequests(mux)
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *HTTPServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	stopped := make(chan error, 1)
	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		stopped <- srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return <-stopped
}
