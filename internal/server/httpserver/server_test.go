package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/dashboard/internal/common"
	"github.com/dmitrijs2005/dashboard/internal/logging"
	"github.com/dmitrijs2005/dashboard/internal/server/auth"
	"github.com/dmitrijs2005/dashboard/internal/server/metrics"
	"github.com/dmitrijs2005/dashboard/internal/server/models"
	"github.com/dmitrijs2005/dashboard/internal/server/services"
	"github.com/dmitrijs2005/dashboard/internal/server/validation"
	"github.com/dmitrijs2005/dashboard/internal/server/viewcache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---- fakes ----

type fakeInvoices struct {
	result    services.Result
	err       error
	gotForm   validation.Form
	gotID     string
	list      []*models.Invoice
	listCalls int
}

func (f *fakeInvoices) CreateInvoice(ctx context.Context, prev services.State, form validation.Form) (services.Result, error) {
	f.gotForm = form
	return f.result, f.err
}

func (f *fakeInvoices) UpdateInvoice(ctx context.Context, prev services.State, form validation.Form) (services.Result, error) {
	f.gotForm = form
	return f.result, f.err
}

func (f *fakeInvoices) DeleteInvoice(ctx context.Context, id string) (services.Result, error) {
	f.gotID = id
	return f.result, f.err
}

func (f *fakeInvoices) ListInvoices(ctx context.Context) ([]*models.Invoice, error) {
	f.listCalls++
	return f.list, nil
}

func (f *fakeInvoices) GetInvoice(ctx context.Context, id string) (*models.Invoice, error) {
	for _, inv := range f.list {
		if inv.ID == id {
			return inv, nil
		}
	}
	return nil, common.ErrorNotFound
}

type fakeUsers struct {
	result services.Result
	gotID  string
}

func (f *fakeUsers) CreateUser(ctx context.Context, prev services.State, form validation.Form) (services.Result, error) {
	return f.result, nil
}

func (f *fakeUsers) UpdateUser(ctx context.Context, prev services.State, form validation.Form) (services.Result, error) {
	return f.result, nil
}

func (f *fakeUsers) DeleteUser(ctx context.Context, id string) (services.Result, error) {
	f.gotID = id
	return f.result, nil
}

func (f *fakeUsers) ListUsers(ctx context.Context) ([]*models.User, error) {
	return []*models.User{{ID: "u-1", Name: "Ann", Email: "ann@example.com", PasswordHash: "secret-hash"}}, nil
}

func (f *fakeUsers) GetUser(ctx context.Context, id string) (*models.User, error) {
	return nil, errors.New("db error: down")
}

type fakeAuth struct {
	res services.SignInResult
	err error
}

func (f *fakeAuth) Authenticate(ctx context.Context, prev string, form validation.Form) (services.SignInResult, error) {
	return f.res, f.err
}

// ---- helpers ----

const secret = "test-secret"

type fixture struct {
	srv      *HTTPServer
	handler  http.Handler
	invoices *fakeInvoices
	users    *fakeUsers
	auth     *fakeAuth
	cache    *viewcache.Cache
	sessions *auth.SessionManager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		invoices: &fakeInvoices{},
		users:    &fakeUsers{},
		auth:     &fakeAuth{},
		cache:    viewcache.New(8),
		sessions: auth.NewSessionManager([]byte(secret), time.Hour),
	}
	logger := logging.New(io.Discard, logging.FormatJSON, slog.LevelError)
	f.srv = NewHTTPServer(Options{Address: "127.0.0.1:0"}, logger, f.invoices, f.users, f.auth, f.sessions, f.cache, metrics.New())
	f.handler = f.srv.Handler()
	return f
}

func (f *fixture) sessionCookie(t *testing.T) *http.Cookie {
	t.Helper()
	s, err := f.sessions.Issue("u-1", "ann@example.com")
	require.NoError(t, err)
	return &http.Cookie{Name: common.SessionCookieName, Value: s.Token}
}

func (f *fixture) do(t *testing.T, req *http.Request, signedIn bool) *httptest.ResponseRecorder {
	t.Helper()
	if signedIn {
		req.AddCookie(f.sessionCookie(t))
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func postForm(path string, v url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(v.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

// ---- tests ----

func TestDashboard_RequiresSession(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, httptest.NewRequest(http.MethodGet, common.InvoicesPath, nil), false)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, common.LoginPath, rec.Header().Get("Location"))

	req := httptest.NewRequest(http.MethodGet, common.InvoicesPath, nil)
	req.AddCookie(&http.Cookie{Name: common.SessionCookieName, Value: "forged"})
	rec = f.do(t, req, false)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Zero(t, f.invoices.listCalls)
}

func TestCreateInvoice_Redirects(t *testing.T) {
	f := newFixture(t)
	f.invoices.result = services.Result{Outcome: services.OutcomeRedirect, RedirectTo: common.InvoicesPath}

	rec := f.do(t, postForm(common.InvoicesPath, url.Values{
		"customerId": {"c1"}, "amount": {"10.00"}, "status": {"paid"},
	}), true)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, common.InvoicesPath, rec.Header().Get("Location"))
	assert.Equal(t, validation.Form{"customerId": "c1", "amount": "10.00", "status": "paid"}, f.invoices.gotForm)
}

func TestCreateInvoice_ValidationFailureIs422(t *testing.T) {
	f := newFixture(t)
	f.invoices.result = services.Result{
		Outcome: services.OutcomeValidationFailed,
		State: services.State{
			Errors:  validation.FieldErrors{"amount": {validation.MsgAmount}},
			Message: "Missing Fields. Failed to Create Invoice.",
		},
	}

	rec := f.do(t, postForm(common.InvoicesPath, url.Values{"amount": {"0"}}), true)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var got services.State
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, f.invoices.result.State, got)
}

func TestUpdateInvoice_TakesIDFromPath(t *testing.T) {
	f := newFixture(t)
	f.invoices.result = services.Result{
		Outcome: services.OutcomePersistenceFailed,
		State:   services.State{Message: "Database Error: Failed to Update Invoice."},
	}

	rec := f.do(t, postForm(common.InvoicesPath+"/inv-9/edit", url.Values{"id": {"other"}, "customerId": {"c1"}}), true)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"message":"Database Error: Failed to Update Invoice."}`, rec.Body.String())
	assert.Equal(t, "inv-9", f.invoices.gotForm.Get("id"))
}

func TestCreateInvoice_Multipart(t *testing.T) {
	f := newFixture(t)
	f.invoices.result = services.Result{Outcome: services.OutcomeRedirect, RedirectTo: common.InvoicesPath}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("customerId", "c1"))
	require.NoError(t, mw.WriteField("amount", "5"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, common.InvoicesPath, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := f.do(t, req, true)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "c1", f.invoices.gotForm.Get("customerId"))
	assert.Equal(t, "5", f.invoices.gotForm.Get("amount"))
}

func TestFormAction_UnexpectedErrorIs500(t *testing.T) {
	f := newFixture(t)
	f.invoices.err = errors.New("boom")

	rec := f.do(t, postForm(common.InvoicesPath, url.Values{}), true)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "boom")
}

func TestDeleteUser_UsesPathID(t *testing.T) {
	f := newFixture(t)
	f.users.result = services.Result{Outcome: services.OutcomeRedirect, RedirectTo: common.UsersPath}

	rec := f.do(t, httptest.NewRequest(http.MethodPost, common.UsersPath+"/u-7/delete", nil), true)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, common.UsersPath, rec.Header().Get("Location"))
	assert.Equal(t, "u-7", f.users.gotID)
}

func TestListInvoices_ReadsThroughCache(t *testing.T) {
	f := newFixture(t)
	f.invoices.list = []*models.Invoice{{
		ID: "inv-1", CustomerID: "c1", AmountCents: 1000, Status: "pending",
		Date: models.Date{Year: 2026, Month: time.October, Day: 15},
	}}

	for i := 0; i < 2; i++ {
		rec := f.do(t, httptest.NewRequest(http.MethodGet, common.InvoicesPath, nil), true)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `[{"id":"inv-1","customer_id":"c1","amount":"10.00","amount_cents":1000,"status":"pending","date":"2026-10-15"}]`, rec.Body.String())
	}
	assert.Equal(t, 1, f.invoices.listCalls)

	f.cache.Invalidate(common.InvoicesPath)
	f.do(t, httptest.NewRequest(http.MethodGet, common.InvoicesPath, nil), true)
	assert.Equal(t, 2, f.invoices.listCalls)
}

func TestListUsers_OmitsPasswordHash(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, httptest.NewRequest(http.MethodGet, common.UsersPath, nil), true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "secret-hash")
	assert.Contains(t, rec.Body.String(), "ann@example.com")
}

func TestGetInvoice(t *testing.T) {
	f := newFixture(t)
	f.invoices.list = []*models.Invoice{{ID: "inv-1", AmountCents: 5, Status: "paid"}}

	rec := f.do(t, httptest.NewRequest(http.MethodGet, common.InvoicesPath+"/inv-1", nil), true)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"amount":"0.05"`)

	rec = f.do(t, httptest.NewRequest(http.MethodGet, common.InvoicesPath+"/missing", nil), true)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetUser_StoreErrorIs500(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, httptest.NewRequest(http.MethodGet, common.UsersPath+"/u-1", nil), true)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestLogin_SetsCookieAndRedirects(t *testing.T) {
	f := newFixture(t)
	s, err := f.sessions.Issue("u-1", "ann@example.com")
	require.NoError(t, err)
	f.auth.res = services.SignInResult{Session: s}

	rec := f.do(t, postForm(common.LoginPath, url.Values{"email": {"ann@example.com"}, "password": {"secret1"}}), false)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, common.HomePath, rec.Header().Get("Location"))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, common.SessionCookieName, cookies[0].Name)
	assert.Equal(t, s.Token, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
}

func TestLogin_InvalidCredentialsIs401(t *testing.T) {
	f := newFixture(t)
	f.auth.res = services.SignInResult{Message: services.MsgInvalidCredentials}

	rec := f.do(t, postForm(common.LoginPath, url.Values{"email": {"ann@example.com"}}), false)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"message":"Invalid credentials."}`, rec.Body.String())
	assert.Empty(t, rec.Result().Cookies())
}

func TestLogin_UndeclaredErrorIs500(t *testing.T) {
	f := newFixture(t)
	f.auth.err = errors.New("boom")

	rec := f.do(t, postForm(common.LoginPath, url.Values{}), false)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestLogout_ClearsCookie(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, httptest.NewRequest(http.MethodPost, "/logout", nil), true)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, common.LoginPath, rec.Header().Get("Location"))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "", cookies[0].Value)
	assert.Less(t, cookies[0].MaxAge, 0)
}

func TestMetricsEndpoint(t *testing.T) {
	f := newFixture(t)
	f.invoices.result = services.Result{Outcome: services.OutcomeRedirect, RedirectTo: common.InvoicesPath}
	f.do(t, postForm(common.InvoicesPath, url.Values{}), true)

	rec := f.do(t, httptest.NewRequest(http.MethodGet, "/metrics", nil), false)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `dashboard_form_actions_total{action="create_invoice",outcome="redirect"} 1`)
}

func TestRun_StopsOnCancel(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- f.srv.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
