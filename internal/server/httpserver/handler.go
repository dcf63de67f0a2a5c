package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/dashboard/internal/common"
	"github.com/dmitrijs2005/dashboard/internal/server/models"
	"github.com/dmitrijs2005/dashboard/internal/server/services"
	"github.com/dmitrijs2005/dashboard/internal/server/validation"
)

const maxFormMemory = 1 << 20

// parseForm accepts urlencoded and multipart bodies.
func parseForm(r *http.Request) (validation.Form, error) {
	if err := r.ParseMultipartForm(maxFormMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return nil, err
	}
	return validation.FormFromValues(r.PostForm), nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type formAction func(ctx context.Context, prev services.State, form validation.Form) (services.Result, error)

// submit runs a form action. The id path value, when present, overrides any
// submitted id.
func (s *HTTPServer) submit(w http.ResponseWriter, r *http.Request, name string, action formAction) {
	form, err := parseForm(r)
	if err != nil {
		s.logger.Warn(r.Context(), "bad form submission", "action", name, "error", err)
		http.Error(w, "bad form submission", http.StatusBadRequest)
		return
	}
	if id := r.PathValue("id"); id != "" {
		form["id"] = id
	}

	res, err := action(r.Context(), services.State{}, form)
	s.writeResult(w, r, name, res, err)
}

func (s *HTTPServer) remove(w http.ResponseWriter, r *http.Request, name string, action func(context.Context, string) (services.Result, error)) {
	res, err := action(r.Context(), r.PathValue("id"))
	s.writeResult(w, r, name, res, err)
}

func (s *HTTPServer) writeResult(w http.ResponseWriter, r *http.Request, name string, res services.Result, err error) {
	if err != nil {
		s.metrics.FormAction(name, "error")
		s.logger.Error(r.Context(), "form action failed", "action", name, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	s.metrics.FormAction(name, res.Outcome.String())

	switch res.Outcome {
	case services.OutcomeRedirect:
		http.Redirect(w, r, res.RedirectTo, http.StatusSeeOther)
	case services.OutcomeValidationFailed:
		writeJSON(w, http.StatusUnprocessableEntity, res.State)
	default:
		writeJSON(w, http.StatusInternalServerError, res.State)
	}
}

// serveCached answers from the view cache, rendering with load on a miss.
func (s *HTTPServer) serveCached(w http.ResponseWriter, r *http.Request, path string, load func(context.Context) (any, error)) {
	body, gen, hit := s.cache.Get(path)
	s.metrics.CacheLookup(path, hit)

	if !hit {
		v, err := load(r.Context())
		if err != nil {
			s.logger.Error(r.Context(), "listing failed", "path", path, "error", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		if body, err = json.Marshal(v); err != nil {
			s.logger.Error(r.Context(), "listing encode failed", "path", path, "error", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		s.cache.Fill(path, gen, body)
	}

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(body)
}

func (s *HTTPServer) writeOne(w http.ResponseWriter, r *http.Request, v any, err error) {
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			http.NotFound(w, r)
			return
		}
		s.logger.Error(r.Context(), "lookup failed", "path", r.URL.Path, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

type invoiceView struct {
	ID          string      `json:"id"`
	CustomerID  string      `json:"customer_id"`
	Amount      string      `json:"amount"`
	AmountCents int64       `json:"amount_cents"`
	Status      string      `json:"status"`
	Date        models.Date `json:"date"`
}

func newInvoiceView(i *models.Invoice) invoiceView {
	return invoiceView{
		ID:          i.ID,
		CustomerID:  i.CustomerID,
		Amount:      i.FormatAmount(),
		AmountCents: i.AmountCents,
		Status:      i.Status,
		Date:        i.Date,
	}
}

func (s *HTTPServer) listInvoices(w http.ResponseWriter, r *http.Request) {
	s.serveCached(w, r, common.InvoicesPath, func(ctx context.Context) (any, error) {
		list, err := s.invoices.ListInvoices(ctx)
		if err != nil {
			return nil, err
		}
		views := make([]invoiceView, 0, len(list))
		for _, inv := range list {
			views = append(views, newInvoiceView(inv))
		}
		return views, nil
	})
}

func (s *HTTPServer) getInvoice(w http.ResponseWriter, r *http.Request) {
	inv, err := s.invoices.GetInvoice(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeOne(w, r, nil, err)
		return
	}
	s.writeOne(w, r, newInvoiceView(inv), nil)
}

func (s *HTTPServer) createInvoice(w http.ResponseWriter, r *http.Request) {
	s.submit(w, r, "create_invoice", s.invoices.CreateInvoice)
}

func (s *HTTPServer) updateInvoice(w http.ResponseWriter, r *http.Request) {
	s.submit(w, r, "update_invoice", s.invoices.UpdateInvoice)
}

func (s *HTTPServer) deleteInvoice(w http.ResponseWriter, r *http.Request) {
	s.remove(w, r, "delete_invoice", s.invoices.DeleteInvoice)
}

func (s *HTTPServer) listUsers(w http.ResponseWriter, r *http.Request) {
	s.serveCached(w, r, common.UsersPath, func(ctx context.Context) (any, error) {
		return s.users.ListUsers(ctx)
	})
}

func (s *HTTPServer) getUser(w http.ResponseWriter, r *http.Request) {
	u, err := s.users.GetUser(r.Context(), r.PathValue("id"))
	s.writeOne(w, r, u, err)
}

func (s *HTTPServer) createUser(w http.ResponseWriter, r *http.Request) {
	s.submit(w, r, "create_user", s.users.CreateUser)
}

func (s *HTTPServer) updateUser(w http.ResponseWriter, r *http.Request) {
	s.submit(w, r, "update_user", s.users.UpdateUser)
}

func (s *HTTPServer) deleteUser(w http.ResponseWriter, r *http.Request) {
	s.remove(w, r, "delete_user", s.users.DeleteUser)
}

func (s *HTTPServer) login(w http.ResponseWriter, r *http.Request) {
	form, err := parseForm(r)
	if err != nil {
		http.Error(w, "bad form submission", http.StatusBadRequest)
		return
	}

	res, err := s.auth.Authenticate(r.Context(), "", form)
	if err != nil {
		s.logger.Error(r.Context(), "sign-in error", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	if res.Session == nil {
		writeJSON(w, http.StatusUnauthorized, services.State{Message: res.Message})
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     common.SessionCookieName,
		Value:    res.Session.Token,
		Path:     "/",
		Expires:  res.Session.ExpiresAt,
		HttpOnly: true,
		Secure:   s.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, common.HomePath, http.StatusSeeOther)
}

func (s *HTTPServer) logout(w http.ResponseWriter, r *http.Request) {
	s.clearSessionCookie(w)
	http.Redirect(w, r, common.LoginPath, http.StatusSeeOther)
}

func (s *HTTPServer) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     common.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}
