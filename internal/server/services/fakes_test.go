package services

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"sync"

	"github.com/dmitrijs2005/dashboard/internal/common"
	"github.com/dmitrijs2005/dashboard/internal/dbx"
	"github.com/dmitrijs2005/dashboard/internal/logging"
	"github.com/dmitrijs2005/dashboard/internal/server/models"
	"github.com/dmitrijs2005/dashboard/internal/server/repositories/invoices"
	"github.com/dmitrijs2005/dashboard/internal/server/repositories/users"
)

// --- helpers ---

func discardLogger() logging.Logger {
	return logging.New(io.Discard, logging.FormatJSON, slog.LevelError)
}

type fakeInvoicesRepo struct {
	calls   int
	created *models.Invoice
	updated *models.Invoice
	deleted []string
	err     error
	rows    map[string]*models.Invoice
}

func (f *fakeInvoicesRepo) Create(ctx context.Context, inv *models.Invoice) (*models.Invoice, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	inv.ID = "inv-new"
	f.created = inv
	return inv, nil
}

func (f *fakeInvoicesRepo) Update(ctx context.Context, inv *models.Invoice) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	f.updated = inv
	return nil
}

func (f *fakeInvoicesRepo) Delete(ctx context.Context, id string) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeInvoicesRepo) Get(ctx context.Context, id string) (*models.Invoice, error) {
	f.calls++
	if inv, ok := f.rows[id]; ok {
		return inv, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeInvoicesRepo) List(ctx context.Context) ([]*models.Invoice, error) {
	f.calls++
	out := make([]*models.Invoice, 0, len(f.rows))
	for _, inv := range f.rows {
		out = append(out, inv)
	}
	return out, f.err
}

type fakeUsersRepo struct {
	calls   int
	created *models.User
	updated *models.User
	deleted []string
	err     error
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	u.ID = "u-new"
	f.created = u
	return u, nil
}

func (f *fakeUsersRepo) Update(ctx context.Context, u *models.User) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	f.updated = u
	return nil
}

func (f *fakeUsersRepo) Delete(ctx context.Context, id string) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeUsersRepo) Get(ctx context.Context, id string) (*models.User, error) {
	f.calls++
	return nil, common.ErrorNotFound
}

func (f *fakeUsersRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	f.calls++
	return nil, common.ErrorNotFound
}

func (f *fakeUsersRepo) List(ctx context.Context) ([]*models.User, error) {
	f.calls++
	return nil, f.err
}

type fakeRepoManager struct {
	inv *fakeInvoicesRepo
	usr *fakeUsersRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }

func (m *fakeRepoManager) Invoices(db dbx.DBTX) invoices.Repository { return m.inv }

func (m *fakeRepoManager) Users(db dbx.DBTX) users.Repository { return m.usr }

type fakeCache struct {
	mu    sync.Mutex
	paths []string
}

func (c *fakeCache) Invalidate(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.paths = append(c.paths, path)
}

type fakeHasher struct {
	calls int
	err   error
}

func (h *fakeHasher) Hash(plaintext string) (string, error) {
	h.calls++
	if h.err != nil {
		return "", h.err
	}
	return "hashed:" + plaintext, nil
}

func (h *fakeHasher) Compare(hash, plaintext string) error { return nil }
