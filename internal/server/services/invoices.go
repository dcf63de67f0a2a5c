package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/dmitrijs2005/dashboard/internal/common"
	"github.com/dmitrijs2005/dashboard/internal/logging"
	"github.com/dmitrijs2005/dashboard/internal/server/models"
	"github.com/dmitrijs2005/dashboard/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/dashboard/internal/server/validation"
	"github.com/dmitrijs2005/dashboard/internal/server/viewcache"
)

type InvoiceService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	cache       viewcache.Invalidator
	logger      logging.Logger
	now         func() time.Time
}

func NewInvoiceService(db *sql.DB, m repomanager.RepositoryManager, cache viewcache.Invalidator, logger logging.Logger) *InvoiceService {
	return &InvoiceService{
		db:          db,
		repomanager: m,
		cache:       cache,
		logger:      logger.With("module", "invoices"),
		now:         time.Now,
	}
}

// CreateInvoice stores a new invoice dated today (UTC).
func (s *InvoiceService) CreateInvoice(ctx context.Context, prev State, form validation.Form) (Result, error) {
	in, errs := validation.ValidateCreateInvoice(form)
	if !errs.Empty() {
		return validationFailed(errs, actionCreate, entityInvoice), nil
	}

	invoice := &models.Invoice{
		CustomerID:  in.CustomerID,
		AmountCents: in.AmountCents,
		Status:      in.Status,
		Date:        models.DateOf(s.now().UTC()),
	}

	repo := s.repomanager.Invoices(s.db)
	invoice, err := repo.Create(ctx, invoice)
	if err != nil {
		s.logger.Error(ctx, "create invoice failed", "error", err)
		return persistenceFailed(actionCreate, entityInvoice), nil
	}

	s.logger.Info(ctx, "invoice created", "id", invoice.ID, "amount_cents", invoice.AmountCents)
	s.cache.Invalidate(common.InvoicesPath)
	return redirect(common.InvoicesPath), nil
}

func (s *InvoiceService) UpdateInvoice(ctx context.Context, prev State, form validation.Form) (Result, error) {
	in, errs := validation.ValidateUpdateInvoice(form)
	if !errs.Empty() {
		return validationFailed(errs, actionUpdate, entityInvoice), nil
	}

	invoice := &models.Invoice{
		ID:          in.ID,
		CustomerID:  in.CustomerID,
		AmountCents: in.AmountCents,
		Status:      in.Status,
		Date:        in.Date,
	}

	repo := s.repomanager.Invoices(s.db)
	if err := repo.Update(ctx, invoice); err != nil {
		s.logger.Error(ctx, "update invoice failed", "id", in.ID, "error", err)
		return persistenceFailed(actionUpdate, entityInvoice), nil
	}

	s.logger.Info(ctx, "invoice updated", "id", in.ID)
	s.cache.Invalidate(common.InvoicesPath)
	return redirect(common.InvoicesPath), nil
}

// DeleteInvoice removes the invoice. A missing id still succeeds.
func (s *InvoiceService) DeleteInvoice(ctx context.Context, id string) (Result, error) {
	repo := s.repomanager.Invoices(s.db)
	if err := repo.Delete(ctx, id); err != nil {
		s.logger.Error(ctx, "delete invoice failed", "id", id, "error", err)
		return persistenceFailed(actionDelete, entityInvoice), nil
	}

	s.logger.Info(ctx, "invoice deleted", "id", id)
	s.cache.Invalidate(common.InvoicesPath)
	return redirect(common.InvoicesPath), nil
}

func (s *InvoiceService) ListInvoices(ctx context.Context) ([]*models.Invoice, error) {
	return s.repomanager.Invoices(s.db).List(ctx)
}

// GetInvoice returns common.ErrorNotFound when no invoice has the id.
func (s *InvoiceService) GetInvoice(ctx context.Context, id string) (*models.Invoice, error) {
	return s.repomanager.Invoices(s.db).Get(ctx, id)
}
