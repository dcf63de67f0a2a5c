package invoices

import (
	"context"

	"github.com/dmitrijs2005/dashboard/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, invoice *models.Invoice) (*models.Invoice, error)
	Update(ctx context.Context, invoice *models.Invoice) error
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*models.Invoice, error)
	List(ctx context.Context) ([]*models.Invoice, error)
}
