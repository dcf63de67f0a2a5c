// Package invoices persists invoices with single, parameterized statements.
package invoices

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/dashboard/internal/common"
	"github.com/dmitrijs2005/dashboard/internal/dbx"
	"github.com/dmitrijs2005/dashboard/internal/server/models"
	"github.com/google/uuid"
)

type SQLRepository struct {
	db dbx.DBTX
}

func NewSQLRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db}
}

// Create inserts the invoice, assigning a new UUID when ID is empty.
func (r *SQLRepository) Create(ctx context.Context, invoice *models.Invoice) (*models.Invoice, error) {
	if invoice.ID == "" {
		invoice.ID = uuid.NewString()
	}

	query :=
		`INSERT INTO invoices (id, customer_id, amount, status, date)
		 VALUES (?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		invoice.ID, invoice.CustomerID, invoice.AmountCents, invoice.Status, invoice.Date)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return invoice, nil
}

// Update overwrites every column of the row with the invoice's ID.
// Updating a missing row is not an error.
func (r *SQLRepository) Update(ctx context.Context, invoice *models.Invoice) error {
	query :=
		`UPDATE invoices
		 SET customer_id = ?, amount = ?, status = ?, date = ?
		 WHERE id = ?`

	_, err := r.db.ExecContext(ctx, query,
		invoice.CustomerID, invoice.AmountCents, invoice.Status, invoice.Date, invoice.ID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

// Delete removes the invoice. Deleting a missing row is a no-op.
func (r *SQLRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM invoices WHERE id = ?`, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *SQLRepository) Get(ctx context.Context, id string) (*models.Invoice, error) {
	query :=
		`SELECT id, customer_id, amount, status, date FROM invoices
		 WHERE id = ?`

	invoice := &models.Invoice{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&invoice.ID, &invoice.CustomerID, &invoice.AmountCents, &invoice.Status, &invoice.Date)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return invoice, nil
}

// List returns all invoices, newest first.
func (r *SQLRepository) List(ctx context.Context) ([]*models.Invoice, error) {
	query :=
		`SELECT id, customer_id, amount, status, date FROM invoices
		 ORDER BY date DESC, id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Invoice, 0)
	for rows.Next() {
		invoice := &models.Invoice{}
		if err := rows.Scan(&invoice.ID, &invoice.CustomerID, &invoice.AmountCents, &invoice.Status, &invoice.Date); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, invoice)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}
