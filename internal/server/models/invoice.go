// Package models defines server-side data models persisted in the database.
package models

import "fmt"

// Invoice statuses.
const (
	StatusPending = "pending"
	StatusPaid    = "paid"
)

// Invoice is a billed amount owed by a customer.
type Invoice struct {
	// ID is the server-assigned identifier (UUID).
	ID string `json:"id"`
	// CustomerID references a customer row; it is opaque to this service.
	CustomerID string `json:"customer_id"`
	// AmountCents is the amount in integer cents, always positive.
	AmountCents int64 `json:"amount_cents"`
	// Status is StatusPending or StatusPaid.
	Status string `json:"status"`
	// Date is the day the invoice was issued.
	Date Date `json:"date"`
}

// Dollars re-derives the dollar amount from the stored cents.
func (i Invoice) Dollars() float64 {
	return float64(i.AmountCents) / 100
}

// FormatAmount renders the amount as dollars with two decimals, e.g. "10.00".
func (i Invoice) FormatAmount() string {
	sign := ""
	c := i.AmountCents
	if c < 0 {
		sign, c = "-", -c
	}
	return fmt.Sprintf("%s%d.%02d", sign, c/100, c%100)
}

// IsValidStatus reports whether s is one of the known invoice statuses.
func IsValidStatus(s string) bool {
	return s == StatusPending || s == StatusPaid
}
