package validation

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/dashboard/internal/server/models"
)

const (
	MsgCustomer     = "Please select a customer."
	MsgAmount       = "Please enter an amount greater than $0."
	MsgAmountTooBig = "Please enter a smaller amount."
	MsgStatus       = "Please select an invoice status."
	MsgInvoiceID    = "Missing invoice id."
	MsgDate         = "Please enter a valid date."
)

// maxCents keeps the amount exactly representable as a float64 and an int64.
const maxCents = 1 << 53

// InvoiceInput is a validated invoice submission.
type InvoiceInput struct {
	ID          string
	CustomerID  string
	AmountCents int64
	Status      string
	Date        models.Date
}

// ValidateCreateInvoice checks customerId, amount and status.
func ValidateCreateInvoice(f Form) (InvoiceInput, FieldErrors) {
	errs := FieldErrors{}
	in := validateInvoiceFields(f, errs)
	return in, errs
}

// ValidateUpdateInvoice additionally requires id and date.
func ValidateUpdateInvoice(f Form) (InvoiceInput, FieldErrors) {
	errs := FieldErrors{}

	id, ok := required(f, "id")
	if !ok {
		errs.add("id", MsgInvoiceID)
	}

	in := validateInvoiceFields(f, errs)
	in.ID = id

	d, err := models.ParseDate(strings.TrimSpace(f.Get("date")))
	if err != nil {
		errs.add("date", MsgDate)
	}
	in.Date = d

	return in, errs
}

func validateInvoiceFields(f Form, errs FieldErrors) InvoiceInput {
	var in InvoiceInput

	if v, ok := required(f, "customerId"); ok {
		in.CustomerID = v
	} else {
		errs.add("customerId", MsgCustomer)
	}

	if cents, msg := parseCents(f.Get("amount")); msg != "" {
		errs.add("amount", msg)
	} else {
		in.AmountCents = cents
	}

	status := f.Get("status")
	if models.IsValidStatus(status) {
		in.Status = status
	} else {
		errs.add("status", MsgStatus)
	}

	return in
}

// parseCents converts a dollar amount to integer cents, rounding half away
// from zero, so "10.1" becomes 1010.
func parseCents(raw string) (int64, string) {
	amount, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) && amount > 0 {
			return 0, MsgAmountTooBig
		}
		return 0, MsgAmount
	}
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return 0, MsgAmount
	}

	cents := math.Round(amount * 100)
	if cents < 1 {
		return 0, MsgAmount
	}
	if cents > maxCents {
		return 0, MsgAmountTooBig
	}
	return int64(cents), ""
}
