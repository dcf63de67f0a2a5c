// Package services holds the form actions behind the dashboard: each one
// validates a submission, persists it, marks the affected listing stale and
// tells the caller where to go next.
package services

import (
	"fmt"

	"github.com/dmitrijs2005/dashboard/internal/server/validation"
)

// Outcome is the terminal state of a form action.
type Outcome int

const (
	OutcomeRedirect Outcome = iota
	OutcomeValidationFailed
	OutcomePersistenceFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeRedirect:
		return "redirect"
	case OutcomeValidationFailed:
		return "validation_failed"
	case OutcomePersistenceFailed:
		return "persistence_failed"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// State is handed back to the form that was submitted.
type State struct {
	Errors  validation.FieldErrors `json:"errors,omitempty"`
	Message string                 `json:"message,omitempty"`
}

// Result is what a form action produced. RedirectTo is set only when
// Outcome is OutcomeRedirect.
type Result struct {
	Outcome    Outcome
	State      State
	RedirectTo string
}

func redirect(path string) Result {
	return Result{Outcome: OutcomeRedirect, RedirectTo: path}
}

func validationFailed(errs validation.FieldErrors, action, entity string) Result {
	return Result{
		Outcome: OutcomeValidationFailed,
		State: State{
			Errors:  errs,
			Message: fmt.Sprintf("Missing Fields. Failed to %s %s.", action, entity),
		},
	}
}

func persistenceFailed(action, entity string) Result {
	return Result{
		Outcome: OutcomePersistenceFailed,
		State:   State{Message: fmt.Sprintf("Database Error: Failed to %s %s.", action, entity)},
	}
}

const (
	actionCreate = "Create"
	actionUpdate = "Update"
	actionDelete = "Delete"

	entityInvoice = "Invoice"
	entityUser    = "User"
)
