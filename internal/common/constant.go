package common

// SessionCookieName is the cookie carrying the signed session token.
const SessionCookieName = "session"

// Logical listing paths. Mutations invalidate and redirect to these.
const (
	InvoicesPath = "/dashboard/invoices"
	UsersPath    = "/dashboard/users"
	HomePath     = "/dashboard"
	LoginPath    = "/login"
)
