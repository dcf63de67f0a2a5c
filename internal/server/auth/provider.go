// Package auth verifies sign-in credentials and manages session tokens.
package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/dashboard/internal/common"
	"github.com/dmitrijs2005/dashboard/internal/server/models"
	"github.com/dmitrijs2005/dashboard/internal/server/validation"
	"golang.org/x/crypto/bcrypt"
)

// ErrorType is the discoverable kind of a provider Error.
type ErrorType string

const (
	CredentialsSignin  ErrorType = "CredentialsSignin"
	CallbackRouteError ErrorType = "CallbackRouteError"
)

// Error is the typed failure a Provider reports.
type Error struct {
	Type ErrorType
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return string(e.Type)
	}
	return fmt.Sprintf("%s: %v", e.Type, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

var errBadCredentials = errors.New("invalid email or password")

type Credentials struct {
	Email    string
	Password string
}

// Provider verifies credentials and establishes a session.
type Provider interface {
	SignIn(ctx context.Context, c Credentials) (*Session, error)
}

type UserFinder interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// CredentialsProvider signs users in with email and password.
type CredentialsProvider struct {
	users    UserFinder
	hasher   Hasher
	sessions *SessionManager
}

func NewCredentialsProvider(users UserFinder, hasher Hasher, sessions *SessionManager) *CredentialsProvider {
	return &CredentialsProvider{users: users, hasher: hasher, sessions: sessions}
}

func (p *CredentialsProvider) SignIn(ctx context.Context, c Credentials) (*Session, error) {
	if !validation.IsEmail(c.Email) || validation.CheckPassword(c.Password) != "" {
		return nil, &Error{Type: CredentialsSignin, Err: errBadCredentials}
	}

	user, err := p.users.GetByEmail(ctx, c.Email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, &Error{Type: CredentialsSignin, Err: errBadCredentials}
		}
		return nil, &Error{Type: CallbackRouteError, Err: err}
	}

	if err := p.hasher.Compare(user.PasswordHash, c.Password); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, &Error{Type: CredentialsSignin, Err: errBadCredentials}
		}
		return nil, &Error{Type: CallbackRouteError, Err: err}
	}

	return p.sessions.Issue(user.ID, user.Email)
}
