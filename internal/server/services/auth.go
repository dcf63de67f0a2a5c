package services

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/dashboard/internal/logging"
	"github.com/dmitrijs2005/dashboard/internal/server/auth"
	"github.com/dmitrijs2005/dashboard/internal/server/validation"
)

const (
	MsgInvalidCredentials = "Invalid credentials."
	MsgSomethingWentWrong = "Something went wrong."
)

// SignInResult carries either the new session or the message to show on the
// sign-in form.
type SignInResult struct {
	Session *auth.Session
	Message string
}

type AuthService struct {
	provider auth.Provider
	logger   logging.Logger
}

func NewAuthService(provider auth.Provider, logger logging.Logger) *AuthService {
	return &AuthService{provider: provider, logger: logger.With("module", "auth")}
}

// Authenticate signs in with the submitted email and password. Provider
// errors of a declared type become a message; anything else is returned.
func (s *AuthService) Authenticate(ctx context.Context, prev string, form validation.Form) (SignInResult, error) {
	creds := auth.Credentials{Email: form.Get("email"), Password: form.Get("password")}

	session, err := s.provider.SignIn(ctx, creds)
	if err == nil {
		s.logger.Info(ctx, "signed in", "user_id", session.UserID)
		return SignInResult{Session: session}, nil
	}

	var aerr *auth.Error
	if !errors.As(err, &aerr) {
		return SignInResult{}, err
	}

	switch aerr.Type {
	case auth.CredentialsSignin:
		s.logger.Info(ctx, "sign-in rejected")
		return SignInResult{Message: MsgInvalidCredentials}, nil
	default:
		s.logger.Error(ctx, "sign-in failed", "type", string(aerr.Type), "error", aerr.Err)
		return SignInResult{Message: MsgSomethingWentWrong}, nil
	}
}
