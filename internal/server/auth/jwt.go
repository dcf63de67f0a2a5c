package auth

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/dashboard/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the signed-in user alongside the registered claims.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"uid"`
	Email  string `json:"email"`
}

// Session is an established sign-in.
type Session struct {
	UserID    string
	Email     string
	Token     string
	ExpiresAt time.Time
}

// SessionManager issues and verifies HS256 session tokens.
type SessionManager struct {
	secretKey []byte
	validity  time.Duration
	now       func() time.Time
}

func NewSessionManager(secretKey []byte, validity time.Duration) *SessionManager {
	return &SessionManager{secretKey: secretKey, validity: validity, now: time.Now}
}

func (m *SessionManager) Validity() time.Duration {
	return m.validity
}

func (m *SessionManager) Issue(userID, email string) (*Session, error) {
	expiresAt := m.now().Add(m.validity)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(m.now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		UserID: userID,
		Email:  email,
	})

	tokenString, err := token.SignedString(m.secretKey)
	if err != nil {
		return nil, fmt.Errorf("sign session token: %w", err)
	}

	return &Session{UserID: userID, Email: email, Token: tokenString, ExpiresAt: expiresAt}, nil
}

// Parse verifies the token and returns the session it encodes. Every
// failure is reported as common.ErrInvalidToken.
func (m *SessionManager) Parse(tokenString string) (*Session, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return m.secretKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	if !token.Valid || claims.UserID == "" {
		return nil, common.ErrInvalidToken
	}

	return &Session{
		UserID:    claims.UserID,
		Email:     claims.Email,
		Token:     tokenString,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
