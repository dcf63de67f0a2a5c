package validation

import (
	"net/mail"
	"strings"
	"unicode/utf8"
)

const (
	MsgName          = "Please enter a name."
	MsgEmail         = "Please enter a valid email."
	MsgPasswordShort = "Password must be at least 6 characters."
	MsgPasswordLong  = "Password must be at most 72 bytes."
	MsgUserID        = "Missing user id."
)

const (
	MinPasswordLen = 6
	// MaxPasswordBytes is the most bcrypt will look at.
	MaxPasswordBytes = 72
)

// UserInput is a validated user submission. Password is plaintext and must
// only be handed to the hasher.
type UserInput struct {
	ID       string
	Name     string
	Email    string
	Password string
}

func ValidateCreateUser(f Form) (UserInput, FieldErrors) {
	errs := FieldErrors{}
	in := validateUserFields(f, errs)
	return in, errs
}

func ValidateUpdateUser(f Form) (UserInput, FieldErrors) {
	errs := FieldErrors{}

	id, ok := required(f, "id")
	if !ok {
		errs.add("id", MsgUserID)
	}

	in := validateUserFields(f, errs)
	in.ID = id
	return in, errs
}

func validateUserFields(f Form, errs FieldErrors) UserInput {
	var in UserInput

	if v, ok := required(f, "name"); ok {
		in.Name = v
	} else {
		errs.add("name", MsgName)
	}

	if email := strings.TrimSpace(f.Get("email")); IsEmail(email) {
		in.Email = email
	} else {
		errs.add("email", MsgEmail)
	}

	password := f.Get("password")
	if msg := CheckPassword(password); msg != "" {
		errs.add("password", msg)
	} else {
		in.Password = password
	}

	return in
}

// IsEmail accepts a bare address such as "ann@example.com"; display names
// and angle brackets are rejected.
func IsEmail(s string) bool {
	if s == "" {
		return false
	}
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return false
	}
	at := strings.LastIndexByte(s, '@')
	return at > 0 && at < len(s)-1
}

// CheckPassword returns the failure message for password, or "".
func CheckPassword(password string) string {
	if utf8.RuneCountInString(password) < MinPasswordLen {
		return MsgPasswordShort
	}
	if len(password) > MaxPasswordBytes {
		return MsgPasswordLong
	}
	return ""
}
