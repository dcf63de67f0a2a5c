package models

// User is a dashboard account. PasswordHash holds the bcrypt digest only and
// is never serialized.
type User struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
}
