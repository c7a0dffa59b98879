package models

// User is an API account. Only the bcrypt hash of the password is kept;
// the json tag keeps it out of every response body.
type User struct {
	ID           int    `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
}
