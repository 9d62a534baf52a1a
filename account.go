package newswire

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// An Account is a set of login credentials. Passwords are only ever stored
// hashed.
type Account struct {
	ID           int64     `db:"id"`
	Username     string    `db:"username"`
	PasswordHash string    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
}

// CheckPassword reports whether the given clear-text password matches the
// account's hash.
func (a *Account) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)) == nil
}

// HashPassword hashes a clear-text password for storage on an Account.
func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// An Author is the byline identity owning stories. There is exactly one per
// account, created when the account is provisioned.
type Author struct {
	ID        int64  `db:"id"`
	AccountID int64  `db:"account_id"`
	Username  string `db:"username"`
}
