package account

import "errors"

var (
	ErrEmailTaken = errors.New("email is already registered")
	// ErrInvalidCredentials covers both unknown email and wrong password so
	// responses do not leak which accounts exist.
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountNotFound = errors.New("account not found")
	// ErrNoBusiness means the credentials were fine but no company is
	// registered for the account, so no business-scoped token can be issued.
	ErrNoBusiness = errors.New("no business registered for this account")
)

type Account struct {
	Id           string
	Email        string
	FullName     string
	PasswordHash string
}

// AuthResult is what a successful registration or login returns.
type AuthResult struct {
	Token      string
	AccountId  string
	BusinessId string
	Email      string
	FullName   string
}
