package services

import "errors"

// Failure kinds reported by the account engine. The HTTP layer maps them to
// response statuses; the engine itself never retries or swallows any of them.
var (
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrSameAccount        = errors.New("can't transfer between same accounts")
	ErrAccountNotFound    = errors.New("account not found")
	ErrInvalidSource      = errors.New("invalid source account")
	ErrInvalidTarget      = errors.New("invalid target account")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrConflict           = errors.New("account changed concurrently")
	ErrInvalidCredentials = errors.New("invalid credentials")
)
