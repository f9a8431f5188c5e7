package domain

import "errors"

var (
	// ErrInvalidAmount is returned when an operation amount is not a
	// positive value with at most two fraction digits.
	ErrInvalidAmount = errors.New("invalid amount: must be positive")

	// ErrAccountNotFound is returned when an account doesn't exist.
	ErrAccountNotFound = errors.New("account not found")

	// ErrSourceAccountNotFound is returned when the transfer source
	// account doesn't exist.
	ErrSourceAccountNotFound = errors.New("source account not found")

	// ErrDestinationAccountNotFound is returned when the transfer
	// destination account doesn't exist.
	ErrDestinationAccountNotFound = errors.New("destination account not found")

	// ErrInsufficientFunds is returned when the account balance doesn't
	// cover a withdrawal or transfer.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrSameAccount is returned when a transfer names the same account
	// on both sides.
	ErrSameAccount = errors.New("source and destination must be different accounts")

	// ErrStorageUnavailable is returned when the underlying store could
	// not be reached or the unit of work could not commit. It is the only
	// error worth retrying by the caller.
	ErrStorageUnavailable = errors.New("storage unavailable")
)
