package domain

import "errors"

var (
	// ErrInvalidAmount indicates a missing or non-positive transfer amount.
	ErrInvalidAmount = errors.New("amount must be positive")
	// ErrAccountNotFound indicates no account row matched the given owner.
	ErrAccountNotFound = errors.New("account not found")
	// ErrInsufficientFunds indicates the debit would overdraw the sender.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrSimulatedFailure is the fault injected between debit and credit.
	ErrSimulatedFailure = errors.New("simulated failure between operations")
	// ErrWriterFailed indicates the concurrent writer transaction did not
	// commit its mutation, so the anomaly verdict would be meaningless.
	ErrWriterFailed = errors.New("writer transaction failed")
	// ErrUnknownIsolationLevel indicates an unparseable isolation level name.
	ErrUnknownIsolationLevel = errors.New("unknown isolation level")
)
