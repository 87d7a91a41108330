package errors

import "errors"

var (
	ErrAlreadyExists = errors.New("already exists")
	ErrNotFound      = errors.New("not found")
)

// Kind classifies errors surfaced by the withdrawal flow.
type Kind int

const (
	KindFailure Kind = iota
	KindNotFound
	KindValidation
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "NotFound"
	case KindValidation:
		return "Validation"
	default:
		return "Failure"
	}
}

// Error is a typed outcome with a stable code and a description safe to expose.
type Error struct {
	Kind        Kind
	Code        string
	Description string
}

func (e *Error) Error() string {
	return e.Code + ": " + e.Description
}

// Is matches errors with the same kind and code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Code == t.Code
}

// NotFound builds an error for a missing resource.
func NotFound(code, description string) *Error {
	return &Error{Kind: KindNotFound, Code: code, Description: description}
}

// Validation builds an error for a business rule violation.
func Validation(code, description string) *Error {
	return &Error{Kind: KindValidation, Code: code, Description: description}
}

// Failure builds an error for an unexpected fault.
func Failure(code, description string) *Error {
	return &Error{Kind: KindFailure, Code: code, Description: description}
}

var (
	ErrAccountNotFound        = NotFound("Account.NotFound", "Account not found.")
	ErrInsufficientFunds      = Validation("Account.InsufficientFunds", "Insufficient funds.")
	ErrInvalidAmount          = Validation("Withdrawal.InvalidAmount", "Amount must be positive, below 10^15, with at most 4 decimal places.")
	ErrIdempotencyKeyRequired = Validation("Withdrawal.IdempotencyKeyRequired", "Idempotency key is required.")
	ErrRequestNotFound        = NotFound("Withdrawal.NotFound", "Withdrawal request not found.")
	ErrWithdrawalFailed       = Failure("Withdrawal.Failed", "An error occurred during withdrawal.")
)

// KindOf returns the kind of err, treating untyped errors as failures.
func KindOf(err error) Kind {
	var typed *Error
	if errors.As(err, &typed) {
		return typed.Kind
	}
	return KindFailure
}
