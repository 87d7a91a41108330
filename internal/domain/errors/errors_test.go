package errors

import (
	stdErrors "errors"
	"fmt"
	"testing"
)

func TestSentinelErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
	}{
		{"already exists", ErrAlreadyExists},
		{"not found", ErrNotFound},
		{"account not found", ErrAccountNotFound},
		{"insufficient funds", ErrInsufficientFunds},
		{"invalid amount", ErrInvalidAmount},
		{"key required", ErrIdempotencyKeyRequired},
		{"request not found", ErrRequestNotFound},
		{"failed", ErrWithdrawalFailed},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if !stdErrors.Is(tc.err, tc.err) {
				t.Fatalf("expected error to match itself: %v", tc.err)
			}
		})
	}
}

func TestTypedErrorMatching(t *testing.T) {
	stored := Validation("Account.InsufficientFunds", "Insufficient funds.")
	if !stdErrors.Is(stored, ErrInsufficientFunds) {
		t.Fatal("expected equal kind and code to match")
	}
	if stdErrors.Is(ErrAccountNotFound, ErrRequestNotFound) {
		t.Fatal("expected different codes not to match")
	}

	wrapped := fmt.Errorf("withdraw: %w", ErrAccountNotFound)
	if !stdErrors.Is(wrapped, ErrAccountNotFound) {
		t.Fatal("expected wrapped error to match")
	}
	if ErrAccountNotFound.Error() != "Account.NotFound: Account not found." {
		t.Fatalf("unexpected message %q", ErrAccountNotFound.Error())
	}
}

func TestKindOf(t *testing.T) {
	cases := []struct {
		err  error
		kind Kind
		name string
	}{
		{ErrAccountNotFound, KindNotFound, "NotFound"},
		{ErrInsufficientFunds, KindValidation, "Validation"},
		{ErrWithdrawalFailed, KindFailure, "Failure"},
		{fmt.Errorf("ctx: %w", ErrInvalidAmount), KindValidation, "Validation"},
		{stdErrors.New("boom"), KindFailure, "Failure"},
	}

	for _, tc := range cases {
		if got := KindOf(tc.err); got != tc.kind {
			t.Fatalf("expected %v for %v, got %v", tc.kind, tc.err, got)
		}
		if tc.kind.String() != tc.name {
			t.Fatalf("expected kind name %q, got %q", tc.name, tc.kind.String())
		}
	}
}
