package domain

import (
	"errors"
	"testing"
)

func TestAccountState_Apply(t *testing.T) {
	cases := []struct {
		from    AccountState
		action  Action
		to      AccountState
		changed bool
	}{
		{StateActive, ActionDeactivate, StateInactive, true},
		{StateInactive, ActionActivate, StateActive, true},
		{StateInactive, ActionDeactivate, StateInactive, false},
		{StateActive, ActionActivate, StateActive, false},
	}
	for _, tc := range cases {
		to, changed, err := tc.from.Apply(tc.action)
		if err != nil {
			t.Fatalf("%s --%s--> unexpected error: %v", tc.from, tc.action, err)
		}
		if to != tc.to || changed != tc.changed {
			t.Errorf("%s --%s--> got (%s, %v), want (%s, %v)", tc.from, tc.action, to, changed, tc.to, tc.changed)
		}
	}
}

func TestAccountState_ApplyRejectsNonStateActions(t *testing.T) {
	_, _, err := StateActive.Apply(ActionDelete)
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected invalid argument, got %v", err)
	}
}

func TestValidationError_IsInvalidArgument(t *testing.T) {
	err := error(&ValidationError{Fields: []FieldError{
		{Field: "email", Message: "must be a valid email"},
		{Field: "firstname", Message: "is required"},
	}})
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("validation error must match ErrInvalidArgument")
	}
	var ve *ValidationError
	if !errors.As(err, &ve) || len(ve.Details()) != 2 {
		t.Fatalf("expected both field messages, got %v", err)
	}
}
