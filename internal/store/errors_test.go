package store

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsNotFoundError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "nil error",
			err:      nil,
			expected: false,
		},
		{
			name:     "generic error",
			err:      errors.New("some error"),
			expected: false,
		},
		{
			name:     "ErrNotFound",
			err:      ErrNotFound,
			expected: true,
		},
		{
			name:     "wrapped ErrNotFound",
			err:      fmt.Errorf("failed to do something: %w", ErrNotFound),
			expected: true,
		},
		{
			name:     "ErrDeckNotFound",
			err:      ErrDeckNotFound,
			expected: true,
		},
		{
			name:     "wrapped ErrCardNotFound",
			err:      fmt.Errorf("failed to find card: %w", ErrCardNotFound),
			expected: true,
		},
		{
			name:     "ErrScheduleNotFound inside StoreError",
			err:      NewStoreError("card_schedule", "get", "lookup failed", ErrScheduleNotFound),
			expected: true,
		},
		{
			name:     "ErrDuplicate",
			err:      ErrDuplicate,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsNotFoundError(tt.err); got != tt.expected {
				t.Errorf("IsNotFoundError() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestIsDuplicateError(t *testing.T) {
	if !IsDuplicateError(fmt.Errorf("insert: %w", ErrDuplicate)) {
		t.Error("wrapped ErrDuplicate should be a duplicate error")
	}
	if IsDuplicateError(ErrNotFound) {
		t.Error("ErrNotFound should not be a duplicate error")
	}
}

func TestIsStaleWrite(t *testing.T) {
	if !IsStaleWrite(fmt.Errorf("update schedule: %w", ErrStaleWrite)) {
		t.Error("wrapped ErrStaleWrite should be detected")
	}
	if IsStaleWrite(ErrScheduleNotFound) {
		t.Error("not-found is not a stale write")
	}
	if IsStaleWrite(nil) {
		t.Error("nil is not a stale write")
	}
}
