package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestQueryError_Format(t *testing.T) {
	err := NewQueryError(OpFindByField, "genre = Fantasy", errors.New("connection reset"))
	want := "findByField(genre = Fantasy): connection reset"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestQueryError_Unwrap(t *testing.T) {
	err := NewQueryError(OpExplain, "title = x", fmt.Errorf("wrap: %w", ErrPlanUnavailable))
	if !errors.Is(err, ErrPlanUnavailable) {
		t.Error("errors.Is(ErrPlanUnavailable) = false")
	}

	wrapped := fmt.Errorf("walkthrough: %w", err)
	qe, ok := AsQueryError(wrapped)
	if !ok {
		t.Fatal("AsQueryError() = false")
	}
	if qe.Op != OpExplain || qe.Input != "title = x" {
		t.Errorf("got %+v", qe)
	}
}

func TestAsQueryError_Other(t *testing.T) {
	if _, ok := AsQueryError(errors.New("plain")); ok {
		t.Error("AsQueryError() = true for plain error")
	}
}
