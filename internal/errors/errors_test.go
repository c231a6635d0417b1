package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNotFoundError(t *testing.T) {
	err := NewNotFoundError("item", 42)

	if err.Error() != "item with ID 42 not found" {
		t.Errorf("unexpected message: %s", err.Error())
	}
	if !errors.Is(err, ErrNotFound) {
		t.Error("NotFoundError should match ErrNotFound")
	}
	if errors.Is(err, ErrAlreadyExists) {
		t.Error("NotFoundError should not match ErrAlreadyExists")
	}
}

func TestAlreadyExistsError(t *testing.T) {
	err := NewAlreadyExistsError("category", "books")

	if err.Error() != "category named 'books' already exists" {
		t.Errorf("unexpected message: %s", err.Error())
	}
	if !errors.Is(err, ErrAlreadyExists) {
		t.Error("AlreadyExistsError should match ErrAlreadyExists")
	}
}

func TestWrappedSentinels(t *testing.T) {
	wrapped := fmt.Errorf("searching catalog: %w", ErrNoMatches)
	if !errors.Is(wrapped, ErrNoMatches) {
		t.Error("wrapped ErrNoMatches should still match")
	}

	deep := fmt.Errorf("handler: %w", fmt.Errorf("service: %w", NewNotFoundError("collection", 7)))
	if !errors.Is(deep, ErrNotFound) {
		t.Error("deeply wrapped NotFoundError should match ErrNotFound")
	}

	var nfe *NotFoundError
	if !errors.As(deep, &nfe) {
		t.Fatal("errors.As should extract the typed error")
	}
	if nfe.Kind != "collection" || nfe.ID != 7 {
		t.Errorf("unexpected fields: %+v", nfe)
	}
}
