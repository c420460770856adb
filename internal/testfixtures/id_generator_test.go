package testfixtures

import (
	"testing"

	"github.com/google/uuid"
)

func TestIDGeneratorSequence(t *testing.T) {
	gen := NewIDGenerator("reservation")

	if first, second := gen.Next(), gen.Next(); first != "reservation-1" || second != "reservation-2" {
		t.Fatalf("unexpected identifiers: %q, %q", first, second)
	}

	gen.Reset()
	if next := gen.Next(); next != "reservation-1" {
		t.Fatalf("expected reservation-1 after reset, got %q", next)
	}
}

func TestUUIDGeneratorIsReproducible(t *testing.T) {
	a, b := NewUUIDGenerator("seed"), NewUUIDGenerator("seed")

	first := a.Next()
	if _, err := uuid.Parse(first); err != nil {
		t.Fatalf("expected a UUID, got %q: %v", first, err)
	}
	if first != b.Next() {
		t.Fatal("same seed should yield the same sequence")
	}
	if first == a.Next() {
		t.Fatal("consecutive ids must differ")
	}
}
