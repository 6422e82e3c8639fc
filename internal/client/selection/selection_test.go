package selection

import (
	"errors"
	"testing"
)

func pdf(name string, size int64) Candidate {
	return Candidate{Name: name, SizeBytes: size, MediaType: "application/pdf"}
}

func TestAddDeduplicatesByName(t *testing.T) {
	s := NewStore()
	if err := s.Add(pdf("a.pdf", 10), pdf("b.pdf", 20), pdf("a.pdf", 999)); err != nil {
		t.Fatalf("Add() unexpected error: %v", err)
	}
	got := s.List()
	if len(got) != 2 {
		t.Fatalf("List() len = %d, want 2", len(got))
	}
	if got[0].Name != "a.pdf" || got[1].Name != "b.pdf" {
		t.Fatalf("List() order = %q, %q; want a.pdf, b.pdf", got[0].Name, got[1].Name)
	}
	if got[0].SizeBytes != 10 {
		t.Fatalf("duplicate replaced the first entry: size = %d, want 10", got[0].SizeBytes)
	}
}

func TestAddPreservesFirstSeenOrderAcrossCalls(t *testing.T) {
	s := NewStore()
	if err := s.Add(pdf("c.pdf", 1)); err != nil {
		t.Fatalf("Add() error: %v", err)
	}
	if err := s.Add(pdf("a.pdf", 2), pdf("c.pdf", 3), pdf("b.pdf", 4)); err != nil {
		t.Fatalf("Add() error: %v", err)
	}
	want := []string{"c.pdf", "a.pdf", "b.pdf"}
	got := s.List()
	if len(got) != len(want) {
		t.Fatalf("List() len = %d, want %d", len(got), len(want))
	}
	for i, name := range want {
		if got[i].Name != name {
			t.Fatalf("List()[%d] = %q, want %q", i, got[i].Name, name)
		}
	}
}

func TestAddRejectsFullyNonPDFBatch(t *testing.T) {
	s := NewStore()
	err := s.Add(
		Candidate{Name: "x.txt", MediaType: "text/plain"},
		Candidate{Name: "y.png", MediaType: "image/png"},
	)
	if !errors.Is(err, ErrNoValidFiles) {
		t.Fatalf("Add() error = %v, want ErrNoValidFiles", err)
	}
	if s.Len() != 0 {
		t.Fatalf("store mutated by rejected batch: len = %d", s.Len())
	}
}

func TestAddSkipsNonPDFWithinMixedBatch(t *testing.T) {
	s := NewStore()
	if err := s.Add(Candidate{Name: "x.txt", MediaType: "text/plain"}, pdf("a.pdf", 10)); err != nil {
		t.Fatalf("Add() mixed batch error: %v", err)
	}
	got := s.List()
	if len(got) != 1 || got[0].Name != "a.pdf" {
		t.Fatalf("List() = %#v, want just a.pdf", got)
	}
}

func TestIsPDFHandlesParameters(t *testing.T) {
	c := Candidate{Name: "a.pdf", MediaType: "Application/PDF; charset=binary"}
	if !c.IsPDF() {
		t.Fatalf("IsPDF() = false for parameterized media type")
	}
}

func TestRemoveShiftsIndices(t *testing.T) {
	s := NewStore()
	if err := s.Add(pdf("a.pdf", 1), pdf("b.pdf", 2), pdf("c.pdf", 3)); err != nil {
		t.Fatalf("Add() error: %v", err)
	}
	s.Remove(1)
	got := s.List()
	if len(got) != 2 {
		t.Fatalf("List() len = %d, want 2", len(got))
	}
	if got[0].Name != "a.pdf" || got[1].Name != "c.pdf" {
		t.Fatalf("List() after Remove(1) = %q, %q; want a.pdf, c.pdf", got[0].Name, got[1].Name)
	}
}

func TestRemoveOutOfRangeIsNoOp(t *testing.T) {
	s := NewStore()
	if err := s.Add(pdf("a.pdf", 1)); err != nil {
		t.Fatalf("Add() error: %v", err)
	}
	s.Remove(-1)
	s.Remove(5)
	if s.Len() != 1 {
		t.Fatalf("Remove out of range mutated store: len = %d", s.Len())
	}
}

func TestClear(t *testing.T) {
	s := NewStore()
	if err := s.Add(pdf("a.pdf", 1), pdf("b.pdf", 2)); err != nil {
		t.Fatalf("Add() error: %v", err)
	}
	s.Clear()
	if s.Len() != 0 {
		t.Fatalf("Clear() left %d entries", s.Len())
	}
	s.Clear()
	if s.Len() != 0 {
		t.Fatalf("second Clear() not a no-op")
	}
}

func TestListReturnsCopy(t *testing.T) {
	s := NewStore()
	if err := s.Add(pdf("a.pdf", 1), pdf("b.pdf", 2)); err != nil {
		t.Fatalf("Add() error: %v", err)
	}
	view := s.List()
	view[0] = pdf("mutated.pdf", 0)
	if s.List()[0].Name != "a.pdf" {
		t.Fatalf("List() exposed internal slice")
	}
}
