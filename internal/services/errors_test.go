package services_test

import (
	"errors"
	"strings"
	"testing"

	"buildmsa/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrSubprocess, "search_nr", "mmseqs search", "failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrSubprocess) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"search_nr", "mmseqs search", "failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsMarker(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrIO) {
		t.Fatalf("expected ErrIO default marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected fallback detail, got %q", err.Error())
	}
}

func TestKindMapping(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{services.Wrap(services.ErrNotFound, "fasta", "open", "", nil), "not_found"},
		{services.Wrap(services.ErrUsage, "cli", "", "missing input", nil), "usage"},
		{services.Wrap(services.ErrSubprocess, "run_aligner", "clustalo", "", nil), "subprocess"},
		{services.Wrap(services.ErrShapeMismatch, "trim_msa", "", "", nil), "shape_mismatch"},
		{services.Wrap(services.ErrIO, "fasta", "append", "", nil), "io"},
		{errors.New("plain"), "internal"},
	}
	for _, tc := range cases {
		if got := services.Kind(tc.err); got != tc.want {
			t.Fatalf("Kind(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}
