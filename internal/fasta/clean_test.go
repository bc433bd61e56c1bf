package fasta_test

import (
	"testing"

	"buildmsa/internal/fasta"
)

func TestCleanReplacesDigitsAndNonWordBytes(t *testing.T) {
	cases := map[string]string{
		"":           "",
		"ACDEFGHIK":  "ACDEFGHIK",
		"acDE":       "acDE",
		"A1B2":       "AXBX",
		"A-B*C.D_E ": "AXBXCXD_EX",
		"__9":        "__X",
		"Ñ":          "XX",
	}
	for in, want := range cases {
		if got := fasta.Clean(in); got != want {
			t.Fatalf("Clean(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCleanOutputContainsOnlyResidues(t *testing.T) {
	in := "!\"#$%&'()*+,-./0123456789:;<=>?@ABCxyz[\\]^_`{|}~"
	out := fasta.Clean(in)
	if len(out) != len(in) {
		t.Fatalf("length changed: %d -> %d", len(in), len(out))
	}
	for i := 0; i < len(out); i++ {
		c := out[i]
		residue := (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || c == '_'
		if !residue {
			t.Fatalf("non-word byte %q survived at %d in %q", c, i, out)
		}
		orig := in[i]
		if (orig >= 'A' && orig <= 'Z') || (orig >= 'a' && orig <= 'z') || orig == '_' {
			if c != orig {
				t.Fatalf("letter %q changed to %q", orig, c)
			}
		}
	}
}
