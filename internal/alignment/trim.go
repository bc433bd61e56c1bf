package alignment

import (
	"fmt"
	"os"

	"buildmsa/internal/fasta"
	"buildmsa/internal/services"
)

// Trim removes every column where rows[0] has a gap. All rows must have the
// same length; otherwise Trim fails with services.ErrShapeMismatch.
func Trim(rows []fasta.Record) ([]fasta.Record, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	if err := checkShape(rows); err != nil {
		return nil, err
	}

	ref := rows[0].Sequence
	keep := make([]int, 0, len(ref))
	for col := 0; col < len(ref); col++ {
		if ref[col] != fasta.Gap {
			keep = append(keep, col)
		}
	}

	out := make([]fasta.Record, len(rows))
	for i, row := range rows {
		if len(keep) == len(ref) {
			out[i] = row
			continue
		}
		buf := make([]byte, len(keep))
		for j, col := range keep {
			buf[j] = row.Sequence[col]
		}
		out[i] = fasta.Record{Header: row.Header, Sequence: string(buf)}
	}
	return out, nil
}

func checkShape(rows []fasta.Record) error {
	width := len(rows[0].Sequence)
	for i, row := range rows[1:] {
		if len(row.Sequence) != width {
			return services.Wrap(services.ErrShapeMismatch, "alignment", "trim",
				fmt.Sprintf("row %d (%s) has length %d, reference has %d", i+1, row.Header, len(row.Sequence), width), nil)
		}
	}
	return nil
}

// ReadAligned parses aligner output without residue cleaning and drops the
// trailing empty record.
func ReadAligned(path string) ([]fasta.Record, error) {
	return fasta.ReadAll(path, fasta.WithClean(false), fasta.WithoutTrailingEmpty())
}

// TrimFile trims the alignment at in and appends the result to out. An empty
// out writes to stdout.
func TrimFile(in, out string) error {
	rows, err := ReadAligned(in)
	if err != nil {
		return err
	}
	trimmed, err := Trim(rows)
	if err != nil {
		return err
	}
	if out != "" {
		if _, err := os.Stat(out); err == nil {
			return services.Wrap(services.ErrValidation, "alignment", "trim", "output "+out+" already exists", nil)
		}
	}
	return fasta.Append(out, trimmed...)
}
