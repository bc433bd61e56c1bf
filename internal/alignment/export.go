package alignment

import (
	"fmt"
	"io"
	"strings"

	"github.com/biogo/biogo/alphabet"
	biofasta "github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/seq/linear"

	"buildmsa/internal/fasta"
	"buildmsa/internal/services"
)

// DefaultExportWidth is the residue count per line used by Export.
const DefaultExportWidth = 60

// Export writes rows to w as FASTA wrapped at width residues per line.
func Export(w io.Writer, rows []fasta.Record, width int) error {
	if width <= 0 {
		width = DefaultExportWidth
	}
	writer := biofasta.NewWriter(w, width)
	for i, row := range rows {
		if _, err := writer.Write(toLinear(row)); err != nil {
			return services.Wrap(services.ErrIO, "alignment", "export", fmt.Sprintf("write row %d", i), err)
		}
	}
	return nil
}

func toLinear(rec fasta.Record) *linear.Seq {
	id, desc, _ := strings.Cut(rec.Header, " ")
	s := linear.NewSeq(id, alphabet.BytesToLetters([]byte(rec.Sequence)), alphabet.Protein)
	s.Desc = desc
	return s
}
