// Package fasta reads and writes the FASTA text used between pipeline stages.
//
// Reader yields records lazily in file order through an iter.Seq2. It skips
// blank and '#' comment lines, uppercases sequence fragments, and by default
// replaces digits and every byte outside [A-Za-z_] with 'X'. The last record is emitted when
// the stream ends even if it is empty; IsSentinel identifies that record so
// callers can drop it.
//
// Append and Writer serialize records as a header line followed by a single
// sequence line. Append never truncates its destination.
package fasta
