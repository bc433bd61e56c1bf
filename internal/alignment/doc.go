// Package alignment post-processes aligner output.
//
// Trim keeps only the alignment columns where the reference row (row 0, the
// query) carries a residue, so the resulting MSA spans exactly the query's
// footprint. Export re-wraps an alignment to a fixed line width for tools that
// expect conventional FASTA layout.
package alignment
