// Package pipeline drives the eight stages that turn one query sequence into
// a trimmed multiple sequence alignment.
//
// The Driver walks the stages in a fixed order. Each stage owns one artifact
// inside the output directory, and the manifest records whether that artifact
// was committed by a finished run. On resume the driver skips stages whose
// artifact verifies against the manifest, discards artifacts left behind by
// an interrupted stage, and rebuilds everything else. Tool stages delegate to
// the mmseqs and clustalo clients; the collector and trimmer stages run in
// process and publish their output through a partial file and rename.
//
// A file lock on the output directory keeps two drivers from interleaving.
package pipeline
