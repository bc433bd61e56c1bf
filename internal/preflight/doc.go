// Package preflight provides readiness checks for the filesystem paths,
// databases, and binaries a pipeline run depends on.
//
// The "buildmsa check" command prints every result. "buildmsa run" calls
// RunAll first and refuses to start when a check fails, so a missing
// database is reported before hours of search time are spent.
package preflight
