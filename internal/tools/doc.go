// Package tools runs the external search and alignment binaries.
//
// Executor abstracts process execution so the mmseqs and clustalo clients can
// be exercised with stubs. CommandExecutor streams stdout and stderr line by
// line to a callback and, on a non-zero exit, returns an ExitError carrying
// the exit code and the tail of stderr wrapped in services.ErrSubprocess.
package tools
