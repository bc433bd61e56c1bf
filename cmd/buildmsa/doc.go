// Package main hosts the buildmsa CLI entrypoint and command graph.
//
// The Cobra command tree resolves configuration once, applies per-command
// flag overrides and hands off to the internal packages: run drives the
// resumable pipeline, status and reset inspect and rewind its checkpoint
// manifest, and trim, collect and export expose the in-process FASTA steps
// on their own. Keep this package thin and add behaviour to internal/ first.
package main
