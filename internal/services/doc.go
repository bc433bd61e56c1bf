// Package services defines shared utilities consumed by the pipeline stage
// handlers and the external tool clients.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, stage names, and correlation
//     identifiers for logging.
//   - Structured error markers plus the Wrap helper so every failure carries
//     its stage and operation and can be classified with errors.Is.
//
// Use these helpers when wiring new stage logic so error handling and
// observability stay uniform across the pipeline.
package services
