// Package config loads, normalizes, and validates buildmsa configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// BUILDMSA_DATABASE_ROOT and MMSEQS_PATH. The Config type replaces hardcoded
// tool and database locations so a run is fully described by one value.
//
// Always obtain settings through this package so downstream code receives
// absolute paths and clear validation errors.
package config
