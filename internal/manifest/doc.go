// Package manifest persists pipeline checkpoints in a per-output-directory
// SQLite database.
//
// Each stage owns one row recording its artifact path, lifecycle status and
// the size and SHA256 digest captured when the artifact was committed. The
// driver consults these rows on resume to decide whether an artifact on disk
// is trustworthy, which lets a crashed run be told apart from a finished one.
// A runs table keeps one row per driver invocation.
package manifest
