// Package mmseqs mediates access to the MMseqs2 CLI used for database
// creation, iterative profile search, and hit extraction.
//
// Each method maps to exactly one mmseqs subcommand and returns once the
// process exits. A non-zero exit surfaces as a tools.ExitError tagged with
// services.ErrSubprocess.
package mmseqs

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"buildmsa/internal/tools"
)

// SearchOptions carries the tuning flags passed to `mmseqs search`.
type SearchOptions struct {
	Threads          int
	SplitMemoryLimit string
	NumIterations    int
	MaxSeqs          int
	Sensitivity      float64
	MaxSeqID         float64
}

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec tools.Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// WithOutput forwards every tool output line to fn.
func WithOutput(fn func(tools.Stream, string)) Option {
	return func(c *Client) {
		c.onLine = fn
	}
}

// WithTimeout bounds each invocation. Zero disables the limit.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// Client wraps mmseqs CLI interactions.
type Client struct {
	binary  string
	exec    tools.Executor
	onLine  func(tools.Stream, string)
	timeout time.Duration
}

// New constructs an mmseqs client for binary.
func New(binary string, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("mmseqs binary required")
	}
	client := &Client{binary: binary, exec: tools.CommandExecutor{}}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Binary returns the executable the client invokes.
func (c *Client) Binary() string {
	return c.binary
}

// CreateDB indexes a FASTA file as an mmseqs sequence database.
func (c *Client) CreateDB(ctx context.Context, fastaPath, dbPath string) error {
	return c.run(ctx, "createdb", fastaPath, dbPath)
}

// SearchNR runs the iterative profile search of the query database against
// the non-redundant target.
func (c *Client) SearchNR(ctx context.Context, queryDB, targetDB, resultDB, tmpDir string, opts SearchOptions) error {
	args := []string{queryDB, targetDB, resultDB, tmpDir}
	if opts.SplitMemoryLimit != "" {
		args = append(args, "--split-memory-limit", opts.SplitMemoryLimit)
	}
	if opts.Threads > 0 {
		args = append(args, "--threads", strconv.Itoa(opts.Threads))
	}
	if opts.NumIterations > 0 {
		args = append(args, "--num-iterations", strconv.Itoa(opts.NumIterations))
	}
	return c.run(ctx, "search", args...)
}

// SearchRedundant searches a profile database against the redundant target.
func (c *Client) SearchRedundant(ctx context.Context, profileDB, targetDB, resultDB, tmpDir string, opts SearchOptions) error {
	args := []string{profileDB, targetDB, resultDB, tmpDir}
	if opts.MaxSeqs > 0 {
		args = append(args, "--max-seqs", strconv.Itoa(opts.MaxSeqs))
	}
	if opts.SplitMemoryLimit != "" {
		args = append(args, "--split-memory-limit", opts.SplitMemoryLimit)
	}
	if opts.Threads > 0 {
		args = append(args, "--threads", strconv.Itoa(opts.Threads))
	}
	if opts.Sensitivity > 0 {
		args = append(args, "-s", formatFloat(opts.Sensitivity))
	}
	if opts.MaxSeqID > 0 {
		args = append(args, "--max-seq-id", formatFloat(opts.MaxSeqID))
	}
	return c.run(ctx, "search", args...)
}

// ResultToProfile builds a profile database from a search result.
func (c *Client) ResultToProfile(ctx context.Context, queryDB, targetDB, resultDB, profileDB string) error {
	return c.run(ctx, "result2profile", queryDB, targetDB, resultDB, profileDB)
}

// CreateSeqFileDB extracts the hit sequences of a result as FASTA.
func (c *Client) CreateSeqFileDB(ctx context.Context, targetDB, resultDB, outPath string) error {
	return c.run(ctx, "createseqfiledb", targetDB, resultDB, outPath)
}

func (c *Client) run(ctx context.Context, subcommand string, args ...string) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	full := append([]string{subcommand}, args...)
	return c.exec.Run(ctx, c.binary, full, c.onLine)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
