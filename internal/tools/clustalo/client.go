// Package clustalo wraps the Clustal Omega aligner. The aligner reads a FASTA
// file of unaligned sequences and writes gap-padded, equal-length rows.
package clustalo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"buildmsa/internal/tools"
)

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

// Client invokes clustalo.
type Client struct {
	binary  string
	threads int
	exec    tools.Executor
	onLine  func(tools.Stream, string)
	timeout time.Duration
}

// New constructs a clustalo client.
func New(binary string, threads int, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("clustalo binary required")
	}
	client := &Client{binary: binary, threads: threads, exec: tools.CommandExecutor{}}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Binary returns the executable the client invokes.
func (c *Client) Binary() string {
	return c.binary
}

// Align aligns the sequences in inPath and writes the alignment to outPath.
func (c *Client) Align(ctx context.Context, inPath, outPath string) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	args := []string{"-i", inPath, "-o", outPath}
	if c.threads > 0 {
		args = append(args, fmt.Sprintf("--threads=%d", c.threads))
	}
	return c.exec.Run(ctx, c.binary, args, c.onLine)
}
