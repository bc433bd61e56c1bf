package testsupport

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"buildmsa/internal/tools"
)

// FakeTools is a tools.Executor that imitates mmseqs and clustalo by writing
// the files each subcommand would produce.
type FakeTools struct {
	// Hits is written by createseqfiledb.
	Hits string
	// Aligned is written by clustalo.
	Aligned string
	// FailOn makes the named subcommand ("search", "clustalo", ...) exit 1.
	FailOn string

	mu    sync.Mutex
	calls [][]string
}

// Run implements tools.Executor.
func (f *FakeTools) Run(ctx context.Context, binary string, args []string, onLine func(tools.Stream, string)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	call := append([]string{filepath.Base(binary)}, args...)
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()

	sub := subcommand(call)
	if onLine != nil {
		onLine(tools.Stdout, sub+" running")
	}
	if f.FailOn != "" && f.FailOn == sub {
		return &tools.ExitError{Binary: binary, Args: args, ExitCode: 1, Stderr: []string{sub + " failed"}, Err: fmt.Errorf("exit status 1")}
	}

	switch sub {
	case "createdb":
		return writeDB(args[2])
	case "search":
		return writeDB(args[3])
	case "result2profile":
		return writeDB(args[4])
	case "createseqfiledb":
		return os.WriteFile(args[3], []byte(f.Hits), 0o644)
	case "clustalo":
		idx := slices.Index(args, "-o")
		if idx < 0 || idx+1 >= len(args) {
			return fmt.Errorf("clustalo: missing -o")
		}
		return os.WriteFile(args[idx+1], []byte(f.Aligned), 0o644)
	}
	return fmt.Errorf("unexpected invocation %v", call)
}

// Calls returns the recorded invocations as "binary sub arg..." strings.
func (f *FakeTools) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.calls))
	for _, call := range f.calls {
		out = append(out, strings.Join(call, " "))
	}
	return out
}

// Subcommands returns the subcommand of each recorded invocation in order.
func (f *FakeTools) Subcommands() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.calls))
	for _, call := range f.calls {
		out = append(out, subcommand(call))
	}
	return out
}

// Reset forgets recorded invocations.
func (f *FakeTools) Reset() {
	f.mu.Lock()
	f.calls = nil
	f.mu.Unlock()
}

func subcommand(call []string) string {
	if call[0] == "mmseqs" && len(call) > 1 {
		return call[1]
	}
	return call[0]
}

func writeDB(path string) error {
	for _, name := range []string{path, path + ".index", path + ".dbtype"} {
		if err := os.WriteFile(name, []byte(filepath.Base(path)), 0o644); err != nil {
			return err
		}
	}
	return nil
}
