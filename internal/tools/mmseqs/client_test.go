package mmseqs_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"buildmsa/internal/services"
	"buildmsa/internal/tools"
	"buildmsa/internal/tools/mmseqs"
)

type stubExecutor struct {
	err      error
	binary   string
	args     [][]string
	deadline bool
}

func (s *stubExecutor) Run(ctx context.Context, binary string, args []string, onLine func(tools.Stream, string)) error {
	s.binary = binary
	s.args = append(s.args, append([]string(nil), args...))
	_, s.deadline = ctx.Deadline()
	if onLine != nil {
		onLine(tools.Stdout, "ok")
	}
	return s.err
}

func newClient(t *testing.T, exec *stubExecutor, opts ...mmseqs.Option) *mmseqs.Client {
	t.Helper()
	opts = append([]mmseqs.Option{mmseqs.WithExecutor(exec)}, opts...)
	client, err := mmseqs.New("/opt/bin/mmseqs", opts...)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return client
}

func TestNewRequiresBinary(t *testing.T) {
	if _, err := mmseqs.New("  "); err == nil {
		t.Fatal("expected error for blank binary")
	}
}

func TestSubcommandArguments(t *testing.T) {
	exec := &stubExecutor{}
	client := newClient(t, exec)
	ctx := context.Background()
	opts := mmseqs.SearchOptions{
		Threads:          32,
		SplitMemoryLimit: "250000000000",
		NumIterations:    4,
		MaxSeqs:          1000000,
		Sensitivity:      7.5,
		MaxSeqID:         0.999,
	}

	steps := []func() error{
		func() error { return client.CreateDB(ctx, "/in/query.fa", "/out/query.uniref50.db") },
		func() error {
			return client.SearchNR(ctx, "/out/query.uniref50.db", "/db/uniref50.db", "/out/query.uniref50.ali", "/tmp", opts)
		},
		func() error {
			return client.ResultToProfile(ctx, "/out/query.uniref50.db", "/db/uniref50.db", "/out/query.uniref50.ali", "/out/query.uniref100.db")
		},
		func() error {
			return client.SearchRedundant(ctx, "/out/query.uniref100.db", "/db/uniref100.db", "/out/query.uniref100.ali", "/tmp", opts)
		},
		func() error {
			return client.CreateSeqFileDB(ctx, "/db/uniref100.db", "/out/query.uniref100.ali", "/out/query.uniref100.fa")
		},
	}
	for i, step := range steps {
		if err := step(); err != nil {
			t.Fatalf("step %d returned error: %v", i, err)
		}
	}

	want := [][]string{
		{"createdb", "/in/query.fa", "/out/query.uniref50.db"},
		{"search", "/out/query.uniref50.db", "/db/uniref50.db", "/out/query.uniref50.ali", "/tmp",
			"--split-memory-limit", "250000000000", "--threads", "32", "--num-iterations", "4"},
		{"result2profile", "/out/query.uniref50.db", "/db/uniref50.db", "/out/query.uniref50.ali", "/out/query.uniref100.db"},
		{"search", "/out/query.uniref100.db", "/db/uniref100.db", "/out/query.uniref100.ali", "/tmp",
			"--max-seqs", "1000000", "--split-memory-limit", "250000000000", "--threads", "32", "-s", "7.5", "--max-seq-id", "0.999"},
		{"createseqfiledb", "/db/uniref100.db", "/out/query.uniref100.ali", "/out/query.uniref100.fa"},
	}
	if !reflect.DeepEqual(exec.args, want) {
		t.Fatalf("unexpected arguments:\n got %v\nwant %v", exec.args, want)
	}
	if exec.binary != "/opt/bin/mmseqs" {
		t.Fatalf("unexpected binary %q", exec.binary)
	}
}

func TestRunPropagatesExecutorError(t *testing.T) {
	boom := &tools.ExitError{Binary: "mmseqs", ExitCode: 1, Err: errors.New("exit status 1")}
	client := newClient(t, &stubExecutor{err: boom})
	err := client.CreateDB(context.Background(), "a", "b")
	if !errors.Is(err, services.ErrSubprocess) {
		t.Fatalf("expected ErrSubprocess, got %v", err)
	}
}

func TestTimeoutAndOutputOptions(t *testing.T) {
	exec := &stubExecutor{}
	var lines []string
	client := newClient(t, exec,
		mmseqs.WithTimeout(5e9),
		mmseqs.WithOutput(func(_ tools.Stream, line string) { lines = append(lines, line) }),
	)
	if err := client.CreateDB(context.Background(), "a", "b"); err != nil {
		t.Fatalf("CreateDB: %v", err)
	}
	if !exec.deadline {
		t.Fatal("expected a deadline when timeout configured")
	}
	if len(lines) != 1 || lines[0] != "ok" {
		t.Fatalf("expected forwarded output, got %v", lines)
	}
}
