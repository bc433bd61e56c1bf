package tools

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"

	"buildmsa/internal/services"
)

// Stream identifies which pipe an output line came from.
type Stream string

const (
	Stdout Stream = "stdout"
	Stderr Stream = "stderr"
)

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string, onLine func(Stream, string)) error
}

// ExitError reports a tool that ran but exited unsuccessfully.
type ExitError struct {
	Binary   string
	Args     []string
	ExitCode int
	Stderr   []string
	Err      error
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("%s exited with code %d", e.Binary, e.ExitCode)
	if len(e.Stderr) > 0 {
		msg += ": " + strings.Join(e.Stderr, " | ")
	}
	return msg
}

func (e *ExitError) Unwrap() []error {
	return []error{services.ErrSubprocess, e.Err}
}

const stderrTailLines = 20

// CommandExecutor runs binaries with os/exec.
type CommandExecutor struct{}

// Run starts binary and blocks until it exits. Output lines are forwarded to
// onLine as they arrive; a nil onLine discards them.
func (CommandExecutor) Run(ctx context.Context, binary string, args []string, onLine func(Stream, string)) error {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return services.Wrap(services.ErrSubprocess, "", binary, "start command", err)
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		scanErr error
		once    sync.Once
		tail    = newTail(stderrTailLines)
	)

	scan := func(r io.Reader, stream Stream) {
		defer wg.Done()
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := scanner.Text()
			mu.Lock()
			if stream == Stderr {
				tail.add(line)
			}
			if onLine != nil {
				onLine(stream, line)
			}
			mu.Unlock()
		}
		if err := scanner.Err(); err != nil {
			once.Do(func() {
				scanErr = err
				_ = cmd.Process.Kill()
			})
			// Keep the pipe drained so the other stream reaches EOF.
			_, _ = io.Copy(io.Discard, r)
		}
	}

	wg.Add(2)
	go scan(stdout, Stdout)
	go scan(stderr, Stderr)

	wg.Wait()
	if scanErr != nil {
		_ = cmd.Wait()
		return fmt.Errorf("scan output: %w", scanErr)
	}

	if err := cmd.Wait(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		exitErr := &ExitError{Binary: binary, Args: append([]string(nil), args...), ExitCode: -1, Stderr: tail.lines(), Err: err}
		var ee *exec.ExitError
		if errors.As(err, &ee) {
			exitErr.ExitCode = ee.ExitCode()
		}
		return exitErr
	}
	return nil
}

type lineTail struct {
	max  int
	buf  []string
	next int
	full bool
}

func newTail(max int) *lineTail {
	return &lineTail{max: max, buf: make([]string, max)}
}

func (t *lineTail) add(line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}
	t.buf[t.next] = line
	t.next = (t.next + 1) % t.max
	if t.next == 0 {
		t.full = true
	}
}

func (t *lineTail) lines() []string {
	if !t.full {
		return append([]string(nil), t.buf[:t.next]...)
	}
	out := make([]string, 0, t.max)
	out = append(out, t.buf[t.next:]...)
	return append(out, t.buf[:t.next]...)
}
