package fasta

import (
	"bufio"
	"io"
	"os"

	"buildmsa/internal/services"
)

// Writer serializes records as a header line and one sequence line.
type Writer struct {
	w *bufio.Writer
}

// NewWriter wraps w with buffering. Call Flush when done.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// Write emits a single record.
func (w *Writer) Write(rec Record) error {
	if err := w.w.WriteByte(recordMarker); err != nil {
		return err
	}
	if _, err := w.w.WriteString(rec.Header); err != nil {
		return err
	}
	if err := w.w.WriteByte('\n'); err != nil {
		return err
	}
	if _, err := w.w.WriteString(rec.Sequence); err != nil {
		return err
	}
	return w.w.WriteByte('\n')
}

// Flush writes buffered data to the underlying writer.
func (w *Writer) Flush() error {
	return w.w.Flush()
}

// Append writes recs to the end of path, creating it if needed. An empty path
// writes to stdout.
func Append(path string, recs ...Record) error {
	if path == "" {
		if err := writeAll(os.Stdout, recs); err != nil {
			return services.Wrap(services.ErrIO, "fasta", "append", "write stdout", err)
		}
		return nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return services.Wrap(services.ErrIO, "fasta", "append", "could not create file "+path, err)
	}
	if err := writeAll(f, recs); err != nil {
		_ = f.Close()
		return services.Wrap(services.ErrIO, "fasta", "append", "write "+path, err)
	}
	if err := f.Close(); err != nil {
		return services.Wrap(services.ErrIO, "fasta", "append", "close "+path, err)
	}
	return nil
}

func writeAll(dst io.Writer, recs []Record) error {
	w := NewWriter(dst)
	for _, rec := range recs {
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return w.Flush()
}
