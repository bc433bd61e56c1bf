package fasta

import (
	"bufio"
	"io"
	"iter"

	"buildmsa/internal/services"
)

const (
	recordMarker  = '>'
	commentMarker = '#'
	maxLineBytes  = 64 * 1024 * 1024
)

// Record is one FASTA entry. Header is the text after the record marker.
type Record struct {
	Header   string
	Sequence string
}

// IsSentinel reports whether rec is the empty record emitted at the end of an
// exhausted stream.
func IsSentinel(rec Record) bool {
	return rec.Header == "" && rec.Sequence == ""
}

// Option configures a Reader.
type Option func(*Reader)

// WithClean toggles non-letter normalization. It is on by default.
func WithClean(clean bool) Option {
	return func(r *Reader) {
		r.clean = clean
	}
}

// WithoutTrailingEmpty suppresses the final record when it has neither header
// nor sequence.
func WithoutTrailingEmpty() Option {
	return func(r *Reader) {
		r.trailingEmpty = false
	}
}

// Reader parses a FASTA stream. It is single pass.
type Reader struct {
	src           io.Reader
	closer        io.Closer
	clean         bool
	trailingEmpty bool
	consumed      bool
}

// NewReader wraps r. The caller keeps ownership of r.
func NewReader(r io.Reader, opts ...Option) *Reader {
	reader := &Reader{src: r, clean: true, trailingEmpty: true}
	for _, opt := range opts {
		opt(reader)
	}
	return reader
}

// Open opens path for parsing. Missing files fail with services.ErrNotFound and
// other open failures with services.ErrIO.
func Open(path string, opts ...Option) (*Reader, error) {
	rc, err := openSource(path)
	if err != nil {
		return nil, err
	}
	reader := NewReader(rc, opts...)
	reader.closer = rc
	return reader, nil
}

// Close releases the underlying file when the Reader was created by Open.
func (r *Reader) Close() error {
	if r == nil || r.closer == nil {
		return nil
	}
	err := r.closer.Close()
	r.closer = nil
	return err
}

// Records yields records in file order. A record is yielded once the next
// marker line or the end of input is reached. Iterating a second time yields
// nothing. A scan failure is yielded once as a services.ErrIO error.
func (r *Reader) Records() iter.Seq2[Record, error] {
	return func(yield func(Record, error) bool) {
		if r.consumed {
			return
		}
		r.consumed = true

		sc := bufio.NewScanner(r.src)
		sc.Buffer(make([]byte, 64*1024), maxLineBytes)

		var (
			header string
			seq    = make([]byte, 0, 4096)
		)
		emit := func() bool {
			sequence := string(seq)
			if r.clean {
				sequence = Clean(sequence)
			}
			return yield(Record{Header: header, Sequence: sequence}, nil)
		}

		for sc.Scan() {
			line := sc.Bytes()
			if len(line) == 0 || line[0] == commentMarker {
				continue
			}
			if line[0] == recordMarker {
				if len(seq) > 0 {
					if !emit() {
						return
					}
				}
				header = string(line[1:])
				seq = seq[:0]
				continue
			}
			seq = appendUpper(seq, line)
		}
		if err := sc.Err(); err != nil {
			yield(Record{}, services.Wrap(services.ErrIO, "fasta", "scan", "", err))
			return
		}
		if !r.trailingEmpty && header == "" && len(seq) == 0 {
			return
		}
		emit()
	}
}

// ReadAll parses the file at path and returns every record.
func ReadAll(path string, opts ...Option) ([]Record, error) {
	reader, err := Open(path, opts...)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	var records []Record
	for rec, err := range reader.Records() {
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}
