// Package collect assembles the bounded, deduplicated candidate pool handed to
// the aligner. The query record anchors the pool and is always first.
package collect

import (
	"iter"

	"buildmsa/internal/fasta"
	"buildmsa/internal/services"
)

// Pool accumulates records keyed by exact sequence content.
type Pool struct {
	max     int
	seen    map[string]string
	records []fasta.Record
}

// NewPool starts a pool with anchor as its first record.
func NewPool(anchor fasta.Record, max int) *Pool {
	return &Pool{
		max:     max,
		seen:    map[string]string{anchor.Sequence: anchor.Header},
		records: []fasta.Record{anchor},
	}
}

// Add accepts rec unless its sequence is already pooled. It reports whether the
// record was accepted.
func (p *Pool) Add(rec fasta.Record) bool {
	if _, ok := p.seen[rec.Sequence]; ok {
		return false
	}
	p.seen[rec.Sequence] = rec.Header
	p.records = append(p.records, rec)
	return true
}

// Full reports whether the pool has grown past its maximum. The check is
// strictly greater than, so a full pool holds max+1 records.
func (p *Pool) Full() bool {
	return len(p.records) > p.max
}

// Len returns the number of pooled records.
func (p *Pool) Len() int {
	return len(p.records)
}

// HeaderFor returns the first header seen for sequence.
func (p *Pool) HeaderFor(sequence string) (string, bool) {
	header, ok := p.seen[sequence]
	return header, ok
}

// Records returns pooled records in acceptance order.
func (p *Pool) Records() []fasta.Record {
	out := make([]fasta.Record, len(p.records))
	copy(out, p.records)
	return out
}

// Collect pools anchor followed by unique records from secondary, stopping once
// the pool exceeds max or secondary is exhausted. The trailing empty record of
// a parsed stream is ignored.
func Collect(anchor fasta.Record, secondary iter.Seq2[fasta.Record, error], max int) ([]fasta.Record, error) {
	pool := NewPool(anchor, max)
	for rec, err := range secondary {
		if err != nil {
			return nil, err
		}
		if fasta.IsSentinel(rec) {
			continue
		}
		if !pool.Add(rec) {
			continue
		}
		if pool.Full() {
			break
		}
	}
	return pool.Records(), nil
}

// CollectFiles anchors the pool on the first record of queryPath and draws
// candidates from secondaryPath.
func CollectFiles(queryPath, secondaryPath string, max int) ([]fasta.Record, error) {
	anchor, err := FirstRecord(queryPath)
	if err != nil {
		return nil, err
	}

	reader, err := fasta.Open(secondaryPath)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	return Collect(anchor, reader.Records(), max)
}

// FirstRecord returns the first record of path. A file without records fails
// with services.ErrValidation.
func FirstRecord(path string) (fasta.Record, error) {
	reader, err := fasta.Open(path)
	if err != nil {
		return fasta.Record{}, err
	}
	defer reader.Close()

	for rec, err := range reader.Records() {
		if err != nil {
			return fasta.Record{}, err
		}
		if fasta.IsSentinel(rec) {
			break
		}
		return rec, nil
	}
	return fasta.Record{}, services.Wrap(services.ErrValidation, "collect", "read query", "no records in "+path, nil)
}
