// Package corpus reads labeled text records of the form
// "<text> __label__<suffix>", one per line.
package corpus

import (
	"bufio"
	"io"
	"log"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// LabelMarker separates a record's text from its label.
const LabelMarker = "__label__"

// ErrMalformedRecord is returned for a line without a usable label.
var ErrMalformedRecord = errors.New("malformed record")

// Record is one labeled document.
type Record struct {
	Text  string
	Label string
}

// Source yields records one at a time and returns io.EOF once exhausted.
// Sources are single-pass unless documented otherwise.
type Source interface {
	Next() (Record, error)
}

// ParseRecord splits a line into its text and canonical label. The label is
// everything after the first marker (up to any later marker), trimmed and
// re-prefixed with LabelMarker.
func ParseRecord(line string) (Record, error) {
	text, rest, found := strings.Cut(line, LabelMarker)
	if !found {
		return Record{}, errors.Wrap(ErrMalformedRecord, "missing label marker")
	}

	suffix, _, _ := strings.Cut(rest, LabelMarker)
	suffix = strings.TrimSpace(suffix)
	if suffix == "" {
		return Record{}, errors.Wrap(ErrMalformedRecord, "empty label")
	}

	return Record{
		Text:  strings.TrimSpace(text),
		Label: LabelMarker + suffix,
	}, nil
}

// Option configures a Reader.
type Option func(*Reader)

// WithStrictParsing controls what happens on malformed lines: strict readers
// (the default) fail, lenient readers log and skip them.
func WithStrictParsing(strict bool) Option {
	return func(r *Reader) {
		r.strict = strict
	}
}

// WithMarkupStripping reduces each record's text to its HTML text content.
func WithMarkupStripping() Option {
	return func(r *Reader) {
		r.stripMarkup = true
	}
}

// Reader is a single-pass Source over line-oriented input.
type Reader struct {
	scanner     *bufio.Scanner
	line        int
	strict      bool
	stripMarkup bool
	skipped     int
	err         error
}

// NewReader returns a Reader consuming r.
func NewReader(r io.Reader, opts ...Option) *Reader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	reader := &Reader{
		scanner: scanner,
		strict:  true,
	}
	for _, opt := range opts {
		opt(reader)
	}
	return reader
}

// Next returns the next record. Blank lines are skipped.
func (r *Reader) Next() (Record, error) {
	if r.err != nil {
		return Record{}, r.err
	}

	for r.scanner.Scan() {
		r.line++
		line := r.scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		record, err := ParseRecord(line)
		if err != nil {
			if r.strict {
				r.err = errors.Wrapf(err, "line %d", r.line)
				return Record{}, r.err
			}
			r.skipped++
			log.Printf("skipping line %d: %v", r.line, err)
			continue
		}

		if r.stripMarkup {
			record.Text = StripMarkup(record.Text)
		}
		return record, nil
	}

	if err := r.scanner.Err(); err != nil {
		r.err = errors.Wrapf(err, "read line %d", r.line+1)
		return Record{}, r.err
	}

	r.err = io.EOF
	return Record{}, io.EOF
}

// Skipped returns the number of malformed lines a lenient reader dropped.
func (r *Reader) Skipped() int {
	return r.skipped
}

// File is a Reader over an opened file.
type File struct {
	*Reader
	f *os.File
}

// Open opens path as a Source. The caller must Close it.
func Open(path string, opts ...Option) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open corpus")
	}
	return &File{Reader: NewReader(f, opts...), f: f}, nil
}

// Close closes the underlying file.
func (f *File) Close() error {
	return f.f.Close()
}

// Records is an in-memory Source. Unlike Reader it can be replayed with Reset.
type Records struct {
	records []Record
	pos     int
}

// NewRecords returns a Source over records.
func NewRecords(records ...Record) *Records {
	return &Records{records: records}
}

// Next returns the next record or io.EOF.
func (s *Records) Next() (Record, error) {
	if s.pos >= len(s.records) {
		return Record{}, io.EOF
	}
	record := s.records[s.pos]
	s.pos++
	return record, nil
}

// Reset rewinds the source to its first record.
func (s *Records) Reset() {
	s.pos = 0
}

// ReadAll drains src into memory.
func ReadAll(src Source) ([]Record, error) {
	var records []Record
	for {
		record, err := src.Next()
		if err == io.EOF {
			return records, nil
		}
		if err != nil {
			return records, err
		}
		records = append(records, record)
	}
}
