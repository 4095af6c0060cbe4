package source

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/go-playground/validator/v10"
)

// MaxLineBytes bounds a single line.  InChI strings for large molecules run
// to tens of kilobytes.
const MaxLineBytes = 16 << 20

var errUnknownKind = errors.New("source: unknown record kind")

var validate = validator.New()

// Stats counts what a Reader saw.  Skipped lines were malformed; Ignored
// lines were well-formed but carry nothing the graph can use.
type Stats struct {
	Lines    int `json:"lines"`
	Records  int `json:"records"`
	Skipped  int `json:"skipped"`
	Ignored  int `json:"ignored"`
	Comments int `json:"comments"`
}

// SkipFunc observes malformed lines.
type SkipFunc func(line int, reason string)

// Option configures a Reader.
type Option func(*Reader)

// WithSkipFunc installs fn to be called for every skipped line.
func WithSkipFunc(fn SkipFunc) Option {
	return func(r *Reader) { r.onSkip = fn }
}

// Reader yields typed records from one source file.  Usage follows
// bufio.Scanner:
//
//	r := source.NewReader(source.KindReacXref, f)
//	for r.Next() {
//		rec := r.Record().(*source.XrefRow)
//	}
//	if err := r.Err(); err != nil { ... }
type Reader struct {
	kind   Kind
	sc     *bufio.Scanner
	line   int
	rec    Record
	stats  Stats
	err    error
	onSkip SkipFunc
}

// NewReader returns a Reader for kind over r.  r must already be
// decompressed; Stream handles gzip detection.
func NewReader(kind Kind, r io.Reader, opts ...Option) *Reader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), MaxLineBytes)
	rd := &Reader{kind: kind, sc: sc}
	for _, opt := range opts {
		opt(rd)
	}
	if kind.Arity() == 0 {
		rd.err = errUnknownKind
	}
	return rd
}

// Next advances to the next record.  It returns false at end of input or on
// an I/O error.
func (r *Reader) Next() bool {
	if r.err != nil {
		return false
	}
	for r.sc.Scan() {
		r.line++
		r.stats.Lines++
		text := strings.TrimRight(r.sc.Text(), "\r")

		if strings.TrimSpace(text) == "" {
			continue
		}
		if strings.HasPrefix(strings.TrimLeft(text, " \t"), "#") {
			r.stats.Comments++
			continue
		}

		fields, err := splitFields(text)
		if err != nil {
			r.skip(err.Error())
			continue
		}
		if len(fields) != r.kind.Arity() {
			r.skip(fmt.Sprintf("expected %d columns, got %d", r.kind.Arity(), len(fields)))
			continue
		}

		rec, err := decode(r.kind, r.line, fields)
		if err != nil {
			var np errNoPrefix
			if errors.As(err, &np) {
				r.stats.Ignored++
				continue
			}
			r.skip(err.Error())
			continue
		}
		if err := validate.Struct(rec); err != nil {
			r.skip(describeValidation(err))
			continue
		}

		r.rec = rec
		r.stats.Records++
		return true
	}
	r.rec = nil
	r.err = r.sc.Err()
	return false
}

// Record returns the record produced by the last successful Next.
func (r *Reader) Record() Record { return r.rec }

// Err returns the first I/O error encountered, if any.  Malformed lines are
// never errors.
func (r *Reader) Err() error { return r.err }

// Stats returns counts so far.
func (r *Reader) Stats() Stats { return r.stats }

func (r *Reader) skip(reason string) {
	r.stats.Skipped++
	if r.onSkip != nil {
		r.onSkip(r.line, reason)
	}
}

func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return fmt.Sprintf("field %s fails %q", verrs[0].Field(), verrs[0].Tag())
	}
	return err.Error()
}

// splitFields splits a tab-delimited line.  A field that starts with a
// double quote runs to the matching closing quote, may contain tabs, and
// uses "" for a literal quote.  Unquoted fields are taken verbatim.
func splitFields(line string) ([]string, error) {
	var fields []string
	i := 0
	for {
		if i < len(line) && line[i] == '"' {
			var b strings.Builder
			j := i + 1
			closed := false
			for j < len(line) {
				c := line[j]
				if c == '"' {
					if j+1 < len(line) && line[j+1] == '"' {
						b.WriteByte('"')
						j += 2
						continue
					}
					closed = true
					j++
					break
				}
				b.WriteByte(c)
				j++
			}
			if !closed {
				return nil, errors.New("unterminated quoted field")
			}
			if j < len(line) && line[j] != '\t' {
				return nil, errors.New("text after closing quote")
			}
			fields = append(fields, b.String())
			if j >= len(line) {
				return fields, nil
			}
			i = j + 1
			continue
		}

		end := strings.IndexByte(line[i:], '\t')
		if end < 0 {
			fields = append(fields, line[i:])
			return fields, nil
		}
		fields = append(fields, line[i:i+end])
		i += end + 1
	}
}

//Personal.AI order the ending
