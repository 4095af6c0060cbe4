package source

import (
	"bufio"
	"context"
	"io"

	"github.com/klauspost/compress/gzip"

	pkgerrors "github.com/turtacn/MetaNetX-Resolver/pkg/errors"
)

// Fetcher opens a named source object.  Filesystem, object-store and HTTP
// backends implement it.
type Fetcher interface {
	Fetch(ctx context.Context, name string) (io.ReadCloser, error)
}

// Stream is a restartable source: every Each call reopens the underlying
// object, so a stream can be consumed more than once.
type Stream struct {
	Name string
	Kind Kind
	Open func(ctx context.Context) (io.ReadCloser, error)
}

// FromFetcher binds a named object on f to a Stream.
func FromFetcher(f Fetcher, name string, kind Kind) Stream {
	return Stream{
		Name: name,
		Kind: kind,
		Open: func(ctx context.Context) (io.ReadCloser, error) { return f.Fetch(ctx, name) },
	}
}

// ctxCheckEvery is how many records pass between cancellation checks.
const ctxCheckEvery = 4096

// Each opens the stream and calls fn for every record in file order.  An
// error from fn stops the scan and is returned as is.  Open and read
// failures are returned as ErrCodeSourceUnavailable.
func (s Stream) Each(ctx context.Context, fn func(Record) error, opts ...Option) (Stats, error) {
	if s.Open == nil {
		return Stats{}, pkgerrors.SourceUnavailable(s.Name, nil).WithDetail(s.Name + ": no opener")
	}
	rc, err := s.Open(ctx)
	if err != nil {
		return Stats{}, pkgerrors.SourceUnavailable(s.Name, err)
	}
	defer rc.Close()

	body, err := maybeGunzip(rc)
	if err != nil {
		return Stats{}, pkgerrors.SourceUnavailable(s.Name, err)
	}
	defer body.Close()

	r := NewReader(s.Kind, body, opts...)
	n := 0
	for r.Next() {
		if n++; n%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return r.Stats(), err
			}
		}
		if err := fn(r.Record()); err != nil {
			return r.Stats(), err
		}
	}
	if err := r.Err(); err != nil {
		return r.Stats(), pkgerrors.SourceUnavailable(s.Name, err)
	}
	return r.Stats(), ctx.Err()
}

// maybeGunzip sniffs the gzip magic and wraps r in a decompressor when
// present.
func maybeGunzip(r io.Reader) (io.ReadCloser, error) {
	br := bufio.NewReaderSize(r, 64*1024)
	magic, err := br.Peek(2)
	if err != nil && err != io.EOF {
		return nil, err
	}
	if len(magic) == 2 && magic[0] == 0x1f && magic[1] == 0x8b {
		return gzip.NewReader(br)
	}
	return io.NopCloser(br), nil
}

//Personal.AI order the ending
