package glidekv

import (
	"context"

	"github.com/glidekv/glidekv/wire"
)

// scanCursorStart is the cursor token that denotes both the start and the
// terminal state of a scan sequence. A terminal cursor returned by the store
// must not be resubmitted.
const scanCursorStart = "0"

// ScanOptions carries the advisory MATCH pattern and COUNT hint of the scan
// family. Type filters the keyspace scan by value type and is rejected on
// per-key scans.
type ScanOptions struct {
	Match string
	Count int64
	Type  string
}

// ScanPage is one page of a SCAN or SSCAN sequence. A Cursor of "0" marks
// the last page.
type ScanPage struct {
	Cursor string
	Keys   []string
}

// Done reports whether this is the terminal page.
func (p ScanPage) Done() bool { return p.Cursor == scanCursorStart }

// HScanPage is one page of an HSCAN sequence.
type HScanPage struct {
	Cursor string
	Fields map[string]string
}

// Done reports whether this is the terminal page.
func (p HScanPage) Done() bool { return p.Cursor == scanCursorStart }

// ZScanPage is one page of a ZSCAN sequence.
type ZScanPage struct {
	Cursor  string
	Members map[string]float64
}

// Done reports whether this is the terminal page.
func (p ZScanPage) Done() bool { return p.Cursor == scanCursorStart }

// scanOp picks the keyspace-scan opcode for the session's mode: in cluster
// mode the native layer needs to fan the cursor across nodes itself.
func (s *Session) scanOp() wire.Opcode {
	if s.mode == ModeCluster {
		return wire.OpClusterScan
	}
	return wire.OpScan
}

// Scan runs one step of the keyspace scan. An empty cursor starts the
// sequence; the returned next cursor is "0" when the sequence is exhausted.
// A malformed reply ends the sequence (empty keys, next "0") instead of
// failing; this leniency keeps iteration alive across server-side shape
// changes and is counted in the session stats.
func (s *Session) Scan(ctx context.Context, cursor string, opts *ScanOptions) (keys []string, next string, err error) {
	op := s.scanOp()
	args, err := buildScan(op, "", cursor, opts)
	if err != nil {
		return nil, "", err
	}
	page, err := dispatch(ctx, s, op, args, s.scanDecoder())
	if err != nil {
		return nil, "", err
	}
	return page.Keys, page.Cursor, nil
}

// SScan runs one step of a set scan over key.
func (s *Session) SScan(ctx context.Context, key, cursor string, opts *ScanOptions) (members []string, next string, err error) {
	if key == "" {
		return nil, "", argErr(wire.OpSScan, "key must not be empty")
	}
	args, err := buildScan(wire.OpSScan, key, cursor, opts)
	if err != nil {
		return nil, "", err
	}
	page, err := dispatch(ctx, s, wire.OpSScan, args, s.scanDecoder())
	if err != nil {
		return nil, "", err
	}
	return page.Keys, page.Cursor, nil
}

// HScan runs one step of a hash scan over key, returning decoded
// field/value pairs.
func (s *Session) HScan(ctx context.Context, key, cursor string, opts *ScanOptions) (fields map[string]string, next string, err error) {
	if key == "" {
		return nil, "", argErr(wire.OpHScan, "key must not be empty")
	}
	args, err := buildScan(wire.OpHScan, key, cursor, opts)
	if err != nil {
		return nil, "", err
	}
	page, err := dispatch(ctx, s, wire.OpHScan, args, s.hscanDecoder())
	if err != nil {
		return nil, "", err
	}
	return page.Fields, page.Cursor, nil
}

// ZScan runs one step of a sorted-set scan over key, returning decoded
// member/score pairs.
func (s *Session) ZScan(ctx context.Context, key, cursor string, opts *ScanOptions) (members map[string]float64, next string, err error) {
	if key == "" {
		return nil, "", argErr(wire.OpZScan, "key must not be empty")
	}
	args, err := buildScan(wire.OpZScan, key, cursor, opts)
	if err != nil {
		return nil, "", err
	}
	page, err := dispatch(ctx, s, wire.OpZScan, args, s.zscanDecoder())
	if err != nil {
		return nil, "", err
	}
	return page.Members, page.Cursor, nil
}

// The per-session decoder wrappers count recovered (malformed) pages.

func (s *Session) scanDecoder() func(wire.Node) ScanPage {
	return func(n wire.Node) ScanPage {
		page, ok := decodeScanPage(n)
		if !ok {
			s.stats.recordRecovered()
		}
		return page
	}
}

func (s *Session) hscanDecoder() func(wire.Node) HScanPage {
	return func(n wire.Node) HScanPage {
		page, ok := decodeHScanPage(n)
		if !ok {
			s.stats.recordRecovered()
		}
		return page
	}
}

func (s *Session) zscanDecoder() func(wire.Node) ZScanPage {
	return func(n wire.Node) ZScanPage {
		page, ok := decodeZScanPage(n)
		if !ok {
			s.stats.recordRecovered()
		}
		return page
	}
}

// Iterator walks a scan sequence one element at a time, fetching pages on
// demand:
//
//	it := s.SScanIterator("fleet", nil)
//	for it.Next(ctx) {
//	    use(it.Val())
//	}
//	if err := it.Err(); err != nil { ... }
//
// An iterator drives a single logical cursor and is not safe for concurrent
// use. It never resubmits a terminal cursor.
type Iterator struct {
	fetch  func(ctx context.Context, cursor string) ([]string, string, error)
	cursor string
	buf    []string
	val    string
	done   bool
	err    error
}

// ScanIterator returns an iterator over the whole keyspace.
func (s *Session) ScanIterator(opts *ScanOptions) *Iterator {
	return s.newIterator(func(ctx context.Context, cursor string) ([]string, string, error) {
		return s.Scan(ctx, cursor, opts)
	})
}

// SScanIterator returns an iterator over the members of the set at key.
func (s *Session) SScanIterator(key string, opts *ScanOptions) *Iterator {
	return s.newIterator(func(ctx context.Context, cursor string) ([]string, string, error) {
		return s.SScan(ctx, key, cursor, opts)
	})
}

func (s *Session) newIterator(fetch func(context.Context, string) ([]string, string, error)) *Iterator {
	return &Iterator{
		fetch: func(ctx context.Context, cursor string) ([]string, string, error) {
			if s.batch != nil {
				return nil, "", ErrBatchActive
			}
			return fetch(ctx, cursor)
		},
		cursor: scanCursorStart,
	}
}

// Next advances the iterator, fetching the next page when the current one is
// drained. It returns false at the end of the sequence or on error.
func (it *Iterator) Next(ctx context.Context) bool {
	for {
		if len(it.buf) > 0 {
			it.val = it.buf[0]
			it.buf = it.buf[1:]
			return true
		}
		if it.done || it.err != nil {
			return false
		}
		keys, next, err := it.fetch(ctx, it.cursor)
		if err != nil {
			it.err = err
			return false
		}
		it.buf = keys
		it.cursor = next
		if next == scanCursorStart {
			it.done = true
		}
	}
}

// Val returns the element produced by the last successful Next.
func (it *Iterator) Val() string { return it.val }

// Err returns the first error hit by the iterator, if any.
func (it *Iterator) Err() error { return it.err }
