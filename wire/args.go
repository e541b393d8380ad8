package wire

import (
	"strconv"
	"sync"
)

// tokenPool recycles the buffers behind owned tokens (numeric conversions).
// Borrowed tokens never touch the pool.
var tokenPool = sync.Pool{
	New: func() any {
		b := make([]byte, 0, 32)
		return &b
	},
}

// Args is an ordered vector of byte-string tokens in the exact order the
// wire protocol expects. Tokens are either borrowed (caller-owned memory,
// static literals) or owned (formatted into pooled buffers). Owned tokens
// stay valid until Release, which must be called exactly once, after the
// executor or batch buffer has finished reading the vector.
//
// The zero value is not useful; use NewArgs.
type Args struct {
	tokens   [][]byte
	owned    []*[]byte
	released bool
}

// NewArgs returns an argument vector with capacity for n tokens.
func NewArgs(n int) *Args {
	return &Args{tokens: make([][]byte, 0, n)}
}

// AddString appends a borrowed token holding the bytes of s.
func (a *Args) AddString(s string) {
	a.tokens = append(a.tokens, []byte(s))
}

// AddBytes appends a borrowed token referencing b. The caller must keep b
// unchanged until Release.
func (a *Args) AddBytes(b []byte) {
	a.tokens = append(a.tokens, b)
}

// AddStatic appends a protocol literal such as "COUNT" or "FROMLONLAT".
func (a *Args) AddStatic(lit string) {
	a.tokens = append(a.tokens, []byte(lit))
}

// AddInt appends an owned token with the canonical base-10 text of v.
func (a *Args) AddInt(v int64) {
	buf := tokenPool.Get().(*[]byte)
	*buf = strconv.AppendInt((*buf)[:0], v, 10)
	a.owned = append(a.owned, buf)
	a.tokens = append(a.tokens, *buf)
}

// AddFloat appends an owned token with the shortest decimal text that
// round-trips v. Integral values render without a fractional part, matching
// the store's own formatting of coordinates and radii.
func (a *Args) AddFloat(v float64) {
	buf := tokenPool.Get().(*[]byte)
	*buf = strconv.AppendFloat((*buf)[:0], v, 'f', -1, 64)
	a.owned = append(a.owned, buf)
	a.tokens = append(a.tokens, *buf)
}

// Len returns the number of tokens in the vector.
func (a *Args) Len() int { return len(a.tokens) }

// OwnedCount returns how many tokens are owned (pooled). Exposed for tests
// asserting the release discipline.
func (a *Args) OwnedCount() int { return len(a.owned) }

// Tokens returns the token vector. The slices are only valid until Release.
func (a *Args) Tokens() [][]byte { return a.tokens }

// Strings copies the vector into freshly allocated strings. Used by
// executors that retain arguments past the call, and by tests.
func (a *Args) Strings() []string {
	out := make([]string, len(a.tokens))
	for i, t := range a.tokens {
		out[i] = string(t)
	}
	return out
}

// Release returns every owned token buffer to the pool and empties the
// vector. Calling it more than once is a no-op so that error paths can
// release eagerly while a deferred release remains in place.
func (a *Args) Release() {
	if a == nil || a.released {
		return
	}
	a.released = true
	for _, buf := range a.owned {
		tokenPool.Put(buf)
	}
	a.owned = nil
	a.tokens = nil
}
