package wire

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestArgsTokenOrder(t *testing.T) {
	args := NewArgs(6)
	args.AddString("fleet")
	args.AddStatic(TokCount)
	args.AddInt(42)
	args.AddFloat(13.361389)
	args.AddFloat(-2)
	args.AddBytes([]byte("raw"))

	require.Equal(t, []string{"fleet", "COUNT", "42", "13.361389", "-2", "raw"}, args.Strings())
	require.Equal(t, 6, args.Len())
}

func TestArgsFloatFormatting(t *testing.T) {
	tests := []struct {
		name string
		v    float64
		want string
	}{
		{"integral", 15, "15"},
		{"negative integral", -90, "-90"},
		{"fractional", 38.115556, "38.115556"},
		{"shortest round trip", 0.1, "0.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := NewArgs(1)
			args.AddFloat(tt.v)
			require.Equal(t, []string{tt.want}, args.Strings())
		})
	}
}

func TestArgsOwnedCount(t *testing.T) {
	args := NewArgs(4)
	args.AddString("key")
	args.AddStatic(TokLimit)
	args.AddInt(5)
	args.AddFloat(1.5)

	// Only numeric conversions are owned.
	require.Equal(t, 2, args.OwnedCount())
}

func TestArgsReleaseIdempotent(t *testing.T) {
	args := NewArgs(2)
	args.AddInt(7)
	args.AddString("k")

	args.Release()
	require.Equal(t, 0, args.Len())
	require.Equal(t, 0, args.OwnedCount())

	// A second release must be a no-op, covering eager release on error
	// paths combined with a deferred release.
	require.NotPanics(t, func() { args.Release() })

	var nilArgs *Args
	require.NotPanics(t, func() { nilArgs.Release() })
}

func TestArgsReuseAfterRelease(t *testing.T) {
	// Pooled buffers must not leak previous contents into new vectors.
	first := NewArgs(1)
	first.AddInt(123456789)
	first.Release()

	second := NewArgs(1)
	second.AddInt(7)
	require.Equal(t, []string{"7"}, second.Strings())
	second.Release()
}
