package wire

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNodeAsFloat(t *testing.T) {
	tests := []struct {
		name string
		node Node
		want float64
		ok   bool
	}{
		{"float", Float(3.5), 3.5, true},
		{"decimal text", String("166274.1516"), 166274.1516, true},
		{"int", Int(12), 12, true},
		{"non numeric text", String("north"), 0, false},
		{"null", Null(), 0, false},
		{"array", Array(Float(1)), 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, ok := tt.node.AsFloat()
			require.Equal(t, tt.ok, ok)
			require.Equal(t, tt.want, v)
		})
	}
}

func TestNodeAsBool(t *testing.T) {
	tests := []struct {
		name string
		node Node
		want bool
		ok   bool
	}{
		{"bool true", Bool(true), true, true},
		{"bool false", Bool(false), false, true},
		{"ok reply", OK(), true, true},
		{"int one", Int(1), true, true},
		{"int zero", Int(0), false, true},
		{"string", String("1"), false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, ok := tt.node.AsBool()
			require.Equal(t, tt.ok, ok)
			require.Equal(t, tt.want, v)
		})
	}
}

func TestNodeElem(t *testing.T) {
	arr := Strings("a", "b")

	require.Equal(t, 2, arr.Len())
	require.Equal(t, String("a"), arr.Elem(0))
	require.Equal(t, String("b"), arr.Elem(1))

	// Out of range and non-collection indexing both land on a null node
	// instead of panicking; decoders rely on that.
	require.True(t, arr.Elem(2).IsNull())
	require.True(t, arr.Elem(-1).IsNull())
	require.True(t, Int(4).Elem(0).IsNull())
	require.Equal(t, 0, Int(4).Len())
}

func TestKindString(t *testing.T) {
	require.Equal(t, "array", KindArray.String())
	require.Equal(t, "error", KindError.String())
	require.Equal(t, "unknown", Kind(200).String())
}
