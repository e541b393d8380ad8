package memstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/glidekv/glidekv/wire"
)

func run(t *testing.T, s *Store, op wire.Opcode, tokens ...string) wire.Node {
	t.Helper()
	args := wire.NewArgs(len(tokens))
	for _, tok := range tokens {
		args.AddString(tok)
	}
	defer args.Release()
	n, err := s.Execute(context.Background(), op, args)
	require.NoError(t, err)
	return n
}

func TestSetFamily(t *testing.T) {
	s := New()

	t.Run("sadd counts new members only", func(t *testing.T) {
		require.Equal(t, wire.Int(2), run(t, s, wire.OpSAdd, "fleet", "alpha", "bravo"))
		require.Equal(t, wire.Int(1), run(t, s, wire.OpSAdd, "fleet", "bravo", "charlie"))
		require.Equal(t, wire.Int(3), run(t, s, wire.OpSCard, "fleet"))
	})

	t.Run("smembers sorted", func(t *testing.T) {
		n := run(t, s, wire.OpSMembers, "fleet")
		require.Equal(t, wire.KindSet, n.Kind)
		require.Equal(t, []wire.Node{wire.String("alpha"), wire.String("bravo"), wire.String("charlie")}, n.Elems)
	})

	t.Run("membership", func(t *testing.T) {
		require.Equal(t, wire.Int(1), run(t, s, wire.OpSIsMember, "fleet", "alpha"))
		require.Equal(t, wire.Int(0), run(t, s, wire.OpSIsMember, "fleet", "ghost"))
		n := run(t, s, wire.OpSMIsMember, "fleet", "alpha", "ghost")
		require.Equal(t, []wire.Node{wire.Int(1), wire.Int(0)}, n.Elems)
	})

	t.Run("srem removes key when empty", func(t *testing.T) {
		require.Equal(t, wire.Int(2), run(t, s, wire.OpSAdd, "tmp", "x", "y"))
		require.Equal(t, wire.Int(2), run(t, s, wire.OpSRem, "tmp", "x", "y", "ghost"))
		require.Equal(t, wire.Int(0), run(t, s, wire.OpSCard, "tmp"))
	})

	t.Run("spop", func(t *testing.T) {
		run(t, s, wire.OpSAdd, "pop", "a", "b", "c")
		require.Equal(t, wire.String("a"), run(t, s, wire.OpSPop, "pop"))
		n := run(t, s, wire.OpSPop, "pop", "5")
		require.Equal(t, 2, n.Len())
		require.True(t, run(t, s, wire.OpSPop, "pop").IsNull())
	})

	t.Run("srandmember leaves set intact", func(t *testing.T) {
		run(t, s, wire.OpSAdd, "rand", "a", "b")
		require.Equal(t, wire.String("a"), run(t, s, wire.OpSRandMember, "rand"))
		require.Equal(t, wire.Int(2), run(t, s, wire.OpSCard, "rand"))

		// Negative count samples with repetition.
		n := run(t, s, wire.OpSRandMember, "rand", "-5")
		require.Equal(t, 5, n.Len())
	})
}

func TestSetAlgebra(t *testing.T) {
	s := New()
	run(t, s, wire.OpSAdd, "s1", "a", "b", "c")
	run(t, s, wire.OpSAdd, "s2", "b", "c", "d")

	t.Run("sinter", func(t *testing.T) {
		n := run(t, s, wire.OpSInter, "s1", "s2")
		require.Equal(t, []wire.Node{wire.String("b"), wire.String("c")}, n.Elems)
	})

	t.Run("sunion", func(t *testing.T) {
		n := run(t, s, wire.OpSUnion, "s1", "s2")
		require.Equal(t, 4, n.Len())
	})

	t.Run("sdiff", func(t *testing.T) {
		n := run(t, s, wire.OpSDiff, "s1", "s2")
		require.Equal(t, []wire.Node{wire.String("a")}, n.Elems)
	})

	t.Run("missing keys are empty sets", func(t *testing.T) {
		n := run(t, s, wire.OpSDiff, "s1", "nope")
		require.Equal(t, 3, n.Len())
		n = run(t, s, wire.OpSInter, "s1", "nope")
		require.Equal(t, 0, n.Len())
	})

	t.Run("sintercard with limit", func(t *testing.T) {
		require.Equal(t, wire.Int(2), run(t, s, wire.OpSInterCard, "2", "s1", "s2"))
		require.Equal(t, wire.Int(1), run(t, s, wire.OpSInterCard, "2", "s1", "s2", "LIMIT", "1"))
	})

	t.Run("store variants", func(t *testing.T) {
		require.Equal(t, wire.Int(2), run(t, s, wire.OpSInterStore, "dst", "s1", "s2"))
		n := run(t, s, wire.OpSMembers, "dst")
		require.Equal(t, []wire.Node{wire.String("b"), wire.String("c")}, n.Elems)

		// An empty result deletes the destination.
		require.Equal(t, wire.Int(0), run(t, s, wire.OpSInterStore, "dst", "s1", "nope"))
		require.Equal(t, wire.Int(0), run(t, s, wire.OpSCard, "dst"))
	})

	t.Run("smove", func(t *testing.T) {
		require.Equal(t, wire.Int(1), run(t, s, wire.OpSMove, "s1", "s2", "a"))
		require.Equal(t, wire.Int(0), run(t, s, wire.OpSMove, "s1", "s2", "a"))
		require.Equal(t, wire.Int(1), run(t, s, wire.OpSIsMember, "s2", "a"))
	})
}

func TestWrongTypeErrors(t *testing.T) {
	s := New()
	s.SeedHash("profile", map[string]string{"name": "ada"})

	n := run(t, s, wire.OpSAdd, "profile", "x")
	require.Equal(t, wire.KindError, n.Kind)
	require.Contains(t, n.Str, "WRONGTYPE")

	// A missing key scans as empty, but an existing key of another type
	// is an error.
	n = run(t, s, wire.OpHScan, "s1", "0")
	require.Equal(t, wire.KindArray, n.Kind)
	run(t, s, wire.OpSAdd, "s1", "a")
	n = run(t, s, wire.OpHScan, "s1", "0")
	require.Equal(t, wire.KindError, n.Kind)
}

func TestKeyspaceScan(t *testing.T) {
	s := New()
	run(t, s, wire.OpSAdd, "fleet:a", "x")
	run(t, s, wire.OpSAdd, "fleet:b", "x")
	run(t, s, wire.OpSAdd, "other", "x")
	s.SeedHash("profile", map[string]string{"k": "v"})

	page := func(tokens ...string) (string, []string) {
		n := run(t, s, wire.OpScan, tokens...)
		require.Equal(t, wire.KindArray, n.Kind)
		cursor, _ := n.Elem(0).AsString()
		var keys []string
		for _, el := range n.Elem(1).Elems {
			keys = append(keys, el.Str)
		}
		return cursor, keys
	}

	t.Run("full walk with paging", func(t *testing.T) {
		cursor, keys := page("0", "COUNT", "2")
		require.Equal(t, []string{"fleet:a", "fleet:b"}, keys)
		require.NotEqual(t, "0", cursor)

		cursor, keys = page(cursor, "COUNT", "2")
		require.Equal(t, []string{"other", "profile"}, keys)
		require.Equal(t, "0", cursor)
	})

	t.Run("match filter", func(t *testing.T) {
		cursor, keys := page("0", "MATCH", "fleet:*", "COUNT", "100")
		require.Equal(t, "0", cursor)
		require.Equal(t, []string{"fleet:a", "fleet:b"}, keys)
	})

	t.Run("type filter", func(t *testing.T) {
		cursor, keys := page("0", "TYPE", "hash", "COUNT", "100")
		require.Equal(t, "0", cursor)
		require.Equal(t, []string{"profile"}, keys)
	})
}

func TestPerKeyScans(t *testing.T) {
	s := New()
	run(t, s, wire.OpSAdd, "fleet", "alpha", "bravo", "charlie")
	s.SeedHash("profile", map[string]string{"name": "ada", "lang": "go"})
	s.SeedZSet("ranks", map[string]float64{"alpha": 1.5, "bravo": 2})

	t.Run("sscan", func(t *testing.T) {
		n := run(t, s, wire.OpSScan, "fleet", "0", "MATCH", "*a*", "COUNT", "10")
		cursor, _ := n.Elem(0).AsString()
		require.Equal(t, "0", cursor)
		require.Equal(t, 3, n.Elem(1).Len())
	})

	t.Run("hscan pairs stay together", func(t *testing.T) {
		n := run(t, s, wire.OpHScan, "profile", "0", "COUNT", "1")
		cursor, _ := n.Elem(0).AsString()
		require.Equal(t, "2", cursor)
		require.Equal(t, []wire.Node{wire.String("lang"), wire.String("go")}, n.Elem(1).Elems)

		n = run(t, s, wire.OpHScan, "profile", cursor, "COUNT", "1")
		cursor, _ = n.Elem(0).AsString()
		require.Equal(t, "0", cursor)
		require.Equal(t, []wire.Node{wire.String("name"), wire.String("ada")}, n.Elem(1).Elems)
	})

	t.Run("zscan renders scores as text", func(t *testing.T) {
		n := run(t, s, wire.OpZScan, "ranks", "0")
		require.Equal(t, []wire.Node{
			wire.String("alpha"), wire.String("1.5"),
			wire.String("bravo"), wire.String("2"),
		}, n.Elem(1).Elems)
	})
}

func TestExecuteBatch(t *testing.T) {
	s := New()
	ctx := context.Background()

	mk := func(tokens ...string) *wire.Args {
		args := wire.NewArgs(len(tokens))
		for _, tok := range tokens {
			args.AddString(tok)
		}
		return args
	}
	ops := []wire.Opcode{wire.OpSAdd, wire.OpSCard, wire.OpSMembers}
	argv := []*wire.Args{mk("fleet", "a", "b"), mk("fleet"), mk("fleet")}
	defer func() {
		for _, a := range argv {
			a.Release()
		}
	}()

	nodes, err := s.ExecuteBatch(ctx, ops, argv)
	require.NoError(t, err)
	require.Len(t, nodes, 3)
	require.Equal(t, wire.Int(2), nodes[0])
	require.Equal(t, wire.Int(2), nodes[1])
	require.Equal(t, 2, nodes[2].Len())
}

func TestContextCancellation(t *testing.T) {
	s := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	args := wire.NewArgs(1)
	args.AddString("fleet")
	defer args.Release()

	_, err := s.Execute(ctx, wire.OpSCard, args)
	require.ErrorIs(t, err, context.Canceled)
}
