package glidekv

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/glidekv/glidekv/wire"
)

func TestDecodeCount(t *testing.T) {
	require.Equal(t, int64(4), decodeCount(wire.Int(4)))

	// Unexpected shapes decode to zero, never an error.
	require.Equal(t, int64(0), decodeCount(wire.String("4")))
	require.Equal(t, int64(0), decodeCount(wire.Null()))
}

func TestDecodeStrings(t *testing.T) {
	t.Run("array and set", func(t *testing.T) {
		require.Equal(t, []string{"a", "b"}, decodeStrings(wire.Strings("a", "b")))
		require.Equal(t, []string{"x"}, decodeStrings(wire.Set(wire.String("x"))))
	})

	t.Run("null elements become empty strings", func(t *testing.T) {
		n := wire.Array(wire.String("a"), wire.Null(), wire.String("c"))
		require.Equal(t, []string{"a", "", "c"}, decodeStrings(n))
	})

	t.Run("non collection", func(t *testing.T) {
		require.Empty(t, decodeStrings(wire.Int(3)))
	})
}

func TestDecodeBools(t *testing.T) {
	n := wire.Array(wire.Int(1), wire.Int(0), wire.Bool(true))
	require.Equal(t, []bool{true, false, true}, decodeBools(n))

	// Same convention as the other collection decoders: a non-collection
	// reply yields an empty, non-nil slice.
	require.NotNil(t, decodeBools(wire.Int(1)))
	require.Empty(t, decodeBools(wire.Int(1)))
}

func TestDecodePositions(t *testing.T) {
	n := wire.Array(
		wire.Array(wire.String("13.36138933897018433"), wire.String("38.11555639549629859")),
		wire.Null(),
		wire.Array(wire.Float(15.087269), wire.Float(37.502669)),
	)
	coords := decodePositions(n)
	require.Len(t, coords, 3)
	require.InDelta(t, 13.361389, coords[0].Longitude, 1e-5)
	require.InDelta(t, 38.115556, coords[0].Latitude, 1e-5)
	require.Nil(t, coords[1])
	require.InDelta(t, 15.087269, coords[2].Longitude, 1e-5)
}

func TestDecodeGeoLocations(t *testing.T) {
	t.Run("names only", func(t *testing.T) {
		dec := decodeGeoLocations(GeoSearchOptions{})
		locs := dec(wire.Strings("Palermo", "Catania"))
		require.Equal(t, []GeoLocation{{Name: "Palermo"}, {Name: "Catania"}}, locs)
	})

	t.Run("coord and dist without hash", func(t *testing.T) {
		// Each entry nests its fields: [name, [dist, hash, coord]] with the
		// inner order fixed; hash is absent here so coord follows dist
		// directly.
		dec := decodeGeoLocations(GeoSearchOptions{WithCoord: true, WithDist: true})
		locs := dec(wire.Array(
			wire.Array(
				wire.String("Palermo"),
				wire.Array(
					wire.String("190.4424"),
					wire.Array(wire.String("13.36138933897018433"), wire.String("38.11555639549629859")),
				),
			),
		))
		require.Len(t, locs, 1)
		loc := locs[0]
		require.Equal(t, "Palermo", loc.Name)
		require.True(t, loc.HasDist)
		require.InDelta(t, 190.4424, loc.Dist, 1e-4)
		require.False(t, loc.HasHash)
		require.NotNil(t, loc.Coord)
		require.InDelta(t, 13.361389, loc.Coord.Longitude, 1e-5)
	})

	t.Run("all fields", func(t *testing.T) {
		dec := decodeGeoLocations(GeoSearchOptions{WithCoord: true, WithDist: true, WithHash: true})
		locs := dec(wire.Array(
			wire.Array(
				wire.String("Catania"),
				wire.Array(
					wire.String("56.4413"),
					wire.Int(3479447370796909),
					wire.Array(wire.Float(15.087269), wire.Float(37.502669)),
				),
			),
		))
		require.Len(t, locs, 1)
		require.True(t, locs[0].HasDist)
		require.True(t, locs[0].HasHash)
		require.Equal(t, int64(3479447370796909), locs[0].Hash)
		require.NotNil(t, locs[0].Coord)
	})

	t.Run("entry without field array keeps the name", func(t *testing.T) {
		dec := decodeGeoLocations(GeoSearchOptions{WithDist: true})
		locs := dec(wire.Array(wire.Array(wire.String("Palermo"))))
		require.Equal(t, []GeoLocation{{Name: "Palermo"}}, locs)
	})

	t.Run("malformed entry skipped", func(t *testing.T) {
		dec := decodeGeoLocations(GeoSearchOptions{WithDist: true})
		locs := dec(wire.Array(wire.Int(7)))
		require.Empty(t, locs)
	})
}

func TestDecodeScanPage(t *testing.T) {
	t.Run("active cursor", func(t *testing.T) {
		page, ok := decodeScanPage(wire.Array(wire.String("17"), wire.Strings("a", "b")))
		require.True(t, ok)
		require.Equal(t, "17", page.Cursor)
		require.Equal(t, []string{"a", "b"}, page.Keys)
		require.False(t, page.Done())
	})

	t.Run("terminal cursor", func(t *testing.T) {
		page, ok := decodeScanPage(wire.Array(wire.String("0"), wire.Strings()))
		require.True(t, ok)
		require.True(t, page.Done())
	})

	t.Run("malformed becomes terminal", func(t *testing.T) {
		for _, n := range []wire.Node{
			wire.Int(5),
			wire.Array(wire.String("17")),
			wire.Array(wire.Int(17), wire.Strings("a")),
			wire.Array(wire.String("17"), wire.String("not-a-list")),
			wire.Array(wire.String("17"), wire.Strings("a"), wire.Strings("extra")),
		} {
			page, ok := decodeScanPage(n)
			require.False(t, ok)
			require.True(t, page.Done())
			require.Empty(t, page.Keys)
		}
	})
}

func TestDecodeHScanPage(t *testing.T) {
	page, ok := decodeHScanPage(wire.Array(
		wire.String("0"),
		wire.Strings("field1", "v1", "field2", "v2"),
	))
	require.True(t, ok)
	require.Equal(t, map[string]string{"field1": "v1", "field2": "v2"}, page.Fields)

	// A dangling field without a value is dropped.
	page, ok = decodeHScanPage(wire.Array(wire.String("0"), wire.Strings("f1", "v1", "orphan")))
	require.True(t, ok)
	require.Equal(t, map[string]string{"f1": "v1"}, page.Fields)
}

func TestDecodeZScanPage(t *testing.T) {
	page, ok := decodeZScanPage(wire.Array(
		wire.String("3"),
		wire.Array(wire.String("alpha"), wire.String("1.5"), wire.String("beta"), wire.Float(2)),
	))
	require.True(t, ok)
	require.Equal(t, "3", page.Cursor)
	require.Equal(t, map[string]float64{"alpha": 1.5, "beta": 2}, page.Members)

	// Non-numeric score drops the pair, the rest survives.
	page, _ = decodeZScanPage(wire.Array(
		wire.String("0"),
		wire.Strings("good", "1", "bad", "NaN-ish?"),
	))
	require.Equal(t, map[string]float64{"good": 1}, page.Members)
}
