package glidekv

import (
	"strings"

	"github.com/glidekv/glidekv/wire"
)

// Shape builders. Each builder validates its preconditions before putting a
// single token in the vector, so a rejected command never leaves owned
// tokens live. Token order is the wire grammar's and is covered by tests.

// buildKeyMembers covers SADD, SREM, SMISMEMBER, GEOHASH, GEOPOS:
// key member+.
func buildKeyMembers(op wire.Opcode, key string, members []string) (*wire.Args, error) {
	if key == "" {
		return nil, argErr(op, "key must not be empty")
	}
	if len(members) == 0 {
		return nil, argErr(op, "at least one member required")
	}
	args := wire.NewArgs(1 + len(members))
	args.AddString(key)
	for _, m := range members {
		args.AddString(m)
	}
	return args, nil
}

// buildKeyOnly covers SCARD and SMEMBERS.
func buildKeyOnly(op wire.Opcode, key string) (*wire.Args, error) {
	if key == "" {
		return nil, argErr(op, "key must not be empty")
	}
	args := wire.NewArgs(1)
	args.AddString(key)
	return args, nil
}

// buildKeyMember covers SISMEMBER.
func buildKeyMember(op wire.Opcode, key, member string) (*wire.Args, error) {
	if key == "" {
		return nil, argErr(op, "key must not be empty")
	}
	if member == "" {
		return nil, argErr(op, "member must not be empty")
	}
	args := wire.NewArgs(2)
	args.AddString(key)
	args.AddString(member)
	return args, nil
}

// buildKeyCount covers SPOP and SRANDMEMBER with an explicit count.
// SRANDMEMBER accepts a negative count (sampling with repetition); SPOP does
// not.
func buildKeyCount(op wire.Opcode, key string, count int64, allowNegative bool) (*wire.Args, error) {
	if key == "" {
		return nil, argErr(op, "key must not be empty")
	}
	if count < 0 && !allowNegative {
		return nil, argErr(op, "count must not be negative")
	}
	args := wire.NewArgs(2)
	args.AddString(key)
	args.AddInt(count)
	return args, nil
}

// buildMultiKey covers SINTER, SUNION, SDIFF: key+.
func buildMultiKey(op wire.Opcode, keys []string) (*wire.Args, error) {
	if len(keys) == 0 {
		return nil, argErr(op, "at least one key required")
	}
	args := wire.NewArgs(len(keys))
	for _, k := range keys {
		args.AddString(k)
	}
	return args, nil
}

// buildMultiKeyLimit covers SINTERCARD: numkeys key+ [LIMIT n]. A limit of
// zero means unlimited and omits the LIMIT clause.
func buildMultiKeyLimit(op wire.Opcode, keys []string, limit int64) (*wire.Args, error) {
	if len(keys) == 0 {
		return nil, argErr(op, "at least one key required")
	}
	if limit < 0 {
		return nil, argErr(op, "limit must not be negative")
	}
	args := wire.NewArgs(1 + len(keys) + 2)
	args.AddInt(int64(len(keys)))
	for _, k := range keys {
		args.AddString(k)
	}
	if limit > 0 {
		args.AddStatic(wire.TokLimit)
		args.AddInt(limit)
	}
	return args, nil
}

// buildDstMultiKey covers SINTERSTORE, SUNIONSTORE, SDIFFSTORE:
// destination key+.
func buildDstMultiKey(op wire.Opcode, dst string, keys []string) (*wire.Args, error) {
	if dst == "" {
		return nil, argErr(op, "destination key must not be empty")
	}
	if len(keys) == 0 {
		return nil, argErr(op, "at least one source key required")
	}
	args := wire.NewArgs(1 + len(keys))
	args.AddString(dst)
	for _, k := range keys {
		args.AddString(k)
	}
	return args, nil
}

// buildTwoKeyMember covers SMOVE: source destination member, all non-empty.
func buildTwoKeyMember(op wire.Opcode, src, dst, member string) (*wire.Args, error) {
	if src == "" || dst == "" || member == "" {
		return nil, argErr(op, "source, destination and member must not be empty")
	}
	args := wire.NewArgs(3)
	args.AddString(src)
	args.AddString(dst)
	args.AddString(member)
	return args, nil
}

// buildGeoAdd covers GEOADD: key (longitude latitude member)+.
func buildGeoAdd(key string, members []GeoMember) (*wire.Args, error) {
	if key == "" {
		return nil, argErr(wire.OpGeoAdd, "key must not be empty")
	}
	if len(members) == 0 {
		return nil, argErr(wire.OpGeoAdd, "at least one member required")
	}
	for _, m := range members {
		if m.Name == "" {
			return nil, argErr(wire.OpGeoAdd, "member name must not be empty")
		}
		if m.Longitude < -180 || m.Longitude > 180 {
			return nil, argErr(wire.OpGeoAdd, "longitude out of range")
		}
		if m.Latitude < -90 || m.Latitude > 90 {
			return nil, argErr(wire.OpGeoAdd, "latitude out of range")
		}
	}
	args := wire.NewArgs(1 + 3*len(members))
	args.AddString(key)
	for _, m := range members {
		args.AddFloat(m.Longitude)
		args.AddFloat(m.Latitude)
		args.AddString(m.Name)
	}
	return args, nil
}

// buildGeoDist covers GEODIST: key source destination [unit].
func buildGeoDist(key, src, dst, unit string) (*wire.Args, error) {
	if key == "" || src == "" || dst == "" {
		return nil, argErr(wire.OpGeoDist, "key and both members must not be empty")
	}
	if unit != "" {
		var err error
		if unit, err = normalizeUnit(wire.OpGeoDist, unit); err != nil {
			return nil, err
		}
	}
	args := wire.NewArgs(4)
	args.AddString(key)
	args.AddString(src)
	args.AddString(dst)
	if unit != "" {
		args.AddString(unit)
	}
	return args, nil
}

// buildGeoSearch covers GEOSEARCH and GEOSEARCHSTORE. Fixed token order:
// [dest,] key, FROM clause, BY clause with unit, [SORT], [COUNT n [ANY]],
// [WITH* flags, search only], [STOREDIST, store only].
func buildGeoSearch(op wire.Opcode, dst, key string, q *GeoSearchQuery, with GeoSearchOptions, storeDist bool) (*wire.Args, error) {
	if key == "" {
		return nil, argErr(op, "key must not be empty")
	}
	if op == wire.OpGeoSearchStore && dst == "" {
		return nil, argErr(op, "destination key must not be empty")
	}
	if q == nil {
		return nil, argErr(op, "search query required")
	}
	hasMember := q.FromMember != ""
	hasLonLat := q.FromLonLat != nil
	if hasMember == hasLonLat {
		return nil, argErr(op, "exactly one of FromMember and FromLonLat required")
	}
	hasRadius := q.ByRadius > 0
	hasBox := q.ByBox != nil
	if hasRadius == hasBox {
		return nil, argErr(op, "exactly one of ByRadius and ByBox required")
	}
	if hasBox && (q.ByBox.Width <= 0 || q.ByBox.Height <= 0) {
		return nil, argErr(op, "box dimensions must be positive")
	}
	unit := q.Unit
	if unit == "" {
		unit = "m"
	}
	unit, err := normalizeUnit(op, unit)
	if err != nil {
		return nil, err
	}
	sort, err := normalizeSort(op, q.Sort)
	if err != nil {
		return nil, err
	}
	if q.Count < 0 {
		return nil, argErr(op, "count must not be negative")
	}

	args := wire.NewArgs(16)
	if op == wire.OpGeoSearchStore {
		args.AddString(dst)
	}
	args.AddString(key)

	if hasMember {
		args.AddStatic(wire.TokFromMember)
		args.AddString(q.FromMember)
	} else {
		args.AddStatic(wire.TokFromLonLat)
		args.AddFloat(q.FromLonLat.Longitude)
		args.AddFloat(q.FromLonLat.Latitude)
	}

	if hasRadius {
		args.AddStatic(wire.TokByRadius)
		args.AddFloat(q.ByRadius)
	} else {
		args.AddStatic(wire.TokByBox)
		args.AddFloat(q.ByBox.Width)
		args.AddFloat(q.ByBox.Height)
	}
	args.AddString(unit)

	if sort != "" {
		args.AddStatic(sort)
	}
	if q.Count > 0 {
		args.AddStatic(wire.TokCount)
		args.AddInt(q.Count)
		if q.CountAny {
			args.AddStatic(wire.TokAny)
		}
	}

	if op == wire.OpGeoSearch {
		if with.WithCoord {
			args.AddStatic(wire.TokWithCoord)
		}
		if with.WithDist {
			args.AddStatic(wire.TokWithDist)
		}
		if with.WithHash {
			args.AddStatic(wire.TokWithHash)
		}
	}
	if op == wire.OpGeoSearchStore && storeDist {
		args.AddStatic(wire.TokStoreDist)
	}
	return args, nil
}

// buildScan covers the scan family: [key,] cursor, [MATCH pattern],
// [COUNT n], [TYPE t]. key is empty for the keyspace scan; TYPE is valid
// only there.
func buildScan(op wire.Opcode, key, cursor string, opts *ScanOptions) (*wire.Args, error) {
	perKey := key != ""
	var o ScanOptions
	if opts != nil {
		o = *opts
	}
	if o.Count < 0 {
		return nil, argErr(op, "count must not be negative")
	}
	if perKey && o.Type != "" {
		return nil, argErr(op, "TYPE filter applies only to the keyspace scan")
	}
	if cursor == "" {
		cursor = scanCursorStart
	}

	args := wire.NewArgs(8)
	if perKey {
		args.AddString(key)
	}
	args.AddString(cursor)
	if o.Match != "" {
		args.AddStatic(wire.TokMatch)
		args.AddString(o.Match)
	}
	if o.Count > 0 {
		args.AddStatic(wire.TokCount)
		args.AddInt(o.Count)
	}
	if o.Type != "" {
		args.AddStatic(wire.TokType)
		args.AddString(o.Type)
	}
	return args, nil
}

// normalizeUnit validates a distance unit case-insensitively and returns the
// lowercase wire form. Case-insensitive matching of option text happens only
// here and in normalizeSort.
func normalizeUnit(op wire.Opcode, unit string) (string, error) {
	switch strings.ToLower(unit) {
	case "m", "km", "mi", "ft":
		return strings.ToLower(unit), nil
	default:
		return "", argErr(op, "unit must be one of m, km, mi, ft")
	}
}

// normalizeSort validates a sort direction and returns the wire literal.
// Empty input means no SORT token.
func normalizeSort(op wire.Opcode, sort string) (string, error) {
	switch strings.ToLower(sort) {
	case "":
		return "", nil
	case "asc":
		return wire.TokAsc, nil
	case "desc":
		return wire.TokDesc, nil
	default:
		return "", argErr(op, "sort must be ASC or DESC")
	}
}
