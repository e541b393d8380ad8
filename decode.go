package glidekv

import (
	"github.com/glidekv/glidekv/wire"
)

// Decoders are pure functions of (expected shape, response). They never fail
// fatally: an unexpected response shape decodes to the shape-appropriate
// zero value. The store enforces protocol guarantees; a mismatch here most
// likely means a stale cursor or a server-side shape change the binding
// should tolerate.

// decodeCount handles integer replies. Null counts as zero.
func decodeCount(n wire.Node) int64 {
	if v, ok := n.AsInt(); ok {
		return v
	}
	return 0
}

// decodeBool handles boolean replies; the store answers some predicates
// with OK or 0/1 integers.
func decodeBool(n wire.Node) bool {
	v, _ := n.AsBool()
	return v
}

// decodeBools handles SMISMEMBER: an array of per-member booleans.
func decodeBools(n wire.Node) []bool {
	if n.Kind != wire.KindArray && n.Kind != wire.KindSet {
		return []bool{}
	}
	out := make([]bool, 0, len(n.Elems))
	for _, el := range n.Elems {
		v, _ := el.AsBool()
		out = append(out, v)
	}
	return out
}

// decodeStrings handles string collections (SMEMBERS, SINTER, plain
// GEOSEARCH, SPOP with count). Null placeholders decode to empty strings so
// positions line up with the request (GEOHASH).
func decodeStrings(n wire.Node) []string {
	if n.Kind != wire.KindArray && n.Kind != wire.KindSet {
		return []string{}
	}
	out := make([]string, 0, len(n.Elems))
	for _, el := range n.Elems {
		switch el.Kind {
		case wire.KindString:
			out = append(out, el.Str)
		case wire.KindNull:
			out = append(out, "")
		}
	}
	return out
}

// decodeStringOK handles single-value replies that may be Null (SPOP,
// SRANDMEMBER without count).
func decodeStringOK(n wire.Node) StringResult {
	if s, ok := n.AsString(); ok {
		return StringResult{Value: s, Found: true}
	}
	return StringResult{}
}

// decodeFloatOK handles GEODIST: Float or decimal-text String, Null when
// either member is missing.
func decodeFloatOK(n wire.Node) FloatResult {
	if n.IsNull() {
		return FloatResult{}
	}
	if v, ok := n.AsFloat(); ok {
		return FloatResult{Value: v, Found: true}
	}
	return FloatResult{}
}

// decodePositions handles GEOPOS: an array of [longitude, latitude] pairs
// with Null placeholders for missing members.
func decodePositions(n wire.Node) []*GeoCoord {
	if n.Kind != wire.KindArray {
		return []*GeoCoord{}
	}
	out := make([]*GeoCoord, 0, len(n.Elems))
	for _, el := range n.Elems {
		switch {
		case el.Kind == wire.KindArray && len(el.Elems) == 2:
			lon, okLon := el.Elems[0].AsFloat()
			lat, okLat := el.Elems[1].AsFloat()
			if okLon && okLat {
				out = append(out, &GeoCoord{Longitude: lon, Latitude: lat})
			}
		case el.IsNull():
			out = append(out, nil)
		}
	}
	return out
}

// decodeGeoLocations returns the composite GEOSEARCH decoder for the WITH*
// flags requested by the call. The wire response omits absent fields rather
// than nulling them, so the decoder must know which fields to expect: each
// entry is [name, [dist?, hash?, [lon, lat]?]] with the inner fields in that
// fixed order. With no flags requested the response is a plain array of
// names.
func decodeGeoLocations(with GeoSearchOptions) func(wire.Node) []GeoLocation {
	if !with.WithCoord && !with.WithDist && !with.WithHash {
		return func(n wire.Node) []GeoLocation {
			names := decodeStrings(n)
			out := make([]GeoLocation, len(names))
			for i, name := range names {
				out[i] = GeoLocation{Name: name}
			}
			return out
		}
	}

	return func(n wire.Node) []GeoLocation {
		if n.Kind != wire.KindArray {
			return []GeoLocation{}
		}
		out := make([]GeoLocation, 0, len(n.Elems))
		for _, entry := range n.Elems {
			if entry.Kind != wire.KindArray || len(entry.Elems) == 0 {
				continue
			}
			name, ok := entry.Elems[0].AsString()
			if !ok {
				continue
			}
			loc := GeoLocation{Name: name}

			inner := entry.Elem(1)
			if inner.Kind != wire.KindArray {
				out = append(out, loc)
				continue
			}
			idx := 0
			if with.WithDist {
				if v, ok := inner.Elem(idx).AsFloat(); ok {
					loc.Dist = v
					loc.HasDist = true
				}
				idx++
			}
			if with.WithHash {
				if v, ok := inner.Elem(idx).AsInt(); ok {
					loc.Hash = v
					loc.HasHash = true
				}
				idx++
			}
			if with.WithCoord {
				pair := inner.Elem(idx)
				if pair.Kind == wire.KindArray && len(pair.Elems) == 2 {
					lon, okLon := pair.Elems[0].AsFloat()
					lat, okLat := pair.Elems[1].AsFloat()
					if okLon && okLat {
						loc.Coord = &GeoCoord{Longitude: lon, Latitude: lat}
					}
				}
			}
			out = append(out, loc)
		}
		return out
	}
}

// decodeScanPayload extracts [cursor, elements] from a scan reply. A
// malformed reply (anything but a 2-element array with a string cursor) is
// treated as a terminal page: empty elements, cursor "0". The flat element
// list is shaped by the per-command decoders below.
func decodeScanPayload(n wire.Node) (cursor string, elems []wire.Node, ok bool) {
	if n.Kind != wire.KindArray || len(n.Elems) != 2 {
		return scanCursorStart, nil, false
	}
	c, isStr := n.Elems[0].AsString()
	if !isStr {
		return scanCursorStart, nil, false
	}
	payload := n.Elems[1]
	if payload.Kind != wire.KindArray && payload.Kind != wire.KindSet {
		return scanCursorStart, nil, false
	}
	return c, payload.Elems, true
}

// decodeScanPage handles SCAN and SSCAN pages. ok is false when the reply
// did not have the [cursor, elements] shape and the page is a synthetic
// terminal one.
func decodeScanPage(n wire.Node) (ScanPage, bool) {
	cursor, elems, ok := decodeScanPayload(n)
	if !ok {
		return ScanPage{Cursor: scanCursorStart}, false
	}
	keys := make([]string, 0, len(elems))
	for _, el := range elems {
		if s, isStr := el.AsString(); isStr {
			keys = append(keys, s)
		}
	}
	return ScanPage{Cursor: cursor, Keys: keys}, true
}

// decodeHScanPage handles HSCAN pages: alternating field/value pairs.
func decodeHScanPage(n wire.Node) (HScanPage, bool) {
	cursor, elems, ok := decodeScanPayload(n)
	if !ok {
		return HScanPage{Cursor: scanCursorStart, Fields: map[string]string{}}, false
	}
	fields := make(map[string]string, len(elems)/2)
	for i := 0; i+1 < len(elems); i += 2 {
		k, okK := elems[i].AsString()
		v, okV := elems[i+1].AsString()
		if okK && okV {
			fields[k] = v
		}
	}
	return HScanPage{Cursor: cursor, Fields: fields}, true
}

// decodeZScanPage handles ZSCAN pages: alternating member/score pairs with
// decimal-text scores.
func decodeZScanPage(n wire.Node) (ZScanPage, bool) {
	cursor, elems, ok := decodeScanPayload(n)
	if !ok {
		return ZScanPage{Cursor: scanCursorStart, Members: map[string]float64{}}, false
	}
	members := make(map[string]float64, len(elems)/2)
	for i := 0; i+1 < len(elems); i += 2 {
		m, okM := elems[i].AsString()
		if !okM {
			continue
		}
		if score, okS := elems[i+1].AsFloat(); okS {
			members[m] = score
		}
	}
	return ZScanPage{Cursor: cursor, Members: members}, true
}
