package memstore

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/glidekv/glidekv/wire"
)

// earthRadiusMeters matches the radius the server uses for haversine math.
const earthRadiusMeters = 6372797.560856

var unitToMeters = map[string]float64{
	"m":  1,
	"km": 1000,
	"mi": 1609.34,
	"ft": 0.3048,
}

func (s *Store) geoOK(key string) (map[string]geoPoint, bool) {
	if t := s.typeOf(key); t != "" && t != "zset" {
		return nil, false
	}
	return s.geo[key], true
}

// geoadd covers GEOADD. tokens: key (lon lat member)+.
func (s *Store) geoadd(tokens []string) wire.Node {
	key := tokens[0]
	points, ok := s.geoOK(key)
	if !ok {
		return wrongType()
	}
	rest := tokens[1:]
	if len(rest) == 0 || len(rest)%3 != 0 {
		return wire.Error("ERR syntax error")
	}
	if points == nil {
		points = make(map[string]geoPoint)
	}
	var added int64
	for i := 0; i < len(rest); i += 3 {
		lon, errLon := strconv.ParseFloat(rest[i], 64)
		lat, errLat := strconv.ParseFloat(rest[i+1], 64)
		if errLon != nil || errLat != nil || lon < -180 || lon > 180 || lat < -90 || lat > 90 {
			return wire.Error("ERR invalid longitude,latitude pair " + rest[i] + "," + rest[i+1])
		}
		name := rest[i+2]
		if _, exists := points[name]; !exists {
			added++
		}
		points[name] = geoPoint{lon: lon, lat: lat}
	}
	s.geo[key] = points
	return wire.Int(added)
}

// geodist covers GEODIST. tokens: key source destination [unit]. A missing
// member answers null.
func (s *Store) geodist(tokens []string) wire.Node {
	points, ok := s.geoOK(tokens[0])
	if !ok {
		return wrongType()
	}
	unit := "m"
	if len(tokens) == 4 {
		unit = strings.ToLower(tokens[3])
	}
	factor, ok := unitToMeters[unit]
	if !ok {
		return wire.Error("ERR unsupported unit provided. please use M, KM, FT, MI")
	}
	a, okA := points[tokens[1]]
	b, okB := points[tokens[2]]
	if !okA || !okB {
		return wire.Null()
	}
	d := haversine(a, b) / factor
	return wire.String(strconv.FormatFloat(d, 'f', 4, 64))
}

// geohash covers GEOHASH: one 11-character geohash per member, null for
// members not in the index.
func (s *Store) geohash(tokens []string) wire.Node {
	points, ok := s.geoOK(tokens[0])
	if !ok {
		return wrongType()
	}
	el := make([]wire.Node, 0, len(tokens)-1)
	for _, m := range tokens[1:] {
		p, exists := points[m]
		if !exists {
			el = append(el, wire.Null())
			continue
		}
		el = append(el, wire.String(encodeGeohash(p.lon, p.lat)))
	}
	return wire.Array(el...)
}

// geopos covers GEOPOS: [lon, lat] text pairs, null for missing members.
// Coordinates render with 17 digits, the precision the server answers with.
func (s *Store) geopos(tokens []string) wire.Node {
	points, ok := s.geoOK(tokens[0])
	if !ok {
		return wrongType()
	}
	el := make([]wire.Node, 0, len(tokens)-1)
	for _, m := range tokens[1:] {
		p, exists := points[m]
		if !exists {
			el = append(el, wire.Null())
			continue
		}
		el = append(el, wire.Array(
			wire.String(strconv.FormatFloat(p.lon, 'f', 17, 64)),
			wire.String(strconv.FormatFloat(p.lat, 'f', 17, 64)),
		))
	}
	return wire.Array(el...)
}

// geoQuery is the parsed search clause shared by GEOSEARCH and
// GEOSEARCHSTORE.
type geoQuery struct {
	center    geoPoint
	hasCenter bool

	radiusMeters float64
	byBox        bool
	widthMeters  float64
	heightMeters float64

	unitFactor float64
	sortDesc   bool
	sorted     bool
	count      int64

	withCoord bool
	withDist  bool
	withHash  bool
	storeDist bool

	errNode *wire.Node
}

type geoHit struct {
	name string
	p    geoPoint
	dist float64 // meters
}

// parseGeoSearch consumes the tokens after the source key.
func parseGeoSearch(points map[string]geoPoint, rest []string) geoQuery {
	var q geoQuery
	fail := func(msg string) geoQuery {
		n := wire.Error(msg)
		q.errNode = &n
		return q
	}

	i := 0
	next := func() (string, bool) {
		if i >= len(rest) {
			return "", false
		}
		t := rest[i]
		i++
		return t, true
	}
	nextFloat := func() (float64, bool) {
		t, ok := next()
		if !ok {
			return 0, false
		}
		f, err := strconv.ParseFloat(t, 64)
		return f, err == nil
	}

	tok, ok := next()
	if !ok {
		return fail("ERR syntax error")
	}
	switch strings.ToUpper(tok) {
	case wire.TokFromMember:
		name, ok := next()
		if !ok {
			return fail("ERR syntax error")
		}
		p, exists := points[name]
		if !exists {
			return fail("ERR could not decode requested zset member")
		}
		q.center = p
		q.hasCenter = true
	case wire.TokFromLonLat:
		lon, okLon := nextFloat()
		lat, okLat := nextFloat()
		if !okLon || !okLat {
			return fail("ERR syntax error")
		}
		q.center = geoPoint{lon: lon, lat: lat}
		q.hasCenter = true
	default:
		return fail("ERR syntax error")
	}

	tok, ok = next()
	if !ok {
		return fail("ERR syntax error")
	}
	byBox := false
	var dims [2]float64
	switch strings.ToUpper(tok) {
	case wire.TokByRadius:
		r, okR := nextFloat()
		if !okR {
			return fail("ERR syntax error")
		}
		dims[0] = r
	case wire.TokByBox:
		w, okW := nextFloat()
		h, okH := nextFloat()
		if !okW || !okH {
			return fail("ERR syntax error")
		}
		dims[0], dims[1] = w, h
		byBox = true
	default:
		return fail("ERR syntax error")
	}
	unit, ok := next()
	if !ok {
		return fail("ERR syntax error")
	}
	factor, okUnit := unitToMeters[strings.ToLower(unit)]
	if !okUnit {
		return fail("ERR unsupported unit provided. please use M, KM, FT, MI")
	}
	q.unitFactor = factor
	q.byBox = byBox
	if byBox {
		q.widthMeters = dims[0] * factor
		q.heightMeters = dims[1] * factor
	} else {
		q.radiusMeters = dims[0] * factor
	}

	for {
		tok, ok = next()
		if !ok {
			break
		}
		switch strings.ToUpper(tok) {
		case wire.TokAsc:
			q.sorted = true
		case wire.TokDesc:
			q.sorted = true
			q.sortDesc = true
		case wire.TokCount:
			n, okN := next()
			if !okN {
				return fail("ERR syntax error")
			}
			c, err := strconv.ParseInt(n, 10, 64)
			if err != nil || c < 1 {
				return fail("ERR COUNT must be > 0")
			}
			q.count = c
		case wire.TokAny:
			// advisory: the snapshot scan is exhaustive anyway
		case wire.TokWithCoord:
			q.withCoord = true
		case wire.TokWithDist:
			q.withDist = true
		case wire.TokWithHash:
			q.withHash = true
		case wire.TokStoreDist:
			q.storeDist = true
		default:
			return fail("ERR syntax error")
		}
	}
	return q
}

// search collects the hits of a parsed query in deterministic order: by
// distance when sorted, by name otherwise.
func (q *geoQuery) search(points map[string]geoPoint) []geoHit {
	var hits []geoHit
	for name, p := range points {
		d := haversine(q.center, p)
		if q.byBox {
			if !insideBox(q.center, p, q.widthMeters, q.heightMeters) {
				continue
			}
		} else if d > q.radiusMeters {
			continue
		}
		hits = append(hits, geoHit{name: name, p: p, dist: d})
	}
	if q.sorted {
		sort.Slice(hits, func(i, j int) bool {
			if q.sortDesc {
				return hits[i].dist > hits[j].dist
			}
			return hits[i].dist < hits[j].dist
		})
	} else {
		sort.Slice(hits, func(i, j int) bool { return hits[i].name < hits[j].name })
	}
	if q.count > 0 && int64(len(hits)) > q.count {
		hits = hits[:q.count]
	}
	return hits
}

// geosearch covers GEOSEARCH. tokens: key FROM... BY... [options].
func (s *Store) geosearch(tokens []string) wire.Node {
	points, ok := s.geoOK(tokens[0])
	if !ok {
		return wrongType()
	}
	q := parseGeoSearch(points, tokens[1:])
	if q.errNode != nil {
		return *q.errNode
	}
	hits := q.search(points)

	el := make([]wire.Node, len(hits))
	withAny := q.withCoord || q.withDist || q.withHash
	for i, h := range hits {
		if !withAny {
			el[i] = wire.String(h.name)
			continue
		}
		var fields []wire.Node
		if q.withDist {
			fields = append(fields, wire.String(strconv.FormatFloat(h.dist/q.unitFactor, 'f', 4, 64)))
		}
		if q.withHash {
			fields = append(fields, wire.Int(encodeGeohashBits(h.p.lon, h.p.lat)))
		}
		if q.withCoord {
			fields = append(fields, wire.Array(
				wire.String(strconv.FormatFloat(h.p.lon, 'f', 17, 64)),
				wire.String(strconv.FormatFloat(h.p.lat, 'f', 17, 64)),
			))
		}
		el[i] = wire.Array(wire.String(h.name), wire.Array(fields...))
	}
	return wire.Array(el...)
}

// geosearchstore covers GEOSEARCHSTORE. tokens: destination key FROM... BY...
// [options]. With STOREDIST the destination becomes a sorted set of
// distances; otherwise the matched points are copied.
func (s *Store) geosearchstore(tokens []string) wire.Node {
	points, ok := s.geoOK(tokens[1])
	if !ok {
		return wrongType()
	}
	q := parseGeoSearch(points, tokens[2:])
	if q.errNode != nil {
		return *q.errNode
	}
	hits := q.search(points)

	dst := tokens[0]
	s.deleteKey(dst)
	if len(hits) == 0 {
		return wire.Int(0)
	}
	if q.storeDist {
		z := make(map[string]float64, len(hits))
		for _, h := range hits {
			z[h.name] = h.dist / q.unitFactor
		}
		s.zsets[dst] = z
	} else {
		g := make(map[string]geoPoint, len(hits))
		for _, h := range hits {
			g[h.name] = h.p
		}
		s.geo[dst] = g
	}
	return wire.Int(int64(len(hits)))
}

// haversine returns the great-circle distance between two points in meters.
func haversine(a, b geoPoint) float64 {
	lat1 := a.lat * math.Pi / 180
	lat2 := b.lat * math.Pi / 180
	dLat := (b.lat - a.lat) * math.Pi / 180
	dLon := (b.lon - a.lon) * math.Pi / 180

	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)
	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLon*sinLon
	return 2 * earthRadiusMeters * math.Asin(math.Sqrt(h))
}

// insideBox tests whether p falls in the axis-aligned box centered on c,
// measuring each axis as a great-circle distance.
func insideBox(c, p geoPoint, width, height float64) bool {
	latDist := haversine(geoPoint{lon: c.lon, lat: c.lat}, geoPoint{lon: c.lon, lat: p.lat})
	lonDist := haversine(geoPoint{lon: c.lon, lat: p.lat}, geoPoint{lon: p.lon, lat: p.lat})
	return lonDist <= width/2 && latDist <= height/2
}

// The index quantizes each axis to 26 bits and interleaves them into a
// 52-bit cell id, with latitude clamped to the web-mercator range the way
// the server stores it.
const (
	geohashBase32 = "0123456789bcdefghjkmnpqrstuvwxyz"
	geoBits       = 26
	geoLatMin     = -85.05112878
	geoLatMax     = 85.05112878
)

func quantize(v, lo, hi float64) uint64 {
	return uint64((v - lo) / (hi - lo) * float64(uint64(1)<<geoBits))
}

func dequantize(b uint64, lo, hi float64) float64 {
	return lo + (hi-lo)*(float64(b)+0.5)/float64(uint64(1)<<geoBits)
}

func interleave(lonBits, latBits uint64) uint64 {
	var out uint64
	for i := geoBits - 1; i >= 0; i-- {
		out = out<<1 | (lonBits>>uint(i))&1
		out = out<<1 | (latBits>>uint(i))&1
	}
	return out
}

// encodeGeohashBits is the 52-bit cell id the server answers for WITHHASH.
func encodeGeohashBits(lon, lat float64) int64 {
	return int64(interleave(quantize(lon, -180, 180), quantize(lat, geoLatMin, geoLatMax)))
}

// encodeGeohash renders the 11-character text form. The server derives it
// from the cell center re-encoded over the standard latitude range, and the
// 52 cell bits only fill ten characters, so the last one is always '0'.
func encodeGeohash(lon, lat float64) string {
	centerLon := dequantize(quantize(lon, -180, 180), -180, 180)
	centerLat := dequantize(quantize(lat, geoLatMin, geoLatMax), geoLatMin, geoLatMax)
	bits := interleave(quantize(centerLon, -180, 180), quantize(centerLat, -90, 90))

	var buf [11]byte
	for j := 0; j < 11; j++ {
		var idx uint64
		if j*5+5 <= 52 {
			idx = (bits >> uint(52-(j+1)*5)) & 0x1f
		}
		buf[j] = geohashBase32[idx]
	}
	return string(buf[:])
}
