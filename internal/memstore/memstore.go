// Package memstore is an in-memory store speaking the executor protocol.
// It backs tests and the demo CLI, so no native client or server process is
// needed. Data lives in plain maps guarded by one mutex; scans paginate over
// a sorted snapshot with integer-offset cursors.
package memstore

import (
	"context"
	"path"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/glidekv/glidekv/wire"
)

const defaultScanPageSize = 10

type geoPoint struct {
	lon float64
	lat float64
}

// Store implements the Executor and BatchExecutor interfaces over in-memory
// maps. Safe for concurrent use.
type Store struct {
	mu     sync.Mutex
	sets   map[string]map[string]struct{}
	hashes map[string]map[string]string
	zsets  map[string]map[string]float64
	geo    map[string]map[string]geoPoint
}

// New returns an empty store.
func New() *Store {
	return &Store{
		sets:   make(map[string]map[string]struct{}),
		hashes: make(map[string]map[string]string),
		zsets:  make(map[string]map[string]float64),
		geo:    make(map[string]map[string]geoPoint),
	}
}

// SeedHash replaces the hash at key. Test fixture helper.
func (s *Store) SeedHash(key string, fields map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h := make(map[string]string, len(fields))
	for k, v := range fields {
		h[k] = v
	}
	s.hashes[key] = h
}

// SeedZSet replaces the sorted set at key. Test fixture helper.
func (s *Store) SeedZSet(key string, members map[string]float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	z := make(map[string]float64, len(members))
	for k, v := range members {
		z[k] = v
	}
	s.zsets[key] = z
}

// Execute runs one command against the store. Unknown opcodes and wrong-type
// accesses answer with an error node, the way a server reports them, rather
// than a Go error.
func (s *Store) Execute(ctx context.Context, op wire.Opcode, args *wire.Args) (wire.Node, error) {
	if err := ctx.Err(); err != nil {
		return wire.Node{}, err
	}
	tokens := args.Strings()

	s.mu.Lock()
	defer s.mu.Unlock()

	switch op {
	case wire.OpSAdd:
		return s.sadd(tokens), nil
	case wire.OpSRem:
		return s.srem(tokens), nil
	case wire.OpSCard:
		return s.scard(tokens), nil
	case wire.OpSMembers:
		return s.smembers(tokens), nil
	case wire.OpSIsMember:
		return s.sismember(tokens), nil
	case wire.OpSMIsMember:
		return s.smismember(tokens), nil
	case wire.OpSPop:
		return s.spop(tokens), nil
	case wire.OpSRandMember:
		return s.srandmember(tokens), nil
	case wire.OpSInter, wire.OpSUnion, wire.OpSDiff:
		return s.setCombine(op, tokens), nil
	case wire.OpSInterCard:
		return s.sintercard(tokens), nil
	case wire.OpSInterStore, wire.OpSUnionStore, wire.OpSDiffStore:
		return s.setCombineStore(op, tokens), nil
	case wire.OpSMove:
		return s.smove(tokens), nil

	case wire.OpScan, wire.OpClusterScan:
		return s.scanKeyspace(tokens), nil
	case wire.OpSScan:
		return s.scanSet(tokens), nil
	case wire.OpHScan:
		return s.scanHash(tokens), nil
	case wire.OpZScan:
		return s.scanZSet(tokens), nil

	case wire.OpGeoAdd:
		return s.geoadd(tokens), nil
	case wire.OpGeoDist:
		return s.geodist(tokens), nil
	case wire.OpGeoHash:
		return s.geohash(tokens), nil
	case wire.OpGeoPos:
		return s.geopos(tokens), nil
	case wire.OpGeoSearch:
		return s.geosearch(tokens), nil
	case wire.OpGeoSearchStore:
		return s.geosearchstore(tokens), nil
	}
	return wire.Error("ERR unknown command '" + op.String() + "'"), nil
}

// ExecuteBatch runs the entries sequentially under the positional contract.
// Per-entry server errors land in the reply slots; only a context failure
// aborts the batch.
func (s *Store) ExecuteBatch(ctx context.Context, ops []wire.Opcode, args []*wire.Args) ([]wire.Node, error) {
	nodes := make([]wire.Node, len(ops))
	for i, op := range ops {
		n, err := s.Execute(ctx, op, args[i])
		if err != nil {
			return nil, err
		}
		nodes[i] = n
	}
	return nodes, nil
}

func wrongType() wire.Node {
	return wire.Error("WRONGTYPE Operation against a key holding the wrong kind of value")
}

// typeOf reports the value type at key, empty when the key does not exist.
// Geo keys report as sorted sets, matching how the server stores them.
func (s *Store) typeOf(key string) string {
	if _, ok := s.sets[key]; ok {
		return "set"
	}
	if _, ok := s.hashes[key]; ok {
		return "hash"
	}
	if _, ok := s.zsets[key]; ok {
		return "zset"
	}
	if _, ok := s.geo[key]; ok {
		return "zset"
	}
	return ""
}

func (s *Store) setOK(key string) (map[string]struct{}, bool) {
	if t := s.typeOf(key); t != "" && t != "set" {
		return nil, false
	}
	return s.sets[key], true
}

func (s *Store) sadd(tokens []string) wire.Node {
	key := tokens[0]
	set, ok := s.setOK(key)
	if !ok {
		return wrongType()
	}
	if set == nil {
		set = make(map[string]struct{})
		s.sets[key] = set
	}
	var added int64
	for _, m := range tokens[1:] {
		if _, exists := set[m]; !exists {
			set[m] = struct{}{}
			added++
		}
	}
	return wire.Int(added)
}

func (s *Store) srem(tokens []string) wire.Node {
	key := tokens[0]
	set, ok := s.setOK(key)
	if !ok {
		return wrongType()
	}
	var removed int64
	for _, m := range tokens[1:] {
		if _, exists := set[m]; exists {
			delete(set, m)
			removed++
		}
	}
	if len(set) == 0 {
		delete(s.sets, key)
	}
	return wire.Int(removed)
}

func (s *Store) scard(tokens []string) wire.Node {
	set, ok := s.setOK(tokens[0])
	if !ok {
		return wrongType()
	}
	return wire.Int(int64(len(set)))
}

func (s *Store) smembers(tokens []string) wire.Node {
	set, ok := s.setOK(tokens[0])
	if !ok {
		return wrongType()
	}
	members := sortedMembers(set)
	el := make([]wire.Node, len(members))
	for i, m := range members {
		el[i] = wire.String(m)
	}
	return wire.Set(el...)
}

func (s *Store) sismember(tokens []string) wire.Node {
	set, ok := s.setOK(tokens[0])
	if !ok {
		return wrongType()
	}
	if _, exists := set[tokens[1]]; exists {
		return wire.Int(1)
	}
	return wire.Int(0)
}

func (s *Store) smismember(tokens []string) wire.Node {
	set, ok := s.setOK(tokens[0])
	if !ok {
		return wrongType()
	}
	el := make([]wire.Node, 0, len(tokens)-1)
	for _, m := range tokens[1:] {
		if _, exists := set[m]; exists {
			el = append(el, wire.Int(1))
		} else {
			el = append(el, wire.Int(0))
		}
	}
	return wire.Array(el...)
}

// spop removes members in sorted order, which keeps the store deterministic
// for tests. tokens: key [count].
func (s *Store) spop(tokens []string) wire.Node {
	key := tokens[0]
	set, ok := s.setOK(key)
	if !ok {
		return wrongType()
	}
	if len(tokens) == 1 {
		if len(set) == 0 {
			return wire.Null()
		}
		m := sortedMembers(set)[0]
		delete(set, m)
		if len(set) == 0 {
			delete(s.sets, key)
		}
		return wire.String(m)
	}

	count, err := strconv.ParseInt(tokens[1], 10, 64)
	if err != nil || count < 0 {
		return wire.Error("ERR value is out of range, must be positive")
	}
	members := sortedMembers(set)
	if count < int64(len(members)) {
		members = members[:count]
	}
	el := make([]wire.Node, len(members))
	for i, m := range members {
		delete(set, m)
		el[i] = wire.String(m)
	}
	if len(set) == 0 {
		delete(s.sets, key)
	}
	return wire.Set(el...)
}

// srandmember samples in sorted order. A negative count samples with
// repetition. tokens: key [count].
func (s *Store) srandmember(tokens []string) wire.Node {
	set, ok := s.setOK(tokens[0])
	if !ok {
		return wrongType()
	}
	if len(tokens) == 1 {
		if len(set) == 0 {
			return wire.Null()
		}
		return wire.String(sortedMembers(set)[0])
	}

	count, err := strconv.ParseInt(tokens[1], 10, 64)
	if err != nil {
		return wire.Error("ERR value is not an integer or out of range")
	}
	members := sortedMembers(set)
	if len(members) == 0 {
		return wire.Array()
	}
	var out []wire.Node
	if count >= 0 {
		if count < int64(len(members)) {
			members = members[:count]
		}
		for _, m := range members {
			out = append(out, wire.String(m))
		}
	} else {
		for i := int64(0); i < -count; i++ {
			out = append(out, wire.String(members[i%int64(len(members))]))
		}
	}
	return wire.Array(out...)
}

// setCombine covers SINTER, SUNION, SDIFF. tokens: key+.
func (s *Store) setCombine(op wire.Opcode, tokens []string) wire.Node {
	result, errNode := s.combine(op, tokens)
	if errNode != nil {
		return *errNode
	}
	members := sortedMembers(result)
	el := make([]wire.Node, len(members))
	for i, m := range members {
		el[i] = wire.String(m)
	}
	return wire.Set(el...)
}

// sintercard covers SINTERCARD. tokens: numkeys key+ [LIMIT n].
func (s *Store) sintercard(tokens []string) wire.Node {
	numkeys, err := strconv.Atoi(tokens[0])
	if err != nil || numkeys < 1 || 1+numkeys > len(tokens) {
		return wire.Error("ERR numkeys should be greater than 0")
	}
	keys := tokens[1 : 1+numkeys]
	var limit int64
	rest := tokens[1+numkeys:]
	if len(rest) == 2 && strings.EqualFold(rest[0], wire.TokLimit) {
		limit, err = strconv.ParseInt(rest[1], 10, 64)
		if err != nil || limit < 0 {
			return wire.Error("ERR LIMIT can't be negative")
		}
	} else if len(rest) != 0 {
		return wire.Error("ERR syntax error")
	}

	result, errNode := s.combine(wire.OpSInter, keys)
	if errNode != nil {
		return *errNode
	}
	card := int64(len(result))
	if limit > 0 && card > limit {
		card = limit
	}
	return wire.Int(card)
}

// setCombineStore covers SINTERSTORE, SUNIONSTORE, SDIFFSTORE.
// tokens: destination key+.
func (s *Store) setCombineStore(op wire.Opcode, tokens []string) wire.Node {
	var combineOp wire.Opcode
	switch op {
	case wire.OpSInterStore:
		combineOp = wire.OpSInter
	case wire.OpSUnionStore:
		combineOp = wire.OpSUnion
	default:
		combineOp = wire.OpSDiff
	}
	result, errNode := s.combine(combineOp, tokens[1:])
	if errNode != nil {
		return *errNode
	}
	dst := tokens[0]
	s.deleteKey(dst)
	if len(result) > 0 {
		s.sets[dst] = result
	}
	return wire.Int(int64(len(result)))
}

func (s *Store) combine(op wire.Opcode, keys []string) (map[string]struct{}, *wire.Node) {
	srcs := make([]map[string]struct{}, len(keys))
	for i, k := range keys {
		set, ok := s.setOK(k)
		if !ok {
			n := wrongType()
			return nil, &n
		}
		srcs[i] = set
	}

	result := make(map[string]struct{})
	switch op {
	case wire.OpSUnion:
		for _, set := range srcs {
			for m := range set {
				result[m] = struct{}{}
			}
		}
	case wire.OpSDiff:
		for m := range srcs[0] {
			result[m] = struct{}{}
		}
		for _, set := range srcs[1:] {
			for m := range set {
				delete(result, m)
			}
		}
	default: // intersection
		for m := range srcs[0] {
			inAll := true
			for _, set := range srcs[1:] {
				if _, ok := set[m]; !ok {
					inAll = false
					break
				}
			}
			if inAll {
				result[m] = struct{}{}
			}
		}
	}
	return result, nil
}

// smove covers SMOVE. tokens: source destination member.
func (s *Store) smove(tokens []string) wire.Node {
	src, ok := s.setOK(tokens[0])
	if !ok {
		return wrongType()
	}
	dst, ok := s.setOK(tokens[1])
	if !ok {
		return wrongType()
	}
	member := tokens[2]
	if _, exists := src[member]; !exists {
		return wire.Int(0)
	}
	delete(src, member)
	if len(src) == 0 {
		delete(s.sets, tokens[0])
	}
	if dst == nil {
		dst = make(map[string]struct{})
		s.sets[tokens[1]] = dst
	}
	dst[member] = struct{}{}
	return wire.Int(1)
}

func (s *Store) deleteKey(key string) {
	delete(s.sets, key)
	delete(s.hashes, key)
	delete(s.zsets, key)
	delete(s.geo, key)
}

// scanOpts is the parsed tail of a scan command.
type scanOpts struct {
	cursor   int
	match    string
	count    int
	typeName string
	bad      bool
}

func parseScanOpts(tokens []string) scanOpts {
	o := scanOpts{count: defaultScanPageSize}
	if len(tokens) == 0 {
		o.bad = true
		return o
	}
	c, err := strconv.Atoi(tokens[0])
	if err != nil || c < 0 {
		o.bad = true
		return o
	}
	o.cursor = c
	rest := tokens[1:]
	for len(rest) >= 2 {
		switch {
		case strings.EqualFold(rest[0], wire.TokMatch):
			o.match = rest[1]
		case strings.EqualFold(rest[0], wire.TokCount):
			n, err := strconv.Atoi(rest[1])
			if err != nil || n < 1 {
				o.bad = true
				return o
			}
			o.count = n
		case strings.EqualFold(rest[0], wire.TokType):
			o.typeName = rest[1]
		default:
			o.bad = true
			return o
		}
		rest = rest[2:]
	}
	if len(rest) != 0 {
		o.bad = true
	}
	return o
}

func matchPattern(pattern, s string) bool {
	if pattern == "" {
		return true
	}
	ok, err := path.Match(pattern, s)
	return err == nil && ok
}

// scanPage slices one page out of the sorted element list and renders the
// [cursor, elements] reply. stride is 1 for member scans and 2 for
// field/value scans so pairs never split across pages.
func scanPage(elems []string, cursor, count, stride int) wire.Node {
	if cursor > len(elems) {
		cursor = len(elems)
	}
	end := cursor + count*stride
	if end > len(elems) {
		end = len(elems)
	}
	next := "0"
	if end < len(elems) {
		next = strconv.Itoa(end)
	}
	page := elems[cursor:end]
	el := make([]wire.Node, len(page))
	for i, e := range page {
		el[i] = wire.String(e)
	}
	return wire.Array(wire.String(next), wire.Array(el...))
}

// scanKeyspace covers SCAN. tokens: cursor [MATCH p] [COUNT n] [TYPE t].
func (s *Store) scanKeyspace(tokens []string) wire.Node {
	o := parseScanOpts(tokens)
	if o.bad {
		return wire.Error("ERR syntax error")
	}
	var keys []string
	for key := range s.sets {
		keys = append(keys, key)
	}
	for key := range s.hashes {
		keys = append(keys, key)
	}
	for key := range s.zsets {
		keys = append(keys, key)
	}
	for key := range s.geo {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var filtered []string
	for _, key := range keys {
		if o.typeName != "" && s.typeOf(key) != o.typeName {
			continue
		}
		if matchPattern(o.match, key) {
			filtered = append(filtered, key)
		}
	}
	return scanPage(filtered, o.cursor, o.count, 1)
}

// scanSet covers SSCAN. tokens: key cursor [MATCH p] [COUNT n].
func (s *Store) scanSet(tokens []string) wire.Node {
	set, ok := s.setOK(tokens[0])
	if !ok {
		return wrongType()
	}
	o := parseScanOpts(tokens[1:])
	if o.bad {
		return wire.Error("ERR syntax error")
	}
	var members []string
	for m := range set {
		if matchPattern(o.match, m) {
			members = append(members, m)
		}
	}
	sort.Strings(members)
	return scanPage(members, o.cursor, o.count, 1)
}

// scanHash covers HSCAN, flattening field/value pairs.
func (s *Store) scanHash(tokens []string) wire.Node {
	if t := s.typeOf(tokens[0]); t != "" && t != "hash" {
		return wrongType()
	}
	o := parseScanOpts(tokens[1:])
	if o.bad {
		return wire.Error("ERR syntax error")
	}
	h := s.hashes[tokens[0]]
	var fields []string
	for f := range h {
		if matchPattern(o.match, f) {
			fields = append(fields, f)
		}
	}
	sort.Strings(fields)
	flat := make([]string, 0, 2*len(fields))
	for _, f := range fields {
		flat = append(flat, f, h[f])
	}
	return scanPage(flat, o.cursor, o.count, 2)
}

// scanZSet covers ZSCAN, flattening member/score pairs with decimal-text
// scores.
func (s *Store) scanZSet(tokens []string) wire.Node {
	if t := s.typeOf(tokens[0]); t != "" && t != "zset" {
		return wrongType()
	}
	o := parseScanOpts(tokens[1:])
	if o.bad {
		return wire.Error("ERR syntax error")
	}
	z := s.zsets[tokens[0]]
	var members []string
	for m := range z {
		if matchPattern(o.match, m) {
			members = append(members, m)
		}
	}
	sort.Strings(members)
	flat := make([]string, 0, 2*len(members))
	for _, m := range members {
		flat = append(flat, m, strconv.FormatFloat(z[m], 'f', -1, 64))
	}
	return scanPage(flat, o.cursor, o.count, 2)
}

func sortedMembers(set map[string]struct{}) []string {
	members := make([]string, 0, len(set))
	for m := range set {
		members = append(members, m)
	}
	sort.Strings(members)
	return members
}
