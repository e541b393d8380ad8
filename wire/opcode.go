package wire

// Opcode identifies the logical command dispatched to the native executor.
// The numeric values are internal; the wire command name comes from String.
type Opcode uint8

const (
	OpNone Opcode = iota

	// Geo family
	OpGeoAdd
	OpGeoDist
	OpGeoHash
	OpGeoPos
	OpGeoSearch
	OpGeoSearchStore

	// Set family
	OpSAdd
	OpSRem
	OpSCard
	OpSMembers
	OpSIsMember
	OpSMIsMember
	OpSPop
	OpSRandMember
	OpSInter
	OpSUnion
	OpSDiff
	OpSInterCard
	OpSInterStore
	OpSUnionStore
	OpSDiffStore
	OpSMove

	// Scan family
	OpScan
	OpClusterScan
	OpSScan
	OpHScan
	OpZScan
)

var opcodeNames = [...]string{
	OpNone:           "",
	OpGeoAdd:         "GEOADD",
	OpGeoDist:        "GEODIST",
	OpGeoHash:        "GEOHASH",
	OpGeoPos:         "GEOPOS",
	OpGeoSearch:      "GEOSEARCH",
	OpGeoSearchStore: "GEOSEARCHSTORE",
	OpSAdd:           "SADD",
	OpSRem:           "SREM",
	OpSCard:          "SCARD",
	OpSMembers:       "SMEMBERS",
	OpSIsMember:      "SISMEMBER",
	OpSMIsMember:     "SMISMEMBER",
	OpSPop:           "SPOP",
	OpSRandMember:    "SRANDMEMBER",
	OpSInter:         "SINTER",
	OpSUnion:         "SUNION",
	OpSDiff:          "SDIFF",
	OpSInterCard:     "SINTERCARD",
	OpSInterStore:    "SINTERSTORE",
	OpSUnionStore:    "SUNIONSTORE",
	OpSDiffStore:     "SDIFFSTORE",
	OpSMove:          "SMOVE",
	OpScan:           "SCAN",
	OpClusterScan:    "SCAN",
	OpSScan:          "SSCAN",
	OpHScan:          "HSCAN",
	OpZScan:          "ZSCAN",
}

// String returns the wire command name for the opcode.
func (op Opcode) String() string {
	if int(op) < len(opcodeNames) {
		return opcodeNames[op]
	}
	return ""
}

// Wire grammar literals. Tokens that appear verbatim in argument vectors;
// casing is part of the protocol.
const (
	TokFromMember = "FROMMEMBER"
	TokFromLonLat = "FROMLONLAT"
	TokByRadius   = "BYRADIUS"
	TokByBox      = "BYBOX"
	TokWithCoord  = "WITHCOORD"
	TokWithDist   = "WITHDIST"
	TokWithHash   = "WITHHASH"
	TokStoreDist  = "STOREDIST"
	TokCount      = "COUNT"
	TokAny        = "ANY"
	TokAsc        = "ASC"
	TokDesc       = "DESC"
	TokLimit      = "LIMIT"
	TokMatch      = "MATCH"
	TokType       = "TYPE"
)
