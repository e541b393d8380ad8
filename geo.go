package glidekv

import (
	"context"

	"github.com/glidekv/glidekv/wire"
)

// GeoCoord is a longitude/latitude pair.
type GeoCoord struct {
	Longitude float64
	Latitude  float64
}

// GeoBox is the width/height of a BYBOX search area, in the query's unit.
type GeoBox struct {
	Width  float64
	Height float64
}

// GeoMember is one (longitude, latitude, name) triplet for GeoAdd.
type GeoMember struct {
	Longitude float64
	Latitude  float64
	Name      string
}

// GeoSearchQuery describes the search area for GeoSearch and
// GeoSearchStore. Exactly one of FromMember/FromLonLat and exactly one of
// ByRadius/ByBox must be set. Unit is required (m, km, mi or ft,
// case-insensitive); Sort is optional ("ASC"/"DESC"); Count limits results,
// with CountAny allowing the store to return early.
type GeoSearchQuery struct {
	FromMember string
	FromLonLat *GeoCoord

	ByRadius float64
	ByBox    *GeoBox
	Unit     string

	Sort     string
	Count    int64
	CountAny bool
}

// GeoSearchOptions selects the optional per-result fields of GeoSearch.
type GeoSearchOptions struct {
	WithCoord bool
	WithDist  bool
	WithHash  bool
}

// GeoLocation is one GeoSearch result. Dist, Hash and Coord are populated
// only when the matching WITH* option was requested; the Has* flags
// distinguish a real zero from an absent field.
type GeoLocation struct {
	Name    string
	Dist    float64
	HasDist bool
	Hash    int64
	HasHash bool
	Coord   *GeoCoord
}

// FloatResult is a floating reply that may be absent (GeoDist with an
// unknown member).
type FloatResult struct {
	Value float64
	Found bool
}

// GeoAdd adds position triplets to the sorted set at key and returns the
// number of new members.
func (s *Session) GeoAdd(ctx context.Context, key string, members ...GeoMember) (int64, error) {
	args, err := buildGeoAdd(key, members)
	if err != nil {
		return 0, err
	}
	return dispatch(ctx, s, wire.OpGeoAdd, args, decodeCount)
}

// GeoDist returns the distance between two members of the geo set at key.
// unit is one of "m", "km", "mi", "ft", or empty for meters. Found is false
// when either member does not exist.
func (s *Session) GeoDist(ctx context.Context, key, src, dst, unit string) (FloatResult, error) {
	args, err := buildGeoDist(key, src, dst, unit)
	if err != nil {
		return FloatResult{}, err
	}
	return dispatch(ctx, s, wire.OpGeoDist, args, decodeFloatOK)
}

// GeoHash returns the geohash strings of the given members, positionally;
// missing members yield empty strings.
func (s *Session) GeoHash(ctx context.Context, key string, members ...string) ([]string, error) {
	args, err := buildKeyMembers(wire.OpGeoHash, key, members)
	if err != nil {
		return nil, err
	}
	return dispatch(ctx, s, wire.OpGeoHash, args, decodeStrings)
}

// GeoPos returns the coordinates of the given members, positionally; missing
// members yield nil entries.
func (s *Session) GeoPos(ctx context.Context, key string, members ...string) ([]*GeoCoord, error) {
	args, err := buildKeyMembers(wire.OpGeoPos, key, members)
	if err != nil {
		return nil, err
	}
	return dispatch(ctx, s, wire.OpGeoPos, args, decodePositions)
}

// GeoSearch returns the members of key inside the query area, in server
// order, with the optional fields selected by with.
func (s *Session) GeoSearch(ctx context.Context, key string, q *GeoSearchQuery, with GeoSearchOptions) ([]GeoLocation, error) {
	args, err := buildGeoSearch(wire.OpGeoSearch, "", key, q, with, false)
	if err != nil {
		return nil, err
	}
	return dispatch(ctx, s, wire.OpGeoSearch, args, decodeGeoLocations(with))
}

// GeoSearchStore runs the search against src and stores the result into
// dst, returning the number of stored members. With storeDist the stored
// scores are distances from the search center instead of geohash scores.
func (s *Session) GeoSearchStore(ctx context.Context, dst, src string, q *GeoSearchQuery, storeDist bool) (int64, error) {
	args, err := buildGeoSearch(wire.OpGeoSearchStore, dst, src, q, GeoSearchOptions{}, storeDist)
	if err != nil {
		return 0, err
	}
	return dispatch(ctx, s, wire.OpGeoSearchStore, args, decodeCount)
}
