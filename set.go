package glidekv

import (
	"context"

	"github.com/glidekv/glidekv/wire"
)

// StringResult is a single-value reply that may be absent (SPop or
// SRandMember against an empty set).
type StringResult struct {
	Value string
	Found bool
}

// SAdd adds members to the set at key and returns the number of members
// that were not already present.
func (s *Session) SAdd(ctx context.Context, key string, members ...string) (int64, error) {
	args, err := buildKeyMembers(wire.OpSAdd, key, members)
	if err != nil {
		return 0, err
	}
	return dispatch(ctx, s, wire.OpSAdd, args, decodeCount)
}

// SRem removes members from the set at key and returns how many were
// removed.
func (s *Session) SRem(ctx context.Context, key string, members ...string) (int64, error) {
	args, err := buildKeyMembers(wire.OpSRem, key, members)
	if err != nil {
		return 0, err
	}
	return dispatch(ctx, s, wire.OpSRem, args, decodeCount)
}

// SCard returns the cardinality of the set at key.
func (s *Session) SCard(ctx context.Context, key string) (int64, error) {
	args, err := buildKeyOnly(wire.OpSCard, key)
	if err != nil {
		return 0, err
	}
	return dispatch(ctx, s, wire.OpSCard, args, decodeCount)
}

// SMembers returns all members of the set at key. Order is not guaranteed.
func (s *Session) SMembers(ctx context.Context, key string) ([]string, error) {
	args, err := buildKeyOnly(wire.OpSMembers, key)
	if err != nil {
		return nil, err
	}
	return dispatch(ctx, s, wire.OpSMembers, args, decodeStrings)
}

// SIsMember reports whether member is in the set at key.
func (s *Session) SIsMember(ctx context.Context, key, member string) (bool, error) {
	args, err := buildKeyMember(wire.OpSIsMember, key, member)
	if err != nil {
		return false, err
	}
	return dispatch(ctx, s, wire.OpSIsMember, args, decodeBool)
}

// SMIsMember reports membership for each given member, positionally.
func (s *Session) SMIsMember(ctx context.Context, key string, members ...string) ([]bool, error) {
	args, err := buildKeyMembers(wire.OpSMIsMember, key, members)
	if err != nil {
		return nil, err
	}
	return dispatch(ctx, s, wire.OpSMIsMember, args, decodeBools)
}

// SPop removes and returns one random member of the set at key.
func (s *Session) SPop(ctx context.Context, key string) (StringResult, error) {
	args, err := buildKeyOnly(wire.OpSPop, key)
	if err != nil {
		return StringResult{}, err
	}
	return dispatch(ctx, s, wire.OpSPop, args, decodeStringOK)
}

// SPopN removes and returns up to count random members of the set at key.
func (s *Session) SPopN(ctx context.Context, key string, count int64) ([]string, error) {
	args, err := buildKeyCount(wire.OpSPop, key, count, false)
	if err != nil {
		return nil, err
	}
	return dispatch(ctx, s, wire.OpSPop, args, decodeStrings)
}

// SRandMember returns one random member of the set at key without removing
// it.
func (s *Session) SRandMember(ctx context.Context, key string) (StringResult, error) {
	args, err := buildKeyOnly(wire.OpSRandMember, key)
	if err != nil {
		return StringResult{}, err
	}
	return dispatch(ctx, s, wire.OpSRandMember, args, decodeStringOK)
}

// SRandMemberN returns count random members. A negative count allows the
// same member to be returned multiple times.
func (s *Session) SRandMemberN(ctx context.Context, key string, count int64) ([]string, error) {
	args, err := buildKeyCount(wire.OpSRandMember, key, count, true)
	if err != nil {
		return nil, err
	}
	return dispatch(ctx, s, wire.OpSRandMember, args, decodeStrings)
}

// SInter returns the intersection of the given sets.
func (s *Session) SInter(ctx context.Context, keys ...string) ([]string, error) {
	args, err := buildMultiKey(wire.OpSInter, keys)
	if err != nil {
		return nil, err
	}
	return dispatch(ctx, s, wire.OpSInter, args, decodeStrings)
}

// SUnion returns the union of the given sets.
func (s *Session) SUnion(ctx context.Context, keys ...string) ([]string, error) {
	args, err := buildMultiKey(wire.OpSUnion, keys)
	if err != nil {
		return nil, err
	}
	return dispatch(ctx, s, wire.OpSUnion, args, decodeStrings)
}

// SDiff returns the difference between the first set and the rest.
func (s *Session) SDiff(ctx context.Context, keys ...string) ([]string, error) {
	args, err := buildMultiKey(wire.OpSDiff, keys)
	if err != nil {
		return nil, err
	}
	return dispatch(ctx, s, wire.OpSDiff, args, decodeStrings)
}

// SInterCard returns the cardinality of the intersection. A limit greater
// than zero stops the store from counting past it.
func (s *Session) SInterCard(ctx context.Context, limit int64, keys ...string) (int64, error) {
	args, err := buildMultiKeyLimit(wire.OpSInterCard, keys, limit)
	if err != nil {
		return 0, err
	}
	return dispatch(ctx, s, wire.OpSInterCard, args, decodeCount)
}

// SInterStore stores the intersection of keys into dst and returns the
// stored cardinality.
func (s *Session) SInterStore(ctx context.Context, dst string, keys ...string) (int64, error) {
	args, err := buildDstMultiKey(wire.OpSInterStore, dst, keys)
	if err != nil {
		return 0, err
	}
	return dispatch(ctx, s, wire.OpSInterStore, args, decodeCount)
}

// SUnionStore stores the union of keys into dst and returns the stored
// cardinality.
func (s *Session) SUnionStore(ctx context.Context, dst string, keys ...string) (int64, error) {
	args, err := buildDstMultiKey(wire.OpSUnionStore, dst, keys)
	if err != nil {
		return 0, err
	}
	return dispatch(ctx, s, wire.OpSUnionStore, args, decodeCount)
}

// SDiffStore stores the difference of keys into dst and returns the stored
// cardinality.
func (s *Session) SDiffStore(ctx context.Context, dst string, keys ...string) (int64, error) {
	args, err := buildDstMultiKey(wire.OpSDiffStore, dst, keys)
	if err != nil {
		return 0, err
	}
	return dispatch(ctx, s, wire.OpSDiffStore, args, decodeCount)
}

// SMove atomically moves member from src to dst. It reports whether the
// member was moved.
func (s *Session) SMove(ctx context.Context, src, dst, member string) (bool, error) {
	args, err := buildTwoKeyMember(wire.OpSMove, src, dst, member)
	if err != nil {
		return false, err
	}
	return dispatch(ctx, s, wire.OpSMove, args, decodeBool)
}
