package wire

import "strconv"

// Kind tags the variants of a response Node.
type Kind uint8

const (
	KindNull Kind = iota
	KindInt
	KindFloat
	KindString
	KindBool
	KindArray
	KindSet
	KindOK
	KindError
)

var kindNames = [...]string{
	KindNull:   "null",
	KindInt:    "int",
	KindFloat:  "float",
	KindString: "string",
	KindBool:   "bool",
	KindArray:  "array",
	KindSet:    "set",
	KindOK:     "ok",
	KindError:  "error",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Node is one node of the tagged response tree produced by the native
// executor. Its shape is dictated by the store's protocol; decoders treat it
// as read-only. Array and Set carry children in Elems; Error carries the
// server message in Str.
type Node struct {
	Kind  Kind
	Int   int64
	Float float64
	Str   string
	Bool  bool
	Elems []Node
}

// Constructors, mainly for fakes and tests.

func Null() Node            { return Node{Kind: KindNull} }
func Int(v int64) Node      { return Node{Kind: KindInt, Int: v} }
func Float(v float64) Node  { return Node{Kind: KindFloat, Float: v} }
func String(s string) Node  { return Node{Kind: KindString, Str: s} }
func Bool(b bool) Node      { return Node{Kind: KindBool, Bool: b} }
func OK() Node              { return Node{Kind: KindOK} }
func Error(msg string) Node { return Node{Kind: KindError, Str: msg} }
func Array(el ...Node) Node { return Node{Kind: KindArray, Elems: el} }
func Set(el ...Node) Node   { return Node{Kind: KindSet, Elems: el} }
func Strings(ss ...string) Node {
	el := make([]Node, len(ss))
	for i, s := range ss {
		el[i] = String(s)
	}
	return Array(el...)
}

// IsNull reports whether the node is the Null variant.
func (n Node) IsNull() bool { return n.Kind == KindNull }

// Len returns the child count for Array/Set nodes, 0 otherwise.
func (n Node) Len() int {
	if n.Kind == KindArray || n.Kind == KindSet {
		return len(n.Elems)
	}
	return 0
}

// Elem returns the i-th child, or a Null node when out of range or not a
// collection.
func (n Node) Elem(i int) Node {
	if (n.Kind == KindArray || n.Kind == KindSet) && i >= 0 && i < len(n.Elems) {
		return n.Elems[i]
	}
	return Node{}
}

// AsFloat normalizes the two encodings the store uses for floating values:
// a native float tag or decimal text. ok is false for any other shape.
func (n Node) AsFloat() (v float64, ok bool) {
	switch n.Kind {
	case KindFloat:
		return n.Float, true
	case KindString:
		f, err := strconv.ParseFloat(n.Str, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	case KindInt:
		return float64(n.Int), true
	default:
		return 0, false
	}
}

// AsString returns the text of a String node. ok is false otherwise.
func (n Node) AsString() (string, bool) {
	if n.Kind == KindString {
		return n.Str, true
	}
	return "", false
}

// AsInt returns the value of an Int node. ok is false otherwise.
func (n Node) AsInt() (int64, bool) {
	if n.Kind == KindInt {
		return n.Int, true
	}
	return 0, false
}

// AsBool normalizes Bool and OK nodes to a boolean; the store answers some
// predicates with OK. ok is false for other shapes.
func (n Node) AsBool() (bool, bool) {
	switch n.Kind {
	case KindBool:
		return n.Bool, true
	case KindOK:
		return true, true
	case KindInt:
		return n.Int != 0, true
	default:
		return false, false
	}
}
