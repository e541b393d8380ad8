// Package wire provides the protocol-neutral primitives shared by every
// command family: the ordered argument vector handed to the native executor,
// the opcode table, and the tagged response tree the executor hands back.
//
// The package serves as a foundation for the command layer in the root
// package. It knows nothing about individual commands; it only enforces the
// token-ownership discipline (owned tokens are pooled and must be released
// exactly once) and gives decoders a uniform view of responses.
//
// # Argument vectors
//
// Args collects byte-string tokens in wire order. Tokens appended with
// AddString/AddBytes/AddStatic borrow the caller's memory; AddInt and
// AddFloat format into pooled buffers that Release returns to the pool:
//
//	args := wire.NewArgs(4)
//	args.AddString(key)
//	args.AddStatic(wire.TokLimit)
//	args.AddInt(5)
//	defer args.Release()
//
// # Response trees
//
// Node is a tagged union (Null, Int, Float, String, Bool, Array, Set, OK,
// Error). Decoders switch on Kind with an explicit default arm; helper
// accessors normalize the store's habit of encoding floats as decimal text.
package wire
