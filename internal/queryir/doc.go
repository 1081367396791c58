// Package queryir provides the abstract query representation consumed by
// the Firebird query grammar.
//
// A Query is an engine-agnostic description of a SELECT together with the
// clause set that UPDATE and DELETE reuse (table, wheres). It carries no
// dialect knowledge: limit and offset are plain integers, locks are
// booleans or raw text, and values are Go values that the grammar turns
// into positional bindings.
//
// SEALED INTERFACES:
//
// Predicate and Lock are sealed interfaces using the marker method pattern.
// Only types in this package implement them, so the grammar can switch
// exhaustively:
//
//	switch p := pred.(type) {
//	case Basic:
//	    // col op ?
//	case DatePart:
//	    // EXTRACT(part FROM col) op ?
//	default:
//	    // impossible
//	}
//
// VALIDATION:
//
// The grammar is a syntax emitter and never checks operators or date parts.
// Callers that build a Query from untrusted input run Validate first; an
// unsupported operator is their error, not the compiler's.
package queryir
