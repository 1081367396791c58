// Package ir holds the compiled form of a definition set: Statement
// values plus the canonical JSON and content-addressed ids the journal
// keys them by.
//
// ir imports nothing internal, so every outer package can depend on it.
package ir
