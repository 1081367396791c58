package testutil

import "fmt"

// SequenceIDs generates run ids "<prefix>-1", "<prefix>-2", ...
//
// Implements store.IDGenerator. Safe for concurrent use.
type SequenceIDs struct {
	prefix string
	seq    counter
}

// NewSequenceIDs returns a generator for prefix. An empty prefix becomes
// "run".
func NewSequenceIDs(prefix string) *SequenceIDs {
	if prefix == "" {
		prefix = "run"
	}
	return &SequenceIDs{prefix: prefix}
}

// Generate returns the next id.
func (g *SequenceIDs) Generate() string {
	return fmt.Sprintf("%s-%d", g.prefix, g.seq.next())
}

// FixedID always returns the same id. Recording twice with it exercises
// journal idempotency.
type FixedID string

// Generate returns the id itself.
func (id FixedID) Generate() string {
	return string(id)
}
