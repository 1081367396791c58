package compiler

import (
	"cuelang.org/go/cue"

	"github.com/roach88/fbsql/internal/schemair"
)

// CompileSequence parses a standalone sequence definition.
//
//	sequence: seq_invoice_no: {
//		start:     1000
//		increment: 10
//	}
//
// restart is either true or the value to restart with. With action alter
// nothing is queued explicitly; the blueprint adds the alter itself when
// a restart or a step change asks for it.
func CompileSequence(v cue.Value) (*schemair.SequenceBlueprint, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	name := label(v)
	if name == "" {
		return nil, fieldError(v, "sequence", "sequence name is required")
	}

	action, err := stringField(v, "action")
	if err != nil {
		return nil, err
	}
	start, err := intField(v, "start")
	if err != nil {
		return nil, err
	}
	increment, err := intField(v, "increment")
	if err != nil {
		return nil, err
	}
	if _, ok := lookup(v, "increment"); ok && increment == 0 {
		return nil, fieldError(v, "increment", "increment must not be zero")
	}

	s := schemair.NewSequence(name, func(s *schemair.SequenceBlueprint) {
		if start != 0 {
			s.StartWith(start)
		}
		if increment != 0 {
			s.IncrementBy(increment)
		}
	})

	if r, ok := lookup(v, "restart"); ok {
		switch r.Kind() {
		case cue.BoolKind:
			if on, _ := r.Bool(); on {
				s.Restart()
			}
		case cue.IntKind:
			n, _ := r.Int64()
			s.RestartWith(n)
		default:
			return nil, fieldError(r, "restart", "must be a boolean or an integer")
		}
	}

	switch action {
	case "", ActionCreate:
		s.Create()
	case ActionAlter:
	case ActionDrop:
		s.Drop()
	case ActionDropIfExists:
		s.DropIfExists()
	default:
		return nil, fieldError(v, "action", "unknown sequence action %q", action)
	}
	return s, nil
}
