package ir

import "fmt"

// Kind classifies a compiled statement by the definition it came from.
type Kind string

const (
	KindSchema   Kind = "schema"
	KindSequence Kind = "sequence"
	KindQuery    Kind = "query"
)

// Statement is one compiled SQL statement with its ordered bindings.
type Statement struct {
	Seq      int    `json:"seq"`
	Kind     Kind   `json:"kind"`
	Source   string `json:"source"` // definition name, e.g. "table:users"
	SQL      string `json:"sql"`
	Bindings []any  `json:"bindings,omitempty"`
}

func (s Statement) object() (IRObject, error) {
	bindings, err := FromBindings(s.Bindings)
	if err != nil {
		return nil, err
	}
	return IRObject{
		"seq":      IRInt(s.Seq),
		"kind":     IRString(s.Kind),
		"source":   IRString(s.Source),
		"sql":      IRString(s.SQL),
		"bindings": bindings,
	}, nil
}

// CanonicalBindings renders the bindings as canonical JSON, the form the
// journal stores.
func (s Statement) CanonicalBindings() (string, error) {
	arr, err := FromBindings(s.Bindings)
	if err != nil {
		return "", fmt.Errorf("bindings: %w", err)
	}
	out, err := MarshalCanonical(arr)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
