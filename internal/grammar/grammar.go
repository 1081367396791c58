// Package grammar selects the query and schema grammars for an engine.
//
// ForVersion is the VersionSelector: it parses the engine version a
// connection reports and returns both grammars for the matching variant,
// configured with the same table prefix so that derived names agree.
package grammar

import (
	"fmt"

	"github.com/roach88/fbsql/internal/dialect"
	"github.com/roach88/fbsql/internal/querysql"
	"github.com/roach88/fbsql/internal/schemasql"
)

// Set is the pair of grammars for one variant.
type Set struct {
	Variant dialect.Variant
	Query   *querysql.Grammar
	Schema  *schemasql.Grammar
}

// Options configures a Set.
type Options struct {
	TablePrefix string
}

// ForVersion returns the grammars for the engine reporting version. An
// unparsable version is an error; no variant is guessed.
func ForVersion(version string, opts Options) (*Set, error) {
	v, err := dialect.ForVersion(version)
	if err != nil {
		return nil, err
	}
	return ForVariant(v, opts)
}

// ForVariant returns the grammars for v.
func ForVariant(v dialect.Variant, opts Options) (*Set, error) {
	q, err := querysql.New(v, querysql.WithTablePrefix(opts.TablePrefix))
	if err != nil {
		return nil, fmt.Errorf("grammar: %w", err)
	}
	s, err := schemasql.New(v, schemasql.WithTablePrefix(opts.TablePrefix))
	if err != nil {
		return nil, fmt.Errorf("grammar: %w", err)
	}
	return &Set{Variant: v, Query: q, Schema: s}, nil
}

// All returns one Set per variant, oldest engine generation first.
func All(opts Options) ([]*Set, error) {
	sets := make([]*Set, 0, len(dialect.Variants()))
	for _, v := range dialect.Variants() {
		s, err := ForVariant(v, opts)
		if err != nil {
			return nil, err
		}
		sets = append(sets, s)
	}
	return sets, nil
}
