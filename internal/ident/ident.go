// Package ident holds the identifier rules every Firebird grammar shares:
// delimiter quoting, the 31-byte name limit and the naming scheme for
// generated sequences, triggers and constraints.
//
// The query grammar and the schema grammar both derive sequence and trigger
// names through this package. A NEXT VALUE FOR reference therefore always
// names the object the CREATE SEQUENCE statement produced.
package ident

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// MaxLength is the engine's identifier limit in bytes.
const MaxLength = 31

// Wildcard is never quoted.
const Wildcard = "*"

const delimiter = `"`

var aliasPattern = regexp.MustCompile(`(?i)\s+as\s+`)

// Quote wraps a single name segment in double quotes, doubling any embedded
// quote. The wildcard passes through untouched.
func Quote(name string) string {
	if name == Wildcard {
		return name
	}
	return delimiter + strings.ReplaceAll(name, delimiter, delimiter+delimiter) + delimiter
}

// Wrap quotes a column or table reference that may be qualified
// ("users.id", "users.*") or aliased ("users as u").
func Wrap(value string) string {
	if loc := aliasPattern.FindStringIndex(value); loc != nil {
		return Wrap(value[:loc[0]]) + " AS " + Quote(strings.TrimSpace(value[loc[1]:]))
	}
	segments := strings.Split(value, ".")
	for i, segment := range segments {
		segments[i] = Quote(segment)
	}
	return strings.Join(segments, ".")
}

// WrapAll wraps every value and joins them with ", ".
func WrapAll(values []string) string {
	wrapped := make([]string, len(values))
	for i, v := range values {
		wrapped[i] = Wrap(v)
	}
	return strings.Join(wrapped, ", ")
}

// Truncate shortens name to at most MaxLength bytes. The name is NFC
// normalised first so that equivalent spellings truncate identically, and
// the cut backs off to a rune boundary.
func Truncate(name string) string {
	name = norm.NFC.String(name)
	if len(name) <= MaxLength {
		return name
	}
	cut := MaxLength
	for cut > 0 && !utf8.RuneStart(name[cut]) {
		cut--
	}
	return name[:cut]
}

// Prefixed is the stored name of an explicitly named object once the
// connection's table prefix is applied.
func Prefixed(prefix, name string) string {
	return Truncate(prefix + name)
}

// SequenceName is the generator backing the auto-increment column of table.
func SequenceName(table string) string {
	return Truncate("seq_" + table)
}

// TriggerName is the BEFORE INSERT trigger that feeds SequenceName(table).
func TriggerName(table string) string {
	return Truncate("tr_" + table + "_bi")
}

// Case selects how generated constraint and index names are folded.
type Case int

const (
	CasePreserve Case = iota
	CaseUpper
	CaseLower
)

func (c Case) String() string {
	switch c {
	case CaseUpper:
		return "upper"
	case CaseLower:
		return "lower"
	default:
		return "preserve"
	}
}

// Policy folds and truncates generated names for one grammar variant.
// Sequence and trigger names never go through a Policy.
type Policy struct {
	Case Case
}

// Name applies the case fold and then truncates.
func (p Policy) Name(name string) string {
	switch p.Case {
	case CaseUpper:
		name = cases.Upper(language.Und).String(name)
	case CaseLower:
		name = cases.Lower(language.Und).String(name)
	}
	return Truncate(name)
}

// IndexName builds the conventional name for an index or constraint:
// <prefix><table>_<col>_<col>_<kind>, lower-cased with '-' and '.'
// replaced by '_', then passed through the policy.
func (p Policy) IndexName(prefix, table string, columns []string, kind string) string {
	raw := prefix + table + "_" + strings.Join(columns, "_") + "_" + kind
	raw = strings.NewReplacer("-", "_", ".", "_").Replace(cases.Lower(language.Und).String(raw))
	return p.Name(raw)
}
