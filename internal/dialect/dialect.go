// Package dialect names the Firebird grammar variants and selects one from
// an engine version string.
package dialect

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Variant is a named set of compilation rules tied to an engine generation.
type Variant int

const (
	// LegacyFirstSkip covers the 1.x engines: SELECT FIRST n SKIP m and
	// generator DDL.
	LegacyFirstSkip Variant = iota + 1
	// LegacyRows covers the 2.x engines: trailing ROWS a TO b and
	// CREATE SEQUENCE.
	LegacyRows
	// ModernFetch covers 3.0 and later: OFFSET/FETCH, identity columns and
	// the EXECUTE BLOCK wrapper for INSERT ... RETURNING.
	ModernFetch
)

var variantNames = map[Variant]string{
	LegacyFirstSkip: "legacy-first-skip",
	LegacyRows:      "legacy-rows",
	ModernFetch:     "modern-fetch",
}

func (v Variant) String() string {
	if name, ok := variantNames[v]; ok {
		return name
	}
	return fmt.Sprintf("variant(%d)", int(v))
}

// Valid reports whether v is one of the declared variants.
func (v Variant) Valid() bool {
	_, ok := variantNames[v]
	return ok
}

// Variants lists every variant, oldest engine generation first.
func Variants() []Variant {
	return []Variant{LegacyFirstSkip, LegacyRows, ModernFetch}
}

// ParseVariant resolves a variant by its String() name.
func ParseVariant(name string) (Variant, error) {
	for v, n := range variantNames {
		if n == name {
			return v, nil
		}
	}
	return 0, &ConfigError{
		Code:    CodeUnknownVariant,
		Field:   "variant",
		Message: fmt.Sprintf("unknown grammar variant %q", name),
	}
}

// Features describes what a variant can emit.
type Features struct {
	// Sequences selects CREATE/ALTER/DROP SEQUENCE and NEXT VALUE FOR over
	// the generator statements.
	Sequences bool
	// ExecuteBlock allows anonymous PSQL blocks (existence-checked drops).
	ExecuteBlock bool
	// Returning allows INSERT ... RETURNING.
	Returning bool
	// TypedCasts allows CAST(? AS TYPE OF COLUMN t.c).
	TypedCasts bool
	// ContextVariables allows RDB$GET_CONTEXT.
	ContextVariables bool
	// IdentityColumns allows GENERATED BY DEFAULT AS IDENTITY.
	IdentityColumns bool
	// WrapInsertReturning routes INSERT ... RETURNING through an EXECUTE
	// BLOCK because of the client driver defect.
	WrapInsertReturning bool
	// UpperCaseNames folds generated constraint and index names.
	UpperCaseNames bool
}

// Features returns the capability set of v.
func (v Variant) Features() Features {
	switch v {
	case LegacyFirstSkip:
		return Features{UpperCaseNames: true}
	case LegacyRows:
		return Features{
			Sequences:        true,
			ExecuteBlock:     true,
			Returning:        true,
			TypedCasts:       true,
			ContextVariables: true,
		}
	case ModernFetch:
		return Features{
			Sequences:           true,
			ExecuteBlock:        true,
			Returning:           true,
			TypedCasts:          true,
			ContextVariables:    true,
			IdentityColumns:     true,
			WrapInsertReturning: true,
		}
	default:
		return Features{}
	}
}

// versionPattern accepts "3.0.7", "2.5" and server banners such as
// "WI-V3.0.7.33374 Firebird 3.0".
var versionPattern = regexp.MustCompile(`^(?:[A-Z]{2}-[A-Z])?(\d+)`)

// MajorVersion extracts the leading integer of an engine version string.
func MajorVersion(version string) (int, error) {
	m := versionPattern.FindStringSubmatch(strings.TrimSpace(version))
	if m == nil {
		return 0, &ConfigError{
			Code:    CodeBadVersion,
			Field:   "version",
			Message: fmt.Sprintf("cannot parse engine version %q", version),
		}
	}
	major, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, &ConfigError{
			Code:    CodeBadVersion,
			Field:   "version",
			Message: fmt.Sprintf("cannot parse engine version %q", version),
			Err:     err,
		}
	}
	return major, nil
}

// ForVersion selects the variant for a reported engine version. Major
// versions 3 and above get ModernFetch; 2.x gets LegacyRows; anything older
// gets LegacyFirstSkip.
func ForVersion(version string) (Variant, error) {
	major, err := MajorVersion(version)
	if err != nil {
		return 0, err
	}
	switch {
	case major >= 3:
		return ModernFetch, nil
	case major == 2:
		return LegacyRows, nil
	default:
		return LegacyFirstSkip, nil
	}
}
