package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/fbsql/internal/dialect"
)

// Scenario defines a conformance scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Definitions lists CUE files, relative to BaseDir.
	Definitions []string `yaml:"definitions,omitempty"`

	// Source holds CUE definitions inline. Exactly one of Definitions and
	// Source is set.
	Source string `yaml:"source,omitempty"`

	// Variants restricts compilation to these variant names. Empty means
	// every variant.
	Variants []string `yaml:"variants,omitempty"`

	// EngineVersion selects a single variant from a server version string.
	// It cannot be combined with Variants.
	EngineVersion string `yaml:"engine_version,omitempty"`

	// TablePrefix is passed to both grammars.
	TablePrefix string `yaml:"table_prefix,omitempty"`

	// SkipUnsupported skips definitions a variant cannot express instead
	// of failing that variant.
	SkipUnsupported bool `yaml:"skip_unsupported,omitempty"`

	// Assertions validate the compiled statements and the journal.
	Assertions []Assertion `yaml:"assertions"`

	// BaseDir resolves Definitions. Set by LoadScenario.
	BaseDir string `yaml:"-"`
}

// Assertion validates compiled output.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Variant limits the assertion to one variant. Empty means all.
	Variant string `yaml:"variant,omitempty"`

	// Source is the statement source, e.g. "query:active".
	Source string `yaml:"source,omitempty"`

	// SQL is the exact statement text (statement_sql).
	SQL string `yaml:"sql,omitempty"`

	// Contains is a fragment (statement_contains, compile_error).
	Contains string `yaml:"contains,omitempty"`

	// Sources is an ordered list (statement_order) or a set (skipped).
	Sources []string `yaml:"sources,omitempty"`

	// Count is the expected number of statements (statement_count,
	// journal_count).
	Count int `yaml:"count,omitempty"`

	// Bindings are the expected parameter values (bindings).
	Bindings []any `yaml:"bindings,omitempty"`
}

// Assertion types.
const (
	AssertStatementSQL      = "statement_sql"
	AssertStatementContains = "statement_contains"
	AssertStatementOrder    = "statement_order"
	AssertStatementCount    = "statement_count"
	AssertBindings          = "bindings"
	AssertSkipped           = "skipped"
	AssertCompileError      = "compile_error"
	AssertJournalCount      = "journal_count"
)

// LoadScenario reads a scenario file. Definitions resolve relative to the
// file's directory.
func LoadScenario(path string) (*Scenario, error) {
	return LoadScenarioWithBasePath(path, filepath.Dir(path))
}

// LoadScenarioWithBasePath reads a scenario file, resolving Definitions
// relative to basePath.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data, basePath)
}

// ParseScenario decodes a scenario. Unknown fields are rejected so a
// misspelt key fails loudly.
func ParseScenario(data []byte, basePath string) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	scenario.BaseDir = basePath

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	switch {
	case len(s.Definitions) == 0 && s.Source == "":
		return fmt.Errorf("one of definitions or source is required")
	case len(s.Definitions) > 0 && s.Source != "":
		return fmt.Errorf("definitions and source are mutually exclusive")
	}
	for _, p := range s.Definitions {
		if _, err := os.Stat(filepath.Join(s.BaseDir, p)); os.IsNotExist(err) {
			return fmt.Errorf("definitions file not found: %s", p)
		}
	}

	if s.EngineVersion != "" && len(s.Variants) > 0 {
		return fmt.Errorf("engine_version and variants are mutually exclusive")
	}
	for _, name := range s.Variants {
		if _, err := dialect.ParseVariant(name); err != nil {
			return err
		}
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}
	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
	}
	return nil
}

func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}
	if a.Variant != "" {
		if _, err := dialect.ParseVariant(a.Variant); err != nil {
			return fmt.Errorf("assertions[%d]: %w", index, err)
		}
	}

	needSource := func() error {
		if a.Source == "" {
			return fmt.Errorf("assertions[%d]: source is required for %s", index, a.Type)
		}
		return nil
	}

	switch a.Type {
	case AssertStatementSQL:
		if a.SQL == "" {
			return fmt.Errorf("assertions[%d]: sql is required for %s", index, a.Type)
		}
		return needSource()
	case AssertStatementContains:
		if a.Contains == "" {
			return fmt.Errorf("assertions[%d]: contains is required for %s", index, a.Type)
		}
		return needSource()
	case AssertStatementOrder:
		if len(a.Sources) < 2 {
			return fmt.Errorf("assertions[%d]: at least two sources are required for %s", index, a.Type)
		}
	case AssertStatementCount, AssertJournalCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for %s", index, a.Type)
		}
		return needSource()
	case AssertBindings:
		return needSource()
	case AssertSkipped:
		// An empty list asserts nothing was skipped.
	case AssertCompileError:
		if a.Contains == "" {
			return fmt.Errorf("assertions[%d]: contains is required for %s", index, a.Type)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
