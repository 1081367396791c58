package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"cuelang.org/go/cue/token"

	"github.com/roach88/fbsql/internal/compiler"
	"github.com/roach88/fbsql/internal/dialect"
)

// LoadMode controls how errors are handled while loading definitions.
type LoadMode int

const (
	// LoadModeFailFast stops on the first error encountered.
	LoadModeFailFast LoadMode = iota
	// LoadModeCollectAll collects all errors before returning.
	LoadModeCollectAll
)

// LoadResult is a compiled definitions directory.
type LoadResult struct {
	Definitions *compiler.Definitions
	FileCount   int
}

// LoadError is a coded, optionally positioned, loading failure.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadDefinitions loads and compiles the CUE definitions in dir.
func LoadDefinitions(dir string, mode LoadMode) (*LoadResult, []error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("definitions directory not found: %s", dir)}}
	}
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing definitions directory: %v", err)}}
	}
	if !info.IsDir() {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}}
	}

	cueFiles, err := FindCUEFiles(dir)
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}}
	}
	if len(cueFiles) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", dir)}}
	}

	value, err := compiler.Load(dir)
	if err != nil {
		var buildErr *compiler.BuildError
		if errors.As(err, &buildErr) {
			return nil, []error{&LoadError{Code: ErrCodeBuildFailed, Message: err.Error()}}
		}
		return nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: err.Error()}}
	}

	defs, errs := compiler.CompileDefinitions(value, mode == LoadModeFailFast)
	result := &LoadResult{Definitions: defs, FileCount: len(cueFiles)}
	if defs != nil && defs.Len() == 0 && len(errs) == 0 {
		errs = append(errs, &LoadError{Code: ErrCodeNoDefinitions, Message: "no table, sequence or query definitions found"})
	}
	if len(errs) > 0 && mode == LoadModeFailFast {
		errs = errs[:1]
	}
	return result, errs
}

// FindCUEFiles returns the .cue files directly in dir. Subdirectories are
// separate CUE packages and are not loaded.
func FindCUEFiles(dir string) ([]string, error) {
	return filepath.Glob(filepath.Join(dir, "*.cue"))
}

// Error code constants, shared by every command.
const (
	ErrCodeGeneric       = "E001" // Generic/unknown error
	ErrCodeScanError     = "E002" // Directory scan error
	ErrCodeNoFiles       = "E003" // No CUE files found
	ErrCodeLoadFailed    = "E004" // CUE load failed
	ErrCodeNotFound      = "E005" // Path not found
	ErrCodeBuildFailed   = "E006" // CUE build failed
	ErrCodeWriteFailed   = "E007" // File write error
	ErrCodeJournal       = "E008" // Journal open/read/write error
	ErrCodeConnect       = "E009" // Database connection or config error
	ErrCodeExecFailed    = "E010" // A statement failed on the server
	ErrCodeNoDefinitions = "E011" // Definitions directory holds none

	// Definition errors. Query validation reports its own E101-E105.
	ErrCodeTableDef    = "E110"
	ErrCodeSequenceDef = "E111"
	ErrCodeQueryDef    = "E112"
)

var bracketCode = regexp.MustCompile(`^\[(E\d{3})\]`)

// ErrorCode picks the most specific code for err: the dialect code of a
// ConfigError, the validation code embedded in a query error, then the
// section of the failing definition.
func ErrorCode(err error) string {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return loadErr.Code
	}
	var cfgErr *dialect.ConfigError
	if errors.As(err, &cfgErr) {
		return cfgErr.Code
	}
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		if m := bracketCode.FindStringSubmatch(compileErr.Message); m != nil {
			return m[1]
		}
	}
	var defErr *compiler.DefinitionError
	if errors.As(err, &defErr) {
		return MapSectionToErrorCode(defErr.Section)
	}
	return ErrCodeGeneric
}

// MapSectionToErrorCode maps a definitions section to its error code.
func MapSectionToErrorCode(section string) string {
	switch section {
	case compiler.SectionTable:
		return ErrCodeTableDef
	case compiler.SectionSequence:
		return ErrCodeSequenceDef
	case compiler.SectionQuery:
		return ErrCodeQueryDef
	default:
		return ErrCodeGeneric
	}
}

// errorPos returns the CUE position carried by err, if any.
func errorPos(err error) token.Pos {
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return compileErr.Pos
	}
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return loadErr.Pos
	}
	return token.NoPos
}
