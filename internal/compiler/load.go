package compiler

import (
	"errors"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
)

// ErrNoInstances is returned by LoadInstance when the arguments match no
// CUE package.
var ErrNoInstances = errors.New("no CUE instances loaded")

// LoadError wraps a failure to read or parse CUE sources.
type LoadError struct{ Err error }

func (e *LoadError) Error() string { return "loading CUE files: " + e.Err.Error() }
func (e *LoadError) Unwrap() error { return e.Err }

// BuildError wraps a failure to evaluate loaded CUE sources.
type BuildError struct{ Err error }

func (e *BuildError) Error() string { return "building CUE value: " + e.Err.Error() }
func (e *BuildError) Unwrap() error { return e.Err }

// Load reads the CUE package in dir, or the given files relative to dir,
// and evaluates it. Failures are a *LoadError or a *BuildError.
func Load(dir string, files ...string) (cue.Value, error) {
	args := files
	if len(args) == 0 {
		args = []string{"."}
	}
	instances := load.Instances(args, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return cue.Value{}, &LoadError{Err: ErrNoInstances}
	}
	inst := instances[0]
	if inst.Err != nil {
		return cue.Value{}, &LoadError{Err: inst.Err}
	}

	value := cuecontext.New().BuildInstance(inst)
	if err := value.Err(); err != nil {
		return cue.Value{}, &BuildError{Err: err}
	}
	// Conflicts below the root leave value.Err nil.
	if err := value.Validate(); err != nil {
		return cue.Value{}, &BuildError{Err: err}
	}
	return value, nil
}

// LoadDefinitions loads and compiles in one step.
func LoadDefinitions(dir string, failFast bool, files ...string) (*Definitions, []error) {
	v, err := Load(dir, files...)
	if err != nil {
		return nil, []error{err}
	}
	defs, errs := CompileDefinitions(v, failFast)
	if defs != nil && defs.Len() == 0 && len(errs) == 0 {
		errs = append(errs, fmt.Errorf("no table, sequence or query definitions found"))
	}
	return defs, errs
}
