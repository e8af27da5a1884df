// Package steps defines the ordered stages of a document generation and their dependencies.
package steps

import (
	"fmt"
)

// Stage names, reported in progress events once the stage completes
const (
	StepEntitled  = "entitled"
	StepAssembled = "assembled"
	StepGenerated = "generated"
	StepSaved     = "saved"
)

// Stage categories
const (
	CategoryAccess  = "access"
	CategoryPrompt  = "prompt"
	CategoryOracle  = "oracle"
	CategoryStorage = "storage"
)

// StepDefinition defines metadata for a generation stage
type StepDefinition struct {
	Name         string
	Category     string
	Dependencies []string
}

// StepRegistry holds all stage definitions
var StepRegistry = map[string]StepDefinition{
	StepEntitled: {
		Name:         StepEntitled,
		Category:     CategoryAccess,
		Dependencies: []string{},
	},
	StepAssembled: {
		Name:         StepAssembled,
		Category:     CategoryPrompt,
		Dependencies: []string{StepEntitled},
	},
	StepGenerated: {
		Name:         StepGenerated,
		Category:     CategoryOracle,
		Dependencies: []string{StepAssembled},
	},
	StepSaved: {
		Name:         StepSaved,
		Category:     CategoryStorage,
		Dependencies: []string{StepGenerated},
	},
}

// order is the only valid execution order
var order = []string{StepEntitled, StepAssembled, StepGenerated, StepSaved}

// Order returns the stage names in execution order
func Order() []string {
	out := make([]string, len(order))
	copy(out, order)
	return out
}

// Category returns the category of a stage, or "" for an unknown stage
func Category(stepName string) string {
	return StepRegistry[stepName].Category
}

// DependencyError represents a dependency validation error
type DependencyError struct {
	Step                string
	MissingDependencies []string
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("step %s has missing dependencies: %v", e.Step, e.MissingDependencies)
}

// ValidateDependencies checks if all required dependencies for a stage are completed
func ValidateDependencies(stepName string, completed map[string]bool) error {
	def, ok := StepRegistry[stepName]
	if !ok {
		return fmt.Errorf("unknown step: %s", stepName)
	}

	var missing []string
	for _, dep := range def.Dependencies {
		if !completed[dep] {
			missing = append(missing, dep)
		}
	}

	if len(missing) > 0 {
		return &DependencyError{
			Step:                stepName,
			MissingDependencies: missing,
		}
	}
	return nil
}

// Tracker records completed stages for one generation. It is not safe for concurrent use.
type Tracker struct {
	completed map[string]bool
}

// NewTracker creates an empty tracker
func NewTracker() *Tracker {
	return &Tracker{completed: make(map[string]bool, len(order))}
}

// Complete marks a stage done after checking its dependencies
func (t *Tracker) Complete(stepName string) error {
	if err := ValidateDependencies(stepName, t.completed); err != nil {
		return err
	}
	t.completed[stepName] = true
	return nil
}

// Completed reports whether a stage is done
func (t *Tracker) Completed(stepName string) bool {
	return t.completed[stepName]
}

// Available returns the stages whose dependencies are met but that have not run yet
func (t *Tracker) Available() []string {
	var available []string
	for _, name := range order {
		if t.completed[name] {
			continue
		}
		if err := ValidateDependencies(name, t.completed); err != nil {
			continue
		}
		available = append(available, name)
	}
	return available
}
