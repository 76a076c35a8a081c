// Package catalog holds the static framework library. The catalog is parsed
// once from an embedded YAML file and is immutable at runtime, so it is safe
// to share across concurrent executors without locking.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/goccy/go-yaml"
)

//go:embed frameworks.yaml
var frameworksYAML []byte

// ErrNotFound is returned when a framework id does not exist in the catalog.
var ErrNotFound = errors.New("framework not found")

// Phase values for Framework.Phase.
const (
	PhaseDiscovery = "discovery"
	PhaseSolution  = "solution"
)

// OutputField is one entry of a framework's expected output structure.
// Order matters: it mirrors the order analyses should present their fields.
type OutputField struct {
	Field       string `yaml:"field" json:"field"`
	Description string `yaml:"description" json:"description"`
}

// Framework is a single catalog entry describing a structured-thinking
// method: when to apply it, what questions it answers, and the shape of the
// analysis it produces.
type Framework struct {
	ID               string        `yaml:"id" json:"id"`
	Title            string        `yaml:"title" json:"title"`
	Definition       string        `yaml:"definition" json:"definition"`
	Type             string        `yaml:"type" json:"framework_type"`
	ComplexityFit    []string      `yaml:"complexity_fit" json:"complexity_fit"`
	Phase            string        `yaml:"phase" json:"phase"`
	RequiredConcepts []string      `yaml:"required_concepts" json:"required_concepts"`
	WhenToUse        string        `yaml:"when_to_use" json:"when_to_use"`
	KeyQuestions     []string      `yaml:"key_questions" json:"key_questions"`
	OutputStructure  []OutputField `yaml:"output_structure" json:"output_structure"`
}

// Registry is an immutable, id-indexed view of the framework library.
type Registry struct {
	ordered []*Framework
	byID    map[string]*Framework
}

type catalogFile struct {
	Frameworks []*Framework `yaml:"frameworks"`
}

// Load parses the embedded catalog. Intended for explicit wiring; most
// callers use Default.
func Load() (*Registry, error) {
	var file catalogFile
	if err := yaml.Unmarshal(frameworksYAML, &file); err != nil {
		return nil, fmt.Errorf("failed to parse framework catalog: %w", err)
	}
	if len(file.Frameworks) == 0 {
		return nil, fmt.Errorf("framework catalog is empty")
	}

	reg := &Registry{
		ordered: file.Frameworks,
		byID:    make(map[string]*Framework, len(file.Frameworks)),
	}
	for _, fw := range file.Frameworks {
		if fw.ID == "" {
			return nil, fmt.Errorf("framework catalog entry missing id (title %q)", fw.Title)
		}
		if _, dup := reg.byID[fw.ID]; dup {
			return nil, fmt.Errorf("duplicate framework id %q in catalog", fw.ID)
		}
		reg.byID[fw.ID] = fw
	}
	return reg, nil
}

var (
	defaultOnce sync.Once
	defaultReg  *Registry
	defaultErr  error
)

// Default returns the process-wide registry, loading it on first use.
// The embedded catalog is part of the binary, so a load failure is a
// programming error and panics.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultReg, defaultErr = Load()
	})
	if defaultErr != nil {
		panic(defaultErr)
	}
	return defaultReg
}

// Get returns the framework for the given id, or ErrNotFound.
func (r *Registry) Get(id string) (*Framework, error) {
	fw, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return fw, nil
}

// Has reports whether id exists in the catalog.
func (r *Registry) Has(id string) bool {
	_, ok := r.byID[id]
	return ok
}

// IDs returns all framework ids in catalog order.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.ordered))
	for _, fw := range r.ordered {
		ids = append(ids, fw.ID)
	}
	return ids
}

// All returns every framework in catalog order.
func (r *Registry) All() []*Framework {
	return r.ordered
}

// ByPhase returns the frameworks belonging to the given phase, in catalog order.
func (r *Registry) ByPhase(phase string) []*Framework {
	var out []*Framework
	for _, fw := range r.ordered {
		if fw.Phase == phase {
			out = append(out, fw)
		}
	}
	return out
}

// Len returns the number of catalog entries.
func (r *Registry) Len() int {
	return len(r.ordered)
}

// PromptText renders the catalog as a prompt-ready listing, grouped by phase.
func (r *Registry) PromptText() string {
	var b strings.Builder

	b.WriteString("=== PHASE 1: DISCOVERY FRAMEWORKS ===\n")
	writePhase(&b, r.ByPhase(PhaseDiscovery))
	b.WriteString("\n=== PHASE 2: SOLUTION FRAMEWORKS ===\n")
	writePhase(&b, r.ByPhase(PhaseSolution))

	return b.String()
}

func writePhase(b *strings.Builder, frameworks []*Framework) {
	for _, fw := range frameworks {
		fmt.Fprintf(b, "\n- ID: %s\n  Title: %s\n  Type: %s\n  Complexity Fit: %s\n  When to use: %s\n",
			fw.ID, fw.Title, fw.Type, strings.Join(fw.ComplexityFit, ", "), fw.WhenToUse)
	}
}
