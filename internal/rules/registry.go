package rules

import (
	"fmt"
	"sort"
	"sync"
)

// Registry manages detector registration and lookup.
type Registry struct {
	mu        sync.RWMutex
	detectors map[string]Detector
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		detectors: make(map[string]Detector),
	}
}

// Register adds a detector to the registry.
// Panics if a detector with the same name is already registered.
func (r *Registry) Register(d Detector) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := d.Name()
	if _, exists := r.detectors[name]; exists {
		panic(fmt.Sprintf("detector %q already registered", name))
	}
	r.detectors[name] = d
}

// Get retrieves a detector by name.
// Returns nil if no detector is found.
func (r *Registry) Get(name string) Detector {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.detectors[name]
}

// All returns all registered detectors sorted by name.
func (r *Registry) All() []Detector {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Detector, 0, len(r.detectors))
	for _, d := range r.detectors {
		result = append(result, d)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name() < result[j].Name()
	})
	return result
}

// Names returns all registered detector names sorted alphabetically.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.detectors))
	for name := range r.detectors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AllRules returns the metadata of every rule across all detectors,
// sorted by rule ID.
func (r *Registry) AllRules() []RuleMetadata {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var metas []RuleMetadata
	for _, d := range r.detectors {
		metas = append(metas, d.Rules()...)
	}
	sort.Slice(metas, func(i, j int) bool {
		return metas[i].ID < metas[j].ID
	})
	return metas
}

// RuleByID looks up one rule's metadata across all detectors.
func (r *Registry) RuleByID(id string) (RuleMetadata, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, d := range r.detectors {
		for _, meta := range d.Rules() {
			if meta.ID == id {
				return meta, true
			}
		}
	}
	return RuleMetadata{}, false
}

// defaultRegistry is the global default registry.
var defaultRegistry = NewRegistry()

// DefaultRegistry returns the global default registry.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

// Register adds a detector to the default registry.
func Register(d Detector) {
	defaultRegistry.Register(d)
}

// All returns all detectors from the default registry.
func All() []Detector {
	return defaultRegistry.All()
}

// AllRules returns all rule metadata from the default registry.
func AllRules() []RuleMetadata {
	return defaultRegistry.AllRules()
}
