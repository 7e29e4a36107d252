package tool

import (
	"fmt"
	"sort"
	"sync"

	"github.com/kadirpekel/cocode/internal/protocol"
)

// FeatureSet tracks which feature gates are enabled for a session. A
// tool whose Definition().FeatureGate names a disabled feature is
// excluded from DefinitionsFiltered and rejected at admission as if it
// were never registered.
type FeatureSet struct {
	mu       sync.RWMutex
	disabled map[string]struct{}
}

func NewFeatureSet() *FeatureSet {
	return &FeatureSet{disabled: make(map[string]struct{})}
}

func (f *FeatureSet) Disable(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.disabled[name] = struct{}{}
}

func (f *FeatureSet) Enable(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.disabled, name)
}

func (f *FeatureSet) IsEnabled(name string) bool {
	if name == "" {
		return true
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	_, disabled := f.disabled[name]
	return !disabled
}

// Registry holds the tools available to a session, by canonical name
// and by alias. Registration order is not preserved; ToolNames returns
// a sorted list for deterministic prompt assembly.
type Registry struct {
	mu      sync.RWMutex
	tools   map[string]Tool
	aliases map[string]string
}

func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool), aliases: make(map[string]string)}
}

func (r *Registry) Register(t Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[t.Definition().Name] = t
}

// RegisterWithAlias registers t under its own name and additionally
// makes it reachable under alias, e.g. "Read" aliasing "read_file".
func (r *Registry) RegisterWithAlias(t Tool, alias string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[t.Definition().Name] = t
	r.aliases[alias] = t.Definition().Name
}

func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.resolve(name) != nil
}

// resolve must be called with r.mu held for reading.
func (r *Registry) resolve(name string) Tool {
	if t, ok := r.tools[name]; ok {
		return t
	}
	if canonical, ok := r.aliases[name]; ok {
		return r.tools[canonical]
	}
	return nil
}

func (r *Registry) Get(name string) (Tool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if t := r.resolve(name); t != nil {
		return t, nil
	}
	return nil, fmt.Errorf("tool %q: not found", name)
}

// ToolNames returns every canonical tool name, sorted.
func (r *Registry) ToolNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) AllDefinitions() []protocol.ToolDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	defs := make([]protocol.ToolDefinition, 0, len(r.tools))
	for _, t := range r.tools {
		defs = append(defs, t.Definition())
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
	return defs
}

// DefinitionsFiltered returns AllDefinitions with any tool whose feature
// gate is disabled in features excluded.
func (r *Registry) DefinitionsFiltered(features *FeatureSet) []protocol.ToolDefinition {
	all := r.AllDefinitions()
	if features == nil {
		return all
	}
	out := make([]protocol.ToolDefinition, 0, len(all))
	for _, d := range all {
		if features.IsEnabled(d.FeatureGate) {
			out = append(out, d)
		}
	}
	return out
}
