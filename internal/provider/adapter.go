package provider

import (
	"context"
	"fmt"
	"sync"

	"github.com/kadirpekel/cocode/internal/protocol"
)

// RequestContext carries the per-request metadata the driver passes
// alongside a Prompt: conversation identity, effective resolved
// parameters, and reasoning controls. Adapters read this but never
// mutate it.
type RequestContext struct {
	ConversationID   string
	SessionSource    string
	Parameters       protocol.ModelParameters
	ReasoningEffort  protocol.ThinkingLevel
	ReasoningSummary bool
	Verbosity        string
	Model            string
}

// Adapter translates the neutral Prompt/ResponseEvent model to one
// provider's wire format. Implementations must be safe for concurrent
// use across turns.
type Adapter interface {
	Name() string
	SupportsPreviousResponseID() bool
	// Stream sends prompt to the provider under reqCtx and info, and
	// returns a channel of events terminated by a Completed or Error
	// event. The channel is closed after the terminal event. Cancelling
	// ctx aborts the underlying connection.
	Stream(ctx context.Context, prompt protocol.Prompt, reqCtx RequestContext, info protocol.ProviderInfo) (<-chan protocol.ResponseEvent, error)
}

// Registry is the process-wide adapter registry. Built-ins are
// registered at process start; runtime registration replaces
// same-named entries atomically under a reader-writer lock.
type Registry struct {
	mu       sync.RWMutex
	adapters map[string]Adapter
}

func NewRegistry() *Registry {
	return &Registry{adapters: make(map[string]Adapter)}
}

// Register installs adapter under its own Name(), replacing any
// previous entry with the same name.
func (r *Registry) Register(a Adapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters[a.Name()] = a
}

// Get looks up an adapter by name.
func (r *Registry) Get(name string) (Adapter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.adapters[name]
	if !ok {
		return nil, fmt.Errorf("provider adapter %q not registered", name)
	}
	return a, nil
}

// Names returns the registered adapter names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.adapters))
	for name := range r.adapters {
		out = append(out, name)
	}
	return out
}
