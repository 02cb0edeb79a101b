package keybinds

import (
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

// Binding represents a keybinding mapping
type Binding struct {
	Key     string
	Action  Action
	Context Context
}

// Registry manages keybinding mappings and matching
type Registry struct {
	// bindings maps context -> key -> action
	bindings map[Context]map[string]Action

	// pending tracks multi-key sequences (like 'gg' in vim)
	pending map[Context]string
}

// NewRegistry creates an empty keybinding registry
func NewRegistry() *Registry {
	return &Registry{
		bindings: make(map[Context]map[string]Action),
		pending:  make(map[Context]string),
	}
}

// Register adds a keybinding to the registry
func (r *Registry) Register(context Context, key string, action Action) {
	if r.bindings[context] == nil {
		r.bindings[context] = make(map[string]Action)
	}
	r.bindings[context][key] = action
}

// RegisterMultiple registers multiple keybindings for the same action
func (r *Registry) RegisterMultiple(context Context, keys []string, action Action) {
	for _, key := range keys {
		r.Register(context, key, action)
	}
}

// Rebind replaces every key of action in context with keys
func (r *Registry) Rebind(context Context, action Action, keys []string) {
	for k, a := range r.bindings[context] {
		if a == action {
			delete(r.bindings[context], k)
		}
	}
	r.RegisterMultiple(context, keys, action)
}

// Match attempts to match a key to an action in the given context.
// The context is checked before the global bindings.
func (r *Registry) Match(context Context, key string) (Action, bool) {
	if action, ok := r.bindings[context][key]; ok {
		return action, true
	}
	if action, ok := r.bindings[ContextGlobal][key]; ok {
		return action, true
	}
	return "", false
}

// MatchIn matches key in context only, without the global fallback.
// Text inputs use it so printable global keys reach the input.
func (r *Registry) MatchIn(context Context, key string) (Action, bool) {
	action, ok := r.bindings[context][key]
	return action, ok
}

// MatchMultiKey handles multi-key sequences like 'gg'.
// It returns the action, whether it is a complete match and whether the
// key was held as the start of a sequence.
func (r *Registry) MatchMultiKey(context Context, key string) (Action, bool, bool) {
	if prev, ok := r.pending[context]; ok {
		delete(r.pending, context)
		if action, ok := r.Match(context, prev+key); ok {
			return action, true, false
		}
		// Not a sequence: treat the key on its own
		action, ok := r.Match(context, key)
		return action, ok, false
	}

	if action, ok := r.Match(context, key); ok && action == ActionFirstPagePrep {
		r.pending[context] = key
		return "", false, true
	}

	action, ok := r.Match(context, key)
	return action, ok, false
}

// ClearPending drops a held sequence prefix
func (r *Registry) ClearPending(context Context) {
	delete(r.pending, context)
}

// Keys returns the sorted keys bound to action, looking in context then global
func (r *Registry) Keys(context Context, action Action) []string {
	keys := r.keysIn(context, action)
	if len(keys) == 0 {
		keys = r.keysIn(ContextGlobal, action)
	}
	return keys
}

func (r *Registry) keysIn(context Context, action Action) []string {
	var keys []string
	for k, a := range r.bindings[context] {
		if a == action {
			keys = append(keys, k)
		}
	}
	slices.SortFunc(keys, func(a, b string) int {
		if len(a) != len(b) {
			return len(a) - len(b)
		}
		return strings.Compare(a, b)
	})
	return keys
}

// KeyString returns a human-readable string of keys bound to an action
func (r *Registry) KeyString(context Context, action Action) string {
	keys := r.Keys(context, action)
	if len(keys) == 0 {
		return "unbound"
	}
	return strings.Join(keys, "/")
}

// Help builds bubbles key bindings for the help footer
func (r *Registry) Help(context Context, actions ...Action) []key.Binding {
	out := make([]key.Binding, 0, len(actions))
	for _, a := range actions {
		keys := r.Keys(context, a)
		if len(keys) == 0 {
			continue
		}
		out = append(out, key.NewBinding(
			key.WithKeys(keys...),
			key.WithHelp(strings.Join(keys, "/"), Describe(a)),
		))
	}
	return out
}

// ListBindings returns all bindings for a context, sorted by key
func (r *Registry) ListBindings(context Context) []Binding {
	var bindings []Binding
	for k, a := range r.bindings[context] {
		bindings = append(bindings, Binding{Key: k, Action: a, Context: context})
	}
	slices.SortFunc(bindings, func(a, b Binding) int { return strings.Compare(a.Key, b.Key) })
	return bindings
}

// HasBinding checks if a key is bound in a context or globally
func (r *Registry) HasBinding(context Context, key string) bool {
	_, ok := r.Match(context, key)
	return ok
}

// Clone creates a deep copy of the registry
func (r *Registry) Clone() *Registry {
	clone := NewRegistry()
	for context, contextBindings := range r.bindings {
		for key, action := range contextBindings {
			clone.Register(context, key, action)
		}
	}
	return clone
}
