package provider

import "fmt"

// Registry holds all configured identity providers and allows lookup
// by provider name. Dispatch is a pure lookup; there is no precedence
// or fallback logic.
type Registry struct {
	providers map[string]Adapter
	names     []string
}

// NewRegistry registers the given providers by name, preserving
// registration order for display. Provider names must be unique.
func NewRegistry(list ...Adapter) *Registry {
	m := make(map[string]Adapter)
	names := make([]string, 0, len(list))
	for _, p := range list {
		if _, dup := m[p.Name()]; dup {
			continue
		}
		m[p.Name()] = p
		names = append(names, p.Name())
	}
	return &Registry{providers: m, names: names}
}

// Get returns the provider by name or an error if not registered.
func (r *Registry) Get(name string) (Adapter, error) {
	p, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("unknown identity provider: %s", name)
	}
	return p, nil
}

// Names returns the registered provider names in registration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.names...)
}
