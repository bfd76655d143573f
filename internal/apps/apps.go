// Package apps holds the allow-list of client applications sharing the
// SSO deployment. Redirect targets are only ever drawn from this
// registry, never from request input.
package apps

import (
	"fmt"
	"sort"
)

// Application is one independently deployed client application.
type Application struct {
	Slug    string // stable identifier, e.g. "client1"
	BaseURL string // e.g. "https://client1.example.com"
}

// Registry maps application slugs to applications. It performs no
// redirect logic itself.
type Registry struct {
	apps map[string]Application
}

// NewRegistry registers the given applications by slug.
// Slugs must be unique.
func NewRegistry(list ...Application) *Registry {
	m := make(map[string]Application)
	for _, a := range list {
		m[a.Slug] = a
	}
	return &Registry{apps: m}
}

// FromMap builds a registry from a slug→baseURL configuration map.
func FromMap(apps map[string]string) *Registry {
	r := &Registry{apps: make(map[string]Application)}
	for slug, base := range apps {
		r.apps[slug] = Application{Slug: slug, BaseURL: base}
	}
	return r
}

// Get returns the application by slug or an error if not registered.
func (r *Registry) Get(slug string) (Application, error) {
	a, ok := r.apps[slug]
	if !ok {
		return Application{}, fmt.Errorf("unknown application: %s", slug)
	}
	return a, nil
}

// Slugs returns the registered slugs in stable order.
func (r *Registry) Slugs() []string {
	slugs := make([]string, 0, len(r.apps))
	for slug := range r.apps {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)
	return slugs
}
