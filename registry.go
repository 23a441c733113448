package apidoc

import (
	"errors"
	"sort"
	"sync"
)

// ErrRegistrySealed is returned by Add once the registry has been sealed.
var ErrRegistrySealed = errors.New("registry is sealed")

// Registry is the ordered collection of endpoints gathered from every source file.
//
// A registry has two phases. While open, Add may be called concurrently from
// several extraction goroutines. Seal ends that phase: it fixes the order and
// rejects further appends. Lookups are only meaningful on a sealed registry.
type Registry struct {
	mu        sync.RWMutex
	endpoints []*Endpoint
	sealed    bool
}

// NewRegistry creates an empty, open registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Add appends endpoints in the given order. The endpoints of one file should
// be added in a single call so that they stay contiguous.
func (r *Registry) Add(eps ...*Endpoint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed {
		return ErrRegistrySealed
	}
	r.endpoints = append(r.endpoints, eps...)
	return nil
}

// Seal ends the extraction phase. Endpoints are stably sorted by source file so
// that the order no longer depends on which file finished scanning first;
// declaration order within a file is preserved. Sealing twice is a no-op.
func (r *Registry) Seal() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed {
		return
	}
	sort.SliceStable(r.endpoints, func(i, j int) bool {
		return r.endpoints[i].SourceFile < r.endpoints[j].SourceFile
	})
	r.sealed = true
}

// Sealed reports whether Seal has been called.
func (r *Registry) Sealed() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sealed
}

// Len returns the number of registered endpoints.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.endpoints)
}

// Endpoints returns the endpoints in registry order.
// The slice is a copy; the endpoints are shared.
func (r *Registry) Endpoints() []*Endpoint {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Endpoint, len(r.endpoints))
	copy(out, r.endpoints)
	return out
}

// FindMatches returns, in registry order, every endpoint whose URL equals url
// and, when method is non-empty, whose method equals method.
// URL comparison is exact and case-sensitive.
func (r *Registry) FindMatches(url, method string) []*Endpoint {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matches []*Endpoint
	for _, ep := range r.endpoints {
		if ep.URL != url {
			continue
		}
		if method != "" && ep.Method != method {
			continue
		}
		matches = append(matches, ep)
	}
	return matches
}

// Has reports whether an endpoint with exactly this method and url exists.
func (r *Registry) Has(method, url string) bool {
	return method != "" && len(r.FindMatches(url, method)) > 0
}

// Unreferenced returns the endpoints no template directive has emitted.
func (r *Registry) Unreferenced() []*Endpoint {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Endpoint
	for _, ep := range r.endpoints {
		if !ep.Referenced() {
			out = append(out, ep)
		}
	}
	return out
}
