package services

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Registry holds services by path.
type Registry struct {
	mu       sync.RWMutex
	services map[string]*Service
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{services: make(map[string]*Service)}
}

// Register adds svc. Paths are unique.
func (r *Registry) Register(svc *Service) error {
	path := strings.Trim(svc.Path(), "/")
	if path == "" {
		return fmt.Errorf("service path must not be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.services[path]; exists {
		return fmt.Errorf("service %q already registered", path)
	}
	r.services[path] = svc
	return nil
}

// Service returns the service at path.
func (r *Registry) Service(path string) (*Service, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	svc, ok := r.services[strings.Trim(path, "/")]
	return svc, ok
}

// Paths returns the registered paths, sorted.
func (r *Registry) Paths() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	paths := make([]string, 0, len(r.services))
	for p := range r.services {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
