// Package registry implements the orchestrator's Service Registry
// (spec.md §3.3): a static, read-only-after-startup map from service name
// to its dispatch URLs and per-user quota.
package registry

import "github.com/rvhonorato/job-orchestrator/internal/config"

// Service is one entry of the registry.
type Service struct {
	Name        string
	SubmitURL   string
	RetrieveURL string
	RunsPerUser int
}

// Registry is immutable after New; spec.md §9 codifies load-once-at-startup.
type Registry struct {
	byName map[string]Service
}

// New builds a Registry from configuration.
func New(services []config.ServiceConfig) *Registry {
	byName := make(map[string]Service, len(services))
	for _, s := range services {
		byName[s.Name] = Service{
			Name:        s.Name,
			SubmitURL:   s.SubmitURL,
			RetrieveURL: s.RetrieveURL,
			RunsPerUser: s.RunsPerUser,
		}
	}
	return &Registry{byName: byName}
}

// Lookup returns the Service registered under name, or false if unregistered.
func (r *Registry) Lookup(name string) (Service, bool) {
	s, ok := r.byName[name]
	return s, ok
}
