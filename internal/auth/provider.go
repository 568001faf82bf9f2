package auth

import (
	"fmt"
	"sort"
)

// Provider extracts candidate identifiers from a provider-specific
// credential payload. Implementations are stateless; a payload with merely
// absent optional fields yields an empty candidate list, not an error.
type Provider interface {
	// Name is the registration token used in AUTH_PROVIDERS configuration.
	Name() string

	// ExtractClaims returns candidate identifiers in provider order.
	ExtractClaims(payload any) ([]string, error)
}

// Registry is a name-keyed table of identity providers built at startup,
// so an unknown provider is a plain map-lookup failure rather than a
// runtime module-resolution problem.
type Registry map[string]Provider

// NewRegistry builds a registry from the given providers.
func NewRegistry(providers ...Provider) Registry {
	registry := make(Registry, len(providers))

	for _, p := range providers {
		registry[p.Name()] = p
	}

	return registry
}

// Names returns the registered provider names in sorted order.
func (r Registry) Names() []string {
	names := make([]string, 0, len(r))

	for name := range r {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// Assemble resolves each requested provider name against the registry. An
// unknown name is a configuration error identifying which provider failed
// to load.
func Assemble(names []string, registry Registry) ([]Provider, error) {
	providers := make([]Provider, 0, len(names))

	for _, name := range names {
		provider, ok := registry[name]
		if !ok {
			return nil, fmt.Errorf("failed to load %s provider: not registered", name)
		}

		providers = append(providers, provider)
	}

	return providers, nil
}
