package completion

import (
	"fmt"

	"shipstream/internal/config"
	"shipstream/internal/port"
)

// ProviderFactory is a function that creates a CompletionClient from a provider config.
type ProviderFactory func(cfg *config.CompletionProviderConfig) (port.CompletionClient, error)

// registry of completion provider factories, populated explicitly via RegisterProvider.
var providers = map[string]ProviderFactory{}

// RegisterProvider registers a completion provider factory by name.
func RegisterProvider(name string, factory ProviderFactory) {
	providers[name] = factory
}

// NewClient creates a CompletionClient from a provider config using the registered factory.
func NewClient(cfg *config.CompletionProviderConfig) (port.CompletionClient, error) {
	factory, ok := providers[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unknown completion provider: %s", cfg.Provider)
	}
	return factory(cfg)
}
