package storage

import (
	"fmt"
	"sync"

	"github.com/kbukum/dataflow/logger"
)

// Factory creates a Storage from provider-specific configuration. Each
// provider type-asserts providerCfg to its own config type.
type Factory func(providerCfg any, log *logger.Logger) (Storage, error)

var (
	factoriesMu sync.RWMutex
	factories   = make(map[string]Factory)
)

// RegisterFactory registers a storage backend factory for the given provider
// name. Provider packages call this from init.
func RegisterFactory(name string, f Factory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	factories[name] = f
}

// New creates the Storage selected by cfg. The provider package must be
// imported (e.g. _ "github.com/kbukum/dataflow/storage/local") so its
// factory is registered.
func New(cfg Config, providerCfg any, log *logger.Logger) (Storage, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.Nop()
	}

	factoriesMu.RLock()
	f, ok := factories[cfg.Provider]
	factoriesMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("storage: unsupported provider %q (not registered)", cfg.Provider)
	}

	l := log.WithComponent("storage")
	l.Debug("initializing storage", logger.Fields("provider", cfg.Provider))
	return f(providerCfg, l)
}

// ProviderConfig is a provider section that can default and check itself.
type ProviderConfig[T any] interface {
	*T
	ApplyDefaults()
	Validate() error
}

// Resolve asserts raw to the provider's config type, defaults it and checks
// it. A nil raw yields a defaulted zero config when allowZero is set.
func Resolve[T any, P ProviderConfig[T]](provider string, raw any, allowZero bool) (P, error) {
	var cfg P
	switch c := raw.(type) {
	case P:
		cfg = c
	case nil:
		if !allowZero {
			return cfg, fmt.Errorf("storage: %s provider config is required", provider)
		}
		cfg = new(T)
	default:
		return cfg, fmt.Errorf("storage: %s provider config has type %T", provider, raw)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
