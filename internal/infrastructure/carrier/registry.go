package carrier

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/shopcore/backend/internal/domain/shipping"
	"github.com/shopcore/backend/internal/infrastructure/httpclient"
)

// Registry holds the active carrier adapters. Reload replaces the adapter
// set wholesale under the write lock; readers always observe one complete
// generation. Adapters from a discarded generation finish their in-flight
// calls safely because their only mutable state is the auth-token cache.
type Registry struct {
	client *httpclient.Client
	logger *zap.Logger

	mu          sync.RWMutex
	providers   map[shipping.ProviderCode]shipping.CarrierProvider
	order       []shipping.ProviderCode
	defaultCode shipping.ProviderCode
}

// NewRegistry creates an empty registry. Call Reload to populate it.
func NewRegistry(client *httpclient.Client, logger *zap.Logger) *Registry {
	if client == nil {
		client = httpclient.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		client:    client,
		logger:    logger,
		providers: make(map[shipping.ProviderCode]shipping.CarrierProvider),
	}
}

// Reload rebuilds the adapter set from configuration. The whole new
// generation is constructed before the swap; a config entry that fails to
// build aborts the reload and leaves the previous generation serving.
func (r *Registry) Reload(configs []shipping.ProviderConfig, settings shipping.Settings) error {
	shipping.SortByPriority(configs)

	providers := make(map[shipping.ProviderCode]shipping.CarrierProvider, len(configs))
	order := make([]shipping.ProviderCode, 0, len(configs))
	for i := range configs {
		cfg := &configs[i]
		if !cfg.Enabled {
			r.logger.Info("skipping disabled provider", zap.String("provider", cfg.Code.String()))
			continue
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		adapter, err := r.buildAdapter(cfg)
		if err != nil {
			return fmt.Errorf("carrier: build %s adapter: %w", cfg.Code, err)
		}
		if adapter == nil {
			r.logger.Warn("provider enabled but credentials incomplete, skipping",
				zap.String("provider", cfg.Code.String()))
			continue
		}
		providers[cfg.Code] = adapter
		order = append(order, cfg.Code)
	}

	r.mu.Lock()
	r.providers = providers
	r.order = order
	r.defaultCode = settings.DefaultProvider
	r.mu.Unlock()

	r.logger.Info("provider registry reloaded",
		zap.Int("providers", len(order)),
		zap.String("default", settings.DefaultProvider.String()))
	return nil
}

// buildAdapter constructs the vendor adapter for one config entry. Each
// adapter knows which credential keys it needs. A nil, nil return means the
// credentials are incomplete and the entry should be skipped.
func (r *Registry) buildAdapter(cfg *shipping.ProviderConfig) (shipping.CarrierProvider, error) {
	creds := cfg.Credentials
	switch cfg.Code {
	case shipping.ProviderCodeShiprocket:
		c := NewShiprocketConfig(creds["email"], creds["password"], creds["channel_id"])
		if baseURL := creds["api_base_url"]; baseURL != "" {
			c.APIBaseURL = baseURL
		}
		if !c.IsComplete() {
			return nil, nil
		}
		return NewShiprocketAdapter(c, r.client, r.logger)
	case shipping.ProviderCodeDelhivery:
		c := NewDelhiveryConfig(creds["api_key"], creds["client_name"])
		if name := creds["pickup_location"]; name != "" {
			c.PickupLocationName = name
		}
		if baseURL := creds["api_base_url"]; baseURL != "" {
			c.APIBaseURL = baseURL
		}
		if !c.IsComplete() {
			return nil, nil
		}
		return NewDelhiveryAdapter(c, r.client, r.logger)
	case shipping.ProviderCodeXpressbees:
		c := NewXpressbeesConfig(creds["email"], creds["password"])
		if baseURL := creds["api_base_url"]; baseURL != "" {
			c.APIBaseURL = baseURL
		}
		if !c.IsComplete() {
			return nil, nil
		}
		return NewXpressbeesAdapter(c, r.client, r.logger)
	default:
		return nil, shipping.ErrProviderNotFound
	}
}

// Get returns the provider adapter for the given code
func (r *Registry) Get(code shipping.ProviderCode) (shipping.CarrierProvider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	provider, ok := r.providers[code]
	if !ok {
		if code.IsValid() {
			return nil, fmt.Errorf("%w: %s", shipping.ErrProviderNotConfigured, code)
		}
		return nil, fmt.Errorf("%w: %s", shipping.ErrProviderNotFound, code)
	}
	return provider, nil
}

// Enabled returns the enabled and configured providers in ascending
// configured-priority order.
func (r *Registry) Enabled() []shipping.CarrierProvider {
	r.mu.RLock()
	defer r.mu.RUnlock()

	providers := make([]shipping.CarrierProvider, 0, len(r.order))
	for _, code := range r.order {
		providers = append(providers, r.providers[code])
	}
	return providers
}

// Default returns the configured default provider, or nil when none is set
// or the configured one is absent from the current generation.
func (r *Registry) Default() shipping.CarrierProvider {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.defaultCode == "" {
		return nil
	}
	return r.providers[r.defaultCode]
}

// Ensure Registry implements the ProviderRegistry interface
var _ shipping.ProviderRegistry = (*Registry)(nil)
