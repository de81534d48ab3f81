package shipping

import (
	"errors"
	"sort"

	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// ProviderConfig
// ---------------------------------------------------------------------------

// ProviderConfig is one entry of the configuration that drives registry
// construction. Credentials lives as opaque key/value pairs; each adapter
// knows which keys it needs and validates them itself.
type ProviderConfig struct {
	Code    ProviderCode
	Name    string
	Enabled bool
	// Priority orders providers for the priority strategy; lower is preferred
	Priority int
	// Credentials holds the vendor credential fields (api_key, email, ...)
	Credentials map[string]string
	// WebhookURL is the inbound URL registered with the vendor, when any
	WebhookURL string
}

// Validate checks the structural fields; credential completeness is the
// adapter's concern via IsConfigured.
func (c *ProviderConfig) Validate() error {
	if !c.Code.IsValid() {
		return errors.New("shipping: unknown provider code " + string(c.Code))
	}
	if c.Priority < 0 {
		return errors.New("shipping: provider priority cannot be negative")
	}
	return nil
}

// SortByPriority orders configs by ascending priority, ties broken by code
// so the order is deterministic.
func SortByPriority(configs []ProviderConfig) {
	sort.SliceStable(configs, func(i, j int) bool {
		if configs[i].Priority != configs[j].Priority {
			return configs[i].Priority < configs[j].Priority
		}
		return configs[i].Code < configs[j].Code
	})
}

// ---------------------------------------------------------------------------
// Settings
// ---------------------------------------------------------------------------

// Settings is the global shipping configuration supplied by the
// configuration collaborator. Strategy and threshold are global, never
// per-request.
type Settings struct {
	Strategy SelectionStrategy
	// DefaultProvider is preferred when the registry must pick one (may be empty)
	DefaultProvider ProviderCode
	// FreeShippingThreshold forces the presented cost to zero when the cart
	// subtotal reaches it
	FreeShippingThreshold decimal.Decimal
	// FallbackMethodName and FallbackCost describe the static default
	// returned when no provider produced any rate
	FallbackMethodName string
	FallbackCost       decimal.Decimal
	// DefaultPickupPincode is used when a request does not name a pickup
	// location
	DefaultPickupPincode string
}

// Validate applies defaults and rejects inconsistent settings.
func (s *Settings) Validate() error {
	if s.Strategy == "" {
		s.Strategy = StrategyPriority
	}
	if !s.Strategy.IsValid() {
		return errors.New("shipping: unknown selection strategy " + string(s.Strategy))
	}
	if s.FallbackMethodName == "" {
		s.FallbackMethodName = "Standard Shipping"
	}
	if s.FreeShippingThreshold.IsNegative() {
		return errors.New("shipping: free-shipping threshold cannot be negative")
	}
	if s.FallbackCost.IsNegative() {
		return errors.New("shipping: fallback cost cannot be negative")
	}
	return nil
}
