package shipping

import (
	"sort"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/shopcore/backend/internal/domain/shipping"
)

// providerRate is one flattened (provider, rate) pair.
type providerRate struct {
	provider shipping.ProviderCode
	rate     shipping.ShippingRate
}

// SelectionEngine deterministically picks one (provider, rate) pair from an
// aggregated rate map per the configured strategy. Strategy and threshold
// are global settings, never per-request; Reconfigure swaps them when the
// configuration collaborator pushes new settings.
type SelectionEngine struct {
	logger *zap.Logger

	mu       sync.RWMutex
	settings shipping.Settings
}

// NewSelectionEngine creates a new SelectionEngine
func NewSelectionEngine(settings shipping.Settings, logger *zap.Logger) *SelectionEngine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SelectionEngine{
		logger:   logger,
		settings: settings,
	}
}

// Reconfigure replaces the selection settings.
func (e *SelectionEngine) Reconfigure(settings shipping.Settings) {
	e.mu.Lock()
	e.settings = settings
	e.mu.Unlock()
}

// Settings returns a copy of the current selection settings.
func (e *SelectionEngine) Settings() shipping.Settings {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.settings
}

// Select picks one option from the aggregated rates. providerOrder is the
// enabled-provider list in ascending configured-priority order, as the
// registry reports it; cartSubtotal drives the free-shipping override.
// An empty rate map yields the static fallback descriptor, which is
// deterministic for a given subtotal.
func (e *SelectionEngine) Select(rates map[shipping.ProviderCode][]shipping.ShippingRate, providerOrder []shipping.ProviderCode, cartSubtotal decimal.Decimal) shipping.SelectedOption {
	e.mu.RLock()
	settings := e.settings
	e.mu.RUnlock()

	pairs := flatten(rates, providerOrder)
	if len(pairs) == 0 {
		return e.fallback(settings, cartSubtotal)
	}

	var chosen providerRate
	switch settings.Strategy {
	case shipping.StrategyCheapest:
		chosen = cheapestOf(pairs)
	case shipping.StrategyFastest:
		chosen = fastestOf(pairs)
	default: // StrategyPriority
		chosen = e.byPriority(rates, providerOrder, pairs)
	}

	option := shipping.SelectedOption{
		Provider:   chosen.provider,
		Rate:       &chosen.rate,
		MethodName: chosen.rate.CarrierName,
		FinalCost:  chosen.rate.Cost,
	}
	e.applyFreeShipping(&option, settings, cartSubtotal)
	return option
}

// flatten turns the aggregate map into a deterministic pair list: providers
// in priority order, each provider's rates in the order its adapter returned
// them, then any provider keyed in the map but absent from the priority list,
// sorted by code. "First encountered" tie-breaking is therefore stable across
// calls and no rate is dropped.
func flatten(rates map[shipping.ProviderCode][]shipping.ShippingRate, providerOrder []shipping.ProviderCode) []providerRate {
	var pairs []providerRate
	seen := make(map[shipping.ProviderCode]bool, len(providerOrder))
	for _, code := range providerOrder {
		seen[code] = true
		for _, rate := range rates[code] {
			pairs = append(pairs, providerRate{provider: code, rate: rate})
		}
	}
	var extras []shipping.ProviderCode
	for code := range rates {
		if !seen[code] {
			extras = append(extras, code)
		}
	}
	sort.Slice(extras, func(i, j int) bool { return extras[i] < extras[j] })
	for _, code := range extras {
		for _, rate := range rates[code] {
			pairs = append(pairs, providerRate{provider: code, rate: rate})
		}
	}
	return pairs
}

func cheapestOf(pairs []providerRate) providerRate {
	best := pairs[0]
	for _, pair := range pairs[1:] {
		if pair.rate.Cost.LessThan(best.rate.Cost) {
			best = pair
		}
	}
	return best
}

func fastestOf(pairs []providerRate) providerRate {
	best := pairs[0]
	for _, pair := range pairs[1:] {
		if pair.rate.EstimatedDeliveryDays < best.rate.EstimatedDeliveryDays {
			best = pair
		}
	}
	return best
}

// byPriority picks the cheapest rate within the first provider, in priority
// order, that has any rate at all. When no enabled provider has a rate in
// the map the global cheapest pair is used instead.
func (e *SelectionEngine) byPriority(rates map[shipping.ProviderCode][]shipping.ShippingRate, providerOrder []shipping.ProviderCode, pairs []providerRate) providerRate {
	for _, code := range providerOrder {
		providerRates := rates[code]
		if len(providerRates) == 0 {
			continue
		}
		best := providerRate{provider: code, rate: providerRates[0]}
		for _, rate := range providerRates[1:] {
			if rate.Cost.LessThan(best.rate.Cost) {
				best = providerRate{provider: code, rate: rate}
			}
		}
		return best
	}
	// Rates exist but none belong to a provider in the priority list.
	return cheapestOf(pairs)
}

// fallback is the static default used when no provider produced any rate.
func (e *SelectionEngine) fallback(settings shipping.Settings, cartSubtotal decimal.Decimal) shipping.SelectedOption {
	option := shipping.SelectedOption{
		MethodName: settings.FallbackMethodName,
		FinalCost:  settings.FallbackCost,
		Fallback:   true,
	}
	e.applyFreeShipping(&option, settings, cartSubtotal)
	e.logger.Debug("no provider rates, using static fallback",
		zap.String("method", option.MethodName),
		zap.String("cost", option.FinalCost.String()))
	return option
}

// applyFreeShipping forces the presented cost to zero at or above the
// threshold. The chosen rate's own cost, days and carrier stay untouched.
func (e *SelectionEngine) applyFreeShipping(option *shipping.SelectedOption, settings shipping.Settings, cartSubtotal decimal.Decimal) {
	if settings.FreeShippingThreshold.IsPositive() && cartSubtotal.GreaterThanOrEqual(settings.FreeShippingThreshold) {
		option.FinalCost = decimal.Zero
		option.FreeShippingApplied = true
	}
}
