package shipping

import (
	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// ShippingRate
// ---------------------------------------------------------------------------

// ShippingRate is one shipping option returned by a provider. It has no
// identity beyond its fields and lives only for the duration of one
// aggregation+selection cycle. A rate is only meaningful paired with the
// provider code that produced it: ServiceSelector is opaque and
// provider-specific, and is what re-invokes that provider for creation.
type ShippingRate struct {
	// Provider is the aggregator that quoted this rate
	Provider ProviderCode
	// CarrierName is the physical courier behind the aggregator (e.g. "Bluedart")
	CarrierName string
	// ServiceSelector is the provider-specific courier/service identifier
	// passed back to CreateShipment
	ServiceSelector string
	// Cost is the shipping charge quoted by the provider
	Cost decimal.Decimal
	// Currency is the ISO 4217 currency of Cost (default INR)
	Currency string
	// EstimatedDeliveryDays is the quoted transit time
	EstimatedDeliveryDays int
	// Available reports whether the option is currently bookable
	Available bool
	// InsuranceAvailable reports whether shipment insurance can be added
	InsuranceAvailable bool
	// InsuranceCost is the additional charge for insurance, when available
	InsuranceCost decimal.Decimal
	// International marks cross-border options
	International bool
}

// ---------------------------------------------------------------------------
// RateDiagnostic
// ---------------------------------------------------------------------------

// RateOutcome classifies why a provider's rate response is (or is not) empty.
// The aggregator treats every non-OK outcome identically for selection
// purposes, but logs them differently: an unserviceable lane is business as
// usual, an unreachable provider is an operational problem.
type RateOutcome string

const (
	// RateOutcomeOK means the provider answered with at least one rate
	RateOutcomeOK RateOutcome = "ok"
	// RateOutcomeUnserviceable means the provider answered, but no courier
	// covers the requested lane
	RateOutcomeUnserviceable RateOutcome = "unserviceable"
	// RateOutcomeAuthFailed means credential login or token refresh failed
	RateOutcomeAuthFailed RateOutcome = "auth_failed"
	// RateOutcomeUnreachable means the retry budget was exhausted without a
	// well-formed response
	RateOutcomeUnreachable RateOutcome = "unreachable"
	// RateOutcomeInvalidResponse means the provider answered with a payload
	// the adapter could not decode
	RateOutcomeInvalidResponse RateOutcome = "invalid_response"
	// RateOutcomeUnsupported means the operation is not offered by this
	// provider (e.g. international rates)
	RateOutcomeUnsupported RateOutcome = "unsupported"
)

// RateDiagnostic records how a provider's quote attempt went so that the
// aggregator can distinguish failing providers from unserviceable lanes
// instead of conflating both into an empty slice.
type RateDiagnostic struct {
	Provider ProviderCode
	Outcome  RateOutcome
	// Message carries the vendor-provided reason, when there is one
	Message string
	// Err is the underlying transport or decode error for non-OK outcomes
	Err error
}

// OK reports whether the provider produced usable rates.
func (d RateDiagnostic) OK() bool {
	return d.Outcome == RateOutcomeOK
}

// ---------------------------------------------------------------------------
// SelectionStrategy
// ---------------------------------------------------------------------------

// SelectionStrategy is the global policy for picking among aggregated rates.
type SelectionStrategy string

const (
	// StrategyPriority walks enabled providers in ascending configured
	// priority and picks the cheapest rate of the first provider that has any
	StrategyPriority SelectionStrategy = "priority"
	// StrategyCheapest picks the globally cheapest (provider, rate) pair
	StrategyCheapest SelectionStrategy = "cheapest"
	// StrategyFastest picks the pair with the fewest estimated delivery days
	StrategyFastest SelectionStrategy = "fastest"
)

// IsValid returns true if the strategy is known
func (s SelectionStrategy) IsValid() bool {
	switch s {
	case StrategyPriority, StrategyCheapest, StrategyFastest:
		return true
	default:
		return false
	}
}

// String returns the string representation of SelectionStrategy
func (s SelectionStrategy) String() string {
	return string(s)
}

// ---------------------------------------------------------------------------
// SelectedOption
// ---------------------------------------------------------------------------

// SelectedOption is the selection engine's output: one (provider, rate) pair
// plus the final presented cost after the free-shipping override, or the
// static fallback descriptor when no provider produced a rate.
type SelectedOption struct {
	// Provider is empty for the static fallback
	Provider ProviderCode
	// Rate is nil for the static fallback
	Rate *ShippingRate
	// MethodName is the presented shipping method label
	MethodName string
	// FinalCost is the cost after the free-shipping override; the rate's
	// own Cost field is left untouched
	FinalCost decimal.Decimal
	// FreeShippingApplied marks that FinalCost was forced to zero
	FreeShippingApplied bool
	// Fallback marks the static default descriptor
	Fallback bool
}
