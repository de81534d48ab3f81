package shipping

import (
	"context"
	"errors"
)

// ---------------------------------------------------------------------------
// CarrierProvider Errors
// ---------------------------------------------------------------------------

var (
	// Provider errors
	ErrProviderNotConfigured   = errors.New("shipping: provider not configured")
	ErrProviderNotEnabled      = errors.New("shipping: provider not enabled")
	ErrProviderNotFound        = errors.New("shipping: provider not found")
	ErrProviderUnavailable     = errors.New("shipping: provider temporarily unavailable")
	ErrProviderRequestFailed   = errors.New("shipping: provider request failed")
	ErrProviderInvalidResponse = errors.New("shipping: invalid provider response")
	ErrProviderAuthFailed      = errors.New("shipping: provider authentication failed")

	// Shipment errors
	ErrShipmentInvalidRequest  = errors.New("shipping: invalid shipment request")
	ErrShipmentNotFound        = errors.New("shipping: shipment not found")
	ErrShipmentCreationFailed  = errors.New("shipping: shipment creation failed")
	ErrTrackingNumberRequired  = errors.New("shipping: tracking number is required")
	ErrServiceSelectorRequired = errors.New("shipping: service selector is required")

	// Webhook errors
	ErrWebhookInvalidPayload    = errors.New("shipping: invalid webhook payload")
	ErrWebhookUnknownEvent      = errors.New("shipping: unknown webhook event type")
	ErrWebhookSignatureMismatch = errors.New("shipping: webhook signature mismatch")

	// Capability errors
	ErrInternationalNotSupported = errors.New("shipping: international shipping not supported by provider")
)

// ---------------------------------------------------------------------------
// ProviderCode
// ---------------------------------------------------------------------------

// ProviderCode identifies a carrier-aggregator integration.
type ProviderCode string

const (
	// ProviderCodeShiprocket represents the Shiprocket aggregator
	ProviderCodeShiprocket ProviderCode = "shiprocket"
	// ProviderCodeDelhivery represents the Delhivery aggregator
	ProviderCodeDelhivery ProviderCode = "delhivery"
	// ProviderCodeXpressbees represents the Xpressbees aggregator
	ProviderCodeXpressbees ProviderCode = "xpressbees"
)

// IsValid returns true if the provider code is a known integration
func (c ProviderCode) IsValid() bool {
	switch c {
	case ProviderCodeShiprocket, ProviderCodeDelhivery, ProviderCodeXpressbees:
		return true
	default:
		return false
	}
}

// String returns the string representation of ProviderCode
func (c ProviderCode) String() string {
	return string(c)
}

// DisplayName returns a human-readable name for the provider
func (c ProviderCode) DisplayName() string {
	switch c {
	case ProviderCodeShiprocket:
		return "Shiprocket"
	case ProviderCodeDelhivery:
		return "Delhivery"
	case ProviderCodeXpressbees:
		return "Xpressbees"
	default:
		return string(c)
	}
}

// ---------------------------------------------------------------------------
// CarrierProvider Port Interface
// ---------------------------------------------------------------------------

// CarrierProvider defines the port interface for external carrier aggregators.
// It follows the Ports & Adapters pattern: the interface lives in the domain
// layer, one concrete implementation per vendor lives in the infrastructure
// layer. Adapters never hold cross-provider state; only the registry and the
// rate aggregator are aware of multiple providers at once.
//
// Error contract: rate quoting never returns an error (failures are folded
// into the RateDiagnostic); lifecycle operations return a populated response
// with Success=false for a well-formed vendor rejection, and a non-nil error
// only when the vendor could not be reached or answered with garbage. Callers
// use that split to tell "provider says no" from "provider unreachable".
type CarrierProvider interface {
	// Code returns the provider code this adapter handles
	Code() ProviderCode

	// IsConfigured returns true iff all required credential fields are
	// non-empty. Callers must check this before any network operation.
	IsConfigured() bool

	// ---------------------------------------------------------------------------
	// Rate Quoting
	// ---------------------------------------------------------------------------

	// GetRates returns the serviceable rates for the request. It never
	// returns an error: an auth failure, an unserviceable lane, or an
	// exhausted retry budget all yield an empty slice, with the reason
	// carried in the diagnostic so the aggregator can log it.
	GetRates(ctx context.Context, req *ShippingRequest) ([]ShippingRate, RateDiagnostic)

	// SupportsInternationalShipping reports whether this provider can quote
	// and create cross-border shipments.
	SupportsInternationalShipping() bool

	// GetInternationalRates quotes cross-border lanes via the vendor's
	// dedicated endpoint. Providers that do not support international
	// shipping return an empty slice with OutcomeUnsupported.
	GetInternationalRates(ctx context.Context, req *ShippingRequest) ([]ShippingRate, RateDiagnostic)

	// ---------------------------------------------------------------------------
	// Shipment Lifecycle
	// ---------------------------------------------------------------------------

	// CreateShipment books a shipment with the vendor. serviceSelector is
	// the provider-specific courier/service identifier obtained from a
	// prior ShippingRate. Multi-step vendor workflows (create order, then
	// generate AWB) are encapsulated behind this single call; if a later
	// step fails after an earlier one succeeded the adapter reports
	// failure, but the vendor-side order may still exist.
	CreateShipment(ctx context.Context, req *ShippingRequest, serviceSelector string) (*ShipmentResponse, error)

	// TrackShipment returns the current status and ordered scan history
	// for the tracking number issued at creation time.
	TrackShipment(ctx context.Context, trackingNumber string) (*TrackingResponse, error)

	// CancelShipment cancels the shipment identified by its tracking
	// number. Some vendors require resolving their internal order id from
	// the tracking number first; adapters hide that extra round trip.
	CancelShipment(ctx context.Context, trackingNumber string) (*CancellationResponse, error)

	// CreateReturnShipment books a reverse-logistics shipment referencing
	// the original tracking number.
	CreateReturnShipment(ctx context.Context, originalTrackingNumber string, req *ShippingRequest) (*ShipmentResponse, error)

	// ---------------------------------------------------------------------------
	// Pickup Locations
	// ---------------------------------------------------------------------------

	// GetPickupLocations lists the pickup addresses registered with the vendor.
	GetPickupLocations(ctx context.Context) ([]PickupLocation, error)

	// CreatePickupLocation registers a new pickup address with the vendor.
	CreatePickupLocation(ctx context.Context, loc *PickupLocation) (*PickupLocation, error)

	// ---------------------------------------------------------------------------
	// Webhooks
	// ---------------------------------------------------------------------------

	// ParseWebhookEvent decodes and verifies a raw vendor webhook payload
	// and maps the vendor status vocabulary onto the shared event taxonomy.
	// Verification policy is vendor-specific; adapters that have no
	// signature scheme accept any well-formed payload.
	ParseWebhookEvent(payload []byte) (*WebhookEvent, error)

	// ProcessWebhookEvent applies vendor-side side effects for an already
	// parsed event. Today the only side effect is the automatic
	// re-delivery request issued for non-delivery reports by providers
	// that support it; remediation failures are logged by the caller, not
	// retried.
	ProcessWebhookEvent(ctx context.Context, event *WebhookEvent) error
}

// ProviderRegistry provides access to the configured carrier providers.
// The registry is rebuilt wholesale whenever configuration changes; adapter
// instances are value-like after construction (their only mutable state is
// the internal auth-token cache), so in-flight calls against a discarded
// generation complete safely.
type ProviderRegistry interface {
	// Get returns the provider adapter for the given code
	Get(code ProviderCode) (CarrierProvider, error)

	// Enabled returns the enabled and configured providers in ascending
	// configured-priority order
	Enabled() []CarrierProvider

	// Default returns the configured default provider, or nil when none is set
	Default() CarrierProvider
}
