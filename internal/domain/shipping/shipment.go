package shipping

import (
	"time"

	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// ShipmentResponse
// ---------------------------------------------------------------------------

// ShipmentResponse is the result of a creation (or return-creation) call.
// The tracking number, once issued, is the only key later lifecycle
// operations accept; no operation takes the request payload again.
type ShipmentResponse struct {
	// Success is false for a well-formed vendor rejection
	Success bool
	// Message is the human-readable vendor message
	Message string
	// TrackingNumber is the AWB issued by the chosen provider
	TrackingNumber string
	// ShipmentID is the vendor-internal shipment identifier
	ShipmentID string
	// OrderID is the vendor-internal order identifier, when the vendor has
	// a separate order step (needed to cancel stranded two-step creations)
	OrderID string
	// CarrierName is the physical courier assigned by the aggregator
	CarrierName string
	// LabelURL, ManifestURL and InvoiceURL point at vendor-hosted documents
	LabelURL    string
	ManifestURL string
	InvoiceURL  string
	// EstimatedDelivery is the vendor's promised delivery date, when given
	EstimatedDelivery *time.Time
	// InsuranceApplied and InsuranceCost describe insurance, when requested
	InsuranceApplied bool
	InsuranceCost    decimal.Decimal
	// Error carries the vendor error detail when Success is false
	Error string
}

// ---------------------------------------------------------------------------
// TrackingResponse
// ---------------------------------------------------------------------------

// TrackingCheckpoint is one entry in a shipment's ordered scan history.
type TrackingCheckpoint struct {
	Status      ShipmentStatus
	RawStatus   string
	Timestamp   time.Time
	Location    string
	Description string
}

// TrackingResponse is the current state of one shipment as reported by its
// provider. History is ordered oldest first.
type TrackingResponse struct {
	TrackingNumber    string
	Status            ShipmentStatus
	RawStatus         string
	CurrentLocation   string
	EstimatedDelivery *time.Time
	History           []TrackingCheckpoint
	// Extra is the carrier-specific data bag callers may surface verbatim
	Extra map[string]string
}

// ---------------------------------------------------------------------------
// CancellationResponse
// ---------------------------------------------------------------------------

// CancellationResponse is the structured result of a cancellation call.
type CancellationResponse struct {
	Success        bool
	Message        string
	TrackingNumber string
}

// ---------------------------------------------------------------------------
// PickupLocation
// ---------------------------------------------------------------------------

// PickupLocation is a registered origin address a provider ships from,
// distinct from the customer delivery address. It is owned by provider
// configuration and referenced by pincode when building requests.
type PickupLocation struct {
	// ID is the vendor-assigned identifier (opaque, provider-specific)
	ID      string
	Name    string
	Address string
	City    string
	State   string
	Country string
	Pincode string
	Phone   string
	Email   string
	// Default marks the location used when a request does not name one
	Default bool
}
