package shipping

import (
	"fmt"
	"time"
)

// ---------------------------------------------------------------------------
// ShipmentStatus — the shared status taxonomy
// ---------------------------------------------------------------------------

// ShipmentStatus is the shared vocabulary every vendor status maps onto.
type ShipmentStatus string

const (
	// StatusPending means the shipment is booked but not yet picked up
	StatusPending ShipmentStatus = "PENDING"
	// StatusPickedUp means the courier collected the package
	StatusPickedUp ShipmentStatus = "PICKED_UP"
	// StatusInTransit means the package is moving through the network
	StatusInTransit ShipmentStatus = "IN_TRANSIT"
	// StatusOutForDelivery means the package is on the last-mile vehicle
	StatusOutForDelivery ShipmentStatus = "OUT_FOR_DELIVERY"
	// StatusDelivered means the package reached the customer
	StatusDelivered ShipmentStatus = "DELIVERED"
	// StatusNDR means a delivery attempt failed (non-delivery report)
	StatusNDR ShipmentStatus = "NDR"
	// StatusRTOInitiated means the package is being returned to origin
	StatusRTOInitiated ShipmentStatus = "RTO_INITIATED"
	// StatusRTODelivered means the return-to-origin completed
	StatusRTODelivered ShipmentStatus = "RTO_DELIVERED"
	// StatusCancelled means the shipment was cancelled
	StatusCancelled ShipmentStatus = "CANCELLED"
	// StatusLost means the vendor declared the package lost or damaged
	StatusLost ShipmentStatus = "LOST"
	// StatusUnknown is the mapping target for vendor statuses outside the
	// shared vocabulary
	StatusUnknown ShipmentStatus = "UNKNOWN"
)

// IsValid returns true if the status belongs to the shared vocabulary
func (s ShipmentStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusPickedUp, StatusInTransit, StatusOutForDelivery,
		StatusDelivered, StatusNDR, StatusRTOInitiated, StatusRTODelivered,
		StatusCancelled, StatusLost, StatusUnknown:
		return true
	default:
		return false
	}
}

// String returns the string representation of ShipmentStatus
func (s ShipmentStatus) String() string {
	return string(s)
}

// IsFinal returns true for terminal states
func (s ShipmentStatus) IsFinal() bool {
	switch s {
	case StatusDelivered, StatusRTODelivered, StatusCancelled, StatusLost:
		return true
	default:
		return false
	}
}

// ---------------------------------------------------------------------------
// WebhookEvent
// ---------------------------------------------------------------------------

// WebhookEvent is one vendor notification normalized onto the shared
// taxonomy. Vendor-specific field names never escape the adapter that
// produced the event.
type WebhookEvent struct {
	// Provider is the adapter that decoded the event
	Provider ProviderCode
	// EventID is the vendor event identifier, when the vendor sends one;
	// adapters synthesize a stable one from the payload otherwise
	EventID string
	// TrackingNumber is the AWB the event refers to
	TrackingNumber string
	// Status is the normalized shipment status
	Status ShipmentStatus
	// RawStatus is the vendor's own status string, kept for audit
	RawStatus string
	// Location and Description come from the vendor scan, when present
	Location    string
	Description string
	// OccurredAt is the vendor-reported event time
	OccurredAt time.Time
	// NDRReason is set for non-delivery reports
	NDRReason string
	// Attempt is the vendor's delivery attempt count for NDR events, when known
	Attempt int
}

// IdempotencyKey derives the dedup key recorded before any side effect is
// executed, so a redelivered vendor event cannot double-apply (notably, it
// cannot issue a second automatic re-attempt for the same NDR occurrence).
func (e *WebhookEvent) IdempotencyKey() string {
	return fmt.Sprintf("%s:%s:%s:%s", e.Provider, e.EventID, e.TrackingNumber, e.Status)
}

// IsNDR reports whether the event is a non-delivery report.
func (e *WebhookEvent) IsNDR() bool {
	return e.Status == StatusNDR
}
