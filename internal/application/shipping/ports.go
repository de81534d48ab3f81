package shipping

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shopcore/backend/internal/domain/shipping"
)

// Errors for the shipment record store
var (
	ErrShipmentRecordNotFound = errors.New("shipping: shipment record not found")
)

// ShipmentPhase tracks the two-phase creation workflow. A record is written
// in PhasePending before the vendor call and upgraded (or failed) after, so
// a crash between the two steps leaves a visible marker instead of a
// silently stranded vendor-side order.
type ShipmentPhase string

const (
	// PhasePending means the vendor creation call was issued but has not
	// completed
	PhasePending ShipmentPhase = "pending"
	// PhaseCreated means the vendor issued a tracking number
	PhaseCreated ShipmentPhase = "created"
	// PhaseFailed means the vendor rejected the creation; VendorOrderID may
	// still reference a stranded vendor-side order
	PhaseFailed ShipmentPhase = "failed"
	// PhaseCancelled means the shipment was cancelled after creation
	PhaseCancelled ShipmentPhase = "cancelled"
)

// ShipmentRecord is the persisted state of one shipment creation attempt and
// its lifecycle afterwards.
type ShipmentRecord struct {
	ID              uuid.UUID
	OrderID         string
	Provider        shipping.ProviderCode
	ServiceSelector string
	Phase           ShipmentPhase
	// TrackingNumber is set once PhaseCreated is reached
	TrackingNumber string
	// VendorOrderID and VendorShipmentID are the vendor-internal ids, kept
	// even on failure so stranded two-step creations can be reconciled
	VendorOrderID    string
	VendorShipmentID string
	CarrierName      string
	Status           shipping.ShipmentStatus
	Cost             decimal.Decimal
	LabelURL         string
	// LabelArchiveKey is the object-store key of the archived label copy
	LabelArchiveKey string
	FailureReason   string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ShipmentRepository persists shipment records.
type ShipmentRepository interface {
	Save(ctx context.Context, record *ShipmentRecord) error
	Update(ctx context.Context, record *ShipmentRecord) error
	FindByID(ctx context.Context, id uuid.UUID) (*ShipmentRecord, error)
	FindByTrackingNumber(ctx context.Context, trackingNumber string) (*ShipmentRecord, error)
	FindByOrderID(ctx context.Context, orderID string) ([]*ShipmentRecord, error)
	// UpdateStatus records the latest webhook-reported status for the
	// tracking number; unknown tracking numbers are not an error (the
	// vendor may push events for shipments booked outside this system).
	UpdateStatus(ctx context.Context, trackingNumber string, status shipping.ShipmentStatus) error
}

// LabelArchive stores carrier label documents and hands out short-lived
// retrieval URLs.
type LabelArchive interface {
	Store(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	PresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error)
}
