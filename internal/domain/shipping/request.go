package shipping

import (
	"errors"

	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// PaymentMethod
// ---------------------------------------------------------------------------

// PaymentMethod is how the buyer pays for the order being shipped
type PaymentMethod string

const (
	// PaymentMethodCOD is cash on delivery
	PaymentMethodCOD PaymentMethod = "cod"
	// PaymentMethodPrepaid is paid online before shipping
	PaymentMethodPrepaid PaymentMethod = "prepaid"
)

// IsValid returns true if the payment method is valid
func (m PaymentMethod) IsValid() bool {
	return m == PaymentMethodCOD || m == PaymentMethodPrepaid
}

// String returns the string representation of PaymentMethod
func (m PaymentMethod) String() string {
	return string(m)
}

// ---------------------------------------------------------------------------
// ShippingRequest
// ---------------------------------------------------------------------------

// Contact holds the name/address/phone fields shared by the customer and the
// pickup location sides of a shipment.
type Contact struct {
	Name    string
	Phone   string
	Email   string
	Address string
	City    string
	State   string
	Country string
	Pincode string
}

// Dimensions are the package dimensions in centimetres.
type Dimensions struct {
	LengthCM float64
	WidthCM  float64
	HeightCM float64
}

// RequestItem is one order line carried by the shipment.
type RequestItem struct {
	Name     string
	SKU      string
	Quantity int
	Price    decimal.Decimal
	Tax      decimal.Decimal
	Discount decimal.Decimal
	HSNCode  string
}

// InternationalDetails carries the extra fields cross-border shipments need.
type InternationalDetails struct {
	DestinationCountry string
	CustomsValue       decimal.Decimal
	CustomsDescription string
}

// ShippingRequest is the immutable per-call value object describing one
// shipment to be quoted or created. It is constructed fresh for every
// quote/creation attempt and discarded afterwards.
type ShippingRequest struct {
	OrderID        string
	PickupPincode  string
	DeliveryPincode string
	// WeightGrams is the dead weight in grams. Adapters convert to the
	// vendor's unit (Shiprocket wants kilograms).
	WeightGrams   int
	InvoiceValue  decimal.Decimal
	PaymentMethod PaymentMethod
	// CODAmount is collected on delivery; zero for prepaid orders.
	CODAmount decimal.Decimal

	Customer Contact
	Pickup   Contact

	Dimensions    *Dimensions
	International *InternationalDetails
	// WithInsurance requests shipment insurance where the vendor offers it.
	WithInsurance bool

	Items []RequestItem
}

// IsInternational reports whether the request targets a cross-border lane.
func (r *ShippingRequest) IsInternational() bool {
	return r.International != nil && r.International.DestinationCountry != ""
}

// WeightKG returns the dead weight converted to kilograms for vendors that
// quote in kilograms.
func (r *ShippingRequest) WeightKG() float64 {
	return float64(r.WeightGrams) / 1000.0
}

// Validate checks the fields every provider needs before any network call.
func (r *ShippingRequest) Validate() error {
	if r.OrderID == "" {
		return errors.New("shipping: order ID is required")
	}
	if r.PickupPincode == "" || r.DeliveryPincode == "" {
		return errors.New("shipping: pickup and delivery pincodes are required")
	}
	if r.WeightGrams <= 0 {
		return errors.New("shipping: weight must be positive")
	}
	if !r.PaymentMethod.IsValid() {
		return errors.New("shipping: payment method must be cod or prepaid")
	}
	if r.PaymentMethod == PaymentMethodCOD && r.CODAmount.IsNegative() {
		return errors.New("shipping: COD amount cannot be negative")
	}
	if r.IsInternational() && len(r.International.DestinationCountry) != 2 {
		return errors.New("shipping: destination country must be an ISO 3166-1 alpha-2 code")
	}
	return nil
}
