package handler

import (
	"time"

	"github.com/shopcore/backend/internal/domain/shipping"
)

// ---------------------------------------------------------------------------
// Request DTOs
// ---------------------------------------------------------------------------

// ContactRequest represents one side (customer or pickup) of a shipment address
// @Description Contact and address details for one side of a shipment
type ContactRequest struct {
	Name    string `json:"name" binding:"required,max=200" example:"Asha Verma"`
	Phone   string `json:"phone" binding:"required,max=20" example:"9810012345"`
	Email   string `json:"email" binding:"omitempty,email,max=200" example:"asha@example.com"`
	Address string `json:"address" binding:"required,max=500" example:"14 MG Road"`
	City    string `json:"city" binding:"max=100" example:"Bengaluru"`
	State   string `json:"state" binding:"max=100" example:"Karnataka"`
	Country string `json:"country" binding:"max=100" example:"India"`
	Pincode string `json:"pincode" binding:"required,min=4,max=10" example:"560001"`
}

// DimensionsRequest represents package dimensions in centimetres
// @Description Package dimensions in centimetres
type DimensionsRequest struct {
	LengthCM float64 `json:"length_cm" binding:"required,gt=0" example:"30"`
	WidthCM  float64 `json:"width_cm" binding:"required,gt=0" example:"20"`
	HeightCM float64 `json:"height_cm" binding:"required,gt=0" example:"10"`
}

// ShipmentItemRequest represents one order line carried by a shipment
// @Description One order line carried by the shipment
type ShipmentItemRequest struct {
	Name     string  `json:"name" binding:"required,max=200" example:"Ceramic Mug"`
	SKU      string  `json:"sku" binding:"max=100" example:"MUG-CER-01"`
	Quantity int     `json:"quantity" binding:"required,gt=0" example:"2"`
	Price    float64 `json:"price" binding:"min=0" example:"349.00"`
	Tax      float64 `json:"tax" binding:"min=0" example:"62.82"`
	Discount float64 `json:"discount" binding:"min=0" example:"0"`
	HSNCode  string  `json:"hsn_code" binding:"max=20" example:"6912"`
}

// InternationalRequest carries the extra fields cross-border shipments need
// @Description Cross-border shipment details
type InternationalRequest struct {
	DestinationCountry string  `json:"destination_country" binding:"required,len=2" example:"AE"`
	CustomsValue       float64 `json:"customs_value" binding:"min=0" example:"1200.00"`
	CustomsDescription string  `json:"customs_description" binding:"max=500" example:"Ceramic kitchenware"`
}

// ShippingQuoteRequest represents a request to quote or create a shipment
// @Description Shipment details used for rate quotes and shipment creation
type ShippingQuoteRequest struct {
	OrderID         string                `json:"order_id" binding:"required,max=100" example:"ORD-2001"`
	PickupPincode   string                `json:"pickup_pincode" binding:"omitempty,min=4,max=10" example:"110001"`
	DeliveryPincode string                `json:"delivery_pincode" binding:"required,min=4,max=10" example:"560001"`
	WeightGrams     int                   `json:"weight_grams" binding:"required,gt=0" example:"500"`
	InvoiceValue    float64               `json:"invoice_value" binding:"min=0" example:"1200.00"`
	PaymentMethod   string                `json:"payment_method" binding:"required,oneof=cod prepaid" example:"prepaid"`
	CODAmount       float64               `json:"cod_amount" binding:"min=0" example:"0"`
	CartSubtotal    float64               `json:"cart_subtotal" binding:"min=0" example:"1200.00"`
	Customer        ContactRequest        `json:"customer" binding:"required"`
	Pickup          *ContactRequest       `json:"pickup"`
	Dimensions      *DimensionsRequest    `json:"dimensions"`
	International   *InternationalRequest `json:"international"`
	WithInsurance   bool                  `json:"with_insurance" example:"false"`
	Items           []ShipmentItemRequest `json:"items" binding:"omitempty,dive"`
}

// ToDomain converts the DTO into the domain request value object.
// defaultPickupPincode fills the pickup side when the caller omits it.
func (r *ShippingQuoteRequest) ToDomain(defaultPickupPincode string) *shipping.ShippingRequest {
	req := &shipping.ShippingRequest{
		OrderID:         r.OrderID,
		PickupPincode:   r.PickupPincode,
		DeliveryPincode: r.DeliveryPincode,
		WeightGrams:     r.WeightGrams,
		InvoiceValue:    toDecimal(r.InvoiceValue),
		PaymentMethod:   shipping.PaymentMethod(r.PaymentMethod),
		CODAmount:       toDecimal(r.CODAmount),
		Customer:        toDomainContact(r.Customer),
		WithInsurance:   r.WithInsurance,
	}
	if r.Pickup != nil {
		req.Pickup = toDomainContact(*r.Pickup)
		if req.PickupPincode == "" {
			req.PickupPincode = req.Pickup.Pincode
		}
	}
	if req.PickupPincode == "" {
		req.PickupPincode = defaultPickupPincode
	}
	if req.Pickup.Pincode == "" {
		req.Pickup.Pincode = req.PickupPincode
	}
	if r.Dimensions != nil {
		req.Dimensions = &shipping.Dimensions{
			LengthCM: r.Dimensions.LengthCM,
			WidthCM:  r.Dimensions.WidthCM,
			HeightCM: r.Dimensions.HeightCM,
		}
	}
	if r.International != nil {
		req.International = &shipping.InternationalDetails{
			DestinationCountry: r.International.DestinationCountry,
			CustomsValue:       toDecimal(r.International.CustomsValue),
			CustomsDescription: r.International.CustomsDescription,
		}
	}
	for _, item := range r.Items {
		req.Items = append(req.Items, shipping.RequestItem{
			Name:     item.Name,
			SKU:      item.SKU,
			Quantity: item.Quantity,
			Price:    toDecimal(item.Price),
			Tax:      toDecimal(item.Tax),
			Discount: toDecimal(item.Discount),
			HSNCode:  item.HSNCode,
		})
	}
	return req
}

func toDomainContact(c ContactRequest) shipping.Contact {
	return shipping.Contact{
		Name:    c.Name,
		Phone:   c.Phone,
		Email:   c.Email,
		Address: c.Address,
		City:    c.City,
		State:   c.State,
		Country: c.Country,
		Pincode: c.Pincode,
	}
}

// CreateShipmentRequest represents a request to create a shipment with a
// chosen provider
// @Description Request body for creating a shipment
type CreateShipmentRequest struct {
	Provider        string               `json:"provider" binding:"required,oneof=shiprocket delhivery xpressbees" example:"delhivery"`
	ServiceSelector string               `json:"service_selector" binding:"max=100" example:"19"`
	Shipment        ShippingQuoteRequest `json:"shipment" binding:"required"`
}

// CreateReturnShipmentRequest represents a request to create a reverse shipment
// @Description Request body for creating a return shipment
type CreateReturnShipmentRequest struct {
	Shipment ShippingQuoteRequest `json:"shipment" binding:"required"`
}

// CreatePickupLocationRequest represents a request to register a pickup location
// @Description Request body for registering a provider pickup location
type CreatePickupLocationRequest struct {
	Name    string `json:"name" binding:"required,max=200" example:"Main Warehouse"`
	Address string `json:"address" binding:"required,max=500" example:"Plot 7, Okhla Phase III"`
	City    string `json:"city" binding:"required,max=100" example:"New Delhi"`
	State   string `json:"state" binding:"max=100" example:"Delhi"`
	Country string `json:"country" binding:"max=100" example:"India"`
	Pincode string `json:"pincode" binding:"required,min=4,max=10" example:"110020"`
	Phone   string `json:"phone" binding:"required,max=20" example:"9810012345"`
	Email   string `json:"email" binding:"omitempty,email,max=200" example:"warehouse@example.com"`
	Default bool   `json:"default" example:"true"`
}

// ProviderConfigRequest represents one provider entry in a registry reload
// @Description Provider configuration used to rebuild the registry
type ProviderConfigRequest struct {
	Code        string            `json:"code" binding:"required,oneof=shiprocket delhivery xpressbees" example:"shiprocket"`
	Name        string            `json:"name" binding:"max=100" example:"Shiprocket"`
	Enabled     bool              `json:"enabled" example:"true"`
	Priority    int               `json:"priority" binding:"min=0" example:"1"`
	Credentials map[string]string `json:"credentials"`
	WebhookURL  string            `json:"webhook_url" binding:"omitempty,url" example:"https://shop.example.com/api/v1/webhooks/shipping/shiprocket"`
}

// ReloadProvidersRequest represents a request to rebuild the provider registry
// @Description Request body for reinitializing the provider registry
type ReloadProvidersRequest struct {
	Providers []ProviderConfigRequest `json:"providers" binding:"required,min=1,dive"`
	Settings  *SelectionSettingsRequest `json:"settings"`
}

// SelectionSettingsRequest represents rate-selection settings
// @Description Rate selection settings applied alongside a registry reload
type SelectionSettingsRequest struct {
	Strategy              string  `json:"strategy" binding:"required,oneof=priority cheapest fastest" example:"cheapest"`
	DefaultProvider       string  `json:"default_provider" binding:"omitempty,oneof=shiprocket delhivery xpressbees" example:"shiprocket"`
	FreeShippingThreshold float64 `json:"free_shipping_threshold" binding:"min=0" example:"500.00"`
	FallbackMethodName    string  `json:"fallback_method_name" binding:"max=100" example:"Standard Shipping"`
	FallbackCost          float64 `json:"fallback_cost" binding:"min=0" example:"90.00"`
	DefaultPickupPincode  string  `json:"default_pickup_pincode" binding:"omitempty,min=4,max=10" example:"110001"`
}

// ToDomain converts reload settings into domain selection settings.
func (r *SelectionSettingsRequest) ToDomain() shipping.Settings {
	return shipping.Settings{
		Strategy:              shipping.SelectionStrategy(r.Strategy),
		DefaultProvider:       shipping.ProviderCode(r.DefaultProvider),
		FreeShippingThreshold: toDecimal(r.FreeShippingThreshold),
		FallbackMethodName:    r.FallbackMethodName,
		FallbackCost:          toDecimal(r.FallbackCost),
		DefaultPickupPincode:  r.DefaultPickupPincode,
	}
}

// ---------------------------------------------------------------------------
// Response DTOs
// ---------------------------------------------------------------------------

// RateResponse represents one quoted shipping option
// @Description One shipping option quoted by a provider
type RateResponse struct {
	Provider              string  `json:"provider" example:"delhivery"`
	CarrierName           string  `json:"carrier_name" example:"Delhivery Surface"`
	ServiceSelector       string  `json:"service_selector" example:"Surface"`
	Cost                  float64 `json:"cost" example:"60.00"`
	Currency              string  `json:"currency" example:"INR"`
	EstimatedDeliveryDays int     `json:"estimated_delivery_days" example:"3"`
	InsuranceAvailable    bool    `json:"insurance_available" example:"false"`
	InsuranceCost         float64 `json:"insurance_cost,omitempty" example:"0"`
	International         bool    `json:"international" example:"false"`
}

// RateDiagnosticResponse explains why a provider returned no usable rates
// @Description Outcome of one provider's quote attempt
type RateDiagnosticResponse struct {
	Provider string `json:"provider" example:"xpressbees"`
	Outcome  string `json:"outcome" example:"unserviceable" enums:"ok,unserviceable,auth_failed,unreachable,invalid_response,unsupported"`
	Message  string `json:"message,omitempty" example:"pincode 999999 is not serviceable"`
}

// SelectedOptionResponse represents the option chosen by the selection engine
// @Description The shipping option the selection strategy chose
type SelectedOptionResponse struct {
	Provider            string        `json:"provider" example:"delhivery"`
	MethodName          string        `json:"method_name" example:"Delhivery Surface"`
	FinalCost           float64       `json:"final_cost" example:"0"`
	FreeShippingApplied bool          `json:"free_shipping_applied" example:"true"`
	Fallback            bool          `json:"fallback" example:"false"`
	Rate                *RateResponse `json:"rate,omitempty"`
}

// AggregateRatesResponse represents the full quote across all enabled providers
// @Description Aggregated quotes, per-provider diagnostics, and the selected option
type AggregateRatesResponse struct {
	Rates       []RateResponse           `json:"rates"`
	Diagnostics []RateDiagnosticResponse `json:"diagnostics,omitempty"`
	Selected    SelectedOptionResponse   `json:"selected"`
}

// ProviderRatesResponse represents a single provider's quote with its diagnostic
// @Description One provider's quotes and diagnostic
type ProviderRatesResponse struct {
	Provider   string                 `json:"provider" example:"shiprocket"`
	Rates      []RateResponse         `json:"rates"`
	Diagnostic RateDiagnosticResponse `json:"diagnostic"`
}

// ShipmentResponse represents the result of a shipment creation call
// @Description Result of creating a shipment or return shipment
type ShipmentResponse struct {
	Success           bool    `json:"success" example:"true"`
	Message           string  `json:"message,omitempty" example:"shipment created"`
	TrackingNumber    string  `json:"tracking_number,omitempty" example:"AWB900100"`
	ShipmentID        string  `json:"shipment_id,omitempty" example:"SHP-1042"`
	OrderID           string  `json:"order_id,omitempty" example:"777"`
	CarrierName       string  `json:"carrier_name,omitempty" example:"Delhivery Surface"`
	LabelURL          string  `json:"label_url,omitempty" example:"https://vendor.example.com/labels/AWB900100.pdf"`
	ManifestURL       string  `json:"manifest_url,omitempty"`
	InvoiceURL        string  `json:"invoice_url,omitempty"`
	EstimatedDelivery string  `json:"estimated_delivery,omitempty" example:"2026-09-03T00:00:00Z"`
	InsuranceApplied  bool    `json:"insurance_applied,omitempty"`
	InsuranceCost     float64 `json:"insurance_cost,omitempty"`
	Error             string  `json:"error,omitempty"`
}

// TrackingCheckpointResponse represents one scan in a shipment's history
// @Description One checkpoint in the shipment scan history
type TrackingCheckpointResponse struct {
	Status      string `json:"status" example:"IN_TRANSIT"`
	RawStatus   string `json:"raw_status,omitempty" example:"In Transit - Hub Scan"`
	Timestamp   string `json:"timestamp" example:"2026-08-29T08:15:00Z"`
	Location    string `json:"location,omitempty" example:"Gurugram_Bilaspur_GW"`
	Description string `json:"description,omitempty"`
}

// TrackingResponse represents the current tracking state of a shipment
// @Description Current shipment status as reported by the provider
type TrackingResponse struct {
	TrackingNumber    string                       `json:"tracking_number" example:"AWB900100"`
	Status            string                       `json:"status" example:"IN_TRANSIT"`
	RawStatus         string                       `json:"raw_status,omitempty"`
	CurrentLocation   string                       `json:"current_location,omitempty"`
	EstimatedDelivery string                       `json:"estimated_delivery,omitempty"`
	History           []TrackingCheckpointResponse `json:"history,omitempty"`
}

// CancellationResponse represents the result of a cancellation call
// @Description Result of a shipment cancellation request
type CancellationResponse struct {
	Success        bool   `json:"success" example:"true"`
	Message        string `json:"message,omitempty" example:"cancellation accepted"`
	TrackingNumber string `json:"tracking_number" example:"AWB900100"`
}

// LabelResponse carries a time-limited URL for an archived label document
// @Description Presigned URL for an archived shipping label
type LabelResponse struct {
	TrackingNumber string `json:"tracking_number" example:"AWB900100"`
	URL            string `json:"url" example:"https://labels.example.com/labels/AWB900100.pdf?X-Amz-Signature=..."`
}

// PickupLocationResponse represents a registered pickup location
// @Description A pickup location registered with a provider
type PickupLocationResponse struct {
	ID      string `json:"id" example:"loc_81"`
	Name    string `json:"name" example:"Main Warehouse"`
	Address string `json:"address" example:"Plot 7, Okhla Phase III"`
	City    string `json:"city" example:"New Delhi"`
	State   string `json:"state" example:"Delhi"`
	Country string `json:"country" example:"India"`
	Pincode string `json:"pincode" example:"110020"`
	Phone   string `json:"phone" example:"9810012345"`
	Email   string `json:"email,omitempty"`
	Default bool   `json:"default" example:"true"`
}

// ReloadProvidersResponse reports the registry state after a reload
// @Description Enabled providers after a registry reload
type ReloadProvidersResponse struct {
	EnabledProviders []string `json:"enabled_providers" example:"shiprocket,delhivery"`
}

// WebhookAckResponse acknowledges receipt of a carrier webhook
// @Description Acknowledgement returned to the carrier for a webhook delivery
type WebhookAckResponse struct {
	Received       bool   `json:"received" example:"true"`
	EventID        string `json:"event_id,omitempty" example:"evt_20260829_01"`
	TrackingNumber string `json:"tracking_number,omitempty" example:"AWB900100"`
	Status         string `json:"status,omitempty" example:"DELIVERED"`
	Message        string `json:"message,omitempty"`
}

// ---------------------------------------------------------------------------
// Converters
// ---------------------------------------------------------------------------

func toRateResponse(rate shipping.ShippingRate) RateResponse {
	return RateResponse{
		Provider:              rate.Provider.String(),
		CarrierName:           rate.CarrierName,
		ServiceSelector:       rate.ServiceSelector,
		Cost:                  rate.Cost.InexactFloat64(),
		Currency:              rate.Currency,
		EstimatedDeliveryDays: rate.EstimatedDeliveryDays,
		InsuranceAvailable:    rate.InsuranceAvailable,
		InsuranceCost:         rate.InsuranceCost.InexactFloat64(),
		International:         rate.International,
	}
}

func toDiagnosticResponse(diag shipping.RateDiagnostic) RateDiagnosticResponse {
	return RateDiagnosticResponse{
		Provider: diag.Provider.String(),
		Outcome:  string(diag.Outcome),
		Message:  diag.Message,
	}
}

func toSelectedOptionResponse(option shipping.SelectedOption) SelectedOptionResponse {
	resp := SelectedOptionResponse{
		Provider:            option.Provider.String(),
		MethodName:          option.MethodName,
		FinalCost:           option.FinalCost.InexactFloat64(),
		FreeShippingApplied: option.FreeShippingApplied,
		Fallback:            option.Fallback,
	}
	if option.Rate != nil {
		rate := toRateResponse(*option.Rate)
		resp.Rate = &rate
	}
	return resp
}

func toShipmentResponse(result *shipping.ShipmentResponse) ShipmentResponse {
	resp := ShipmentResponse{
		Success:          result.Success,
		Message:          result.Message,
		TrackingNumber:   result.TrackingNumber,
		ShipmentID:       result.ShipmentID,
		OrderID:          result.OrderID,
		CarrierName:      result.CarrierName,
		LabelURL:         result.LabelURL,
		ManifestURL:      result.ManifestURL,
		InvoiceURL:       result.InvoiceURL,
		InsuranceApplied: result.InsuranceApplied,
		InsuranceCost:    result.InsuranceCost.InexactFloat64(),
		Error:            result.Error,
	}
	if result.EstimatedDelivery != nil {
		resp.EstimatedDelivery = result.EstimatedDelivery.Format(time.RFC3339)
	}
	return resp
}

func toTrackingResponse(result *shipping.TrackingResponse) TrackingResponse {
	resp := TrackingResponse{
		TrackingNumber:  result.TrackingNumber,
		Status:          result.Status.String(),
		RawStatus:       result.RawStatus,
		CurrentLocation: result.CurrentLocation,
	}
	if result.EstimatedDelivery != nil {
		resp.EstimatedDelivery = result.EstimatedDelivery.Format(time.RFC3339)
	}
	for _, cp := range result.History {
		resp.History = append(resp.History, TrackingCheckpointResponse{
			Status:      cp.Status.String(),
			RawStatus:   cp.RawStatus,
			Timestamp:   cp.Timestamp.Format(time.RFC3339),
			Location:    cp.Location,
			Description: cp.Description,
		})
	}
	return resp
}

func toPickupLocationResponse(loc shipping.PickupLocation) PickupLocationResponse {
	return PickupLocationResponse{
		ID:      loc.ID,
		Name:    loc.Name,
		Address: loc.Address,
		City:    loc.City,
		State:   loc.State,
		Country: loc.Country,
		Pincode: loc.Pincode,
		Phone:   loc.Phone,
		Email:   loc.Email,
		Default: loc.Default,
	}
}
