package carrier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/shopcore/backend/internal/domain/shipping"
	"github.com/shopcore/backend/internal/infrastructure/httpclient"
)

const delhiveryTimeLayout = "2006-01-02T15:04:05.000000"

// Delhivery ships either surface or express; the mode string doubles as the
// service selector carried in rates.
const (
	delhiveryModeSurface = "S"
	delhiveryModeExpress = "E"
)

// DelhiveryAdapter implements shipping.CarrierProvider for Delhivery.
// Delhivery authenticates with a static token header, quotes in grams and
// books shipments in a single call. No international support.
type DelhiveryAdapter struct {
	config *DelhiveryConfig
	client *httpclient.Client
	logger *zap.Logger
}

// NewDelhiveryAdapter creates a new Delhivery adapter with the given configuration
func NewDelhiveryAdapter(config *DelhiveryConfig, client *httpclient.Client, logger *zap.Logger) (*DelhiveryAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if client == nil {
		client = httpclient.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DelhiveryAdapter{
		config: config,
		client: client,
		logger: logger.With(zap.String("provider", shipping.ProviderCodeDelhivery.String())),
	}, nil
}

// Code returns the provider code this adapter handles
func (a *DelhiveryAdapter) Code() shipping.ProviderCode {
	return shipping.ProviderCodeDelhivery
}

// IsConfigured returns true iff all required credential fields are non-empty
func (a *DelhiveryAdapter) IsConfigured() bool {
	return a.config.IsComplete()
}

// SupportsInternationalShipping reports the international capability flag;
// Delhivery is domestic only.
func (a *DelhiveryAdapter) SupportsInternationalShipping() bool {
	return false
}

// do performs one HTTP exchange with the static token header.
func (a *DelhiveryAdapter) do(ctx context.Context, method, path string, body []byte, contentType string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, method, a.config.APIBaseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, 0, fmt.Errorf("delhivery: build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Token "+a.config.APIKey)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", shipping.ErrProviderUnavailable, err)
	}
	respBody, err := httpclient.ReadBody(resp)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return respBody, resp.StatusCode, nil
}

// ---------------------------------------------------------------------------
// Rate Quoting
// ---------------------------------------------------------------------------

// GetRates checks pincode serviceability and quotes surface and express
// invoice charges. Delhivery wants the chargeable weight in grams.
func (a *DelhiveryAdapter) GetRates(ctx context.Context, req *shipping.ShippingRequest) ([]shipping.ShippingRate, shipping.RateDiagnostic) {
	diag := shipping.RateDiagnostic{Provider: a.Code()}

	serviceable, err := a.checkServiceability(ctx, req)
	if err != nil {
		diag.Outcome = classifyTransportError(err)
		diag.Err = err
		return nil, diag
	}
	if !serviceable {
		diag.Outcome = shipping.RateOutcomeUnserviceable
		diag.Message = "delivery pincode not serviceable"
		return nil, diag
	}

	modes := []struct {
		mode        string
		serviceName string
		etdDays     int
	}{
		{delhiveryModeSurface, "Delhivery Surface", 5},
		{delhiveryModeExpress, "Delhivery Express", 2},
	}

	rates := make([]shipping.ShippingRate, 0, len(modes))
	for _, m := range modes {
		charge, err := a.invoiceCharge(ctx, req, m.mode)
		if err != nil {
			a.logger.Debug("invoice charge lookup failed",
				zap.String("mode", m.mode), zap.Error(err))
			continue
		}
		rates = append(rates, shipping.ShippingRate{
			Provider:              a.Code(),
			CarrierName:           m.serviceName,
			ServiceSelector:       m.mode,
			Cost:                  charge,
			Currency:              "INR",
			EstimatedDeliveryDays: m.etdDays,
			Available:             true,
		})
	}
	if len(rates) == 0 {
		diag.Outcome = shipping.RateOutcomeUnserviceable
		return nil, diag
	}

	diag.Outcome = shipping.RateOutcomeOK
	return rates, diag
}

// GetInternationalRates is not offered by Delhivery.
func (a *DelhiveryAdapter) GetInternationalRates(_ context.Context, _ *shipping.ShippingRequest) ([]shipping.ShippingRate, shipping.RateDiagnostic) {
	return nil, shipping.RateDiagnostic{
		Provider: a.Code(),
		Outcome:  shipping.RateOutcomeUnsupported,
		Err:      shipping.ErrInternationalNotSupported,
	}
}

// checkServiceability queries the pincode directory for the delivery pin.
func (a *DelhiveryAdapter) checkServiceability(ctx context.Context, req *shipping.ShippingRequest) (bool, error) {
	respBody, status, err := a.do(ctx, http.MethodGet,
		"/c/api/pin-codes/json/?filter_codes="+url.QueryEscape(req.DeliveryPincode), nil, "")
	if err != nil {
		return false, err
	}
	if status >= 400 {
		return false, fmt.Errorf("%w: pincode lookup HTTP %d", shipping.ErrProviderRequestFailed, status)
	}

	var resp delhiveryPincodeResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return false, fmt.Errorf("%w: %v", shipping.ErrProviderInvalidResponse, err)
	}
	for _, code := range resp.DeliveryCodes {
		if req.PaymentMethod == shipping.PaymentMethodCOD {
			if code.PostalCode.COD == "Y" {
				return true, nil
			}
			continue
		}
		if code.PostalCode.PrePaid == "Y" {
			return true, nil
		}
	}
	return false, nil
}

// invoiceCharge quotes the freight charge for one mode.
func (a *DelhiveryAdapter) invoiceCharge(ctx context.Context, req *shipping.ShippingRequest, mode string) (decimal.Decimal, error) {
	params := url.Values{}
	params.Set("md", mode)
	params.Set("ss", "Delivered")
	params.Set("o_pin", req.PickupPincode)
	params.Set("d_pin", req.DeliveryPincode)
	params.Set("cgm", strconv.Itoa(req.WeightGrams))
	if req.PaymentMethod == shipping.PaymentMethodCOD {
		params.Set("pt", "COD")
		params.Set("cod", req.CODAmount.String())
	} else {
		params.Set("pt", "Pre-paid")
	}

	respBody, status, err := a.do(ctx, http.MethodGet, "/api/kinko/v1/invoice/charges/.json?"+params.Encode(), nil, "")
	if err != nil {
		return decimal.Zero, err
	}
	if status >= 400 {
		return decimal.Zero, fmt.Errorf("%w: charges HTTP %d", shipping.ErrProviderRequestFailed, status)
	}

	var entries []delhiveryChargeEntry
	if err := json.Unmarshal(respBody, &entries); err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", shipping.ErrProviderInvalidResponse, err)
	}
	if len(entries) == 0 {
		return decimal.Zero, fmt.Errorf("%w: empty charge list", shipping.ErrProviderInvalidResponse)
	}
	return decimal.NewFromFloat(entries[0].TotalAmount), nil
}

// ---------------------------------------------------------------------------
// Shipment Lifecycle
// ---------------------------------------------------------------------------

// CreateShipment books a waybill in one call. The vendor wants the JSON
// document wrapped in a form field.
func (a *DelhiveryAdapter) CreateShipment(ctx context.Context, req *shipping.ShippingRequest, _ string) (*shipping.ShipmentResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return a.createPackage(ctx, req, "")
}

// CreateReturnShipment books a reverse pickup referencing the original waybill.
func (a *DelhiveryAdapter) CreateReturnShipment(ctx context.Context, originalTrackingNumber string, req *shipping.ShippingRequest) (*shipping.ShipmentResponse, error) {
	if originalTrackingNumber == "" {
		return nil, shipping.ErrTrackingNumberRequired
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return a.createPackage(ctx, req, originalTrackingNumber)
}

func (a *DelhiveryAdapter) createPackage(ctx context.Context, req *shipping.ShippingRequest, returnOf string) (*shipping.ShipmentResponse, error) {
	shipment := delhiveryShipment{
		Name:        req.Customer.Name,
		Address:     req.Customer.Address,
		Pin:         req.DeliveryPincode,
		City:        req.Customer.City,
		State:       req.Customer.State,
		Country:     orDefault(req.Customer.Country, "India"),
		Phone:       req.Customer.Phone,
		OrderID:     req.OrderID,
		PaymentMode: delhiveryPaymentMode(req.PaymentMethod, returnOf != ""),
		TotalAmount: req.InvoiceValue.String(),
		WeightGrams: strconv.Itoa(req.WeightGrams),
		SellerName:  a.config.ClientName,
	}
	if req.PaymentMethod == shipping.PaymentMethodCOD && returnOf == "" {
		shipment.CODAmount = req.CODAmount.String()
	}
	if req.Dimensions != nil {
		shipment.ShipmentLength = strconv.FormatFloat(req.Dimensions.LengthCM, 'f', 1, 64)
		shipment.ShipmentWidth = strconv.FormatFloat(req.Dimensions.WidthCM, 'f', 1, 64)
		shipment.ShipmentHeight = strconv.FormatFloat(req.Dimensions.HeightCM, 'f', 1, 64)
	}
	if len(req.Items) > 0 {
		names := make([]string, 0, len(req.Items))
		for _, item := range req.Items {
			names = append(names, item.Name)
		}
		shipment.ProductsDesc = strings.Join(names, ", ")
	}

	pickupName := req.Pickup.Name
	if pickupName == "" {
		pickupName = a.config.PickupLocationName
	}
	payload := delhiveryCreatePayload{
		Shipments:      []delhiveryShipment{shipment},
		PickupLocation: delhiveryPickupLocationRef{Name: pickupName},
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("delhivery: marshal create: %w", err)
	}

	form := url.Values{}
	form.Set("format", "json")
	form.Set("data", string(data))
	respBody, status, err := a.do(ctx, http.MethodPost, "/api/cmu/create.json",
		[]byte(form.Encode()), "application/x-www-form-urlencoded")
	if err != nil {
		return nil, err
	}

	var resp delhiveryCreateResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", shipping.ErrProviderInvalidResponse, err)
	}
	if status >= 400 || !resp.Success || len(resp.Packages) == 0 {
		msg := resp.RMK
		if msg == "" && len(resp.Packages) > 0 {
			msg = resp.Packages[0].Remarks
		}
		return &shipping.ShipmentResponse{
			Success: false,
			Message: msg,
			Error:   msg,
		}, nil
	}

	pkg := resp.Packages[0]
	return &shipping.ShipmentResponse{
		Success:        true,
		Message:        "shipment created",
		TrackingNumber: pkg.Waybill,
		ShipmentID:     pkg.RefNum,
		CarrierName:    "Delhivery",
	}, nil
}

// TrackShipment maps the vendor scan history onto the shared shape.
func (a *DelhiveryAdapter) TrackShipment(ctx context.Context, trackingNumber string) (*shipping.TrackingResponse, error) {
	if trackingNumber == "" {
		return nil, shipping.ErrTrackingNumberRequired
	}

	respBody, status, err := a.do(ctx, http.MethodGet,
		"/api/v1/packages/json/?waybill="+url.QueryEscape(trackingNumber), nil, "")
	if err != nil {
		return nil, err
	}

	var resp delhiveryTrackResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", shipping.ErrProviderInvalidResponse, err)
	}
	if status >= 400 || len(resp.ShipmentData) == 0 {
		msg := resp.Error
		if msg == "" {
			msg = fmt.Sprintf("HTTP %d", status)
		}
		return nil, fmt.Errorf("%w: %s", shipping.ErrShipmentNotFound, msg)
	}

	sh := resp.ShipmentData[0].Shipment
	result := &shipping.TrackingResponse{
		TrackingNumber:  trackingNumber,
		Status:          mapDelhiveryStatus(sh.Status.Status),
		RawStatus:       sh.Status.Status,
		CurrentLocation: sh.Status.StatusLocation,
		Extra: map[string]string{
			"instructions": sh.Status.Instructions,
		},
	}
	if edd := parseDelhiveryTime(sh.ExpectedDeliveryDate); edd != nil {
		result.EstimatedDelivery = edd
	}

	// Scans arrive oldest first already.
	for _, scan := range sh.Scans {
		d := scan.ScanDetail
		checkpoint := shipping.TrackingCheckpoint{
			Status:      mapDelhiveryStatus(d.Scan),
			RawStatus:   d.Scan,
			Location:    d.ScannedLocation,
			Description: d.Instructions,
		}
		if ts := parseDelhiveryTime(d.ScanDateTime); ts != nil {
			checkpoint.Timestamp = *ts
		}
		result.History = append(result.History, checkpoint)
	}

	return result, nil
}

// CancelShipment cancels the waybill via the package edit call; Delhivery
// cancels directly by waybill, no order-id resolution needed.
func (a *DelhiveryAdapter) CancelShipment(ctx context.Context, trackingNumber string) (*shipping.CancellationResponse, error) {
	if trackingNumber == "" {
		return nil, shipping.ErrTrackingNumberRequired
	}

	body, err := json.Marshal(delhiveryEditRequest{Waybill: trackingNumber, Cancellation: "true"})
	if err != nil {
		return nil, fmt.Errorf("delhivery: marshal cancel: %w", err)
	}
	respBody, status, err := a.do(ctx, http.MethodPost, "/api/p/edit", body, "application/json")
	if err != nil {
		return nil, err
	}

	var resp delhiveryEditResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", shipping.ErrProviderInvalidResponse, err)
	}

	return &shipping.CancellationResponse{
		Success:        status < 400 && resp.Status,
		Message:        resp.Remark,
		TrackingNumber: trackingNumber,
	}, nil
}

// ---------------------------------------------------------------------------
// Pickup Locations
// ---------------------------------------------------------------------------

// GetPickupLocations lists the registered client warehouses.
func (a *DelhiveryAdapter) GetPickupLocations(ctx context.Context) ([]shipping.PickupLocation, error) {
	respBody, status, err := a.do(ctx, http.MethodGet, "/api/backend/clientwarehouse/json/", nil, "")
	if err != nil {
		return nil, err
	}
	if status >= 400 {
		return nil, fmt.Errorf("%w: warehouse list HTTP %d", shipping.ErrProviderRequestFailed, status)
	}

	var resp delhiveryWarehouseListResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", shipping.ErrProviderInvalidResponse, err)
	}

	locations := make([]shipping.PickupLocation, 0, len(resp.Data))
	for _, wh := range resp.Data {
		locations = append(locations, shipping.PickupLocation{
			ID:      wh.Name,
			Name:    wh.Name,
			Address: wh.Address,
			City:    wh.City,
			State:   wh.State,
			Country: "India",
			Pincode: wh.Pin,
			Phone:   wh.Phone,
			Email:   wh.Email,
			Default: wh.Name == a.config.PickupLocationName,
		})
	}
	return locations, nil
}

// CreatePickupLocation registers a new client warehouse. Delhivery keys
// warehouses by name, so the name doubles as the identifier.
func (a *DelhiveryAdapter) CreatePickupLocation(ctx context.Context, loc *shipping.PickupLocation) (*shipping.PickupLocation, error) {
	body, err := json.Marshal(delhiveryWarehouseRequest{
		Name:    loc.Name,
		Email:   loc.Email,
		Phone:   loc.Phone,
		Address: loc.Address,
		City:    loc.City,
		State:   loc.State,
		Country: orDefault(loc.Country, "India"),
		Pin:     loc.Pincode,
	})
	if err != nil {
		return nil, fmt.Errorf("delhivery: marshal warehouse: %w", err)
	}

	respBody, status, err := a.do(ctx, http.MethodPost, "/api/backend/clientwarehouse/create.json", body, "application/json")
	if err != nil {
		return nil, err
	}

	var resp delhiveryWarehouseResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", shipping.ErrProviderInvalidResponse, err)
	}
	if status >= 400 || !resp.Success {
		return nil, fmt.Errorf("%w: %s", shipping.ErrProviderRequestFailed, resp.Error)
	}

	created := *loc
	created.ID = resp.Data.Name
	return &created, nil
}

// ---------------------------------------------------------------------------
// Webhooks
// ---------------------------------------------------------------------------

// ParseWebhookEvent decodes a Delhivery scan push. Delhivery has no payload
// signature; the route is gated by the shared secret in the push URL.
func (a *DelhiveryAdapter) ParseWebhookEvent(payload []byte) (*shipping.WebhookEvent, error) {
	var p delhiveryWebhookPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", shipping.ErrWebhookInvalidPayload, err)
	}
	if p.Shipment.AWB == "" {
		return nil, fmt.Errorf("%w: missing awb", shipping.ErrWebhookInvalidPayload)
	}

	st := p.Shipment.Status
	event := &shipping.WebhookEvent{
		Provider:       shipping.ProviderCodeDelhivery,
		EventID:        fmt.Sprintf("%s-%s-%s", p.Shipment.AWB, st.Status, st.StatusDateTime),
		TrackingNumber: p.Shipment.AWB,
		Status:         mapDelhiveryStatus(st.Status),
		RawStatus:      st.Status,
		Location:       st.StatusLocation,
		Description:    st.Instructions,
	}
	if st.StatusType == "UD" && event.Status != shipping.StatusDelivered {
		event.Status = shipping.StatusNDR
		event.NDRReason = st.Instructions
	}
	if ts := parseDelhiveryTime(st.StatusDateTime); ts != nil {
		event.OccurredAt = *ts
	}
	return event, nil
}

// ProcessWebhookEvent is a no-op: Delhivery offers no NDR remediation API.
func (a *DelhiveryAdapter) ProcessWebhookEvent(_ context.Context, _ *shipping.WebhookEvent) error {
	return nil
}

// ---------------------------------------------------------------------------
// Status Mapping
// ---------------------------------------------------------------------------

// mapDelhiveryStatus maps the vendor status vocabulary onto the shared taxonomy.
func mapDelhiveryStatus(status string) shipping.ShipmentStatus {
	switch strings.ToUpper(strings.TrimSpace(status)) {
	case "MANIFESTED", "NOT PICKED", "OPEN":
		return shipping.StatusPending
	case "PICKED UP", "PICKED_UP", "IN TRANSIT":
		return shipping.StatusInTransit
	case "DISPATCHED", "OUT FOR DELIVERY":
		return shipping.StatusOutForDelivery
	case "DELIVERED":
		return shipping.StatusDelivered
	case "PENDING", "UNDELIVERED":
		return shipping.StatusNDR
	case "RTO", "RTO IN TRANSIT", "RETURNED IN TRANSIT":
		return shipping.StatusRTOInitiated
	case "RETURNED", "RTO DELIVERED", "DTO":
		return shipping.StatusRTODelivered
	case "CANCELLED", "CANCELED":
		return shipping.StatusCancelled
	case "LOST", "DAMAGED", "DESTROYED":
		return shipping.StatusLost
	default:
		return shipping.StatusUnknown
	}
}

// delhiveryPaymentMode maps the shared payment method onto vendor values;
// reverse pickups use the dedicated Pickup mode.
func delhiveryPaymentMode(m shipping.PaymentMethod, isReturn bool) string {
	if isReturn {
		return "Pickup"
	}
	if m == shipping.PaymentMethodCOD {
		return "COD"
	}
	return "Prepaid"
}

// parseDelhiveryTime parses the vendor's timestamp formats, returning nil
// for empty or unparseable values.
func parseDelhiveryTime(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range []string{delhiveryTimeLayout, "2006-01-02T15:04:05", time.RFC3339, "2006-01-02"} {
		if ts, err := time.Parse(layout, s); err == nil {
			return &ts
		}
	}
	return nil
}

// classifyTransportError folds a lifecycle error into a rate outcome.
func classifyTransportError(err error) shipping.RateOutcome {
	if httpclient.IsUnreachable(err) {
		return shipping.RateOutcomeUnreachable
	}
	return shipping.RateOutcomeInvalidResponse
}

// Ensure DelhiveryAdapter implements the CarrierProvider interface
var _ shipping.CarrierProvider = (*DelhiveryAdapter)(nil)
