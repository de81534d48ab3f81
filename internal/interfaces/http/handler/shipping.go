package handler

import (
	"errors"
	"net/http"

	appshipping "github.com/shopcore/backend/internal/application/shipping"
	"github.com/shopcore/backend/internal/domain/shipping"
	"github.com/shopcore/backend/internal/infrastructure/logger"
	"github.com/shopcore/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// ReloadableRegistry is the provider registry surface the handler needs:
// lookup plus wholesale rebuild from pushed configuration.
type ReloadableRegistry interface {
	shipping.ProviderRegistry
	Reload(configs []shipping.ProviderConfig, settings shipping.Settings) error
}

// ShippingHandler handles shipping rate, shipment lifecycle, and provider
// administration endpoints
type ShippingHandler struct {
	BaseHandler
	rateService     *appshipping.RateService
	selection       *appshipping.SelectionEngine
	shipmentService *appshipping.ShipmentService
	registry        ReloadableRegistry
}

// NewShippingHandler creates a new ShippingHandler
func NewShippingHandler(
	rateService *appshipping.RateService,
	selection *appshipping.SelectionEngine,
	shipmentService *appshipping.ShipmentService,
	registry ReloadableRegistry,
) *ShippingHandler {
	return &ShippingHandler{
		rateService:     rateService,
		selection:       selection,
		shipmentService: shipmentService,
		registry:        registry,
	}
}

// GetRates godoc
// @Summary      Quote shipping rates across all enabled providers
// @Description  Fans out the quote to every enabled provider, reports per-provider diagnostics, and returns the option the configured strategy selects
// @Tags         shipping
// @Accept       json
// @Produce      json
// @Param        request body ShippingQuoteRequest true "Shipment to quote"
// @Success      200 {object} dto.Response{data=AggregateRatesResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /shipping/rates [post]
func (h *ShippingHandler) GetRates(c *gin.Context) {
	var req ShippingQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	domainReq := req.ToDomain(h.selection.Settings().DefaultPickupPincode)
	if err := domainReq.Validate(); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	rates := h.rateService.GetAllRates(c.Request.Context(), domainReq)

	order := h.enabledOrder()
	subtotal := decimal.NewFromFloat(req.CartSubtotal)
	if subtotal.IsZero() {
		subtotal = domainReq.InvoiceValue
	}
	selected := h.selection.Select(rates, order, subtotal)

	resp := AggregateRatesResponse{
		Rates:    make([]RateResponse, 0),
		Selected: toSelectedOptionResponse(selected),
	}
	for _, code := range order {
		for _, rate := range rates[code] {
			resp.Rates = append(resp.Rates, toRateResponse(rate))
		}
	}
	h.Success(c, resp)
}

// GetProviderRates godoc
// @Summary      Quote shipping rates from a single provider
// @Description  Quotes one provider and returns its rates together with the diagnostic explaining an empty result
// @Tags         shipping
// @Accept       json
// @Produce      json
// @Param        provider path string true "Provider code" Enums(shiprocket, delhivery, xpressbees)
// @Param        request body ShippingQuoteRequest true "Shipment to quote"
// @Success      200 {object} dto.Response{data=ProviderRatesResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /shipping/rates/{provider} [post]
func (h *ShippingHandler) GetProviderRates(c *gin.Context) {
	code, ok := h.providerParam(c)
	if !ok {
		return
	}

	var req ShippingQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	domainReq := req.ToDomain(h.selection.Settings().DefaultPickupPincode)
	if err := domainReq.Validate(); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	rates, diag, err := h.rateService.GetRates(c.Request.Context(), code, domainReq)
	if err != nil {
		h.handleShippingError(c, err)
		return
	}

	resp := ProviderRatesResponse{
		Provider:   code.String(),
		Rates:      make([]RateResponse, 0, len(rates)),
		Diagnostic: toDiagnosticResponse(diag),
	}
	for _, rate := range rates {
		resp.Rates = append(resp.Rates, toRateResponse(rate))
	}
	h.Success(c, resp)
}

// CreateShipment godoc
// @Summary      Create a shipment
// @Description  Books a shipment with the chosen provider. A vendor rejection is returned as a 200 with success=false; the persisted record keeps any stranded vendor identifiers
// @Tags         shipping
// @Accept       json
// @Produce      json
// @Param        request body CreateShipmentRequest true "Shipment creation request"
// @Success      201 {object} dto.Response{data=ShipmentResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      502 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /shipping/shipments [post]
func (h *ShippingHandler) CreateShipment(c *gin.Context) {
	var req CreateShipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	domainReq := req.Shipment.ToDomain(h.selection.Settings().DefaultPickupPincode)

	// Tag the order on the request-scoped logger so the booking attempt
	// and its vendor calls are correlated in the logs
	ctx, _ := logger.WithOrderID(c.Request.Context(), logger.FromContext(c.Request.Context()), domainReq.OrderID)

	result, err := h.shipmentService.CreateShipment(
		ctx,
		shipping.ProviderCode(req.Provider),
		domainReq,
		req.ServiceSelector,
	)
	if err != nil {
		h.handleShippingError(c, err)
		return
	}

	if !result.Success {
		// Vendor said no to a well-formed request. Not a transport error,
		// so the rejection detail travels in the response body.
		h.Success(c, toShipmentResponse(result))
		return
	}
	h.Created(c, toShipmentResponse(result))
}

// TrackShipment godoc
// @Summary      Track a shipment
// @Tags         shipping
// @Produce      json
// @Param        provider path string true "Provider code" Enums(shiprocket, delhivery, xpressbees)
// @Param        awb path string true "Tracking number (AWB)"
// @Success      200 {object} dto.Response{data=TrackingResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      502 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /shipping/shipments/{provider}/{awb}/track [get]
func (h *ShippingHandler) TrackShipment(c *gin.Context) {
	code, ok := h.providerParam(c)
	if !ok {
		return
	}

	result, err := h.shipmentService.TrackShipment(c.Request.Context(), code, c.Param("awb"))
	if err != nil {
		h.handleShippingError(c, err)
		return
	}
	h.Success(c, toTrackingResponse(result))
}

// CancelShipment godoc
// @Summary      Cancel a shipment
// @Description  Requests cancellation from the provider. A vendor refusal is a 200 with success=false
// @Tags         shipping
// @Produce      json
// @Param        provider path string true "Provider code" Enums(shiprocket, delhivery, xpressbees)
// @Param        awb path string true "Tracking number (AWB)"
// @Success      200 {object} dto.Response{data=CancellationResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      502 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /shipping/shipments/{provider}/{awb}/cancel [post]
func (h *ShippingHandler) CancelShipment(c *gin.Context) {
	code, ok := h.providerParam(c)
	if !ok {
		return
	}

	result, err := h.shipmentService.CancelShipment(c.Request.Context(), code, c.Param("awb"))
	if err != nil {
		h.handleShippingError(c, err)
		return
	}
	h.Success(c, CancellationResponse{
		Success:        result.Success,
		Message:        result.Message,
		TrackingNumber: result.TrackingNumber,
	})
}

// CreateReturnShipment godoc
// @Summary      Create a return shipment
// @Description  Books a reverse shipment for a delivered forward shipment, swapping the pickup and delivery sides
// @Tags         shipping
// @Accept       json
// @Produce      json
// @Param        provider path string true "Provider code" Enums(shiprocket, delhivery, xpressbees)
// @Param        awb path string true "Original forward tracking number"
// @Param        request body CreateReturnShipmentRequest true "Return shipment request"
// @Success      201 {object} dto.Response{data=ShipmentResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /shipping/shipments/{provider}/{awb}/return [post]
func (h *ShippingHandler) CreateReturnShipment(c *gin.Context) {
	code, ok := h.providerParam(c)
	if !ok {
		return
	}

	var req CreateReturnShipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	domainReq := req.Shipment.ToDomain(h.selection.Settings().DefaultPickupPincode)
	result, err := h.shipmentService.CreateReturnShipment(c.Request.Context(), code, c.Param("awb"), domainReq)
	if err != nil {
		h.handleShippingError(c, err)
		return
	}

	if !result.Success {
		h.Success(c, toShipmentResponse(result))
		return
	}
	h.Created(c, toShipmentResponse(result))
}

// GetLabel godoc
// @Summary      Get a shipping label URL
// @Description  Returns a time-limited presigned URL for the archived label, falling back to the vendor-hosted URL when no archive copy exists
// @Tags         shipping
// @Produce      json
// @Param        awb path string true "Tracking number (AWB)"
// @Success      200 {object} dto.Response{data=LabelResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /shipping/labels/{awb} [get]
func (h *ShippingHandler) GetLabel(c *gin.Context) {
	awb := c.Param("awb")
	url, err := h.shipmentService.LabelURL(c.Request.Context(), awb)
	if err != nil {
		h.handleShippingError(c, err)
		return
	}
	h.Success(c, LabelResponse{TrackingNumber: awb, URL: url})
}

// GetPickupLocations godoc
// @Summary      List a provider's registered pickup locations
// @Tags         shipping
// @Produce      json
// @Param        provider path string true "Provider code" Enums(shiprocket, delhivery, xpressbees)
// @Success      200 {object} dto.Response{data=[]PickupLocationResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      502 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /shipping/pickup-locations/{provider} [get]
func (h *ShippingHandler) GetPickupLocations(c *gin.Context) {
	code, ok := h.providerParam(c)
	if !ok {
		return
	}

	locations, err := h.shipmentService.GetPickupLocations(c.Request.Context(), code)
	if err != nil {
		h.handleShippingError(c, err)
		return
	}

	resp := make([]PickupLocationResponse, 0, len(locations))
	for _, loc := range locations {
		resp = append(resp, toPickupLocationResponse(loc))
	}
	h.Success(c, resp)
}

// CreatePickupLocation godoc
// @Summary      Register a pickup location with a provider
// @Tags         shipping
// @Accept       json
// @Produce      json
// @Param        provider path string true "Provider code" Enums(shiprocket, delhivery, xpressbees)
// @Param        request body CreatePickupLocationRequest true "Pickup location to register"
// @Success      201 {object} dto.Response{data=PickupLocationResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /shipping/pickup-locations/{provider} [post]
func (h *ShippingHandler) CreatePickupLocation(c *gin.Context) {
	code, ok := h.providerParam(c)
	if !ok {
		return
	}

	var req CreatePickupLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	created, err := h.shipmentService.CreatePickupLocation(c.Request.Context(), code, &shipping.PickupLocation{
		Name:    req.Name,
		Address: req.Address,
		City:    req.City,
		State:   req.State,
		Country: req.Country,
		Pincode: req.Pincode,
		Phone:   req.Phone,
		Email:   req.Email,
		Default: req.Default,
	})
	if err != nil {
		h.handleShippingError(c, err)
		return
	}
	h.Created(c, toPickupLocationResponse(*created))
}

// ReloadProviders godoc
// @Summary      Reinitialize the provider registry
// @Description  Rebuilds the full provider registry from the posted configurations and, when settings are included, swaps the selection settings with it
// @Tags         shipping
// @Accept       json
// @Produce      json
// @Param        request body ReloadProvidersRequest true "Provider configurations"
// @Success      200 {object} dto.Response{data=ReloadProvidersResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /shipping/providers [put]
func (h *ShippingHandler) ReloadProviders(c *gin.Context) {
	var req ReloadProvidersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	configs := make([]shipping.ProviderConfig, 0, len(req.Providers))
	for _, p := range req.Providers {
		cfg := shipping.ProviderConfig{
			Code:        shipping.ProviderCode(p.Code),
			Name:        p.Name,
			Enabled:     p.Enabled,
			Priority:    p.Priority,
			Credentials: p.Credentials,
			WebhookURL:  p.WebhookURL,
		}
		if err := cfg.Validate(); err != nil {
			h.BadRequest(c, err.Error())
			return
		}
		configs = append(configs, cfg)
	}

	settings := h.selection.Settings()
	if req.Settings != nil {
		settings = req.Settings.ToDomain()
		if err := settings.Validate(); err != nil {
			h.BadRequest(c, err.Error())
			return
		}
	}

	if err := h.registry.Reload(configs, settings); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if req.Settings != nil {
		h.selection.Reconfigure(settings)
	}

	resp := ReloadProvidersResponse{EnabledProviders: make([]string, 0)}
	for _, provider := range h.registry.Enabled() {
		resp.EnabledProviders = append(resp.EnabledProviders, provider.Code().String())
	}
	h.Success(c, resp)
}

// ServiceabilityRequest represents a pincode serviceability query
// @Description Query parameters for a pincode serviceability check
type ServiceabilityRequest struct {
	PickupPincode   string `form:"pickup_pincode" binding:"omitempty,min=4,max=10"`
	DeliveryPincode string `form:"delivery_pincode" binding:"required,min=4,max=10"`
	WeightGrams     int    `form:"weight_grams" binding:"omitempty,gt=0"`
	COD             bool   `form:"cod"`
}

// ProviderServiceabilityResponse reports one provider's serviceability verdict
// @Description One provider's serviceability verdict for a lane
type ProviderServiceabilityResponse struct {
	Provider    string  `json:"provider" example:"delhivery"`
	Serviceable bool    `json:"serviceable" example:"true"`
	CheapestCost float64 `json:"cheapest_cost,omitempty" example:"60.00"`
}

// CheckServiceability godoc
// @Summary      Check pincode serviceability
// @Description  Probes every enabled provider with a minimal quote and reports which ones can serve the lane
// @Tags         shipping
// @Produce      json
// @Param        delivery_pincode query string true "Destination pincode"
// @Param        pickup_pincode query string false "Origin pincode (defaults to the configured pickup pincode)"
// @Param        weight_grams query int false "Dead weight in grams (defaults to 500)"
// @Param        cod query bool false "Check the cash-on-delivery lane"
// @Success      200 {object} dto.Response{data=[]ProviderServiceabilityResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /shipping/serviceability [get]
func (h *ShippingHandler) CheckServiceability(c *gin.Context) {
	var req ServiceabilityRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	weight := req.WeightGrams
	if weight == 0 {
		weight = 500
	}
	method := shipping.PaymentMethodPrepaid
	if req.COD {
		method = shipping.PaymentMethodCOD
	}
	pickup := req.PickupPincode
	if pickup == "" {
		pickup = h.selection.Settings().DefaultPickupPincode
	}

	// A probe quote, never booked. The order id only has to survive
	// provider-side request validation.
	probe := &shipping.ShippingRequest{
		OrderID:         "serviceability-probe",
		PickupPincode:   pickup,
		DeliveryPincode: req.DeliveryPincode,
		WeightGrams:     weight,
		InvoiceValue:    decimal.NewFromInt(100),
		PaymentMethod:   method,
	}
	if err := probe.Validate(); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	rates := h.rateService.GetAllRates(c.Request.Context(), probe)

	resp := make([]ProviderServiceabilityResponse, 0)
	for _, code := range h.enabledOrder() {
		verdict := ProviderServiceabilityResponse{Provider: code.String()}
		for _, rate := range rates[code] {
			if !verdict.Serviceable || rate.Cost.InexactFloat64() < verdict.CheapestCost {
				verdict.CheapestCost = rate.Cost.InexactFloat64()
			}
			verdict.Serviceable = true
		}
		resp = append(resp, verdict)
	}
	h.Success(c, resp)
}

// providerParam parses and validates the :provider path parameter.
func (h *ShippingHandler) providerParam(c *gin.Context) (shipping.ProviderCode, bool) {
	code := shipping.ProviderCode(c.Param("provider"))
	if !code.IsValid() {
		h.NotFound(c, "unknown shipping provider: "+c.Param("provider"))
		return "", false
	}
	return code, true
}

// enabledOrder returns the enabled provider codes in configured-priority order.
func (h *ShippingHandler) enabledOrder() []shipping.ProviderCode {
	providers := h.registry.Enabled()
	order := make([]shipping.ProviderCode, 0, len(providers))
	for _, p := range providers {
		order = append(order, p.Code())
	}
	return order
}

// handleShippingError maps domain sentinel errors onto HTTP responses.
func (h *ShippingHandler) handleShippingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, shipping.ErrProviderNotConfigured),
		errors.Is(err, shipping.ErrProviderNotEnabled),
		errors.Is(err, shipping.ErrProviderNotFound):
		h.NotFound(c, err.Error())
	case errors.Is(err, shipping.ErrShipmentNotFound),
		errors.Is(err, appshipping.ErrShipmentRecordNotFound):
		h.NotFound(c, err.Error())
	case errors.Is(err, shipping.ErrShipmentInvalidRequest),
		errors.Is(err, shipping.ErrTrackingNumberRequired),
		errors.Is(err, shipping.ErrServiceSelectorRequired),
		errors.Is(err, shipping.ErrInternationalNotSupported):
		h.BadRequest(c, err.Error())
	case errors.Is(err, shipping.ErrProviderAuthFailed):
		h.Error(c, http.StatusBadGateway, dto.ErrCodeProviderRejected, err.Error())
	case errors.Is(err, shipping.ErrProviderUnavailable),
		errors.Is(err, shipping.ErrProviderRequestFailed),
		errors.Is(err, shipping.ErrProviderInvalidResponse):
		h.Error(c, http.StatusBadGateway, dto.ErrCodeProviderUnavailable, err.Error())
	default:
		h.InternalError(c, err.Error())
	}
}
