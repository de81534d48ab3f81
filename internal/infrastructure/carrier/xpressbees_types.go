package carrier

// Wire types for the Xpressbees API. Xpressbees quotes weights in grams,
// logs in for a 24-hour JWT and books shipments in a single call. Every
// response shares a {status, message, data} envelope.

// ---------------------------------------------------------------------------
// Authentication
// ---------------------------------------------------------------------------

type xpressbeesLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type xpressbeesLoginResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	// Data is the JWT
	Data string `json:"data"`
}

// ---------------------------------------------------------------------------
// Serviceability (rates)
// ---------------------------------------------------------------------------

type xpressbeesServiceabilityRequest struct {
	OriginPincode      string `json:"origin"`
	DestinationPincode string `json:"destination"`
	PaymentType        string `json:"payment_type"`
	OrderAmount        string `json:"order_amount"`
	Weight             string `json:"weight"`
	Length             string `json:"length,omitempty"`
	Breadth            string `json:"breadth,omitempty"`
	Height             string `json:"height,omitempty"`
}

type xpressbeesCourierOption struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	FreightCharges  float64 `json:"freight_charges"`
	CODCharges      float64 `json:"cod_charges"`
	TotalCharges    float64 `json:"total_charges"`
	MinWeight       string  `json:"min_weight"`
	ChargeableWeight string `json:"chargeable_weight"`
	EDD             string  `json:"edd"`
}

type xpressbeesServiceabilityResponse struct {
	Status  bool                      `json:"status"`
	Message string                    `json:"message"`
	Data    []xpressbeesCourierOption `json:"data"`
}

// ---------------------------------------------------------------------------
// Shipment creation
// ---------------------------------------------------------------------------

type xpressbeesOrderItem struct {
	Name string `json:"name"`
	Qty  string `json:"qty"`
	Price string `json:"price"`
	SKU  string `json:"sku"`
}

type xpressbeesCreateRequest struct {
	OrderNumber     string                `json:"order_number"`
	ShippingCharges float64               `json:"shipping_charges"`
	Discount        float64               `json:"discount"`
	CODCharges      float64               `json:"cod_charges"`
	PaymentType     string                `json:"payment_type"`
	OrderAmount     float64               `json:"order_amount"`
	PackageWeight   int                   `json:"package_weight"`
	PackageLength   int                   `json:"package_length"`
	PackageBreadth  int                   `json:"package_breadth"`
	PackageHeight   int                   `json:"package_height"`
	RequestAutoPickup string              `json:"request_auto_pickup"`
	Consignee       xpressbeesAddress     `json:"consignee"`
	Pickup          xpressbeesAddress     `json:"pickup"`
	OrderItems      []xpressbeesOrderItem `json:"order_items"`
	CourierID       string                `json:"courier_id,omitempty"`
	CollectableAmount string              `json:"collectable_amount"`
	IsReverse       bool                  `json:"is_reverse,omitempty"`
}

type xpressbeesAddress struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	Pincode string `json:"pincode"`
	Phone   string `json:"phone"`
}

type xpressbeesCreateResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		OrderID     string `json:"order_id"`
		ShipmentID  string `json:"shipment_id"`
		AWBNumber   string `json:"awb_number"`
		CourierID   string `json:"courier_id"`
		CourierName string `json:"courier_name"`
		ShippingCharges float64 `json:"shipping_charges"`
		LabelURL    string `json:"label"`
	} `json:"data"`
}

// ---------------------------------------------------------------------------
// Tracking
// ---------------------------------------------------------------------------

type xpressbeesTrackResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		AWBNumber   string `json:"awb_number"`
		Status      string `json:"status"`
		CurrentLocation string `json:"current_location"`
		EDD         string `json:"edd"`
		History     []struct {
			Status    string `json:"status_code"`
			Location  string `json:"location"`
			EventTime string `json:"event_time"`
			Message   string `json:"message"`
		} `json:"history"`
	} `json:"data"`
}

// ---------------------------------------------------------------------------
// Cancellation
// ---------------------------------------------------------------------------

type xpressbeesCancelRequest struct {
	AWB string `json:"awb"`
}

type xpressbeesCancelResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
}

// ---------------------------------------------------------------------------
// Pickup addresses
// ---------------------------------------------------------------------------

type xpressbeesPickupAddressRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	Pincode string `json:"pincode"`
}

type xpressbeesPickupAddress struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	Pincode string `json:"pincode"`
	IsDefault bool `json:"is_default"`
}

type xpressbeesPickupAddressListResponse struct {
	Status  bool                      `json:"status"`
	Message string                    `json:"message"`
	Data    []xpressbeesPickupAddress `json:"data"`
}

type xpressbeesPickupAddressCreateResponse struct {
	Status  bool                    `json:"status"`
	Message string                  `json:"message"`
	Data    xpressbeesPickupAddress `json:"data"`
}

// ---------------------------------------------------------------------------
// Webhooks
// ---------------------------------------------------------------------------

type xpressbeesWebhookPayload struct {
	EventID     string `json:"event_id"`
	AWBNumber   string `json:"awb_number"`
	OrderNumber string `json:"order_number"`
	Status      string `json:"status_code"`
	Location    string `json:"location"`
	EventTime   string `json:"event_time"`
	Message     string `json:"message"`
}
