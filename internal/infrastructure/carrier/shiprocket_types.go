package carrier

// Wire types for the Shiprocket API. Shiprocket speaks REST+JSON, quotes
// weights in kilograms and books shipments in two steps: create an adhoc
// order, then assign an AWB to the resulting shipment id.

// ---------------------------------------------------------------------------
// Auth
// ---------------------------------------------------------------------------

type shiprocketLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type shiprocketLoginResponse struct {
	Token     string `json:"token"`
	FirstName string `json:"first_name"`
	Email     string `json:"email"`
	Message   string `json:"message"`
}

// ---------------------------------------------------------------------------
// Serviceability (rates)
// ---------------------------------------------------------------------------

type shiprocketServiceabilityResponse struct {
	Status int `json:"status"`
	Data   struct {
		AvailableCourierCompanies []shiprocketCourierCompany `json:"available_courier_companies"`
	} `json:"data"`
	Message string `json:"message"`
}

type shiprocketCourierCompany struct {
	CourierCompanyID      int     `json:"courier_company_id"`
	CourierName           string  `json:"courier_name"`
	Rate                  float64 `json:"rate"`
	CODCharges            float64 `json:"cod_charges"`
	CoverageCharges       float64 `json:"coverage_charges"`
	EstimatedDeliveryDays string  `json:"estimated_delivery_days"`
	ETD                   string  `json:"etd"`
	COD                   int     `json:"cod"`
	Blocked               int     `json:"blocked"`
	IsSurface             bool    `json:"is_surface"`
	IsInternational       int     `json:"is_international"`
	InsuranceAvailable    int     `json:"insurance_available"`
	InsuranceCharges      float64 `json:"insurance_charges"`
}

// ---------------------------------------------------------------------------
// Order creation (step one)
// ---------------------------------------------------------------------------

type shiprocketOrderItem struct {
	Name     string  `json:"name"`
	SKU      string  `json:"sku"`
	Units    int     `json:"units"`
	Price    string  `json:"selling_price"`
	Tax      string  `json:"tax,omitempty"`
	Discount string  `json:"discount,omitempty"`
	HSN      string  `json:"hsn,omitempty"`
	Weight   float64 `json:"weight,omitempty"`
}

type shiprocketCreateOrderRequest struct {
	OrderID         string                `json:"order_id"`
	OrderDate       string                `json:"order_date"`
	ChannelID       string                `json:"channel_id,omitempty"`
	PickupLocation  string                `json:"pickup_location"`
	BillingName     string                `json:"billing_customer_name"`
	BillingAddress  string                `json:"billing_address"`
	BillingCity     string                `json:"billing_city"`
	BillingState    string                `json:"billing_state"`
	BillingCountry  string                `json:"billing_country"`
	BillingPincode  string                `json:"billing_pincode"`
	BillingPhone    string                `json:"billing_phone"`
	BillingEmail    string                `json:"billing_email,omitempty"`
	ShippingIsBilling bool                `json:"shipping_is_billing"`
	PaymentMethod   string                `json:"payment_method"`
	SubTotal        string                `json:"sub_total"`
	Length          float64               `json:"length,omitempty"`
	Breadth         float64               `json:"breadth,omitempty"`
	Height          float64               `json:"height,omitempty"`
	Weight          float64               `json:"weight"`
	OrderItems      []shiprocketOrderItem `json:"order_items"`
}

type shiprocketCreateOrderResponse struct {
	OrderID    int64  `json:"order_id"`
	ShipmentID int64  `json:"shipment_id"`
	Status     string `json:"status"`
	StatusCode int    `json:"status_code"`
	Message    string `json:"message"`
}

// ---------------------------------------------------------------------------
// AWB assignment (step two)
// ---------------------------------------------------------------------------

type shiprocketAssignAWBRequest struct {
	ShipmentID int64 `json:"shipment_id"`
	CourierID  int   `json:"courier_id,omitempty"`
}

type shiprocketAssignAWBResponse struct {
	AWBAssignStatus int `json:"awb_assign_status"`
	Response        struct {
		Data struct {
			AWBCode       string `json:"awb_code"`
			CourierName   string `json:"courier_name"`
			LabelURL      string `json:"label_url"`
			ManifestURL   string `json:"manifest_url"`
			InvoiceURL    string `json:"invoice_url"`
			AssignedDate  string `json:"assigned_date_time"`
			AppliedWeight float64 `json:"applied_weight"`
		} `json:"data"`
	} `json:"response"`
	Message string `json:"message"`
}

// ---------------------------------------------------------------------------
// Tracking
// ---------------------------------------------------------------------------

type shiprocketTrackResponse struct {
	TrackingData struct {
		TrackStatus    int    `json:"track_status"`
		ShipmentStatus int    `json:"shipment_status"`
		ETD            string `json:"etd"`
		Error          string `json:"error"`
		ShipmentTrack  []struct {
			AWBCode         string `json:"awb_code"`
			CurrentStatus   string `json:"current_status"`
			Origin          string `json:"origin"`
			Destination     string `json:"destination"`
			CourierName     string `json:"courier_name"`
			EDD             string `json:"edd"`
		} `json:"shipment_track"`
		ShipmentTrackActivities []struct {
			Date     string `json:"date"`
			Status   string `json:"status"`
			Activity string `json:"activity"`
			Location string `json:"location"`
		} `json:"shipment_track_activities"`
	} `json:"tracking_data"`
}

// ---------------------------------------------------------------------------
// Cancellation
// ---------------------------------------------------------------------------

type shiprocketOrderSearchResponse struct {
	Data []struct {
		ID         int64  `json:"id"`
		ChannelOrderID string `json:"channel_order_id"`
		Status     string `json:"status"`
		Shipments  []struct {
			ID  int64  `json:"id"`
			AWB string `json:"awb"`
		} `json:"shipments"`
	} `json:"data"`
}

type shiprocketCancelRequest struct {
	IDs []int64 `json:"ids"`
}

type shiprocketCancelResponse struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
}

// ---------------------------------------------------------------------------
// Returns
// ---------------------------------------------------------------------------

type shiprocketCreateReturnResponse struct {
	OrderID    int64  `json:"order_id"`
	ShipmentID int64  `json:"shipment_id"`
	Status     string `json:"status"`
	Message    string `json:"message"`
}

// ---------------------------------------------------------------------------
// Pickup locations
// ---------------------------------------------------------------------------

type shiprocketPickupLocationsResponse struct {
	Data struct {
		ShippingAddress []shiprocketPickupAddress `json:"shipping_address"`
	} `json:"data"`
}

type shiprocketPickupAddress struct {
	ID          int64  `json:"id"`
	PickupLocation string `json:"pickup_location"`
	Address     string `json:"address"`
	Address2    string `json:"address_2"`
	City        string `json:"city"`
	State       string `json:"state"`
	Country     string `json:"country"`
	PinCode     string `json:"pin_code"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	IsPrimary   int    `json:"is_primary_location"`
}

type shiprocketAddPickupRequest struct {
	PickupLocation string `json:"pickup_location"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	Address        string `json:"address"`
	City           string `json:"city"`
	State          string `json:"state"`
	Country        string `json:"country"`
	PinCode        string `json:"pin_code"`
}

type shiprocketAddPickupResponse struct {
	Success bool `json:"success"`
	Address struct {
		ID      int64  `json:"id"`
		PickupCode string `json:"pickup_code"`
	} `json:"address"`
	Message string `json:"message"`
}

// ---------------------------------------------------------------------------
// Webhooks and NDR
// ---------------------------------------------------------------------------

type shiprocketWebhookPayload struct {
	AWB            string `json:"awb"`
	CurrentStatus  string `json:"current_status"`
	CurrentStatusID int   `json:"current_status_id"`
	OrderID        string `json:"order_id"`
	CurrentTimestamp string `json:"current_timestamp"`
	ScanLocation   string `json:"location"`
	Remarks        string `json:"remarks"`
	CourierName    string `json:"courier_name"`
	IsNDR          bool   `json:"is_ndr"`
	NDRReason      string `json:"ndr_reason"`
	NDRAttempts    int    `json:"ndr_attempts"`
	EventID        string `json:"event_id"`
}

type shiprocketNDRActionRequest struct {
	Action string `json:"action"`
}

type shiprocketNDRActionResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
