package carrier

// Wire types for the Delhivery API. Delhivery quotes weights in grams, has
// no login step (static token header) and books shipments in a single call
// whose body is a form field wrapping a JSON document.

// ---------------------------------------------------------------------------
// Serviceability and charges (rates)
// ---------------------------------------------------------------------------

type delhiveryPincodeResponse struct {
	DeliveryCodes []struct {
		PostalCode struct {
			Pin      int    `json:"pin"`
			District string `json:"district"`
			// Pre-paid/COD/Pickup flags are "Y"/"N"
			PrePaid string `json:"pre_paid"`
			COD     string `json:"cod"`
			Pickup  string `json:"pickup"`
			Remarks string `json:"remarks"`
		} `json:"postal_code"`
	} `json:"delivery_codes"`
}

type delhiveryChargeEntry struct {
	TotalAmount   float64 `json:"total_amount"`
	ChargeDL      float64 `json:"charge_DL"`
	ChargeCOD     float64 `json:"charge_COD"`
	Zone          string  `json:"zone"`
	ChargedWeight int     `json:"charged_weight"`
}

// ---------------------------------------------------------------------------
// Shipment creation
// ---------------------------------------------------------------------------

type delhiveryShipment struct {
	Name            string `json:"name"`
	Address         string `json:"add"`
	Pin             string `json:"pin"`
	City            string `json:"city"`
	State           string `json:"state"`
	Country         string `json:"country"`
	Phone           string `json:"phone"`
	OrderID         string `json:"order"`
	PaymentMode     string `json:"payment_mode"`
	CODAmount       string `json:"cod_amount,omitempty"`
	TotalAmount     string `json:"total_amount"`
	WeightGrams     string `json:"weight"`
	ShipmentLength  string `json:"shipment_length,omitempty"`
	ShipmentWidth   string `json:"shipment_width,omitempty"`
	ShipmentHeight  string `json:"shipment_height,omitempty"`
	ProductsDesc    string `json:"products_desc,omitempty"`
	ReturnName      string `json:"return_name,omitempty"`
	ReturnPin       string `json:"return_pin,omitempty"`
	SellerName      string `json:"seller_name,omitempty"`
}

type delhiveryPickupLocationRef struct {
	Name string `json:"name"`
}

type delhiveryCreatePayload struct {
	Shipments      []delhiveryShipment        `json:"shipments"`
	PickupLocation delhiveryPickupLocationRef `json:"pickup_location"`
}

type delhiveryCreateResponse struct {
	Success  bool   `json:"success"`
	RMK      string `json:"rmk"`
	Packages []struct {
		Waybill string `json:"waybill"`
		RefNum  string `json:"refnum"`
		Status  string `json:"status"`
		Remarks string `json:"remarks"`
		CODAmount float64 `json:"cod_amount"`
	} `json:"packages"`
}

// ---------------------------------------------------------------------------
// Tracking
// ---------------------------------------------------------------------------

type delhiveryTrackResponse struct {
	ShipmentData []struct {
		Shipment struct {
			AWB    string `json:"AWB"`
			Status struct {
				Status         string `json:"Status"`
				StatusLocation string `json:"StatusLocation"`
				StatusDateTime string `json:"StatusDateTime"`
				Instructions   string `json:"Instructions"`
			} `json:"Status"`
			ExpectedDeliveryDate string `json:"ExpectedDeliveryDate"`
			Scans                []struct {
				ScanDetail struct {
					Scan         string `json:"Scan"`
					ScannedLocation string `json:"ScannedLocation"`
					ScanDateTime string `json:"ScanDateTime"`
					Instructions string `json:"Instructions"`
				} `json:"ScanDetail"`
			} `json:"Scans"`
		} `json:"Shipment"`
	} `json:"ShipmentData"`
	Error string `json:"Error"`
}

// ---------------------------------------------------------------------------
// Cancellation
// ---------------------------------------------------------------------------

type delhiveryEditRequest struct {
	Waybill      string `json:"waybill"`
	Cancellation string `json:"cancellation"`
}

type delhiveryEditResponse struct {
	Status  bool   `json:"status"`
	Remark  string `json:"remark"`
	Waybill string `json:"waybill"`
}

// ---------------------------------------------------------------------------
// Client warehouses (pickup locations)
// ---------------------------------------------------------------------------

type delhiveryWarehouseRequest struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Address      string `json:"address"`
	City         string `json:"city"`
	State        string `json:"state"`
	Country      string `json:"country"`
	Pin          string `json:"pin"`
	ReturnAddress string `json:"return_address,omitempty"`
	ReturnPin    string `json:"return_pin,omitempty"`
}

type delhiveryWarehouseResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Data    struct {
		Name string `json:"name"`
	} `json:"data"`
}

type delhiveryWarehouseListResponse struct {
	Data []struct {
		Name    string `json:"name"`
		Address string `json:"address"`
		City    string `json:"city"`
		State   string `json:"state"`
		Pin     string `json:"pincode"`
		Phone   string `json:"phone"`
		Email   string `json:"email"`
		Active  bool   `json:"active"`
	} `json:"data"`
}

// ---------------------------------------------------------------------------
// Webhooks (scan push)
// ---------------------------------------------------------------------------

type delhiveryWebhookPayload struct {
	Shipment struct {
		AWB    string `json:"AWB"`
		Status struct {
			Status         string `json:"Status"`
			StatusType     string `json:"StatusType"`
			StatusLocation string `json:"StatusLocation"`
			StatusDateTime string `json:"StatusDateTime"`
			Instructions   string `json:"Instructions"`
		} `json:"Status"`
		ReferenceNo string `json:"ReferenceNo"`
		NSLCode     string `json:"NSLCode"`
	} `json:"Shipment"`
}
