package handler

import (
	"context"
	"sync"

	appshipping "github.com/shopcore/backend/internal/application/shipping"
	"github.com/shopcore/backend/internal/domain/shipping"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// stubProvider is a scriptable CarrierProvider for handler tests.
type stubProvider struct {
	code          shipping.ProviderCode
	configured    bool
	international bool

	rates     []shipping.ShippingRate
	ratesDiag shipping.RateDiagnostic

	createResp *shipping.ShipmentResponse
	createErr  error
	trackResp  *shipping.TrackingResponse
	trackErr   error
	cancelResp *shipping.CancellationResponse
	cancelErr  error

	locations []shipping.PickupLocation
	locErr    error

	parsedEvent *shipping.WebhookEvent
	parseErr    error

	mu           sync.Mutex
	processCalls int
}

func newStubProvider(code shipping.ProviderCode) *stubProvider {
	return &stubProvider{
		code:       code,
		configured: true,
		ratesDiag:  shipping.RateDiagnostic{Provider: code, Outcome: shipping.RateOutcomeOK},
	}
}

func (p *stubProvider) Code() shipping.ProviderCode { return p.code }
func (p *stubProvider) IsConfigured() bool          { return p.configured }

func (p *stubProvider) GetRates(_ context.Context, _ *shipping.ShippingRequest) ([]shipping.ShippingRate, shipping.RateDiagnostic) {
	return p.rates, p.ratesDiag
}

func (p *stubProvider) SupportsInternationalShipping() bool { return p.international }

func (p *stubProvider) GetInternationalRates(ctx context.Context, req *shipping.ShippingRequest) ([]shipping.ShippingRate, shipping.RateDiagnostic) {
	if !p.international {
		return nil, shipping.RateDiagnostic{Provider: p.code, Outcome: shipping.RateOutcomeUnsupported}
	}
	return p.GetRates(ctx, req)
}

func (p *stubProvider) CreateShipment(_ context.Context, _ *shipping.ShippingRequest, _ string) (*shipping.ShipmentResponse, error) {
	return p.createResp, p.createErr
}

func (p *stubProvider) TrackShipment(_ context.Context, _ string) (*shipping.TrackingResponse, error) {
	return p.trackResp, p.trackErr
}

func (p *stubProvider) CancelShipment(_ context.Context, _ string) (*shipping.CancellationResponse, error) {
	return p.cancelResp, p.cancelErr
}

func (p *stubProvider) CreateReturnShipment(_ context.Context, _ string, _ *shipping.ShippingRequest) (*shipping.ShipmentResponse, error) {
	return p.createResp, p.createErr
}

func (p *stubProvider) GetPickupLocations(_ context.Context) ([]shipping.PickupLocation, error) {
	return p.locations, p.locErr
}

func (p *stubProvider) CreatePickupLocation(_ context.Context, loc *shipping.PickupLocation) (*shipping.PickupLocation, error) {
	if p.locErr != nil {
		return nil, p.locErr
	}
	created := *loc
	created.ID = "loc_1"
	return &created, nil
}

func (p *stubProvider) ParseWebhookEvent(_ []byte) (*shipping.WebhookEvent, error) {
	return p.parsedEvent, p.parseErr
}

func (p *stubProvider) ProcessWebhookEvent(_ context.Context, _ *shipping.WebhookEvent) error {
	p.mu.Lock()
	p.processCalls++
	p.mu.Unlock()
	return nil
}

// stubRegistry implements ReloadableRegistry over a fixed provider list.
type stubRegistry struct {
	providers []*stubProvider

	mu          sync.Mutex
	reloaded    []shipping.ProviderConfig
	reloadErr   error
	reloadCalls int
}

func (r *stubRegistry) Get(code shipping.ProviderCode) (shipping.CarrierProvider, error) {
	for _, p := range r.providers {
		if p.code == code {
			return p, nil
		}
	}
	return nil, shipping.ErrProviderNotConfigured
}

func (r *stubRegistry) Enabled() []shipping.CarrierProvider {
	enabled := make([]shipping.CarrierProvider, 0, len(r.providers))
	for _, p := range r.providers {
		enabled = append(enabled, p)
	}
	return enabled
}

func (r *stubRegistry) Default() shipping.CarrierProvider {
	if len(r.providers) == 0 {
		return nil
	}
	return r.providers[0]
}

func (r *stubRegistry) Reload(configs []shipping.ProviderConfig, _ shipping.Settings) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.reloadErr != nil {
		return r.reloadErr
	}
	r.reloaded = configs
	r.reloadCalls++
	return nil
}

// stubShipmentRepo is a minimal in-memory ShipmentRepository.
type stubShipmentRepo struct {
	mu      sync.Mutex
	records map[uuid.UUID]*appshipping.ShipmentRecord
}

func newStubShipmentRepo() *stubShipmentRepo {
	return &stubShipmentRepo{records: make(map[uuid.UUID]*appshipping.ShipmentRecord)}
}

func (r *stubShipmentRepo) Save(_ context.Context, record *appshipping.ShipmentRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *record
	r.records[record.ID] = &clone
	return nil
}

func (r *stubShipmentRepo) Update(_ context.Context, record *appshipping.ShipmentRecord) error {
	return r.Save(context.Background(), record)
}

func (r *stubShipmentRepo) FindByID(_ context.Context, id uuid.UUID) (*appshipping.ShipmentRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if record, ok := r.records[id]; ok {
		clone := *record
		return &clone, nil
	}
	return nil, appshipping.ErrShipmentRecordNotFound
}

func (r *stubShipmentRepo) FindByTrackingNumber(_ context.Context, awb string) (*appshipping.ShipmentRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, record := range r.records {
		if record.TrackingNumber == awb {
			clone := *record
			return &clone, nil
		}
	}
	return nil, appshipping.ErrShipmentRecordNotFound
}

func (r *stubShipmentRepo) FindByOrderID(_ context.Context, orderID string) ([]*appshipping.ShipmentRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*appshipping.ShipmentRecord
	for _, record := range r.records {
		if record.OrderID == orderID {
			clone := *record
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *stubShipmentRepo) UpdateStatus(_ context.Context, awb string, status shipping.ShipmentStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, record := range r.records {
		if record.TrackingNumber == awb {
			record.Status = status
		}
	}
	return nil
}

func stubRate(provider shipping.ProviderCode, carrier string, cost float64, days int) shipping.ShippingRate {
	return shipping.ShippingRate{
		Provider:              provider,
		CarrierName:           carrier,
		ServiceSelector:       carrier,
		Cost:                  decimal.NewFromFloat(cost),
		Currency:              "INR",
		EstimatedDeliveryDays: days,
		Available:             true,
	}
}
