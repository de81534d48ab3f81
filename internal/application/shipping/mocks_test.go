package shipping

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/shopcore/backend/internal/domain/shipping"
)

// fakeProvider is a scriptable CarrierProvider for service tests.
type fakeProvider struct {
	code          shipping.ProviderCode
	configured    bool
	international bool

	rates     []shipping.ShippingRate
	ratesDiag shipping.RateDiagnostic
	rateDelay time.Duration

	createResp *shipping.ShipmentResponse
	createErr  error
	trackResp  *shipping.TrackingResponse
	trackErr   error
	cancelResp *shipping.CancellationResponse
	cancelErr  error

	parsedEvent *shipping.WebhookEvent
	parseErr    error
	processErr  error

	mu           sync.Mutex
	processCalls int
	createCalls  int
}

func newFakeProvider(code shipping.ProviderCode) *fakeProvider {
	return &fakeProvider{
		code:       code,
		configured: true,
		ratesDiag:  shipping.RateDiagnostic{Provider: code, Outcome: shipping.RateOutcomeOK},
	}
}

func (f *fakeProvider) Code() shipping.ProviderCode      { return f.code }
func (f *fakeProvider) IsConfigured() bool               { return f.configured }
func (f *fakeProvider) SupportsInternationalShipping() bool { return f.international }

func (f *fakeProvider) GetRates(ctx context.Context, _ *shipping.ShippingRequest) ([]shipping.ShippingRate, shipping.RateDiagnostic) {
	if f.rateDelay > 0 {
		select {
		case <-time.After(f.rateDelay):
		case <-ctx.Done():
		}
	}
	return f.rates, f.ratesDiag
}

func (f *fakeProvider) GetInternationalRates(ctx context.Context, req *shipping.ShippingRequest) ([]shipping.ShippingRate, shipping.RateDiagnostic) {
	if !f.international {
		return nil, shipping.RateDiagnostic{Provider: f.code, Outcome: shipping.RateOutcomeUnsupported}
	}
	return f.GetRates(ctx, req)
}

func (f *fakeProvider) CreateShipment(_ context.Context, _ *shipping.ShippingRequest, _ string) (*shipping.ShipmentResponse, error) {
	f.mu.Lock()
	f.createCalls++
	f.mu.Unlock()
	return f.createResp, f.createErr
}

func (f *fakeProvider) TrackShipment(_ context.Context, _ string) (*shipping.TrackingResponse, error) {
	return f.trackResp, f.trackErr
}

func (f *fakeProvider) CancelShipment(_ context.Context, _ string) (*shipping.CancellationResponse, error) {
	return f.cancelResp, f.cancelErr
}

func (f *fakeProvider) CreateReturnShipment(_ context.Context, _ string, _ *shipping.ShippingRequest) (*shipping.ShipmentResponse, error) {
	return f.createResp, f.createErr
}

func (f *fakeProvider) GetPickupLocations(_ context.Context) ([]shipping.PickupLocation, error) {
	return nil, nil
}

func (f *fakeProvider) CreatePickupLocation(_ context.Context, loc *shipping.PickupLocation) (*shipping.PickupLocation, error) {
	return loc, nil
}

func (f *fakeProvider) ParseWebhookEvent(_ []byte) (*shipping.WebhookEvent, error) {
	return f.parsedEvent, f.parseErr
}

func (f *fakeProvider) ProcessWebhookEvent(_ context.Context, _ *shipping.WebhookEvent) error {
	f.mu.Lock()
	f.processCalls++
	f.mu.Unlock()
	return f.processErr
}

func (f *fakeProvider) processCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.processCalls
}

var _ shipping.CarrierProvider = (*fakeProvider)(nil)

// fakeRegistry serves a fixed, ordered provider set.
type fakeRegistry struct {
	providers []*fakeProvider
	def       shipping.ProviderCode
}

func (r *fakeRegistry) Get(code shipping.ProviderCode) (shipping.CarrierProvider, error) {
	for _, p := range r.providers {
		if p.code == code {
			return p, nil
		}
	}
	return nil, shipping.ErrProviderNotConfigured
}

func (r *fakeRegistry) Enabled() []shipping.CarrierProvider {
	out := make([]shipping.CarrierProvider, 0, len(r.providers))
	for _, p := range r.providers {
		out = append(out, p)
	}
	return out
}

func (r *fakeRegistry) Default() shipping.CarrierProvider {
	for _, p := range r.providers {
		if p.code == r.def {
			return p
		}
	}
	return nil
}

var _ shipping.ProviderRegistry = (*fakeRegistry)(nil)

// memoryShipmentRepo is an in-memory ShipmentRepository.
type memoryShipmentRepo struct {
	mu      sync.Mutex
	records map[uuid.UUID]*ShipmentRecord
	saveErr error
}

func newMemoryShipmentRepo() *memoryShipmentRepo {
	return &memoryShipmentRepo{records: map[uuid.UUID]*ShipmentRecord{}}
}

func (r *memoryShipmentRepo) Save(_ context.Context, record *ShipmentRecord) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *record
	r.records[record.ID] = &clone
	return nil
}

func (r *memoryShipmentRepo) Update(_ context.Context, record *ShipmentRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *record
	r.records[record.ID] = &clone
	return nil
}

func (r *memoryShipmentRepo) FindByID(_ context.Context, id uuid.UUID) (*ShipmentRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if record, ok := r.records[id]; ok {
		clone := *record
		return &clone, nil
	}
	return nil, ErrShipmentRecordNotFound
}

func (r *memoryShipmentRepo) FindByTrackingNumber(_ context.Context, trackingNumber string) (*ShipmentRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, record := range r.records {
		if record.TrackingNumber == trackingNumber {
			clone := *record
			return &clone, nil
		}
	}
	return nil, ErrShipmentRecordNotFound
}

func (r *memoryShipmentRepo) FindByOrderID(_ context.Context, orderID string) ([]*ShipmentRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*ShipmentRecord
	for _, record := range r.records {
		if record.OrderID == orderID {
			clone := *record
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *memoryShipmentRepo) UpdateStatus(_ context.Context, trackingNumber string, status shipping.ShipmentStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, record := range r.records {
		if record.TrackingNumber == trackingNumber {
			record.Status = status
		}
	}
	return nil
}

// byOrder returns the single record for an order, for assertions.
func (r *memoryShipmentRepo) byOrder(orderID string) *ShipmentRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, record := range r.records {
		if record.OrderID == orderID {
			clone := *record
			return &clone
		}
	}
	return nil
}

var _ ShipmentRepository = (*memoryShipmentRepo)(nil)

// memoryIdempotencyStore is a map-backed dedup store.
type memoryIdempotencyStore struct {
	mu   sync.Mutex
	seen map[string]bool
	err  error
}

func newMemoryIdempotencyStore() *memoryIdempotencyStore {
	return &memoryIdempotencyStore{seen: map[string]bool{}}
}

func (s *memoryIdempotencyStore) MarkProcessed(_ context.Context, eventID string, _ time.Duration) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seen[eventID] {
		return false, nil
	}
	s.seen[eventID] = true
	return true, nil
}

func (s *memoryIdempotencyStore) IsProcessed(_ context.Context, eventID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seen[eventID], s.err
}

func (s *memoryIdempotencyStore) Close() error { return nil }

// fakeLabelArchive records stored keys.
type fakeLabelArchive struct {
	mu     sync.Mutex
	stored map[string]string
}

func newFakeLabelArchive() *fakeLabelArchive {
	return &fakeLabelArchive{stored: map[string]string{}}
}

func (a *fakeLabelArchive) Store(_ context.Context, key string, body io.Reader, _ int64, _ string) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stored[key] = string(data)
	return nil
}

func (a *fakeLabelArchive) PresignedURL(_ context.Context, key string, _ time.Duration) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.stored[key]; !ok {
		return "", fmt.Errorf("no object %s", key)
	}
	return "https://archive.example.com/" + key + "?signed", nil
}

var _ LabelArchive = (*fakeLabelArchive)(nil)
