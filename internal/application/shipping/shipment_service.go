package shipping

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shopcore/backend/internal/domain/shipping"
)

const labelURLValidity = 15 * time.Minute

// ShipmentService orchestrates the shipment lifecycle: create with a chosen
// provider, then track, cancel or book a return using only the provider code
// and the tracking number, resolved back to the right adapter via the
// registry. Creation is two-phase against the local store: a pending record
// goes in before the vendor call and is upgraded or failed afterwards.
type ShipmentService struct {
	registry shipping.ProviderRegistry
	records  ShipmentRepository
	labels   LabelArchive
	logger   *zap.Logger
}

// NewShipmentService creates a new ShipmentService. labels may be nil when
// label archiving is not configured.
func NewShipmentService(registry shipping.ProviderRegistry, records ShipmentRepository, labels LabelArchive, logger *zap.Logger) *ShipmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ShipmentService{
		registry: registry,
		records:  records,
		labels:   labels,
		logger:   logger,
	}
}

// CreateShipment books a shipment with the chosen provider and persists the
// outcome. A vendor rejection comes back as (response, nil) with
// Success=false; a non-nil error means the vendor was unreachable. In both
// failure shapes the persisted record keeps whatever vendor-side identifiers
// were issued, so stranded two-step creations stay visible.
func (s *ShipmentService) CreateShipment(ctx context.Context, code shipping.ProviderCode, req *shipping.ShippingRequest, serviceSelector string) (*shipping.ShipmentResponse, error) {
	provider, err := s.registry.Get(code)
	if err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.IsInternational() && !provider.SupportsInternationalShipping() {
		return nil, shipping.ErrInternationalNotSupported
	}

	record := &ShipmentRecord{
		ID:              uuid.New(),
		OrderID:         req.OrderID,
		Provider:        code,
		ServiceSelector: serviceSelector,
		Phase:           PhasePending,
		Status:          shipping.StatusPending,
	}
	if err := s.records.Save(ctx, record); err != nil {
		return nil, fmt.Errorf("persist pending shipment: %w", err)
	}

	resp, err := provider.CreateShipment(ctx, req, serviceSelector)
	if err != nil {
		record.Phase = PhaseFailed
		record.FailureReason = err.Error()
		s.updateRecord(ctx, record)
		return nil, err
	}

	if !resp.Success {
		record.Phase = PhaseFailed
		record.FailureReason = resp.Error
		record.VendorOrderID = resp.OrderID
		record.VendorShipmentID = resp.ShipmentID
		s.updateRecord(ctx, record)
		return resp, nil
	}

	record.Phase = PhaseCreated
	record.TrackingNumber = resp.TrackingNumber
	record.VendorOrderID = resp.OrderID
	record.VendorShipmentID = resp.ShipmentID
	record.CarrierName = resp.CarrierName
	record.LabelURL = resp.LabelURL
	if s.labels != nil && resp.LabelURL != "" {
		if key, archiveErr := s.archiveLabel(ctx, resp.TrackingNumber, resp.LabelURL); archiveErr != nil {
			s.logger.Warn("label archive failed",
				zap.String("awb", resp.TrackingNumber), zap.Error(archiveErr))
		} else {
			record.LabelArchiveKey = key
		}
	}
	s.updateRecord(ctx, record)

	s.logger.Info("shipment created",
		zap.String("provider", code.String()),
		zap.String("order_id", req.OrderID),
		zap.String("awb", resp.TrackingNumber),
		zap.String("carrier", resp.CarrierName))
	return resp, nil
}

// TrackShipment resolves the adapter and returns the vendor tracking state.
func (s *ShipmentService) TrackShipment(ctx context.Context, code shipping.ProviderCode, trackingNumber string) (*shipping.TrackingResponse, error) {
	provider, err := s.registry.Get(code)
	if err != nil {
		return nil, err
	}
	track, err := provider.TrackShipment(ctx, trackingNumber)
	if err != nil {
		return nil, err
	}
	if updateErr := s.records.UpdateStatus(ctx, trackingNumber, track.Status); updateErr != nil {
		s.logger.Warn("shipment status update failed",
			zap.String("awb", trackingNumber), zap.Error(updateErr))
	}
	return track, nil
}

// CancelShipment cancels with the vendor and marks the record cancelled on
// vendor confirmation.
func (s *ShipmentService) CancelShipment(ctx context.Context, code shipping.ProviderCode, trackingNumber string) (*shipping.CancellationResponse, error) {
	provider, err := s.registry.Get(code)
	if err != nil {
		return nil, err
	}
	resp, err := provider.CancelShipment(ctx, trackingNumber)
	if err != nil {
		return nil, err
	}
	if resp.Success {
		record, findErr := s.records.FindByTrackingNumber(ctx, trackingNumber)
		switch {
		case findErr == nil:
			record.Phase = PhaseCancelled
			record.Status = shipping.StatusCancelled
			s.updateRecord(ctx, record)
		case !errors.Is(findErr, ErrShipmentRecordNotFound):
			s.logger.Warn("shipment record lookup failed",
				zap.String("awb", trackingNumber), zap.Error(findErr))
		}
	}
	return resp, nil
}

// CreateReturnShipment books a reverse shipment referencing the original AWB.
func (s *ShipmentService) CreateReturnShipment(ctx context.Context, code shipping.ProviderCode, originalTrackingNumber string, req *shipping.ShippingRequest) (*shipping.ShipmentResponse, error) {
	provider, err := s.registry.Get(code)
	if err != nil {
		return nil, err
	}
	resp, err := provider.CreateReturnShipment(ctx, originalTrackingNumber, req)
	if err != nil {
		return nil, err
	}
	if resp.Success {
		s.logger.Info("return shipment created",
			zap.String("provider", code.String()),
			zap.String("original_awb", originalTrackingNumber),
			zap.String("return_awb", resp.TrackingNumber))
	}
	return resp, nil
}

// GetPickupLocations proxies the vendor's registered pickup addresses.
func (s *ShipmentService) GetPickupLocations(ctx context.Context, code shipping.ProviderCode) ([]shipping.PickupLocation, error) {
	provider, err := s.registry.Get(code)
	if err != nil {
		return nil, err
	}
	return provider.GetPickupLocations(ctx)
}

// CreatePickupLocation registers a pickup address with the vendor.
func (s *ShipmentService) CreatePickupLocation(ctx context.Context, code shipping.ProviderCode, loc *shipping.PickupLocation) (*shipping.PickupLocation, error) {
	provider, err := s.registry.Get(code)
	if err != nil {
		return nil, err
	}
	return provider.CreatePickupLocation(ctx, loc)
}

// LabelURL returns a short-lived URL for the archived label copy, falling
// back to the vendor-hosted URL when no archive copy exists.
func (s *ShipmentService) LabelURL(ctx context.Context, trackingNumber string) (string, error) {
	record, err := s.records.FindByTrackingNumber(ctx, trackingNumber)
	if err != nil {
		return "", err
	}
	if record.LabelArchiveKey != "" && s.labels != nil {
		return s.labels.PresignedURL(ctx, record.LabelArchiveKey, labelURLValidity)
	}
	if record.LabelURL == "" {
		return "", fmt.Errorf("%w: no label for %s", shipping.ErrShipmentNotFound, trackingNumber)
	}
	return record.LabelURL, nil
}

// GetShipment returns the persisted record for a tracking number.
func (s *ShipmentService) GetShipment(ctx context.Context, trackingNumber string) (*ShipmentRecord, error) {
	return s.records.FindByTrackingNumber(ctx, trackingNumber)
}

// archiveLabel downloads the vendor-hosted label and copies it to the
// archive. Vendor label URLs expire; the archived copy does not.
func (s *ShipmentService) archiveLabel(ctx context.Context, trackingNumber, labelURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, labelURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("label download HTTP %d", resp.StatusCode)
	}

	key := fmt.Sprintf("labels/%s.pdf", trackingNumber)
	if err := s.labels.Store(ctx, key, resp.Body, resp.ContentLength, "application/pdf"); err != nil {
		return "", err
	}
	return key, nil
}

// updateRecord persists a record mutation, logging instead of failing the
// caller when the store is unavailable. The vendor-side operation already
// happened; losing the local marker is the lesser problem and is loud in
// the logs.
func (s *ShipmentService) updateRecord(ctx context.Context, record *ShipmentRecord) {
	if err := s.records.Update(ctx, record); err != nil {
		s.logger.Error("shipment record update failed",
			zap.String("record_id", record.ID.String()),
			zap.String("phase", string(record.Phase)),
			zap.Error(err))
	}
}
