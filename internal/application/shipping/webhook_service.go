package shipping

import (
	"context"

	"go.uber.org/zap"

	"github.com/shopcore/backend/internal/domain/shared"
	"github.com/shopcore/backend/internal/domain/shipping"
)

// WebhookService normalizes inbound vendor webhooks. The provider is
// identified from the route, its adapter decodes the payload, and the
// derived idempotency key is recorded before any side effect runs, so a
// redelivered vendor event cannot double-apply (notably it cannot trigger
// a second automatic NDR re-attempt for the same occurrence).
type WebhookService struct {
	registry    shipping.ProviderRegistry
	records     ShipmentRepository
	idempotency shared.IdempotencyStore
	idemConfig  shared.IdempotencyConfig
	logger      *zap.Logger
}

// NewWebhookService creates a new WebhookService
func NewWebhookService(registry shipping.ProviderRegistry, records ShipmentRepository, idempotency shared.IdempotencyStore, idemConfig shared.IdempotencyConfig, logger *zap.Logger) *WebhookService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebhookService{
		registry:    registry,
		records:     records,
		idempotency: idempotency,
		idemConfig:  idemConfig,
		logger:      logger,
	}
}

// HandleWebhook processes one raw vendor payload. Only an unknown provider
// or an undecodable payload is an error; everything after a successful
// decode is logged and swallowed, because vendors are the source of truth
// for shipment status and resend on the next state change regardless.
func (s *WebhookService) HandleWebhook(ctx context.Context, code shipping.ProviderCode, payload []byte) (*shipping.WebhookEvent, error) {
	provider, err := s.registry.Get(code)
	if err != nil {
		return nil, err
	}

	event, err := provider.ParseWebhookEvent(payload)
	if err != nil {
		return nil, err
	}

	logger := s.logger.With(
		zap.String("provider", code.String()),
		zap.String("awb", event.TrackingNumber),
		zap.String("status", event.Status.String()),
		zap.String("event_id", event.EventID),
	)

	if s.idemConfig.Enabled && s.idempotency != nil {
		fresh, err := s.idempotency.MarkProcessed(ctx, event.IdempotencyKey(), s.idemConfig.TTL)
		if err != nil {
			// Store trouble must not drop status updates; process anyway
			// and accept the duplicate-side-effect risk for this event.
			logger.Warn("idempotency store unavailable, processing without dedup", zap.Error(err))
		} else if !fresh {
			logger.Info("duplicate webhook event ignored")
			return event, nil
		}
	}

	if err := s.records.UpdateStatus(ctx, event.TrackingNumber, event.Status); err != nil {
		logger.Warn("shipment status update failed", zap.Error(err))
	}

	if err := provider.ProcessWebhookEvent(ctx, event); err != nil {
		// Vendor-side remediation failure: logged, never retried.
		logger.Warn("webhook side effect failed", zap.Error(err))
	}

	logger.Info("webhook event processed")
	return event, nil
}
