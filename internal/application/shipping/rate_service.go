package shipping

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/shopcore/backend/internal/domain/shipping"
)

// RateService aggregates rate quotes across the configured providers.
type RateService struct {
	registry shipping.ProviderRegistry
	logger   *zap.Logger
}

// NewRateService creates a new RateService
func NewRateService(registry shipping.ProviderRegistry, logger *zap.Logger) *RateService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RateService{
		registry: registry,
		logger:   logger,
	}
}

// GetAllRates fans the quote out to every enabled provider concurrently and
// collects the non-empty answers keyed by provider. A provider that fails or
// has nothing to offer is omitted from the map, with its diagnostic logged;
// the aggregate call itself never fails. Map iteration order carries no
// meaning; ordering belongs to the selection engine.
func (s *RateService) GetAllRates(ctx context.Context, req *shipping.ShippingRequest) map[shipping.ProviderCode][]shipping.ShippingRate {
	providers := s.registry.Enabled()
	results := make(map[shipping.ProviderCode][]shipping.ShippingRate, len(providers))

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	for _, provider := range providers {
		if req.IsInternational() && !provider.SupportsInternationalShipping() {
			s.logger.Debug("provider skipped for international request",
				zap.String("provider", provider.Code().String()))
			continue
		}

		wg.Add(1)
		go func(p shipping.CarrierProvider) {
			defer wg.Done()

			rates, diag := s.quote(ctx, p, req)
			if !diag.OK() {
				s.logDiagnostic(diag)
				return
			}
			mu.Lock()
			results[p.Code()] = rates
			mu.Unlock()
		}(provider)
	}
	wg.Wait()

	return results
}

// GetRates is the single-provider pass-through variant.
func (s *RateService) GetRates(ctx context.Context, code shipping.ProviderCode, req *shipping.ShippingRequest) ([]shipping.ShippingRate, shipping.RateDiagnostic, error) {
	provider, err := s.registry.Get(code)
	if err != nil {
		return nil, shipping.RateDiagnostic{}, err
	}
	rates, diag := s.quote(ctx, provider, req)
	if !diag.OK() {
		s.logDiagnostic(diag)
	}
	return rates, diag, nil
}

func (s *RateService) quote(ctx context.Context, provider shipping.CarrierProvider, req *shipping.ShippingRequest) ([]shipping.ShippingRate, shipping.RateDiagnostic) {
	if req.IsInternational() {
		return provider.GetInternationalRates(ctx, req)
	}
	return provider.GetRates(ctx, req)
}

// logDiagnostic separates "nothing to offer" from genuine provider trouble
// in the logs while both stay invisible to the caller.
func (s *RateService) logDiagnostic(diag shipping.RateDiagnostic) {
	fields := []zap.Field{
		zap.String("provider", diag.Provider.String()),
		zap.String("outcome", string(diag.Outcome)),
	}
	if diag.Message != "" {
		fields = append(fields, zap.String("message", diag.Message))
	}
	if diag.Err != nil {
		fields = append(fields, zap.Error(diag.Err))
	}

	switch diag.Outcome {
	case shipping.RateOutcomeUnserviceable, shipping.RateOutcomeUnsupported:
		s.logger.Debug("provider returned no rates", fields...)
	default:
		s.logger.Warn("provider rate quote failed", fields...)
	}
}
