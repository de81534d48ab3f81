package handler

import (
	"errors"
	"io"
	"net/http"

	appshipping "github.com/shopcore/backend/internal/application/shipping"
	"github.com/shopcore/backend/internal/domain/shipping"
	"github.com/shopcore/backend/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
)

// Maximum webhook payload size (64KB - carrier status pushes are small)
const maxCarrierWebhookPayloadSize = 65536

// ShippingWebhookHandler handles inbound carrier webhook endpoints.
// These endpoints are called by the carrier aggregators and do not
// require authentication.
type ShippingWebhookHandler struct {
	BaseHandler
	webhookService *appshipping.WebhookService
}

// NewShippingWebhookHandler creates a new ShippingWebhookHandler
func NewShippingWebhookHandler(webhookService *appshipping.WebhookService) *ShippingWebhookHandler {
	return &ShippingWebhookHandler{
		webhookService: webhookService,
	}
}

// HandleCarrierWebhook godoc
// @Summary      Receive a carrier status webhook
// @Description  Decodes and applies a carrier status push. Carriers redeliver on anything but a 200, so every delivery that decodes is acknowledged even when processing fails; duplicates are acknowledged without reapplying side effects
// @Tags         webhooks
// @Accept       json
// @Produce      json
// @Param        provider path string true "Provider code" Enums(shiprocket, delhivery, xpressbees)
// @Success      200 {object} WebhookAckResponse "Event acknowledged"
// @Failure      400 {object} WebhookAckResponse "Undecodable payload"
// @Failure      404 {object} WebhookAckResponse "Unknown provider"
// @Failure      413 {object} WebhookAckResponse "Payload too large"
// @Router       /webhooks/shipping/{provider} [post]
func (h *ShippingWebhookHandler) HandleCarrierWebhook(c *gin.Context) {
	code := shipping.ProviderCode(c.Param("provider"))
	if !code.IsValid() {
		c.JSON(http.StatusNotFound, WebhookAckResponse{
			Received: false,
			Message:  "unknown shipping provider",
		})
		return
	}

	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxCarrierWebhookPayloadSize+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, WebhookAckResponse{
			Received: false,
			Message:  "failed to read request body",
		})
		return
	}
	if len(payload) > maxCarrierWebhookPayloadSize {
		c.JSON(http.StatusRequestEntityTooLarge, WebhookAckResponse{
			Received: false,
			Message:  "payload too large",
		})
		return
	}

	// Tag the provider on the request-scoped logger for everything the
	// webhook service logs downstream
	ctx, _ := logger.WithProvider(c.Request.Context(), logger.FromContext(c.Request.Context()), code.String())

	event, err := h.webhookService.HandleWebhook(ctx, code, payload)
	if err != nil {
		switch {
		case errors.Is(err, shipping.ErrProviderNotConfigured),
			errors.Is(err, shipping.ErrProviderNotEnabled):
			c.JSON(http.StatusNotFound, WebhookAckResponse{
				Received: false,
				Message:  "provider not configured",
			})
		case errors.Is(err, shipping.ErrWebhookInvalidPayload),
			errors.Is(err, shipping.ErrWebhookSignatureMismatch):
			c.JSON(http.StatusBadRequest, WebhookAckResponse{
				Received: false,
				Message:  "undecodable webhook payload",
			})
		default:
			// The event decoded, so redelivery would not help. Acknowledge
			// and leave the failure to the logs.
			c.JSON(http.StatusOK, WebhookAckResponse{
				Received: true,
				Message:  "event received, processing deferred",
			})
		}
		return
	}

	c.JSON(http.StatusOK, WebhookAckResponse{
		Received:       true,
		EventID:        event.EventID,
		TrackingNumber: event.TrackingNumber,
		Status:         event.Status.String(),
	})
}
