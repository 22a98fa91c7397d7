package public

import (
	"io"
	"time"

	"github.com/dropforge/internal/http/response"
	"github.com/dropforge/internal/payment/stripe"

	"github.com/gin-gonic/gin"
)

// PaymentWebhook handles gateway events. The signature is verified against
// the raw body before anything is parsed out of it.
func (h *Handler) PaymentWebhook(c *gin.Context) {
	log := requestLog(c)
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		log.Warnw("payment_webhook_body_read_failed", "error", err)
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	headers := make(map[string]string)
	for key, values := range c.Request.Header {
		if len(values) == 0 {
			continue
		}
		headers[key] = values[0]
	}

	cfg := &stripe.Config{
		SecretKey:               h.Config.Payment.SecretKey,
		WebhookSecret:           h.Config.Payment.WebhookSecret,
		SuccessURL:              h.Config.Payment.SuccessURL,
		CancelURL:               h.Config.Payment.CancelURL,
		APIBaseURL:              h.Config.Payment.APIBase,
		WebhookToleranceSeconds: h.Config.Payment.ToleranceSeconds,
	}
	cfg.Normalize()

	event, err := stripe.VerifyAndParseWebhook(cfg, headers, body, time.Now())
	if err != nil {
		log.Warnw("payment_webhook_verify_failed", "error", err)
		respondError(c, response.CodeBadRequest, "webhook verification failed", err)
		return
	}

	log.Infow("payment_webhook_received",
		"event_id", event.EventID,
		"event_type", event.EventType,
		"order_id", event.OrderID,
		"session_id", event.SessionID,
		"status", event.Status,
	)

	if err := h.SettlementService.HandlePaymentConfirmed(c.Request.Context(), event); err != nil {
		// acked with an error payload; the gateway retries on its own schedule
		log.Warnw("payment_webhook_handle_failed",
			"event_id", event.EventID,
			"error", err,
		)
		respondError(c, response.CodeInternal, "webhook processing failed", err)
		return
	}

	response.Success(c, gin.H{
		"accepted":   true,
		"event_type": event.EventType,
	})
}
