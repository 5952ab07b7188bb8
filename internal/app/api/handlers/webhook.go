package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	nh "github.com/fatflowers/sponsorship/internal/app/service/notification_handler"
	"github.com/fatflowers/sponsorship/internal/platform/stripe/stripe_event"
	"github.com/fatflowers/sponsorship/pkg/billingerr"
	"github.com/fatflowers/sponsorship/pkg/logctx"
	"github.com/fatflowers/sponsorship/pkg/response"
)

const defaultMaxWebhookBody = 64 << 10

// WebhookProcessor handles one raw, unverified provider delivery.
type WebhookProcessor interface {
	HandleWebhook(ctx context.Context, payload []byte, signature string) (*nh.Result, error)
}

// @Summary      Stripe Webhook
// @Description  Receives Stripe events. The raw body is authenticated with the Stripe-Signature header before it is decoded. 2xx acknowledges the event; 400 rejects it permanently; 500 asks Stripe to redeliver.
// @Tags         Webhook
// @Accept       json
// @Produce      json
// @Param        Stripe-Signature header string true "Stripe webhook signature"
// @Param        payload body object true "Stripe event"
// @Success      200  {object}  response.WebhookAck
// @Failure      400  {object}  response.WebhookAck
// @Failure      500  {object}  response.WebhookAck
// @Router       /api/v2/payment/webhook/stripe [post]
func ApiStripeWebhook(p WebhookProcessor, maxBody int64, log *zap.SugaredLogger) gin.HandlerFunc {
	if maxBody <= 0 {
		maxBody = defaultMaxWebhookBody
	}
	return func(c *gin.Context) {
		lg := logctx.FromGin(c, log)

		payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxBody))
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				lg.Warnw("webhook_body_too_large", "limit", maxBody)
				c.JSON(http.StatusRequestEntityTooLarge, response.WebhookAck{Error: "payload too large"})
				return
			}
			lg.Warnw("webhook_body_read_failed", "err", err)
			c.JSON(http.StatusBadRequest, response.WebhookAck{Error: "unreadable body"})
			return
		}

		res, err := p.HandleWebhook(c.Request.Context(), payload, c.GetHeader(stripe_event.SignatureHeader))
		if err != nil {
			status := billingerr.HTTPStatus(err)
			ack := response.WebhookAck{Error: "processing failed"}
			if status < http.StatusInternalServerError {
				ack.Error = err.Error()
			}
			c.JSON(status, ack)
			return
		}
		if res != nil {
			c.Header("X-Webhook-Outcome", string(res.Outcome))
		}
		c.JSON(http.StatusOK, response.WebhookAck{Received: true})
	}
}

func RegisterPaymentWebhookRoutes(r gin.IRouter, p WebhookProcessor, maxBody int64, log *zap.SugaredLogger) {
	// Mount under provided group, expected at "/api/v2/payment"
	r.POST("/webhook/stripe", ApiStripeWebhook(p, maxBody, log))
}
