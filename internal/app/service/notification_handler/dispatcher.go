// Package notification_handler runs the webhook pipeline: authenticate the
// delivery, drop redeliveries, route by event type, reconcile, and record an
// audit trail of what happened.
package notification_handler

import (
	"context"
	"encoding/json"
	"time"

	"github.com/samber/lo"
	"github.com/stripe/stripe-go/v82"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/fatflowers/sponsorship/internal/app/service/eventguard"
	notificationlog "github.com/fatflowers/sponsorship/internal/app/service/notification_log"
	"github.com/fatflowers/sponsorship/internal/app/service/reconcile"
	"github.com/fatflowers/sponsorship/internal/models"
	"github.com/fatflowers/sponsorship/internal/platform/stripe/stripe_event"
	"github.com/fatflowers/sponsorship/pkg/billingerr"
	"github.com/fatflowers/sponsorship/pkg/config"
	"github.com/fatflowers/sponsorship/pkg/logctx"
	"github.com/fatflowers/sponsorship/pkg/metrics"
	"github.com/fatflowers/sponsorship/pkg/types"
)

type Outcome string

const (
	OutcomeProcessed Outcome = "processed"
	OutcomeIgnored   Outcome = "ignored"
	OutcomeDuplicate Outcome = "duplicate"
	OutcomeRejected  Outcome = "rejected"
	OutcomeFailed    Outcome = "failed"
)

// Result describes how one delivery was handled.
type Result struct {
	EventID   string
	EventType stripe.EventType
	Outcome   Outcome
}

// NotificationLog persists delivery audit rows.
type NotificationLog interface {
	Save(ctx context.Context, log *models.PaymentNotificationLog)
}

type Dispatcher struct {
	secret    string
	tolerance time.Duration
	timeout   time.Duration

	routes   map[stripe.EventType]reconcile.HandlerFunc
	guard    eventguard.Guard
	notifSvc NotificationLog
	metrics  *metrics.WebhookMetrics
	Logger   *zap.SugaredLogger
}

func NewDispatcher(
	cfg *config.Config,
	handlers *reconcile.Handlers,
	guard eventguard.Guard,
	notif *notificationlog.Service,
	m *metrics.WebhookMetrics,
	log *zap.SugaredLogger,
) *Dispatcher {
	return newDispatcher(cfg, handlers.Routes(), guard, notif, m, log)
}

func newDispatcher(
	cfg *config.Config,
	routes map[stripe.EventType]reconcile.HandlerFunc,
	guard eventguard.Guard,
	notif NotificationLog,
	m *metrics.WebhookMetrics,
	log *zap.SugaredLogger,
) *Dispatcher {
	if guard == nil {
		guard = eventguard.Nop{}
	}
	timeout := cfg.Webhook.ProcessTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Dispatcher{
		secret:    cfg.Stripe.WebhookSecret,
		tolerance: cfg.Stripe.WebhookTolerance,
		timeout:   timeout,
		routes:    routes,
		guard:     guard,
		notifSvc:  notif,
		metrics:   m,
		Logger:    log,
	}
}

// HandleWebhook processes one raw delivery. A nil error means the delivery
// should be acknowledged; otherwise billingerr.HTTPStatus(err) tells the
// caller whether the provider should retry.
func (d *Dispatcher) HandleWebhook(ctx context.Context, payload []byte, signature string) (*Result, error) {
	start := time.Now()

	event, err := stripe_event.Verify(payload, signature, d.secret, d.tolerance)
	if err != nil {
		logctx.FromCtx(ctx, d.Logger).Warnw("webhook_rejected", "err", err)
		d.metrics.ObserveEvent("unknown", string(OutcomeRejected), start)
		d.saveLog(ctx, nil, models.PaymentNotificationLogStatusRejected, nil, err)
		return &Result{Outcome: OutcomeRejected}, err
	}

	ctx = logctx.WithEventID(ctx, event.ID)
	lg := logctx.FromCtx(ctx, d.Logger).With("event_type", event.Type)
	res := &Result{EventID: event.ID, EventType: event.Type}

	if d.guard.Seen(ctx, event.ID) {
		lg.Infow("webhook_duplicate_skipped")
		res.Outcome = OutcomeDuplicate
		d.metrics.ObserveEvent(string(event.Type), string(res.Outcome), start)
		d.saveLog(ctx, event, models.PaymentNotificationLogStatusDuplicate, nil, nil)
		return res, nil
	}

	handle, ok := d.routes[event.Type]
	if !ok {
		lg.Infow("webhook_event_ignored")
		res.Outcome = OutcomeIgnored
		d.metrics.ObserveEvent(string(event.Type), string(res.Outcome), start)
		d.saveLog(ctx, event, models.PaymentNotificationLogStatusIgnored, nil, nil)
		return res, nil
	}

	d.saveLog(ctx, event, models.PaymentNotificationLogStatusReceived, nil, nil)
	lg.Infow("webhook_received")

	pctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	out, err := handle(pctx, event)
	err = billingerr.Classify("handle "+string(event.Type), err)
	if err != nil {
		res.Outcome = OutcomeFailed
		lg.Errorw("webhook_handle_failed", "err", err, "retryable", billingerr.Retryable(err))
		d.metrics.ObserveEvent(string(event.Type), string(res.Outcome), start)
		d.saveLog(ctx, event, models.PaymentNotificationLogStatusHandleFailed, out, err)
		return res, err
	}

	d.guard.MarkDone(ctx, event.ID)
	res.Outcome = OutcomeProcessed
	lg.Infow("webhook_handled", "outcome", out)
	d.metrics.ObserveEvent(string(event.Type), string(res.Outcome), start)
	d.saveLog(ctx, event, models.PaymentNotificationLogStatusHandled, out, nil)
	return res, nil
}

func (d *Dispatcher) saveLog(ctx context.Context, event *stripe.Event, status models.PaymentNotificationLogStatus, out *reconcile.Outcome, resErr error) {
	if d.notifSvc == nil {
		return
	}
	row := &models.PaymentNotificationLog{
		ProviderID:       types.PaymentProviderStripe,
		TraceID:          logctx.TraceID(ctx),
		Status:           status,
		NotificationTime: time.Now(),
	}
	if event != nil {
		row.EventID = event.ID
		row.EventType = string(event.Type)
		if event.Created > 0 {
			row.NotificationTime = time.Unix(event.Created, 0).UTC()
		}
		if event.Data != nil && len(event.Data.Raw) > 0 {
			row.Data = datatypes.JSON(event.Data.Raw)
		}
	}
	if out != nil {
		row.ViewerID = lo.EmptyableToPtr(out.ViewerID)
	}
	if out != nil || resErr != nil {
		resMap := map[string]any{"outcome": out}
		if resErr != nil {
			resMap["error"] = resErr.Error()
		}
		resBytes, _ := json.Marshal(resMap)
		j := datatypes.JSON(resBytes)
		row.Result = &j
	}
	d.notifSvc.Save(ctx, row)
}

var Module = fx.Options(
	fx.Provide(NewDispatcher),
)
