package notification_handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
	"go.uber.org/zap"

	"github.com/fatflowers/sponsorship/internal/app/service/reconcile"
	"github.com/fatflowers/sponsorship/internal/models"
	"github.com/fatflowers/sponsorship/pkg/billingerr"
	"github.com/fatflowers/sponsorship/pkg/config"
)

const testSecret = "whsec_dispatch"

type recordingLog struct {
	mu   sync.Mutex
	rows []*models.PaymentNotificationLog
}

func (r *recordingLog) Save(_ context.Context, row *models.PaymentNotificationLog) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = append(r.rows, row)
}

func (r *recordingLog) statuses() []models.PaymentNotificationLogStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.PaymentNotificationLogStatus, 0, len(r.rows))
	for _, row := range r.rows {
		out = append(out, row.Status)
	}
	return out
}

type memGuard struct {
	mu   sync.Mutex
	done map[string]bool
}

func (g *memGuard) Seen(_ context.Context, id string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.done[id]
}

func (g *memGuard) MarkDone(_ context.Context, id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.done[id] = true
}

type harness struct {
	d     *Dispatcher
	log   *recordingLog
	guard *memGuard
	calls int
}

func newHarness(t *testing.T, handle reconcile.HandlerFunc) *harness {
	t.Helper()
	h := &harness{log: &recordingLog{}, guard: &memGuard{done: map[string]bool{}}}
	cfg := &config.Config{}
	cfg.Stripe.WebhookSecret = testSecret
	cfg.Stripe.WebhookTolerance = 5 * time.Minute
	cfg.Webhook.ProcessTimeout = 50 * time.Millisecond
	routes := map[stripe.EventType]reconcile.HandlerFunc{
		"invoice.payment_succeeded": func(ctx context.Context, ev *stripe.Event) (*reconcile.Outcome, error) {
			h.calls++
			return handle(ctx, ev)
		},
	}
	h.d = newDispatcher(cfg, routes, h.guard, h.log, nil, zap.NewNop().Sugar())
	return h
}

func signedEvent(t *testing.T, id, typ string) ([]byte, string) {
	t.Helper()
	payload := []byte(fmt.Sprintf(`{"id":%q,"object":"event","type":%q,"created":%d,"data":{"object":{"id":"in_1"}}}`,
		id, typ, time.Now().Unix()))
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    testSecret,
		Timestamp: time.Now(),
	})
	return payload, signed.Header
}

func succeed(context.Context, *stripe.Event) (*reconcile.Outcome, error) {
	return &reconcile.Outcome{ViewerID: "V1", DonationIDs: []string{"in_1"}}, nil
}

func TestHandleWebhook_ProcessesRoutedEvent(t *testing.T) {
	h := newHarness(t, succeed)
	payload, sig := signedEvent(t, "evt_1", "invoice.payment_succeeded")

	res, err := h.d.HandleWebhook(context.Background(), payload, sig)
	require.NoError(t, err)
	require.Equal(t, OutcomeProcessed, res.Outcome)
	require.Equal(t, "evt_1", res.EventID)
	require.Equal(t, 1, h.calls)
	require.True(t, h.guard.done["evt_1"])

	require.Equal(t, []models.PaymentNotificationLogStatus{
		models.PaymentNotificationLogStatusReceived,
		models.PaymentNotificationLogStatusHandled,
	}, h.log.statuses())
	handled := h.log.rows[1]
	require.Equal(t, "V1", *handled.ViewerID)
	require.JSONEq(t, `{"id":"in_1"}`, string(handled.Data))
	require.NotNil(t, handled.Result)
}

func TestHandleWebhook_RedeliveryIsDuplicate(t *testing.T) {
	h := newHarness(t, succeed)
	payload, sig := signedEvent(t, "evt_1", "invoice.payment_succeeded")

	_, err := h.d.HandleWebhook(context.Background(), payload, sig)
	require.NoError(t, err)
	res, err := h.d.HandleWebhook(context.Background(), payload, sig)
	require.NoError(t, err)
	require.Equal(t, OutcomeDuplicate, res.Outcome)
	require.Equal(t, 1, h.calls)
}

func TestHandleWebhook_BadSignatureIsRejected(t *testing.T) {
	h := newHarness(t, succeed)
	payload, _ := signedEvent(t, "evt_1", "invoice.payment_succeeded")

	for _, sig := range []string{"", "t=1,v1=deadbeef"} {
		res, err := h.d.HandleWebhook(context.Background(), payload, sig)
		require.ErrorIs(t, err, billingerr.ErrInvalidSignature)
		require.Equal(t, http.StatusBadRequest, billingerr.HTTPStatus(err))
		require.Equal(t, OutcomeRejected, res.Outcome)
	}
	require.Zero(t, h.calls)
	require.Equal(t, []models.PaymentNotificationLogStatus{
		models.PaymentNotificationLogStatusRejected,
		models.PaymentNotificationLogStatusRejected,
	}, h.log.statuses())
}

func TestHandleWebhook_UnknownTypeIsIgnored(t *testing.T) {
	h := newHarness(t, succeed)
	payload, sig := signedEvent(t, "evt_2", "customer.created")

	res, err := h.d.HandleWebhook(context.Background(), payload, sig)
	require.NoError(t, err)
	require.Equal(t, OutcomeIgnored, res.Outcome)
	require.Zero(t, h.calls)
	require.Equal(t, []models.PaymentNotificationLogStatus{models.PaymentNotificationLogStatusIgnored}, h.log.statuses())
}

func TestHandleWebhook_HandlerErrors(t *testing.T) {
	tests := []struct {
		name       string
		handle     reconcile.HandlerFunc
		wantErr    error
		wantStatus int
	}{
		{
			name: "malformed",
			handle: func(context.Context, *stripe.Event) (*reconcile.Outcome, error) {
				return nil, billingerr.Malformed("missing viewerId")
			},
			wantErr:    billingerr.ErrMalformedEvent,
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "upstream",
			handle: func(context.Context, *stripe.Event) (*reconcile.Outcome, error) {
				return nil, billingerr.Upstream("get subscription", errors.New("timeout"))
			},
			wantErr:    billingerr.ErrUpstreamFetch,
			wantStatus: http.StatusInternalServerError,
		},
		{
			name: "deadline",
			handle: func(ctx context.Context, _ *stripe.Event) (*reconcile.Outcome, error) {
				<-ctx.Done()
				return nil, ctx.Err()
			},
			wantErr:    billingerr.ErrStore,
			wantStatus: http.StatusInternalServerError,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, tt.handle)
			payload, sig := signedEvent(t, "evt_3", "invoice.payment_succeeded")

			res, err := h.d.HandleWebhook(context.Background(), payload, sig)
			require.ErrorIs(t, err, tt.wantErr)
			require.Equal(t, tt.wantStatus, billingerr.HTTPStatus(err))
			require.Equal(t, OutcomeFailed, res.Outcome)
			require.False(t, h.guard.done["evt_3"])
			require.Equal(t, []models.PaymentNotificationLogStatus{
				models.PaymentNotificationLogStatusReceived,
				models.PaymentNotificationLogStatusHandleFailed,
			}, h.log.statuses())
		})
	}
}
