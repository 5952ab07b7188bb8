package reconcile

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/fatflowers/sponsorship/internal/app/service/account"
	"github.com/fatflowers/sponsorship/internal/app/service/ledger"
	"github.com/fatflowers/sponsorship/internal/models"
	"github.com/fatflowers/sponsorship/internal/platform/db/dbtest"
	"github.com/fatflowers/sponsorship/internal/platform/stripe/stripe_api"
	"github.com/fatflowers/sponsorship/internal/platform/stripe/stripe_event"
	"github.com/fatflowers/sponsorship/pkg/billingerr"
	"github.com/fatflowers/sponsorship/pkg/config"
	"github.com/fatflowers/sponsorship/pkg/types"
)

type stubProvider struct {
	subs  map[string]*stripe_api.ProviderSubscription
	err   error
	calls int
}

func (p *stubProvider) GetSubscription(_ context.Context, id string) (*stripe_api.ProviderSubscription, error) {
	p.calls++
	if p.err != nil {
		return nil, billingerr.Upstream("get subscription "+id, p.err)
	}
	sub, ok := p.subs[id]
	if !ok {
		return nil, billingerr.Upstream("get subscription "+id, errors.New("resource_missing"))
	}
	return sub, nil
}

type fixture struct {
	h        *Handlers
	db       *gorm.DB
	ledger   *ledger.Store
	accounts *account.Store
	provider *stubProvider
	now      time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := dbtest.New(t)
	log := zap.NewNop().Sugar()
	f := &fixture{
		db:       db,
		ledger:   ledger.NewStore(db, log),
		accounts: account.NewStore(db, log),
		provider: &stubProvider{subs: map[string]*stripe_api.ProviderSubscription{}},
		now:      time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	cfg := &config.Config{Plans: []*types.SponsorshipPlan{{ID: "monthly", ProviderPriceID: "price_monthly"}}}
	f.h = NewHandlers(f.provider, f.ledger, f.accounts, nil, nil, cfg, log)
	f.h.now = func() time.Time { return f.now }
	return f
}

func newEvent(t *testing.T, id string, typ stripe.EventType, created int64, obj any) *stripe.Event {
	t.Helper()
	raw, err := json.Marshal(obj)
	require.NoError(t, err)
	return &stripe.Event{ID: id, Type: typ, Created: created, Data: &stripe.EventData{Raw: raw}}
}

func (f *fixture) donations(t *testing.T) []*models.Donation {
	t.Helper()
	var rows []*models.Donation
	require.NoError(t, f.db.Order("created_at, id").Find(&rows).Error)
	return rows
}

func (f *fixture) account(t *testing.T, viewerID string) *models.ViewerAccount {
	t.Helper()
	a, err := f.accounts.Get(context.Background(), viewerID)
	require.NoError(t, err)
	return a
}

func (f *fixture) subscription(t *testing.T, id string) *models.Subscription {
	t.Helper()
	s, err := f.ledger.GetSubscription(context.Background(), id)
	require.NoError(t, err)
	return s
}

func (f *fixture) count(t *testing.T, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(model).Count(&n).Error)
	return n
}

func monthlySubscription(id, viewer, missionary string) *stripe_api.ProviderSubscription {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)
	return &stripe_api.ProviderSubscription{
		ID:                 id,
		CustomerID:         "cus_" + viewer,
		Status:             "active",
		Metadata:           map[string]string{"viewerId": viewer, "missionaryId": missionary, "planId": "monthly", "type": "sponsorship"},
		PriceID:            "price_monthly",
		UnitAmount:         2500,
		Currency:           "usd",
		CurrentPeriodStart: &start,
		CurrentPeriodEnd:   &end,
		LatestInvoiceID:    "in_first_" + id,
	}
}

func TestCheckoutCompleted_OneTime(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ev := newEvent(t, "evt_1", stripe_event.EventCheckoutSessionCompleted, 1000, map[string]any{
		"id": "cs_1", "mode": "payment", "customer": "cus_V1", "amount_total": 250000, "currency": "usd",
		"metadata": map[string]string{"viewerId": "V1", "missionaryId": "M1", "type": "one-time", "amount": "2500"},
	})

	out, err := f.h.CheckoutCompleted(ctx, ev)
	require.NoError(t, err)
	require.Equal(t, []string{"cs_1"}, out.DonationIDs)
	require.True(t, out.AccountApplied)

	rows := f.donations(t)
	require.Len(t, rows, 1)
	d := rows[0]
	require.Equal(t, "V1", d.ViewerID)
	require.Equal(t, "M1", d.MissionaryID)
	require.True(t, decimal.NewFromInt(2500).Equal(d.Amount))
	require.Equal(t, int64(250000), d.AmountMinor)
	require.Equal(t, types.DonationStatusCompleted, d.Status)
	require.Equal(t, types.DonationKindOneTime, d.Kind)
	require.Equal(t, "cs_1", *d.SessionID)
	require.Nil(t, d.PlanID)

	a := f.account(t, "V1")
	require.Equal(t, types.AccountStatusActive, a.Status)
	require.Equal(t, "cus_V1", a.CustomerID)
	require.True(t, a.LastPaymentAt.Equal(f.now))

	// redelivery records nothing new
	out, err = f.h.CheckoutCompleted(ctx, ev)
	require.NoError(t, err)
	require.Equal(t, []string{"cs_1"}, out.SkippedDonationIDs)
	require.Len(t, f.donations(t), 1)
	require.Zero(t, f.provider.calls)
}

func TestCheckoutCompleted_OneTimeAmountFromMetadata(t *testing.T) {
	f := newFixture(t)
	ev := newEvent(t, "evt_1", stripe_event.EventCheckoutSessionCompleted, 1000, map[string]any{
		"id": "cs_2", "currency": "usd",
		"metadata": map[string]string{"viewerId": "V1", "missionaryId": "M1", "type": "one-time", "amount": "25.50"},
	})
	_, err := f.h.CheckoutCompleted(context.Background(), ev)
	require.NoError(t, err)

	rows := f.donations(t)
	require.Len(t, rows, 1)
	require.Equal(t, int64(2550), rows[0].AmountMinor)
	require.True(t, decimal.RequireFromString("25.5").Equal(rows[0].Amount))
}

func TestCheckoutCompleted_MissingMetadataWritesNothing(t *testing.T) {
	f := newFixture(t)
	for _, meta := range []map[string]string{
		{"missionaryId": "M1", "type": "one-time", "amount": "10"},
		{"viewerId": "V1", "missionaryId": "M1", "type": "one-time"},
		{"viewerId": "V1", "missionaryId": "M1"},
	} {
		ev := newEvent(t, "evt_x", stripe_event.EventCheckoutSessionCompleted, 1000, map[string]any{
			"id": "cs_x", "subscription": "sub_1", "metadata": meta,
		})
		_, err := f.h.CheckoutCompleted(context.Background(), ev)
		require.ErrorIs(t, err, billingerr.ErrMalformedEvent)
	}
	require.Zero(t, f.count(t, &models.Donation{}))
	require.Zero(t, f.count(t, &models.ViewerAccount{}))
	require.Zero(t, f.provider.calls)
}

func TestCheckoutCompleted_SubscriptionIsUpsertedOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.provider.subs["sub_1"] = monthlySubscription("sub_1", "V1", "M1")
	ev := newEvent(t, "evt_1", stripe_event.EventCheckoutSessionCompleted, 1000, map[string]any{
		"id": "cs_1", "mode": "subscription", "customer": "cus_V1", "subscription": "sub_1",
		"metadata": map[string]string{"viewerId": "V1", "missionaryId": "M1", "planId": "monthly", "type": "sponsorship"},
	})

	for i := 0; i < 2; i++ {
		_, err := f.h.CheckoutCompleted(ctx, ev)
		require.NoError(t, err)
	}
	require.EqualValues(t, 1, f.count(t, &models.Subscription{}))

	sub := f.subscription(t, "sub_1")
	require.Equal(t, types.SubscriptionStatusActive, sub.Status)
	require.Equal(t, "V1", sub.ViewerID)
	require.Equal(t, "M1", sub.MissionaryID)
	require.Equal(t, "monthly", sub.PlanID)
	require.Equal(t, "cus_V1", sub.CustomerID)
	require.True(t, sub.CurrentPeriodEnd.Equal(*f.provider.subs["sub_1"].CurrentPeriodEnd))

	rows := f.donations(t)
	require.Len(t, rows, 1)
	require.Equal(t, "in_first_sub_1", rows[0].ID)
	require.Equal(t, int64(2500), rows[0].AmountMinor)
	require.Equal(t, types.DonationKindSponsorship, rows[0].Kind)
	require.Equal(t, "monthly", *rows[0].PlanID)

	// the first invoice's own delivery does not count the cycle again
	inv := newEvent(t, "evt_2", stripe_event.EventInvoicePaymentSucceeded, 1001, map[string]any{
		"id": "in_first_sub_1", "subscription": "sub_1", "amount_paid": 2500, "currency": "usd",
	})
	out, err := f.h.InvoicePaymentSucceeded(ctx, inv)
	require.NoError(t, err)
	require.Equal(t, []string{"in_first_sub_1"}, out.SkippedDonationIDs)
	require.Len(t, f.donations(t), 1)
	require.Equal(t, types.AccountStatusActive, f.account(t, "V1").Status)
}

func TestCheckoutCompleted_NonOneTimeKindsAreSponsorships(t *testing.T) {
	tests := []struct {
		name string
		kind string
	}{
		{name: "subscription", kind: "subscription"},
		{name: "recurring", kind: "recurring"},
		{name: "empty", kind: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.provider.subs["sub_1"] = monthlySubscription("sub_1", "V1", "M1")
			ev := newEvent(t, "evt_1", stripe_event.EventCheckoutSessionCompleted, 1000, map[string]any{
				"id": "cs_1", "mode": "subscription", "subscription": "sub_1",
				"metadata": map[string]string{"viewerId": "V1", "missionaryId": "M1", "planId": "monthly", "type": tt.kind},
			})

			_, err := f.h.CheckoutCompleted(context.Background(), ev)
			require.NoError(t, err)
			require.NotNil(t, f.subscription(t, "sub_1"))
			rows := f.donations(t)
			require.Len(t, rows, 1)
			require.Equal(t, types.DonationKindSponsorship, rows[0].Kind)
			require.Equal(t, types.AccountStatusActive, f.account(t, "V1").Status)
		})
	}
}

func TestCheckoutCompleted_SubscriptionMirrorsProviderState(t *testing.T) {
	f := newFixture(t)
	ps := monthlySubscription("sub_1", "V1", "M1")
	ps.Status = "trialing"
	ps.LatestInvoiceAmountPaid = 2000
	f.provider.subs["sub_1"] = ps
	ev := newEvent(t, "evt_1", stripe_event.EventCheckoutSessionCompleted, 1000, map[string]any{
		"id": "cs_1", "mode": "subscription", "subscription": "sub_1", "amount_total": 2000,
		"metadata": map[string]string{"viewerId": "V1", "missionaryId": "M1", "planId": "monthly"},
	})

	_, err := f.h.CheckoutCompleted(context.Background(), ev)
	require.NoError(t, err)
	require.Equal(t, types.SubscriptionStatusTrialing, f.subscription(t, "sub_1").Status)

	rows := f.donations(t)
	require.Len(t, rows, 1)
	// the discounted first invoice, not the list price
	require.Equal(t, int64(2000), rows[0].AmountMinor)
}

func TestCheckoutCompleted_SubscriptionUpstreamFailure(t *testing.T) {
	f := newFixture(t)
	f.provider.err = errors.New("stripe unavailable")
	ev := newEvent(t, "evt_1", stripe_event.EventCheckoutSessionCompleted, 1000, map[string]any{
		"id": "cs_1", "subscription": "sub_1",
		"metadata": map[string]string{"viewerId": "V1", "missionaryId": "M1", "planId": "monthly"},
	})
	_, err := f.h.CheckoutCompleted(context.Background(), ev)
	require.ErrorIs(t, err, billingerr.ErrUpstreamFetch)
	require.True(t, billingerr.Retryable(err))
	require.Zero(t, f.count(t, &models.Subscription{}))
	require.Zero(t, f.count(t, &models.Donation{}))
}

func TestInvoicePaymentSucceeded_RecordsMajorUnits(t *testing.T) {
	f := newFixture(t)
	f.provider.subs["S1"] = monthlySubscription("S1", "V2", "M2")
	ev := newEvent(t, "evt_1", stripe_event.EventInvoicePaymentSucceeded, 2000, map[string]any{
		"id": "in_5000", "customer": "cus_V2", "subscription": "S1", "amount_paid": 5000, "currency": "usd",
	})

	_, err := f.h.InvoicePaymentSucceeded(context.Background(), ev)
	require.NoError(t, err)

	rows := f.donations(t)
	require.Len(t, rows, 1)
	d := rows[0]
	require.Equal(t, "V2", d.ViewerID)
	require.Equal(t, "M2", d.MissionaryID)
	require.True(t, decimal.NewFromInt(50).Equal(d.Amount))
	require.Equal(t, types.DonationStatusCompleted, d.Status)
	require.Equal(t, types.DonationKindSponsorship, d.Kind)
	require.Equal(t, "S1", *d.SubscriptionID)
	require.Equal(t, types.AccountStatusActive, f.account(t, "V2").Status)
}

func TestInvoicePaymentSucceeded_FallsBackToStoredSubscription(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.ledger.UpsertSubscription(ctx, &models.Subscription{
		ID: "sub_1", ViewerID: "V1", MissionaryID: "M1", PlanID: "monthly", Status: types.SubscriptionStatusActive, LastEventAt: 1,
	})
	require.NoError(t, err)
	bare := monthlySubscription("sub_1", "", "")
	bare.Metadata = nil
	f.provider.subs["sub_1"] = bare

	// newer API shape: subscription referenced through the invoice parent
	ev := newEvent(t, "evt_1", stripe_event.EventInvoicePaymentSucceeded, 2000, map[string]any{
		"id": "in_2", "amount_paid": 2500, "currency": "usd",
		"parent": map[string]any{"subscription_details": map[string]any{"subscription": "sub_1"}},
	})
	_, err = f.h.InvoicePaymentSucceeded(ctx, ev)
	require.NoError(t, err)

	rows := f.donations(t)
	require.Len(t, rows, 1)
	require.Equal(t, "V1", rows[0].ViewerID)
	require.Equal(t, "M1", rows[0].MissionaryID)
}

func TestInvoicePaymentSucceeded_RecoversPlanFromPrice(t *testing.T) {
	f := newFixture(t)
	ps := monthlySubscription("sub_1", "V1", "M1")
	ps.Metadata = map[string]string{"viewerId": "V1", "missionaryId": "M1"}
	f.provider.subs["sub_1"] = ps

	_, err := f.h.InvoicePaymentSucceeded(context.Background(), newEvent(t, "evt_1", stripe_event.EventInvoicePaymentSucceeded, 2000, map[string]any{
		"id": "in_2", "subscription": "sub_1", "amount_paid": 2500, "currency": "usd",
	}))
	require.NoError(t, err)

	rows := f.donations(t)
	require.Len(t, rows, 1)
	require.NotNil(t, rows[0].PlanID)
	require.Equal(t, "monthly", *rows[0].PlanID)
}

func TestInvoicePaymentSucceeded_UnknownPriceLeavesPlanEmpty(t *testing.T) {
	f := newFixture(t)
	ps := monthlySubscription("sub_1", "V1", "M1")
	ps.Metadata = map[string]string{"viewerId": "V1", "missionaryId": "M1"}
	ps.PriceID = "price_retired"
	f.provider.subs["sub_1"] = ps

	_, err := f.h.InvoicePaymentSucceeded(context.Background(), newEvent(t, "evt_1", stripe_event.EventInvoicePaymentSucceeded, 2000, map[string]any{
		"id": "in_2", "subscription": "sub_1", "amount_paid": 2500, "currency": "usd",
	}))
	require.NoError(t, err)
	require.Nil(t, f.donations(t)[0].PlanID)
}

func TestInvoicePaymentSucceeded_UnknownSponsorIsMalformed(t *testing.T) {
	f := newFixture(t)
	bare := monthlySubscription("sub_1", "", "")
	bare.Metadata = map[string]string{}
	f.provider.subs["sub_1"] = bare
	ev := newEvent(t, "evt_1", stripe_event.EventInvoicePaymentSucceeded, 2000, map[string]any{
		"id": "in_2", "subscription": "sub_1", "amount_paid": 2500, "currency": "usd",
	})
	_, err := f.h.InvoicePaymentSucceeded(context.Background(), ev)
	require.ErrorIs(t, err, billingerr.ErrMalformedEvent)
	require.Zero(t, f.count(t, &models.Donation{}))
}

func TestInvoice_WithoutSubscriptionIsIgnored(t *testing.T) {
	f := newFixture(t)
	ev := newEvent(t, "evt_1", stripe_event.EventInvoicePaymentFailed, 2000, map[string]any{
		"id": "in_manual", "amount_due": 900, "currency": "usd",
	})
	out, err := f.h.InvoicePaymentFailed(context.Background(), ev)
	require.NoError(t, err)
	require.Empty(t, out.DonationIDs)
	require.Zero(t, f.provider.calls)
}

func TestInvoicePaymentFailed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.provider.subs["sub_1"] = monthlySubscription("sub_1", "V1", "M1")

	for _, id := range []string{"evt_f1", "evt_f2"} {
		ev := newEvent(t, id, stripe_event.EventInvoicePaymentFailed, 3000, map[string]any{
			"id": "in_9", "subscription": "sub_1", "amount_due": 2500, "amount_paid": 0, "currency": "usd",
		})
		_, err := f.h.InvoicePaymentFailed(ctx, ev)
		require.NoError(t, err)
	}

	rows := f.donations(t)
	require.Len(t, rows, 2)
	for _, d := range rows {
		require.Equal(t, types.DonationStatusFailed, d.Status)
		require.Equal(t, int64(2500), d.AmountMinor)
		require.True(t, decimal.NewFromInt(25).Equal(d.Amount))
		require.Equal(t, "M1", d.MissionaryID)
		require.Equal(t, "in_9", *d.InvoiceID)
	}
	a := f.account(t, "V1")
	require.Equal(t, types.AccountStatusPaymentFailed, a.Status)
	require.Nil(t, a.LastPaymentAt)
	require.True(t, a.LastPaymentAttemptAt.Equal(f.now))
}

func subscriptionPayload(id, status string, viewer string, extra map[string]any) map[string]any {
	p := map[string]any{
		"id": id, "customer": "cus_1", "status": status,
		"current_period_start": 1772323200, "current_period_end": 1775001600,
		"metadata": map[string]string{"viewerId": viewer},
	}
	for k, v := range extra {
		p[k] = v
	}
	return p
}

func TestSubscriptionUpdated_MapsAccountStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.h.SubscriptionUpdated(ctx, newEvent(t, "evt_1", stripe_event.EventCustomerSubscriptionUpdated, 100,
		subscriptionPayload("sub_1", "active", "V1", nil)))
	require.NoError(t, err)
	require.Equal(t, types.AccountStatusActive, f.account(t, "V1").Status)

	_, err = f.h.SubscriptionUpdated(ctx, newEvent(t, "evt_2", stripe_event.EventCustomerSubscriptionUpdated, 200,
		subscriptionPayload("sub_1", "past_due", "", nil)))
	require.NoError(t, err)
	require.Equal(t, types.AccountStatusInactive, f.account(t, "V1").Status)

	sub := f.subscription(t, "sub_1")
	require.Equal(t, types.SubscriptionStatusPastDue, sub.Status)
	require.Equal(t, int64(1775001600), sub.CurrentPeriodEnd.Unix())
}

func TestSubscriptionUpdated_RecoversPlanFromPrice(t *testing.T) {
	f := newFixture(t)
	_, err := f.h.SubscriptionUpdated(context.Background(), newEvent(t, "evt_1", stripe_event.EventCustomerSubscriptionUpdated, 100,
		subscriptionPayload("sub_1", "active", "V1", map[string]any{
			"items": map[string]any{"data": []any{map[string]any{"price": map[string]any{"id": "price_monthly"}}}},
		})))
	require.NoError(t, err)
	require.Equal(t, "monthly", f.subscription(t, "sub_1").PlanID)
}

func TestSubscriptionUpdated_UnknownViewerIsMalformed(t *testing.T) {
	f := newFixture(t)
	_, err := f.h.SubscriptionUpdated(context.Background(), newEvent(t, "evt_1", stripe_event.EventCustomerSubscriptionUpdated, 100,
		subscriptionPayload("sub_1", "active", "", nil)))
	require.ErrorIs(t, err, billingerr.ErrMalformedEvent)
	require.Zero(t, f.count(t, &models.Subscription{}))
}

func TestSubscriptionDeleted_IsNotReactivatedByStaleUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.h.SubscriptionUpdated(ctx, newEvent(t, "evt_1", stripe_event.EventCustomerSubscriptionUpdated, 100,
		subscriptionPayload("sub_1", "active", "V1", nil)))
	require.NoError(t, err)

	out, err := f.h.SubscriptionDeleted(ctx, newEvent(t, "evt_3", stripe_event.EventCustomerSubscriptionDeleted, 300,
		subscriptionPayload("sub_1", "canceled", "V1", map[string]any{"canceled_at": 290})))
	require.NoError(t, err)
	require.True(t, out.AccountApplied)

	sub := f.subscription(t, "sub_1")
	require.Equal(t, types.SubscriptionStatusCanceled, sub.Status)
	require.Equal(t, int64(290), sub.CanceledAt.Unix())
	require.Equal(t, types.AccountStatusCanceled, f.account(t, "V1").Status)

	// an update issued before the deletion arrives late
	out, err = f.h.SubscriptionUpdated(ctx, newEvent(t, "evt_2", stripe_event.EventCustomerSubscriptionUpdated, 200,
		subscriptionPayload("sub_1", "active", "V1", nil)))
	require.NoError(t, err)
	require.False(t, *out.SubscriptionApplied)
	require.False(t, out.AccountApplied)

	require.Equal(t, types.SubscriptionStatusCanceled, f.subscription(t, "sub_1").Status)
	require.Equal(t, types.AccountStatusCanceled, f.account(t, "V1").Status)

	// even a later-stamped update cannot resurrect it
	_, err = f.h.SubscriptionUpdated(ctx, newEvent(t, "evt_4", stripe_event.EventCustomerSubscriptionUpdated, 400,
		subscriptionPayload("sub_1", "active", "V1", nil)))
	require.NoError(t, err)
	require.Equal(t, types.SubscriptionStatusCanceled, f.subscription(t, "sub_1").Status)
	require.Equal(t, types.AccountStatusCanceled, f.account(t, "V1").Status)
}

func TestSubscriptionDeleted_DefaultsCanceledAtToNow(t *testing.T) {
	f := newFixture(t)
	_, err := f.h.SubscriptionDeleted(context.Background(), newEvent(t, "evt_1", stripe_event.EventCustomerSubscriptionDeleted, 100,
		subscriptionPayload("sub_1", "canceled", "V1", nil)))
	require.NoError(t, err)
	require.True(t, f.subscription(t, "sub_1").CanceledAt.Equal(f.now))
}

func TestAccount_StalePaymentFailureDoesNotRegress(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.provider.subs["sub_1"] = monthlySubscription("sub_1", "V1", "M1")

	_, err := f.h.InvoicePaymentSucceeded(ctx, newEvent(t, "evt_ok", stripe_event.EventInvoicePaymentSucceeded, 500, map[string]any{
		"id": "in_2", "subscription": "sub_1", "amount_paid": 2500, "currency": "usd",
	}))
	require.NoError(t, err)

	out, err := f.h.InvoicePaymentFailed(ctx, newEvent(t, "evt_old_fail", stripe_event.EventInvoicePaymentFailed, 400, map[string]any{
		"id": "in_1", "subscription": "sub_1", "amount_due": 2500, "currency": "usd",
	}))
	require.NoError(t, err)
	require.False(t, out.AccountApplied)

	// history is still extended, status is not regressed
	require.Len(t, f.donations(t), 2)
	require.Equal(t, types.AccountStatusActive, f.account(t, "V1").Status)
}

func TestRoutes(t *testing.T) {
	routes := newFixture(t).h.Routes()
	require.Len(t, routes, 5)
	for _, typ := range []stripe.EventType{
		stripe_event.EventCheckoutSessionCompleted,
		stripe_event.EventInvoicePaymentSucceeded,
		stripe_event.EventInvoicePaymentFailed,
		stripe_event.EventCustomerSubscriptionUpdated,
		stripe_event.EventCustomerSubscriptionDeleted,
	} {
		require.Contains(t, routes, typ)
	}
	require.NotContains(t, routes, stripe.EventType("ping.test"))
}
