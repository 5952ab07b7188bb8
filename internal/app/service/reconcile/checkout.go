package reconcile

import (
	"context"

	"github.com/samber/lo"
	"github.com/stripe/stripe-go/v82"

	"github.com/fatflowers/sponsorship/internal/app/service/account"
	"github.com/fatflowers/sponsorship/internal/models"
	"github.com/fatflowers/sponsorship/internal/platform/stripe/stripe_event"
	"github.com/fatflowers/sponsorship/pkg/billingerr"
	"github.com/fatflowers/sponsorship/pkg/logctx"
	"github.com/fatflowers/sponsorship/pkg/tool"
	"github.com/fatflowers/sponsorship/pkg/types"
)

// CheckoutCompleted records a one-time donation, or mirrors the subscription
// a sponsorship checkout created together with its first-cycle donation.
func (h *Handlers) CheckoutCompleted(ctx context.Context, event *stripe.Event) (*Outcome, error) {
	sess, err := stripe_event.DecodeCheckoutSession(event)
	if err != nil {
		return nil, err
	}
	md, err := stripe_event.ParseCheckoutMetadata(sess.Metadata)
	if err != nil {
		return nil, err
	}
	if md.IsOneTime() {
		return h.oneTimeCheckout(ctx, event, sess, md)
	}
	return h.subscriptionCheckout(ctx, event, sess, md)
}

func (h *Handlers) oneTimeCheckout(ctx context.Context, event *stripe.Event, sess *stripe_event.CheckoutSession, md stripe_event.SponsorMetadata) (*Outcome, error) {
	currency := lo.CoalesceOrEmpty(sess.Currency, h.defaultCurrency)
	var minor int64
	if sess.AmountTotal != nil {
		minor = *sess.AmountTotal
	} else {
		major, err := md.AmountMajor()
		if err != nil {
			return nil, err
		}
		minor = types.MajorToMinor(major, currency)
	}

	d := &models.Donation{
		ID:           sess.ID,
		ProviderID:   types.PaymentProviderStripe,
		ViewerID:     md.ViewerID,
		MissionaryID: md.MissionaryID,
		AmountMinor:  minor,
		Amount:       types.MinorToMajor(minor, currency),
		Currency:     currency,
		Status:       types.DonationStatusCompleted,
		Kind:         types.DonationKindOneTime,
		SessionID:    lo.ToPtr(sess.ID),
		EventID:      event.ID,
		Metadata:     toJSONMap(sess.Metadata),
	}
	out := &Outcome{ViewerID: md.ViewerID}
	if err := h.appendDonation(ctx, d, out); err != nil {
		return out, err
	}

	now := h.nowUTC()
	return out, h.updateAccount(ctx, out, &account.Update{
		ViewerID:     md.ViewerID,
		CustomerID:   sess.Customer,
		Status:       types.AccountStatusActive,
		PaidAt:       now,
		AttemptedAt:  now,
		EventID:      event.ID,
		EventCreated: h.eventTime(event),
	})
}

func (h *Handlers) subscriptionCheckout(ctx context.Context, event *stripe.Event, sess *stripe_event.CheckoutSession, md stripe_event.SponsorMetadata) (*Outcome, error) {
	if sess.Subscription == "" {
		return nil, billingerr.Malformed("sponsorship checkout %s without subscription", sess.ID)
	}
	ps, err := h.provider.GetSubscription(ctx, sess.Subscription)
	if err != nil {
		return nil, err
	}
	lg := logctx.FromCtx(ctx, h.log)

	out := &Outcome{ViewerID: md.ViewerID, SubscriptionID: ps.ID}
	customer := lo.CoalesceOrEmpty(ps.CustomerID, sess.Customer)
	metadata := toJSONMap(ps.Metadata)
	for k, v := range md.Map() {
		metadata[k] = v
	}
	sub := &models.Subscription{
		ID:                 ps.ID,
		ProviderID:         types.PaymentProviderStripe,
		ViewerID:           md.ViewerID,
		MissionaryID:       md.MissionaryID,
		PlanID:             md.PlanID,
		CustomerID:         customer,
		Status:             types.SubscriptionStatus(lo.CoalesceOrEmpty(ps.Status, string(types.SubscriptionStatusActive))),
		CurrentPeriodStart: ps.CurrentPeriodStart,
		CurrentPeriodEnd:   ps.CurrentPeriodEnd,
		LastEventAt:        h.eventTime(event),
		Metadata:           metadata,
	}
	before, err := h.ledger.GetSubscription(ctx, ps.ID)
	if err != nil {
		return out, err
	}
	if _, err := h.upsertSubscription(ctx, event, before, sub, types.SubscriptionChangeReasonCheckout, out); err != nil {
		return out, err
	}

	// first billing cycle; keyed by the first invoice so its
	// invoice.payment_succeeded delivery does not count it again
	currency := lo.CoalesceOrEmpty(ps.Currency, sess.Currency, h.defaultCurrency)
	minor := lo.CoalesceOrEmpty(ps.LatestInvoiceAmountPaid, ps.UnitAmount)
	if minor == 0 && sess.AmountTotal != nil {
		minor = *sess.AmountTotal
	}
	id := tool.DerivedID(ps.ID, "initial")
	var invoiceID *string
	if ps.LatestInvoiceID != "" {
		id = ps.LatestInvoiceID
		invoiceID = lo.ToPtr(ps.LatestInvoiceID)
	}
	first := &models.Donation{
		ID:             id,
		ProviderID:     types.PaymentProviderStripe,
		ViewerID:       md.ViewerID,
		MissionaryID:   md.MissionaryID,
		AmountMinor:    minor,
		Amount:         types.MinorToMajor(minor, currency),
		Currency:       currency,
		Status:         types.DonationStatusCompleted,
		Kind:           types.DonationKindSponsorship,
		PlanID:         lo.EmptyableToPtr(md.PlanID),
		SessionID:      lo.ToPtr(sess.ID),
		InvoiceID:      invoiceID,
		SubscriptionID: lo.ToPtr(ps.ID),
		EventID:        event.ID,
		Metadata:       toJSONMap(sess.Metadata),
	}
	if err := h.appendDonation(ctx, first, out); err != nil {
		return out, err
	}
	lg.Infow("sponsorship_checkout_reconciled", "subscription_id", ps.ID, "viewer_id", md.ViewerID, "donation_id", id)

	now := h.nowUTC()
	return out, h.updateAccount(ctx, out, &account.Update{
		ViewerID:     md.ViewerID,
		CustomerID:   customer,
		Status:       types.AccountStatusActive,
		PaidAt:       now,
		AttemptedAt:  now,
		EventID:      event.ID,
		EventCreated: h.eventTime(event),
	})
}
