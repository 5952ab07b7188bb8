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

// sponsor identifies who an invoice belongs to.
type sponsor struct {
	ViewerID     string
	MissionaryID string
	PlanID       string
	CustomerID   string
}

// resolveSponsor reads the sponsor from the provider subscription metadata,
// falling back to the invoice's metadata snapshot and then to the stored
// subscription row. A plan missing everywhere is recovered from the price. The provider lookup failing is retryable; no sponsor
// anywhere is a malformed event.
func (h *Handlers) resolveSponsor(ctx context.Context, subID string, inv *stripe_event.Invoice) (*sponsor, error) {
	ps, err := h.provider.GetSubscription(ctx, subID)
	if err != nil {
		return nil, err
	}
	s := &sponsor{CustomerID: lo.CoalesceOrEmpty(ps.CustomerID, inv.Customer)}
	for _, meta := range []map[string]string{ps.Metadata, inv.SubscriptionMetadata()} {
		md := stripe_event.NewSponsorMetadata(meta)
		if md.ViewerID != "" {
			s.ViewerID, s.MissionaryID, s.PlanID = md.ViewerID, md.MissionaryID, md.PlanID
			break
		}
	}
	if s.ViewerID == "" || s.MissionaryID == "" {
		local, err := h.ledger.GetSubscription(ctx, subID)
		if err != nil {
			return nil, err
		}
		if local != nil {
			s.ViewerID = lo.CoalesceOrEmpty(s.ViewerID, local.ViewerID)
			s.MissionaryID = lo.CoalesceOrEmpty(s.MissionaryID, local.MissionaryID)
			s.PlanID = lo.CoalesceOrEmpty(s.PlanID, local.PlanID)
			s.CustomerID = lo.CoalesceOrEmpty(s.CustomerID, local.CustomerID)
		}
	}
	if s.ViewerID == "" {
		return nil, billingerr.Malformed("subscription %s has no %s metadata", subID, stripe_event.MetaViewerID)
	}
	s.PlanID = lo.CoalesceOrEmpty(s.PlanID, h.planForPrice(ps.PriceID))
	return s, nil
}

// InvoicePaymentSucceeded appends a completed sponsorship donation for the
// amount paid and marks the account active.
func (h *Handlers) InvoicePaymentSucceeded(ctx context.Context, event *stripe.Event) (*Outcome, error) {
	inv, err := stripe_event.DecodeInvoice(event)
	if err != nil {
		return nil, err
	}
	subID := inv.SubscriptionID()
	if subID == "" {
		logctx.FromCtx(ctx, h.log).Infow("invoice_without_subscription_ignored", "invoice_id", inv.ID)
		return &Outcome{}, nil
	}
	s, err := h.resolveSponsor(ctx, subID, inv)
	if err != nil {
		return nil, err
	}
	if s.MissionaryID == "" {
		return nil, billingerr.Malformed("subscription %s has no %s metadata", subID, stripe_event.MetaMissionaryID)
	}

	out := &Outcome{ViewerID: s.ViewerID, SubscriptionID: subID}
	d := &models.Donation{
		ID:             inv.ID,
		ProviderID:     types.PaymentProviderStripe,
		ViewerID:       s.ViewerID,
		MissionaryID:   s.MissionaryID,
		AmountMinor:    inv.AmountPaid,
		Amount:         types.MinorToMajor(inv.AmountPaid, inv.Currency),
		Currency:       inv.Currency,
		Status:         types.DonationStatusCompleted,
		Kind:           types.DonationKindSponsorship,
		PlanID:         lo.EmptyableToPtr(s.PlanID),
		InvoiceID:      lo.ToPtr(inv.ID),
		SubscriptionID: lo.ToPtr(subID),
		EventID:        event.ID,
	}
	if err := h.appendDonation(ctx, d, out); err != nil {
		return out, err
	}

	now := h.nowUTC()
	return out, h.updateAccount(ctx, out, &account.Update{
		ViewerID:     s.ViewerID,
		CustomerID:   s.CustomerID,
		Status:       types.AccountStatusActive,
		PaidAt:       now,
		AttemptedAt:  now,
		EventID:      event.ID,
		EventCreated: h.eventTime(event),
	})
}

// InvoicePaymentFailed appends a failed donation for the amount due and
// marks the account payment_failed. Every failed attempt is its own row.
func (h *Handlers) InvoicePaymentFailed(ctx context.Context, event *stripe.Event) (*Outcome, error) {
	inv, err := stripe_event.DecodeInvoice(event)
	if err != nil {
		return nil, err
	}
	subID := inv.SubscriptionID()
	if subID == "" {
		logctx.FromCtx(ctx, h.log).Infow("invoice_without_subscription_ignored", "invoice_id", inv.ID)
		return &Outcome{}, nil
	}
	s, err := h.resolveSponsor(ctx, subID, inv)
	if err != nil {
		return nil, err
	}

	out := &Outcome{ViewerID: s.ViewerID, SubscriptionID: subID}
	d := &models.Donation{
		ID:             tool.DerivedID(inv.ID, "failed", event.ID),
		ProviderID:     types.PaymentProviderStripe,
		ViewerID:       s.ViewerID,
		MissionaryID:   s.MissionaryID,
		AmountMinor:    inv.AmountDue,
		Amount:         types.MinorToMajor(inv.AmountDue, inv.Currency),
		Currency:       inv.Currency,
		Status:         types.DonationStatusFailed,
		Kind:           types.DonationKindSponsorship,
		PlanID:         lo.EmptyableToPtr(s.PlanID),
		InvoiceID:      lo.ToPtr(inv.ID),
		SubscriptionID: lo.ToPtr(subID),
		EventID:        event.ID,
	}
	if err := h.appendDonation(ctx, d, out); err != nil {
		return out, err
	}

	return out, h.updateAccount(ctx, out, &account.Update{
		ViewerID:     s.ViewerID,
		CustomerID:   s.CustomerID,
		Status:       types.AccountStatusPaymentFailed,
		AttemptedAt:  h.nowUTC(),
		EventID:      event.ID,
		EventCreated: h.eventTime(event),
	})
}
