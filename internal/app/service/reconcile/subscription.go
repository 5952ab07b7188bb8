package reconcile

import (
	"context"

	"github.com/samber/lo"
	"github.com/stripe/stripe-go/v82"

	"github.com/fatflowers/sponsorship/internal/app/service/account"
	"github.com/fatflowers/sponsorship/internal/models"
	"github.com/fatflowers/sponsorship/internal/platform/stripe/stripe_event"
	"github.com/fatflowers/sponsorship/pkg/billingerr"
	"github.com/fatflowers/sponsorship/pkg/types"
)

// subscriptionRow builds the row for a customer.subscription.* payload,
// taking identity fields missing from the payload metadata from the stored
// row.
func (h *Handlers) subscriptionRow(ctx context.Context, event *stripe.Event, s *stripe_event.Subscription) (row, local *models.Subscription, err error) {
	local, err = h.ledger.GetSubscription(ctx, s.ID)
	if err != nil {
		return nil, nil, err
	}
	md := stripe_event.NewSponsorMetadata(s.Metadata)
	row = &models.Subscription{
		ID:           s.ID,
		ProviderID:   types.PaymentProviderStripe,
		ViewerID:     md.ViewerID,
		MissionaryID: md.MissionaryID,
		PlanID:       md.PlanID,
		CustomerID:   s.Customer,
		Status:       types.SubscriptionStatus(s.Status),
		LastEventAt:  h.eventTime(event),
		Metadata:     toJSONMap(s.Metadata),
	}
	row.CurrentPeriodStart, row.CurrentPeriodEnd = s.PeriodBounds()
	if local != nil {
		row.ViewerID = lo.CoalesceOrEmpty(row.ViewerID, local.ViewerID)
		row.MissionaryID = lo.CoalesceOrEmpty(row.MissionaryID, local.MissionaryID)
		row.PlanID = lo.CoalesceOrEmpty(row.PlanID, local.PlanID)
		row.CustomerID = lo.CoalesceOrEmpty(row.CustomerID, local.CustomerID)
	}
	row.PlanID = lo.CoalesceOrEmpty(row.PlanID, h.planForPrice(s.PriceID()))
	if row.ViewerID == "" {
		return nil, nil, billingerr.Malformed("subscription %s has no %s metadata and no stored row", s.ID, stripe_event.MetaViewerID)
	}
	return row, local, nil
}

// SubscriptionUpdated mirrors the provider's subscription state and derives
// the account status from it. An update older than the stored row, or one
// arriving after cancellation, changes nothing.
func (h *Handlers) SubscriptionUpdated(ctx context.Context, event *stripe.Event) (*Outcome, error) {
	s, err := stripe_event.DecodeSubscription(event)
	if err != nil {
		return nil, err
	}
	row, before, err := h.subscriptionRow(ctx, event, s)
	if err != nil {
		return nil, err
	}
	out := &Outcome{ViewerID: row.ViewerID, SubscriptionID: row.ID}
	applied, err := h.upsertSubscription(ctx, event, before, row, types.SubscriptionChangeReasonUpdated, out)
	if err != nil || !applied {
		return out, err
	}
	return out, h.updateAccount(ctx, out, &account.Update{
		ViewerID:     row.ViewerID,
		CustomerID:   row.CustomerID,
		Status:       types.AccountStatusFromSubscription(row.Status),
		EventID:      event.ID,
		EventCreated: h.eventTime(event),
	})
}

// SubscriptionDeleted cancels the subscription and the account. Cancellation
// is terminal and always applied to the subscription row.
func (h *Handlers) SubscriptionDeleted(ctx context.Context, event *stripe.Event) (*Outcome, error) {
	s, err := stripe_event.DecodeSubscription(event)
	if err != nil {
		return nil, err
	}
	row, before, err := h.subscriptionRow(ctx, event, s)
	if err != nil {
		return nil, err
	}
	row.Status = types.SubscriptionStatusCanceled
	row.CanceledAt = s.EndedTime()
	if row.CanceledAt == nil {
		row.CanceledAt = h.nowUTC()
	}

	out := &Outcome{ViewerID: row.ViewerID, SubscriptionID: row.ID}
	if err := h.ledger.CancelSubscription(ctx, row); err != nil {
		return out, err
	}
	out.SubscriptionApplied = lo.ToPtr(true)
	h.auditSubscription(ctx, event, before, row, types.SubscriptionChangeReasonCanceled, true)

	return out, h.updateAccount(ctx, out, &account.Update{
		ViewerID:     row.ViewerID,
		CustomerID:   row.CustomerID,
		Status:       types.AccountStatusCanceled,
		EventID:      event.ID,
		EventCreated: h.eventTime(event),
	})
}
