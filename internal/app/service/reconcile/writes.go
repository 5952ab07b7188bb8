package reconcile

import (
	"context"

	"github.com/samber/lo"
	"github.com/stripe/stripe-go/v82"
	"gorm.io/datatypes"

	"github.com/fatflowers/sponsorship/internal/app/service/account"
	"github.com/fatflowers/sponsorship/internal/models"
	"github.com/fatflowers/sponsorship/pkg/logctx"
	"github.com/fatflowers/sponsorship/pkg/types"
)

func (h *Handlers) appendDonation(ctx context.Context, d *models.Donation, out *Outcome) error {
	inserted, err := h.ledger.AppendDonation(ctx, d)
	if err != nil {
		return err
	}
	if inserted {
		out.DonationIDs = append(out.DonationIDs, d.ID)
	} else {
		out.SkippedDonationIDs = append(out.SkippedDonationIDs, d.ID)
	}
	return nil
}

func (h *Handlers) updateAccount(ctx context.Context, out *Outcome, u *account.Update) error {
	applied, err := h.accounts.Upsert(ctx, u)
	if err != nil {
		return err
	}
	out.AccountApplied = applied
	if !applied {
		h.metrics.StaleSkipped("viewer_account")
	}
	return nil
}

func (h *Handlers) upsertSubscription(ctx context.Context, event *stripe.Event, before, sub *models.Subscription, reason types.SubscriptionChangeReason, out *Outcome) (bool, error) {
	applied, err := h.ledger.UpsertSubscription(ctx, sub)
	if err != nil {
		return false, err
	}
	out.SubscriptionApplied = lo.ToPtr(applied)
	if !applied {
		h.metrics.StaleSkipped("subscription")
		logctx.FromCtx(ctx, h.log).Infow("subscription_event_not_applied",
			"subscription_id", sub.ID, "event_type", event.Type, "incoming_status", sub.Status)
	}
	h.auditSubscription(ctx, event, before, sub, reason, applied)
	return applied, nil
}

func (h *Handlers) auditSubscription(ctx context.Context, event *stripe.Event, before, after *models.Subscription, reason types.SubscriptionChangeReason, applied bool) {
	if h.audit == nil {
		return
	}
	h.audit.SaveSubscriptionLog(ctx, &models.SubscriptionLog{
		SubscriptionID: after.ID,
		ViewerID:       after.ViewerID,
		EventID:        event.ID,
		Reason:         reason,
		Applied:        applied,
		Before:         datatypes.NewJSONType(before),
		After:          datatypes.NewJSONType(after),
	})
}

func toJSONMap(m map[string]string) datatypes.JSONMap {
	out := datatypes.JSONMap{}
	for k, v := range m {
		out[k] = v
	}
	return out
}
