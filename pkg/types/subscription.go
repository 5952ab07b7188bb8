package types

// SubscriptionStatus mirrors the provider's subscription status vocabulary.
type SubscriptionStatus string

const (
	SubscriptionStatusActive            SubscriptionStatus = "active"
	SubscriptionStatusPastDue           SubscriptionStatus = "past_due"
	SubscriptionStatusUnpaid            SubscriptionStatus = "unpaid"
	SubscriptionStatusCanceled          SubscriptionStatus = "canceled"
	SubscriptionStatusIncomplete        SubscriptionStatus = "incomplete"
	SubscriptionStatusIncompleteExpired SubscriptionStatus = "incomplete_expired"
	SubscriptionStatusTrialing          SubscriptionStatus = "trialing"
	SubscriptionStatusPaused            SubscriptionStatus = "paused"
)

var subscriptionStatuses = []SubscriptionStatus{
	SubscriptionStatusActive,
	SubscriptionStatusPastDue,
	SubscriptionStatusUnpaid,
	SubscriptionStatusCanceled,
	SubscriptionStatusIncomplete,
	SubscriptionStatusIncompleteExpired,
	SubscriptionStatusTrialing,
	SubscriptionStatusPaused,
}

// Terminal reports a status the provider never moves a subscription out of.
func (s SubscriptionStatus) Terminal() bool {
	return s == SubscriptionStatusCanceled || s == SubscriptionStatusIncompleteExpired
}

// TerminalSubscriptionStatuses lists every terminal status, for SQL guards.
func TerminalSubscriptionStatuses() []string {
	var out []string
	for _, st := range subscriptionStatuses {
		if st.Terminal() {
			out = append(out, string(st))
		}
	}
	return out
}

type SubscriptionChangeReason string

const (
	SubscriptionChangeReasonCheckout SubscriptionChangeReason = "checkout"
	SubscriptionChangeReasonUpdated  SubscriptionChangeReason = "updated"
	SubscriptionChangeReasonCanceled SubscriptionChangeReason = "canceled"
)
