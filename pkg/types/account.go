package types

// AccountStatus is the coarse payment health of a viewer, read by the rest of
// the application to gate sponsor-only features.
type AccountStatus string

const (
	AccountStatusActive        AccountStatus = "active"
	AccountStatusInactive      AccountStatus = "inactive"
	AccountStatusPaymentFailed AccountStatus = "payment_failed"
	AccountStatusCanceled      AccountStatus = "canceled"
)

// AccountStatusFromSubscription maps a provider subscription status onto the
// account status vocabulary.
func AccountStatusFromSubscription(s SubscriptionStatus) AccountStatus {
	if s == SubscriptionStatusActive {
		return AccountStatusActive
	}
	return AccountStatusInactive
}
