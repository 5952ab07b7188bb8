package models

import (
	"testing"
	"time"

	"github.com/fatflowers/sponsorship/pkg/types"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

func TestTableNames(t *testing.T) {
	require.Equal(t, "donation", Donation{}.TableName())
	require.Equal(t, "subscription", Subscription{}.TableName())
	require.Equal(t, "viewer_account", ViewerAccount{}.TableName())
	require.Equal(t, "subscription_log", SubscriptionLog{}.TableName())
	require.Equal(t, "payment_notification_log", PaymentNotificationLog{}.TableName())
	require.Len(t, All(), 5)
}

func TestDonation_HasProviderReference(t *testing.T) {
	var nilDonation *Donation
	require.False(t, nilDonation.HasProviderReference())
	require.False(t, (&Donation{ID: "x"}).HasProviderReference())
	require.True(t, (&Donation{ID: "in_1", InvoiceID: lo.ToPtr("in_1")}).HasProviderReference())
	require.True(t, (&Donation{ID: "sub_1:initial", SubscriptionID: lo.ToPtr("sub_1")}).HasProviderReference())
}

func TestSubscription_Valid(t *testing.T) {
	future := time.Now().Add(time.Hour)
	past := time.Now().Add(-time.Hour)

	require.True(t, (&Subscription{Status: types.SubscriptionStatusActive, CurrentPeriodEnd: &future}).Valid())
	require.True(t, (&Subscription{Status: types.SubscriptionStatusActive}).Valid())
	require.False(t, (&Subscription{Status: types.SubscriptionStatusActive, CurrentPeriodEnd: &past}).Valid())
	require.False(t, (&Subscription{Status: types.SubscriptionStatusCanceled, CurrentPeriodEnd: &future}).Valid())
}

func TestViewerAccount_IsActive(t *testing.T) {
	var nilAccount *ViewerAccount
	require.False(t, nilAccount.IsActive())
	require.True(t, (&ViewerAccount{Status: types.AccountStatusActive}).IsActive())
	require.False(t, (&ViewerAccount{Status: types.AccountStatusPaymentFailed}).IsActive())
}
