package reconcile

import (
	"go.uber.org/fx"

	"github.com/fatflowers/sponsorship/internal/app/service/account"
	"github.com/fatflowers/sponsorship/internal/app/service/ledger"
	notificationlog "github.com/fatflowers/sponsorship/internal/app/service/notification_log"
	"github.com/fatflowers/sponsorship/internal/platform/stripe/stripe_api"
)

var Module = fx.Options(
	fx.Provide(
		func(c *stripe_api.Client) SubscriptionFetcher { return c },
		func(s *ledger.Store) LedgerStore { return s },
		func(s *account.Store) AccountStore { return s },
		func(s *notificationlog.Service) AuditLog { return s },
		NewHandlers,
	),
)
