package app

import (
	"time"

	"go.uber.org/fx"

	"github.com/fatflowers/sponsorship/internal/app/api/server"
	"github.com/fatflowers/sponsorship/internal/app/service/account"
	"github.com/fatflowers/sponsorship/internal/app/service/checkout"
	"github.com/fatflowers/sponsorship/internal/app/service/eventguard"
	"github.com/fatflowers/sponsorship/internal/app/service/ledger"
	notificationhandler "github.com/fatflowers/sponsorship/internal/app/service/notification_handler"
	notificationlog "github.com/fatflowers/sponsorship/internal/app/service/notification_log"
	"github.com/fatflowers/sponsorship/internal/app/service/reconcile"
	"github.com/fatflowers/sponsorship/internal/app/service/statistics"
	"github.com/fatflowers/sponsorship/internal/platform/cache"
	"github.com/fatflowers/sponsorship/internal/platform/db"
	"github.com/fatflowers/sponsorship/internal/platform/stripe/stripe_api"
	"github.com/fatflowers/sponsorship/pkg/config"
	"github.com/fatflowers/sponsorship/pkg/logger"
	"github.com/fatflowers/sponsorship/pkg/metrics"
)

const (
	DefaultStartTimeout = 15 * time.Second
	DefaultStopTimeout  = 10 * time.Second
)

// webhookMetrics registers on the default registry, which the metrics server exposes.
func webhookMetrics() (*metrics.WebhookMetrics, error) {
	return metrics.NewWebhookMetrics(nil)
}

var Module = fx.Options(
	logger.Module,
	config.Module,
	db.Module,
	cache.Module,
	stripe_api.Module,
	fx.Provide(webhookMetrics),
	ledger.Module,
	account.Module,
	eventguard.Module,
	notificationlog.Module,
	reconcile.Module,
	notificationhandler.Module,
	checkout.Module,
	statistics.Module,
	server.Module,
)
