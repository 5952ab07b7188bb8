package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/fatflowers/sponsorship/docs"
	"github.com/fatflowers/sponsorship/internal/app/api/handlers"
	mw "github.com/fatflowers/sponsorship/internal/app/api/middleware"
	"github.com/fatflowers/sponsorship/internal/app/service/account"
	"github.com/fatflowers/sponsorship/internal/app/service/checkout"
	"github.com/fatflowers/sponsorship/internal/app/service/ledger"
	nh "github.com/fatflowers/sponsorship/internal/app/service/notification_handler"
	"github.com/fatflowers/sponsorship/internal/app/service/statistics"
	cfgpkg "github.com/fatflowers/sponsorship/pkg/config"
	"github.com/fatflowers/sponsorship/pkg/metrics"
)

func newEngine(cfg *cfgpkg.Config) *gin.Engine {
	if cfg.Env == cfgpkg.EnvProd {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	// Add request tracing middleware only; request logger & access log are attached per group in registerRoutes
	r.Use(mw.TraceMiddleware())
	return r
}

type routeDeps struct {
	fx.In

	Log        *zap.SugaredLogger
	Cfg        *cfgpkg.Config
	DB         *gorm.DB
	Dispatcher *nh.Dispatcher
	Checkout   *checkout.Service
	Accounts   *account.Store
	Ledger     *ledger.Store
	Stats      *statistics.Service
	Prometheus *metrics.Prometheus
}

func registerRoutes(r *gin.Engine, d routeDeps) error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	if d.Prometheus != nil {
		r.Use(d.Prometheus.HandlerFunc())
	}

	// Public group: request logger + access log
	pub := r.Group("/")
	pub.Use(mw.RequestLoggerMiddleware(d.Log), mw.AccessLogMiddleware())
	handlers.RegisterHealthRoutes(pub, sqlDB)
	// Swagger UI
	docs.SwaggerInfo.BasePath = "/"
	pub.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	apiV1 := r.Group("/api/v1")
	apiV1.Use(mw.RequestLoggerMiddleware(d.Log), mw.AccessLogMiddleware())
	handlers.RegisterCheckoutRoutes(apiV1, d.Checkout)
	handlers.RegisterViewerRoutes(apiV1, d.Accounts, d.Ledger, d.Ledger)

	// Admin APIs
	handlers.RegisterAdminRoutes(apiV1.Group("/admin"), d.Ledger, d.Stats)

	// Provider webhooks
	apiV2Payment := r.Group("/api/v2/payment")
	apiV2Payment.Use(mw.RequestLoggerMiddleware(d.Log), mw.AccessLogMiddleware())
	handlers.RegisterPaymentWebhookRoutes(apiV2Payment, d.Dispatcher, d.Cfg.Webhook.MaxBodyBytes, d.Log)
	return nil
}

func newPrometheus(cfg *cfgpkg.Config, log *zap.SugaredLogger) *metrics.Prometheus {
	if cfg.MetricsAddr == "" {
		return nil
	}
	return metrics.NewPrometheus(metrics.NewPrometheusOptions{
		MetricsPath: "/metrics",
		Registerer:  prometheus.DefaultRegisterer,
		Gatherer:    prometheus.DefaultGatherer,
		Logger:      log,
	})
}

// runMetricsServer serves /metrics on its own listener so it is not exposed
// on the public port.
func runMetricsServer(lc fx.Lifecycle, log *zap.SugaredLogger, cfg *cfgpkg.Config, p *metrics.Prometheus) {
	if p == nil {
		return
	}
	mux := http.NewServeMux()
	mux.Handle(p.MetricsPath, p.Handler())
	srv := &http.Server{Addr: cfg.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("metrics started", "addr", cfg.MetricsAddr)
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Errorw("metrics server error", "err", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}

func runServer(lc fx.Lifecycle, log *zap.SugaredLogger, cfg *cfgpkg.Config, r *gin.Engine) {
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 5 * time.Second}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("starting HTTP server", "addr", addr)
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Errorf("server error: %v", err)
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Infow("stopping HTTP server")
			shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

var Module = fx.Options(
	fx.Provide(newEngine, newPrometheus),
	fx.Invoke(registerRoutes),
	fx.Invoke(runMetricsServer),
	fx.Invoke(runServer),
)
