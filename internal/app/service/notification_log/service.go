package notification_log

import (
	"context"
	"sync"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/fatflowers/sponsorship/internal/models"
	"github.com/fatflowers/sponsorship/pkg/logctx"
	"github.com/fatflowers/sponsorship/pkg/tool"
)

// Service writes audit rows off the request path. Write failures are logged
// and never fail the delivery being audited.
type Service struct {
	db  *gorm.DB
	log *zap.SugaredLogger
	wg  sync.WaitGroup

	// writeTimeout bounds each audit insert.
	writeTimeout time.Duration
}

const defaultWriteTimeout = 5 * time.Second

func New(db *gorm.DB, log *zap.SugaredLogger) *Service {
	return &Service{db: db, log: log, writeTimeout: defaultWriteTimeout}
}

// Save asynchronously persists a payment notification log. Nil input is ignored.
func (s *Service) Save(ctx context.Context, log *models.PaymentNotificationLog) {
	if s == nil || log == nil {
		return
	}
	if log.ID == "" {
		log.ID = tool.GenerateUUIDV7()
	}
	s.saveAsync(ctx, "notification", log)
}

// SaveSubscriptionLog asynchronously persists a subscription change record.
func (s *Service) SaveSubscriptionLog(ctx context.Context, log *models.SubscriptionLog) {
	if s == nil || log == nil {
		return
	}
	if log.ID == "" {
		log.ID = tool.GenerateUUIDV7()
	}
	s.saveAsync(ctx, "subscription", log)
}

func (s *Service) saveAsync(ctx context.Context, kind string, row any) {
	// the request context is canceled once the response is written
	base := context.WithoutCancel(ctx)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		dbCtx, cancel := context.WithTimeout(base, s.writeTimeout)
		defer cancel()
		if err := s.db.WithContext(dbCtx).Create(row).Error; err != nil {
			logctx.FromCtx(ctx, s.log).Errorw("failed to save audit log", "kind", kind, "err", err)
		}
	}()
}

// Wait blocks until pending writes finish.
func (s *Service) Wait() {
	if s != nil {
		s.wg.Wait()
	}
}

func registerFlush(lc fx.Lifecycle, s *Service) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			done := make(chan struct{})
			go func() {
				s.Wait()
				close(done)
			}()
			select {
			case <-done:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		},
	})
}

var Module = fx.Options(
	fx.Provide(New),
	fx.Invoke(registerFlush),
)
