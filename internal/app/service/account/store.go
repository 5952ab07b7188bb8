package account

import (
	"context"
	"errors"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fatflowers/sponsorship/internal/models"
	"github.com/fatflowers/sponsorship/pkg/billingerr"
	"github.com/fatflowers/sponsorship/pkg/logctx"
	"github.com/fatflowers/sponsorship/pkg/types"
)

// Update is one account status transition derived from a provider event.
type Update struct {
	ViewerID   string
	CustomerID string
	Status     types.AccountStatus
	// PaidAt is set for successful payments.
	PaidAt *time.Time
	// AttemptedAt is set for every payment attempt, successful or not.
	AttemptedAt *time.Time
	// EventID and EventCreated identify the provider event; EventCreated
	// orders updates for the same viewer.
	EventID      string
	EventCreated int64
}

// Store holds per-viewer account status.
type Store struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func NewStore(db *gorm.DB, log *zap.SugaredLogger) *Store {
	return &Store{db: db, log: log}
}

// Upsert applies u unless the stored account was written by a newer event.
// Ties go to the update processed last.
func (s *Store) Upsert(ctx context.Context, u *Update) (applied bool, err error) {
	if u == nil || u.ViewerID == "" {
		return false, billingerr.Malformed("account update without viewer")
	}
	now := time.Now()
	row := &models.ViewerAccount{
		ViewerID:             u.ViewerID,
		ProviderID:           types.PaymentProviderStripe,
		CustomerID:           u.CustomerID,
		Status:               u.Status,
		LastPaymentAt:        u.PaidAt,
		LastPaymentAttemptAt: u.AttemptedAt,
		LastEventAt:          u.EventCreated,
		LastEventID:          u.EventID,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	res := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "viewer_id"}},
		DoUpdates: clause.Set{
			{Column: clause.Column{Name: "customer_id"}, Value: gorm.Expr("COALESCE(NULLIF(excluded.customer_id, ''), viewer_account.customer_id)")},
			{Column: clause.Column{Name: "last_payment_at"}, Value: gorm.Expr("COALESCE(excluded.last_payment_at, viewer_account.last_payment_at)")},
			{Column: clause.Column{Name: "last_payment_attempt_at"}, Value: gorm.Expr("COALESCE(excluded.last_payment_attempt_at, viewer_account.last_payment_attempt_at)")},
			{Column: clause.Column{Name: "status"}, Value: gorm.Expr("excluded.status")},
			{Column: clause.Column{Name: "last_event_at"}, Value: gorm.Expr("excluded.last_event_at")},
			{Column: clause.Column{Name: "last_event_id"}, Value: gorm.Expr("excluded.last_event_id")},
			{Column: clause.Column{Name: "updated_at"}, Value: gorm.Expr("excluded.updated_at")},
		},
		Where: clause.Where{Exprs: []clause.Expression{
			clause.Expr{SQL: "viewer_account.last_event_at <= excluded.last_event_at"},
		}},
	}).Create(row)
	if res.Error != nil {
		return false, billingerr.Store("upsert account", res.Error)
	}
	if res.RowsAffected == 0 {
		logctx.FromCtx(ctx, s.log).Infow("account_update_stale_skipped",
			"viewer_id", u.ViewerID, "status", u.Status, "event_created", u.EventCreated)
		return false, nil
	}
	return true, nil
}

// Get returns the viewer's account, or nil when none was recorded.
func (s *Store) Get(ctx context.Context, viewerID string) (*models.ViewerAccount, error) {
	var a models.ViewerAccount
	err := s.db.WithContext(ctx).Where("viewer_id = ?", viewerID).Take(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, billingerr.Store("get account", err)
	}
	return &a, nil
}

// CustomerID returns the provider customer stored for the viewer, if any.
func (s *Store) CustomerID(ctx context.Context, viewerID string) (string, error) {
	a, err := s.Get(ctx, viewerID)
	if err != nil || a == nil {
		return "", err
	}
	return a.CustomerID, nil
}

var Module = fx.Options(
	fx.Provide(NewStore),
)
