package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fatflowers/sponsorship/internal/models"
	"github.com/fatflowers/sponsorship/pkg/billingerr"
	"github.com/fatflowers/sponsorship/pkg/logctx"
	"github.com/fatflowers/sponsorship/pkg/types"
)

// Store is the ledger: append-only donations and subscriptions keyed by the
// provider subscription id.
type Store struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func NewStore(db *gorm.DB, log *zap.SugaredLogger) *Store {
	return &Store{db: db, log: log}
}

// AppendDonation inserts d unless a donation with the same id exists.
// inserted is false for a redelivered event.
func (s *Store) AppendDonation(ctx context.Context, d *models.Donation) (inserted bool, err error) {
	if d == nil || d.ID == "" {
		return false, billingerr.Malformed("donation without id")
	}
	if !d.HasProviderReference() {
		return false, billingerr.Malformed("donation %s has no provider reference", d.ID)
	}
	if d.Metadata == nil {
		d.Metadata = datatypes.JSONMap{}
	}
	res := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}).
		Create(d)
	if res.Error != nil {
		return false, billingerr.Store("append donation", res.Error)
	}
	if res.RowsAffected == 0 {
		logctx.FromCtx(ctx, s.log).Infow("donation_already_recorded", "donation_id", d.ID)
		return false, nil
	}
	return true, nil
}

// keepIfEmpty keeps the stored value when the incoming one is blank.
func keepIfEmpty(col string) clause.Assignment {
	return clause.Assignment{
		Column: clause.Column{Name: col},
		Value:  gorm.Expr(fmt.Sprintf("COALESCE(NULLIF(excluded.%[1]s, ''), subscription.%[1]s)", col)),
	}
}

func keepIfNull(col string) clause.Assignment {
	return clause.Assignment{
		Column: clause.Column{Name: col},
		Value:  gorm.Expr(fmt.Sprintf("COALESCE(excluded.%[1]s, subscription.%[1]s)", col)),
	}
}

func fromExcluded(cols ...string) clause.Set {
	set := make(clause.Set, 0, len(cols))
	for _, col := range cols {
		set = append(set, clause.Assignment{Column: clause.Column{Name: col}, Value: gorm.Expr("excluded." + col)})
	}
	return set
}

func prepareSubscription(sub *models.Subscription) error {
	if sub == nil || sub.ID == "" {
		return billingerr.Malformed("subscription without id")
	}
	if sub.ViewerID == "" {
		return billingerr.Malformed("subscription %s without viewer", sub.ID)
	}
	if sub.Metadata == nil {
		sub.Metadata = datatypes.JSONMap{}
	}
	now := time.Now()
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = now
	}
	sub.UpdatedAt = now
	return nil
}

// UpsertSubscription inserts or updates the row keyed by sub.ID. The update is
// skipped when the stored row is in a terminal status or was written by a
// newer event; applied reports whether the row changed.
func (s *Store) UpsertSubscription(ctx context.Context, sub *models.Subscription) (applied bool, err error) {
	if err := prepareSubscription(sub); err != nil {
		return false, err
	}
	set := append(clause.Set{
		keepIfEmpty("viewer_id"),
		keepIfEmpty("missionary_id"),
		keepIfEmpty("plan_id"),
		keepIfEmpty("customer_id"),
		keepIfNull("current_period_start"),
		keepIfNull("current_period_end"),
	}, fromExcluded("provider_id", "status", "last_event_at", "metadata", "updated_at")...)

	res := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: set,
		Where: clause.Where{Exprs: []clause.Expression{
			clause.Expr{SQL: "subscription.status NOT IN ? AND subscription.last_event_at <= excluded.last_event_at",
				Vars: []any{types.TerminalSubscriptionStatuses()}},
		}},
	}).Create(sub)
	if res.Error != nil {
		return false, billingerr.Store("upsert subscription", res.Error)
	}
	if res.RowsAffected == 0 {
		logctx.FromCtx(ctx, s.log).Infow("subscription_update_stale_skipped",
			"subscription_id", sub.ID, "status", sub.Status, "last_event_at", sub.LastEventAt)
		return false, nil
	}
	return true, nil
}

// CancelSubscription marks the row canceled. Cancellation is terminal and is
// applied regardless of event order.
func (s *Store) CancelSubscription(ctx context.Context, sub *models.Subscription) error {
	if err := prepareSubscription(sub); err != nil {
		return err
	}
	sub.Status = types.SubscriptionStatusCanceled
	if sub.CanceledAt == nil {
		now := time.Now().UTC()
		sub.CanceledAt = &now
	}
	set := append(clause.Set{
		keepIfEmpty("viewer_id"),
		keepIfEmpty("missionary_id"),
		keepIfEmpty("plan_id"),
		keepIfEmpty("customer_id"),
		keepIfNull("current_period_start"),
		keepIfNull("current_period_end"),
		{
			Column: clause.Column{Name: "last_event_at"},
			Value: gorm.Expr("CASE WHEN subscription.last_event_at > excluded.last_event_at " +
				"THEN subscription.last_event_at ELSE excluded.last_event_at END"),
		},
	}, fromExcluded("status", "canceled_at", "updated_at")...)

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: set,
	}).Create(sub).Error
	if err != nil {
		return billingerr.Store("cancel subscription", err)
	}
	return nil
}

// GetSubscription returns the stored subscription, or nil when absent.
func (s *Store) GetSubscription(ctx context.Context, id string) (*models.Subscription, error) {
	var sub models.Subscription
	err := s.db.WithContext(ctx).Where("id = ?", id).Take(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, billingerr.Store("get subscription", err)
	}
	return &sub, nil
}

// ListViewerSubscriptions returns the viewer's subscriptions, newest first.
func (s *Store) ListViewerSubscriptions(ctx context.Context, viewerID string) ([]*models.Subscription, error) {
	var rows []*models.Subscription
	err := s.db.WithContext(ctx).Where("viewer_id = ?", viewerID).Order("created_at DESC").Find(&rows).Error
	if err != nil {
		return nil, billingerr.Store("list viewer subscriptions", err)
	}
	return rows, nil
}
