package ledger

import (
	"context"
	"fmt"

	"gorm.io/gorm/clause"

	"github.com/fatflowers/sponsorship/internal/models"
	"github.com/fatflowers/sponsorship/pkg/billingerr"
	"github.com/fatflowers/sponsorship/pkg/types"
)

const (
	defaultPageSize = 20
	maxPageSize     = 200
)

// DonationFilterFields are the columns admin filters and sorting may reference.
var DonationFilterFields = []string{
	"id", "viewer_id", "missionary_id", "status", "kind", "plan_id", "currency",
	"amount_minor", "session_id", "invoice_id", "subscription_id", "event_id", "created_at",
}

type ScanDonationsRequest struct {
	Filters   []*types.CommonFilter `json:"filters"`
	From      int                   `json:"from"`
	Size      int                   `json:"size"`
	SortBy    string                `json:"sort_by"`
	SortOrder string                `json:"sort_order"`
}

type ScanDonationsResponse struct {
	Items []*models.Donation `json:"items"`
	Total int64              `json:"total"`
}

func (r *ScanDonationsRequest) normalize() error {
	if r.Size <= 0 {
		r.Size = defaultPageSize
	}
	if r.Size > maxPageSize {
		r.Size = maxPageSize
	}
	if r.From < 0 {
		r.From = 0
	}
	for _, f := range r.Filters {
		if err := f.Validate(DonationFilterFields); err != nil {
			return err
		}
	}
	if r.SortBy == "" {
		r.SortBy = "created_at"
	}
	for _, field := range DonationFilterFields {
		if field == r.SortBy {
			return nil
		}
	}
	return fmt.Errorf("sort field not allowed: %s", r.SortBy)
}

// ScanDonations implements paginated admin listing with filters.
// Invalid filters are returned unwrapped so callers can answer 400.
func (s *Store) ScanDonations(ctx context.Context, req *ScanDonationsRequest) (*ScanDonationsResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("nil request")
	}
	if err := req.normalize(); err != nil {
		return nil, err
	}

	tx := s.db.WithContext(ctx).Model(&models.Donation{})
	if len(req.Filters) > 0 {
		tx = tx.Where(clause.Where{Exprs: []clause.Expression{types.FiltersAnd(req.Filters)}})
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, billingerr.Store("count donations", err)
	}

	var rows []*models.Donation
	q := tx.Order(clause.OrderBy{Columns: []clause.OrderByColumn{
		{Column: clause.Column{Name: req.SortBy}, Desc: req.SortOrder != "asc"},
		{Column: clause.Column{Name: "id"}, Desc: req.SortOrder != "asc"},
	}}).Limit(req.Size).Offset(req.From)
	if err := q.Find(&rows).Error; err != nil {
		return nil, billingerr.Store("list donations", err)
	}
	return &ScanDonationsResponse{Items: rows, Total: total}, nil
}

// ListViewerDonations returns the viewer's donation history, newest first.
func (s *Store) ListViewerDonations(ctx context.Context, viewerID string, from, size int) (*ScanDonationsResponse, error) {
	return s.ScanDonations(ctx, &ScanDonationsRequest{
		Filters: []*types.CommonFilter{{Field: "viewer_id", Operator: types.CommonFilterOperatorEq, Values: []any{viewerID}}},
		From:    from,
		Size:    size,
	})
}

// ListMissionaryDonations returns donations received by a missionary, newest first.
func (s *Store) ListMissionaryDonations(ctx context.Context, missionaryID string, from, size int) (*ScanDonationsResponse, error) {
	return s.ScanDonations(ctx, &ScanDonationsRequest{
		Filters: []*types.CommonFilter{{Field: "missionary_id", Operator: types.CommonFilterOperatorEq, Values: []any{missionaryID}}},
		From:    from,
		Size:    size,
	})
}
