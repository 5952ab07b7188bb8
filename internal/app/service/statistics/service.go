package statistics

import (
	"context"
	"fmt"
	"sync"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fatflowers/sponsorship/internal/models"
	"github.com/fatflowers/sponsorship/pkg/billingerr"
	"github.com/fatflowers/sponsorship/pkg/types"
)

type StatisticType string

const (
	StatisticTypeDailyDonationCount      StatisticType = "daily_donation_count"
	StatisticTypeDailyDonationAmount     StatisticType = "daily_donation_amount"
	StatisticTypeTotalDonationAmount     StatisticType = "total_donation_amount"
	StatisticTypeActiveSponsorshipCount  StatisticType = "active_sponsorship_count"
	StatisticTypeDailyFailedPaymentCount StatisticType = "daily_failed_payment_count"
)

var donationStatistics = []StatisticType{
	StatisticTypeDailyDonationCount,
	StatisticTypeDailyDonationAmount,
	StatisticTypeTotalDonationAmount,
	StatisticTypeDailyFailedPaymentCount,
}

var allStatistics = append([]StatisticType{StatisticTypeActiveSponsorshipCount}, donationStatistics...)

// validFilters lists, per filter field, the statistics it applies to.
// A statistic requested together with a filter it does not support yields no data.
var validFilters = map[string][]StatisticType{
	"missionary_id": allStatistics,
	"kind":          donationStatistics,
	"currency":      donationStatistics,
	"created_at":    donationStatistics,
}

type DonationStatisticDataItem struct {
	ID StatisticType `json:"id"`
}

type DonationStatisticRequest struct {
	Filters   []*types.CommonFilter        `json:"filters"`
	DataItems []*DonationStatisticDataItem `json:"data_items"`
}

func (r *DonationStatisticRequest) validate() error {
	if len(r.DataItems) == 0 {
		return fmt.Errorf("data_items is required")
	}
	for _, f := range r.Filters {
		if err := f.Validate(lo.Keys(validFilters)); err != nil {
			return err
		}
	}
	return nil
}

// supports reports whether every filter in the request applies to st.
func (r *DonationStatisticRequest) supports(st StatisticType) bool {
	for _, f := range r.Filters {
		if !lo.Contains(validFilters[f.Field], st) {
			return false
		}
	}
	return true
}

func (r *DonationStatisticRequest) where() clause.Where {
	return clause.Where{Exprs: []clause.Expression{types.FiltersAnd(r.Filters)}}
}

type DonationStatisticResponseDataItem struct {
	Date  string `json:"date,omitempty"`
	Label string `json:"label,omitempty"`
	// Value is a count, or a sum in minor units for amount statistics.
	Value  int64 `json:"value"`
	Value2 int64 `json:"value2,omitempty"`
	Value3 int64 `json:"value3,omitempty"`
	// Amount is Value in major units of Label's currency.
	Amount *decimal.Decimal `json:"amount,omitempty" gorm:"-"`
}

type DonationStatisticResponse struct {
	DataItems map[StatisticType][]DonationStatisticResponseDataItem `json:"data_items"`
}

// Service computes admin statistics over the ledger.
type Service struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Service { return &Service{db: db} }

// dateExpr truncates created_at to a YYYY-MM-DD string on either backend.
func (s *Service) dateExpr() string {
	if s.db.Dialector.Name() == "sqlite" {
		return "DATE(created_at)"
	}
	return "TO_CHAR(created_at, 'YYYY-MM-DD')"
}

func (s *Service) donations(ctx context.Context, request *DonationStatisticRequest) *gorm.DB {
	return s.db.WithContext(ctx).Model(&models.Donation{}).Where(request.where())
}

func withAmounts(items []DonationStatisticResponseDataItem) []DonationStatisticResponseDataItem {
	for i := range items {
		items[i].Amount = lo.ToPtr(types.MinorToMajor(items[i].Value, items[i].Label))
	}
	return items
}

func (s *Service) getDailyDonationCount(ctx context.Context, request *DonationStatisticRequest) ([]DonationStatisticResponseDataItem, error) {
	var results []DonationStatisticResponseDataItem
	date := s.dateExpr()
	q := s.donations(ctx, request).
		Select(date+" AS date, count(*) AS value").
		Where("status = ?", types.DonationStatusCompleted).
		Group(date).
		Order("date DESC")
	if err := q.Scan(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) getDailyDonationAmount(ctx context.Context, request *DonationStatisticRequest) ([]DonationStatisticResponseDataItem, error) {
	var results []DonationStatisticResponseDataItem
	date := s.dateExpr()
	q := s.donations(ctx, request).
		Select(date+" AS date, currency AS label, sum(amount_minor) AS value").
		Where("status = ?", types.DonationStatusCompleted).
		Group(date).
		Group("currency").
		Order("date DESC").
		Order("label")
	if err := q.Scan(&results).Error; err != nil {
		return nil, err
	}
	return withAmounts(results), nil
}

func (s *Service) getTotalDonationAmount(ctx context.Context, request *DonationStatisticRequest) ([]DonationStatisticResponseDataItem, error) {
	var results []DonationStatisticResponseDataItem
	q := s.donations(ctx, request).
		Select("currency AS label, sum(amount_minor) AS value, count(*) AS value2").
		Where("status = ?", types.DonationStatusCompleted).
		Group("currency").
		Order("label")
	if err := q.Scan(&results).Error; err != nil {
		return nil, err
	}
	return withAmounts(results), nil
}

func (s *Service) getActiveSponsorshipCount(ctx context.Context, request *DonationStatisticRequest) ([]DonationStatisticResponseDataItem, error) {
	var results []DonationStatisticResponseDataItem
	q := s.db.WithContext(ctx).Model(&models.Subscription{}).
		Select("count(*) AS value, count(DISTINCT viewer_id) AS value2").
		Where(request.where()).
		Where("status = ?", types.SubscriptionStatusActive)
	if err := q.Scan(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// getDailyFailedPaymentCount reports failed attempts (value), all attempts
// (value2) and the failure rate in basis points (value3) per day.
func (s *Service) getDailyFailedPaymentCount(ctx context.Context, request *DonationStatisticRequest) ([]DonationStatisticResponseDataItem, error) {
	var results []DonationStatisticResponseDataItem
	date := s.dateExpr()
	q := s.donations(ctx, request).
		Select(date+" AS date, sum(CASE WHEN status = ? THEN 1 ELSE 0 END) AS value, count(*) AS value2", types.DonationStatusFailed).
		Group(date).
		Order("date DESC")
	if err := q.Scan(&results).Error; err != nil {
		return nil, err
	}
	for i := range results {
		if results[i].Value2 > 0 {
			results[i].Value3 = results[i].Value * 10000 / results[i].Value2
		}
	}
	return results, nil
}

func (s *Service) getDonationStatistic(ctx context.Context, request *DonationStatisticRequest, dataItem *DonationStatisticDataItem) ([]DonationStatisticResponseDataItem, error) {
	switch dataItem.ID {
	case StatisticTypeDailyDonationCount:
		return s.getDailyDonationCount(ctx, request)
	case StatisticTypeDailyDonationAmount:
		return s.getDailyDonationAmount(ctx, request)
	case StatisticTypeTotalDonationAmount:
		return s.getTotalDonationAmount(ctx, request)
	case StatisticTypeActiveSponsorshipCount:
		return s.getActiveSponsorshipCount(ctx, request)
	case StatisticTypeDailyFailedPaymentCount:
		return s.getDailyFailedPaymentCount(ctx, request)
	default:
		return nil, fmt.Errorf("invalid data item id: %s", dataItem.ID)
	}
}

// GetDonationStatistic computes the requested data items concurrently.
// Request validation errors are returned unwrapped; query failures are store errors.
func (s *Service) GetDonationStatistic(ctx context.Context, request *DonationStatisticRequest) (*DonationStatisticResponse, error) {
	if request == nil {
		return nil, fmt.Errorf("nil request")
	}
	if err := request.validate(); err != nil {
		return nil, err
	}
	for _, item := range request.DataItems {
		if item == nil || !lo.Contains(allStatistics, item.ID) {
			return nil, fmt.Errorf("invalid data item: %v", item)
		}
	}

	var wg sync.WaitGroup
	errChan := make(chan error, len(request.DataItems))
	resChan := make(chan *lo.Entry[StatisticType, []DonationStatisticResponseDataItem], len(request.DataItems))

	for _, item := range request.DataItems {
		wg.Add(1)
		go func(di *DonationStatisticDataItem) {
			defer wg.Done()
			if !request.supports(di.ID) {
				resChan <- &lo.Entry[StatisticType, []DonationStatisticResponseDataItem]{Key: di.ID, Value: nil}
				return
			}
			res, err := s.getDonationStatistic(ctx, request, di)
			if err != nil {
				errChan <- billingerr.Store(string(di.ID), err)
				return
			}
			resChan <- &lo.Entry[StatisticType, []DonationStatisticResponseDataItem]{Key: di.ID, Value: res}
		}(item)
	}

	wg.Wait()
	close(errChan)
	close(resChan)

	if err := <-errChan; err != nil {
		return nil, err
	}
	results := make(map[StatisticType][]DonationStatisticResponseDataItem)
	for entry := range resChan {
		results[entry.Key] = entry.Value
	}
	return &DonationStatisticResponse{DataItems: results}, nil
}

var Module = fx.Options(
	fx.Provide(New),
)
