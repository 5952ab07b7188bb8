package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/fatflowers/sponsorship/internal/app/service/ledger"
	"github.com/fatflowers/sponsorship/internal/models"
	"github.com/fatflowers/sponsorship/pkg/response"
	"github.com/fatflowers/sponsorship/pkg/types"
)

type AccountReader interface {
	Get(ctx context.Context, viewerID string) (*models.ViewerAccount, error)
}

type SubscriptionReader interface {
	ListViewerSubscriptions(ctx context.Context, viewerID string) ([]*models.Subscription, error)
}

type DonationReader interface {
	ScanDonations(ctx context.Context, req *ledger.ScanDonationsRequest) (*ledger.ScanDonationsResponse, error)
	ListViewerDonations(ctx context.Context, viewerID string, from, size int) (*ledger.ScanDonationsResponse, error)
	ListMissionaryDonations(ctx context.Context, missionaryID string, from, size int) (*ledger.ScanDonationsResponse, error)
}

type ViewerAccountResponse struct {
	ViewerID string              `json:"viewer_id"`
	Status   types.AccountStatus `json:"status"`
	// Active gates sponsor-only features.
	Active               bool       `json:"active"`
	LastPaymentAt        *time.Time `json:"last_payment_at"`
	LastPaymentAttemptAt *time.Time `json:"last_payment_attempt_at"`
	UpdatedAt            *time.Time `json:"updated_at"`
	// Subscriptions lists the viewer's sponsorships, newest first.
	Subscriptions []*ViewerSubscriptionItem `json:"subscriptions"`
}

type ViewerSubscriptionItem struct {
	ID               string                   `json:"id"`
	MissionaryID     string                   `json:"missionary_id"`
	PlanID           string                   `json:"plan_id"`
	Status           types.SubscriptionStatus `json:"status"`
	CurrentPeriodEnd *time.Time               `json:"current_period_end"`
	CanceledAt       *time.Time               `json:"canceled_at"`
	// Valid is true while the subscription entitles the viewer.
	Valid bool `json:"valid"`
}

func toViewerSubscriptionItem(s *models.Subscription, _ int) *ViewerSubscriptionItem {
	return &ViewerSubscriptionItem{
		ID:               s.ID,
		MissionaryID:     s.MissionaryID,
		PlanID:           s.PlanID,
		Status:           s.Status,
		CurrentPeriodEnd: s.CurrentPeriodEnd,
		CanceledAt:       s.CanceledAt,
		Valid:            s.Valid(),
	}
}

type DonationItem struct {
	ID             string               `json:"id"`
	ViewerID       string               `json:"viewer_id"`
	MissionaryID   string               `json:"missionary_id"`
	Amount         decimal.Decimal      `json:"amount" swaggertype:"string"`
	AmountMinor    int64                `json:"amount_minor"`
	Currency       string               `json:"currency"`
	Status         types.DonationStatus `json:"status"`
	Kind           types.DonationKind   `json:"kind"`
	PlanID         *string              `json:"plan_id"`
	SubscriptionID *string              `json:"subscription_id"`
	CreatedAt      time.Time            `json:"created_at"`
}

type ListDonationsResponse struct {
	Items []*DonationItem `json:"items"`
	Total int64           `json:"total"`
}

func toDonationItem(d *models.Donation, _ int) *DonationItem {
	return &DonationItem{
		ID:             d.ID,
		ViewerID:       d.ViewerID,
		MissionaryID:   d.MissionaryID,
		Amount:         d.Amount,
		AmountMinor:    d.AmountMinor,
		Currency:       d.Currency,
		Status:         d.Status,
		Kind:           d.Kind,
		PlanID:         d.PlanID,
		SubscriptionID: d.SubscriptionID,
		CreatedAt:      d.CreatedAt,
	}
}

func toListDonationsResponse(res *ledger.ScanDonationsResponse) *ListDonationsResponse {
	return &ListDonationsResponse{Items: lo.Map(res.Items, toDonationItem), Total: res.Total}
}

// pagination reads from/size query params; ok is false after an error response was written.
func pagination(c *gin.Context) (from, size int, ok bool) {
	if v := c.Query("from"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, "invalid from"))
			return 0, 0, false
		}
		from = n
	}
	if v := c.Query("size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, "invalid size"))
			return 0, 0, false
		}
		size = n
	}
	return from, size, true
}

// @Summary      Get Viewer Account
// @Description  Returns the viewer's payment status and sponsorships. Viewers without any recorded payment are reported as inactive.
// @Tags         Viewer
// @Produce      json
// @Param        viewer_id path string true "Viewer ID"
// @Success      200  {object}  handlers.RespViewerAccount
// @Router       /api/v1/viewer/{viewer_id}/account [get]
func ApiGetViewerAccount(accounts AccountReader, subs SubscriptionReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		viewerID := c.Param("viewer_id")
		a, err := accounts.Get(c.Request.Context(), viewerID)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		rows, err := subs.ListViewerSubscriptions(c.Request.Context(), viewerID)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		out := &ViewerAccountResponse{
			ViewerID:      viewerID,
			Status:        types.AccountStatusInactive,
			Subscriptions: lo.Map(rows, toViewerSubscriptionItem),
		}
		if a != nil {
			out.Status = a.Status
			out.Active = a.IsActive()
			out.LastPaymentAt = a.LastPaymentAt
			out.LastPaymentAttemptAt = a.LastPaymentAttemptAt
			out.UpdatedAt = lo.ToPtr(a.UpdatedAt)
		}
		c.JSON(http.StatusOK, response.OKT(out))
	}
}

// @Summary      List Viewer Donations
// @Description  Donation history of a viewer, newest first.
// @Tags         Viewer
// @Produce      json
// @Param        viewer_id path string true "Viewer ID"
// @Param        from query int false "Offset"
// @Param        size query int false "Page size (default 20, max 200)"
// @Success      200  {object}  handlers.RespListDonations
// @Router       /api/v1/viewer/{viewer_id}/donations [get]
func ApiListViewerDonations(donations DonationReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		from, size, ok := pagination(c)
		if !ok {
			return
		}
		res, err := donations.ListViewerDonations(c.Request.Context(), c.Param("viewer_id"), from, size)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(toListDonationsResponse(res)))
	}
}

// @Summary      List Missionary Donations
// @Description  Donations received by a missionary, newest first.
// @Tags         Missionary
// @Produce      json
// @Param        missionary_id path string true "Missionary ID"
// @Param        from query int false "Offset"
// @Param        size query int false "Page size (default 20, max 200)"
// @Success      200  {object}  handlers.RespListDonations
// @Router       /api/v1/missionary/{missionary_id}/donations [get]
func ApiListMissionaryDonations(donations DonationReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		from, size, ok := pagination(c)
		if !ok {
			return
		}
		res, err := donations.ListMissionaryDonations(c.Request.Context(), c.Param("missionary_id"), from, size)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(toListDonationsResponse(res)))
	}
}

func RegisterViewerRoutes(r gin.IRouter, accounts AccountReader, subs SubscriptionReader, donations DonationReader) {
	r.GET("/viewer/:viewer_id/account", ApiGetViewerAccount(accounts, subs))
	r.GET("/viewer/:viewer_id/donations", ApiListViewerDonations(donations))
	r.GET("/missionary/:missionary_id/donations", ApiListMissionaryDonations(donations))
}
