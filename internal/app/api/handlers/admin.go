package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fatflowers/sponsorship/internal/app/service/ledger"
	"github.com/fatflowers/sponsorship/internal/app/service/statistics"
	"github.com/fatflowers/sponsorship/pkg/billingerr"
	"github.com/fatflowers/sponsorship/pkg/response"
)

type StatisticReader interface {
	GetDonationStatistic(ctx context.Context, req *statistics.DonationStatisticRequest) (*statistics.DonationStatisticResponse, error)
}

// queryErrorCode separates rejected filters from failed queries.
func queryErrorCode(err error) response.APIResponseCode {
	if errors.Is(err, billingerr.ErrStore) {
		return response.APIResponseCodeError
	}
	return response.APIResponseCodeBadRequest
}

// @Summary      List Donations (Admin)
// @Description  Retrieves a paginated and filterable list of all donations.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body ledger.ScanDonationsRequest true "List request with filters, pagination, and sorting"
// @Success      200  {object}  handlers.RespListDonations
// @Router       /api/v1/admin/list_donations [post]
func ApiListDonations(donations DonationReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ledger.ScanDonationsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		res, err := donations.ScanDonations(c.Request.Context(), &req)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](queryErrorCode(err), err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(toListDonationsResponse(res)))
	}
}

// @Summary      Get Donation Statistics (Admin)
// @Description  Daily donation counts and amounts, totals, active sponsorships and failed payment rates.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body statistics.DonationStatisticRequest true "Statistic request parameters"
// @Success      200  {object}  handlers.RespDonationStatistic
// @Router       /api/v1/admin/get_donation_statistic [post]
func ApiGetDonationStatistic(stats StatisticReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req statistics.DonationStatisticRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		res, err := stats.GetDonationStatistic(c.Request.Context(), &req)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](queryErrorCode(err), err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

func RegisterAdminRoutes(r gin.IRouter, donations DonationReader, stats StatisticReader) {
	r.POST("/list_donations", ApiListDonations(donations))
	r.POST("/get_donation_statistic", ApiGetDonationStatistic(stats))
}
