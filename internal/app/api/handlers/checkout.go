package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fatflowers/sponsorship/internal/app/service/checkout"
	"github.com/fatflowers/sponsorship/pkg/billingerr"
	"github.com/fatflowers/sponsorship/pkg/response"
)

type CheckoutCreator interface {
	CreateSession(ctx context.Context, req *checkout.Request) (*checkout.Response, error)
}

// @Summary      Create Checkout Session
// @Description  Starts a hosted checkout for a recurring sponsorship (planId) or a one-time donation (amount in major units). Exactly one of planId and amount must be set.
// @Tags         Checkout
// @Accept       json
// @Produce      json
// @Param        request body checkout.Request true "Checkout request"
// @Success      200  {object}  handlers.RespCheckoutSession
// @Router       /api/v1/checkout/session [post]
func ApiCreateCheckoutSession(svc CheckoutCreator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req checkout.Request
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		res, err := svc.CreateSession(c.Request.Context(), &req)
		if err != nil {
			switch {
			case errors.Is(err, checkout.ErrInvalidRequest):
				c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			case errors.Is(err, billingerr.ErrUpstreamFetch):
				c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeUpstream, err.Error()))
			default:
				c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			}
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

func RegisterCheckoutRoutes(r gin.IRouter, svc CheckoutCreator) {
	r.POST("/checkout/session", ApiCreateCheckoutSession(svc))
}
