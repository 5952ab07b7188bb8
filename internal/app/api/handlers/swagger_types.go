package handlers

import (
	"github.com/fatflowers/sponsorship/internal/app/service/checkout"
	"github.com/fatflowers/sponsorship/internal/app/service/statistics"
	"github.com/fatflowers/sponsorship/pkg/response"
)

// RespOK is a generic OK envelope for endpoints returning no specific data.
type RespOK struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    interface{}              `json:"data"`
}

// RespCheckoutSession wraps checkout.Response in the standard envelope.
type RespCheckoutSession struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    checkout.Response        `json:"data"`
}

// RespViewerAccount wraps ViewerAccountResponse in the standard envelope.
type RespViewerAccount struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    ViewerAccountResponse    `json:"data"`
}

// RespListDonations wraps ListDonationsResponse in the standard envelope.
type RespListDonations struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    ListDonationsResponse    `json:"data"`
}

// RespDonationStatistic wraps DonationStatisticResponse in the standard envelope.
type RespDonationStatistic struct {
	Code    response.APIResponseCode             `json:"code"`
	Message string                               `json:"message"`
	Data    statistics.DonationStatisticResponse `json:"data"`
}
