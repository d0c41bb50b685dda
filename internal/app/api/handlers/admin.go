package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fahamni/payments/internal/app/service/ledger"
	"github.com/fahamni/payments/internal/app/service/statistics"
	"github.com/fahamni/payments/internal/models"
	"github.com/fahamni/payments/pkg/response"
	"github.com/fahamni/payments/pkg/types"
)

type scanTransactionsReq struct {
	Filters  []*types.CommonFilter `json:"filters"`
	Page     int                   `json:"page"`
	PageSize int                   `json:"page_size"`
}

type scanTransactionsResp struct {
	Items []models.PaymentTransaction `json:"items"`
	Total int64                       `json:"total"`
}

// @Summary      Scan payment transactions
// @Description  Pages through the transaction ledger with optional field filters, newest first.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body scanTransactionsReq true "Filters and paging"
// @Success      200  {object}  response.APIResponse[scanTransactionsResp]
// @Router       /api/v1/admin/payment/transactions/scan [post]
func ApiScanTransactions(store *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req scanTransactionsReq
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}

		items, total, err := store.ScanTransactions(c.Request.Context(), req.Filters, req.Page, req.PageSize)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(scanTransactionsResp{Items: items, Total: total}))
	}
}

type reservationPricingReq struct {
	PricePerHourMinor int64 `json:"price_per_hour_minor" binding:"min=0"`
}

// @Summary      Override reservation pricing
// @Description  Sets a per-reservation hourly rate in minor units. Zero restores the configured default.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        id      path string               true "Reservation id"
// @Param        request body reservationPricingReq true "New hourly rate"
// @Success      200  {object}  response.APIResponse[models.Reservation]
// @Router       /api/v1/admin/payment/reservations/{id}/pricing [post]
func ApiSetReservationPricing(store *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req reservationPricingReq
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}

		res, err := store.FindReservation(c.Request.Context(), c.Param("id"))
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		if res == nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, "reservation not found"))
			return
		}

		res.PricePerHourMinor = req.PricePerHourMinor
		if err := store.SaveReservation(c.Request.Context(), res); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(*res))
	}
}

// @Summary      Payment statistics
// @Description  Aggregates paid counts, GMV and status breakdowns over the ledger.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body statistics.StatisticRequest true "Requested data items and filters"
// @Success      200  {object}  response.APIResponse[statistics.StatisticResponse]
// @Router       /api/v1/admin/payment/statistics [post]
func ApiPaymentStatistics(stats *statistics.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req statistics.StatisticRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}

		resp, err := stats.Query(c.Request.Context(), &req)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(resp))
	}
}

func RegisterAdminRoutes(r gin.IRouter, store *ledger.Service, stats *statistics.Service) {
	admin := r.Group("/api/v1/admin/payment")
	admin.POST("/transactions/scan", ApiScanTransactions(store))
	admin.POST("/statistics", ApiPaymentStatistics(stats))
	admin.POST("/reservations/:id/pricing", ApiSetReservationPricing(store))
}
