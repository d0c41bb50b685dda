package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fahamni/payments/internal/app/service/ledger"
	"github.com/fahamni/payments/internal/app/service/payment"
	"github.com/fahamni/payments/pkg/logctx"
	"github.com/fahamni/payments/pkg/response"
)

type checkoutResp struct {
	RedirectURL string `json:"redirect_url"`
}

type paymentStatusResp struct {
	ReservationID string  `json:"reservation_id"`
	Status        string  `json:"status"`
	Provider      string  `json:"provider"`
	ExternalRef   string  `json:"external_ref"`
	AmountMinor   int64   `json:"amount_minor"`
	Currency      string  `json:"currency"`
	ErrorMessage  *string `json:"error_message,omitempty"`
}

func paymentErrorCode(err error) response.APIResponseCode {
	switch {
	case errors.Is(err, payment.ErrReservationNotPayable),
		errors.Is(err, payment.ErrReservationAlreadyPaid),
		errors.Is(err, payment.ErrMissingParticipantEmail),
		errors.Is(err, payment.ErrElementsUnsupported):
		return response.APIResponseCodeBadRequest
	default:
		return response.APIResponseCodeError
	}
}

// @Summary      Create checkout
// @Description  Creates or reuses a hosted checkout for an accepted reservation and returns the redirect URL.
// @Tags         Payment
// @Produce      json
// @Param        id path string true "Reservation ID"
// @Success      200  {object}  response.APIResponse[checkoutResp]
// @Router       /api/v1/payment/reservations/{id}/checkout [post]
func ApiCreateCheckout(svc *payment.Service, store *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		r, err := store.FindReservation(c.Request.Context(), c.Param("id"))
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		if r == nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, "reservation not found"))
			return
		}

		redirect, err := svc.CreateCheckoutForReservation(c.Request.Context(), r)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](paymentErrorCode(err), err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(checkoutResp{RedirectURL: redirect}))
	}
}

// @Summary      Prepare card elements payment
// @Description  Creates or resumes a confirmable payment intent for the embedded card flow.
// @Tags         Payment
// @Produce      json
// @Param        id path string true "Reservation ID"
// @Success      200  {object}  response.APIResponse[payment.ElementsPayment]
// @Router       /api/v1/payment/reservations/{id}/elements [post]
func ApiPrepareCardElements(svc *payment.Service, store *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		r, err := store.FindReservation(c.Request.Context(), c.Param("id"))
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		if r == nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, "reservation not found"))
			return
		}

		ep, err := svc.PrepareCardElementsPayment(c.Request.Context(), r)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](paymentErrorCode(err), err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(ep))
	}
}

// @Summary      Payment success callback
// @Description  Landing endpoint after a hosted checkout. Synchronizes the provider state before reporting the payment status.
// @Tags         Payment
// @Produce      json
// @Param        id path string true "Reservation ID"
// @Param        session_id query string false "Card processor session reference"
// @Param        payment_ref query string false "Wallet or mock payment reference"
// @Success      200  {object}  response.APIResponse[paymentStatusResp]
// @Router       /payment/reservations/{id}/success [get]
func ApiPaymentSuccess(svc *payment.Service, store *ledger.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		r, err := store.FindReservation(ctx, c.Param("id"))
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		if r == nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, "reservation not found"))
			return
		}

		ref := c.Query("session_id")
		if ref == "" {
			ref = c.Query("payment_intent")
		}
		if ref == "" {
			ref = c.Query("payment_ref")
		}

		if ref != "" {
			_, err = svc.SynchronizeReference(ctx, ref)
		} else {
			_, err = svc.SynchronizeLatestPendingForReservation(ctx, r)
		}
		if err != nil {
			logctx.FromGin(c, log).Warnw("success callback synchronization failed",
				"reservation_id", r.ID, "error", err)
		}

		respondLatestStatus(c, store, r.ID)
	}
}

// @Summary      Payment cancel callback
// @Description  Marks the latest pending checkout of the reservation as canceled.
// @Tags         Payment
// @Produce      json
// @Param        id path string true "Reservation ID"
// @Success      200  {object}  response.APIResponse[paymentStatusResp]
// @Router       /payment/reservations/{id}/cancel [get]
func ApiPaymentCancel(svc *payment.Service, store *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		r, err := store.FindReservation(ctx, c.Param("id"))
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		if r == nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, "reservation not found"))
			return
		}

		if err := svc.MarkReservationCheckoutCanceled(ctx, r); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		respondLatestStatus(c, store, r.ID)
	}
}

// @Summary      Payment status
// @Description  Returns the latest ledger state for a reservation.
// @Tags         Payment
// @Produce      json
// @Param        id path string true "Reservation ID"
// @Success      200  {object}  response.APIResponse[paymentStatusResp]
// @Router       /api/v1/payment/reservations/{id}/status [get]
func ApiPaymentStatus(store *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		respondLatestStatus(c, store, c.Param("id"))
	}
}

func respondLatestStatus(c *gin.Context, store *ledger.Service, reservationID string) {
	txn, err := store.FindLatestByReservation(c.Request.Context(), reservationID)
	if err != nil {
		c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
		return
	}
	if txn == nil {
		c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, "no payment found for reservation"))
		return
	}
	c.JSON(http.StatusOK, response.OKT(paymentStatusResp{
		ReservationID: txn.ReservationID,
		Status:        string(txn.Status),
		Provider:      string(txn.Provider),
		ExternalRef:   txn.ExternalRef,
		AmountMinor:   txn.AmountMinor,
		Currency:      txn.Currency,
		ErrorMessage:  txn.ErrorMessage,
	}))
}

func RegisterPaymentRoutes(r gin.IRouter, svc *payment.Service, store *ledger.Service, log *zap.SugaredLogger) {
	api := r.Group("/api/v1/payment/reservations")
	api.POST("/:id/checkout", ApiCreateCheckout(svc, store))
	api.POST("/:id/elements", ApiPrepareCardElements(svc, store))
	api.GET("/:id/status", ApiPaymentStatus(store))

	callbacks := r.Group("/payment/reservations")
	callbacks.GET("/:id/success", ApiPaymentSuccess(svc, store, log))
	callbacks.GET("/:id/cancel", ApiPaymentCancel(svc, store))
}
