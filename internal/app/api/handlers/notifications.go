package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/fahamni/payments/internal/app/service/notification"
	"github.com/fahamni/payments/pkg/response"
)

// @Summary      List notifications
// @Description  Returns the newest in-app notifications for a recipient.
// @Tags         Notification
// @Produce      json
// @Param        recipient query string true "Recipient ID"
// @Param        limit query int false "Max items, default 20"
// @Success      200  {object}  response.APIResponse[any]
// @Router       /api/v1/notifications [get]
func ApiListNotifications(svc *notification.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		recipient := c.Query("recipient")
		if recipient == "" {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, "recipient is required"))
			return
		}
		limit, _ := strconv.Atoi(c.Query("limit"))

		items, err := svc.ListForRecipient(c.Request.Context(), recipient, limit)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(items))
	}
}

// @Summary      Mark notification read
// @Tags         Notification
// @Produce      json
// @Param        id path string true "Notification ID"
// @Param        recipient query string true "Recipient ID"
// @Success      200  {object}  response.APIResponse[any]
// @Router       /api/v1/notifications/{id}/read [post]
func ApiMarkNotificationRead(svc *notification.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		recipient := c.Query("recipient")
		if recipient == "" {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, "recipient is required"))
			return
		}
		if err := svc.MarkRead(c.Request.Context(), recipient, c.Param("id")); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT[any](nil))
	}
}

func RegisterNotificationRoutes(r gin.IRouter, svc *notification.Service) {
	group := r.Group("/api/v1/notifications")
	group.GET("", ApiListNotifications(svc))
	group.POST("/:id/read", ApiMarkNotificationRead(svc))
}
