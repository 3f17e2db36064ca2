package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/velobay/velobay-backend/internal/model"
	"github.com/velobay/velobay-backend/internal/service"
)

type NotificationHandler struct {
	svc service.NotificationService
}

func NewNotificationHandler(svc service.NotificationService) *NotificationHandler {
	return &NotificationHandler{svc: svc}
}

type NotificationResponse struct {
	ID        uint64  `json:"id"`
	Type      string  `json:"type"`
	Title     string  `json:"title"`
	Body      string  `json:"body"`
	BicycleID *uint64 `json:"bicycleId,omitempty"`
	MessageID *uint64 `json:"messageId,omitempty"`
	OrderID   *uint64 `json:"orderId,omitempty"`
	ReadAt    *string `json:"readAt,omitempty"`
	CreatedAt string  `json:"createdAt"`
}

type NotificationListResponse struct {
	Notifications []NotificationResponse `json:"notifications"`
	UnreadCount   int64                  `json:"unreadCount"`
}

func toNotificationResponse(n *model.Notification) NotificationResponse {
	var readAt *string
	if n.ReadAt != nil {
		val := n.ReadAt.Format(time.RFC3339)
		readAt = &val
	}
	return NotificationResponse{
		ID:        n.ID,
		Type:      n.Type,
		Title:     n.Title,
		Body:      n.Body,
		BicycleID: n.BicycleID,
		MessageID: n.MessageID,
		OrderID:   n.OrderID,
		ReadAt:    readAt,
		CreatedAt: n.CreatedAt.Format(time.RFC3339),
	}
}

func (h *NotificationHandler) List(c echo.Context) error {
	userID := uid(c)
	if userID == 0 {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	unreadOnly := c.QueryParam("unread") == "true"
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	list, cnt, err := h.svc.List(c.Request().Context(), userID, unreadOnly, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to fetch notifications"))
	}
	resp := NotificationListResponse{
		Notifications: make([]NotificationResponse, 0, len(list)),
		UnreadCount:   cnt,
	}
	for i := range list {
		resp.Notifications = append(resp.Notifications, toNotificationResponse(&list[i]))
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *NotificationHandler) MarkAllRead(c echo.Context) error {
	userID := uid(c)
	if userID == 0 {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	if err := h.svc.MarkAllRead(c.Request().Context(), userID); err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to mark notifications"))
	}
	return c.NoContent(http.StatusNoContent)
}
