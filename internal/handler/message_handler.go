package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/velobay/velobay-backend/internal/service"
)

type MessageHandler struct {
	svc service.MessageService
}

func NewMessageHandler(svc service.MessageService) *MessageHandler {
	return &MessageHandler{svc: svc}
}

func (h *MessageHandler) Send(c echo.Context) error {
	userID := uid(c)
	if userID == 0 {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	bicycleID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid bicycle id"))
	}
	var body struct {
		RecipientID uint64 `json:"recipientId"`
		Content     string `json:"content"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid body"))
	}
	m, err := h.svc.Send(c.Request().Context(), bicycleID, userID, body.RecipientID, body.Content)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, toMessageResponse(m))
}

func (h *MessageHandler) ListThread(c echo.Context) error {
	userID := uid(c)
	if userID == 0 {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	bicycleID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid bicycle id"))
	}
	buyerID, err := strconv.ParseUint(c.QueryParam("buyerId"), 10, 64)
	if err != nil || buyerID == 0 {
		buyerID = userID
	}
	list, err := h.svc.ListThread(c.Request().Context(), bicycleID, buyerID, userID)
	if err != nil {
		return writeServiceError(c, err)
	}
	resp := make([]MessageResponse, 0, len(list))
	for i := range list {
		resp = append(resp, toMessageResponse(&list[i]))
	}
	return c.JSON(http.StatusOK, resp)
}

type ThreadSummaryResponse struct {
	BicycleID     uint64          `json:"bicycleId"`
	CounterpartID uint64          `json:"counterpartId"`
	LastMessage   MessageResponse `json:"lastMessage"`
	Unread        int             `json:"unread"`
}

func (h *MessageHandler) ListInbox(c echo.Context) error {
	userID := uid(c)
	if userID == 0 {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	list, err := h.svc.ListInbox(c.Request().Context(), userID)
	if err != nil {
		return writeServiceError(c, err)
	}
	resp := make([]ThreadSummaryResponse, 0, len(list))
	for _, t := range list {
		resp = append(resp, ThreadSummaryResponse{
			BicycleID:     t.BicycleID,
			CounterpartID: t.CounterpartID,
			LastMessage:   toMessageResponse(&t.LastMessage),
			Unread:        t.Unread,
		})
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *MessageHandler) MarkRead(c echo.Context) error {
	userID := uid(c)
	if userID == 0 {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	bicycleID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid bicycle id"))
	}
	buyerID, err := strconv.ParseUint(c.QueryParam("buyerId"), 10, 64)
	if err != nil || buyerID == 0 {
		buyerID = userID
	}
	if err := h.svc.MarkThreadRead(c.Request().Context(), bicycleID, buyerID, userID); err != nil {
		return writeServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
