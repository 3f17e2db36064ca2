package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/velobay/velobay-backend/internal/model"
	"github.com/velobay/velobay-backend/internal/service"
)

type OfferHandler struct {
	svc service.OfferService
}

func NewOfferHandler(svc service.OfferService) *OfferHandler {
	return &OfferHandler{svc: svc}
}

type MessageResponse struct {
	ID          uint64  `json:"id"`
	BicycleID   uint64  `json:"bicycleId"`
	SenderID    uint64  `json:"senderId"`
	RecipientID uint64  `json:"recipientId"`
	Content     string  `json:"content,omitempty"`
	IsOffer     bool    `json:"isOffer"`
	OfferAmount *int64  `json:"offerAmount,omitempty"`
	OfferStatus string  `json:"offerStatus,omitempty"`
	ReadAt      *string `json:"readAt,omitempty"`
	CreatedAt   string  `json:"createdAt"`
}

func toMessageResponse(m *model.Message) MessageResponse {
	var readAt *string
	if m.ReadAt != nil {
		val := m.ReadAt.Format(time.RFC3339)
		readAt = &val
	}
	return MessageResponse{
		ID:          m.ID,
		BicycleID:   m.BicycleID,
		SenderID:    m.SenderID,
		RecipientID: m.RecipientID,
		Content:     m.Content,
		IsOffer:     m.IsOffer,
		OfferAmount: m.OfferAmount,
		OfferStatus: string(m.OfferStatus),
		ReadAt:      readAt,
		CreatedAt:   m.CreatedAt.Format(time.RFC3339),
	}
}

func (h *OfferHandler) Create(c echo.Context) error {
	userID := uid(c)
	if userID == 0 {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	bicycleID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid bicycle id"))
	}
	var body struct {
		Amount  int64  `json:"amount"`
		Content string `json:"content"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid body"))
	}
	offer, err := h.svc.CreateOffer(c.Request().Context(), bicycleID, userID, body.Amount, body.Content)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, toMessageResponse(offer))
}

type AcceptResponse struct {
	Offer MessageResponse `json:"offer"`
	Order OrderResponse   `json:"order"`
}

func (h *OfferHandler) Accept(c echo.Context) error {
	userID := uid(c)
	if userID == 0 {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	offerID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid offer id"))
	}
	res, err := h.svc.AcceptOffer(c.Request().Context(), offerID, userID)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, AcceptResponse{
		Offer: toMessageResponse(res.Offer),
		Order: toOrderResponse(res.Order),
	})
}

func (h *OfferHandler) Reject(c echo.Context) error {
	userID := uid(c)
	if userID == 0 {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	offerID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid offer id"))
	}
	var body struct {
		Reason string `json:"reason"`
	}
	_ = c.Bind(&body)
	offer, err := h.svc.RejectOffer(c.Request().Context(), offerID, userID, body.Reason)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, toMessageResponse(offer))
}

func (h *OfferHandler) Get(c echo.Context) error {
	userID := uid(c)
	if userID == 0 {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	offerID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid offer id"))
	}
	offer, err := h.svc.Get(c.Request().Context(), offerID, userID)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, toMessageResponse(offer))
}

func (h *OfferHandler) ListForBicycle(c echo.Context) error {
	userID := uid(c)
	if userID == 0 {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	bicycleID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid bicycle id"))
	}
	list, err := h.svc.ListForBicycle(c.Request().Context(), bicycleID, userID)
	if err != nil {
		return writeServiceError(c, err)
	}
	resp := make([]MessageResponse, 0, len(list))
	for i := range list {
		resp = append(resp, toMessageResponse(&list[i]))
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *OfferHandler) ListMine(c echo.Context) error {
	userID := uid(c)
	if userID == 0 {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	list, err := h.svc.ListBySender(c.Request().Context(), userID)
	if err != nil {
		return writeServiceError(c, err)
	}
	resp := make([]MessageResponse, 0, len(list))
	for i := range list {
		resp = append(resp, toMessageResponse(&list[i]))
	}
	return c.JSON(http.StatusOK, resp)
}
