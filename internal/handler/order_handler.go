package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/velobay/velobay-backend/internal/model"
	"github.com/velobay/velobay-backend/internal/service"
)

type OrderHandler struct {
	svc    service.OrderService
	notify service.NotificationService
}

func NewOrderHandler(svc service.OrderService, notify service.NotificationService) *OrderHandler {
	return &OrderHandler{svc: svc, notify: notify}
}

type OrderResponse struct {
	ID               uint64  `json:"id"`
	OrderNumber      string  `json:"orderNumber"`
	BicycleID        uint64  `json:"bicycleId"`
	BuyerID          uint64  `json:"buyerId"`
	SellerID         uint64  `json:"sellerId"`
	OfferID          *uint64 `json:"offerId,omitempty"`
	TotalPrice       int64   `json:"totalPrice"`
	Status           string  `json:"status"`
	PaymentStatus    string  `json:"paymentStatus"`
	PaymentReference string  `json:"paymentReference,omitempty"`
	PaymentDeadline  string  `json:"paymentDeadline"`
	ShippingName     string  `json:"shippingName,omitempty"`
	ShippingLine1    string  `json:"shippingLine1,omitempty"`
	ShippingLine2    string  `json:"shippingLine2,omitempty"`
	ShippingCity     string  `json:"shippingCity,omitempty"`
	ShippingPostal   string  `json:"shippingPostalCode,omitempty"`
	ShippingCountry  string  `json:"shippingCountry,omitempty"`
	CreatedAt        string  `json:"createdAt"`
	UpdatedAt        string  `json:"updatedAt"`
}

func toOrderResponse(o *model.Order) OrderResponse {
	return OrderResponse{
		ID:               o.ID,
		OrderNumber:      o.OrderNumber,
		BicycleID:        o.BicycleID,
		BuyerID:          o.BuyerID,
		SellerID:         o.SellerID,
		OfferID:          o.OfferID,
		TotalPrice:       o.TotalPrice,
		Status:           string(o.Status),
		PaymentStatus:    string(o.PaymentStatus),
		PaymentReference: o.PaymentReference,
		PaymentDeadline:  o.PaymentDeadline.Format(time.RFC3339),
		ShippingName:     o.ShippingName,
		ShippingLine1:    o.ShippingLine1,
		ShippingLine2:    o.ShippingLine2,
		ShippingCity:     o.ShippingCity,
		ShippingPostal:   o.ShippingPostalCode,
		ShippingCountry:  o.ShippingCountry,
		CreatedAt:        o.CreatedAt.Format(time.RFC3339),
		UpdatedAt:        o.UpdatedAt.Format(time.RFC3339),
	}
}

func (h *OrderHandler) orderID(c echo.Context) (uint64, error) {
	return strconv.ParseUint(c.Param("id"), 10, 64)
}

func (h *OrderHandler) Get(c echo.Context) error {
	userID := uid(c)
	if userID == 0 {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	id, err := h.orderID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid order id"))
	}
	o, err := h.svc.Get(c.Request().Context(), id, userID)
	if err != nil {
		return writeServiceError(c, err)
	}
	_ = h.notify.MarkByOrder(c.Request().Context(), userID, o.ID)
	return c.JSON(http.StatusOK, toOrderResponse(o))
}

func (h *OrderHandler) SetShippingAddress(c echo.Context) error {
	userID := uid(c)
	if userID == 0 {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	id, err := h.orderID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid order id"))
	}
	var body struct {
		Name       string `json:"name"`
		Line1      string `json:"line1"`
		Line2      string `json:"line2"`
		City       string `json:"city"`
		PostalCode string `json:"postalCode"`
		Country    string `json:"country"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid body"))
	}
	o, err := h.svc.SetShippingAddress(c.Request().Context(), id, userID, service.ShippingAddress{
		Name:       body.Name,
		Line1:      body.Line1,
		Line2:      body.Line2,
		City:       body.City,
		PostalCode: body.PostalCode,
		Country:    body.Country,
	})
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, toOrderResponse(o))
}

func (h *OrderHandler) SubmitPayment(c echo.Context) error {
	userID := uid(c)
	if userID == 0 {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	id, err := h.orderID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid order id"))
	}
	var body struct {
		Reference string `json:"reference"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid body"))
	}
	o, err := h.svc.SubmitPayment(c.Request().Context(), id, userID, body.Reference)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, toOrderResponse(o))
}

func (h *OrderHandler) ConfirmPayment(c echo.Context) error {
	return h.simple(c, h.svc.ConfirmPayment)
}

func (h *OrderHandler) MarkShipped(c echo.Context) error {
	return h.simple(c, h.svc.MarkShipped)
}

func (h *OrderHandler) MarkDelivered(c echo.Context) error {
	return h.simple(c, h.svc.MarkDelivered)
}

func (h *OrderHandler) Complete(c echo.Context) error {
	return h.simple(c, h.svc.Complete)
}

func (h *OrderHandler) Cancel(c echo.Context) error {
	return h.simple(c, h.svc.Cancel)
}

func (h *OrderHandler) simple(c echo.Context, fn func(ctx context.Context, id, actorID uint64) (*model.Order, error)) error {
	userID := uid(c)
	if userID == 0 {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	id, err := h.orderID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid order id"))
	}
	o, err := fn(c.Request().Context(), id, userID)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, toOrderResponse(o))
}

func (h *OrderHandler) ListMine(c echo.Context) error {
	userID := uid(c)
	if userID == 0 {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	list, err := h.svc.ListByBuyer(c.Request().Context(), userID)
	if err != nil {
		return writeServiceError(c, err)
	}
	resp := make([]OrderResponse, 0, len(list))
	for i := range list {
		resp = append(resp, toOrderResponse(&list[i]))
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *OrderHandler) ListSales(c echo.Context) error {
	userID := uid(c)
	if userID == 0 {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	list, err := h.svc.ListBySeller(c.Request().Context(), userID)
	if err != nil {
		return writeServiceError(c, err)
	}
	resp := make([]OrderResponse, 0, len(list))
	for i := range list {
		resp = append(resp, toOrderResponse(&list[i]))
	}
	return c.JSON(http.StatusOK, resp)
}
