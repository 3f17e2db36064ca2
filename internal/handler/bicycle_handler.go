package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/velobay/velobay-backend/internal/model"
	"github.com/velobay/velobay-backend/internal/repository"
	"github.com/velobay/velobay-backend/internal/service"
)

type BicycleHandler struct {
	svc service.BicycleService
}

func NewBicycleHandler(svc service.BicycleService) *BicycleHandler {
	return &BicycleHandler{svc: svc}
}

type bicycleBody struct {
	Brand       string `json:"brand"`
	Model       string `json:"model"`
	Year        int    `json:"year"`
	Condition   string `json:"condition"`
	Description string `json:"description"`
	Price       int64  `json:"price"`
}

type BicycleResponse struct {
	ID          uint64 `json:"id"`
	SellerID    uint64 `json:"sellerId"`
	Brand       string `json:"brand"`
	Model       string `json:"model"`
	Year        int    `json:"year"`
	Condition   string `json:"condition"`
	Description string `json:"description"`
	Price       int64  `json:"price"`
	Status      string `json:"status"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

func toBicycleResponse(b *model.Bicycle) BicycleResponse {
	return BicycleResponse{
		ID:          b.ID,
		SellerID:    b.SellerID,
		Brand:       b.Brand,
		Model:       b.Model,
		Year:        b.Year,
		Condition:   b.Condition,
		Description: b.Description,
		Price:       b.Price,
		Status:      string(b.Status),
		CreatedAt:   b.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   b.UpdatedAt.Format(time.RFC3339),
	}
}

func (h *BicycleHandler) Create(c echo.Context) error {
	userID := uid(c)
	if userID == 0 {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	var body bicycleBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid body"))
	}
	b, err := h.svc.Create(c.Request().Context(), userID, service.BicycleInput{
		Brand:       body.Brand,
		Model:       body.Model,
		Year:        body.Year,
		Condition:   body.Condition,
		Description: body.Description,
		Price:       body.Price,
	})
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, toBicycleResponse(b))
}

func (h *BicycleHandler) Update(c echo.Context) error {
	userID := uid(c)
	if userID == 0 {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid bicycle id"))
	}
	var body bicycleBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid body"))
	}
	b, err := h.svc.Update(c.Request().Context(), id, userID, service.BicycleInput{
		Brand:       body.Brand,
		Model:       body.Model,
		Year:        body.Year,
		Condition:   body.Condition,
		Description: body.Description,
		Price:       body.Price,
	})
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, toBicycleResponse(b))
}

func (h *BicycleHandler) Publish(c echo.Context) error {
	return h.transition(c, h.svc.Publish)
}

func (h *BicycleHandler) Archive(c echo.Context) error {
	return h.transition(c, h.svc.Archive)
}

func (h *BicycleHandler) transition(c echo.Context, fn func(ctx context.Context, id, sellerID uint64) (*model.Bicycle, error)) error {
	userID := uid(c)
	if userID == 0 {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid bicycle id"))
	}
	b, err := fn(c.Request().Context(), id, userID)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, toBicycleResponse(b))
}

func (h *BicycleHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid bicycle id"))
	}
	b, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, toBicycleResponse(b))
}

type BicycleListResponse struct {
	Bicycles []BicycleResponse `json:"bicycles"`
	Total    int64             `json:"total"`
}

func (h *BicycleHandler) List(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	maxPrice, _ := strconv.ParseInt(c.QueryParam("maxPrice"), 10, 64)
	f := repository.BicycleFilter{
		Brand:    c.QueryParam("brand"),
		MaxPrice: maxPrice,
	}
	list, total, err := h.svc.List(c.Request().Context(), limit, offset, f)
	if err != nil {
		return writeServiceError(c, err)
	}
	resp := BicycleListResponse{Bicycles: make([]BicycleResponse, 0, len(list)), Total: total}
	for i := range list {
		resp.Bicycles = append(resp.Bicycles, toBicycleResponse(&list[i]))
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *BicycleHandler) ListMine(c echo.Context) error {
	userID := uid(c)
	if userID == 0 {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	list, err := h.svc.ListBySeller(c.Request().Context(), userID)
	if err != nil {
		return writeServiceError(c, err)
	}
	resp := make([]BicycleResponse, 0, len(list))
	for i := range list {
		resp = append(resp, toBicycleResponse(&list[i]))
	}
	return c.JSON(http.StatusOK, resp)
}
