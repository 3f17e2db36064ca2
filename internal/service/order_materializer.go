package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/velobay/velobay-backend/internal/model"
	"github.com/velobay/velobay-backend/internal/repository"
	"gorm.io/gorm"
)

const orderNumberRetries = 5

// OrderMaterializer turns an accepted offer into an Order row. It only
// inserts the order; flipping the bicycle to sold is a sibling step in the
// caller's transaction.
type OrderMaterializer struct {
	paymentDeadline time.Duration
}

func NewOrderMaterializer(paymentDeadline time.Duration) *OrderMaterializer {
	return &OrderMaterializer{paymentDeadline: paymentDeadline}
}

func (m *OrderMaterializer) Materialize(ctx context.Context, orders repository.OrderRepository, offer *model.Message, bicycle *model.Bicycle) (*model.Order, error) {
	if !offer.IsOffer || offer.OfferAmount == nil {
		return nil, fmt.Errorf("%w: message is not an offer", ErrValidation)
	}
	offerID := offer.ID
	order := &model.Order{
		BicycleID:       bicycle.ID,
		BuyerID:         offer.SenderID,
		SellerID:        bicycle.SellerID,
		OfferID:         &offerID,
		TotalPrice:      *offer.OfferAmount,
		Status:          model.OrderStatusPending,
		PaymentStatus:   model.PaymentStatusPending,
		PaymentDeadline: time.Now().Add(m.paymentDeadline),
	}
	for attempt := 0; attempt < orderNumberRetries; attempt++ {
		order.OrderNumber = newOrderNumber()
		err := orders.Create(ctx, order)
		if err == nil {
			return order, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, err
		}
		// Offer already materialized elsewhere, never retry past that.
		if existing, ferr := orders.FindByOffer(ctx, offerID); ferr == nil && existing != nil {
			return nil, fmt.Errorf("%w: offer already has an order", ErrConflict)
		}
	}
	return nil, fmt.Errorf("%w: could not allocate a unique order number", ErrConflict)
}

// newOrderNumber builds a human-readable code like VB-20260901-4F2A1C.
func newOrderNumber() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))[:6]
	return fmt.Sprintf("VB-%s-%s", time.Now().Format("20060102"), suffix)
}
