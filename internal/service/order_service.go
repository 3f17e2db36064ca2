package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/velobay/velobay-backend/internal/model"
	"github.com/velobay/velobay-backend/internal/repository"
	"gorm.io/gorm"
)

type ShippingAddress struct {
	Name       string
	Line1      string
	Line2      string
	City       string
	PostalCode string
	Country    string
}

type OrderService interface {
	Get(ctx context.Context, id, viewerID uint64) (*model.Order, error)
	ListByBuyer(ctx context.Context, buyerID uint64) ([]model.Order, error)
	ListBySeller(ctx context.Context, sellerID uint64) ([]model.Order, error)
	SetShippingAddress(ctx context.Context, id, buyerID uint64, addr ShippingAddress) (*model.Order, error)
	SubmitPayment(ctx context.Context, id, buyerID uint64, reference string) (*model.Order, error)
	ConfirmPayment(ctx context.Context, id, sellerID uint64) (*model.Order, error)
	MarkShipped(ctx context.Context, id, sellerID uint64) (*model.Order, error)
	MarkDelivered(ctx context.Context, id, buyerID uint64) (*model.Order, error)
	Complete(ctx context.Context, id, buyerID uint64) (*model.Order, error)
	Cancel(ctx context.Context, id, actorID uint64) (*model.Order, error)
	CancelExpiredOrders(ctx context.Context) (int64, error)
}

type orderService struct {
	db     *gorm.DB
	repo   repository.OrderRepository
	bikes  BicycleService
	notify NotificationService
}

func NewOrderService(db *gorm.DB, repo repository.OrderRepository, bikes BicycleService, notify NotificationService) OrderService {
	return &orderService{db: db, repo: repo, bikes: bikes, notify: notify}
}

func (s *orderService) Get(ctx context.Context, id, viewerID uint64) (*model.Order, error) {
	o, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if viewerID != o.BuyerID && viewerID != o.SellerID {
		return nil, fmt.Errorf("%w: not a party to this order", ErrForbidden)
	}
	return o, nil
}

func (s *orderService) ListByBuyer(ctx context.Context, buyerID uint64) ([]model.Order, error) {
	return s.repo.ListByBuyer(ctx, buyerID)
}

func (s *orderService) ListBySeller(ctx context.Context, sellerID uint64) ([]model.Order, error) {
	return s.repo.ListBySeller(ctx, sellerID)
}

func (s *orderService) SetShippingAddress(ctx context.Context, id, buyerID uint64, addr ShippingAddress) (*model.Order, error) {
	o, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.BuyerID != buyerID {
		return nil, fmt.Errorf("%w: not the buyer", ErrForbidden)
	}
	if o.Status != model.OrderStatusPending && o.Status != model.OrderStatusProcessing {
		return nil, fmt.Errorf("%w: shipping address is locked after shipment", ErrConflict)
	}
	if strings.TrimSpace(addr.Name) == "" || strings.TrimSpace(addr.Line1) == "" || strings.TrimSpace(addr.City) == "" {
		return nil, fmt.Errorf("%w: name, line1 and city are required", ErrValidation)
	}
	o.ShippingName = strings.TrimSpace(addr.Name)
	o.ShippingLine1 = strings.TrimSpace(addr.Line1)
	o.ShippingLine2 = strings.TrimSpace(addr.Line2)
	o.ShippingCity = strings.TrimSpace(addr.City)
	o.ShippingPostalCode = strings.TrimSpace(addr.PostalCode)
	o.ShippingCountry = strings.TrimSpace(addr.Country)
	if err := s.repo.Update(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

// SubmitPayment records the buyer's bank-transfer reference. The order stays
// pending until the seller confirms receipt.
func (s *orderService) SubmitPayment(ctx context.Context, id, buyerID uint64, reference string) (*model.Order, error) {
	o, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.BuyerID != buyerID {
		return nil, fmt.Errorf("%w: not the buyer", ErrForbidden)
	}
	if o.Status != model.OrderStatusPending {
		return nil, fmt.Errorf("%w: order is not awaiting payment", ErrConflict)
	}
	if strings.TrimSpace(reference) == "" {
		return nil, fmt.Errorf("%w: payment reference is required", ErrValidation)
	}
	rows, err := s.repo.SubmitPaymentIfPending(ctx, id, strings.TrimSpace(reference))
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, fmt.Errorf("%w: payment already submitted or confirmed", ErrConflict)
	}
	o, err = s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	orderID := o.ID
	s.notify.Notify(ctx, o.SellerID, "payment_submitted", "Payment submitted",
		fmt.Sprintf("The buyer reported a bank transfer for order %s.", o.OrderNumber), nil, nil, &orderID)
	return o, nil
}

func (s *orderService) ConfirmPayment(ctx context.Context, id, sellerID uint64) (*model.Order, error) {
	o, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.SellerID != sellerID {
		return nil, fmt.Errorf("%w: not the seller", ErrForbidden)
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		rows, err := repo.ConfirmPaymentIfSubmitted(ctx, id)
		if err != nil {
			return err
		}
		if rows == 0 {
			return fmt.Errorf("%w: payment has not been submitted", ErrConflict)
		}
		rows, err = repo.UpdateStatusIf(ctx, id, model.OrderStatusPending, model.OrderStatusProcessing)
		if err != nil {
			return err
		}
		if rows == 0 {
			return fmt.Errorf("%w: order is not awaiting payment", ErrConflict)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	o, err = s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	orderID := o.ID
	s.notify.Notify(ctx, o.BuyerID, "payment_confirmed", "Payment confirmed",
		fmt.Sprintf("The seller confirmed payment for order %s.", o.OrderNumber), nil, nil, &orderID)
	return o, nil
}

func (s *orderService) MarkShipped(ctx context.Context, id, sellerID uint64) (*model.Order, error) {
	return s.advance(ctx, id, sellerID, roleSeller, model.OrderStatusProcessing, model.OrderStatusShipped,
		"order_shipped", "Order shipped", "Your order %s is on its way.")
}

// MarkDelivered tolerates replays: a second call on a delivered order
// returns the order unchanged.
func (s *orderService) MarkDelivered(ctx context.Context, id, buyerID uint64) (*model.Order, error) {
	o, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.BuyerID != buyerID {
		return nil, fmt.Errorf("%w: not the buyer", ErrForbidden)
	}
	if o.Status == model.OrderStatusDelivered {
		return o, nil
	}
	return s.advance(ctx, id, buyerID, roleBuyer, model.OrderStatusShipped, model.OrderStatusDelivered,
		"order_delivered", "Order delivered", "The buyer received order %s.")
}

func (s *orderService) Complete(ctx context.Context, id, buyerID uint64) (*model.Order, error) {
	return s.advance(ctx, id, buyerID, roleBuyer, model.OrderStatusDelivered, model.OrderStatusCompleted,
		"order_completed", "Order completed", "Order %s is complete.")
}

type actorRole int

const (
	roleBuyer actorRole = iota
	roleSeller
)

func (s *orderService) advance(ctx context.Context, id, actorID uint64, role actorRole, from, to model.OrderStatus, typ, title, bodyFmt string) (*model.Order, error) {
	o, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if role == roleBuyer && o.BuyerID != actorID {
		return nil, fmt.Errorf("%w: not the buyer", ErrForbidden)
	}
	if role == roleSeller && o.SellerID != actorID {
		return nil, fmt.Errorf("%w: not the seller", ErrForbidden)
	}
	if !model.CanTransitionOrder(o.Status, to) {
		return nil, fmt.Errorf("%w: cannot move order from %s to %s", ErrConflict, o.Status, to)
	}
	rows, err := s.repo.UpdateStatusIf(ctx, id, from, to)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, fmt.Errorf("%w: order is no longer %s", ErrConflict, from)
	}
	o, err = s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	counterparty := o.BuyerID
	if role == roleBuyer {
		counterparty = o.SellerID
	}
	orderID := o.ID
	s.notify.Notify(ctx, counterparty, typ, title, fmt.Sprintf(bodyFmt, o.OrderNumber), nil, nil, &orderID)
	return o, nil
}

// Cancel aborts an order before shipment and frees the bicycle for sale
// again when no newer order exists.
func (s *orderService) Cancel(ctx context.Context, id, actorID uint64) (*model.Order, error) {
	o, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if actorID != o.BuyerID && actorID != o.SellerID {
		return nil, fmt.Errorf("%w: not a party to this order", ErrForbidden)
	}
	if o.Status != model.OrderStatusPending && o.Status != model.OrderStatusProcessing {
		return nil, fmt.Errorf("%w: cannot cancel after shipment", ErrConflict)
	}
	rows, err := s.repo.UpdateStatusIf(ctx, id, o.Status, model.OrderStatusCancelled)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, fmt.Errorf("%w: order state changed, try again", ErrConflict)
	}
	if err := s.bikes.RevertToAvailable(ctx, o.BicycleID, o.ID); err != nil && !errors.Is(err, ErrConflict) {
		return nil, err
	}
	o, err = s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	counterparty := o.BuyerID
	if actorID == o.BuyerID {
		counterparty = o.SellerID
	}
	orderID := o.ID
	s.notify.Notify(ctx, counterparty, "order_cancelled", "Order cancelled",
		fmt.Sprintf("Order %s was cancelled.", o.OrderNumber), nil, nil, &orderID)
	return o, nil
}

// CancelExpiredOrders is the payment-deadline sweep. Each overdue order is
// cancelled on its own so one bad row cannot block the rest.
func (s *orderService) CancelExpiredOrders(ctx context.Context) (int64, error) {
	overdue, err := s.repo.ListPaymentOverdue(ctx, time.Now())
	if err != nil {
		return 0, err
	}
	var cancelled int64
	for _, o := range overdue {
		rows, err := s.repo.UpdateStatusIf(ctx, o.ID, model.OrderStatusPending, model.OrderStatusCancelled)
		if err != nil {
			return cancelled, err
		}
		if rows == 0 {
			continue
		}
		cancelled++
		if err := s.bikes.RevertToAvailable(ctx, o.BicycleID, o.ID); err != nil && !errors.Is(err, ErrConflict) {
			return cancelled, err
		}
		orderID := o.ID
		s.notify.Notify(ctx, o.BuyerID, "order_cancelled", "Order cancelled",
			fmt.Sprintf("Order %s was cancelled because payment was not received in time.", o.OrderNumber), nil, nil, &orderID)
	}
	return cancelled, nil
}

func (s *orderService) find(ctx context.Context, id uint64) (*model.Order, error) {
	o, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: order not found", ErrNotFound)
		}
		return nil, err
	}
	return o, nil
}
