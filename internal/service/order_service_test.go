package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/velobay/velobay-backend/internal/model"
)

func (e *testEnv) acceptedOrder(t *testing.T, sellerID, buyerID uint64, price int64) (*model.Bicycle, *model.Order) {
	t.Helper()
	ctx := context.Background()
	bike := e.createBicycle(t, sellerID, price+3000, model.BicycleStatusAvailable)
	offer, err := e.offers.CreateOffer(ctx, bike.ID, buyerID, price, "")
	if err != nil {
		t.Fatalf("create offer: %v", err)
	}
	res, err := e.offers.AcceptOffer(ctx, offer.ID, sellerID)
	if err != nil {
		t.Fatalf("accept offer: %v", err)
	}
	return bike, res.Order
}

func TestPaymentFlowMovesOrderToProcessing(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	seller := env.createUser(t, "seller@example.com")
	buyer := env.createUser(t, "buyer@example.com")
	_, order := env.acceptedOrder(t, seller.ID, buyer.ID, 12000)

	// confirming before the buyer submitted anything conflicts
	if _, err := env.orders.ConfirmPayment(ctx, order.ID, seller.ID); !errors.Is(err, ErrConflict) {
		t.Fatalf("early confirm err=%v want conflict", err)
	}

	if _, err := env.orders.SubmitPayment(ctx, order.ID, seller.ID, "TRX-1"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("seller submit err=%v want forbidden", err)
	}
	o, err := env.orders.SubmitPayment(ctx, order.ID, buyer.ID, "TRX-1")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if o.PaymentStatus != model.PaymentStatusSubmitted {
		t.Fatalf("payment status=%s want submitted", o.PaymentStatus)
	}
	if _, err := env.orders.SubmitPayment(ctx, order.ID, buyer.ID, "TRX-2"); !errors.Is(err, ErrConflict) {
		t.Fatalf("double submit err=%v want conflict", err)
	}

	o, err = env.orders.ConfirmPayment(ctx, order.ID, seller.ID)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if o.PaymentStatus != model.PaymentStatusConfirmed {
		t.Fatalf("payment status=%s want confirmed", o.PaymentStatus)
	}
	if o.Status != model.OrderStatusProcessing {
		t.Fatalf("order status=%s want processing", o.Status)
	}
}

func TestOrderForwardTransitions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	seller := env.createUser(t, "seller@example.com")
	buyer := env.createUser(t, "buyer@example.com")
	_, order := env.acceptedOrder(t, seller.ID, buyer.ID, 12000)

	if _, err := env.orders.SubmitPayment(ctx, order.ID, buyer.ID, "TRX-1"); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := env.orders.ConfirmPayment(ctx, order.ID, seller.ID); err != nil {
		t.Fatalf("confirm: %v", err)
	}

	if _, err := env.orders.MarkShipped(ctx, order.ID, buyer.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("buyer ship err=%v want forbidden", err)
	}
	o, err := env.orders.MarkShipped(ctx, order.ID, seller.ID)
	if err != nil {
		t.Fatalf("ship: %v", err)
	}
	if o.Status != model.OrderStatusShipped {
		t.Fatalf("status=%s want shipped", o.Status)
	}

	// cancel after shipment is off the table
	if _, err := env.orders.Cancel(ctx, order.ID, buyer.ID); !errors.Is(err, ErrConflict) {
		t.Fatalf("late cancel err=%v want conflict", err)
	}

	o, err = env.orders.MarkDelivered(ctx, order.ID, buyer.ID)
	if err != nil {
		t.Fatalf("deliver: %v", err)
	}
	if o.Status != model.OrderStatusDelivered {
		t.Fatalf("status=%s want delivered", o.Status)
	}

	// delivered tolerates a replay
	o, err = env.orders.MarkDelivered(ctx, order.ID, buyer.ID)
	if err != nil {
		t.Fatalf("replay deliver: %v", err)
	}
	if o.Status != model.OrderStatusDelivered {
		t.Fatalf("status=%s want delivered", o.Status)
	}

	o, err = env.orders.Complete(ctx, order.ID, buyer.ID)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if o.Status != model.OrderStatusCompleted {
		t.Fatalf("status=%s want completed", o.Status)
	}
}

func TestCancelRevertsBicycleAvailability(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	seller := env.createUser(t, "seller@example.com")
	buyer := env.createUser(t, "buyer@example.com")
	bike, order := env.acceptedOrder(t, seller.ID, buyer.ID, 12000)

	o, err := env.orders.Cancel(ctx, order.ID, buyer.ID)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if o.Status != model.OrderStatusCancelled {
		t.Fatalf("status=%s want cancelled", o.Status)
	}

	b, err := env.bikeRepo.FindByID(ctx, bike.ID)
	if err != nil {
		t.Fatalf("reload bicycle: %v", err)
	}
	if b.Status != model.BicycleStatusAvailable {
		t.Fatalf("bicycle status=%s want available", b.Status)
	}
}

func TestSubmitPaymentOnCancelledOrderConflicts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	seller := env.createUser(t, "seller@example.com")
	buyer := env.createUser(t, "buyer@example.com")
	_, order := env.acceptedOrder(t, seller.ID, buyer.ID, 12000)

	if _, err := env.orders.Cancel(ctx, order.ID, buyer.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	if _, err := env.orders.SubmitPayment(ctx, order.ID, buyer.ID, "TRX-LATE"); !errors.Is(err, ErrConflict) {
		t.Fatalf("submit on cancelled order err=%v want conflict", err)
	}

	o, err := env.orderRepo.FindByID(ctx, order.ID)
	if err != nil {
		t.Fatalf("reload order: %v", err)
	}
	if o.PaymentStatus != model.PaymentStatusPending {
		t.Fatalf("payment status=%s want pending", o.PaymentStatus)
	}
	if o.PaymentReference != "" {
		t.Fatalf("payment reference=%q want empty", o.PaymentReference)
	}
}

func TestCancelExpiredOrdersSweep(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	seller := env.createUser(t, "seller@example.com")
	buyer := env.createUser(t, "buyer@example.com")
	bike, order := env.acceptedOrder(t, seller.ID, buyer.ID, 12000)

	// push the payment deadline into the past
	if err := env.db.Model(&model.Order{}).
		Where("id = ?", order.ID).
		Update("payment_deadline", time.Now().Add(-time.Hour)).Error; err != nil {
		t.Fatalf("age order: %v", err)
	}

	n, err := env.orders.CancelExpiredOrders(ctx)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if n != 1 {
		t.Fatalf("cancelled %d orders, want 1", n)
	}

	o, err := env.orderRepo.FindByID(ctx, order.ID)
	if err != nil {
		t.Fatalf("reload order: %v", err)
	}
	if o.Status != model.OrderStatusCancelled {
		t.Fatalf("order status=%s want cancelled", o.Status)
	}
	b, err := env.bikeRepo.FindByID(ctx, bike.ID)
	if err != nil {
		t.Fatalf("reload bicycle: %v", err)
	}
	if b.Status != model.BicycleStatusAvailable {
		t.Fatalf("bicycle status=%s want available", b.Status)
	}

	// sweep is idempotent
	n, err = env.orders.CancelExpiredOrders(ctx)
	if err != nil {
		t.Fatalf("second sweep: %v", err)
	}
	if n != 0 {
		t.Fatalf("second sweep cancelled %d, want 0", n)
	}
}

func TestOrderVisibility(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	seller := env.createUser(t, "seller@example.com")
	buyer := env.createUser(t, "buyer@example.com")
	stranger := env.createUser(t, "stranger@example.com")
	_, order := env.acceptedOrder(t, seller.ID, buyer.ID, 12000)

	if _, err := env.orders.Get(ctx, order.ID, stranger.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("stranger get err=%v want forbidden", err)
	}
	if _, err := env.orders.Get(ctx, order.ID, buyer.ID); err != nil {
		t.Fatalf("buyer get: %v", err)
	}
	if _, err := env.orders.Get(ctx, order.ID, seller.ID); err != nil {
		t.Fatalf("seller get: %v", err)
	}
}
