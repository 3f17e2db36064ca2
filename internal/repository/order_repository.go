package repository

import (
	"context"
	"time"

	"github.com/velobay/velobay-backend/internal/model"
	"gorm.io/gorm"
)

type OrderRepository interface {
	Create(ctx context.Context, o *model.Order) error
	FindByID(ctx context.Context, id uint64) (*model.Order, error)
	FindByOffer(ctx context.Context, offerID uint64) (*model.Order, error)
	ListByBuyer(ctx context.Context, buyerID uint64) ([]model.Order, error)
	ListBySeller(ctx context.Context, sellerID uint64) ([]model.Order, error)
	Update(ctx context.Context, o *model.Order) error
	UpdateStatusIf(ctx context.Context, id uint64, from, to model.OrderStatus) (int64, error)
	SubmitPaymentIfPending(ctx context.Context, id uint64, reference string) (int64, error)
	ConfirmPaymentIfSubmitted(ctx context.Context, id uint64) (int64, error)
	IsNewestForBicycle(ctx context.Context, bicycleID, orderID uint64) (bool, error)
	ListPaymentOverdue(ctx context.Context, now time.Time) ([]model.Order, error)
	WithTx(tx *gorm.DB) OrderRepository
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) WithTx(tx *gorm.DB) OrderRepository {
	return &orderRepository{db: tx}
}

func (r *orderRepository) Create(ctx context.Context, o *model.Order) error {
	return r.db.WithContext(ctx).Create(o).Error
}

func (r *orderRepository) FindByID(ctx context.Context, id uint64) (*model.Order, error) {
	var o model.Order
	if err := r.db.WithContext(ctx).First(&o, id).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *orderRepository) FindByOffer(ctx context.Context, offerID uint64) (*model.Order, error) {
	var o model.Order
	if err := r.db.WithContext(ctx).
		Where("offer_id = ?", offerID).
		First(&o).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *orderRepository) ListByBuyer(ctx context.Context, buyerID uint64) ([]model.Order, error) {
	var list []model.Order
	if err := r.db.WithContext(ctx).
		Where("buyer_id = ?", buyerID).
		Order("id DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *orderRepository) ListBySeller(ctx context.Context, sellerID uint64) ([]model.Order, error) {
	var list []model.Order
	if err := r.db.WithContext(ctx).
		Where("seller_id = ?", sellerID).
		Order("id DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *orderRepository) Update(ctx context.Context, o *model.Order) error {
	return r.db.WithContext(ctx).Save(o).Error
}

func (r *orderRepository) UpdateStatusIf(ctx context.Context, id uint64, from, to model.OrderStatus) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

// SubmitPaymentIfPending guards on the order status too, so a payment
// reference can never land on a cancelled order.
func (r *orderRepository) SubmitPaymentIfPending(ctx context.Context, id uint64, reference string) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Where("id = ? AND status = ? AND payment_status = ?",
			id, model.OrderStatusPending, model.PaymentStatusPending).
		Updates(map[string]interface{}{
			"payment_status":    model.PaymentStatusSubmitted,
			"payment_reference": reference,
		})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *orderRepository) ConfirmPaymentIfSubmitted(ctx context.Context, id uint64) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Where("id = ? AND payment_status = ?", id, model.PaymentStatusSubmitted).
		Update("payment_status", model.PaymentStatusConfirmed)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

// IsNewestForBicycle reports whether orderID is the most recent order row for
// the bicycle. Guards availability reverts against a newer sale.
func (r *orderRepository) IsNewestForBicycle(ctx context.Context, bicycleID, orderID uint64) (bool, error) {
	var newest model.Order
	if err := r.db.WithContext(ctx).
		Where("bicycle_id = ?", bicycleID).
		Order("id DESC").
		First(&newest).Error; err != nil {
		return false, err
	}
	return newest.ID == orderID, nil
}

func (r *orderRepository) ListPaymentOverdue(ctx context.Context, now time.Time) ([]model.Order, error) {
	var list []model.Order
	if err := r.db.WithContext(ctx).
		Where("status = ? AND payment_status = ? AND payment_deadline < ?",
			model.OrderStatusPending, model.PaymentStatusPending, now).
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
