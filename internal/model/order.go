package model

import "time"

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
	OrderStatusRefunded   OrderStatus = "refunded"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusSubmitted PaymentStatus = "submitted"
	PaymentStatusConfirmed PaymentStatus = "confirmed"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusDelivered},
	OrderStatusDelivered:  {OrderStatusCompleted},
	OrderStatusCompleted:  {OrderStatusRefunded},
	OrderStatusCancelled:  {OrderStatusRefunded},
}

func CanTransitionOrder(from, to OrderStatus) bool {
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type Order struct {
	ID          uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderNumber string `gorm:"column:order_number;size:32;not null;uniqueIndex:uk_orders_number" json:"orderNumber"`
	BicycleID   uint64 `gorm:"column:bicycle_id;index;not null" json:"bicycleId"`
	BuyerID     uint64 `gorm:"column:buyer_id;index;not null" json:"buyerId"`
	SellerID    uint64 `gorm:"column:seller_id;index;not null" json:"sellerId"`
	// OfferID is unique: an accepted offer materializes at most one order.
	OfferID    *uint64 `gorm:"column:offer_id;uniqueIndex:uk_orders_offer" json:"offerId,omitempty"`
	TotalPrice int64   `gorm:"column:total_price;not null" json:"totalPrice"`

	Status           OrderStatus   `gorm:"column:status;size:32;not null;index" json:"status"`
	PaymentStatus    PaymentStatus `gorm:"column:payment_status;size:32;not null" json:"paymentStatus"`
	PaymentReference string        `gorm:"column:payment_reference;size:120" json:"paymentReference,omitempty"`
	PaymentDeadline  time.Time     `gorm:"column:payment_deadline;index" json:"paymentDeadline"`

	ShippingName       string `gorm:"column:shipping_name;size:120" json:"shippingName,omitempty"`
	ShippingLine1      string `gorm:"column:shipping_line1;size:255" json:"shippingLine1,omitempty"`
	ShippingLine2      string `gorm:"column:shipping_line2;size:255" json:"shippingLine2,omitempty"`
	ShippingCity       string `gorm:"column:shipping_city;size:120" json:"shippingCity,omitempty"`
	ShippingPostalCode string `gorm:"column:shipping_postal_code;size:32" json:"shippingPostalCode,omitempty"`
	ShippingCountry    string `gorm:"column:shipping_country;size:64" json:"shippingCountry,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (Order) TableName() string {
	return "orders"
}
