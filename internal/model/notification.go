package model

import "time"

type Notification struct {
	ID        uint64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint64     `gorm:"column:user_id;index;not null" json:"userId"`
	Type      string     `gorm:"column:type;size:64;not null" json:"type"`
	Title     string     `gorm:"column:title;size:255" json:"title"`
	Body      string     `gorm:"column:body;type:text" json:"body"`
	BicycleID *uint64    `gorm:"column:bicycle_id;index" json:"bicycleId,omitempty"`
	MessageID *uint64    `gorm:"column:message_id;index" json:"messageId,omitempty"`
	OrderID   *uint64    `gorm:"column:order_id;index" json:"orderId,omitempty"`
	ReadAt    *time.Time `gorm:"column:read_at" json:"readAt,omitempty"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"createdAt"`
}

func (Notification) TableName() string {
	return "notifications"
}
