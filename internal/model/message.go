package model

import "time"

// Message is a single entry in a bicycle thread. When IsOffer is set it also
// carries a priced offer with its own status; plain chat messages leave
// OfferStatus empty.
type Message struct {
	ID          uint64      `gorm:"primaryKey;autoIncrement" json:"id"`
	BicycleID   uint64      `gorm:"column:bicycle_id;index:idx_messages_bicycle_sender;not null" json:"bicycleId"`
	SenderID    uint64      `gorm:"column:sender_id;index:idx_messages_bicycle_sender;not null" json:"senderId"`
	RecipientID uint64      `gorm:"column:recipient_id;index;not null" json:"recipientId"`
	Content     string      `gorm:"type:text" json:"content"`
	IsOffer     bool        `gorm:"column:is_offer;not null;default:false" json:"isOffer"`
	OfferAmount *int64      `gorm:"column:offer_amount" json:"offerAmount,omitempty"`
	OfferStatus OfferStatus `gorm:"column:offer_status;size:16;index" json:"offerStatus,omitempty"`
	ReadAt      *time.Time  `gorm:"column:read_at" json:"readAt,omitempty"`
	CreatedAt   time.Time   `gorm:"autoCreateTime" json:"createdAt"`
}

func (Message) TableName() string {
	return "messages"
}
