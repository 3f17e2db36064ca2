package model

import "time"

type BicycleStatus string

const (
	BicycleStatusDraft     BicycleStatus = "draft"
	BicycleStatusPending   BicycleStatus = "pending"
	BicycleStatusAvailable BicycleStatus = "available"
	BicycleStatusSold      BicycleStatus = "sold"
	BicycleStatusArchived  BicycleStatus = "archived"
)

type Bicycle struct {
	ID          uint64        `gorm:"primaryKey;autoIncrement" json:"id"`
	SellerID    uint64        `gorm:"column:seller_id;index;not null" json:"sellerId"`
	Brand       string        `gorm:"size:120;not null" json:"brand"`
	Model       string        `gorm:"size:120;not null" json:"model"`
	Year        int           `gorm:"not null" json:"year"`
	Condition   string        `gorm:"size:64" json:"condition"`
	Description string        `gorm:"type:text" json:"description"`
	Price       int64         `gorm:"not null" json:"price"`
	Status      BicycleStatus `gorm:"column:status;size:32;not null;index" json:"status"`
	CreatedAt   time.Time     `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time     `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (Bicycle) TableName() string {
	return "bicycles"
}
