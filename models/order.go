package models

import "time"

// Kitchen-facing order status. Monoton: pending -> confirmed -> preparing ->
// ready -> served -> completed; canceled hanya dari state sebelum served.
const (
	OrderStatusPending   = "pending"
	OrderStatusConfirmed = "confirmed"
	OrderStatusPreparing = "preparing"
	OrderStatusReady     = "ready"
	OrderStatusServed    = "served"
	OrderStatusCompleted = "completed"
	OrderStatusCanceled  = "canceled"
)

type Order struct {
	ID           uint        `gorm:"primaryKey" json:"id"`
	RestaurantID uint        `gorm:"not null;index" json:"restaurant_id"`
	TableID      uint        `gorm:"not null;index" json:"table_id"`
	Table        Table       `gorm:"foreignKey:TableID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"table"`
	SessionID    *string     `gorm:"type:varchar(64);index" json:"session_id,omitempty"`
	Session      *Session    `gorm:"foreignKey:SessionID;references:ID" json:"-"`
	Status       string      `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	Subtotal     float64     `gorm:"type:decimal(10,2);not null;default:0.00" json:"subtotal"`
	Discounts    float64     `gorm:"type:decimal(10,2);not null;default:0.00" json:"discounts"`
	DeliveryFee  float64     `gorm:"type:decimal(10,2);not null;default:0.00" json:"delivery_fee"`
	Total        float64     `gorm:"type:decimal(10,2);not null;default:0.00" json:"total"`
	OrderItems   []OrderItem `gorm:"foreignKey:OrderID" json:"order_items"`
	CreatedAt    time.Time   `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time   `gorm:"not null" json:"updated_at"`
}
