package models

import "time"

// OrderItem adalah snapshot immutable dari satu cart line saat submit.
type OrderItem struct {
	ID        uint         `gorm:"primaryKey" json:"id"`
	OrderID   uint         `gorm:"not null;index" json:"order_id"`
	Order     Order        `gorm:"foreignKey:OrderID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	MenuID    uint         `gorm:"not null" json:"menu_id"`
	Menu      Menu         `gorm:"foreignKey:MenuID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"menu"`
	Quantity  int          `gorm:"not null" json:"quantity"`
	UnitPrice float64      `gorm:"type:decimal(10,2);not null" json:"unit_price"`
	Modifiers ModifierList `gorm:"type:text" json:"modifiers"`
	LineTotal float64      `gorm:"type:decimal(10,2);not null" json:"line_total"`
	Notes     string       `gorm:"type:text" json:"notes"`
	CreatedAt time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null" json:"updated_at"`
}
