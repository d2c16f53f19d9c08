package models

import "time"

// GeneralCartItem adalah cart legacy per-meja (tanpa sesi) untuk jalur
// staff-assisted. Tidak membawa invariant eksklusivitas sesi.
type GeneralCartItem struct {
	ID           uint         `gorm:"primaryKey" json:"id"`
	RestaurantID uint         `gorm:"not null;index" json:"restaurant_id"`
	TableID      uint         `gorm:"not null;index" json:"table_id"`
	Table        Table        `gorm:"foreignKey:TableID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	MenuID       uint         `gorm:"not null" json:"menu_id"`
	Menu         Menu         `gorm:"foreignKey:MenuID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"menu"`
	Quantity     int          `gorm:"not null" json:"quantity"`
	UnitPrice    float64      `gorm:"type:decimal(10,2);not null" json:"unit_price"`
	Modifiers    ModifierList `gorm:"type:text" json:"modifiers"`
	ModifierKey  string       `gorm:"type:varchar(255);not null;default:''" json:"-"`
	Notes        string       `gorm:"type:text" json:"notes"`
	CreatedAt    time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time    `gorm:"not null" json:"updated_at"`
}

func (i *GeneralCartItem) LineTotal() float64 {
	return (i.UnitPrice + i.Modifiers.Total()) * float64(i.Quantity)
}
