package models

import "time"

type Table struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	RestaurantID uint      `gorm:"not null;index:idx_restaurant_table,unique" json:"restaurant_id"`
	TableNumber  string    `gorm:"type:varchar(50);not null;index:idx_restaurant_table,unique" json:"table_number"`
	Capacity     int       `gorm:"not null;default:2" json:"capacity"`
	IsActive     bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null" json:"updated_at"`
}
