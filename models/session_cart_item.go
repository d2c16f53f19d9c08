package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Modifier adalah tambahan per-line (extra topping, level pedas, dll)
// dengan harga aditif terhadap unit price.
type Modifier struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// ModifierList disimpan sebagai kolom JSON agar portable MySQL/SQLite.
type ModifierList []Modifier

func (m ModifierList) Value() (driver.Value, error) {
	if m == nil {
		m = ModifierList{}
	}
	return json.Marshal(m)
}

func (m *ModifierList) Scan(value interface{}) error {
	if value == nil {
		*m = ModifierList{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	default:
		return errors.New("unsupported type for ModifierList")
	}
}

// Key menghasilkan bentuk kanonik (sorted) untuk membandingkan set modifier.
// Dua line dengan menu sama dan Key sama di-merge menjadi satu line.
func (m ModifierList) Key() string {
	if len(m) == 0 {
		return ""
	}
	parts := make([]string, 0, len(m))
	for _, mod := range m {
		parts = append(parts, fmt.Sprintf("%s:%.2f", mod.Name, mod.Price))
	}
	sort.Strings(parts)
	return strings.Join(parts, "|")
}

// Total menjumlahkan harga seluruh modifier.
func (m ModifierList) Total() float64 {
	var total float64
	for _, mod := range m {
		total += mod.Price
	}
	return total
}

// SessionCartItem adalah line belanja yang belum di-submit, milik satu sesi.
// Hilang saat order dibuat, saat clear eksplisit, atau saat sesi ditutup.
type SessionCartItem struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	SessionID   string       `gorm:"type:varchar(64);not null;index" json:"session_id"`
	Session     Session      `gorm:"foreignKey:SessionID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	MenuID      uint         `gorm:"not null" json:"menu_id"`
	Menu        Menu         `gorm:"foreignKey:MenuID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"menu"`
	Quantity    int          `gorm:"not null" json:"quantity"`
	UnitPrice   float64      `gorm:"type:decimal(10,2);not null" json:"unit_price"`
	Modifiers   ModifierList `gorm:"type:text" json:"modifiers"`
	ModifierKey string       `gorm:"type:varchar(255);not null;default:''" json:"-"`
	Notes       string       `gorm:"type:text" json:"notes"`
	CreatedAt   time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"not null" json:"updated_at"`
}

// LineTotal = (unit price + total modifier) x quantity.
func (i *SessionCartItem) LineTotal() float64 {
	return (i.UnitPrice + i.Modifiers.Total()) * float64(i.Quantity)
}
