package models

import "time"

// Session status
const (
	SessionStatusActive = "active"
	SessionStatusClosed = "closed"
)

// Bill status per session (independent of kitchen order status)
const (
	BillStatusOpen       = "open"
	BillStatusRequesting = "requesting_closure"
	BillStatusClosed     = "closed"
)

// Session mengikat satu device ke satu meja selama satu occupancy window.
// ActiveTableID dan ActiveDeviceID mirror TableID/DeviceID selama sesi aktif
// dan di-NULL-kan saat closed; unique index pada keduanya menjamin maksimal
// satu sesi aktif per meja dan per device di level storage (NULL tidak
// berbenturan di unique index, baik MySQL maupun SQLite).
type Session struct {
	ID             string     `gorm:"type:varchar(64);primaryKey" json:"id"`
	RestaurantID   uint       `gorm:"not null;index" json:"restaurant_id"`
	TableID        uint       `gorm:"not null;index" json:"table_id"`
	Table          Table      `gorm:"foreignKey:TableID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"table"`
	DeviceID       string     `gorm:"type:varchar(128);not null;index" json:"device_id"`
	Status         string     `gorm:"type:varchar(20);not null;default:'active'" json:"status"`
	BillStatus     string     `gorm:"type:varchar(30);not null;default:'open'" json:"bill_status"`
	ActiveTableID  *uint      `gorm:"uniqueIndex" json:"-"`
	ActiveDeviceID *string    `gorm:"type:varchar(128);uniqueIndex" json:"-"`
	CreatedAt      time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"not null" json:"updated_at"`
	ClosedAt       *time.Time `json:"closed_at,omitempty"`
}

func (s *Session) IsActive() bool {
	return s.Status == SessionStatusActive
}
