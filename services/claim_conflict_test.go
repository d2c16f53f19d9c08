package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/ryanadhitama/dinein-app/models"
	"github.com/ryanadhitama/dinein-app/utils"
)

func newClaimConflictDB(t *testing.T) *gorm.DB {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	if err := db.AutoMigrate(&models.Table{}, &models.Session{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func seedActiveSession(t *testing.T, db *gorm.DB, tableID uint, deviceID string) {
	session := models.Session{
		ID:             uuid.NewString(),
		RestaurantID:   1,
		TableID:        tableID,
		DeviceID:       deviceID,
		Status:         models.SessionStatusActive,
		BillStatus:     models.BillStatusOpen,
		ActiveTableID:  &tableID,
		ActiveDeviceID: &deviceID,
	}
	if err := db.Create(&session).Error; err != nil {
		t.Fatalf("failed to seed session: %v", err)
	}
}

// classifyClaimConflict membaca di luar transaksi yang kalah, jadi row
// pemenang yang sudah commit harus terlihat dan dipetakan ke conflict code.
func TestClassifyClaimConflictTableWinner(t *testing.T) {
	db := newClaimConflictDB(t)
	seedActiveSession(t, db, 7, "device-winner")
	svc := NewSessionService(db)

	cause := errors.New("Error 1062: Duplicate entry '7' for key 'idx_sessions_active_table_id'")
	err := svc.classifyClaimConflict(7, "device-loser", cause)
	assert.ErrorIs(t, err, utils.ErrTableOccupied)
}

func TestClassifyClaimConflictDeviceWinner(t *testing.T) {
	db := newClaimConflictDB(t)
	seedActiveSession(t, db, 7, "device-1")
	svc := NewSessionService(db)

	// Device yang sama claim meja lain: meja target bebas, tapi device sudah
	// terikat di tempat lain.
	cause := errors.New("Error 1062: Duplicate entry 'device-1' for key 'idx_sessions_active_device_id'")
	err := svc.classifyClaimConflict(9, "device-1", cause)
	assert.ErrorIs(t, err, utils.ErrAlreadyAtOtherTable)
}

func TestClassifyClaimConflictPassthrough(t *testing.T) {
	db := newClaimConflictDB(t)
	svc := NewSessionService(db)

	// Tanpa sesi aktif yang menjelaskan bentrokan, error asli diteruskan.
	cause := errors.New("disk I/O error")
	err := svc.classifyClaimConflict(7, "device-1", cause)
	assert.Equal(t, cause, err)
}
