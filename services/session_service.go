package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ryanadhitama/dinein-app/models"
	"github.com/ryanadhitama/dinein-app/utils"
)

// SessionService menegakkan single-claim-per-table dan single-claim-per-device
// untuk sesi dine-in. Seluruh mutasi berjalan dalam satu transaksi dengan row
// lock pada meja, sehingga claim bersamaan untuk meja yang sama terserialisasi.
type SessionService struct {
	db *gorm.DB
}

func NewSessionService(db *gorm.DB) *SessionService {
	return &SessionService{db: db}
}

// CreateOrReconnect melakukan claim meja secara atomik.
//
// candidateID adalah hint dari client (UUID); kalau device yang sama masih
// punya sesi aktif di meja ini, sesi lama yang dikembalikan (created=false)
// dan client wajib mengadopsi ID-nya (idempotent reconnect setelah refresh /
// storage hilang).
func (s *SessionService) CreateOrReconnect(candidateID string, restaurantID, tableID uint, deviceID string) (*models.Session, bool, error) {
	var result *models.Session
	var created bool

	err := s.db.Transaction(func(tx *gorm.DB) error {
		// Lock baris meja: serialisasi semua claim untuk meja ini.
		var table models.Table
		if err := lockForUpdate(tx).
			Where("id = ? AND restaurant_id = ?", tableID, restaurantID).
			First(&table).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("table %d not found", tableID)
			}
			return err
		}
		if !table.IsActive {
			return fmt.Errorf("table %s is not active", table.TableNumber)
		}

		// Candidate yang menunjuk sesi lama yang sudah ditutup berarti staff
		// menutup bill di antara dua request client; client harus retry
		// dengan candidate baru.
		if candidateID != "" {
			var known models.Session
			err := tx.Where("id = ?", candidateID).First(&known).Error
			if err == nil && known.Status == models.SessionStatusClosed {
				return utils.ErrSessionClosed
			}
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
		}

		// Sesi aktif di meja ini?
		var current models.Session
		err := tx.Where("active_table_id = ?", tableID).First(&current).Error
		if err == nil {
			if current.DeviceID == deviceID {
				// Reconnect: kembalikan sesi yang sudah ada.
				result = &current
				return nil
			}
			return utils.ErrTableOccupied
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		// Device masih memegang sesi aktif di meja lain? Dievaluasi dalam
		// snapshot transaksi yang sama dengan cek meja di atas.
		var other models.Session
		err = tx.Where("active_device_id = ?", deviceID).First(&other).Error
		if err == nil {
			return utils.ErrAlreadyAtOtherTable
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if candidateID == "" {
			candidateID = uuid.NewString()
		}

		session := models.Session{
			ID:             candidateID,
			RestaurantID:   restaurantID,
			TableID:        tableID,
			DeviceID:       deviceID,
			Status:         models.SessionStatusActive,
			BillStatus:     models.BillStatusOpen,
			ActiveTableID:  &tableID,
			ActiveDeviceID: &deviceID,
		}
		if err := tx.Create(&session).Error; err != nil {
			// Unique index pada active_table_id/active_device_id adalah
			// backstop struktural kalau dua claim lolos pembacaan di atas.
			return s.classifyClaimConflict(tableID, deviceID, err)
		}

		result = &session
		created = true
		return nil
	})

	if err != nil {
		return nil, false, err
	}
	return result, created, nil
}

// classifyClaimConflict menerjemahkan pelanggaran unique index menjadi
// conflict code yang stabil; error lain diteruskan apa adanya. Pembacaan
// ulang lewat koneksi di luar transaksi yang gagal: snapshot REPEATABLE READ
// transaksi itu bisa belum melihat row pemenang yang commit setelah snapshot
// diambil.
func (s *SessionService) classifyClaimConflict(tableID uint, deviceID string, cause error) error {
	var current models.Session
	if err := s.db.Where("active_table_id = ?", tableID).First(&current).Error; err == nil {
		return utils.ErrTableOccupied
	}
	if err := s.db.Where("active_device_id = ?", deviceID).First(&current).Error; err == nil {
		return utils.ErrAlreadyAtOtherTable
	}
	return cause
}

// GetByID mengembalikan satu sesi beserta meja.
func (s *SessionService) GetByID(sessionID string) (*models.Session, error) {
	var session models.Session
	if err := s.db.Preload("Table").Where("id = ?", sessionID).First(&session).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

// GetActiveByTable mengembalikan sesi aktif di satu meja, jika ada.
func (s *SessionService) GetActiveByTable(tableID uint) (*models.Session, error) {
	var session models.Session
	if err := s.db.Where("active_table_id = ?", tableID).First(&session).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

// ListByTable mengembalikan riwayat sesi satu meja (terbaru dulu); sesi tidak
// pernah dihapus, hanya ditutup.
func (s *SessionService) ListByTable(tableID uint) ([]models.Session, error) {
	var sessions []models.Session
	if err := s.db.Where("table_id = ?", tableID).
		Order("created_at desc").
		Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

// closeSessionTx menutup sesi di dalam transaksi pemanggil: status closed,
// bill closed, kolom mirror di-NULL-kan supaya meja dan device bebas di-claim
// lagi. Hanya boleh dipanggil lewat jalur Bill Coordinator (StaffClose).
func closeSessionTx(tx *gorm.DB, session *models.Session) error {
	now := time.Now()
	session.Status = models.SessionStatusClosed
	session.BillStatus = models.BillStatusClosed
	session.ClosedAt = &now
	session.ActiveTableID = nil
	session.ActiveDeviceID = nil

	// Save tidak menulis kolom bernilai nil; update eksplisit supaya kolom
	// mirror benar-benar NULL.
	return tx.Model(&models.Session{}).
		Where("id = ?", session.ID).
		Updates(map[string]interface{}{
			"status":           session.Status,
			"bill_status":      session.BillStatus,
			"closed_at":        session.ClosedAt,
			"active_table_id":  nil,
			"active_device_id": nil,
			"updated_at":       now,
		}).Error
}
