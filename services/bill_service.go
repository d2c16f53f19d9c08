package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/ryanadhitama/dinein-app/models"
	"github.com/ryanadhitama/dinein-app/utils"
)

// BillService memiliki state bill per sesi (open / requesting_closure /
// closed), independen dari status order dapur. Ketiga operasi berjalan di
// bawah row lock sesi, jadi cancel vs close yang datang bersamaan
// terserialisasi; begitu close ter-commit, cancel melihat SESSION_CLOSED
// (close irreversible, staff menang).
type BillService struct {
	db *gorm.DB
}

func NewBillService(db *gorm.DB) *BillService {
	return &BillService{db: db}
}

func lockSession(tx *gorm.DB, sessionID string) (*models.Session, error) {
	var session models.Session
	if err := lockForUpdate(tx).
		Where("id = ?", sessionID).
		First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("session %s not found", sessionID)
		}
		return nil, err
	}
	return &session, nil
}

// RequestClose: open -> requesting_closure. Bisa dari customer atau staff.
func (s *BillService) RequestClose(sessionID string) (*models.Session, error) {
	var result *models.Session

	err := s.db.Transaction(func(tx *gorm.DB) error {
		session, err := lockSession(tx, sessionID)
		if err != nil {
			return err
		}
		if session.Status == models.SessionStatusClosed {
			return utils.ErrSessionClosed
		}
		if session.BillStatus == models.BillStatusRequesting {
			return utils.ErrAlreadyRequesting
		}

		session.BillStatus = models.BillStatusRequesting
		if err := tx.Save(session).Error; err != nil {
			return err
		}
		result = session
		return nil
	})

	if err != nil {
		return nil, err
	}
	return result, nil
}

// CancelCloseRequest: requesting_closure -> open. Retraction dari customer.
func (s *BillService) CancelCloseRequest(sessionID string) (*models.Session, error) {
	var result *models.Session

	err := s.db.Transaction(func(tx *gorm.DB) error {
		session, err := lockSession(tx, sessionID)
		if err != nil {
			return err
		}
		if session.Status == models.SessionStatusClosed {
			return utils.ErrSessionClosed
		}
		if session.BillStatus != models.BillStatusRequesting {
			return utils.ErrNotRequesting
		}

		session.BillStatus = models.BillStatusOpen
		if err := tx.Save(session).Error; err != nil {
			return err
		}
		result = session
		return nil
	})

	if err != nil {
		return nil, err
	}
	return result, nil
}

// StaffClose: requesting_closure -> closed. Satu-satunya jalur yang
// membebaskan meja: cart sesi dan general cart meja dikosongkan, sesi
// ditutup, kolom mirror di-NULL-kan sehingga meja bisa di-claim sesi baru.
func (s *BillService) StaffClose(sessionID string) (*models.Session, error) {
	var result *models.Session

	err := s.db.Transaction(func(tx *gorm.DB) error {
		session, err := lockSession(tx, sessionID)
		if err != nil {
			return err
		}
		if session.Status == models.SessionStatusClosed {
			return utils.ErrSessionClosed
		}
		if session.BillStatus != models.BillStatusRequesting {
			return utils.ErrNotRequesting
		}

		if err := tx.Where("session_id = ?", session.ID).
			Delete(&models.SessionCartItem{}).Error; err != nil {
			return err
		}
		if err := tx.Where("table_id = ?", session.TableID).
			Delete(&models.GeneralCartItem{}).Error; err != nil {
			return err
		}

		if err := closeSessionTx(tx, session); err != nil {
			return err
		}

		result = session
		return nil
	})

	if err != nil {
		return nil, err
	}
	return result, nil
}
