package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/ryanadhitama/dinein-app/models"
	"github.com/ryanadhitama/dinein-app/utils"
)

// CartService memegang pilihan customer yang belum di-submit untuk satu sesi
// aktif. Line dengan menu dan set modifier identik di-merge; set modifier
// berbeda jadi line terpisah. Cart satu sesi tidak pernah terlihat oleh sesi
// lain, termasuk di meja yang sama.
type CartService struct {
	db *gorm.DB
}

func NewCartService(db *gorm.DB) *CartService {
	return &CartService{db: db}
}

// CartSnapshot adalah hasil hitung cart: line + total per line + subtotal.
type CartSnapshot struct {
	Items    []models.SessionCartItem `json:"items"`
	Lines    []CartLine               `json:"lines"`
	Subtotal float64                  `json:"subtotal"`
}

type CartLine struct {
	ItemID    uint    `json:"item_id"`
	MenuID    uint    `json:"menu_id"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	LineTotal float64 `json:"line_total"`
}

// lockActiveSession mengambil sesi dengan row lock dan menolak mutasi pada
// sesi yang sudah ditutup (stale client harus tahu, bukan silently dropped).
func lockActiveSession(tx *gorm.DB, sessionID string) (*models.Session, error) {
	var session models.Session
	if err := lockForUpdate(tx).
		Where("id = ?", sessionID).
		First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("session %s not found", sessionID)
		}
		return nil, err
	}
	if session.Status == models.SessionStatusClosed {
		return nil, utils.ErrSessionClosed
	}
	return &session, nil
}

// AddItem menambahkan (atau merge) satu line ke cart sesi.
func (s *CartService) AddItem(sessionID string, menuID uint, quantity int, modifiers models.ModifierList, notes string) (*models.SessionCartItem, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive")
	}

	var result *models.SessionCartItem
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := lockActiveSession(tx, sessionID); err != nil {
			return err
		}

		// Harga diambil dari catalog, bukan dari client.
		var menu models.Menu
		if err := tx.First(&menu, menuID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("menu %d not found", menuID)
			}
			return err
		}
		if !menu.IsAvailable {
			return fmt.Errorf("menu %s is not available", menu.Name)
		}

		key := modifiers.Key()

		var existing models.SessionCartItem
		err := tx.Where("session_id = ? AND menu_id = ? AND modifier_key = ?", sessionID, menuID, key).
			First(&existing).Error
		if err == nil {
			existing.Quantity += quantity
			// Notes lama tidak boleh tertimpa saat merge; catatan berbeda
			// digabung supaya dua-duanya sampai ke dapur.
			if notes != "" {
				if existing.Notes == "" {
					existing.Notes = notes
				} else if existing.Notes != notes {
					existing.Notes = existing.Notes + "; " + notes
				}
			}
			if err := tx.Save(&existing).Error; err != nil {
				return err
			}
			result = &existing
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		item := models.SessionCartItem{
			SessionID:   sessionID,
			MenuID:      menuID,
			Quantity:    quantity,
			UnitPrice:   menu.Price,
			Modifiers:   modifiers,
			ModifierKey: key,
			Notes:       notes,
		}
		if err := tx.Create(&item).Error; err != nil {
			return err
		}
		result = &item
		return nil
	})

	if err != nil {
		return nil, err
	}
	return result, nil
}

// UpdateQuantity mengubah jumlah satu line; quantity <= 0 menghapus line.
func (s *CartService) UpdateQuantity(sessionID string, itemID uint, quantity int) (*models.SessionCartItem, error) {
	var result *models.SessionCartItem
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := lockActiveSession(tx, sessionID); err != nil {
			return err
		}

		var item models.SessionCartItem
		if err := tx.Where("id = ? AND session_id = ?", itemID, sessionID).
			First(&item).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("cart item %d not found", itemID)
			}
			return err
		}

		if quantity <= 0 {
			return tx.Delete(&item).Error
		}

		item.Quantity = quantity
		if err := tx.Save(&item).Error; err != nil {
			return err
		}
		result = &item
		return nil
	})

	if err != nil {
		return nil, err
	}
	return result, nil
}

// Clear mengosongkan seluruh line cart satu sesi; dipakai setelah submit
// order dan saat sesi ditutup.
func (s *CartService) Clear(sessionID string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := lockActiveSession(tx, sessionID); err != nil {
			return err
		}
		return tx.Where("session_id = ?", sessionID).
			Delete(&models.SessionCartItem{}).Error
	})
}

// Snapshot mengembalikan isi cart dengan total per-line dan subtotal; dipakai
// Order Ledger untuk materialisasi order.
func (s *CartService) Snapshot(sessionID string) (*CartSnapshot, error) {
	var session models.Session
	if err := s.db.Where("id = ?", sessionID).First(&session).Error; err != nil {
		return nil, err
	}
	if session.Status == models.SessionStatusClosed {
		return nil, utils.ErrSessionClosed
	}

	var items []models.SessionCartItem
	if err := s.db.Preload("Menu").
		Where("session_id = ?", sessionID).
		Order("created_at asc").
		Find(&items).Error; err != nil {
		return nil, err
	}

	return buildCartSnapshot(items), nil
}

func buildCartSnapshot(items []models.SessionCartItem) *CartSnapshot {
	snapshot := &CartSnapshot{Items: items}
	for _, item := range items {
		lineTotal := item.LineTotal()
		snapshot.Lines = append(snapshot.Lines, CartLine{
			ItemID:    item.ID,
			MenuID:    item.MenuID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			LineTotal: lineTotal,
		})
		snapshot.Subtotal += lineTotal
	}
	return snapshot
}
