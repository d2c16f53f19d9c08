package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/ryanadhitama/dinein-app/models"
)

// GeneralCartService adalah jalur cart legacy per-meja untuk kondisi tanpa
// sesi (staff-assisted ordering). Tidak membawa invariant eksklusivitas sesi;
// semua device di meja yang sama melihat cart yang sama.
type GeneralCartService struct {
	db *gorm.DB
}

func NewGeneralCartService(db *gorm.DB) *GeneralCartService {
	return &GeneralCartService{db: db}
}

type GeneralCartSnapshot struct {
	Items    []models.GeneralCartItem `json:"items"`
	Subtotal float64                  `json:"subtotal"`
}

func (s *GeneralCartService) lookupTable(tx *gorm.DB, restaurantID, tableID uint) (*models.Table, error) {
	var table models.Table
	if err := tx.Where("id = ? AND restaurant_id = ?", tableID, restaurantID).
		First(&table).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("table %d not found", tableID)
		}
		return nil, err
	}
	if !table.IsActive {
		return nil, fmt.Errorf("table %s is not active", table.TableNumber)
	}
	return &table, nil
}

// AddItem menambahkan (atau merge) satu line ke cart meja.
func (s *GeneralCartService) AddItem(restaurantID, tableID, menuID uint, quantity int, modifiers models.ModifierList, notes string) (*models.GeneralCartItem, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive")
	}

	var result *models.GeneralCartItem
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := s.lookupTable(tx, restaurantID, tableID); err != nil {
			return err
		}

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

		var existing models.GeneralCartItem
		err := tx.Where("table_id = ? AND menu_id = ? AND modifier_key = ?", tableID, menuID, key).
			First(&existing).Error
		if err == nil {
			existing.Quantity += quantity
			if err := tx.Save(&existing).Error; err != nil {
				return err
			}
			result = &existing
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		item := models.GeneralCartItem{
			RestaurantID: restaurantID,
			TableID:      tableID,
			MenuID:       menuID,
			Quantity:     quantity,
			UnitPrice:    menu.Price,
			Modifiers:    modifiers,
			ModifierKey:  key,
			Notes:        notes,
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
func (s *GeneralCartService) UpdateQuantity(tableID, itemID uint, quantity int) (*models.GeneralCartItem, error) {
	var result *models.GeneralCartItem
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var item models.GeneralCartItem
		if err := tx.Where("id = ? AND table_id = ?", itemID, tableID).
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

// Clear mengosongkan cart satu meja.
func (s *GeneralCartService) Clear(tableID uint) error {
	return s.db.Where("table_id = ?", tableID).
		Delete(&models.GeneralCartItem{}).Error
}

// Snapshot mengembalikan isi cart meja beserta subtotal.
func (s *GeneralCartService) Snapshot(tableID uint) (*GeneralCartSnapshot, error) {
	var items []models.GeneralCartItem
	if err := s.db.Preload("Menu").
		Where("table_id = ?", tableID).
		Order("created_at asc").
		Find(&items).Error; err != nil {
		return nil, err
	}

	snapshot := &GeneralCartSnapshot{Items: items}
	for _, item := range items {
		snapshot.Subtotal += item.LineTotal()
	}
	return snapshot, nil
}
