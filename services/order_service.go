package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/ryanadhitama/dinein-app/models"
	"github.com/ryanadhitama/dinein-app/utils"
)

// orderStatusFlow adalah transisi maju yang sah; tidak ada skip, tidak ada
// mundur. canceled ditangani terpisah (hanya dari state sebelum served).
var orderStatusFlow = map[string]string{
	models.OrderStatusPending:   models.OrderStatusConfirmed,
	models.OrderStatusConfirmed: models.OrderStatusPreparing,
	models.OrderStatusPreparing: models.OrderStatusReady,
	models.OrderStatusReady:     models.OrderStatusServed,
	models.OrderStatusServed:    models.OrderStatusCompleted,
}

var cancelableStatuses = map[string]bool{
	models.OrderStatusPending:   true,
	models.OrderStatusConfirmed: true,
	models.OrderStatusPreparing: true,
	models.OrderStatusReady:     true,
}

func canTransition(from, to string) bool {
	if to == models.OrderStatusCanceled {
		return cancelableStatuses[from]
	}
	return orderStatusFlow[from] == to
}

// OrderService mematerialisasi snapshot cart menjadi order durable dan
// menggerakkannya melewati state dapur.
type OrderService struct {
	db *gorm.DB
}

func NewOrderService(db *gorm.DB) *OrderService {
	return &OrderService{db: db}
}

// SubmitOrder membuat order dari cart sesi dan mengosongkan cart dalam satu
// transaksi: crash di tengah tidak boleh meninggalkan item di order dan di
// cart sekaligus, atau menghilangkan keduanya.
func (s *OrderService) SubmitOrder(sessionID string) (*models.Order, error) {
	var result *models.Order

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var session models.Session
		if err := lockForUpdate(tx).
			Where("id = ?", sessionID).
			First(&session).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("session %s not found", sessionID)
			}
			return err
		}
		if !session.IsActive() {
			return utils.ErrSessionNotActive
		}

		var items []models.SessionCartItem
		if err := tx.Where("session_id = ?", sessionID).
			Order("created_at asc").
			Find(&items).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return utils.ErrEmptyCart
		}

		order := models.Order{
			RestaurantID: session.RestaurantID,
			TableID:      session.TableID,
			SessionID:    &session.ID,
			Status:       models.OrderStatusPending,
		}

		var subtotal float64
		for _, item := range items {
			subtotal += item.LineTotal()
		}
		order.Subtotal = subtotal
		order.Discounts = 0
		order.DeliveryFee = 0 // dine-in
		order.Total = subtotal - order.Discounts + order.DeliveryFee

		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		for _, item := range items {
			orderItem := models.OrderItem{
				OrderID:   order.ID,
				MenuID:    item.MenuID,
				Quantity:  item.Quantity,
				UnitPrice: item.UnitPrice,
				Modifiers: item.Modifiers,
				LineTotal: item.LineTotal(),
				Notes:     item.Notes,
			}
			if err := tx.Create(&orderItem).Error; err != nil {
				return err
			}
			order.OrderItems = append(order.OrderItems, orderItem)
		}

		// Clearing cart dalam transaksi yang sama dengan insert order.
		if err := tx.Where("session_id = ?", sessionID).
			Delete(&models.SessionCartItem{}).Error; err != nil {
			return err
		}

		result = &order
		return nil
	})

	if err != nil {
		return nil, err
	}
	return result, nil
}

// SubmitTableOrder adalah jalur general cart (tanpa sesi, staff-assisted):
// order dibuat dengan session_id NULL dari cart per-meja.
func (s *OrderService) SubmitTableOrder(restaurantID, tableID uint) (*models.Order, error) {
	var result *models.Order

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var table models.Table
		if err := lockForUpdate(tx).
			Where("id = ? AND restaurant_id = ?", tableID, restaurantID).
			First(&table).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("table %d not found", tableID)
			}
			return err
		}

		var items []models.GeneralCartItem
		if err := tx.Where("table_id = ?", tableID).
			Order("created_at asc").
			Find(&items).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return utils.ErrEmptyCart
		}

		order := models.Order{
			RestaurantID: restaurantID,
			TableID:      tableID,
			Status:       models.OrderStatusPending,
		}

		var subtotal float64
		for _, item := range items {
			subtotal += item.LineTotal()
		}
		order.Subtotal = subtotal
		order.Total = subtotal

		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		for _, item := range items {
			orderItem := models.OrderItem{
				OrderID:   order.ID,
				MenuID:    item.MenuID,
				Quantity:  item.Quantity,
				UnitPrice: item.UnitPrice,
				Modifiers: item.Modifiers,
				LineTotal: item.LineTotal(),
				Notes:     item.Notes,
			}
			if err := tx.Create(&orderItem).Error; err != nil {
				return err
			}
			order.OrderItems = append(order.OrderItems, orderItem)
		}

		if err := tx.Where("table_id = ?", tableID).
			Delete(&models.GeneralCartItem{}).Error; err != nil {
			return err
		}

		result = &order
		return nil
	})

	if err != nil {
		return nil, err
	}
	return result, nil
}

// UpdateStatus menggerakkan order satu langkah. Check-and-write atomik di
// bawah row lock: dua staff client tidak bisa membawa order ke state yang
// bercabang.
func (s *OrderService) UpdateStatus(orderID uint, next string) (*models.Order, error) {
	var result *models.Order

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := lockForUpdate(tx).
			First(&order, orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("order %d not found", orderID)
			}
			return err
		}

		if !canTransition(order.Status, next) {
			return utils.ErrInvalidTransition
		}

		order.Status = next
		if err := tx.Save(&order).Error; err != nil {
			return err
		}

		result = &order
		return nil
	})

	if err != nil {
		return nil, err
	}
	return result, nil
}

// GetByID mengembalikan satu order beserta items.
func (s *OrderService) GetByID(orderID uint) (*models.Order, error) {
	var order models.Order
	if err := s.db.Preload("OrderItems").Preload("OrderItems.Menu").
		First(&order, orderID).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// ListBySession mengembalikan seluruh order satu sesi, urut pembuatan.
func (s *OrderService) ListBySession(sessionID string) ([]models.Order, error) {
	var orders []models.Order
	if err := s.db.Preload("OrderItems").
		Where("session_id = ?", sessionID).
		Order("created_at asc").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// ListByTable untuk agregasi sisi staff, independen dari sesi.
func (s *OrderService) ListByTable(tableID uint) ([]models.Order, error) {
	var orders []models.Order
	if err := s.db.Preload("OrderItems").
		Where("table_id = ?", tableID).
		Order("created_at asc").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// KitchenDisplay: order yang sedang berjalan di dapur, paling lama dulu.
func (s *OrderService) KitchenDisplay(restaurantID uint) ([]models.Order, error) {
	var orders []models.Order
	if err := s.db.Preload("OrderItems").
		Preload("OrderItems.Menu").
		Where("restaurant_id = ? AND status IN ?", restaurantID,
			[]string{models.OrderStatusConfirmed, models.OrderStatusPreparing, models.OrderStatusReady}).
		Order("created_at asc").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// PendingOrders: antrian order yang belum dikonfirmasi, untuk staff.
func (s *OrderService) PendingOrders(restaurantID uint) ([]models.Order, error) {
	var orders []models.Order
	if err := s.db.Preload("OrderItems").
		Where("restaurant_id = ? AND status = ?", restaurantID, models.OrderStatusPending).
		Order("created_at asc").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}
