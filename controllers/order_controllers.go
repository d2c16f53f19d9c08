package controllers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ryanadhitama/dinein-app/events"
	"github.com/ryanadhitama/dinein-app/services"
	"github.com/ryanadhitama/dinein-app/utils"
)

type OrderController struct {
	DB     *gorm.DB
	orders *services.OrderService
}

func NewOrderController(db *gorm.DB) *OrderController {
	return &OrderController{
		DB:     db,
		orders: services.NewOrderService(db),
	}
}

// SubmitOrder -> materialisasi cart sesi menjadi order (status pending) dan
// kosongkan cart dalam satu transaksi.
func (oc *OrderController) SubmitOrder(c *gin.Context) {
	sessionID := c.Param("session_id")

	order, err := oc.orders.SubmitOrder(sessionID)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	utils.InfoLogger.Printf("Order #%d submitted from session %s (total %.2f)", order.ID, sessionID, order.Total)

	events.BroadcastOrderSubmitted(order)
	events.BroadcastStaffNotification(fmt.Sprintf("New order #%d for table %d", order.ID, order.TableID))

	utils.RespondJSON(c, http.StatusCreated, "Order submitted", order)
}

// ListSessionOrders -> seluruh order satu sesi (device customer).
func (oc *OrderController) ListSessionOrders(c *gin.Context) {
	sessionID := c.Param("session_id")

	orders, err := oc.orders.ListBySession(sessionID)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "List of orders", orders)
}

// GetOrderByID -> detail 1 order beserta items.
func (oc *OrderController) GetOrderByID(c *gin.Context) {
	orderID, err := strconv.Atoi(c.Param("order_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	order, err := oc.orders.GetByID(uint(orderID))
	if err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Order detail", order)
}

// UpdateOrderStatus -> staff menggerakkan order satu langkah di state machine
// dapur; transisi di luar urutan ditolak INVALID_STATUS_TRANSITION.
func (oc *OrderController) UpdateOrderStatus(c *gin.Context) {
	roleInterface, _ := c.Get("role")
	if roleInterface != "admin" && roleInterface != "staff" && roleInterface != "chef" {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	orderID, err := strconv.Atoi(c.Param("order_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	type reqBody struct {
		Status string `json:"status" binding:"required"`
	}

	var req reqBody
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	order, err := oc.orders.UpdateStatus(uint(orderID), req.Status)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	utils.InfoLogger.Printf("Order #%d status changed to %s by %s", order.ID, order.Status, roleInterface)

	events.BroadcastOrderStatusChanged(order)

	utils.RespondJSON(c, http.StatusOK, "Order status updated", order)
}

// ListTableOrders -> agregasi order per meja untuk staff, independen sesi.
func (oc *OrderController) ListTableOrders(c *gin.Context) {
	roleInterface, _ := c.Get("role")
	if roleInterface != "admin" && roleInterface != "staff" {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	tableID, err := strconv.Atoi(c.Param("table_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	orders, err := oc.orders.ListByTable(uint(tableID))
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "List of table orders", orders)
}

// GetKitchenDisplay -> overview dapur untuk chef & staff.
func (oc *OrderController) GetKitchenDisplay(c *gin.Context) {
	role, _ := c.Get("role")
	if role != "chef" && role != "staff" && role != "admin" {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	restaurantID, err := strconv.Atoi(c.Query("restaurant_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	orders, err := oc.orders.KitchenDisplay(uint(restaurantID))
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Kitchen display orders", orders)
}

// GetPendingOrders -> antrian order yang menunggu konfirmasi staff.
func (oc *OrderController) GetPendingOrders(c *gin.Context) {
	role, _ := c.Get("role")
	if role != "chef" && role != "staff" && role != "admin" {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	restaurantID, err := strconv.Atoi(c.Query("restaurant_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	orders, err := oc.orders.PendingOrders(uint(restaurantID))
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Pending orders", orders)
}
