package controllers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ryanadhitama/dinein-app/events"
	"github.com/ryanadhitama/dinein-app/models"
	"github.com/ryanadhitama/dinein-app/services"
	"github.com/ryanadhitama/dinein-app/utils"
)

// GeneralCartController melayani jalur cart legacy per-meja (staff-assisted,
// tanpa sesi). Invariant eksklusivitas sesi tidak berlaku di sini.
type GeneralCartController struct {
	DB     *gorm.DB
	carts  *services.GeneralCartService
	orders *services.OrderService
}

func NewGeneralCartController(db *gorm.DB) *GeneralCartController {
	return &GeneralCartController{
		DB:     db,
		carts:  services.NewGeneralCartService(db),
		orders: services.NewOrderService(db),
	}
}

func (gc *GeneralCartController) requireStaff(c *gin.Context) bool {
	roleInterface, _ := c.Get("role")
	if roleInterface != "admin" && roleInterface != "staff" {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return false
	}
	return true
}

// AddItem -> staff menambahkan line ke cart meja.
func (gc *GeneralCartController) AddItem(c *gin.Context) {
	if !gc.requireStaff(c) {
		return
	}

	tableID, err := strconv.Atoi(c.Param("table_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	type reqBody struct {
		RestaurantID uint                `json:"restaurant_id" binding:"required"`
		MenuID       uint                `json:"menu_id" binding:"required"`
		Quantity     int                 `json:"quantity" binding:"required"`
		Modifiers    models.ModifierList `json:"modifiers"`
		Notes        string              `json:"notes"`
	}

	var req reqBody
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	item, err := gc.carts.AddItem(req.RestaurantID, uint(tableID), req.MenuID, req.Quantity, req.Modifiers, req.Notes)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Item added to table cart", item)
}

// UpdateItem -> ubah quantity satu line; <= 0 menghapus.
func (gc *GeneralCartController) UpdateItem(c *gin.Context) {
	if !gc.requireStaff(c) {
		return
	}

	tableID, err := strconv.Atoi(c.Param("table_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	itemID, err := strconv.Atoi(c.Param("item_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	type reqBody struct {
		Quantity int `json:"quantity"`
	}

	var req reqBody
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	item, err := gc.carts.UpdateQuantity(uint(tableID), uint(itemID), req.Quantity)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	if item == nil {
		utils.RespondJSON(c, http.StatusOK, "Item removed from table cart", gin.H{"item_id": itemID})
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table cart item updated", item)
}

// ClearCart -> kosongkan cart meja.
func (gc *GeneralCartController) ClearCart(c *gin.Context) {
	if !gc.requireStaff(c) {
		return
	}

	tableID, err := strconv.Atoi(c.Param("table_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if err := gc.carts.Clear(uint(tableID)); err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Table cart cleared", gin.H{"table_id": tableID})
}

// GetCart -> snapshot cart meja.
func (gc *GeneralCartController) GetCart(c *gin.Context) {
	if !gc.requireStaff(c) {
		return
	}

	tableID, err := strconv.Atoi(c.Param("table_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	snapshot, err := gc.carts.Snapshot(uint(tableID))
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Table cart snapshot", snapshot)
}

// SubmitOrder -> materialisasi cart meja menjadi order tanpa sesi.
func (gc *GeneralCartController) SubmitOrder(c *gin.Context) {
	if !gc.requireStaff(c) {
		return
	}

	tableID, err := strconv.Atoi(c.Param("table_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	type reqBody struct {
		RestaurantID uint `json:"restaurant_id" binding:"required"`
	}

	var req reqBody
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	order, err := gc.orders.SubmitTableOrder(req.RestaurantID, uint(tableID))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	events.BroadcastOrderSubmitted(order)
	events.BroadcastStaffNotification(fmt.Sprintf("New staff-assisted order #%d for table %d", order.ID, order.TableID))

	utils.RespondJSON(c, http.StatusCreated, "Order submitted", order)
}
