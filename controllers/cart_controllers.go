package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ryanadhitama/dinein-app/models"
	"github.com/ryanadhitama/dinein-app/services"
	"github.com/ryanadhitama/dinein-app/utils"
)

type CartController struct {
	DB    *gorm.DB
	carts *services.CartService
}

func NewCartController(db *gorm.DB) *CartController {
	return &CartController{
		DB:    db,
		carts: services.NewCartService(db),
	}
}

// AddCartItem -> tambah line ke cart sesi; line dengan menu + modifier sama
// di-merge.
func (cc *CartController) AddCartItem(c *gin.Context) {
	sessionID := c.Param("session_id")

	type reqBody struct {
		MenuID    uint                `json:"menu_id" binding:"required"`
		Quantity  int                 `json:"quantity" binding:"required"`
		Modifiers models.ModifierList `json:"modifiers"`
		Notes     string              `json:"notes"`
	}

	var req reqBody
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	item, err := cc.carts.AddItem(sessionID, req.MenuID, req.Quantity, req.Modifiers, req.Notes)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Item added to cart", item)
}

// UpdateCartItem -> ubah quantity; <= 0 menghapus line.
func (cc *CartController) UpdateCartItem(c *gin.Context) {
	sessionID := c.Param("session_id")
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

	item, err := cc.carts.UpdateQuantity(sessionID, uint(itemID), req.Quantity)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	if item == nil {
		utils.RespondJSON(c, http.StatusOK, "Item removed from cart", gin.H{"item_id": itemID})
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Cart item updated", item)
}

// ClearCart -> kosongkan cart sesi.
func (cc *CartController) ClearCart(c *gin.Context) {
	sessionID := c.Param("session_id")

	if err := cc.carts.Clear(sessionID); err != nil {
		utils.RespondAppError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Cart cleared", gin.H{"session_id": sessionID})
}

// GetCart -> snapshot cart: lines + total per line + subtotal.
func (cc *CartController) GetCart(c *gin.Context) {
	sessionID := c.Param("session_id")

	snapshot, err := cc.carts.Snapshot(sessionID)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Cart snapshot", snapshot)
}
