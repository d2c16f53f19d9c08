package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ryanadhitama/dinein-app/models"
	"github.com/ryanadhitama/dinein-app/utils"
)

// MenuController hanya melayani pembacaan catalog; authoring menu ada di
// sistem lain dan tabelnya di sini read model untuk pricing cart.
type MenuController struct {
	DB *gorm.DB
}

func NewMenuController(db *gorm.DB) *MenuController {
	return &MenuController{DB: db}
}

// GetAllMenus -> daftar menu yang tersedia.
func (mc *MenuController) GetAllMenus(c *gin.Context) {
	var menus []models.Menu
	query := mc.DB.Preload("Category").Where("is_available = ?", true)
	if categoryID := c.Query("category_id"); categoryID != "" {
		query = query.Where("category_id = ?", categoryID)
	}
	if err := query.Find(&menus).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of menus", menus)
}

// GetMenuByID -> detail 1 menu.
func (mc *MenuController) GetMenuByID(c *gin.Context) {
	menuID := c.Param("menu_id")
	var menu models.Menu
	if err := mc.DB.Preload("Category").First(&menu, menuID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu detail", menu)
}

// GetAllCategories -> daftar kategori menu.
func (mc *MenuController) GetAllCategories(c *gin.Context) {
	var categories []models.MenuCategory
	if err := mc.DB.Find(&categories).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of categories", categories)
}
