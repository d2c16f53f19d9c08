package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ryanadhitama/dinein-app/events"
	"github.com/ryanadhitama/dinein-app/models"
	"github.com/ryanadhitama/dinein-app/utils"
)

type TableController struct {
	DB *gorm.DB
}

func NewTableController(db *gorm.DB) *TableController {
	return &TableController{DB: db}
}

// CreateTable -> staff menambahkan meja baru.
func (tc *TableController) CreateTable(c *gin.Context) {
	roleInterface, _ := c.Get("role")
	if roleInterface != "admin" && roleInterface != "staff" {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	var req struct {
		RestaurantID uint   `json:"restaurant_id" binding:"required"`
		TableNumber  string `json:"table_number" binding:"required"`
		Capacity     int    `json:"capacity"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	table := models.Table{
		RestaurantID: req.RestaurantID,
		TableNumber:  req.TableNumber,
		Capacity:     req.Capacity,
		IsActive:     true,
	}
	if table.Capacity <= 0 {
		table.Capacity = 2
	}

	if err := tc.DB.Create(&table).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	events.BroadcastTableCreate(table)

	utils.InfoLogger.Printf("New table created: %s (restaurant %d)", table.TableNumber, table.RestaurantID)
	utils.RespondJSON(c, http.StatusCreated, "Table created successfully", table)
}

// GetAllTables -> seluruh meja satu restoran.
func (tc *TableController) GetAllTables(c *gin.Context) {
	var tables []models.Table
	query := tc.DB
	if restaurantID := c.Query("restaurant_id"); restaurantID != "" {
		query = query.Where("restaurant_id = ?", restaurantID)
	}
	if err := query.Find(&tables).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of tables", tables)
}

// GetTableByID -> detail satu meja.
func (tc *TableController) GetTableByID(c *gin.Context) {
	tableID := c.Param("table_id")
	var table models.Table
	if err := tc.DB.First(&table, tableID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table detail", table)
}

// UpdateTable -> staff mengubah nomor/kapasitas/flag aktif. Meja tidak pernah
// dihapus, hanya di-nonaktifkan supaya hilang dari alur QR.
func (tc *TableController) UpdateTable(c *gin.Context) {
	roleInterface, _ := c.Get("role")
	if roleInterface != "admin" && roleInterface != "staff" {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	tableID := c.Param("table_id")
	var body struct {
		TableNumber *string `json:"table_number"`
		Capacity    *int    `json:"capacity"`
		IsActive    *bool   `json:"is_active"`
	}

	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var table models.Table
	if err := tc.DB.First(&table, tableID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	if body.TableNumber != nil {
		table.TableNumber = *body.TableNumber
	}
	if body.Capacity != nil {
		table.Capacity = *body.Capacity
	}
	if body.IsActive != nil {
		table.IsActive = *body.IsActive
	}

	if err := tc.DB.Save(&table).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	events.BroadcastTableUpdate(table)

	utils.InfoLogger.Printf("Table %d updated (active=%v)", table.ID, table.IsActive)
	utils.RespondJSON(c, http.StatusOK, "Table updated", table)
}

// GetOccupancy -> daftar meja + sesi aktifnya untuk dashboard staff.
// Occupancy dibaca dari keberadaan sesi aktif, bukan flag di meja.
func (tc *TableController) GetOccupancy(c *gin.Context) {
	roleInterface, _ := c.Get("role")
	if roleInterface != "admin" && roleInterface != "staff" {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	restaurantID, err := strconv.Atoi(c.Query("restaurant_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var tables []models.Table
	if err := tc.DB.Where("restaurant_id = ? AND is_active = ?", restaurantID, true).
		Find(&tables).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	var sessions []models.Session
	if err := tc.DB.Where("restaurant_id = ? AND active_table_id IS NOT NULL", restaurantID).
		Find(&sessions).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	sessionByTable := make(map[uint]models.Session, len(sessions))
	for _, s := range sessions {
		sessionByTable[s.TableID] = s
	}

	type occupancyRow struct {
		Table      models.Table    `json:"table"`
		Occupied   bool            `json:"occupied"`
		Session    *models.Session `json:"session,omitempty"`
		BillStatus string          `json:"bill_status,omitempty"`
	}

	rows := make([]occupancyRow, 0, len(tables))
	var occupiedCount, requestingCount int
	for _, table := range tables {
		row := occupancyRow{Table: table}
		if s, ok := sessionByTable[table.ID]; ok {
			session := s
			row.Occupied = true
			row.Session = &session
			row.BillStatus = session.BillStatus
			occupiedCount++
			if session.BillStatus == models.BillStatusRequesting {
				requestingCount++
			}
		}
		rows = append(rows, row)
	}

	utils.RespondJSON(c, http.StatusOK, "Table occupancy", gin.H{
		"tables": rows,
		"stats": gin.H{
			"total":           len(tables),
			"occupied":        occupiedCount,
			"free":            len(tables) - occupiedCount,
			"requesting_bill": requestingCount,
		},
	})
}
