package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ryanadhitama/dinein-app/events"
	"github.com/ryanadhitama/dinein-app/services"
	"github.com/ryanadhitama/dinein-app/utils"
)

type BillController struct {
	DB    *gorm.DB
	bills *services.BillService
}

func NewBillController(db *gorm.DB) *BillController {
	return &BillController{
		DB:    db,
		bills: services.NewBillService(db),
	}
}

// RequestCloseBill -> customer (atau staff) minta tutup bill:
// open -> requesting_closure.
func (bc *BillController) RequestCloseBill(c *gin.Context) {
	sessionID := c.Param("session_id")

	session, err := bc.bills.RequestClose(sessionID)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	utils.InfoLogger.Printf("Bill closure requested for session %s (table %d)", session.ID, session.TableID)

	events.BroadcastBillRequested(session)
	events.BroadcastStaffNotification(fmt.Sprintf("Table %d is requesting the bill", session.TableID))

	utils.RespondJSON(c, http.StatusOK, "Bill closure requested", session)
}

// CancelCloseBillRequest -> customer membatalkan permintaan:
// requesting_closure -> open.
func (bc *BillController) CancelCloseBillRequest(c *gin.Context) {
	sessionID := c.Param("session_id")

	session, err := bc.bills.CancelCloseRequest(sessionID)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Bill closure request canceled", session)
}

// StaffCloseBill -> staff menutup bill: requesting_closure -> closed. Sesi
// ditutup, cart dibersihkan, meja bebas untuk sesi baru. Satu-satunya jalur
// yang membebaskan meja.
func (bc *BillController) StaffCloseBill(c *gin.Context) {
	roleInterface, _ := c.Get("role")
	if roleInterface != "admin" && roleInterface != "staff" {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	sessionID := c.Param("session_id")

	session, err := bc.bills.StaffClose(sessionID)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	utils.InfoLogger.Printf("Bill closed for session %s, table %d is free", session.ID, session.TableID)

	events.BroadcastBillClosed(session)

	utils.RespondJSON(c, http.StatusOK, "Bill closed", session)
}
