package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ryanadhitama/dinein-app/events"
	"github.com/ryanadhitama/dinein-app/services"
	"github.com/ryanadhitama/dinein-app/utils"
)

type SessionController struct {
	DB       *gorm.DB
	sessions *services.SessionService
}

func NewSessionController(db *gorm.DB) *SessionController {
	return &SessionController{
		DB:       db,
		sessions: services.NewSessionService(db),
	}
}

// OpenTable -> customer device claim meja (scan QR). Idempotent untuk
// reconnect: device yang sama mendapat sesi lama, dan wajib mengadopsi
// session id yang dikembalikan server.
func (sc *SessionController) OpenTable(c *gin.Context) {
	restaurantID, err := strconv.Atoi(c.Param("restaurant_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	tableID, err := strconv.Atoi(c.Param("table_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	type reqBody struct {
		SessionID string `json:"session_id"`
		DeviceID  string `json:"device_id" binding:"required"`
	}

	var req reqBody
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	session, created, err := sc.sessions.CreateOrReconnect(req.SessionID, uint(restaurantID), uint(tableID), req.DeviceID)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	if created {
		utils.InfoLogger.Printf("New session %s at table %d (device %s)", session.ID, tableID, req.DeviceID)
		events.BroadcastSessionCreated(session)
	} else {
		// Reconnect: sesi lama dikembalikan, client adopsi id ini. Tidak ada
		// sesi baru, jadi tidak ada event session.created.
		utils.InfoLogger.Printf("Device %s reconnected to session %s at table %d", req.DeviceID, session.ID, tableID)
	}

	utils.RespondJSON(c, http.StatusCreated, "Session active", session)
}

// GetSession -> detail sesi + bill state (dipakai device untuk re-sync).
func (sc *SessionController) GetSession(c *gin.Context) {
	sessionID := c.Param("session_id")

	session, err := sc.sessions.GetByID(sessionID)
	if err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Session detail", session)
}

// GetActiveSession -> cek sesi aktif di satu meja (public, untuk halaman scan).
func (sc *SessionController) GetActiveSession(c *gin.Context) {
	tableID, err := strconv.Atoi(c.Param("table_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	session, err := sc.sessions.GetActiveByTable(uint(tableID))
	if err != nil {
		utils.RespondJSON(c, http.StatusOK, "No active session", gin.H{"occupied": false})
		return
	}

	payload := gin.H{
		"occupied":    true,
		"table_id":    session.TableID,
		"bill_status": session.BillStatus,
		"created_at":  session.CreatedAt,
	}
	// Session id adalah kapabilitas akses cart dan bill; hanya dikembalikan
	// ke device pemegang sesi, bukan ke sembarang pembaca halaman scan.
	if deviceID := c.Query("device_id"); deviceID != "" && deviceID == session.DeviceID {
		payload["session_id"] = session.ID
	}

	utils.RespondJSON(c, http.StatusOK, "Active session", payload)
}

// GetSessionHistory -> riwayat sesi satu meja (staff/admin; sesi tidak pernah
// dihapus, hanya ditutup).
func (sc *SessionController) GetSessionHistory(c *gin.Context) {
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

	sessions, err := sc.sessions.ListByTable(uint(tableID))
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Session history", sessions)
}
