package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/ryanadhitama/dinein-app/database"
	"github.com/ryanadhitama/dinein-app/models"
	"github.com/ryanadhitama/dinein-app/router"
	"github.com/ryanadhitama/dinein-app/utils"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	utils.InitLogger()
	os.Exit(m.Run())
}

// TestDineInEndToEnd menguji flow utama dine-in:
// 1. Seed meja + menu, register + login staff -> token
// 2. Device customer claim meja (sesi baru)
// 3. Isi cart, submit order
// 4. Staff menggerakkan order sampai served lewat kitchen flow
// 5. Customer minta tutup bill, staff menutup
// 6. Meja bebas: device lain bisa claim sesi baru
func TestDineInEndToEnd(t *testing.T) {
	db := setupIntegrationDB(t)
	r := router.SetupRouter(db)

	table, menu := seedIntegrationData(t, db)
	token := loginStaff(t, r)

	// 2. Claim meja
	sessionID := claimTable(t, r, table, "device-1", http.StatusCreated)

	// Device kedua ditolak selama sesi pertama aktif.
	w, env := request(t, r, http.MethodPost, claimPath(table), gin.H{"device_id": "device-2"}, "")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, utils.CodeTableOccupied, env.Code)

	// 3. Cart + submit
	w, _ = request(t, r, http.MethodPost, "/sessions/"+sessionID+"/cart/items",
		gin.H{"menu_id": menu.ID, "quantity": 2, "modifiers": []gin.H{{"name": "Telur", "price": 5000}}}, "")
	assert.Equal(t, http.StatusCreated, w.Code)

	w, env = request(t, r, http.MethodPost, "/sessions/"+sessionID+"/orders", nil, "")
	assert.Equal(t, http.StatusCreated, w.Code)
	var order models.Order
	assert.NoError(t, json.Unmarshal(env.Data, &order))
	assert.Equal(t, float64(60000), order.Total)

	// 4. Kitchen flow: pending -> confirmed -> preparing -> ready -> served
	for _, status := range []string{
		models.OrderStatusConfirmed,
		models.OrderStatusPreparing,
		models.OrderStatusReady,
		models.OrderStatusServed,
	} {
		w, _ = request(t, r, http.MethodPatch, fmt.Sprintf("/admin/orders/%d/status", order.ID),
			gin.H{"status": status}, token)
		assert.Equal(t, http.StatusOK, w.Code)
	}

	// 5. Bill: customer minta tutup, staff menutup
	w, _ = request(t, r, http.MethodPost, "/sessions/"+sessionID+"/bill/request", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w, env = request(t, r, http.MethodPost, "/admin/sessions/"+sessionID+"/bill/close", nil, token)
	assert.Equal(t, http.StatusOK, w.Code)
	var closed models.Session
	assert.NoError(t, json.Unmarshal(env.Data, &closed))
	assert.Equal(t, models.SessionStatusClosed, closed.Status)
	assert.Equal(t, models.BillStatusClosed, closed.BillStatus)

	// Order tetap terbaca setelah sesi ditutup.
	w, _ = request(t, r, http.MethodGet, "/sessions/"+sessionID+"/orders", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)

	// 6. Meja bebas untuk sesi berikutnya.
	fresh := claimTable(t, r, table, "device-2", http.StatusCreated)
	assert.NotEqual(t, sessionID, fresh)
}

func setupIntegrationDB(t *testing.T) *gorm.DB {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&models.User{},
		&models.Table{},
		&models.Session{},
		&models.SessionCartItem{},
		&models.GeneralCartItem{},
		&models.MenuCategory{},
		&models.Menu{},
		&models.Order{},
		&models.OrderItem{},
	)
	if err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	if err := database.EnsureConstraints(db); err != nil {
		t.Fatalf("failed to ensure constraints: %v", err)
	}
	return db
}

func seedIntegrationData(t *testing.T, db *gorm.DB) (models.Table, models.Menu) {
	table := models.Table{RestaurantID: 1, TableNumber: "A1", Capacity: 4, IsActive: true}
	if err := db.Create(&table).Error; err != nil {
		t.Fatalf("failed to seed table: %v", err)
	}
	category := models.MenuCategory{Name: "Main"}
	if err := db.Create(&category).Error; err != nil {
		t.Fatalf("failed to seed category: %v", err)
	}
	menu := models.Menu{CategoryID: category.ID, Name: "Nasi Goreng", Price: 25000, IsAvailable: true}
	if err := db.Create(&menu).Error; err != nil {
		t.Fatalf("failed to seed menu: %v", err)
	}
	return table, menu
}

type respEnvelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Code    string          `json:"code"`
	Data    json.RawMessage `json:"data"`
}

func request(t *testing.T, r *gin.Engine, method, path string, body interface{}, token string) (*httptest.ResponseRecorder, respEnvelope) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env respEnvelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("failed to decode response %q: %v", w.Body.String(), err)
	}
	return w, env
}

func claimPath(table models.Table) string {
	return fmt.Sprintf("/restaurants/%d/tables/%d/session", table.RestaurantID, table.ID)
}

func claimTable(t *testing.T, r *gin.Engine, table models.Table, deviceID string, wantStatus int) string {
	w, env := request(t, r, http.MethodPost, claimPath(table),
		gin.H{"session_id": uuid.NewString(), "device_id": deviceID}, "")
	if w.Code != wantStatus {
		t.Fatalf("claim table: got status %d, want %d (%s)", w.Code, wantStatus, w.Body.String())
	}

	var session models.Session
	if err := json.Unmarshal(env.Data, &session); err != nil {
		t.Fatalf("failed to decode session: %v", err)
	}
	return session.ID
}

func loginStaff(t *testing.T, r *gin.Engine) string {
	w, _ := request(t, r, http.MethodPost, "/register",
		gin.H{"name": "Staff Satu", "email": "staff@example.com", "password": "rahasia123", "role": "staff"}, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("register: got status %d (%s)", w.Code, w.Body.String())
	}

	w, env := request(t, r, http.MethodPost, "/login",
		gin.H{"email": "staff@example.com", "password": "rahasia123"}, "")
	if w.Code != http.StatusOK {
		t.Fatalf("login: got status %d (%s)", w.Code, w.Body.String())
	}

	var payload struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(env.Data, &payload); err != nil {
		t.Fatalf("failed to decode login payload: %v", err)
	}
	if payload.Token == "" {
		t.Fatal("empty token from login")
	}
	return payload.Token
}
