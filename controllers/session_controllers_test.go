package controllers_test

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

	"github.com/ryanadhitama/dinein-app/controllers"
	"github.com/ryanadhitama/dinein-app/models"
	"github.com/ryanadhitama/dinein-app/utils"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	utils.InitLogger()
	os.Exit(m.Run())
}

// envelope mencerminkan bentuk JSONResponse untuk assertion.
type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Code    string          `json:"code"`
	Data    json.RawMessage `json:"data"`
}

func setupControllerTestDB(t *testing.T) *gorm.DB {
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
	return db
}

// setupTestRouter meniru layout router production, dengan middleware auth
// diganti stub yang menyuntikkan role.
func setupTestRouter(db *gorm.DB) *gin.Engine {
	r := gin.New()

	sessionCtrl := controllers.NewSessionController(db)
	cartCtrl := controllers.NewCartController(db)
	orderCtrl := controllers.NewOrderController(db)
	billCtrl := controllers.NewBillController(db)

	r.POST("/restaurants/:restaurant_id/tables/:table_id/session", sessionCtrl.OpenTable)
	r.GET("/tables/:table_id/session", sessionCtrl.GetActiveSession)
	r.GET("/sessions/:session_id", sessionCtrl.GetSession)
	r.GET("/sessions/:session_id/cart", cartCtrl.GetCart)
	r.POST("/sessions/:session_id/cart/items", cartCtrl.AddCartItem)
	r.PATCH("/sessions/:session_id/cart/items/:item_id", cartCtrl.UpdateCartItem)
	r.DELETE("/sessions/:session_id/cart", cartCtrl.ClearCart)
	r.POST("/sessions/:session_id/orders", orderCtrl.SubmitOrder)
	r.GET("/sessions/:session_id/orders", orderCtrl.ListSessionOrders)
	r.POST("/sessions/:session_id/bill/request", billCtrl.RequestCloseBill)
	r.POST("/sessions/:session_id/bill/cancel", billCtrl.CancelCloseBillRequest)

	auth := r.Group("/admin")
	auth.Use(func(c *gin.Context) {
		c.Set("user_id", uint(1))
		c.Set("role", c.GetHeader("X-Test-Role"))
		c.Next()
	})
	auth.PATCH("/orders/:order_id/status", orderCtrl.UpdateOrderStatus)
	auth.POST("/sessions/:session_id/bill/close", billCtrl.StaffCloseBill)

	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}, headers map[string]string) (*httptest.ResponseRecorder, envelope) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("failed to decode response %q: %v", w.Body.String(), err)
	}
	return w, env
}

func seedTableAndMenu(t *testing.T, db *gorm.DB) (models.Table, models.Menu) {
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

func openTablePath(table models.Table) string {
	return fmt.Sprintf("/restaurants/%d/tables/%d/session", table.RestaurantID, table.ID)
}

func TestOpenTableEndpoint(t *testing.T) {
	db := setupControllerTestDB(t)
	table, _ := seedTableAndMenu(t, db)
	r := setupTestRouter(db)

	w, env := doJSON(t, r, http.MethodPost, openTablePath(table),
		gin.H{"session_id": uuid.NewString(), "device_id": "device-1"}, nil)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, env.Status)

	var session models.Session
	assert.NoError(t, json.Unmarshal(env.Data, &session))
	assert.Equal(t, models.SessionStatusActive, session.Status)

	// Device kedua ditolak dengan code stabil.
	w, env = doJSON(t, r, http.MethodPost, openTablePath(table),
		gin.H{"session_id": uuid.NewString(), "device_id": "device-2"}, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.False(t, env.Status)
	assert.Equal(t, utils.CodeTableOccupied, env.Code)

	// Device pertama reconnect: sesi yang sama dikembalikan.
	w, env = doJSON(t, r, http.MethodPost, openTablePath(table),
		gin.H{"session_id": uuid.NewString(), "device_id": "device-1"}, nil)
	assert.Equal(t, http.StatusCreated, w.Code)

	var reconnected models.Session
	assert.NoError(t, json.Unmarshal(env.Data, &reconnected))
	assert.Equal(t, session.ID, reconnected.ID)
}

func TestActiveSessionLookupWithholdsSessionID(t *testing.T) {
	db := setupControllerTestDB(t)
	table, menu := seedTableAndMenu(t, db)
	r := setupTestRouter(db)

	_, env := doJSON(t, r, http.MethodPost, openTablePath(table),
		gin.H{"device_id": "device-1"}, nil)
	var session models.Session
	assert.NoError(t, json.Unmarshal(env.Data, &session))

	w, _ := doJSON(t, r, http.MethodPost, "/sessions/"+session.ID+"/cart/items",
		gin.H{"menu_id": menu.ID, "quantity": 2}, nil)
	assert.Equal(t, http.StatusCreated, w.Code)

	lookupPath := fmt.Sprintf("/tables/%d/session", table.ID)

	// Pembaca tanpa device id hanya melihat status occupancy; session id
	// adalah kapabilitas akses cart dan tidak boleh bocor.
	w, env = doJSON(t, r, http.MethodGet, lookupPath, nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var lookup map[string]interface{}
	assert.NoError(t, json.Unmarshal(env.Data, &lookup))
	assert.Equal(t, true, lookup["occupied"])
	assert.Equal(t, models.BillStatusOpen, lookup["bill_status"])
	assert.NotContains(t, lookup, "session_id")

	// Device lain juga tidak mendapat id.
	w, env = doJSON(t, r, http.MethodGet, lookupPath+"?device_id=device-2", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	lookup = nil
	assert.NoError(t, json.Unmarshal(env.Data, &lookup))
	assert.NotContains(t, lookup, "session_id")

	// Device pemegang sesi mendapat id-nya kembali (re-sync setelah refresh).
	w, env = doJSON(t, r, http.MethodGet, lookupPath+"?device_id=device-1", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	lookup = nil
	assert.NoError(t, json.Unmarshal(env.Data, &lookup))
	assert.Equal(t, session.ID, lookup["session_id"])

	// Meja kosong: occupied false, tanpa id.
	empty := models.Table{RestaurantID: 1, TableNumber: "B2", Capacity: 2, IsActive: true}
	assert.NoError(t, db.Create(&empty).Error)
	w, env = doJSON(t, r, http.MethodGet, fmt.Sprintf("/tables/%d/session", empty.ID), nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	lookup = nil
	assert.NoError(t, json.Unmarshal(env.Data, &lookup))
	assert.Equal(t, false, lookup["occupied"])
	assert.NotContains(t, lookup, "session_id")
}

func TestOpenTableRequiresDeviceID(t *testing.T) {
	db := setupControllerTestDB(t)
	table, _ := seedTableAndMenu(t, db)
	r := setupTestRouter(db)

	w, env := doJSON(t, r, http.MethodPost, openTablePath(table), gin.H{}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, env.Status)
}

func TestCartAndOrderFlow(t *testing.T) {
	db := setupControllerTestDB(t)
	table, menu := seedTableAndMenu(t, db)
	r := setupTestRouter(db)

	_, env := doJSON(t, r, http.MethodPost, openTablePath(table),
		gin.H{"device_id": "device-1"}, nil)
	var session models.Session
	assert.NoError(t, json.Unmarshal(env.Data, &session))

	// Submit cart kosong ditolak.
	w, env := doJSON(t, r, http.MethodPost, "/sessions/"+session.ID+"/orders", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, utils.CodeEmptyCart, env.Code)

	w, _ = doJSON(t, r, http.MethodPost, "/sessions/"+session.ID+"/cart/items",
		gin.H{"menu_id": menu.ID, "quantity": 2}, nil)
	assert.Equal(t, http.StatusCreated, w.Code)

	w, env = doJSON(t, r, http.MethodGet, "/sessions/"+session.ID+"/cart", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var snapshot struct {
		Subtotal float64 `json:"subtotal"`
	}
	assert.NoError(t, json.Unmarshal(env.Data, &snapshot))
	assert.Equal(t, float64(50000), snapshot.Subtotal)

	w, env = doJSON(t, r, http.MethodPost, "/sessions/"+session.ID+"/orders", nil, nil)
	assert.Equal(t, http.StatusCreated, w.Code)
	var order models.Order
	assert.NoError(t, json.Unmarshal(env.Data, &order))
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, float64(50000), order.Total)

	// Transisi skip ditolak dengan code stabil.
	w, env = doJSON(t, r, http.MethodPatch, fmt.Sprintf("/admin/orders/%d/status", order.ID),
		gin.H{"status": models.OrderStatusReady}, map[string]string{"X-Test-Role": "staff"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, utils.CodeInvalidTransition, env.Code)

	w, _ = doJSON(t, r, http.MethodPatch, fmt.Sprintf("/admin/orders/%d/status", order.ID),
		gin.H{"status": models.OrderStatusConfirmed}, map[string]string{"X-Test-Role": "staff"})
	assert.Equal(t, http.StatusOK, w.Code)

	// Customer tanpa role tidak boleh menggerakkan status.
	w, _ = doJSON(t, r, http.MethodPatch, fmt.Sprintf("/admin/orders/%d/status", order.ID),
		gin.H{"status": models.OrderStatusPreparing}, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestBillLifecycleEndpoints(t *testing.T) {
	db := setupControllerTestDB(t)
	table, _ := seedTableAndMenu(t, db)
	r := setupTestRouter(db)

	_, env := doJSON(t, r, http.MethodPost, openTablePath(table),
		gin.H{"device_id": "device-1"}, nil)
	var session models.Session
	assert.NoError(t, json.Unmarshal(env.Data, &session))

	// Staff close sebelum ada permintaan: NOT_REQUESTING.
	w, env := doJSON(t, r, http.MethodPost, "/admin/sessions/"+session.ID+"/bill/close",
		nil, map[string]string{"X-Test-Role": "staff"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, utils.CodeNotRequesting, env.Code)

	w, _ = doJSON(t, r, http.MethodPost, "/sessions/"+session.ID+"/bill/request", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, env = doJSON(t, r, http.MethodPost, "/sessions/"+session.ID+"/bill/request", nil, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, utils.CodeAlreadyRequesting, env.Code)

	w, _ = doJSON(t, r, http.MethodPost, "/sessions/"+session.ID+"/bill/cancel", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = doJSON(t, r, http.MethodPost, "/sessions/"+session.ID+"/bill/request", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// Tanpa role staff: forbidden, bill tidak tertutup.
	w, _ = doJSON(t, r, http.MethodPost, "/admin/sessions/"+session.ID+"/bill/close", nil, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, env = doJSON(t, r, http.MethodPost, "/admin/sessions/"+session.ID+"/bill/close",
		nil, map[string]string{"X-Test-Role": "staff"})
	assert.Equal(t, http.StatusOK, w.Code)
	var closed models.Session
	assert.NoError(t, json.Unmarshal(env.Data, &closed))
	assert.Equal(t, models.SessionStatusClosed, closed.Status)

	// Mutasi setelah close: 410 SESSION_CLOSED.
	w, env = doJSON(t, r, http.MethodPost, "/sessions/"+session.ID+"/bill/cancel", nil, nil)
	assert.Equal(t, http.StatusGone, w.Code)
	assert.Equal(t, utils.CodeSessionClosed, env.Code)

	// Meja bebas: claim baru dari device lain sukses.
	w, _ = doJSON(t, r, http.MethodPost, openTablePath(table),
		gin.H{"device_id": "device-9"}, nil)
	assert.Equal(t, http.StatusCreated, w.Code)
}
