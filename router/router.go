package router

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ryanadhitama/dinein-app/controllers"
	"github.com/ryanadhitama/dinein-app/middlewares"
)

func SetupRouter(db *gorm.DB) *gin.Engine {
	r := gin.Default()

	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares())
	r.Use(middlewares.LoggerMiddleware())

	userCtrl := controllers.NewUserController(db)
	tableCtrl := controllers.NewTableController(db)
	sessionCtrl := controllers.NewSessionController(db)
	cartCtrl := controllers.NewCartController(db)
	orderCtrl := controllers.NewOrderController(db)
	billCtrl := controllers.NewBillController(db)
	generalCartCtrl := controllers.NewGeneralCartController(db)
	menuCtrl := controllers.NewMenuController(db)

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	// Rate limiter ketat untuk login/register
	public := r.Group("/")
	public.Use(middlewares.NewStrictRateLimiter())
	{
		public.POST("/register", userCtrl.Register)
		public.POST("/login", userCtrl.Login)
	}

	// Catalog read-only (customer scan QR lalu lihat menu)
	r.GET("/categories", menuCtrl.GetAllCategories)
	r.GET("/menus", menuCtrl.GetAllMenus)
	r.GET("/menus/:menu_id", menuCtrl.GetMenuByID)

	// Claim meja + lifecycle sesi (customer device, tanpa auth; identitas
	// device dari device_id di body)
	r.POST("/restaurants/:restaurant_id/tables/:table_id/session", sessionCtrl.OpenTable)
	r.GET("/tables/:table_id/session", sessionCtrl.GetActiveSession)
	r.GET("/sessions/:session_id", sessionCtrl.GetSession)

	// Cart sesi
	r.GET("/sessions/:session_id/cart", cartCtrl.GetCart)
	r.POST("/sessions/:session_id/cart/items", cartCtrl.AddCartItem)
	r.PATCH("/sessions/:session_id/cart/items/:item_id", cartCtrl.UpdateCartItem)
	r.DELETE("/sessions/:session_id/cart", cartCtrl.ClearCart)

	// Submit order + daftar order sesi
	r.POST("/sessions/:session_id/orders", orderCtrl.SubmitOrder)
	r.GET("/sessions/:session_id/orders", orderCtrl.ListSessionOrders)
	r.GET("/orders/:order_id", orderCtrl.GetOrderByID)

	// Bill lifecycle sisi customer
	r.POST("/sessions/:session_id/bill/request", billCtrl.RequestCloseBill)
	r.POST("/sessions/:session_id/bill/cancel", billCtrl.CancelCloseBillRequest)

	// Event stream untuk device customer
	r.GET("/events/ws", controllers.CustomerEventsHandler)

	// Daftar meja untuk halaman scan
	r.GET("/tables", tableCtrl.GetAllTables)

	// ----------------------------------------------------------------
	//                      AUTHENTICATED ROUTES
	// ----------------------------------------------------------------
	auth := r.Group("/admin")
	auth.Use(middlewares.AuthMiddleware())

	auth.GET("/profile", userCtrl.GetProfile)
	auth.POST("/logout", userCtrl.Logout)

	// TABLE registry (soft-disable, tidak pernah dihapus)
	auth.GET("/tables", tableCtrl.GetAllTables)
	auth.POST("/tables", tableCtrl.CreateTable)
	auth.GET("/tables/:table_id", tableCtrl.GetTableByID)
	auth.PATCH("/tables/:table_id", tableCtrl.UpdateTable)
	auth.GET("/occupancy", tableCtrl.GetOccupancy)
	auth.GET("/tables/:table_id/sessions", sessionCtrl.GetSessionHistory)
	auth.GET("/tables/:table_id/orders", orderCtrl.ListTableOrders)

	// ORDER ledger (staff/chef)
	auth.GET("/orders/:order_id", orderCtrl.GetOrderByID)
	auth.PATCH("/orders/:order_id/status", orderCtrl.UpdateOrderStatus)
	auth.GET("/kitchen/display", orderCtrl.GetKitchenDisplay)
	auth.GET("/kitchen/pending", orderCtrl.GetPendingOrders)

	// BILL coordinator (staff menutup bill; satu-satunya jalur pembebasan meja)
	auth.POST("/sessions/:session_id/bill/request", billCtrl.RequestCloseBill)
	auth.POST("/sessions/:session_id/bill/close", billCtrl.StaffCloseBill)

	// GENERAL CART (jalur legacy staff-assisted per meja)
	auth.GET("/tables/:table_id/cart", generalCartCtrl.GetCart)
	auth.POST("/tables/:table_id/cart/items", generalCartCtrl.AddItem)
	auth.PATCH("/tables/:table_id/cart/items/:item_id", generalCartCtrl.UpdateItem)
	auth.DELETE("/tables/:table_id/cart", generalCartCtrl.ClearCart)
	auth.POST("/tables/:table_id/cart/submit", generalCartCtrl.SubmitOrder)

	// WebSocket dashboard staff
	wsGroup := r.Group("/ws")
	wsGroup.Use(middlewares.WebSocketAuthMiddleware())
	{
		wsGroup.GET("/:role", controllers.EventsHandler)
	}

	return r
}
