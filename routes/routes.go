package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/omerfarooq187/hostel-management/handlers"
	"github.com/omerfarooq187/hostel-management/middlewares"
	"github.com/omerfarooq187/hostel-management/models"
	"github.com/omerfarooq187/hostel-management/services"
	"github.com/omerfarooq187/hostel-management/store"
)

// Deps collects everything the handlers need. Built once in main.
type Deps struct {
	Store      store.Store
	Allocation *services.AllocationService
	Billing    *services.BillingService
	Receipt    *services.ReceiptService
	Mailer     services.Mailer
	JWTSecret  string
}

// RegisterRoutes wires all HTTP routes.
func RegisterRoutes(e *echo.Echo, d Deps) {
	// ===== Handlers (shared singletons) =====
	auth := handlers.NewAuthHandler(d.Store, d.Mailer, d.JWTSecret)
	hostel := handlers.NewHostelHandler(d.Store)
	room := handlers.NewRoomHandler(d.Store, d.Allocation)
	std := handlers.NewStudentHandler(d.Store)
	alloc := handlers.NewAllocationHandler(d.Store, d.Allocation)
	feeCfg := handlers.NewFeeConfigHandler(d.Store, d.Billing)
	fee := handlers.NewFeeHandler(d.Store, d.Billing, d.Receipt)
	kitchen := handlers.NewKitchenHandler(d.Store)
	me := handlers.NewMeHandler(d.Store, d.Billing, d.Receipt)
	notice := handlers.NewNoticeHandler(d.Store)

	// ===== Public Auth =====
	e.POST("/api/auth/signup", auth.Signup)
	e.POST("/api/auth/login", auth.Login)
	e.GET("/api/auth/verify-email", auth.VerifyEmail)

	authMW := middlewares.RequireAuth(d.JWTSecret)

	// ===== Admin routes =====
	admin := e.Group("/api/admin", authMW, middlewares.RequireRole(models.RoleAdmin))

	admin.GET("/hostels", hostel.List)
	admin.POST("/hostels", hostel.Create)
	admin.PATCH("/hostels/:id/status", hostel.UpdateStatus)

	admin.POST("/rooms", room.Create)
	admin.GET("/rooms", room.List)
	admin.GET("/rooms/:id", room.Get)
	admin.PUT("/rooms/:id", room.Update)
	admin.DELETE("/rooms/:id", room.Delete)
	admin.GET("/rooms/:id/beds", room.Beds)
	admin.GET("/rooms/:id/status", room.Status)
	admin.GET("/rooms/:id/students", room.Students)

	admin.POST("/students/:userId", std.Admit)
	admin.GET("/students", std.List)
	admin.GET("/students/:id", std.Get)
	admin.PUT("/students/:id", std.Update)
	admin.DELETE("/students/:id", std.Delete)

	admin.POST("/allocations/student/:studentId/room/:roomId/bed/:bedNumber", alloc.Allocate)
	admin.POST("/allocations/student/:studentId/room/:roomId/auto", alloc.AutoAllocate)
	admin.POST("/allocations/student/:studentId/transfer/:roomId", alloc.Transfer)
	admin.DELETE("/allocations/:allocationId", alloc.Deallocate)
	admin.GET("/allocations/room/:roomId", alloc.ByRoom)
	admin.GET("/allocations/student/:studentId/current", alloc.Current)
	admin.GET("/allocations/student/:studentId/history", alloc.History)
	admin.GET("/allocations/history", alloc.HostelHistory)
	admin.GET("/allocations/count", alloc.Count)

	admin.POST("/fee-config", feeCfg.Set)
	admin.GET("/fee-config/active", feeCfg.Active)
	admin.GET("/fee-config/history", feeCfg.History)

	admin.POST("/fees", fee.Create)
	admin.GET("/fees", fee.ListByHostel)
	admin.GET("/fees/student/:studentId", fee.ListByStudent)
	admin.GET("/fees/status/:status", fee.ListByStatus)
	admin.PATCH("/fees/:feeId/pay", fee.MarkPaid)
	admin.DELETE("/fees/:feeId", fee.Delete)
	admin.GET("/fees/:feeId/receipt", fee.Receipt)
	admin.GET("/fees/totals", fee.Totals)
	admin.GET("/fees/collection", fee.StudentCollection)
	admin.GET("/fees/overdue", fee.Overdue)
	admin.POST("/fees/generate", fee.Generate)

	admin.POST("/kitchen/items", kitchen.Add)
	admin.GET("/kitchen/items/:itemId", kitchen.Get)
	admin.GET("/kitchen/items", kitchen.Search)
	admin.PUT("/kitchen/items/:itemId", kitchen.Update)
	admin.PATCH("/kitchen/items/:itemId/quantity", kitchen.UpdateQuantity)
	admin.DELETE("/kitchen/items/:itemId", kitchen.Delete)
	admin.GET("/kitchen/items/low-stock", kitchen.LowStock)

	admin.POST("/notices", notice.Create)
	admin.GET("/notices", notice.List)
	admin.DELETE("/notices/:id", notice.Delete)

	// ===== Student self-service =====
	studentGrp := e.Group("/api/student/me", authMW, middlewares.RequireRole(models.RoleStudent))
	studentGrp.GET("", me.Profile)
	studentGrp.GET("/room", me.Room)
	studentGrp.GET("/fees", me.Fees)
	studentGrp.GET("/fees/:feeId/receipt", me.Receipt)
	studentGrp.GET("/notices", notice.List)

	// ===== Any authenticated user =====
	user := e.Group("/api/user", authMW)
	user.PUT("/me/update", me.UpdateUser)
}
