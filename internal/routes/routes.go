package routes

import (
	"mill-ops-api/internal/config"
	"mill-ops-api/internal/handlers"
	"mill-ops-api/internal/middleware"
	"mill-ops-api/internal/realtime"
	"mill-ops-api/internal/store"

	"github.com/gin-gonic/gin"
)

// SetupRoutes wires the realtime core and registers all routes. The
// connection registry and the services over it are constructed once, here,
// and handed to the handlers that need them.
func SetupRoutes(cfg config.Config) *gin.Engine {
	st := store.New()
	registry := realtime.NewRegistry()
	realtime.NewPresence(registry, st)
	msgRouter := realtime.NewRouter(registry,
		realtime.WithMessageStore(st),
		realtime.WithBroadcastEcho(cfg.BroadcastEcho),
	)
	fanout := realtime.NewFanout(registry, st)
	lifecycle := realtime.NewLifecycle(registry, msgRouter)

	wsHandler := handlers.NewWSHandler(lifecycle)
	userHandler := handlers.NewUserHandler(registry)
	machineHandler := handlers.NewMachineHandler(fanout)
	allotmentHandler := handlers.NewAllotmentHandler(fanout)
	rollHandler := handlers.NewRollHandler()
	dispatchHandler := handlers.NewDispatchHandler(fanout)
	chatHandler := handlers.NewChatHandler()
	notificationHandler := handlers.NewNotificationHandler()

	// Create a new GIN Router
	ginRouter := gin.Default()

	// CORS middleware (for frontend integration)
	ginRouter.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204) // This depends on the implementation of the frontend
			return
		}

		c.Next()
	})

	// Health check endpoint
	ginRouter.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Mill Operations API is running in Health Check Endpoint",
		})
	})

	// Public routes (no authentication required)
	api := ginRouter.Group("/api")
	{
		api.POST("/register", handlers.Register)
		api.POST("/login", handlers.Login)
	}

	// Protected routes (authentication required)
	protectedRoutes := api.Group("")
	protectedRoutes.Use(middleware.JWTAuthMiddleware())
	{
		// Users endpoint
		protectedRoutes.GET("/users", userHandler.GetAllUsers)

		// Machine endpoints
		protectedRoutes.GET("/machines", machineHandler.GetMachines)
		protectedRoutes.GET("/machines/:id", machineHandler.GetMachineByID)
		protectedRoutes.POST("/machines", machineHandler.CreateMachine)
		protectedRoutes.PUT("/machines/:id", machineHandler.UpdateMachine)
		protectedRoutes.PATCH("/machines/:id/status", machineHandler.UpdateMachineStatus)
		protectedRoutes.DELETE("/machines/:id", machineHandler.DeleteMachine)

		// Production allotment endpoints
		protectedRoutes.GET("/allotments", allotmentHandler.GetAllotments)
		protectedRoutes.GET("/allotments/:id", allotmentHandler.GetAllotmentByID)
		protectedRoutes.POST("/allotments", allotmentHandler.CreateAllotment)
		protectedRoutes.PATCH("/allotments/:id/status", allotmentHandler.UpdateAllotmentStatus)
		protectedRoutes.DELETE("/allotments/:id", allotmentHandler.DeleteAllotment)

		// Roll tracking endpoints
		protectedRoutes.GET("/rolls", rollHandler.GetRolls)
		protectedRoutes.POST("/rolls", rollHandler.CreateRoll)
		protectedRoutes.PATCH("/rolls/:id/status", rollHandler.UpdateRollStatus)

		// Dispatch planning endpoints
		protectedRoutes.GET("/dispatch-plans", dispatchHandler.GetDispatchPlans)
		protectedRoutes.GET("/dispatch-plans/:id", dispatchHandler.GetDispatchPlanByID)
		protectedRoutes.POST("/dispatch-plans", dispatchHandler.CreateDispatchPlan)
		protectedRoutes.POST("/dispatch-plans/:id/confirm", dispatchHandler.ConfirmDispatchPlan)
		protectedRoutes.POST("/dispatch-plans/:id/dispatch", dispatchHandler.ExecuteDispatchPlan)

		// Chat history and notification records
		protectedRoutes.GET("/chat/messages", chatHandler.GetMessages)
		protectedRoutes.GET("/notifications", notificationHandler.GetNotifications)
		protectedRoutes.PATCH("/notifications/:id/read", notificationHandler.MarkNotificationRead)
	}

	// Realtime endpoints: the anonymous push channel and the identified chat channel
	ginRouter.GET("/ws", wsHandler.Notifications)
	ginRouter.GET("/ws/chat/:employeeId", middleware.JWTAuthMiddleware(), wsHandler.Chat)

	return ginRouter
}
