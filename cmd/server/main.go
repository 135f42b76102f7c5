package main

import (
	"log"
	"mill-ops-api/internal/config"
	"mill-ops-api/internal/database"
	"mill-ops-api/internal/routes"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration: ", err)
	}

	// Init database
	database.InitDB(cfg.DBPath)

	// Setup the routes (public, protected and websocket routes)
	ginRoutes := routes.SetupRoutes(cfg)

	addr := ":" + cfg.Port
	log.Printf("Server starting on port %s", addr)
	log.Println("API endpoints:")
	log.Println("  POST   /api/register")
	log.Println("  POST   /api/login")
	log.Println("  GET    /api/users")
	log.Println("  GET    /api/machines")
	log.Println("  GET    /api/allotments")
	log.Println("  GET    /api/rolls")
	log.Println("  GET    /api/dispatch-plans")
	log.Println("  GET    /api/chat/messages")
	log.Println("  GET    /api/notifications")
	log.Println("  GET    /ws")
	log.Println("  GET    /ws/chat/:employeeId")
	log.Println("  GET    /health")

	if err := ginRoutes.Run(addr); err != nil {
		log.Fatal("Failed to start server: ", err)
	}
}
