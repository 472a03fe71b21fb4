package main

import (
	"context"
	"log"

	"bluffcall/config"
	"bluffcall/handlers"
	"bluffcall/middleware"
	"bluffcall/models"
	"bluffcall/routes"
	"bluffcall/services"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.Load()

	ctx := context.Background()

	// Session snapshots are best-effort; a missing Redis only costs
	// restart recovery.
	redisClient := config.InitRedis(cfg)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Printf("Redis unavailable, session snapshots disabled: %v", err)
		redisClient = nil
	}

	gameService := services.NewGameService(redisClient)
	gameService.StartSweeper(ctx)

	hub := services.NewHub(gameService)
	go hub.Run()

	gameHandler := handlers.NewGameHandler(gameService, hub)

	// User accounts are a side feature; the game runs without them.
	var authHandler *handlers.AuthHandler
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Printf("Database unavailable, user accounts disabled: %v", err)
	} else {
		if err := db.AutoMigrate(&models.User{}); err != nil {
			log.Fatal("Failed to migrate database:", err)
		}
		authService := services.NewAuthService(db, cfg.JWTSecret)
		authHandler = handlers.NewAuthHandler(authService)
	}

	router := gin.Default()
	router.Use(middleware.CORS())

	routes.SetupRoutes(router, authHandler, gameHandler, hub, cfg.JWTSecret)

	log.Printf("Server starting on port %s", cfg.Port)
	if err := router.Run(cfg.BindAddress + ":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
