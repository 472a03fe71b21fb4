package routes

import (
	"log"
	"net/http"

	"bluffcall/handlers"
	"bluffcall/middleware"
	"bluffcall/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // allow all origins for development
	},
}

func SetupRoutes(
	router *gin.Engine,
	authHandler *handlers.AuthHandler,
	gameHandler *handlers.GameHandler,
	hub *services.Hub,
	jwtSecret string,
) {
	api := router.Group("/api")
	{
		// Auth routes are registered only when the account store is up.
		// Game routes never depend on them.
		if authHandler != nil {
			auth := api.Group("/auth")
			{
				auth.POST("/register", authHandler.Register)
				auth.POST("/login", authHandler.Login)
			}

			protected := api.Group("/auth")
			protected.Use(middleware.AuthMiddleware(jwtSecret))
			{
				protected.GET("/profile", authHandler.GetProfile)
			}
		}

		games := api.Group("/games")
		{
			games.POST("", gameHandler.CreateGame)
			games.GET("", gameHandler.ListGames)
			games.GET("/:id", gameHandler.GetGame)
			games.POST("/:id/join", gameHandler.JoinGame)
			games.POST("/:id/play", gameHandler.PlayCard)
			games.POST("/:id/accuse", gameHandler.AccusePlayer)
			games.POST("/:id/continue", gameHandler.ContinueAfterRevelation)
		}
	}

	// WebSocket endpoint. A connection subscribes to a game by sending a
	// join_game message after the upgrade, not via the URL.
	router.GET("/ws", func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("WebSocket upgrade failed: %v", err)
			return
		}
		hub.RegisterClient(conn)
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}
