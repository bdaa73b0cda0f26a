package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shared-daily-menu/internal/config"
	"shared-daily-menu/internal/crypto"
	"shared-daily-menu/internal/db"
	"shared-daily-menu/internal/menu"
	"shared-daily-menu/internal/middleware"
	"shared-daily-menu/internal/room"
	"shared-daily-menu/internal/template"
	"shared-daily-menu/internal/worker"
	"shared-daily-menu/redis"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	config.LoadConfig()

	// Connect to database
	db.ConnectDb()
	defer db.CloseDb()

	// Migrate database schema
	db.Migrate()

	// Initialize Redis
	redis.InitRedis()
	cache := redis.NewCache(redis.RedisClient)

	// Worker pool for background cache population
	pool := worker.NewWorkerPool(4)

	// Initialize repository
	roomRepo := room.NewRepository(db.AppDb)
	menuRepo := menu.NewRepository(db.AppDb)
	templateRepo := template.NewRepository(db.AppDb)
	// Initialize service
	hasher := crypto.NewHasher(config.AppConfig.DeviceSalt)
	roomService := room.NewService(roomRepo, hasher, config.AppConfig.FixedInviteToken)
	menuService := menu.NewService(menuRepo, cache, pool)
	templateService := template.NewService(templateRepo, menuRepo, cache)
	// Initialize handler
	roomHandler := room.NewHandler(roomService)
	menuHandler := menu.NewHandler(menuService)
	templateHandler := template.NewHandler(templateService)

	authMiddleware := &middleware.Auth{Rooms: roomService}

	// Initialize Gin router
	router := gin.Default()
	router.Use(middleware.ErrorHandler())

	// cors setting
	corsConfig := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "x-device-id", "x-display-name"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
	}

	if config.AppConfig.Environment == "development" {
		// Allow all origins in development
		corsConfig.AllowAllOrigins = true
	} else {
		// Restrict origins in production
		corsConfig.AllowOrigins = []string{config.AppConfig.FrontendAddress}
	}
	router.Use(cors.New(corsConfig))

	// Room routes
	router.POST("/setup", roomHandler.Setup)

	rooms := router.Group("/rooms/:roomId")
	rooms.POST("/join", roomHandler.Join)

	authed := rooms.Group("", authMiddleware.RequireActor())
	authed.GET("/daily", menuHandler.ListItems)
	authed.POST("/daily", menuHandler.AddItem)
	authed.PATCH("/items/:itemId", menuHandler.RenameItem)
	authed.DELETE("/items/:itemId", menuHandler.DeleteItem)
	authed.POST("/items/:itemId/move", menuHandler.MoveItem)
	authed.GET("/templates", templateHandler.List)
	authed.POST("/templates", templateHandler.Save)
	authed.DELETE("/templates/:templateId", templateHandler.Delete)
	authed.POST("/templates/:templateId/apply", templateHandler.Apply)

	// Server configuration
	serverPort := config.AppConfig.ServerPort
	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", serverPort),
		Handler: router.Handler(),
	}

	// Start server
	go func() {
		log.Printf("Server listening on port %s", serverPort)
		err := server.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Println("Server shutdown error:", err)
	}

	pool.Shutdown()

	<-ctx.Done()
	log.Println("Server shutdown complete")
}
