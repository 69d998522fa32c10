package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/kdd-community/website-backend/api/routes"
	"github.com/kdd-community/website-backend/internal/audit"
	"github.com/kdd-community/website-backend/internal/config"
	"github.com/kdd-community/website-backend/internal/handlers"
	"github.com/kdd-community/website-backend/internal/repositories"
	mongorepo "github.com/kdd-community/website-backend/internal/repositories/mongodb"
	"github.com/kdd-community/website-backend/internal/services"
	"github.com/kdd-community/website-backend/pkg/cloudinary"
	"github.com/kdd-community/website-backend/pkg/errtrack"
	"github.com/kdd-community/website-backend/pkg/identity"
	"github.com/kdd-community/website-backend/pkg/mongodb"
	"github.com/kdd-community/website-backend/pkg/webhook"
)

func main() {
	// A missing .env file is fine; config falls back to the environment.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	mongoClient, err := mongodb.NewClient(cfg.MongoDB.URI)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Printf("Error disconnecting from MongoDB: %v", err)
		}
	}()

	db := mongoClient.Database(cfg.MongoDB.Database)

	// Repositories
	var eventRepo repositories.EventRepository = mongorepo.NewEventRepository(db)
	var logRepo repositories.LogRepository = mongorepo.NewLogRepository(db)
	var userRepo repositories.UserRepository = mongorepo.NewUserRepository(db)

	// External collaborators
	media, err := cloudinary.NewClient(cfg)
	if err != nil {
		log.Fatalf("Failed to configure Cloudinary: %v", err)
	}
	provider := identity.NewJWTProvider(cfg, userRepo)
	sink := webhook.NewDiscordClient(cfg.Discord.LogWebhookURL)
	track := errtrack.NewLogSink()

	// Audit pipeline and services
	auditLogger := audit.NewLogger(provider, logRepo, sink, track)
	eventService := services.NewEventService(eventRepo, media, provider, auditLogger, track, cfg.Cloudinary.CloudName)
	authService := services.NewAuthService(provider, auditLogger, cfg)
	logService := services.NewLogService(logRepo, provider)

	// Handlers
	handlerDeps := routes.HandlerDependencies{
		AuthHandler:  handlers.NewAuthHandler(authService),
		EventHandler: handlers.NewEventHandler(eventService),
		LogHandler:   handlers.NewLogHandler(logService),
	}

	router := routes.SetupRouter(cfg, handlerDeps)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	log.Printf("Server starting on port %s", cfg.Server.Port)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown: ", err)
	}

	log.Println("Server exiting")
}
