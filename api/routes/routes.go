package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/kdd-community/website-backend/internal/config"
	"github.com/kdd-community/website-backend/internal/handlers"
	"github.com/kdd-community/website-backend/internal/middleware"
)

// HandlerDependencies groups the handlers the router needs
type HandlerDependencies struct {
	AuthHandler  *handlers.AuthHandler
	EventHandler *handlers.EventHandler
	LogHandler   *handlers.LogHandler
}

// SetupRouter sets up the router
func SetupRouter(cfg *config.Config, deps HandlerDependencies) *gin.Engine {
	router := gin.Default()

	router.Use(middleware.CORS(cfg))
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.BearerToken())

	api := router.Group("/api/v1")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{"status": "ok"})
		})

		// Public site queries
		events := api.Group("/events")
		{
			events.GET("/upcoming", deps.EventHandler.GetUpcoming)
			events.GET("/past", deps.EventHandler.GetPast)
			events.GET("/:id", deps.EventHandler.GetEvent)
		}

		// Admin elevation (token required, admin claim not yet)
		auth := api.Group("/auth/admin")
		{
			auth.POST("/verify", deps.AuthHandler.VerifyAdminPassword)
			auth.POST("/step-down", deps.AuthHandler.StepDownAsAdmin)
		}

		// Admin console. The admin claim is verified per-action in the
		// service layer, so these routes need no extra middleware.
		admin := api.Group("/admin")
		{
			admin.GET("/events", deps.EventHandler.ListEvents)
			admin.POST("/events", deps.EventHandler.CreateEvent)
			admin.GET("/events/:id", deps.EventHandler.GetAdminEvent)
			admin.PUT("/events/:id", deps.EventHandler.SetEvent)
			admin.DELETE("/events/:id", deps.EventHandler.DeleteEvent)

			admin.POST("/events/:id/photos", deps.EventHandler.UploadPhoto)
			admin.POST("/events/:id/photos/move", deps.EventHandler.MovePhoto)
			admin.DELETE("/events/:id/photos", deps.EventHandler.DeletePhoto)

			admin.GET("/logs", deps.LogHandler.GetLogs)
		}
	}

	return router
}
