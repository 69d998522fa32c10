package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kdd-community/website-backend/internal/middleware"
	"github.com/kdd-community/website-backend/internal/models"
	"github.com/kdd-community/website-backend/internal/services"
)

// EventHandler handles event-related HTTP requests
type EventHandler struct {
	eventService services.EventService
}

// NewEventHandler creates a new EventHandler
func NewEventHandler(eventService services.EventService) *EventHandler {
	return &EventHandler{
		eventService: eventService,
	}
}

// GetUpcoming handles GET /events/upcoming
func (h *EventHandler) GetUpcoming(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	events, err := h.eventService.GetUpcoming(c, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load events: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, events)
}

// GetPast handles GET /events/past
func (h *EventHandler) GetPast(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "1000"))
	events, err := h.eventService.GetPast(c, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load events: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, events)
}

// GetEvent handles GET /events/:id
func (h *EventHandler) GetEvent(c *gin.Context) {
	event, err := h.eventService.GetPublic(c, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
		return
	}
	c.JSON(http.StatusOK, event)
}

// ListEvents handles GET /admin/events
func (h *EventHandler) ListEvents(c *gin.Context) {
	events, result := h.eventService.List(c, middleware.Token(c))
	if !result.Success {
		c.JSON(statusFor(result), result)
		return
	}
	c.JSON(http.StatusOK, events)
}

// GetAdminEvent handles GET /admin/events/:id
func (h *EventHandler) GetAdminEvent(c *gin.Context) {
	event, result := h.eventService.Get(c, middleware.Token(c), c.Param("id"))
	if !result.Success {
		c.JSON(statusFor(result), result)
		return
	}
	c.JSON(http.StatusOK, event)
}

// CreateEvent handles POST /admin/events
func (h *EventHandler) CreateEvent(c *gin.Context) {
	var input models.EventInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event payload: " + err.Error()})
		return
	}

	id := uuid.NewString()
	result := h.eventService.Set(c, middleware.Token(c), id, input)
	if !result.Success {
		c.JSON(statusFor(result), result)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": result.Message, "id": id})
}

// SetEvent handles PUT /admin/events/:id (upsert by id)
func (h *EventHandler) SetEvent(c *gin.Context) {
	var input models.EventInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event payload: " + err.Error()})
		return
	}

	result := h.eventService.Set(c, middleware.Token(c), c.Param("id"), input)
	c.JSON(statusFor(result), result)
}

// DeleteEvent handles DELETE /admin/events/:id
func (h *EventHandler) DeleteEvent(c *gin.Context) {
	result := h.eventService.Delete(c, middleware.Token(c), c.Param("id"))
	c.JSON(statusFor(result), result)
}

// UploadPhoto handles POST /admin/events/:id/photos
func (h *EventHandler) UploadPhoto(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Image file is required"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read image file"})
		return
	}
	defer file.Close()

	photo, result := h.eventService.AddPhoto(c, middleware.Token(c), c.Param("id"), file, c.PostForm("name"))
	if !result.Success {
		c.JSON(statusFor(result), result)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": result.Message, "photo": photo})
}

// MovePhoto handles POST /admin/events/:id/photos/move
func (h *EventHandler) MovePhoto(c *gin.Context) {
	var req struct {
		OldIndex *int `json:"oldIndex" binding:"required"`
		NewIndex *int `json:"newIndex" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "oldIndex and newIndex are required"})
		return
	}

	result := h.eventService.MovePhoto(c, middleware.Token(c), c.Param("id"), *req.OldIndex, *req.NewIndex)
	c.JSON(statusFor(result), result)
}

// DeletePhoto handles DELETE /admin/events/:id/photos
func (h *EventHandler) DeletePhoto(c *gin.Context) {
	var photo models.Photo
	if err := c.ShouldBindJSON(&photo); err != nil || photo.Key == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Photo payload with key is required"})
		return
	}

	result := h.eventService.DeletePhoto(c, middleware.Token(c), c.Param("id"), photo)
	c.JSON(statusFor(result), result)
}
