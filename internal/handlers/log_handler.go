package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kdd-community/website-backend/internal/middleware"
	"github.com/kdd-community/website-backend/internal/services"
)

// LogHandler handles audit-log HTTP requests
type LogHandler struct {
	logService services.LogService
}

// NewLogHandler creates a new LogHandler
func NewLogHandler(logService services.LogService) *LogHandler {
	return &LogHandler{
		logService: logService,
	}
}

// GetLogs handles GET /admin/logs
func (h *LogHandler) GetLogs(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	logs, result := h.logService.GetLogs(c, middleware.Token(c), limit)
	if !result.Success {
		c.JSON(statusFor(result), result)
		return
	}
	c.JSON(http.StatusOK, logs)
}
