package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/wikimasters/wikimasters/internal/service"
	"github.com/wikimasters/wikimasters/internal/utils"
)

// CronHandler handles the scheduled heartbeat endpoint
type CronHandler struct {
	cronService *service.CronService
	logger      *zap.Logger
}

// NewCronHandler creates a new cron handler
func NewCronHandler(cronService *service.CronService, logger *zap.Logger) *CronHandler {
	return &CronHandler{
		cronService: cronService,
		logger:      logger,
	}
}

// Run records one heartbeat row. Bearer-secret auth happens in middleware.
// GET /api/cron
func (h *CronHandler) Run(c *gin.Context) {
	if err := h.cronService.RecordHeartbeat(c.Request.Context()); err != nil {
		h.logger.Error("Failed to record heartbeat", zap.Error(err))
		utils.SendErrorResponse(c, http.StatusInternalServerError, "Failed to record heartbeat")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
