package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/training-service/internal/services"
	"github.com/SAP-F-2025/training-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type ReminderHandler struct {
	BaseHandler
	reminderService services.ReminderService
}

func NewReminderHandler(reminderService services.ReminderService, logger utils.Logger) *ReminderHandler {
	return &ReminderHandler{
		BaseHandler:     NewBaseHandler(logger),
		reminderService: reminderService,
	}
}

// RunScan triggers an expiry reminder scan outside the schedule
// @Summary Run reminder scan
// @Tags admin
// @Produce json
// @Success 200 {object} services.ScanResult
// @Router /admin/reminders/scan [post]
func (h *ReminderHandler) RunScan(c *gin.Context) {
	h.LogRequest(c, "Running reminder scan on demand")

	result, err := h.reminderService.Scan(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
