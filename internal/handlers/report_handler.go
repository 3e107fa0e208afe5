package handlers

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/SAP-F-2025/training-service/internal/services"
	"github.com/SAP-F-2025/training-service/internal/utils"
	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ReportHandler struct {
	BaseHandler
	reportService services.ReportService
	clock         services.Clock
}

func NewReportHandler(reportService services.ReportService, clock services.Clock, logger utils.Logger) *ReportHandler {
	return &ReportHandler{
		BaseHandler:   NewBaseHandler(logger),
		reportService: reportService,
		clock:         clock,
	}
}

// GetOrgStats returns completion statistics for the caller's organization
// @Summary Organization training stats
// @Tags reports
// @Produce json
// @Success 200 {object} services.OrgStats
// @Router /reports/stats [get]
func (h *ReportHandler) GetOrgStats(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	stats, err := h.reportService.OrgStats(c.Request.Context(), actor.OrgID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// ExportXLSX streams the organization's enrollment report as a workbook
// @Summary Export training report
// @Tags reports
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} file
// @Router /reports/export [get]
func (h *ReportHandler) ExportXLSX(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Exporting training report", "org_id", actor.OrgID)

	var buf bytes.Buffer
	if err := h.reportService.ExportXLSX(c.Request.Context(), actor.OrgID, &buf); err != nil {
		h.handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("training-report-%s.xlsx", h.clock().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
