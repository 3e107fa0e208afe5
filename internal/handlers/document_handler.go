package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/SAP-F-2025/training-service/internal/models"
	"github.com/SAP-F-2025/training-service/internal/repositories"
	"github.com/SAP-F-2025/training-service/internal/services"
	"github.com/SAP-F-2025/training-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type DocumentHandler struct {
	BaseHandler
	documentService services.DocumentService
}

func NewDocumentHandler(documentService services.DocumentService, logger utils.Logger) *DocumentHandler {
	return &DocumentHandler{
		BaseHandler:     NewBaseHandler(logger),
		documentService: documentService,
	}
}

// CreateDocument registers a compliance document; its expiry follows from the type
// @Summary Create compliance document
// @Tags documents
// @Accept json
// @Produce json
// @Param request body services.DocumentCreateRequest true "Document"
// @Success 201 {object} services.DocumentResponse
// @Failure 400 {object} ErrorResponse
// @Router /documents [post]
func (h *DocumentHandler) CreateDocument(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	var req services.DocumentCreateRequest
	if !h.bindJSON(c, &req) {
		return
	}
	req.OrgID = actor.OrgID

	h.LogRequest(c, "Creating document", "document_type", req.DocumentType)

	doc, err := h.documentService.Create(c.Request.Context(), &req, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, doc)
}

// GetDocument
// @Summary Get compliance document
// @Tags documents
// @Produce json
// @Param id path uint true "Document ID"
// @Success 200 {object} services.DocumentResponse
// @Failure 404 {object} ErrorResponse
// @Router /documents/{id} [get]
func (h *DocumentHandler) GetDocument(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	doc, err := h.documentService.GetByID(c.Request.Context(), id, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, doc)
}

// ListDocuments lists the organization's documents, soonest expiry first
// @Summary List compliance documents
// @Tags documents
// @Produce json
// @Param document_type query string false "Document type"
// @Param status query string false "active, expiring_soon, expired or renewed"
// @Success 200 {object} models.PaginatedResponse
// @Router /documents [get]
func (h *DocumentHandler) ListDocuments(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	limit, offset := h.pagination(c)
	filters := repositories.DocumentFilters{
		Limit:     limit,
		Offset:    offset,
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}
	if docType := c.Query("document_type"); docType != "" {
		t := models.DocumentType(docType)
		if !t.Valid() {
			c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid document_type"})
			return
		}
		filters.DocumentType = &t
	}
	if status := c.Query("status"); status != "" {
		s := models.DocumentStatus(status)
		switch s {
		case models.DocumentActive, models.DocumentExpiringSoon, models.DocumentExpired, models.DocumentRenewed:
			filters.Status = &s
		default:
			c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid status"})
			return
		}
	}

	docs, total, err := h.documentService.List(c.Request.Context(), filters, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.NewPaginatedResponse(docs, len(docs), total, limit, offset))
}

func (h *DocumentHandler) UpdateDocument(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	var req services.DocumentUpdateRequest
	if !h.bindJSON(c, &req) {
		return
	}

	doc, err := h.documentService.Update(c.Request.Context(), id, &req, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, doc)
}

func (h *DocumentHandler) DeleteDocument(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Deleting document", "document_id", id)

	if err := h.documentService.Delete(c.Request.Context(), id, actor); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{
		Message:   "Document deleted successfully",
		Timestamp: time.Now().UTC(),
	})
}

// RenewDocument supersedes a document with a freshly issued one
// @Summary Renew compliance document
// @Tags documents
// @Accept json
// @Produce json
// @Param id path uint true "Document ID"
// @Param request body services.DocumentRenewRequest true "New issue date"
// @Success 201 {object} services.RenewResponse
// @Failure 409 {object} ErrorResponse "Already renewed"
// @Router /documents/{id}/renew [post]
func (h *DocumentHandler) RenewDocument(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	var req services.DocumentRenewRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Renewing document", "document_id", id)

	resp, err := h.documentService.Renew(c.Request.Context(), id, &req, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// UpcomingRenewals lists documents expiring within the window, expired ones included
// @Summary Upcoming renewals
// @Tags documents
// @Produce json
// @Param days query int false "Window in days (default 90)"
// @Success 200 {array} services.DocumentResponse
// @Router /documents/upcoming [get]
func (h *DocumentHandler) UpcomingRenewals(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	days := 0
	if d := c.Query("days"); d != "" {
		parsed, err := strconv.Atoi(d)
		if err != nil || parsed < 1 || parsed > 3650 {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Message: "Invalid days",
				Details: "days must be between 1 and 3650",
			})
			return
		}
		days = parsed
	}

	docs, err := h.documentService.UpcomingRenewals(c.Request.Context(), days, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, docs)
}
