package handlers

import (
	"net/http"
	"strconv"

	"github.com/SAP-F-2025/training-service/internal/models"
	"github.com/SAP-F-2025/training-service/internal/repositories"
	"github.com/SAP-F-2025/training-service/internal/services"
	"github.com/SAP-F-2025/training-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type CatalogHandler struct {
	BaseHandler
	catalogService services.CatalogService
}

func NewCatalogHandler(catalogService services.CatalogService, logger utils.Logger) *CatalogHandler {
	return &CatalogHandler{
		BaseHandler:    NewBaseHandler(logger),
		catalogService: catalogService,
	}
}

// ListModules lists the training catalog
// @Summary List training modules
// @Tags catalog
// @Produce json
// @Param tier query int false "Tier (1-3)"
// @Param audience query string false "Audience tag"
// @Param trigger_type query string false "Recommendation trigger"
// @Param include_inactive query bool false "Include retired modules"
// @Success 200 {object} models.PaginatedResponse
// @Router /modules [get]
func (h *CatalogHandler) ListModules(c *gin.Context) {
	limit, offset := h.pagination(c)
	filters := repositories.ModuleFilters{
		ActiveOnly: true,
		Limit:      limit,
		Offset:     offset,
		SortBy:     c.Query("sort_by"),
		SortOrder:  c.Query("sort_order"),
	}

	if tierStr := c.Query("tier"); tierStr != "" {
		tier, err := strconv.Atoi(tierStr)
		if err != nil || tier < 1 || tier > 3 {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Message: "Invalid tier",
				Details: "tier must be 1, 2 or 3",
			})
			return
		}
		filters.Tier = &tier
	}
	if audience := c.Query("audience"); audience != "" {
		filters.Audience = &audience
	}
	if trigger := c.Query("trigger_type"); trigger != "" {
		t := models.TriggerType(trigger)
		filters.TriggerType = &t
	}
	if inactive, err := strconv.ParseBool(c.Query("include_inactive")); err == nil && inactive {
		filters.ActiveOnly = false
	}

	modules, total, err := h.catalogService.ListModules(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.NewPaginatedResponse(modules, len(modules), total, limit, offset))
}

// GetModule returns a module with its lessons
// @Summary Get training module
// @Tags catalog
// @Produce json
// @Param id path string true "Module ID"
// @Success 200 {object} services.ModuleResponse
// @Failure 404 {object} ErrorResponse
// @Router /modules/{id} [get]
func (h *CatalogHandler) GetModule(c *gin.Context) {
	module, err := h.catalogService.GetModule(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, module)
}

// UpsertModule creates or replaces a catalog module. The path id wins over the body.
func (h *CatalogHandler) UpsertModule(c *gin.Context) {
	var req services.ModuleUpsertRequest
	if !h.bindJSON(c, &req) {
		return
	}
	req.ID = c.Param("id")

	h.LogRequest(c, "Upserting module", "module_id", req.ID)

	module, err := h.catalogService.UpsertModule(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, module)
}
