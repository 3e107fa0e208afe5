package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/training-service/internal/services"
	"github.com/SAP-F-2025/training-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type RecommendationHandler struct {
	BaseHandler
	recommendationService services.RecommendationService
}

func NewRecommendationHandler(recommendationService services.RecommendationService, logger utils.Logger) *RecommendationHandler {
	return &RecommendationHandler{
		BaseHandler:           NewBaseHandler(logger),
		recommendationService: recommendationService,
	}
}

// Recommend lists the modules a role should take given the organization profile
// @Summary Recommend modules
// @Description Matches catalog triggers against the organization profile. When user_id is set, modules the user already holds are left out.
// @Tags recommendations
// @Accept json
// @Produce json
// @Param request body services.RecommendRequest true "Role and organization profile"
// @Success 200 {array} services.Recommendation
// @Failure 400 {object} ErrorResponse
// @Router /recommendations [post]
func (h *RecommendationHandler) Recommend(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	var req services.RecommendRequest
	if !h.bindJSON(c, &req) {
		return
	}
	req.OrgID = actor.OrgID
	if req.Role == "" && req.UserID == "" {
		req.UserID = actor.UserID
		req.Role = actor.Role
	}

	recommendations, err := h.recommendationService.Recommend(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, recommendations)
}

// AssignRecommended enrolls every member in the modules recommended for their role
// @Summary Assign recommended modules
// @Tags recommendations
// @Accept json
// @Produce json
// @Param request body services.AssignRecommendedRequest true "Members and organization profile"
// @Success 200 {object} services.BulkAssignResult
// @Failure 400 {object} ErrorResponse
// @Router /recommendations/assign [post]
func (h *RecommendationHandler) AssignRecommended(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	var req services.AssignRecommendedRequest
	if !h.bindJSON(c, &req) {
		return
	}
	req.OrgID = actor.OrgID

	h.LogRequest(c, "Assigning recommended modules", "members", len(req.Members))

	result, err := h.recommendationService.AssignRecommended(c.Request.Context(), &req, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
