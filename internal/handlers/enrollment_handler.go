package handlers

import (
	"net/http"
	"strconv"

	"github.com/SAP-F-2025/training-service/internal/models"
	"github.com/SAP-F-2025/training-service/internal/repositories"
	"github.com/SAP-F-2025/training-service/internal/services"
	"github.com/SAP-F-2025/training-service/internal/utils"
	"github.com/SAP-F-2025/training-service/internal/validator"
	"github.com/gin-gonic/gin"
)

type EnrollmentHandler struct {
	BaseHandler
	enrollmentService services.EnrollmentService
	validator         *validator.Validator
}

func NewEnrollmentHandler(
	enrollmentService services.EnrollmentService,
	validator *validator.Validator,
	logger utils.Logger,
) *EnrollmentHandler {
	return &EnrollmentHandler{
		BaseHandler:       NewBaseHandler(logger),
		enrollmentService: enrollmentService,
		validator:         validator,
	}
}

// AssignModule enrolls a user in a training module
// @Summary Assign module
// @Description Creates a not started enrollment for the user in the caller's organization
// @Tags enrollments
// @Accept json
// @Produce json
// @Param request body services.AssignRequest true "Assignment"
// @Success 201 {object} services.EnrollmentResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /enrollments [post]
func (h *EnrollmentHandler) AssignModule(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	var req services.AssignRequest
	if !h.bindJSON(c, &req) {
		return
	}
	req.OrgID = actor.OrgID

	h.LogRequest(c, "Assigning module", "user_id", req.UserID, "module_id", req.ModuleID)

	enrollment, err := h.enrollmentService.Assign(c.Request.Context(), &req, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, enrollment)
}

// BulkAssign enrolls many user/module pairs, skipping those already enrolled
// @Summary Bulk assign modules
// @Tags enrollments
// @Accept json
// @Produce json
// @Param request body services.BulkAssignRequest true "Pairs to assign"
// @Success 200 {object} services.BulkAssignResult
// @Failure 400 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse "Details carry the pairs committed before the failure"
// @Router /enrollments/bulk [post]
func (h *EnrollmentHandler) BulkAssign(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	var req services.BulkAssignRequest
	if !h.bindJSON(c, &req) {
		return
	}
	req.OrgID = actor.OrgID

	h.LogRequest(c, "Bulk assigning modules", "pairs", len(req.Pairs))

	result, err := h.enrollmentService.BulkAssign(c.Request.Context(), &req, actor)
	if err != nil {
		if result == nil {
			h.handleServiceError(c, err)
			return
		}
		// Pairs handled before the failure stay committed
		status, resp := h.errorResponse(c, err)
		resp.Details = map[string]interface{}{
			"error":   resp.Details,
			"created": result.Created,
			"skipped": result.Skipped,
		}
		c.JSON(status, resp)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetEnrollment returns one enrollment with its derived status
// @Summary Get enrollment
// @Tags enrollments
// @Produce json
// @Param id path uint true "Enrollment ID"
// @Success 200 {object} services.EnrollmentResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /enrollments/{id} [get]
func (h *EnrollmentHandler) GetEnrollment(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	enrollment, err := h.enrollmentService.GetByID(c.Request.Context(), id, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, enrollment)
}

// ListOrgEnrollments lists the enrollments of the caller's organization
// @Summary List organization enrollments
// @Tags enrollments
// @Produce json
// @Param page query int false "Page number (default: 1)"
// @Param size query int false "Page size (default: 20, max: 100)"
// @Param status query string false "Stored status filter"
// @Param user_id query string false "Learner filter"
// @Param module_id query string false "Module filter"
// @Param latest_only query bool false "Only the latest cycle per user and module"
// @Success 200 {object} models.PaginatedResponse
// @Router /enrollments [get]
func (h *EnrollmentHandler) ListOrgEnrollments(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	filters, ok := h.parseEnrollmentFilters(c)
	if !ok {
		return
	}
	if userID := c.Query("user_id"); userID != "" {
		filters.UserID = &userID
	}

	enrollments, total, err := h.enrollmentService.ListForOrg(c.Request.Context(), filters, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.NewPaginatedResponse(enrollments, len(enrollments), total, filters.Limit, filters.Offset))
}

// ListMyEnrollments lists the caller's own enrollments
// @Summary List my enrollments
// @Tags enrollments
// @Produce json
// @Success 200 {object} models.PaginatedResponse
// @Router /me/enrollments [get]
func (h *EnrollmentHandler) ListMyEnrollments(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	h.listForUser(c, actor.UserID, actor)
}

func (h *EnrollmentHandler) ListUserEnrollments(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	h.listForUser(c, c.Param("id"), actor)
}

func (h *EnrollmentHandler) listForUser(c *gin.Context, userID string, actor services.Actor) {
	filters, ok := h.parseEnrollmentFilters(c)
	if !ok {
		return
	}

	enrollments, total, err := h.enrollmentService.ListForUser(c.Request.Context(), userID, filters, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.NewPaginatedResponse(enrollments, len(enrollments), total, filters.Limit, filters.Offset))
}

// GetHistory returns every cycle a user has had for a module
// @Summary Enrollment history
// @Tags enrollments
// @Produce json
// @Param id path string true "User ID"
// @Param module_id path string true "Module ID"
// @Success 200 {array} services.EnrollmentResponse
// @Router /users/{id}/modules/{module_id}/history [get]
func (h *EnrollmentHandler) GetHistory(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	history, err := h.enrollmentService.History(c.Request.Context(), c.Param("id"), c.Param("module_id"), actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, history)
}

// PendingAcknowledgments lists the caller's enrollments waiting on an acknowledgment,
// so a client can resume an abandoned prompt.
func (h *EnrollmentHandler) PendingAcknowledgments(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	pending, err := h.enrollmentService.PendingAcknowledgments(c.Request.Context(), actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, pending)
}

// ===== LEARNER TRANSITIONS =====

// StartEnrollment moves a not started enrollment to in progress
// @Summary Start enrollment
// @Tags enrollments
// @Produce json
// @Param id path uint true "Enrollment ID"
// @Success 200 {object} services.EnrollmentResponse
// @Failure 409 {object} ErrorResponse
// @Router /enrollments/{id}/start [post]
func (h *EnrollmentHandler) StartEnrollment(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Starting enrollment", "enrollment_id", id)

	enrollment, err := h.enrollmentService.Start(c.Request.Context(), id, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, enrollment)
}

// CompleteLesson marks the next lesson complete
// @Summary Complete lesson
// @Tags enrollments
// @Accept json
// @Produce json
// @Param id path uint true "Enrollment ID"
// @Param request body validator.CompleteLessonRequest true "Lesson index"
// @Success 200 {object} services.EnrollmentResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /enrollments/{id}/lessons [post]
func (h *EnrollmentHandler) CompleteLesson(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	var req validator.CompleteLessonRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogRequest(c, "Completing lesson", "enrollment_id", id, "lesson_index", *req.LessonIndex)

	enrollment, err := h.enrollmentService.CompleteLesson(c.Request.Context(), id, *req.LessonIndex, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, enrollment)
}

func (h *EnrollmentHandler) UpdateProgress(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	var req validator.UpdateProgressRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		h.handleServiceError(c, err)
		return
	}

	enrollment, err := h.enrollmentService.UpdateProgress(c.Request.Context(), id, *req.Progress, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, enrollment)
}

// CompleteEnrollment completes a module that needs no acknowledgment
// @Summary Complete enrollment
// @Tags enrollments
// @Produce json
// @Param id path uint true "Enrollment ID"
// @Success 200 {object} services.EnrollmentResponse
// @Failure 409 {object} ErrorResponse
// @Router /enrollments/{id}/complete [post]
func (h *EnrollmentHandler) CompleteEnrollment(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	enrollment, err := h.enrollmentService.Complete(c.Request.Context(), id, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, enrollment)
}

// GetAcknowledgmentPrompt returns the statement to present and whether it is pending
// @Summary Get acknowledgment prompt
// @Tags acknowledgments
// @Produce json
// @Param id path uint true "Enrollment ID"
// @Success 200 {object} services.AcknowledgmentPrompt
// @Router /enrollments/{id}/acknowledgment [get]
func (h *EnrollmentHandler) GetAcknowledgmentPrompt(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	prompt, err := h.enrollmentService.GetAcknowledgmentPrompt(c.Request.Context(), id, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, prompt)
}

// Acknowledge records the learner's attestation and completes the enrollment
// @Summary Record acknowledgment
// @Tags acknowledgments
// @Accept json
// @Produce json
// @Param id path uint true "Enrollment ID"
// @Param request body services.AcknowledgeRequest true "Acknowledgment"
// @Success 201 {object} services.AcknowledgeResponse
// @Failure 409 {object} ErrorResponse "Already acknowledged"
// @Failure 422 {object} ErrorResponse "Not eligible"
// @Router /enrollments/{id}/acknowledgment [post]
func (h *EnrollmentHandler) Acknowledge(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	var req services.AcknowledgeRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Recording acknowledgment", "enrollment_id", id)

	resp, err := h.enrollmentService.Acknowledge(c.Request.Context(), id, &req, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// RetakeEnrollment opens the next cycle of an expired enrollment
// @Summary Retake expired enrollment
// @Tags enrollments
// @Produce json
// @Param id path uint true "Enrollment ID"
// @Success 201 {object} services.EnrollmentResponse
// @Failure 409 {object} ErrorResponse
// @Router /enrollments/{id}/retake [post]
func (h *EnrollmentHandler) RetakeEnrollment(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	enrollment, err := h.enrollmentService.Retake(c.Request.Context(), id, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, enrollment)
}

// ===== HELPER METHODS =====

func (h *EnrollmentHandler) parseEnrollmentFilters(c *gin.Context) (repositories.EnrollmentFilters, bool) {
	limit, offset := h.pagination(c)
	filters := repositories.EnrollmentFilters{
		Limit:     limit,
		Offset:    offset,
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}

	if status := c.Query("status"); status != "" {
		s := models.EnrollmentStatus(status)
		switch s {
		case models.EnrollmentNotStarted, models.EnrollmentInProgress, models.EnrollmentCompleted:
			filters.Status = &s
		default:
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Message: "Invalid status",
				Details: "status must be one of not_started, in_progress, completed",
			})
			return filters, false
		}
	}
	if moduleID := c.Query("module_id"); moduleID != "" {
		filters.ModuleID = &moduleID
	}
	if latest, err := strconv.ParseBool(c.Query("latest_only")); err == nil {
		filters.LatestOnly = latest
	}

	return filters, true
}
