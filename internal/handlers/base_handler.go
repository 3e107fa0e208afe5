package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/SAP-F-2025/training-service/internal/services"
	"github.com/SAP-F-2025/training-service/internal/utils"
	"github.com/SAP-F-2025/training-service/internal/validator"
	"github.com/gin-gonic/gin"
)

type ErrorResponse struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// BaseHandler carries the logging and error mapping shared by every handler.
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

func (h *BaseHandler) LogRequest(c *gin.Context, msg string, args ...any) {
	utils.GetLogger(c, h.logger).Info(msg, args...)
}

func (h *BaseHandler) LogError(c *gin.Context, err error, msg string, args ...any) {
	utils.GetLogger(c, h.logger).Error(msg, append(args, "error", err)...)
}

// actor builds the caller identity set by the auth middleware. It writes a
// 401 and returns false when the request is unauthenticated.
func (h *BaseHandler) actor(c *gin.Context) (services.Actor, bool) {
	userID, err := GetUserIDFromContext(c)
	if err != nil || userID == "" {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return services.Actor{}, false
	}

	role, _ := GetUserRoleFromContext(c)
	orgID, _ := GetOrgIDFromContext(c)
	return services.Actor{UserID: userID, OrgID: orgID, Role: role}, true
}

func (h *BaseHandler) parseIDParam(c *gin.Context, param string) uint {
	id, err := strconv.ParseUint(c.Param(param), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + param,
			Details: "ID must be a positive number",
		})
		return 0
	}
	return uint(id)
}

// bindJSON decodes the body, writing a 400 on failure.
func (h *BaseHandler) bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return false
	}
	return true
}

// pagination turns the page and size query parameters into a limit and offset.
func (h *BaseHandler) pagination(c *gin.Context) (limit, offset int) {
	page, size := 1, 20
	if p, err := strconv.Atoi(c.Query("page")); err == nil && p > 0 {
		page = p
	}
	if s, err := strconv.Atoi(c.Query("size")); err == nil && s > 0 && s <= 100 {
		size = s
	}
	return size, (page - 1) * size
}

func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	c.JSON(h.errorResponse(c, err))
}

// errorResponse maps a service error to its status and body.
func (h *BaseHandler) errorResponse(c *gin.Context, err error) (int, ErrorResponse) {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		return http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: validationErrors,
		}
	}

	var transitionError *services.TransitionError
	if errors.As(err, &transitionError) {
		return http.StatusConflict, ErrorResponse{
			Message: "Invalid state transition",
			Details: map[string]interface{}{
				"from":   transitionError.From,
				"action": transitionError.Action,
				"reason": transitionError.Reason,
			},
		}
	}

	var notEligible *services.NotEligibleError
	if errors.As(err, &notEligible) {
		return http.StatusUnprocessableEntity, ErrorResponse{
			Message: "Enrollment is not eligible for acknowledgment",
			Details: map[string]interface{}{"reason": notEligible.Reason},
		}
	}

	var permissionError *services.PermissionError
	if errors.As(err, &permissionError) {
		return http.StatusForbidden, ErrorResponse{
			Message: "Access denied",
			Details: map[string]interface{}{
				"resource": permissionError.Resource,
				"action":   permissionError.Action,
				"reason":   permissionError.Reason,
			},
		}
	}

	switch {
	case errors.Is(err, services.ErrDuplicateAcknowledgment):
		return http.StatusConflict, ErrorResponse{
			Message: "Acknowledgment already recorded",
		}
	case errors.Is(err, services.ErrInvalidTransition):
		return http.StatusConflict, ErrorResponse{
			Message: "Invalid state transition",
			Details: err.Error(),
		}
	case errors.Is(err, services.ErrEnrollmentNotEligible):
		return http.StatusUnprocessableEntity, ErrorResponse{
			Message: "Enrollment is not eligible for acknowledgment",
		}
	case errors.Is(err, services.ErrEnrollmentNotFound):
		return http.StatusNotFound, ErrorResponse{
			Message: "Enrollment not found",
		}
	case errors.Is(err, services.ErrModuleNotFound):
		return http.StatusNotFound, ErrorResponse{
			Message: "Module not found",
		}
	case errors.Is(err, services.ErrDocumentNotFound):
		return http.StatusNotFound, ErrorResponse{
			Message: "Document not found",
		}
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound, ErrorResponse{
			Message: "Resource not found",
		}
	case errors.Is(err, services.ErrPermissionDenied):
		return http.StatusForbidden, ErrorResponse{
			Message: "Access denied",
		}
	case errors.Is(err, services.ErrValidation):
		return http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: err.Error(),
		}
	case errors.Is(err, services.ErrPersistence):
		h.LogError(c, err, "Storage failure")
		return http.StatusServiceUnavailable, ErrorResponse{
			Message: "Service temporarily unavailable",
		}
	default:
		h.LogError(c, err, "Unexpected service error")
		return http.StatusInternalServerError, ErrorResponse{
			Message: "Internal server error",
		}
	}
}
