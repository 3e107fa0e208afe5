package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/training-service/internal/models"
	"github.com/SAP-F-2025/training-service/internal/repositories"
	"github.com/SAP-F-2025/training-service/internal/utils"
	"github.com/gin-gonic/gin"
)

// UserHandler exposes the user directory so managers can pick assignees.
type UserHandler struct {
	BaseHandler
	userRepo repositories.UserRepository
}

func NewUserHandler(userRepo repositories.UserRepository, logger utils.Logger) *UserHandler {
	return &UserHandler{
		BaseHandler: NewBaseHandler(logger),
		userRepo:    userRepo,
	}
}

// ListUsers lists users with optional filtering
// @Summary List users
// @Description Paginated list of directory users, searchable by name or email
// @Tags users
// @Produce json
// @Param page query int false "Page number (default: 1)"
// @Param size query int false "Page size (default: 20, max: 100)"
// @Param q query string false "Search query (name or email)"
// @Success 200 {object} models.PaginatedResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 502 {object} ErrorResponse "Directory unavailable"
// @Router /users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	if _, ok := h.actor(c); !ok {
		return
	}

	limit, offset := h.pagination(c)
	filters := repositories.UserFilters{
		Limit:  limit,
		Offset: offset,
		Query:  c.Query("q"),
	}

	var (
		users []*models.User
		total int64
		err   error
	)
	if filters.Query != "" {
		h.LogRequest(c, "Searching users", "query", filters.Query)
		users, total, err = h.userRepo.Search(c.Request.Context(), filters.Query, filters)
	} else {
		users, total, err = h.userRepo.List(c.Request.Context(), filters)
	}
	if err != nil {
		h.LogError(c, err, "Failed to list users")
		c.JSON(http.StatusBadGateway, ErrorResponse{
			Message: "User directory unavailable",
		})
		return
	}

	c.JSON(http.StatusOK, models.NewPaginatedResponse(users, len(users), total, limit, offset))
}

// GetUser retrieves a user by ID
// @Summary Get user by ID
// @Tags users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} models.User
// @Failure 404 {object} ErrorResponse "Not found"
// @Router /users/{id} [get]
func (h *UserHandler) GetUser(c *gin.Context) {
	if _, ok := h.actor(c); !ok {
		return
	}

	userID := c.Param("id")
	user, err := h.userRepo.GetByID(c.Request.Context(), userID)
	if err != nil {
		h.LogError(c, err, "Failed to get user", "user_id", userID)
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "User not found",
		})
		return
	}

	c.JSON(http.StatusOK, user)
}

// GetCurrentUser returns the authenticated caller as resolved by the auth middleware
// @Summary Current user
// @Tags users
// @Produce json
// @Success 200 {object} models.User
// @Router /me [get]
func (h *UserHandler) GetCurrentUser(c *gin.Context) {
	user, err := GetUserFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return
	}

	c.JSON(http.StatusOK, user)
}
