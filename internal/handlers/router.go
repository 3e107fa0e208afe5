package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/training-service/internal/config"
	"github.com/SAP-F-2025/training-service/internal/models"
	"github.com/SAP-F-2025/training-service/internal/repositories"
	"github.com/SAP-F-2025/training-service/internal/services"
	"github.com/SAP-F-2025/training-service/internal/utils"
	"github.com/SAP-F-2025/training-service/internal/validator"
)

type HandlerManager struct {
	serviceManager        services.ServiceManager
	enrollmentHandler     *EnrollmentHandler
	catalogHandler        *CatalogHandler
	recommendationHandler *RecommendationHandler
	documentHandler       *DocumentHandler
	reportHandler         *ReportHandler
	reminderHandler       *ReminderHandler
	userHandler           *UserHandler
	authenticate          gin.HandlerFunc
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	validator *validator.Validator,
	logger utils.Logger,
	casdoorConfig config.CasdoorConfig,
	userRepo repositories.UserRepository,
) *HandlerManager {
	authMiddleware := NewCasdoorAuthMiddleware(casdoorConfig, userRepo, logger)
	return newHandlerManager(serviceManager, validator, logger, userRepo, services.SystemClock, authMiddleware.AuthMiddleware())
}

func newHandlerManager(
	serviceManager services.ServiceManager,
	validator *validator.Validator,
	logger utils.Logger,
	userRepo repositories.UserRepository,
	clock services.Clock,
	authenticate gin.HandlerFunc,
) *HandlerManager {
	return &HandlerManager{
		serviceManager:        serviceManager,
		enrollmentHandler:     NewEnrollmentHandler(serviceManager.Enrollment(), validator, logger),
		catalogHandler:        NewCatalogHandler(serviceManager.Catalog(), logger),
		recommendationHandler: NewRecommendationHandler(serviceManager.Recommendation(), logger),
		documentHandler:       NewDocumentHandler(serviceManager.Document(), logger),
		reportHandler:         NewReportHandler(serviceManager.Report(), clock, logger),
		reminderHandler:       NewReminderHandler(serviceManager.Reminder(), logger),
		userHandler:           NewUserHandler(userRepo, logger),
		authenticate:          authenticate,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", hm.healthCheck)

	v1 := router.Group("/api/v1")
	v1.Use(hm.authenticate)
	{
		// Catalog - readable by everyone, maintained by admins
		modules := v1.Group("/modules")
		{
			modules.GET("", hm.catalogHandler.ListModules)
			modules.GET("/:id", hm.catalogHandler.GetModule)
			modules.PUT("/:id", RequireRole(models.RoleAdmin), hm.catalogHandler.UpsertModule)
		}

		enrollments := v1.Group("/enrollments")
		{
			// Assignment and org-wide reads - managers only
			enrollments.POST("", RequireManager(), hm.enrollmentHandler.AssignModule)
			enrollments.POST("/bulk", RequireManager(), hm.enrollmentHandler.BulkAssign)
			enrollments.GET("", RequireManager(), hm.enrollmentHandler.ListOrgEnrollments)

			// Ownership is checked by the service
			enrollments.GET("/:id", hm.enrollmentHandler.GetEnrollment)
			enrollments.POST("/:id/start", hm.enrollmentHandler.StartEnrollment)
			enrollments.POST("/:id/lessons", hm.enrollmentHandler.CompleteLesson)
			enrollments.PUT("/:id/progress", hm.enrollmentHandler.UpdateProgress)
			enrollments.POST("/:id/complete", hm.enrollmentHandler.CompleteEnrollment)
			enrollments.GET("/:id/acknowledgment", hm.enrollmentHandler.GetAcknowledgmentPrompt)
			enrollments.POST("/:id/acknowledgment", hm.enrollmentHandler.Acknowledge)
			enrollments.POST("/:id/retake", hm.enrollmentHandler.RetakeEnrollment)
		}

		me := v1.Group("/me")
		{
			me.GET("", hm.userHandler.GetCurrentUser)
			me.GET("/enrollments", hm.enrollmentHandler.ListMyEnrollments)
			me.GET("/acknowledgments/pending", hm.enrollmentHandler.PendingAcknowledgments)
		}

		users := v1.Group("/users")
		{
			users.GET("", RequireManager(), hm.userHandler.ListUsers)
			users.GET("/:id", RequireManager(), hm.userHandler.GetUser)
			users.GET("/:id/enrollments", hm.enrollmentHandler.ListUserEnrollments)
			users.GET("/:id/modules/:module_id/history", hm.enrollmentHandler.GetHistory)
		}

		recommendations := v1.Group("/recommendations")
		{
			recommendations.POST("", hm.recommendationHandler.Recommend)
			recommendations.POST("/assign", RequireManager(), hm.recommendationHandler.AssignRecommended)
		}

		documents := v1.Group("/documents")
		documents.Use(RequireManager())
		{
			documents.POST("", hm.documentHandler.CreateDocument)
			documents.GET("", hm.documentHandler.ListDocuments)
			documents.GET("/upcoming", hm.documentHandler.UpcomingRenewals)
			documents.GET("/:id", hm.documentHandler.GetDocument)
			documents.PUT("/:id", hm.documentHandler.UpdateDocument)
			documents.DELETE("/:id", hm.documentHandler.DeleteDocument)
			documents.POST("/:id/renew", hm.documentHandler.RenewDocument)
		}

		reports := v1.Group("/reports")
		reports.Use(RequireManager())
		{
			reports.GET("/stats", hm.reportHandler.GetOrgStats)
			reports.GET("/export", hm.reportHandler.ExportXLSX)
		}

		admin := v1.Group("/admin")
		admin.Use(RequireRole(models.RoleAdmin))
		{
			admin.POST("/reminders/scan", hm.reminderHandler.RunScan)
		}
	}
}

func (hm *HandlerManager) healthCheck(c *gin.Context) {
	if err := hm.serviceManager.HealthCheck(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "unhealthy",
			"service": "training-service",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "training-service",
	})
}
