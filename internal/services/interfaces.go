package services

import (
	"context"
	"io"
	"time"

	"github.com/SAP-F-2025/training-service/internal/expiry"
	"github.com/SAP-F-2025/training-service/internal/models"
	"github.com/SAP-F-2025/training-service/internal/repositories"
	"github.com/SAP-F-2025/training-service/internal/validator"
)

// Clock returns the current time. Services read time only through it.
type Clock func() time.Time

func SystemClock() time.Time {
	return time.Now().UTC()
}

// Actor is the authenticated caller of a service operation.
type Actor struct {
	UserID string
	OrgID  string
	Role   models.UserRole
}

func (a Actor) IsManager() bool {
	return a.Role.IsManager()
}

// ===== ENROLLMENT DTOs =====

type AssignRequest = validator.AssignRequest
type BulkAssignRequest = validator.BulkAssignRequest
type AssignmentPair = validator.AssignmentPair
type AcknowledgeRequest = validator.AcknowledgeRequest

// EnrollmentResponse is an enrollment plus the values derived at read time.
type EnrollmentResponse struct {
	*models.Enrollment
	DerivedStatus         models.EnrollmentStatus `json:"derived_status"`
	DaysRemaining         *int                    `json:"days_remaining"`
	IsExpired             bool                    `json:"is_expired"`
	Urgency               expiry.Urgency          `json:"urgency"`
	AcknowledgmentPending bool                    `json:"acknowledgment_pending"`
	ModuleTitle           string                  `json:"module_title,omitempty"`
	TotalLessons          int                     `json:"total_lessons"`
}

type SkippedAssignment struct {
	UserID       string `json:"user_id"`
	ModuleID     string `json:"module_id"`
	Reason       string `json:"reason"`
	EnrollmentID *uint  `json:"enrollment_id,omitempty"`
}

type BulkAssignResult struct {
	Created []*EnrollmentResponse `json:"created"`
	Skipped []SkippedAssignment   `json:"skipped"`
}

type AcknowledgeResponse struct {
	Enrollment     *EnrollmentResponse    `json:"enrollment"`
	Acknowledgment *models.Acknowledgment `json:"acknowledgment"`
}

// AcknowledgmentPrompt tells a client what to present, and whether an
// interrupted acknowledgment is waiting to be resumed.
type AcknowledgmentPrompt struct {
	EnrollmentID uint                   `json:"enrollment_id"`
	ModuleID     string                 `json:"module_id"`
	ModuleTitle  string                 `json:"module_title"`
	Required     bool                   `json:"required"`
	Pending      bool                   `json:"pending"`
	Statement    string                 `json:"statement"`
	Recorded     *models.Acknowledgment `json:"recorded,omitempty"`
}

// ===== CATALOG DTOs =====

type ModuleUpsertRequest = validator.ModuleUpsertRequest
type LessonRequest = validator.LessonRequest

type ModuleResponse struct {
	*models.TrainingModule
	TotalLessons         int `json:"total_lessons"`
	TotalDurationMinutes int `json:"total_duration_minutes"`
}

// ===== RECOMMENDATION DTOs =====

type OrgProfile = validator.OrgProfile
type RecommendRequest = validator.RecommendRequest
type AssignRecommendedRequest = validator.AssignRecommendedRequest
type Member = validator.Member

type Recommendation struct {
	Module  *ModuleResponse    `json:"module"`
	Trigger models.TriggerType `json:"trigger"`
	Reason  string             `json:"reason"`
}

// ===== DOCUMENT DTOs =====

type DocumentCreateRequest = validator.DocumentCreateRequest
type DocumentUpdateRequest = validator.DocumentUpdateRequest
type DocumentRenewRequest = validator.DocumentRenewRequest

type DocumentResponse struct {
	*models.ComplianceDocument
	DerivedStatus models.DocumentStatus `json:"derived_status"`
	DaysRemaining *int                  `json:"days_remaining"`
	IsExpired     bool                  `json:"is_expired"`
	Urgency       expiry.Urgency        `json:"urgency"`
}

type RenewResponse struct {
	Original *DocumentResponse `json:"original"`
	Renewed  *DocumentResponse `json:"renewed"`
}

// ===== REPORT DTOs =====

type ModuleStats struct {
	ModuleID       string `json:"module_id"`
	ModuleTitle    string `json:"module_title"`
	TotalEnrolled  int    `json:"total_enrolled"`
	Completed      int    `json:"completed"`
	Overdue        int    `json:"overdue"`
	ExpiringSoon   int    `json:"expiring_soon"`
	CompletionRate int    `json:"completion_rate"`
}

type OrgStats struct {
	OrgID          string        `json:"org_id"`
	GeneratedAt    time.Time     `json:"generated_at"`
	TotalEnrolled  int           `json:"total_enrolled"`
	Completed      int           `json:"completed"`
	InProgress     int           `json:"in_progress"`
	NotStarted     int           `json:"not_started"`
	Expired        int           `json:"expired"`
	Overdue        int           `json:"overdue"`
	ExpiringSoon   int           `json:"expiring_soon"`
	CompletionRate int           `json:"completion_rate"`
	Modules        []ModuleStats `json:"modules"`
}

// ===== REMINDER DTOs =====

type ScanResult struct {
	EnrollmentEvents int `json:"enrollment_events"`
	DocumentEvents   int `json:"document_events"`
	Failures         int `json:"failures"`
}

// ===== SERVICE INTERFACES =====

type EnrollmentService interface {
	// Assignment
	Assign(ctx context.Context, req *AssignRequest, actor Actor) (*EnrollmentResponse, error)
	BulkAssign(ctx context.Context, req *BulkAssignRequest, actor Actor) (*BulkAssignResult, error)

	// Learner transitions
	Start(ctx context.Context, id uint, actor Actor) (*EnrollmentResponse, error)
	CompleteLesson(ctx context.Context, id uint, lessonIndex int, actor Actor) (*EnrollmentResponse, error)
	UpdateProgress(ctx context.Context, id uint, progress int, actor Actor) (*EnrollmentResponse, error)
	Complete(ctx context.Context, id uint, actor Actor) (*EnrollmentResponse, error)
	Acknowledge(ctx context.Context, id uint, req *AcknowledgeRequest, actor Actor) (*AcknowledgeResponse, error)
	GetAcknowledgmentPrompt(ctx context.Context, id uint, actor Actor) (*AcknowledgmentPrompt, error)
	Retake(ctx context.Context, id uint, actor Actor) (*EnrollmentResponse, error)

	// Reads
	GetByID(ctx context.Context, id uint, actor Actor) (*EnrollmentResponse, error)
	ListForUser(ctx context.Context, userID string, filters repositories.EnrollmentFilters, actor Actor) ([]*EnrollmentResponse, int64, error)
	ListForOrg(ctx context.Context, filters repositories.EnrollmentFilters, actor Actor) ([]*EnrollmentResponse, int64, error)
	History(ctx context.Context, userID, moduleID string, actor Actor) ([]*EnrollmentResponse, error)
	PendingAcknowledgments(ctx context.Context, actor Actor) ([]*EnrollmentResponse, error)
}

type CatalogService interface {
	GetModule(ctx context.Context, id string) (*ModuleResponse, error)
	ListModules(ctx context.Context, filters repositories.ModuleFilters) ([]*ModuleResponse, int64, error)
	UpsertModule(ctx context.Context, req *ModuleUpsertRequest) (*ModuleResponse, error)
	// SeedCatalog upserts the built-in catalog and returns the number of modules written
	SeedCatalog(ctx context.Context) (int, error)
}

type RecommendationService interface {
	Recommend(ctx context.Context, req *RecommendRequest) ([]*Recommendation, error)
	AssignRecommended(ctx context.Context, req *AssignRecommendedRequest, actor Actor) (*BulkAssignResult, error)
}

type DocumentService interface {
	Create(ctx context.Context, req *DocumentCreateRequest, actor Actor) (*DocumentResponse, error)
	GetByID(ctx context.Context, id uint, actor Actor) (*DocumentResponse, error)
	List(ctx context.Context, filters repositories.DocumentFilters, actor Actor) ([]*DocumentResponse, int64, error)
	Update(ctx context.Context, id uint, req *DocumentUpdateRequest, actor Actor) (*DocumentResponse, error)
	Delete(ctx context.Context, id uint, actor Actor) error
	Renew(ctx context.Context, id uint, req *DocumentRenewRequest, actor Actor) (*RenewResponse, error)
	UpcomingRenewals(ctx context.Context, withinDays int, actor Actor) ([]*DocumentResponse, error)
}

type ReportService interface {
	OrgStats(ctx context.Context, orgID string) (*OrgStats, error)
	ExportXLSX(ctx context.Context, orgID string, w io.Writer) error
}

type ReminderService interface {
	Scan(ctx context.Context) (*ScanResult, error)
}

// ServiceManager owns every service and their shared dependencies
type ServiceManager interface {
	Enrollment() EnrollmentService
	Catalog() CatalogService
	Recommendation() RecommendationService
	Document() DocumentService
	Report() ReportService
	Reminder() ReminderService

	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
