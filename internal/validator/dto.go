package validator

import (
	"time"

	"github.com/SAP-F-2025/training-service/internal/models"
)

// AssignmentPair names one user and one module to enroll them in.
type AssignmentPair struct {
	UserID   string `json:"user_id" validate:"required,max=255"`
	ModuleID string `json:"module_id" validate:"required,module_id"`
}

type AssignRequest struct {
	OrgID    string     `json:"-" validate:"required"`
	UserID   string     `json:"user_id" validate:"required,max=255"`
	ModuleID string     `json:"module_id" validate:"required,module_id"`
	DueAt    *time.Time `json:"due_at" validate:"omitempty,future_date"`
}

type BulkAssignRequest struct {
	OrgID string           `json:"-" validate:"required"`
	Pairs []AssignmentPair `json:"pairs" validate:"required,min=1,max=500,dive"`
	DueAt *time.Time       `json:"due_at" validate:"omitempty,future_date"`
}

type CompleteLessonRequest struct {
	LessonIndex *int `json:"lesson_index" validate:"required,min=0,max=99"`
}

type UpdateProgressRequest struct {
	Progress *int `json:"progress" validate:"required,min=0,max=100"`
}

type AcknowledgeRequest struct {
	AcknowledgmentText string `json:"acknowledgment_text" validate:"required,ack_text,max=5000"`
}

type LessonRequest struct {
	Title           string `json:"title" validate:"required,min=1,max=200"`
	DurationMinutes int    `json:"duration_minutes" validate:"min=0,max=600"`
}

type ModuleUpsertRequest struct {
	ID                     string             `json:"id" yaml:"id" validate:"required,module_id"`
	Title                  string             `json:"title" yaml:"title" validate:"required,min=1,max=200"`
	Description            string             `json:"description" yaml:"description" validate:"max=2000"`
	Tier                   int                `json:"tier" yaml:"tier" validate:"required,min=1,max=3"`
	Audience               []string           `json:"audience" yaml:"audience" validate:"required,min=1,dive,required,max=50"`
	ValidityMonths         int                `json:"validity_months" yaml:"validity_months" validate:"omitempty,min=1,max=60"`
	RequiresAcknowledgment bool               `json:"requires_acknowledgment" yaml:"requires_acknowledgment"`
	TriggerType            models.TriggerType `json:"trigger_type" yaml:"trigger_type" validate:"omitempty,trigger_type"`
	TriggerValues          []string           `json:"trigger_values" yaml:"trigger_values" validate:"omitempty,dive,required,max=100"`
	MinEmployees           int                `json:"min_employees" yaml:"min_employees" validate:"min=0"`
	Lessons                []LessonRequest    `json:"lessons" yaml:"lessons" validate:"required,min=1,max=100,dive"`
	IsActive               *bool              `json:"is_active" yaml:"is_active"`
}

// OrgProfile is the organization context recommendation triggers match against.
type OrgProfile struct {
	States        []string `json:"states" validate:"omitempty,dive,len=2"`
	Tools         []string `json:"tools" validate:"omitempty,dive,required"`
	Industry      string   `json:"industry" validate:"max=100"`
	EmployeeCount int      `json:"employee_count" validate:"min=0"`
}

type RecommendRequest struct {
	OrgID   string          `json:"-" validate:"required"`
	UserID  string          `json:"user_id" validate:"omitempty,max=255"`
	Role    models.UserRole `json:"role" validate:"omitempty,user_role"`
	Profile OrgProfile      `json:"profile"`
}

type Member struct {
	UserID string          `json:"user_id" validate:"required,max=255"`
	Role   models.UserRole `json:"role" validate:"required,user_role"`
}

type AssignRecommendedRequest struct {
	OrgID   string     `json:"-" validate:"required"`
	Members []Member   `json:"members" validate:"required,min=1,max=500,dive"`
	Profile OrgProfile `json:"profile"`
	DueAt   *time.Time `json:"due_at" validate:"omitempty,future_date"`
}

type DocumentCreateRequest struct {
	OrgID        string              `json:"-" validate:"required"`
	DocumentType models.DocumentType `json:"document_type" validate:"required,document_type"`
	Title        string              `json:"title" validate:"required,min=1,max=200"`
	Description  *string             `json:"description" validate:"omitempty,max=2000"`
	FileURL      *string             `json:"file_url" validate:"omitempty,url,max=500"`
	IssuedAt     time.Time           `json:"issued_at" validate:"required"`
}

type DocumentUpdateRequest struct {
	DocumentType *models.DocumentType `json:"document_type" validate:"omitempty,document_type"`
	Title        *string              `json:"title" validate:"omitempty,min=1,max=200"`
	Description  *string              `json:"description" validate:"omitempty,max=2000"`
	FileURL      *string              `json:"file_url" validate:"omitempty,url,max=500"`
	IssuedAt     *time.Time           `json:"issued_at"`
}

type DocumentRenewRequest struct {
	IssuedAt time.Time `json:"issued_at" validate:"required"`
	Title    *string   `json:"title" validate:"omitempty,min=1,max=200"`
	FileURL  *string   `json:"file_url" validate:"omitempty,url,max=500"`
}
