package models

import (
	"time"

	"github.com/SAP-F-2025/training-service/internal/expiry"
)

type EnrollmentStatus string

const (
	EnrollmentNotStarted EnrollmentStatus = "not_started"
	EnrollmentInProgress EnrollmentStatus = "in_progress"
	EnrollmentCompleted  EnrollmentStatus = "completed"
	// EnrollmentExpired is only found on legacy rows. Expiry of a completed
	// enrollment is derived from ExpiresAt at read time.
	EnrollmentExpired EnrollmentStatus = "expired"
)

const (
	// StartedProgress is the progress recorded when a module is first opened.
	StartedProgress = 1
	FullProgress    = 100
)

type Enrollment struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	OrgID    string `json:"org_id" gorm:"not null;index;size:255"`
	UserID   string `json:"user_id" gorm:"not null;size:255;uniqueIndex:idx_enrollment_cycle,priority:1"`
	ModuleID string `json:"module_id" gorm:"not null;size:100;uniqueIndex:idx_enrollment_cycle,priority:2;index"`
	Cycle    int    `json:"cycle" gorm:"not null;default:1;uniqueIndex:idx_enrollment_cycle,priority:3"`

	PreviousEnrollmentID *uint `json:"previous_enrollment_id"`

	Status           EnrollmentStatus `json:"status" gorm:"not null;default:not_started;index;size:20"`
	Progress         int              `json:"progress" gorm:"not null;default:0"`
	LessonsCompleted int              `json:"lessons_completed" gorm:"not null;default:0"`

	StartedAt   *time.Time `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at"`
	ExpiresAt   *time.Time `json:"expires_at" gorm:"index"`
	DueAt       *time.Time `json:"due_at"`

	AssignedBy string `json:"assigned_by" gorm:"size:255"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Module         *TrainingModule `json:"module,omitempty" gorm:"foreignKey:ModuleID"`
	Acknowledgment *Acknowledgment `json:"acknowledgment,omitempty" gorm:"foreignKey:EnrollmentID"`
}

func (Enrollment) TableName() string {
	return "training_enrollments"
}

// IsTerminal reports whether no further progress writes are accepted.
func (e *Enrollment) IsTerminal() bool {
	return e.Status == EnrollmentCompleted || e.Status == EnrollmentExpired
}

// IsExpiredAt reports whether a completed enrollment has lapsed at now.
func (e *Enrollment) IsExpiredAt(now time.Time) bool {
	if e.Status == EnrollmentExpired {
		return true
	}
	return e.Status == EnrollmentCompleted && expiry.IsExpired(e.ExpiresAt, now)
}
