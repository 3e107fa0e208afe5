package models

import (
	"fmt"
	"time"
)

// Acknowledgment is the legal attestation recorded when a module that
// requires it is completed. Rows are never updated or deleted.
type Acknowledgment struct {
	ID                 uint      `json:"id" gorm:"primaryKey"`
	EnrollmentID       uint      `json:"enrollment_id" gorm:"not null;uniqueIndex"`
	UserID             string    `json:"user_id" gorm:"not null;index;size:255"`
	ModuleID           string    `json:"module_id" gorm:"not null;size:100"`
	AcknowledgmentText string    `json:"acknowledgment_text" gorm:"type:text;not null"`
	AcknowledgedAt     time.Time `json:"acknowledged_at" gorm:"not null"`
}

func (Acknowledgment) TableName() string {
	return "training_acknowledgments"
}

// AcknowledgmentStatement is the current wording presented to a user who
// finished moduleTitle.
func AcknowledgmentStatement(moduleTitle string) string {
	return fmt.Sprintf(
		"I acknowledge that I have completed the %q training, that I understand the policies and legal obligations it describes, and that I agree to comply with them in my role.",
		moduleTitle,
	)
}
