package models

import (
	"time"
)

type ReminderSubject string

const (
	ReminderSubjectEnrollment ReminderSubject = "enrollment"
	ReminderSubjectDocument   ReminderSubject = "document"
)

// ReminderLog records that the reminder for one threshold was published.
type ReminderLog struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	SubjectType ReminderSubject `json:"subject_type" gorm:"not null;size:20;uniqueIndex:idx_reminder_subject_threshold,priority:1"`
	SubjectID   uint            `json:"subject_id" gorm:"not null;uniqueIndex:idx_reminder_subject_threshold,priority:2"`
	Threshold   int             `json:"threshold" gorm:"not null;uniqueIndex:idx_reminder_subject_threshold,priority:3"`
	SentAt      time.Time       `json:"sent_at" gorm:"not null"`
}

func (ReminderLog) TableName() string {
	return "reminder_logs"
}
