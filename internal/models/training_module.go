package models

import (
	"time"

	"gorm.io/datatypes"
)

type TriggerType string

const (
	TriggerCore     TriggerType = "core"
	TriggerState    TriggerType = "state"
	TriggerTool     TriggerType = "tool"
	TriggerIndustry TriggerType = "industry"
	TriggerSize     TriggerType = "size"
)

type Audience = string

const (
	AudienceAllEmployees       Audience = "all_employees"
	AudienceCSuite             Audience = "c_suite"
	AudienceHRDirectors        Audience = "hr_directors"
	AudienceComplianceOfficers Audience = "compliance_officers"
	AudienceHiringManagers     Audience = "hiring_managers"
	AudienceManagers           Audience = "managers"
	AudienceRecruiters         Audience = "recruiters"
	AudienceTalentAcquisition  Audience = "talent_acquisition"
)

const (
	DefaultValidityMonths = 12
	MaxLessonsPerModule   = 100
)

type TrainingModule struct {
	ID          string `json:"id" gorm:"primaryKey;size:100"`
	Title       string `json:"title" gorm:"not null;size:200"`
	Description string `json:"description" gorm:"type:text"`
	Tier        int    `json:"tier" gorm:"not null;default:2;index"`

	Audience datatypes.JSONSlice[string] `json:"audience"`

	ValidityMonths         int  `json:"validity_months" gorm:"not null;default:12"`
	RequiresAcknowledgment bool `json:"requires_acknowledgment" gorm:"not null;default:false"`

	// Recommendation trigger metadata
	TriggerType   TriggerType                 `json:"trigger_type" gorm:"size:20"`
	TriggerValues datatypes.JSONSlice[string] `json:"trigger_values"`
	// MinEmployees is the threshold for size triggers.
	MinEmployees int `json:"min_employees"`

	IsActive bool `json:"is_active" gorm:"not null"`

	Lessons []Lesson `json:"lessons" gorm:"foreignKey:ModuleID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (TrainingModule) TableName() string {
	return "training_modules"
}

type Lesson struct {
	ID              uint   `json:"-" gorm:"primaryKey"`
	ModuleID        string `json:"-" gorm:"not null;size:100;uniqueIndex:idx_module_lesson_position,priority:1"`
	Position        int    `json:"position" gorm:"not null;uniqueIndex:idx_module_lesson_position,priority:2"`
	Title           string `json:"title" gorm:"not null;size:200"`
	DurationMinutes int    `json:"duration_minutes" gorm:"not null;default:0"`
}

func (Lesson) TableName() string {
	return "training_lessons"
}

func (m *TrainingModule) TotalLessons() int {
	return len(m.Lessons)
}

func (m *TrainingModule) TotalDurationMinutes() int {
	total := 0
	for _, l := range m.Lessons {
		total += l.DurationMinutes
	}
	return total
}

// ExpiresAfter returns the expiry of a completion at completedAt.
func (m *TrainingModule) ExpiresAfter(completedAt time.Time) time.Time {
	months := m.ValidityMonths
	if months <= 0 {
		months = DefaultValidityMonths
	}
	return completedAt.AddDate(0, months, 0)
}

// LessonProgress is the percentage reached once the lesson at index is
// complete, rounded half up. It is 100 only for the final lesson as long as
// the module has at most MaxLessonsPerModule lessons.
func LessonProgress(index, total int) int {
	if total <= 0 {
		return 0
	}
	if index >= total-1 {
		return FullProgress
	}
	return (200*(index+1) + total) / (2 * total)
}
