package models

import (
	"time"
)

type DocumentType string

const (
	DocumentBiasAudit        DocumentType = "bias_audit"
	DocumentImpactAssessment DocumentType = "impact_assessment"
	DocumentDisclosure       DocumentType = "disclosure"
	DocumentTrainingCert     DocumentType = "training_cert"
	DocumentAdversePolicy    DocumentType = "adverse_policy"
)

// DocumentValidityYears is how long each document type stays valid after issue.
var DocumentValidityYears = map[DocumentType]int{
	DocumentBiasAudit:        1,
	DocumentImpactAssessment: 1,
	DocumentDisclosure:       1,
	DocumentTrainingCert:     1,
	DocumentAdversePolicy:    1,
}

func (t DocumentType) Valid() bool {
	_, ok := DocumentValidityYears[t]
	return ok
}

type DocumentStatus string

const (
	DocumentActive       DocumentStatus = "active"
	DocumentExpiringSoon DocumentStatus = "expiring_soon"
	DocumentExpired      DocumentStatus = "expired"
	DocumentRenewed      DocumentStatus = "renewed"
)

type ComplianceDocument struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	OrgID        string         `json:"org_id" gorm:"not null;index;size:255"`
	DocumentType DocumentType   `json:"document_type" gorm:"not null;size:50;index"`
	Title        string         `json:"title" gorm:"not null;size:200"`
	Description  *string        `json:"description" gorm:"type:text"`
	FileURL      *string        `json:"file_url" gorm:"size:500"`
	IssuedAt     time.Time      `json:"issued_at" gorm:"not null"`
	ExpiresAt    time.Time      `json:"expires_at" gorm:"not null;index"`
	Status       DocumentStatus `json:"status" gorm:"not null;default:active;size:20;index"`

	RenewedFromID *uint `json:"renewed_from_id" gorm:"index"`

	CreatedBy string    `json:"created_by" gorm:"size:255"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (ComplianceDocument) TableName() string {
	return "compliance_documents"
}

// DocumentExpiry returns the expiry of a document of type t issued at issuedAt.
func DocumentExpiry(t DocumentType, issuedAt time.Time) time.Time {
	years, ok := DocumentValidityYears[t]
	if !ok {
		years = 1
	}
	return issuedAt.AddDate(years, 0, 0)
}
