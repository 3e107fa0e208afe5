package postgres

import (
	"context"

	"github.com/SAP-F-2025/training-service/internal/models"
	"github.com/SAP-F-2025/training-service/internal/repositories"
	"gorm.io/gorm"
)

type AcknowledgmentPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewAcknowledgmentPostgreSQL(db *gorm.DB) repositories.AcknowledgmentRepository {
	return &AcknowledgmentPostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

func (a *AcknowledgmentPostgreSQL) Create(ctx context.Context, tx *gorm.DB, ack *models.Acknowledgment) error {
	err := a.helpers.getDB(tx).WithContext(ctx).Create(ack).Error
	if repositories.IsDuplicateError(err) {
		return repositories.ErrDuplicate
	}
	return err
}

func (a *AcknowledgmentPostgreSQL) GetByEnrollment(ctx context.Context, tx *gorm.DB, enrollmentID uint) (*models.Acknowledgment, error) {
	var ack models.Acknowledgment
	if err := a.helpers.getDB(tx).WithContext(ctx).
		Where("enrollment_id = ?", enrollmentID).
		First(&ack).Error; err != nil {
		return nil, err
	}
	return &ack, nil
}

func (a *AcknowledgmentPostgreSQL) ExistsForEnrollment(ctx context.Context, tx *gorm.DB, enrollmentID uint) (bool, error) {
	var count int64
	if err := a.helpers.getDB(tx).WithContext(ctx).Model(&models.Acknowledgment{}).
		Where("enrollment_id = ?", enrollmentID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (a *AcknowledgmentPostgreSQL) ListByUser(ctx context.Context, tx *gorm.DB, userID string) ([]*models.Acknowledgment, error) {
	var acks []*models.Acknowledgment
	if err := a.helpers.getDB(tx).WithContext(ctx).
		Where("user_id = ?", userID).
		Order("acknowledged_at DESC").
		Find(&acks).Error; err != nil {
		return nil, err
	}
	return acks, nil
}
