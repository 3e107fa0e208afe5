package postgres

import (
	"context"

	"github.com/SAP-F-2025/training-service/internal/models"
	"github.com/SAP-F-2025/training-service/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReminderPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewReminderPostgreSQL(db *gorm.DB) repositories.ReminderRepository {
	return &ReminderPostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

func (r *ReminderPostgreSQL) Record(ctx context.Context, tx *gorm.DB, log *models.ReminderLog) (bool, error) {
	result := r.helpers.getDB(tx).WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(log)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
