package postgres

import (
	"context"
	"time"

	"github.com/SAP-F-2025/training-service/internal/models"
	"github.com/SAP-F-2025/training-service/internal/repositories"
	"gorm.io/gorm"
)

type DocumentPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewDocumentPostgreSQL(db *gorm.DB) repositories.DocumentRepository {
	return &DocumentPostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

func (d *DocumentPostgreSQL) Create(ctx context.Context, tx *gorm.DB, doc *models.ComplianceDocument) error {
	return d.helpers.getDB(tx).WithContext(ctx).Create(doc).Error
}

func (d *DocumentPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.ComplianceDocument, error) {
	var doc models.ComplianceDocument
	if err := d.helpers.getDB(tx).WithContext(ctx).First(&doc, id).Error; err != nil {
		return nil, err
	}
	return &doc, nil
}

func (d *DocumentPostgreSQL) Update(ctx context.Context, tx *gorm.DB, doc *models.ComplianceDocument) error {
	return d.helpers.getDB(tx).WithContext(ctx).Save(doc).Error
}

func (d *DocumentPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	result := d.helpers.getDB(tx).WithContext(ctx).Delete(&models.ComplianceDocument{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

func (d *DocumentPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.DocumentFilters) ([]*models.ComplianceDocument, int64, error) {
	var docs []*models.ComplianceDocument
	var total int64

	query := d.helpers.getDB(tx).WithContext(ctx).Model(&models.ComplianceDocument{})
	if filters.OrgID != nil {
		query = query.Where("org_id = ?", *filters.OrgID)
	}
	if filters.DocumentType != nil {
		query = query.Where("document_type = ?", *filters.DocumentType)
	}
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	allowed := map[string]bool{"expires_at": true, "issued_at": true, "created_at": true, "title": true}
	sortOrder := filters.SortOrder
	if filters.SortBy == "" && sortOrder == "" {
		sortOrder = "asc"
	}
	query = d.helpers.ApplyPaginationAndSort(query, allowed, "expires_at", filters.SortBy, sortOrder, filters.Limit, filters.Offset)

	if err := query.Find(&docs).Error; err != nil {
		return nil, 0, err
	}
	return docs, total, nil
}

func (d *DocumentPostgreSQL) ListExpiringBefore(ctx context.Context, tx *gorm.DB, orgID *string, before time.Time) ([]*models.ComplianceDocument, error) {
	var docs []*models.ComplianceDocument
	query := d.helpers.getDB(tx).WithContext(ctx).
		Where("status <> ? AND expires_at < ?", models.DocumentRenewed, before)
	if orgID != nil {
		query = query.Where("org_id = ?", *orgID)
	}
	if err := query.Order("expires_at ASC").Find(&docs).Error; err != nil {
		return nil, err
	}
	return docs, nil
}

func (d *DocumentPostgreSQL) MarkRenewed(ctx context.Context, tx *gorm.DB, id uint) (bool, error) {
	result := d.helpers.getDB(tx).WithContext(ctx).Model(&models.ComplianceDocument{}).
		Where("id = ? AND status <> ?", id, models.DocumentRenewed).
		Update("status", models.DocumentRenewed)
	return result.RowsAffected == 1, result.Error
}
