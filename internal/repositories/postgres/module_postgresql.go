package postgres

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/training-service/internal/cache"
	"github.com/SAP-F-2025/training-service/internal/models"
	"github.com/SAP-F-2025/training-service/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ModulePostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewModulePostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.ModuleRepository {
	return &ModulePostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cacheManager,
	}
}

func orderedLessons(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

// GetByID returns the module with its lessons. Reads inside a transaction skip the cache.
func (m *ModulePostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.TrainingModule, error) {
	load := func() (interface{}, error) {
		var module models.TrainingModule
		if err := m.helpers.getDB(tx).WithContext(ctx).
			Preload("Lessons", orderedLessons).
			First(&module, "id = ?", id).Error; err != nil {
			return nil, err
		}
		return &module, nil
	}

	if tx != nil {
		v, err := load()
		if err != nil {
			return nil, err
		}
		return v.(*models.TrainingModule), nil
	}

	var module models.TrainingModule
	cacheKey := fmt.Sprintf("id:%s", id)
	if err := m.cacheManager.Module.CacheOrExecute(ctx, cacheKey, &module, cache.ModuleCacheConfig.TTL, load); err != nil {
		return nil, err
	}
	return &module, nil
}

func (m *ModulePostgreSQL) GetByIDs(ctx context.Context, tx *gorm.DB, ids []string) (map[string]*models.TrainingModule, error) {
	result := make(map[string]*models.TrainingModule, len(ids))
	for _, id := range ids {
		if _, seen := result[id]; seen {
			continue
		}
		module, err := m.GetByID(ctx, tx, id)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				continue
			}
			return nil, err
		}
		result[id] = module
	}
	return result, nil
}

func (m *ModulePostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.ModuleFilters) ([]*models.TrainingModule, int64, error) {
	db := m.helpers.getDB(tx)
	var modules []*models.TrainingModule
	var total int64

	query := db.WithContext(ctx).Model(&models.TrainingModule{})
	if filters.Tier != nil {
		query = query.Where("tier = ?", *filters.Tier)
	}
	if filters.TriggerType != nil {
		query = query.Where("trigger_type = ?", *filters.TriggerType)
	}
	if filters.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	allowed := map[string]bool{"tier": true, "title": true, "created_at": true, "id": true}
	sortOrder := filters.SortOrder
	if filters.SortBy == "" && sortOrder == "" {
		sortOrder = "asc"
	}
	query = m.helpers.ApplyPaginationAndSort(query, allowed, "tier", filters.SortBy, sortOrder, filters.Limit, filters.Offset)

	if err := query.Preload("Lessons", orderedLessons).Find(&modules).Error; err != nil {
		return nil, 0, err
	}

	// Audience is a JSON column; match it here to stay portable across dialects.
	if filters.Audience != nil {
		filtered := modules[:0]
		for _, mod := range modules {
			for _, a := range mod.Audience {
				if a == *filters.Audience {
					filtered = append(filtered, mod)
					break
				}
			}
		}
		modules = filtered
		total = int64(len(modules))
	}

	return modules, total, nil
}

func (m *ModulePostgreSQL) ListActive(ctx context.Context, tx *gorm.DB) ([]*models.TrainingModule, error) {
	load := func() (interface{}, error) {
		var modules []*models.TrainingModule
		if err := m.helpers.getDB(tx).WithContext(ctx).
			Where("is_active = ?", true).
			Order("tier ASC").Order("title ASC").
			Preload("Lessons", orderedLessons).
			Find(&modules).Error; err != nil {
			return nil, err
		}
		return modules, nil
	}

	if tx != nil {
		v, err := load()
		if err != nil {
			return nil, err
		}
		return v.([]*models.TrainingModule), nil
	}

	var modules []*models.TrainingModule
	if err := m.cacheManager.Module.CacheOrExecute(ctx, "list:active", &modules, cache.ModuleCacheConfig.TTL, load); err != nil {
		return nil, err
	}
	return modules, nil
}

func (m *ModulePostgreSQL) Upsert(ctx context.Context, tx *gorm.DB, module *models.TrainingModule) error {
	lessons := module.Lessons

	err := m.helpers.getDB(tx).WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "id"}},
				DoUpdates: clause.AssignmentColumns([]string{"title", "description", "tier", "audience", "validity_months", "requires_acknowledgment", "trigger_type", "trigger_values", "min_employees", "is_active", "updated_at"}),
			}).
			Create(module).Error; err != nil {
			return fmt.Errorf("failed to upsert module: %w", err)
		}

		if err := tx.Where("module_id = ?", module.ID).Delete(&models.Lesson{}).Error; err != nil {
			return fmt.Errorf("failed to clear lessons: %w", err)
		}

		for i := range lessons {
			lessons[i].ID = 0
			lessons[i].ModuleID = module.ID
			lessons[i].Position = i
		}
		if len(lessons) > 0 {
			if err := tx.Create(&lessons).Error; err != nil {
				return fmt.Errorf("failed to create lessons: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	module.Lessons = lessons
	cache.InvalidateModuleCache(ctx, m.cacheManager, module.ID)
	return nil
}
